package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/auth"
	"github.com/campusvoice/backend/core/feedback"
	"github.com/campusvoice/backend/core/user"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf        *core.Config
		Logger      core.Logger
		UserSvc     *user.Service
		FeedbackSvc *feedback.Service
		TokenSvc    *auth.TokenService
		Validate    *validator.Validate
		Translator  ut.Translator

		// SignalShutdown gracefully shuts the process down on fatal errors.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	debug := s.opts.Conf.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.opts.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = debug

	s.app.GET("/", home)

	// every /api request goes through token authentication first; route
	// groups then enforce their own access requirements.
	api := s.app.Group("/api", authMiddleware(s.opts.TokenSvc, s.opts.UserSvc, s.opts.Logger))

	registerAuthAPI(api, s.opts)
	registerFeedbackAPI(api, s.opts)
	registerAdminAPI(api, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CampusVoice API!")
}
