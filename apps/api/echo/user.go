package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusvoice/backend/core/auth"
	"github.com/campusvoice/backend/core/user"
)

type authApi struct {
	svc      *user.Service
	tokenSvc *auth.TokenService
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, opts *Options) {
	api := authApi{
		svc:      opts.UserSvc,
		tokenSvc: opts.TokenSvc,
		validate: opts.Validate,
	}

	// un-authed endpoints
	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{Success: "User registered successfully!"})
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := api.tokenSvc.Issue(usr.Email, usr.Role)
	if err != nil {
		return errors.Wrap(err, "issuing token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token: token,
		Role:  usr.Role,
		Email: usr.Email,
		Name:  usr.Name,
	})
}
