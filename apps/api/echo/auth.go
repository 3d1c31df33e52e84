package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/auth"
	"github.com/campusvoice/backend/core/user"
)

const (
	// exact prefix match, single space
	bearerPrefix   = "Bearer "
	contextUserKey = "user"
)

// authMiddleware authenticates every inbound request. A valid bearer token
// resolves to a full user record bound into the request context; a missing,
// malformed or invalid token leaves the request anonymous and proceeds — the
// decision to reject belongs to the route's access requirement, not here.
func authMiddleware(tokenSvc *auth.TokenService, usrSvc *user.Service, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return next(ctx)
			}
			token := header[len(bearerPrefix):]

			if !tokenSvc.Validate(token) {
				return next(ctx)
			}
			subject, err := tokenSvc.Subject(token)
			if err != nil {
				return next(ctx)
			}

			usr, err := usrSvc.GetByEmail(ctx.Request().Context(), subject)
			if err != nil {
				if errors.Cause(err) != user.ErrNotFound {
					logger.Error("resolving authenticated user", err)
				}
				return next(ctx)
			}

			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// getContextUser returns the authenticated user bound to the request,
// or errUnauthorized when the request is anonymous.
func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

// authenticate verifies a credential pair against the user directory.
func authenticate(ctx echo.Context, email, pwd string, svc *user.Service) (user.User, error) {
	usr, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return user.User{}, errAuthenticationFailed
	}
	return usr, nil
}
