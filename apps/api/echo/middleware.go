package echoapi

import (
	"github.com/labstack/echo/v4"
)

// authRequiredMiddleware rejects anonymous requests.
func authRequiredMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// adminRequiredMiddleware rejects anonymous requests and
// authenticated users without the admin role.
func adminRequiredMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if !usr.IsAdmin() {
				return errHTTPForbidden
			}
			return next(ctx)
		}
	}
}
