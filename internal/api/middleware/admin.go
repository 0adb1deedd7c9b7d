package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/userprops/profile-service/internal/core/domain"
)

// RequireAdmin lets only allowlisted callers through. It must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ec, ok := EffectiveContextFrom(c.Request().Context())
			if !ok {
				return domain.ErrMissingCredential
			}
			if !ec.IsAdmin {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
