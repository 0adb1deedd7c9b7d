package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/userprops/profile-service/internal/api/middleware"
	"github.com/userprops/profile-service/internal/core/domain"
)

// ctxEffective returns the EffectiveContext injected by the Auth middleware.
// A handler reached without it was mounted outside the authenticated group.
func ctxEffective(c echo.Context) (domain.EffectiveContext, error) {
	ec, ok := middleware.EffectiveContextFrom(c.Request().Context())
	if !ok {
		return domain.EffectiveContext{}, domain.ErrMissingCredential
	}
	return ec, nil
}

// requestID returns the id assigned by the RequestID middleware, if any.
func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
