package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userprops/profile-service/internal/api/metrics"
	"github.com/userprops/profile-service/internal/core/domain"
)

// Limiter decides whether one more request for key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit throttles per caller id. It must run after Auth. When the limiter
// itself fails the request is let through.
func RateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ec, ok := EffectiveContextFrom(c.Request().Context())
			if !ok {
				return next(c)
			}

			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), ec.CallerID)
			if err != nil {
				log.Warn().Err(err).Str("caller_id", ec.CallerID).Msg("rate limit check failed, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitRejectedTotal.Inc()
				secs := int(retryAfter / time.Second)
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}
