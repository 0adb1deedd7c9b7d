package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userprops/profile-service/internal/api/metrics"
	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
)

// OnBehalfParam is the query parameter an admin uses to act as another user.
const OnBehalfParam = "oboUserId"

// Auth verifies the bearer token, decides admin status and the effective user
// id, and attaches the result to the request context. Failures stop the chain.
// Requests made on behalf of another user are handed to audit, which may be nil.
func Auth(verifier ports.TokenVerifier, allowlist domain.AdminAllowlist, audit ports.AuditRecorder, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthOutcomesTotal.WithLabelValues("missing_credential").Inc()
				return domain.ErrMissingCredential
			}

			req := c.Request()
			id, err := verifier.Verify(req.Context(), token)
			if err != nil {
				metrics.AuthOutcomesTotal.WithLabelValues("invalid_credential").Inc()
				log.Debug().Err(err).Str("path", req.URL.Path).Msg("token rejected")
				return domain.ErrInvalidCredential
			}

			ec := domain.Resolve(id, allowlist, c.QueryParam(OnBehalfParam))
			if ec.IsAdmin {
				metrics.AuthOutcomesTotal.WithLabelValues("admin").Inc()
			} else {
				metrics.AuthOutcomesTotal.WithLabelValues("user").Inc()
			}
			if ec.Impersonating() {
				metrics.ImpersonationsTotal.Inc()
				log.Info().
					Str("caller_id", ec.CallerID).
					Str("effective_user_id", ec.EffectiveUserID).
					Str("path", req.URL.Path).
					Msg("admin request on behalf of user")
				if audit != nil {
					audit.Record(auditEvent(c, ec))
				}
			}

			c.SetRequest(req.WithContext(WithEffectiveContext(req.Context(), ec)))
			return next(c)
		}
	}
}

func auditEvent(c echo.Context, ec domain.EffectiveContext) domain.AuditEvent {
	req := c.Request()
	property := c.Param("property")

	action := domain.AuditActionReadIdentity
	switch {
	case property != "" && req.Method == http.MethodPost:
		action = domain.AuditActionWriteProperty
	case property != "":
		action = domain.AuditActionReadProperty
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = req.Header.Get(echo.HeaderXRequestID)
	}

	return domain.AuditEvent{
		ActorID:      ec.CallerID,
		ActorEmail:   ec.CallerEmail,
		TargetUserID: ec.EffectiveUserID,
		Action:       action,
		Property:     property,
		Method:       req.Method,
		Path:         req.URL.Path,
		RequestID:    requestID,
	}
}

// bearerToken extracts the token of a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
