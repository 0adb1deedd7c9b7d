package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/userprops/profile-service/internal/api/handler"
	"github.com/userprops/profile-service/internal/api/middleware"
	"github.com/userprops/profile-service/internal/core/domain"
	"github.com/userprops/profile-service/internal/core/ports"
	_ "github.com/userprops/profile-service/internal/docs"
	"github.com/userprops/profile-service/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router needs, built once at startup.
type Dependencies struct {
	Logger      zerolog.Logger
	Prefix      string
	CORSOrigins []string

	Verifier  ports.TokenVerifier
	Allowlist domain.AdminAllowlist
	Profiles  ports.ProfileService
	Users     ports.UserService
	Audit     ports.AuditRecorder

	// RateLimiter is optional; nil disables throttling.
	RateLimiter middleware.Limiter

	HealthChecks map[string]handlers.Check
	Draining     func() bool

	// MetricsRegistry receives the HTTP request metrics. A fresh registry is
	// created when nil; custom metrics always live in the default registry.
	MetricsRegistry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	reg := deps.MetricsRegistry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "profile",
		Subsystem:                 "http",
		Registerer:                reg,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks, deps.Draining)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated API ---
	guards := []echo.MiddlewareFunc{middleware.Auth(deps.Verifier, deps.Allowlist, deps.Audit, deps.Logger)}
	if deps.RateLimiter != nil {
		guards = append(guards, middleware.RateLimit(deps.RateLimiter, deps.Logger))
	}
	g := e.Group(deps.Prefix, guards...)

	userHandler := handler.NewUserHandler(deps.Users)
	profileHandler := handler.NewProfileHandler(deps.Profiles)

	g.GET("/users", userHandler.List, middleware.RequireAdmin())
	g.GET("/current-user", userHandler.Current)
	g.GET("/current-user/:property", profileHandler.Get)
	g.POST("/current-user/:property", profileHandler.Set)

	return e
}
