package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userprops/profile-service/internal/api"
	"github.com/userprops/profile-service/internal/core/service"
	"github.com/userprops/profile-service/internal/docs"
	mongodb "github.com/userprops/profile-service/internal/infrastructure/db/mongo"
	redisdb "github.com/userprops/profile-service/internal/infrastructure/db/redis"
	"github.com/userprops/profile-service/internal/infrastructure/firebase"
	"github.com/userprops/profile-service/internal/infrastructure/http/handlers"
	"github.com/userprops/profile-service/internal/infrastructure/queue"
	"github.com/userprops/profile-service/internal/pkg/config"
)

const rateLimitWindow = time.Minute

// App owns the HTTP server and every long-lived client behind it.
type App struct {
	httpServer *http.Server
	dispatcher *queue.Dispatcher
	mongo      *mongo.Client
	redis      *goredis.Client
	draining   atomic.Bool
	log        zerolog.Logger
}

// New connects every dependency and builds the router. Any failure aborts
// startup and releases what was already opened.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{log: log}
	defer func() {
		if err != nil {
			a.closeClients(context.Background())
		}
	}()

	sa, err := firebase.ParseServiceAccount([]byte(cfg.Firebase.CredentialsJSON))
	if err != nil {
		return nil, err
	}
	projectID := cfg.Firebase.ProjectID
	if projectID == "" {
		projectID = sa.ProjectID
	}
	log.Info().
		Str("project_id", projectID).
		Str("client_email", sa.ClientEmail).
		Str("database_url", cfg.Firebase.DatabaseURL).
		Msg("firebase credentials loaded")

	credentials, err := firebase.ClientOption(ctx, []byte(cfg.Firebase.CredentialsJSON))
	if err != nil {
		return nil, err
	}
	directory, err := firebase.NewDirectory(ctx, projectID, credentials)
	if err != nil {
		return nil, err
	}
	verifier := firebase.NewTokenVerifier(projectID)

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "profile-service",
	})
	if err != nil {
		return nil, err
	}
	a.mongo = client

	profileRepo := mongodb.NewProfileRepository(db, cfg.Mongo.Collection)
	if err := profileRepo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := mongodb.EnsureAuditIndexes(ctx, db); err != nil {
		return nil, err
	}

	checks := map[string]handlers.Check{"mongodb": handlers.MongoCheck(db)}

	deps := api.Dependencies{
		Logger:      log,
		Prefix:      cfg.Prefix,
		CORSOrigins: cfg.CORSOrigins,
		Verifier:    verifier,
		Allowlist:   cfg.AdminAllowlist(),
		Profiles:    service.NewProfileService(profileRepo, log),
		Users:       service.NewUserService(directory, log),
		Draining:    a.draining.Load,
	}

	if cfg.RateLimit.PerMinute > 0 {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		deps.RateLimiter = redisdb.NewRateLimiter(rdb, cfg.RateLimit.PerMinute, rateLimitWindow)
		checks["redis"] = handlers.RedisCheck(rdb)
	}
	deps.HealthChecks = checks

	a.dispatcher = queue.NewDispatcher(cfg.Audit.Workers, service.NewAuditService(mongodb.NewAuditRepository(db), log), log)
	a.dispatcher.Start(context.Background())
	deps.Audit = a.dispatcher

	if len(deps.Allowlist) == 0 {
		log.Warn().Msg("ADMIN_EMAILS is empty, no caller will be treated as admin")
	}

	docs.SwaggerInfo.BasePath = cfg.Prefix
	router := api.NewRouter(deps)

	a.httpServer = &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run blocks serving HTTP until Shutdown is called.
func (a *App) Run() error {
	a.log.Info().Str("addr", a.httpServer.Addr).Msg("http server listening")
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections, waits for in-flight requests, drains
// the audit queue and only then closes the store clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.draining.Store(true)

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("audit dispatcher: %w", err))
		}
	}
	if err := a.closeClients(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) closeClients(ctx context.Context) error {
	var errs []error
	if a.mongo != nil {
		if err := mongodb.Disconnect(ctx, a.mongo); err != nil {
			errs = append(errs, err)
		}
		a.mongo = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
		a.redis = nil
	}
	return errors.Join(errs...)
}
