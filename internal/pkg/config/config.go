package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/userprops/profile-service/internal/core/domain"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	LogPretty       bool          `env:"LOG_PRETTY,       default=false"`
	Prefix          string        `env:"PREFIX,           default=/api"`
	AdminEmails     string        `env:"ADMIN_EMAILS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`
	CORSOrigins     []string      `env:"CORS_ALLOW_ORIGINS, default=*"`

	Firebase  FirebaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
}

type FirebaseConfig struct {
	CredentialsJSON string `env:"FIREBASE_ADMIN_TOKEN_JSON, required"`
	DatabaseURL     string `env:"FIREBASE_DATABASE_URL"`
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=test"`
	Collection string `env:"MONGO_COLLECTION, default=users"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type RateLimitConfig struct {
	// PerMinute is the number of requests a caller may make per minute; 0 disables limiting.
	PerMinute int `env:"RATE_LIMIT_PER_MINUTE, default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=2"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.Prefix = normalizePrefix(cfg.Prefix)
	if cfg.RateLimit.PerMinute < 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return &cfg, nil
}

// AdminAllowlist builds the admin allowlist from ADMIN_EMAILS.
func (c *Config) AdminAllowlist() domain.AdminAllowlist {
	return domain.NewAdminAllowlist(c.AdminEmails)
}

// normalizePrefix yields "" or a path with a leading and no trailing slash.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
