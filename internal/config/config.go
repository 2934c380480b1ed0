// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Session   SessionConfig
	RateLimit RateLimitConfig

	// UploadDir is created at start so later upload handling has a home.
	UploadDir      string `env:"UPLOAD_DIR,default=static/uploads"`
	MaxRequestBody int64  `env:"MAX_CONTENT_LENGTH,default=16777216"`
	AdminPassword  string `env:"ADMIN_PASSWORD"`
	SeedOnStart    bool   `env:"SEED_ON_START,default=true"`
	AuditLogPath   string `env:"AUDIT_LOG_PATH"`
	// CORSAllowedOrigins is a comma separated origin list; "*" allows all.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`
}

// HTTPConfig controls the listener.
type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR,default=:8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s"`
}

// DatabaseConfig selects the store. An empty URL means the in-memory store.
type DatabaseConfig struct {
	Driver          string        `env:"DATABASE_DRIVER,default=postgres"`
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME,default=30m"`
	MigrateOnStart  bool          `env:"DATABASE_MIGRATE_ON_START,default=true"`
}

// LoggingConfig mirrors logger.LoggingConfig.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=text"`
}

// SessionConfig controls session token verification.
type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET"`
	TTL    time.Duration `env:"SESSION_TTL,default=24h"`
}

// RateLimitConfig bounds mutation requests per client.
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS,default=5"`
	Burst int     `env:"RATE_LIMIT_BURST,default=10"`
	// RedisURL shares counters across processes when set.
	RedisURL string `env:"REDIS_URL"`
}

// Load reads an optional .env file, then decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv decodes and validates the current environment.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "pgx":
		c.Database.Driver = strings.ToLower(c.Database.Driver)
	default:
		problems = append(problems, fmt.Sprintf("DATABASE_DRIVER %q is not supported (postgres, pgx)", c.Database.Driver))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT %q is not supported (text, json)", c.Logging.Format))
	}
	if c.RateLimit.RPS <= 0 {
		problems = append(problems, "RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimit.Burst < 1 {
		problems = append(problems, "RATE_LIMIT_BURST must be at least 1")
	}
	if c.MaxRequestBody <= 0 {
		problems = append(problems, "MAX_CONTENT_LENGTH must be positive")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		problems = append(problems, "HTTP_ADDR must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// UsesMemoryStore reports whether no database is configured.
func (c *Config) UsesMemoryStore() bool {
	return strings.TrimSpace(c.Database.URL) == ""
}

// CORSOrigins splits CORSAllowedOrigins into its entries.
func (c *Config) CORSOrigins() []string {
	var out []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
