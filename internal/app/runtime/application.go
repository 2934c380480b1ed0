// Package runtime assembles the process: configuration, stores, the HTTP
// server and its shutdown.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	app "github.com/innovatorsofhonour/innovators/internal/app"
	"github.com/innovatorsofhonour/innovators/internal/app/httpapi"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/postgres"
	"github.com/innovatorsofhonour/innovators/internal/config"
	"github.com/innovatorsofhonour/innovators/internal/middleware"
	"github.com/innovatorsofhonour/innovators/internal/platform/migrations"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	httpServer *http.Server
	db         *sqlx.DB
	redis      *redis.Client
	audit      io.Closer
}

// NewApplication opens the configured store, seeds it when asked and builds
// the HTTP server. Nothing listens until Run.
func NewApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("runtime")
	}
	a := &Application{cfg: cfg, log: log}

	ok := false
	defer func() {
		if !ok {
			a.closeResources()
		}
	}()

	stores, err := a.buildStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}
	a.app, err = app.New(stores, log)
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}

	if cfg.SeedOnStart {
		if _, err := a.app.Seeder.WithAdminPassword(cfg.AdminPassword).Run(ctx); err != nil {
			return nil, err
		}
	}

	if cfg.UploadDir != "" {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}

	opts, err := a.handlerOptions()
	if err != nil {
		return nil, err
	}
	a.httpServer = &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      httpapi.NewHandler(a.app, log, opts...),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ok = true
	return a, nil
}

// App exposes the assembled services.
func (a *Application) App() *app.Application {
	return a.app
}

// Handler returns the root HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.WithField("addr", a.cfg.HTTP.Addr).Info("HTTP server listening")
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the HTTP server and releases resources.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := a.httpServer.Shutdown(shutdownCtx)
	a.closeResources()
	return err
}

func (a *Application) closeResources() {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.log.WithError(err).Warn("error closing audit log")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("error closing redis client")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
}

func (a *Application) buildStores(ctx context.Context) (app.Stores, error) {
	if a.cfg.UsesMemoryStore() {
		a.log.Warn("DATABASE_URL not set; using in-memory store")
		return app.Stores{}, nil
	}

	db, err := OpenDatabase(ctx, a.cfg.Database)
	if err != nil {
		return app.Stores{}, err
	}
	a.db = db

	if a.cfg.Database.MigrateOnStart {
		if err := migrations.Apply(ctx, db.DB); err != nil {
			return app.Stores{}, err
		}
		a.log.Info("database migrations applied")
	}
	return PostgresStores(postgres.New(db)), nil
}

func (a *Application) handlerOptions() ([]httpapi.Option, error) {
	opts := []httpapi.Option{
		httpapi.WithMaxBodyBytes(a.cfg.MaxRequestBody),
		httpapi.WithSessionSecret(a.cfg.Session.Secret),
		httpapi.WithCORSOrigins(a.cfg.CORSOrigins()),
	}

	limit := a.cfg.RateLimit
	if limit.RedisURL != "" {
		redisOpts, err := redis.ParseURL(limit.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(redisOpts)
		perSecond := redisWindowLimit(limit.RPS)
		opts = append(opts, httpapi.WithRateLimiter(middleware.NewRedisLimiter(a.redis, perSecond), perSecond))
	} else {
		opts = append(opts, httpapi.WithRateLimiter(middleware.NewMemoryLimiter(limit.RPS, limit.Burst), limit.Burst))
	}

	if a.cfg.AuditLogPath != "" {
		sink, err := httpapi.NewFileAuditSink(a.cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		a.audit = sink
		opts = append(opts, httpapi.WithAuditSink(sink))
	}
	return opts, nil
}

// redisWindowLimit converts the sustained rate into the per-second count the
// fixed-window redis limiter enforces.
func redisWindowLimit(rps float64) int {
	n := int(math.Ceil(rps))
	if n < 1 {
		return 1
	}
	return n
}

// PostgresStores binds every store slot to one postgres-backed Store.
func PostgresStores(store *postgres.Store) app.Stores {
	return app.Stores{
		Users:     store,
		Solutions: store,
		Jobs:      store,
		Courses:   store,
		Events:    store,
		Pitches:   store,
		Seed:      store,
		Pinger:    store,
	}
}

// OpenDatabase opens and pings the configured database.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url not configured")
	}

	db, err := sqlx.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
