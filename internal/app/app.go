// Package app builds the service from configuration and owns its lifecycle.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tasktracker/task-api/internal/api"
	"github.com/tasktracker/task-api/internal/core/ports"
	"github.com/tasktracker/task-api/internal/core/service"
	"github.com/tasktracker/task-api/internal/infrastructure/cache/memory"
	"github.com/tasktracker/task-api/internal/infrastructure/config"
	redisstore "github.com/tasktracker/task-api/internal/infrastructure/db/redis"
	"github.com/tasktracker/task-api/internal/infrastructure/db/sqlstore"
	"github.com/tasktracker/task-api/internal/infrastructure/security"
	"github.com/tasktracker/task-api/pkg/logger"
)

// App is a fully wired task API.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	db     *sql.DB
	redis  *redisstore.IdempotencyStore
	cache  *memory.IdempotencyStore
	hasher *security.BcryptPool
	echo   *echo.Echo
}

// OpenDatabase opens the configured relational store.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	return sqlstore.Open(ctx, sqlstore.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
}

// Migrate opens the database, applies pending migrations and closes it.
func Migrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return sqlstore.Migrate(ctx, db, cfg.Database.Driver, log)
}

// New connects to every backing service, applies migrations and builds the
// HTTP router. Hash workers keep running until Close so requests still in
// flight during shutdown can finish.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	var err error
	a.db, err = OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if err = sqlstore.Migrate(ctx, a.db, cfg.Database.Driver, log); err != nil {
		return err
	}

	keys, err := a.idempotencyStore(ctx)
	if err != nil {
		return err
	}

	a.hasher, err = security.NewBcryptPool(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost, log)
	if err != nil {
		return err
	}
	a.hasher.Start(context.WithoutCancel(ctx))

	tokens, err := security.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(sqlstore.NewAccountRepository(a.db), a.hasher, tokens, logger.Component(log, "auth"))
	taskService := service.NewTaskService(sqlstore.NewTaskRepository(a.db), keys, logger.Component(log, "task"))

	a.echo = api.NewRouter(api.Dependencies{
		AuthService: authService,
		TaskService: taskService,
		DB:          a.db,
		Redis:       a.redisClient(),
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})
	return nil
}

// idempotencyStore picks Redis when REDIS_ADDR is set and bigcache otherwise.
func (a *App) idempotencyStore(ctx context.Context) (ports.IdempotencyStore, error) {
	if a.cfg.Redis.Addr == "" {
		store, err := memory.NewIdempotencyStore(ctx, a.cfg.Redis.IdempotencyTTL)
		if err != nil {
			return nil, err
		}
		a.cache = store
		a.log.Info().Msg("idempotency keys kept in process memory")
		return store, nil
	}

	rc := a.cfg.Redis
	store, err := redisstore.Open(ctx, redisstore.Options{
		Addr:           rc.Addr,
		DB:             rc.DB,
		PoolSize:       rc.PoolSize,
		DialTimeout:    rc.DialTimeout,
		IOTimeout:      rc.IOTimeout,
		IdempotencyTTL: rc.IdempotencyTTL,
	})
	if err != nil {
		return nil, err
	}
	a.redis = store
	a.log.Info().Str("addr", rc.Addr).Msg("idempotency keys kept in redis")
	return store, nil
}

func (a *App) redisClient() *redis.Client {
	if a.redis == nil {
		return nil
	}
	return a.redis.Client()
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.cfg.Addr()).Msg("http server listening")
		if err := a.echo.Start(a.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Dur("timeout", a.cfg.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close stops hash workers and releases connections. Safe on a partially
// built App.
func (a *App) Close() error {
	var errs []error
	if a.hasher != nil {
		a.hasher.Stop()
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
