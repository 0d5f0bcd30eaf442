// Package app assembles the relay from configuration. The HTTP server and
// the operator CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
	"github.com/insider-one/push-relay/internal/provider"
	"github.com/insider-one/push-relay/internal/repository/memory"
	"github.com/insider-one/push-relay/internal/repository/postgres"
	"github.com/insider-one/push-relay/internal/repository/redis"
	"github.com/insider-one/push-relay/internal/repository/sqlite"
	"github.com/insider-one/push-relay/internal/service"
)

// HealthChecker is implemented by every component that can report readiness
type HealthChecker interface {
	Health(ctx context.Context) error
}

// App holds the wired relay components
type App struct {
	Store      domain.IdentityStore
	Transport  domain.MessageTransport
	Dispatcher *service.Dispatcher

	// Checkers maps component names to their health probes
	Checkers map[string]HealthChecker

	closers []func()
}

// NewLogger builds a JSON logger writing to w at the configured level
func NewLogger(w io.Writer, level string) *slog.Logger {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// New connects the identity store, optional cache and transport named by cfg
// and builds the dispatcher on top of them. Close must be called once the
// App is no longer needed, including when New returns an error.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Checkers: make(map[string]HealthChecker)}

	store, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		return a, err
	}

	if cfg.Identity.CacheEnabled {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return a, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { redisClient.Close() })
		a.Checkers["redis"] = redisClient
		logger.Info("connected to Redis", "ttl", cfg.Identity.CacheTTL)

		store = redis.NewIdentityCache(redisClient, store, cfg.Identity.CacheTTL, logger)
	}
	a.Store = store

	transport, err := a.openTransport(cfg, logger)
	if err != nil {
		return a, err
	}
	a.Transport = transport

	a.Dispatcher = service.NewDispatcher(service.NewIdentityResolver(store), transport, logger)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.IdentityStore, error) {
	switch cfg.Identity.Backend {
	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.URL); err != nil {
				return nil, err
			}
			logger.Info("database migrations applied")
		}

		db, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.Checkers["identity_store"] = db
		logger.Info("connected to PostgreSQL")
		return postgres.NewIdentityRepository(db), nil

	case "sqlite":
		repo, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() { repo.Close() })
		a.Checkers["identity_store"] = repo
		logger.Info("opened SQLite store", "path", cfg.SQLite.Path)
		return repo, nil

	case "memory":
		store, err := memory.ParseSeed(cfg.Identity.Seed)
		if err != nil {
			return nil, err
		}
		a.Checkers["identity_store"] = store
		logger.Info("using in-memory identity store", "identities", store.Len())
		return store, nil
	}

	return nil, fmt.Errorf("unknown identity backend %q", cfg.Identity.Backend)
}

func (a *App) openTransport(cfg *config.Config, logger *slog.Logger) (domain.MessageTransport, error) {
	switch cfg.Transport.Kind {
	case "telegram":
		transport, err := provider.NewTelegramTransport(cfg.Telegram, logger)
		if err != nil {
			return nil, err
		}
		a.Checkers["telegram"] = transport
		return transport, nil

	case "webhook":
		return provider.NewWebhookTransport(cfg.Webhook), nil
	}

	return nil, errors.New("unknown transport " + cfg.Transport.Kind)
}

// Close releases connections in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
