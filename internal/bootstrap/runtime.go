// Package bootstrap wires configuration, storage and services into a runnable process.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"travelcore/internal/cache"
	"travelcore/internal/config"
	"travelcore/internal/database"
	"travelcore/internal/observability"
	"travelcore/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	ServiceName string
	// SeedGeo loads the embedded geo tree after connecting.
	SeedGeo bool
}

// Runtime holds what a command needs after startup.
type Runtime struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Services *Services

	shutdownTracing func(context.Context) error
}

// InitRuntime configures logging and tracing, connects to the DB and Redis and
// prepares the services. Redis being unreachable is not an error.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	observability.Configure(cfg.Env, cfg.LogLevel, cfg.LogRepository)

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  serviceName(opts),
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	rt, err := NewRuntime(ctx, cfg, db, opts)
	if err != nil {
		abandon(ctx, db, shutdown)
		return nil, err
	}
	rt.shutdownTracing = shutdown
	return rt, nil
}

// NewRuntime finishes startup on an already open database.
func NewRuntime(ctx context.Context, cfg *config.Config, db *gorm.DB, opts Options) (*Runtime, error) {
	rt := &Runtime{
		Config:   cfg,
		DB:       db,
		Redis:    cache.GetClient(),
		Services: NewServices(db, cfg),
	}

	if err := rt.ensureDefaultRole(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap default role: %w", err)
	}

	if opts.SeedGeo {
		tree, err := seed.DefaultGeo()
		if err != nil {
			return nil, err
		}
		if _, err := seed.SeedGeo(ctx, db, tree); err != nil {
			return nil, fmt.Errorf("failed to seed geo tree: %w", err)
		}
	}
	return rt, nil
}

// ensureDefaultRole creates the role named by DEFAULT_ROLE_NAME outside production.
// An ID-configured role is never created; it must already exist.
func (rt *Runtime) ensureDefaultRole(ctx context.Context) error {
	if rt.Config.IsProduction() || rt.Config.DefaultRoleID != 0 || rt.Config.DefaultRoleName == "" {
		return nil
	}
	_, err := rt.Services.Access.EnsureDefaultRole(ctx)
	return err
}

// Close releases Redis, the database and the tracer, in that order.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if err := cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	if sqlDB, err := rt.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if rt.shutdownTracing != nil {
		if err := rt.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	if len(errs) > 0 {
		observability.Logger.Warn("runtime shutdown incomplete", slog.Int("errors", len(errs)))
	}
	return errors.Join(errs...)
}

// abandon releases what InitRuntime opened before a failed startup.
func abandon(ctx context.Context, db *gorm.DB, shutdown func(context.Context) error) {
	partial := &Runtime{DB: db, shutdownTracing: shutdown}
	if err := partial.Close(ctx); err != nil {
		observability.Logger.WarnContext(ctx, "cleanup after failed startup", slog.String("error", err.Error()))
	}
}

func serviceName(opts Options) string {
	if opts.ServiceName != "" {
		return opts.ServiceName
	}
	return "travelcore"
}
