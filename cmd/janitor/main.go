// Command janitor purges expired password-reset tokens on a schedule and serves
// health and Prometheus metrics on METRICS_ADDR.
package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"travelcore/internal/bootstrap"
	"travelcore/internal/config"
	"travelcore/internal/handlers"
	"travelcore/internal/observability"
	"travelcore/internal/server"
)

const serviceName = "travelcore-janitor"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ServiceName: serviceName})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Close(shutdownCtx); err != nil {
			log.Printf("runtime shutdown error: %v", err)
		}
	}()

	sqlDB, err := rt.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get sql.DB: %v", err)
	}
	h := &handlers.Handlers{Service: serviceName, DB: sqlDB}
	if rt.Redis != nil {
		h.Redis = handlers.PingFunc(func(ctx context.Context) error { return rt.Redis.Ping(ctx).Err() })
	}

	go func() {
		if err := server.Run(ctx, cfg.MetricsAddr, h); err != nil {
			observability.Logger.Error("ops endpoint failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	interval := time.Duration(cfg.TokenPurgeIntervalMinutes) * time.Minute
	observability.Logger.Info("token purger started", slog.Duration("interval", interval))
	rt.Services.Tokens.RunTokenPurger(ctx, interval)
	observability.Logger.Info("Shutting down janitor...")
}
