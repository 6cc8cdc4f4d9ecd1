// Package server runs the operational HTTP endpoint of long-running commands.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"travelcore/internal/handlers"
	"travelcore/internal/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux routes /health, /ping and /metrics.
func NewMux(h *handlers.Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/ping", h.Ping)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", http.NotFoundHandler())
	return mux
}

// Run serves NewMux(h) on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h *handlers.Handlers) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return Serve(ctx, ln, h)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, ln net.Listener, h *handlers.Handlers) error {
	srv := &http.Server{
		Handler:           NewMux(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.Logger.Info("ops endpoint listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
