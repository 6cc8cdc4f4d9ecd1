// Package handlers serves the operational endpoints of long-running commands.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"travelcore/internal/observability"
)

// Pinger is a dependency the health check pings. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Handlers checks the database, which is required, and Redis, which is optional.
type Handlers struct {
	Service string
	DB      Pinger
	Redis   Pinger
	Timeout time.Duration
}

type healthReport struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

var (
	pingResponse     = []byte(`{"message": "pong"}`)
	errNotConfigured = errors.New("not configured")
)

// Health answers 503 when the database is unreachable. An unreachable Redis only
// degrades the report because every cached read falls back to the database.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	report := healthReport{Status: "ok", Service: h.Service, Checks: map[string]string{}}
	code := http.StatusOK

	if err := ping(ctx, h.DB); err != nil {
		report.Checks["database"] = err.Error()
		report.Status = "unavailable"
		code = http.StatusServiceUnavailable
	} else {
		report.Checks["database"] = "ok"
	}

	switch {
	case h.Redis == nil:
		report.Checks["redis"] = "disabled"
	case ping(ctx, h.Redis) != nil:
		report.Checks["redis"] = "unreachable"
		if code == http.StatusOK {
			report.Status = "degraded"
		}
	default:
		report.Checks["redis"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		observability.Logger.Warn("write error", slog.String("error", err.Error()))
	}
}

func ping(ctx context.Context, p Pinger) error {
	if p == nil {
		return errNotConfigured
	}
	return p.PingContext(ctx)
}

func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(pingResponse); err != nil {
		observability.Logger.Warn("write error", slog.String("error", err.Error()))
	}
}
