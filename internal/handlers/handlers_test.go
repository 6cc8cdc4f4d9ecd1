package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"travelcore/internal/handlers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok() handlers.PingFunc { return func(context.Context) error { return nil } }

func failing(msg string) handlers.PingFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func health(t *testing.T, h *handlers.Handlers) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		h          *handlers.Handlers
		wantCode   int
		wantStatus string
		wantRedis  string
	}{
		{"all healthy", &handlers.Handlers{Service: "janitor", DB: ok(), Redis: ok()}, http.StatusOK, "ok", "ok"},
		{"redis disabled", &handlers.Handlers{Service: "janitor", DB: ok()}, http.StatusOK, "ok", "disabled"},
		{"redis down degrades", &handlers.Handlers{Service: "janitor", DB: ok(), Redis: failing("refused")}, http.StatusOK, "degraded", "unreachable"},
		{"database down", &handlers.Handlers{Service: "janitor", DB: failing("conn reset"), Redis: ok()}, http.StatusServiceUnavailable, "unavailable", "ok"},
		{"database missing", &handlers.Handlers{Service: "janitor"}, http.StatusServiceUnavailable, "unavailable", "disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, body := health(t, tt.h)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, "janitor", body["service"])
			checks, _ := body["checks"].(map[string]any)
			assert.Equal(t, tt.wantRedis, checks["redis"])
		})
	}
}

func TestPingHandler(t *testing.T) {
	t.Parallel()
	h := &handlers.Handlers{}
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	h.Ping(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}
