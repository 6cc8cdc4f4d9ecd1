package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelcore/internal/handlers"
	"travelcore/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy() *handlers.Handlers {
	up := handlers.PingFunc(func(context.Context) error { return nil })
	return &handlers.Handlers{Service: "test", DB: up}
}

func TestNewMux_Routes(t *testing.T) {
	t.Parallel()
	mux := NewMux(healthy())

	tests := []struct {
		path string
		code int
	}{
		{"/health", http.StatusOK},
		{"/ping", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, tt.code, rr.Code, tt.path)
	}
}

func TestNewMux_MetricsExposesDomainCounters(t *testing.T) {
	t.Parallel()
	observability.OrphanReferences.WithLabelValues("food").Add(0)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	NewMux(healthy()).ServeHTTP(rr, req)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "orphan_references_total")
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, healthy()) }()

	url := "http://" + ln.Addr().String() + "/ping"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
