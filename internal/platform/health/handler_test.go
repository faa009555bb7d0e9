package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (int, ReadinessResponse) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var resp ReadinessResponse
	if path == "/health/ready" {
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	}
	return w.Code, resp
}

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("ready when all checks pass", func(t *testing.T) {
		h := New(time.Second)
		h.Critical("postgres", up)
		h.Optional("registry", up)

		code, resp := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, StatusUp, resp.Checks["postgres"])
	})

	t.Run("optional failure degrades but stays ready", func(t *testing.T) {
		h := New(time.Second)
		h.Critical("postgres", up)
		h.Optional("registry", down)

		code, resp := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, StatusDegraded, resp.Status)
		assert.Equal(t, "degraded: connection refused", resp.Checks["registry"])
	})

	t.Run("critical failure is not ready", func(t *testing.T) {
		h := New(time.Second)
		h.Critical("redis", down)
		h.Optional("registry", down)

		code, resp := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "not_ready", resp.Status)
	})

	t.Run("checks observe the timeout", func(t *testing.T) {
		h := New(20 * time.Millisecond)
		h.Critical("slow", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

		code, _ := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)
	})
}

func TestLivenessAndStatus(t *testing.T) {
	h := New(0)
	code, _ := serve(t, h, "/health/live")
	assert.Equal(t, http.StatusOK, code)
	code, _ = serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
}
