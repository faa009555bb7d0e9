// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"talentgate/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Status values reported per check.
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusDegraded = "degraded"
)

type check struct {
	fn       CheckFunc
	critical bool
}

// Handler serves /health, /health/live and /health/ready.
type Handler struct {
	started time.Time
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]check
}

// New returns a handler whose readiness checks each get timeout to finish.
func New(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{started: time.Now(), timeout: timeout, checks: make(map[string]check)}
}

// Critical registers a check whose failure makes the service not ready.
func (h *Handler) Critical(name string, fn CheckFunc) {
	h.add(name, check{fn: fn, critical: true})
}

// Optional registers a check whose failure only marks the service degraded.
// The registry sync falls back to synthetic receipts, so it is optional.
func (h *Handler) Optional(name string, fn CheckFunc) {
	h.add(name, check{fn: fn})
}

func (h *Handler) add(name string, c check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = c
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness runs every check concurrently and answers 503 if any
// critical check fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp, ready := h.Evaluate(r.Context())
	if !ready {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Evaluate runs the registered checks and summarizes them.
func (h *Handler) Evaluate(ctx context.Context) (ReadinessResponse, bool) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	checks := make([]check, 0, len(h.checks))
	for name, c := range h.checks {
		names = append(names, name)
		checks = append(checks, c)
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]error, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			results[i] = c.fn(ctx)
			return nil
		})
	}
	_ = g.Wait()

	resp := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(checks))}
	ready := true
	for i, err := range results {
		switch {
		case err == nil:
			resp.Checks[names[i]] = StatusUp
		case checks[i].critical:
			resp.Checks[names[i]] = StatusDown + ": " + err.Error()
			ready = false
		default:
			resp.Checks[names[i]] = StatusDegraded + ": " + err.Error()
			if resp.Status == "ready" {
				resp.Status = StatusDegraded
			}
		}
	}
	if !ready {
		resp.Status = "not_ready"
	}
	return resp, ready
}

type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
