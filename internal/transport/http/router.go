// Package httptransport assembles the HTTP surface: shared middleware, the
// per-domain handlers, health probes and the metrics endpoint.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"talentgate/internal/platform/health"
	"talentgate/pkg/platform/middleware/admin"
	"talentgate/pkg/platform/middleware/metadata"
	"talentgate/pkg/platform/middleware/request"
	"talentgate/pkg/validation"
)

// Registrar mounts public routes.
type Registrar interface {
	Register(r chi.Router)
}

// AdminRegistrar mounts routes guarded by the admin token.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// Options configure NewRouter. Zero values disable the matching feature.
type Options struct {
	Logger         *slog.Logger
	Metrics        *request.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	TrustedProxies []netip.Prefix
	AdminToken     string
	RequestTimeout time.Duration
}

// NewRouter wires every endpoint behind the shared middleware stack.
// Admin routes are mounted only when an admin token is configured.
func NewRouter(hc *health.Handler, public []Registrar, adminRoutes []AdminRegistrar, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(metadata.NewMiddleware(opts.TrustedProxies...).Handler)
	r.Use(request.Logger(logger))
	r.Use(request.Latency(opts.Metrics))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", "X-Actor-ID", "X-Request-ID", "X-Admin-Token", "X-Admin-Actor-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         600,
		}).Handler)
	}

	if hc != nil {
		hc.Register(r)
	}
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(timeout))
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.Actor)

		r.Route("/v1", func(r chi.Router) {
			for _, reg := range public {
				reg.Register(r)
			}
			if opts.AdminToken == "" {
				return
			}
			r.Group(func(r chi.Router) {
				r.Use(admin.RequireAdminToken(opts.AdminToken, logger))
				for _, reg := range adminRoutes {
					reg.RegisterAdmin(r)
				}
			})
		})
	})

	if opts.AdminToken == "" && len(adminRoutes) > 0 {
		logger.Warn("admin token not configured; admin routes disabled")
	}
	return r
}
