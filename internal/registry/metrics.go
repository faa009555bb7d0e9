package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds registry collectors. A nil *Metrics records nothing.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Fallbacks     *prometheus.CounterVec
	TokenRefresh  prometheus.Counter
	BreakerOpened prometheus.Counter
	Latency       prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_registry_requests_total",
			Help: "Registry submissions, labeled by outcome category",
		}, []string{"outcome"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_registry_fallbacks_total",
			Help: "Synthetic receipts issued, labeled by reason",
		}, []string{"reason"}),
		TokenRefresh: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_registry_token_refreshes_total",
			Help: "Token refreshes triggered by an expired registry token",
		}),
		BreakerOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_registry_breaker_opened_total",
			Help: "Times the registry circuit breaker opened",
		}),
		Latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "talentgate_registry_request_duration_seconds",
			Help:    "Registry submission latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveRequest(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	m.Latency.Observe(seconds)
}

func (m *Metrics) IncrementFallback(reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementRefresh() {
	if m == nil {
		return
	}
	m.TokenRefresh.Inc()
}

func (m *Metrics) IncrementBreakerOpened() {
	if m == nil {
		return
	}
	m.BreakerOpened.Inc()
}
