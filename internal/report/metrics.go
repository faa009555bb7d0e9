package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds report collectors. A nil *Metrics records nothing.
type Metrics struct {
	Generated *prometheus.CounterVec
	Reused    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Generated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_reports_generated_total",
			Help: "Reports generated, labeled by report type",
		}, []string{"type"}),
		Reused: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_reports_reused_total",
			Help: "Generate calls answered with an already stored report",
		}),
	}
}

func (m *Metrics) IncrementGenerated(t Type) {
	if m == nil {
		return
	}
	m.Generated.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) IncrementReused() {
	if m == nil {
		return
	}
	m.Reused.Inc()
}
