package audit

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the audit log. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	EntriesRecorded *prometheus.CounterVec
	PersistFailures prometheus.Counter
	EntriesDropped  prometheus.Counter
}

// NewMetrics registers audit collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntriesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_audit_entries_total",
			Help: "Audit entries persisted, by action and outcome",
		}, []string{"action", "success"}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_audit_persist_failures_total",
			Help: "Audit entries that could not be written to the store",
		}),
		EntriesDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_audit_entries_dropped_total",
			Help: "Audit entries dropped because the async buffer was full or closed",
		}),
	}
}

func (m *Metrics) incRecorded(action Action, success bool) {
	if m == nil {
		return
	}
	m.EntriesRecorded.WithLabelValues(string(action), strconv.FormatBool(success)).Inc()
}

func (m *Metrics) incFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

func (m *Metrics) incDropped() {
	if m == nil {
		return
	}
	m.EntriesDropped.Inc()
}
