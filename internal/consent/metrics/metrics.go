package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent operations. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	ConsentsRecorded  prometheus.Counter
	ConsentsDeleted   *prometheus.CounterVec
	ConsentChecks     *prometheus.CounterVec
	ValidationBatches prometheus.Histogram
	FailOpenAllows    prometheus.Counter
}

// New registers consent collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ConsentsRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_consents_recorded_total",
			Help: "Consent submissions written, including overwrites",
		}),
		ConsentsDeleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_consents_deleted_total",
			Help: "Consent records removed, labeled by reason",
		}, []string{"reason"}),
		ConsentChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_consent_checks_total",
			Help: "Per-subject consent decisions, labeled by scope and outcome",
		}, []string{"scope", "outcome"}),
		ValidationBatches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "talentgate_consent_validation_subjects",
			Help:    "Distribution of subject counts per validation call",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		FailOpenAllows: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_consent_fail_open_allows_total",
			Help: "Subjects allowed because the consent store could not be read and fail-open was enabled",
		}),
	}
}

func (m *Metrics) IncrementRecorded() {
	if m == nil {
		return
	}
	m.ConsentsRecorded.Inc()
}

func (m *Metrics) IncrementDeleted(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ConsentsDeleted.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) IncrementCheck(scope, outcome string) {
	if m == nil {
		return
	}
	m.ConsentChecks.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) ObserveBatch(subjects int) {
	if m == nil {
		return
	}
	m.ValidationBatches.Observe(float64(subjects))
}

func (m *Metrics) IncrementFailOpen() {
	if m == nil {
		return
	}
	m.FailOpenAllows.Inc()
}
