package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for rule evaluation. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	AlertsRaised   *prometheus.CounterVec
	ConsentSkips   prometheus.Counter
	RulesEvaluated prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AlertsRaised: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_rule_alerts_raised_total",
			Help: "Alerts produced by notification rules, labeled by alert type",
		}, []string{"type"}),
		ConsentSkips: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_rule_consent_skips_total",
			Help: "Rule evaluations skipped because the subject has no contact permission",
		}),
		RulesEvaluated: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_rules_evaluated_total",
			Help: "Active rules evaluated against an assessment",
		}),
	}
}

func (m *Metrics) IncrementRaised(alertType string) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(alertType).Inc()
}

func (m *Metrics) IncrementConsentSkip() {
	if m == nil {
		return
	}
	m.ConsentSkips.Inc()
}

func (m *Metrics) AddEvaluated(n int) {
	if m == nil {
		return
	}
	m.RulesEvaluated.Add(float64(n))
}
