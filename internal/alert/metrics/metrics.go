package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for alert dispatch. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	AlertsPersisted  *prometheus.CounterVec
	DeliveryAttempts *prometheus.CounterVec
	Undelivered      prometheus.Counter
	SendDuration     *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AlertsPersisted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_alerts_persisted_total",
			Help: "Alerts stored by the dispatcher, labeled by type",
		}, []string{"type"}),
		DeliveryAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "talentgate_alert_delivery_attempts_total",
			Help: "Channel delivery attempts, labeled by channel and outcome",
		}, []string{"channel", "outcome"}),
		Undelivered: f.NewCounter(prometheus.CounterOpts{
			Name: "talentgate_alerts_undelivered_total",
			Help: "Alerts persisted without any successful channel delivery",
		}),
		SendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "talentgate_alert_send_duration_seconds",
			Help:    "Time spent delivering an alert on one channel",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
	}
}

func (m *Metrics) IncrementPersisted(alertType string) {
	if m == nil {
		return
	}
	m.AlertsPersisted.WithLabelValues(alertType).Inc()
}

func (m *Metrics) ObserveAttempt(channel string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.DeliveryAttempts.WithLabelValues(channel, outcome).Inc()
	m.SendDuration.WithLabelValues(channel).Observe(seconds)
}

func (m *Metrics) IncrementUndelivered() {
	if m == nil {
		return
	}
	m.Undelivered.Inc()
}
