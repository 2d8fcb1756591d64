package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconciliationMetrics records outcomes of payment reconciliation attempts.
type ReconciliationMetrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewReconciliationMetrics registers the reconciliation metrics on the
// provided registerer. A nil registerer yields a no-op instance, which keeps
// tests quiet.
func NewReconciliationMetrics(reg prometheus.Registerer) *ReconciliationMetrics {
	if reg == nil {
		return &ReconciliationMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_reconciliation_outcomes_total",
		Help: "Reconciliation attempts by delivery channel and outcome.",
	}, []string{"channel", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_reconciliation_duration_seconds",
		Help:    "Duration of reconciliation attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	reg.MustRegister(outcomes, duration)
	return &ReconciliationMetrics{
		outcomes: outcomes,
		duration: duration,
	}
}

// IncOutcome increments the counter for a channel/outcome pair.
func (m *ReconciliationMetrics) IncOutcome(channel, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records how long a reconciliation attempt took.
func (m *ReconciliationMetrics) ObserveDuration(channel string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(channel)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
