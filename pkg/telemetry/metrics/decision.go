package metrics

import (
	"time"

	"mercator-hq/guard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetrics tracks rule table evaluations.
//
// Metrics:
//   - guard_decisions_total: decisions by domain, matched rule and outcome
//   - guard_decision_duration_seconds: engine time per decision by domain
//   - guard_decode_errors_total: inputs rejected before reaching the engine
type DecisionMetrics struct {
	decisionsTotal   *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
	decodeErrors     *prometheus.CounterVec
}

// NewDecisionMetrics creates and registers decision metrics with the provided registry.
func NewDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decisions_total",
				Help:      "Total number of decisions by domain, rule and outcome",
			},
			[]string{"domain", "rule_id", "outcome"},
		),

		decisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decision_duration_seconds",
				Help:      "Time spent evaluating a rule table in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"domain"},
		),

		decodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "decode_errors_total",
				Help:      "Total number of inputs that failed to decode",
			},
			[]string{"domain"},
		),
	}

	registry.MustRegister(dm.decisionsTotal, dm.decisionDuration, dm.decodeErrors)

	return dm
}

// RecordDecision records one decision.
func (dm *DecisionMetrics) RecordDecision(domain, ruleID, outcome string, duration time.Duration) {
	dm.decisionsTotal.WithLabelValues(domain, ruleID, outcome).Inc()
	dm.decisionDuration.WithLabelValues(domain).Observe(duration.Seconds())
}

// RecordDecodeError records one decode failure.
func (dm *DecisionMetrics) RecordDecodeError(domain string) {
	dm.decodeErrors.WithLabelValues(domain).Inc()
}
