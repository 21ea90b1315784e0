package metrics

import (
	"mercator-hq/guard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks the audit trail.
//
// Metrics:
//   - guard_audit_records_total: stored records by result ("ok", "error")
//   - guard_audit_dropped_total: records dropped because the buffer was full
//   - guard_audit_pruned_total: records deleted by retention
type AuditMetrics struct {
	recordsTotal *prometheus.CounterVec
	dropped      prometheus.Counter
	pruned       prometheus.Counter
}

// NewAuditMetrics creates and registers audit metrics with the provided registry.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_records_total",
				Help:      "Total number of audit records written by result",
			},
			[]string{"result"},
		),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "audit_dropped_total",
			Help:      "Total number of audit records dropped because the recorder buffer was full",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "audit_pruned_total",
			Help:      "Total number of audit records deleted by retention",
		}),
	}

	registry.MustRegister(am.recordsTotal, am.dropped, am.pruned)

	return am
}

// RecordWrite records one storage write.
func (am *AuditMetrics) RecordWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	am.recordsTotal.WithLabelValues(result).Inc()
}

// RecordDropped records one dropped record.
func (am *AuditMetrics) RecordDropped() {
	am.dropped.Inc()
}

// RecordPruned records n pruned records.
func (am *AuditMetrics) RecordPruned(n int64) {
	if n > 0 {
		am.pruned.Add(float64(n))
	}
}
