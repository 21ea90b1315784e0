package metrics

import (
	"mercator-hq/guard/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks the rule catalog.
//
// Metrics:
//   - guard_catalog_reloads_total: catalog rebuilds by result ("success", "failure")
//   - guard_catalog_rules: rules per domain table
type CatalogMetrics struct {
	reloadsTotal *prometheus.CounterVec
	rules        *prometheus.GaugeVec
}

// NewCatalogMetrics creates and registers catalog metrics with the provided registry.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reloads_total",
				Help:      "Total number of rule catalog reloads by result",
			},
			[]string{"result"},
		),
		rules: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_rules",
				Help:      "Number of rules in each domain table",
			},
			[]string{"domain"},
		),
	}

	registry.MustRegister(cm.reloadsTotal, cm.rules)

	return cm
}

// RecordReload records one reload attempt.
func (cm *CatalogMetrics) RecordReload(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	cm.reloadsTotal.WithLabelValues(result).Inc()
}

// SetRuleCount sets the rule gauge for domain.
func (cm *CatalogMetrics) SetRuleCount(domain string, rules int) {
	cm.rules.WithLabelValues(domain).Set(float64(rules))
}
