package metrics

import (
	"slices"
	"time"

	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric of the guard engine and provides a
// unified interface for recording them. Rule IDs come from fixed tables, so
// label cardinality is bounded without a limiter.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	decisionMetrics *DecisionMetrics
	auditMetrics    *AuditMetrics
	catalogMetrics  *CatalogMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordDecision("files", "files.read.allow", "success", elapsed)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{registry: registry}
	if cfg != nil {
		c.config = *cfg
	}

	if c.config.Namespace == "" {
		c.config.Namespace = config.DefaultMetricsNamespace
	}
	if len(c.config.DurationBuckets) == 0 {
		c.config.DurationBuckets = config.DefaultDurationBuckets
	}

	c.decisionMetrics = NewDecisionMetrics(&c.config, registry)
	c.auditMetrics = NewAuditMetrics(&c.config, registry)
	c.catalogMetrics = NewCatalogMetrics(&c.config, registry)

	return c
}

// Enabled reports whether recording is active.
func (c *Collector) Enabled() bool {
	return c.config.Enabled
}

// RecordDecision records one decision and its evaluation duration.
//
// Parameters:
//   - domain: decision domain (e.g., "network", "orders")
//   - ruleID: the matched rule
//   - outcome: "success", "warning", "error" or "pending"
//   - duration: time spent in the engine
func (c *Collector) RecordDecision(domain, ruleID, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.decisionMetrics.RecordDecision(domain, ruleID, outcome, duration)
}

// RecordDecodeError records an input that could not be decoded. The domain
// comes from untrusted input, so names outside domains.Names() are counted
// as "unknown".
func (c *Collector) RecordDecodeError(domain string) {
	if !c.config.Enabled {
		return
	}
	if !slices.Contains(domains.Names(), domain) {
		domain = "unknown"
	}
	c.decisionMetrics.RecordDecodeError(domain)
}

// RecordAuditWrite records the result of storing an audit record.
func (c *Collector) RecordAuditWrite(err error) {
	if !c.config.Enabled {
		return
	}
	c.auditMetrics.RecordWrite(err)
}

// RecordAuditDropped records an audit record dropped because the recorder
// buffer stayed full.
func (c *Collector) RecordAuditDropped() {
	if !c.config.Enabled {
		return
	}
	c.auditMetrics.RecordDropped()
}

// RecordAuditPruned records records deleted by retention.
func (c *Collector) RecordAuditPruned(n int64) {
	if !c.config.Enabled {
		return
	}
	c.auditMetrics.RecordPruned(n)
}

// RecordCatalogReload records a rule catalog rebuild after a config change.
func (c *Collector) RecordCatalogReload(success bool) {
	if !c.config.Enabled {
		return
	}
	c.catalogMetrics.RecordReload(success)
}

// SetRuleCount publishes the number of rules in a domain's table.
func (c *Collector) SetRuleCount(domain string, rules int) {
	if !c.config.Enabled {
		return
	}
	c.catalogMetrics.SetRuleCount(domain, rules)
}

// Registry returns the Prometheus registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
