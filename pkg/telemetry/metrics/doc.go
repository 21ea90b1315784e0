// Package metrics exposes Prometheus metrics for decisions, the audit trail
// and the rule catalog.
//
// All metrics are registered on a private registry owned by the Collector
// and served by Collector.Handler:
//
//	guard_decisions_total{domain, rule_id, outcome}
//	guard_decision_duration_seconds{domain}
//	guard_decode_errors_total{domain}
//	guard_audit_records_total{result}
//	guard_audit_dropped_total
//	guard_audit_pruned_total
//	guard_catalog_reloads_total{result}
//	guard_catalog_rules{domain}
package metrics
