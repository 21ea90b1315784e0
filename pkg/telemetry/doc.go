// Package telemetry groups the observability of the guard engine.
//
// # Components
//
//   - logging: structured slog logging with request context and PII redaction
//   - metrics: Prometheus counters and histograms for decisions, the audit
//     trail and catalog reloads
//   - tracing: OpenTelemetry spans around every decision
//   - health: liveness and readiness probes served next to the metrics
//
// Each component is configured from config.TelemetryConfig and wired by the
// guard command. Decisions take microseconds, so every hook on the decision
// path records in memory and never blocks on an exporter.
package telemetry
