// Package tracing wraps OpenTelemetry for decision spans.
//
// When tracing is enabled, spans are exported over OTLP gRPC; otherwise a
// noop tracer keeps the instrumentation free. Each decision produces a
// "guard.decide" span carrying the domain, shape, matched rule and outcome.
package tracing
