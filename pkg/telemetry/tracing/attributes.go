package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/guard/pkg/guard"
)

// Span names.
const (
	SpanDecide = "guard.decide"
	SpanDecode = "guard.decode"
	SpanReload = "guard.catalog.reload"
)

// Attribute keys use the "guard.*" namespace.
const (
	AttrDomain    = "guard.domain"
	AttrShape     = "guard.shape"
	AttrRuleID    = "guard.rule_id"
	AttrOutcome   = "guard.outcome"
	AttrRequestID = "guard.request_id"
	AttrUser      = "guard.user"
)

// SetDecisionAttributes records the decision on span.
func SetDecisionAttributes(span trace.Span, d guard.Decision) {
	span.SetAttributes(
		attribute.String(AttrDomain, d.Domain),
		attribute.String(AttrShape, string(d.Shape)),
		attribute.String(AttrRuleID, d.RuleID),
		attribute.String(AttrOutcome, string(d.Outcome)),
	)
}

// SetRequestAttributes records the request ID and acting user on span,
// skipping empty values.
func SetRequestAttributes(span trace.Span, requestID, user string) {
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
	if user != "" {
		span.SetAttributes(attribute.String(AttrUser, user))
	}
}
