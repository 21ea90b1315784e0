// Package gatekeeper is the operational front of the rule engine. It holds
// the current catalog, and for every decision it opens a span, observes
// metrics, logs and forwards the decision to the audit sink. None of these
// side channels can change a decision.
package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/guard/pkg/audit/recorder"
	"mercator-hq/guard/pkg/catalog"
	"mercator-hq/guard/pkg/codec"
	"mercator-hq/guard/pkg/config"
	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/domains/access"
	"mercator-hq/guard/pkg/domains/dbquery"
	"mercator-hq/guard/pkg/domains/files"
	"mercator-hq/guard/pkg/domains/network"
	"mercator-hq/guard/pkg/domains/orders"
	"mercator-hq/guard/pkg/guard"
	"mercator-hq/guard/pkg/telemetry/logging"
	"mercator-hq/guard/pkg/telemetry/tracing"
)

var (
	// ErrNoInput is returned by Decide for an Input without a value.
	ErrNoInput = errors.New("input has no value")

	// ErrDomainMismatch is returned by Decide when the value does not
	// belong to the named domain.
	ErrDomainMismatch = errors.New("value does not belong to domain")
)

// Sink receives every decision. The audit recorder implements it.
type Sink interface {
	Record(ctx context.Context, e recorder.Entry) error
}

// Metrics observes decisions and catalog changes. The metrics collector
// implements it.
type Metrics interface {
	RecordDecision(domain, ruleID, outcome string, duration time.Duration)
	RecordCatalogReload(success bool)
	SetRuleCount(domain string, rules int)
}

type nopMetrics struct{}

func (nopMetrics) RecordDecision(string, string, string, time.Duration) {}
func (nopMetrics) RecordCatalogReload(bool)                             {}
func (nopMetrics) SetRuleCount(string, int)                             {}

// Gatekeeper evaluates inputs against the current catalog. It is safe for
// concurrent use; the catalog can be swapped while decisions are in flight.
type Gatekeeper struct {
	catalog atomic.Pointer[catalog.Catalog]
	tracer  *tracing.Tracer
	metrics Metrics
	sink    Sink
	logger  *slog.Logger
}

// Option customizes a Gatekeeper.
type Option func(*Gatekeeper)

// WithTracer opens a span per decision.
func WithTracer(t *tracing.Tracer) Option {
	return func(g *Gatekeeper) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithMetrics records decision and catalog metrics.
func WithMetrics(m Metrics) Option {
	return func(g *Gatekeeper) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithSink forwards every decision to s.
func WithSink(s Sink) Option {
	return func(g *Gatekeeper) { g.sink = s }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gatekeeper) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Gatekeeper serving c. A nil catalog serves the defaults.
func New(c *catalog.Catalog, opts ...Option) *Gatekeeper {
	if c == nil {
		c = catalog.Default()
	}
	g := &Gatekeeper{
		tracer:  tracing.Noop(),
		metrics: nopMetrics{},
		logger:  slog.Default().With("component", "gatekeeper"),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Swap(c)
	return g
}

// Catalog returns the catalog currently in use.
func (g *Gatekeeper) Catalog() *catalog.Catalog {
	return g.catalog.Load()
}

// Swap installs c and returns the previous catalog. Decisions already in
// flight finish against the catalog they started with.
func (g *Gatekeeper) Swap(c *catalog.Catalog) *catalog.Catalog {
	old := g.catalog.Swap(c)
	for domain, n := range c.RuleCounts() {
		g.metrics.SetRuleCount(domain, n)
	}
	return old
}

// Reload rebuilds the catalog from cfg and swaps it in. On failure the
// current catalog stays in place.
func (g *Gatekeeper) Reload(ctx context.Context, cfg *config.Config) error {
	_, span := g.tracer.Start(ctx, tracing.SpanReload)
	defer span.End()

	c, err := catalog.Build(cfg)
	g.metrics.RecordCatalogReload(err == nil)
	if err != nil {
		tracing.SetError(span, err)
		g.logger.Error("catalog reload failed, keeping current rules", "error", err)
		return fmt.Errorf("failed to rebuild catalog: %w", err)
	}

	g.Swap(c)
	g.logger.Info("catalog reloaded")
	return nil
}

// Network classifies a network response.
func (g *Gatekeeper) Network(ctx context.Context, r network.Response) guard.Decision {
	return decide(ctx, g, g.Catalog().Network, r)
}

// Access authorizes a user-management request.
func (g *Gatekeeper) Access(ctx context.Context, r access.Request) guard.Decision {
	return decide(ctx, g, g.Catalog().Access, r)
}

// Files validates a file operation.
func (g *Gatekeeper) Files(ctx context.Context, op files.Operation) guard.Decision {
	return decide(ctx, g, g.Catalog().Files, op)
}

// Query gates a database query.
func (g *Gatekeeper) Query(ctx context.Context, q dbquery.Query) guard.Decision {
	return decide(ctx, g, g.Catalog().DBQuery, q)
}

// Order validates an order.
func (g *Gatekeeper) Order(ctx context.Context, o orders.Request) guard.Decision {
	return decide(ctx, g, g.Catalog().Orders, o)
}

// Decide dispatches a decoded input to its domain.
func (g *Gatekeeper) Decide(ctx context.Context, in codec.Input) (guard.Decision, error) {
	if in.Value == nil {
		return guard.Decision{}, ErrNoInput
	}

	switch in.Domain {
	case domains.Network:
		if v, ok := in.Value.(network.Response); ok {
			return g.Network(ctx, v), nil
		}
	case domains.Access:
		if v, ok := in.Value.(access.Request); ok {
			return g.Access(ctx, v), nil
		}
	case domains.Files:
		if v, ok := in.Value.(files.Operation); ok {
			return g.Files(ctx, v), nil
		}
	case domains.DBQuery:
		if v, ok := in.Value.(dbquery.Query); ok {
			return g.Query(ctx, v), nil
		}
	case domains.Orders:
		if v, ok := in.Value.(orders.Request); ok {
			return g.Order(ctx, v), nil
		}
	default:
		return guard.Decision{}, fmt.Errorf("%w %q", codec.ErrUnknownDomain, in.Domain)
	}
	return guard.Decision{}, fmt.Errorf("%w %q: %T", ErrDomainMismatch, in.Domain, in.Value)
}

// Explain evaluates in and reports every rule considered. It has no side
// effects: nothing is recorded, logged or counted.
func (g *Gatekeeper) Explain(in codec.Input) (guard.Trace, error) {
	if in.Value == nil {
		return guard.Trace{}, ErrNoInput
	}

	c := g.Catalog()
	switch in.Domain {
	case domains.Network:
		if v, ok := in.Value.(network.Response); ok {
			return c.Network.Explain(v), nil
		}
	case domains.Access:
		if v, ok := in.Value.(access.Request); ok {
			return c.Access.Explain(v), nil
		}
	case domains.Files:
		if v, ok := in.Value.(files.Operation); ok {
			return c.Files.Explain(v), nil
		}
	case domains.DBQuery:
		if v, ok := in.Value.(dbquery.Query); ok {
			return c.DBQuery.Explain(v), nil
		}
	case domains.Orders:
		if v, ok := in.Value.(orders.Request); ok {
			return c.Orders.Explain(v), nil
		}
	default:
		return guard.Trace{}, fmt.Errorf("%w %q", codec.ErrUnknownDomain, in.Domain)
	}
	return guard.Trace{}, fmt.Errorf("%w %q: %T", ErrDomainMismatch, in.Domain, in.Value)
}

func decide[T guard.Variant](ctx context.Context, g *Gatekeeper, table *guard.Table[T], v T) guard.Decision {
	ctx, span := g.tracer.Start(ctx, tracing.SpanDecide)
	defer span.End()

	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}
	fields := logging.FieldsFrom(ctx)
	requestID, actor := fields.RequestID, fields.Actor

	decidedAt := time.Now()
	d := table.Decide(v)
	elapsed := time.Since(decidedAt)

	tracing.SetDecisionAttributes(span, d)
	tracing.SetRequestAttributes(span, requestID, actor)
	g.metrics.RecordDecision(d.Domain, d.RuleID, string(d.Outcome), elapsed)

	logger := logging.FromContext(ctx, g.logger)
	attrs := []any{
		"domain", d.Domain,
		"shape", d.Shape,
		"rule_id", d.RuleID,
		"outcome", d.Outcome,
		"duration", elapsed,
	}
	if d.Rejected() {
		logger.Warn("input rejected", append(attrs, "message", d.Message)...)
	} else {
		logger.Debug("decision made", attrs...)
	}

	if g.sink != nil {
		if requestID == "" {
			requestID = uuid.NewString()
		}
		err := g.sink.Record(ctx, recorder.Entry{
			Decision:  d,
			Input:     codec.Input{Domain: table.Domain(), Value: v},
			RequestID: requestID,
			Actor:     actor,
			DecidedAt: decidedAt,
			Duration:  elapsed,
		})
		if err != nil {
			logger.Error("failed to record decision", "rule_id", d.RuleID, "error", err)
		}
	}

	return d
}
