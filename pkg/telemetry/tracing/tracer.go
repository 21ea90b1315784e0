package tracing

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/guard/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"
)

// instrumentationName names the tracer that emits decision spans.
const instrumentationName = "mercator-hq/guard"

// Tracer starts decision spans. A disabled Tracer hands out noop spans.
type Tracer struct {
	trace.Tracer
	provider *sdktrace.TracerProvider
}

// Option customizes a Tracer.
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	version  string
	global   bool
}

// WithExporter replaces the OTLP exporter. Spans are exported synchronously,
// which suits in-memory exporters in tests.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporter = exp }
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// AsGlobal installs the provider and a W3C propagator as the otel globals.
func AsGlobal() Option {
	return func(o *options) { o.global = true }
}

// New returns a Tracer for cfg. Callers own the result and must call
// Shutdown to flush spans:
//
//	defer tracer.Shutdown(context.Background())
func New(cfg *config.TracingConfig, opts ...Option) (*Tracer, error) {
	if cfg == nil {
		return nil, errors.New("tracing config is nil")
	}
	if !cfg.Enabled {
		return Noop(), nil
	}

	o := &options{version: "dev"}
	for _, opt := range opts {
		opt(o)
	}

	provider, err := newProvider(cfg, o)
	if err != nil {
		return nil, err
	}
	if o.global {
		otel.SetTracerProvider(provider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}
	return &Tracer{Tracer: provider.Tracer(instrumentationName), provider: provider}, nil
}

// Noop returns a disabled tracer.
func Noop() *Tracer {
	return &Tracer{Tracer: noop.NewTracerProvider().Tracer(instrumentationName)}
}

// Shutdown flushes pending spans. It is a no-op for disabled tracers.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Enabled reports whether spans are recorded and exported.
func (t *Tracer) Enabled() bool {
	return t.provider != nil
}

func newProvider(cfg *config.TracingConfig, o *options) (*sdktrace.TracerProvider, error) {
	sampler, err := ratioSampler(cfg.SampleRatio)
	if err != nil {
		return nil, err
	}

	name := cfg.ServiceName
	if name == "" {
		name = config.DefaultTracingServiceName
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(name),
		semconv.ServiceVersion(o.version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	export := sdktrace.WithSyncer(o.exporter)
	if o.exporter == nil {
		exp, err := otlpExporter(cfg)
		if err != nil {
			return nil, err
		}
		export = sdktrace.WithBatcher(exp)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		export,
	), nil
}

// ratioSampler honours the parent's decision and otherwise samples ratio
// of new traces.
func ratioSampler(ratio float64) (sdktrace.Sampler, error) {
	switch {
	case ratio < 0 || ratio > 1:
		return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
	case ratio == 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample()), nil
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio)), nil
}

// otlpExporter dials the collector lazily, so a missing collector does not
// fail startup.
func otlpExporter(cfg *config.TracingConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, otlptracegrpc.WithTimeout(cfg.Timeout))
	}

	exp, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exp, nil
}

// TraceID returns the trace ID from the context as a string.
// Returns empty string if no trace context exists.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SetError marks the span as failed and records the error.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(attribute.Bool("error", true))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
