package logging

import (
	"context"
	"log/slog"
)

// Fields are the per-decision values carried on a context and attached to
// every log line written through it.
type Fields struct {
	RequestID string
	Actor     string
	TraceID   string
}

type fieldsKey struct{}

// FieldsFrom returns the fields stored on ctx. Missing values are empty.
func FieldsFrom(ctx context.Context) Fields {
	f, _ := ctx.Value(fieldsKey{}).(Fields)
	return f
}

func with(ctx context.Context, set func(*Fields)) context.Context {
	f := FieldsFrom(ctx)
	set(&f)
	return context.WithValue(ctx, fieldsKey{}, f)
}

// WithRequestID tags ctx with the request ID recorded in audit rows.
func WithRequestID(ctx context.Context, id string) context.Context {
	return with(ctx, func(f *Fields) { f.RequestID = id })
}

// WithActor tags ctx with the user the decision is made for.
func WithActor(ctx context.Context, actor string) context.Context {
	return with(ctx, func(f *Fields) { f.Actor = actor })
}

// WithTraceID tags ctx with the active span's trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return with(ctx, func(f *Fields) { f.TraceID = traceID })
}

// Args returns the non-empty fields as slog key-value pairs.
func (f Fields) Args() []any {
	var args []any
	if f.RequestID != "" {
		args = append(args, "request_id", f.RequestID)
	}
	if f.Actor != "" {
		args = append(args, "actor", f.Actor)
	}
	if f.TraceID != "" {
		args = append(args, "trace_id", f.TraceID)
	}
	return args
}

// FromContext returns base enriched with the context's fields. A nil base
// means slog.Default().
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if args := FieldsFrom(ctx).Args(); len(args) > 0 {
		return base.With(args...)
	}
	return base
}
