package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// FuncMeta identifies a memoized function for telemetry purposes.
type FuncMeta struct {
	ID       string // Unique wrapper ID (optional; FuncID falls back to Name)
	Name     string // Function name
	Strategy string // Selected key strategy (optional)
}

// SpanName returns the deterministic span name for this function.
// Format: memo.invoke.<name>, or memo.invoke.anonymous when unnamed.
func (m FuncMeta) SpanName() string {
	if m.Name == "" {
		return "memo.invoke.anonymous"
	}
	return "memo.invoke." + m.Name
}

// FuncID returns the wrapper identifier.
// If ID field is set, returns it. Otherwise returns the name.
func (m FuncMeta) FuncID() string {
	if m.ID != "" {
		return m.ID
	}
	return m.Name
}

// Validate reports whether the metadata carries enough to label telemetry.
func (m FuncMeta) Validate() error {
	if m.Name == "" && m.ID == "" {
		return ErrMissingFuncName
	}
	return nil
}

func (m FuncMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("memo.func.id", m.FuncID()),
		attribute.String("memo.func.name", m.Name),
	}
	if m.Strategy != "" {
		attrs = append(attrs, attribute.String("memo.strategy", m.Strategy))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with per-invocation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan returns a context carrying the new span.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an underlying invocation.
	StartSpan(ctx context.Context, meta FuncMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with function metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta FuncMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("memo.error", false)) // Updated in EndSpan on error

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("memo.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta FuncMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
