package observe

import (
	"context"
	"time"
)

// InvokeFunc is the signature of an underlying invocation.
// This is the standard function signature that Middleware wraps.
type InvokeFunc func(ctx context.Context, fn FuncMeta, args any) (any, error)

// Middleware wraps underlying invocations with observability (tracing,
// metrics, logging) and counts store lookups.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe InvokeFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Arguments and results are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components. nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an InvokeFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn InvokeFunc) InvokeFunc {
	return func(ctx context.Context, meta FuncMeta, args any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, meta, args)
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		m.metrics.RecordInvocation(ctx, meta, duration, err)

		funcLogger := m.logger.WithFunc(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
			{Key: "args", Value: args},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			funcLogger.Error(ctx, "invocation failed", fields...)
		} else {
			funcLogger.Debug(ctx, "invocation completed", fields...)
		}

		return result, err
	}
}

// RecordLookup records the outcome of a store probe.
func (m *Middleware) RecordLookup(ctx context.Context, meta FuncMeta, hit bool) {
	m.metrics.RecordLookup(ctx, meta, hit)
}

// Logger returns the middleware's logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
