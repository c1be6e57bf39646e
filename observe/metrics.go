package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache lookups and underlying invocations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records a store probe and whether it hit.
	RecordLookup(ctx context.Context, meta FuncMeta, hit bool)

	// RecordInvocation records an underlying invocation with duration and error status.
	RecordInvocation(ctx context.Context, meta FuncMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	hitCount     metric.Int64Counter
	missCount    metric.Int64Counter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	hitCount, err := meter.Int64Counter(
		"memo.lookup.hits",
		metric.WithDescription("Number of lookups answered from the store"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	missCount, err := meter.Int64Counter(
		"memo.lookup.misses",
		metric.WithDescription("Number of lookups that required an invocation"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	totalCount, err := meter.Int64Counter(
		"memo.invoke.total",
		metric.WithDescription("Total number of underlying invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"memo.invoke.errors",
		metric.WithDescription("Total number of failed underlying invocations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"memo.invoke.duration_ms",
		metric.WithDescription("Underlying invocation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		hitCount:     hitCount,
		missCount:    missCount,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordLookup increments the hit or miss counter.
func (m *metricsImpl) RecordLookup(ctx context.Context, meta FuncMeta, hit bool) {
	opt := metric.WithAttributes(meta.attributes()...)
	if hit {
		m.hitCount.Add(ctx, 1, opt)
	} else {
		m.missCount.Add(ctx, 1, opt)
	}
}

// RecordInvocation records metrics for an underlying invocation.
func (m *metricsImpl) RecordInvocation(ctx context.Context, meta FuncMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordLookup(ctx context.Context, meta FuncMeta, hit bool) {}

func (m *noopMetrics) RecordInvocation(ctx context.Context, meta FuncMeta, duration time.Duration, err error) {
}
