package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

type testHarness struct {
	mw       *Middleware
	spans    *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
	logs     *zapobserver.ObservedLogs
	metaFunc FuncMeta
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := newMetrics(mp.Meter("test"))
	require.NoError(t, err)

	core, logs := zapobserver.New(zapcore.DebugLevel)
	return &testHarness{
		mw:       NewMiddleware(newTracer(tp.Tracer("test")), metrics, NewZapLogger(zap.New(core))),
		spans:    spans,
		reader:   reader,
		logs:     logs,
		metaFunc: FuncMeta{ID: "id-1", Name: "square", Strategy: "positional_only"},
	}
}

// TestMiddleware_Success verifies span, metrics and log for a successful invocation.
func TestMiddleware_Success(t *testing.T) {
	h := newHarness(t)

	wrapped := h.mw.Wrap(func(ctx context.Context, fn FuncMeta, args any) (any, error) {
		n := args.(int)
		return n * n, nil
	})

	got, err := wrapped(context.Background(), h.metaFunc, 7)
	require.NoError(t, err)
	assert.Equal(t, 49, got)

	spans := h.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "memo.invoke.square", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	assert.Equal(t, int64(1), counterValue(t, collect(t, h.reader), "memo.invoke.total"))

	entries := h.logs.FilterMessage("invocation completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[REDACTED]", entries[0].ContextMap()["args"])
}

// TestMiddleware_Error verifies errors propagate unchanged and are recorded.
func TestMiddleware_Error(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("boom")

	wrapped := h.mw.Wrap(func(ctx context.Context, fn FuncMeta, args any) (any, error) {
		return nil, boom
	})

	_, err := wrapped(context.Background(), h.metaFunc, nil)
	require.Same(t, boom, err, "the original error is returned unchanged")

	assert.Equal(t, codes.Error, h.spans.Ended()[0].Status().Code)
	assert.Equal(t, int64(1), counterValue(t, collect(t, h.reader), "memo.invoke.errors"))

	entries := h.logs.FilterMessage("invocation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

// TestMiddleware_PropagatesSpanContext verifies the wrapped func sees the span.
func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	h := newHarness(t)

	var inner trace.SpanContext
	wrapped := h.mw.Wrap(func(ctx context.Context, fn FuncMeta, args any) (any, error) {
		inner = trace.SpanContextFromContext(ctx)
		return nil, nil
	})
	_, _ = wrapped(context.Background(), h.metaFunc, nil)

	require.True(t, inner.IsValid(), "wrapped function should receive a context with a valid span")
	assert.Equal(t, h.spans.Ended()[0].SpanContext().SpanID(), inner.SpanID(), "wrapped function runs inside the invocation span")
}

// TestMiddleware_RecordLookup verifies lookup outcomes reach the metrics.
func TestMiddleware_RecordLookup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.mw.RecordLookup(ctx, h.metaFunc, false)
	h.mw.RecordLookup(ctx, h.metaFunc, true)

	rm := collect(t, h.reader)
	assert.Equal(t, int64(1), counterValue(t, rm, "memo.lookup.hits"))
	assert.Equal(t, int64(1), counterValue(t, rm, "memo.lookup.misses"))
}

// TestMiddleware_MeasuresDuration verifies the duration covers the invocation.
func TestMiddleware_MeasuresDuration(t *testing.T) {
	h := newHarness(t)

	wrapped := h.mw.Wrap(func(ctx context.Context, fn FuncMeta, args any) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return nil, nil
	})
	_, _ = wrapped(context.Background(), h.metaFunc, nil)

	entries := h.logs.FilterMessage("invocation completed").All()
	require.Len(t, entries, 1)
	d, _ := entries[0].ContextMap()["duration_ms"].(float64)
	assert.GreaterOrEqual(t, d, 5.0)
}

// TestMiddlewareFromObserver verifies construction from an Observer.
func TestMiddlewareFromObserver(t *testing.T) {
	_, err := MiddlewareFromObserver(nil)
	assert.ErrorIs(t, err, ErrNilObserver)

	obs, err := NewObserver(context.Background(), Config{ServiceName: "test"})
	require.NoError(t, err)
	mw, err := MiddlewareFromObserver(obs)
	require.NoError(t, err)

	wrapped := mw.Wrap(func(ctx context.Context, fn FuncMeta, args any) (any, error) {
		return "ok", nil
	})
	got, err := wrapped(context.Background(), FuncMeta{Name: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
