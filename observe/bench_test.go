package observe

import (
	"context"
	"io"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// BenchmarkLogger_Info measures a single-field log call.
func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "message", Field{Key: "n", Value: i})
	}
}

// BenchmarkLogger_LevelFiltering measures the cost of a filtered-out call.
func BenchmarkLogger_LevelFiltering(b *testing.B) {
	logger := NewLoggerWithWriter("error", io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "dropped", Field{Key: "n", Value: i})
	}
}

// BenchmarkLogger_WithFunc measures building a function-scoped logger.
func BenchmarkLogger_WithFunc(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard)
	meta := FuncMeta{ID: "id", Name: "fib", Strategy: "one_arg_fast"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = logger.WithFunc(meta)
	}
}

// BenchmarkTracer_StartEndSpan measures span lifecycle cost.
func BenchmarkTracer_StartEndSpan(b *testing.B) {
	tp := sdktrace.NewTracerProvider()
	tracer := newTracer(tp.Tracer("bench"))
	meta := FuncMeta{Name: "fib"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, span := tracer.StartSpan(ctx, meta)
		tracer.EndSpan(span, nil)
	}
}

// BenchmarkMetrics_RecordLookup measures hit/miss recording.
func BenchmarkMetrics_RecordLookup(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := newMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	meta := FuncMeta{Name: "fib"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordLookup(ctx, meta, i%2 == 0)
	}
}

// BenchmarkMetrics_RecordInvocation measures invocation recording.
func BenchmarkMetrics_RecordInvocation(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := newMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	meta := FuncMeta{Name: "fib"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordInvocation(ctx, meta, time.Millisecond, nil)
	}
}

// BenchmarkMiddleware_Wrap measures the full instrumentation overhead.
func BenchmarkMiddleware_Wrap(b *testing.B) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	m, err := newMetrics(mp.Meter("bench"))
	if err != nil {
		b.Fatal(err)
	}
	tp := sdktrace.NewTracerProvider()
	mw := NewMiddleware(newTracer(tp.Tracer("bench")), m, NewLoggerWithWriter("info", io.Discard))

	wrapped := mw.Wrap(func(ctx context.Context, fn FuncMeta, args any) (any, error) {
		return args, nil
	})
	meta := FuncMeta{Name: "identity"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = wrapped(ctx, meta, i)
	}
}

// BenchmarkConfig_Validate measures configuration validation.
func BenchmarkConfig_Validate(b *testing.B) {
	cfg := Config{
		ServiceName: "bench",
		Tracing:     TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 0.1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cfg.Validate()
	}
}
