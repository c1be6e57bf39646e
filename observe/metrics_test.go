package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*metricsImpl, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// counterValue sums every data point of an int64 counter, or returns 0 if absent.
func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return 0
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64] for %s, got %T", name, found.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_Invocation verifies total, error and duration instruments.
func TestMetrics_Invocation(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := FuncMeta{ID: "id-1", Name: "fib", Strategy: "one_arg_fast"}

	m.RecordInvocation(context.Background(), meta, 100*time.Millisecond, nil)
	m.RecordInvocation(context.Background(), meta, 50*time.Millisecond, errors.New("boom"))

	rm := collect(t, reader)
	assert.Equal(t, int64(2), counterValue(t, rm, "memo.invoke.total"))
	assert.Equal(t, int64(1), counterValue(t, rm, "memo.invoke.errors"))

	found := findMetric(rm, "memo.invoke.duration_ms")
	require.NotNil(t, found, "memo.invoke.duration_ms metric not found")
	hist, ok := found.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram[float64], got %T", found.Data)
	require.NotEmpty(t, hist.DataPoints)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, 150.0, hist.DataPoints[0].Sum)
}

// TestMetrics_ErrorCounterOnSuccess verifies errors counter NOT incremented on success.
func TestMetrics_ErrorCounterOnSuccess(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordInvocation(context.Background(), FuncMeta{Name: "ok"}, time.Millisecond, nil)

	assert.Zero(t, counterValue(t, collect(t, reader), "memo.invoke.errors"))
}

// TestMetrics_Lookups verifies hits and misses are counted separately.
func TestMetrics_Lookups(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := FuncMeta{Name: "fib"}

	m.RecordLookup(context.Background(), meta, false)
	m.RecordLookup(context.Background(), meta, true)
	m.RecordLookup(context.Background(), meta, true)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), counterValue(t, rm, "memo.lookup.hits"))
	assert.Equal(t, int64(1), counterValue(t, rm, "memo.lookup.misses"))
}

// TestMetrics_AttributesSeparateFunctions verifies per-function data points.
func TestMetrics_AttributesSeparateFunctions(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordLookup(context.Background(), FuncMeta{Name: "a"}, true)
	m.RecordLookup(context.Background(), FuncMeta{Name: "b"}, true)

	found := findMetric(collect(t, reader), "memo.lookup.hits")
	require.NotNil(t, found, "memo.lookup.hits metric not found")
	assert.Len(t, found.Data.(metricdata.Sum[int64]).DataPoints, 2)
}

// TestMetrics_Concurrent verifies concurrent recording is safe and complete.
func TestMetrics_Concurrent(t *testing.T) {
	m, reader := newTestMetrics(t)
	meta := FuncMeta{Name: "concurrent"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordInvocation(context.Background(), meta, time.Millisecond, nil)
			m.RecordLookup(context.Background(), meta, false)
		}()
	}
	wg.Wait()

	rm := collect(t, reader)
	assert.Equal(t, int64(50), counterValue(t, rm, "memo.invoke.total"))
	assert.Equal(t, int64(50), counterValue(t, rm, "memo.lookup.misses"))
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
