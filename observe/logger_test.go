package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "log line is not JSON: %q", line)
		entries = append(entries, entry)
	}
	return entries
}

// TestLogger_JSONOutput verifies the JSON shape of entries.
func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "hello", Field{Key: "count", Value: 3})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "hello", e["msg"])
	assert.Equal(t, "info", e["level"])
	assert.Contains(t, e, "timestamp")
	assert.Equal(t, float64(3), e["count"])
}

// TestLogger_LevelFiltering verifies entries below the level are dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"debug", 4},
		{"info", 3},
		{"warn", 2},
		{"error", 1},
		{"bogus", 3}, // falls back to info
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tc.level, &buf)
			ctx := context.Background()

			logger.Debug(ctx, "d")
			logger.Info(ctx, "i")
			logger.Warn(ctx, "w")
			logger.Error(ctx, "e")

			assert.Len(t, decodeLines(t, &buf), tc.want)
		})
	}
}

// TestLogger_Redaction verifies sensitive keys are redacted.
func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Info(context.Background(), "call",
		Field{Key: "args", Value: []int{1, 2}},
		Field{Key: "password", Value: "hunter2"},
		Field{Key: "duration_ms", Value: 1.5},
	)

	e := decodeLines(t, &buf)[0]
	assert.Equal(t, "[REDACTED]", e["args"])
	assert.Equal(t, "[REDACTED]", e["password"])
	assert.Equal(t, 1.5, e["duration_ms"])
	assert.NotContains(t, buf.String(), "hunter2", "redacted value leaked into output")
}

// TestLogger_WithFunc verifies function context is attached to every entry.
func TestLogger_WithFunc(t *testing.T) {
	core, logs := zapobserver.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core)).WithFunc(FuncMeta{ID: "id-1", Name: "fib", Strategy: "one_arg_fast"})

	logger.Warn(context.Background(), "store failed", Field{Key: "error", Value: "boom"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Subset(t, entries[0].ContextMap(), map[string]any{
		"memo.func.id":   "id-1",
		"memo.func.name": "fib",
		"memo.strategy":  "one_arg_fast",
		"error":          "boom",
	})
}

// TestNewZapLogger_Nil verifies a nil zap logger yields a usable no-op.
func TestNewZapLogger_Nil(t *testing.T) {
	logger := NewZapLogger(nil)
	assert.NotPanics(t, func() { logger.Error(context.Background(), "ignored") })
	assert.NotNil(t, logger.WithFunc(FuncMeta{Name: "x"}))
}

// TestParseLogLevel verifies level parsing and round-tripping.
func TestParseLogLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		assert.Equal(t, s, ParseLogLevel(s).String())
	}
	assert.Equal(t, LevelInfo, ParseLogLevel("verbose"), "unknown level parses as info")
}
