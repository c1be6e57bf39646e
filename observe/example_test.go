package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/memoized/observe"
)

func ExampleNewObserver() {
	cfg := observe.Config{
		ServiceName: "example-service",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: false},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	}

	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	cfg := observe.Config{
		ServiceName: "", // Empty - will fail validation
	}

	_, err := observe.NewObserver(context.Background(), cfg)
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleFuncMeta_SpanName() {
	meta := observe.FuncMeta{Name: "fib", Strategy: "one_arg_fast"}
	fmt.Println(meta.SpanName())
	fmt.Println(observe.FuncMeta{}.SpanName())
	// Output:
	// memo.invoke.fib
	// memo.invoke.anonymous
}

func ExampleNewLoggerWithWriter() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	logger.Debug(context.Background(), "filtered out")
	logger.Info(context.Background(), "kept", observe.Field{Key: "args", Value: []int{1, 2}})

	out := buf.String()
	fmt.Println("lines:", strings.Count(out, "\n"))
	fmt.Println("redacted:", strings.Contains(out, `"args":"[REDACTED]"`))
	// Output:
	// lines: 1
	// redacted: true
}

func ExampleMiddleware_Wrap() {
	var buf bytes.Buffer
	mw := observe.NewMiddleware(nil, nil, observe.NewLoggerWithWriter("error", &buf))

	square := mw.Wrap(func(ctx context.Context, fn observe.FuncMeta, args any) (any, error) {
		n := args.(int)
		return n * n, nil
	})
	fail := mw.Wrap(func(ctx context.Context, fn observe.FuncMeta, args any) (any, error) {
		return nil, errors.New("boom")
	})

	v, _ := square(context.Background(), observe.FuncMeta{Name: "square"}, 9)
	_, err := fail(context.Background(), observe.FuncMeta{Name: "fail"}, nil)

	fmt.Println(v, err)
	fmt.Println("failure logged:", strings.Contains(buf.String(), `"msg":"invocation failed"`))
	// Output:
	// 81 boom
	// failure logged: true
}

func ExampleParseLogLevel() {
	fmt.Println(observe.ParseLogLevel("warn"))
	fmt.Println(observe.ParseLogLevel("unknown"))
	// Output:
	// warn
	// info
}
