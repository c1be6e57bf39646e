// Package observe provides observability primitives for memoized functions.
//
// It is a pure instrumentation library: tracing spans and metrics around
// underlying invocations, hit/miss counters for store lookups, and a
// zap-backed structured logger. Consumers pass a Middleware to memo.Memoize.
//
// NewObserver builds its own tracer and meter providers. They are installed
// as the otel globals only when WithGlobalProviders is given.
package observe
