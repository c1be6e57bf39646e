package memo

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/memoized/cache"
	"github.com/jonwraymond/memoized/signature"
)

// counter counts underlying invocations across the fixtures.
type counter struct {
	n atomic.Int64
}

func (c *counter) incr()        { c.n.Add(1) }
func (c *counter) reset()       { c.n.Store(0) }
func (c *counter) count() int64 { return c.n.Load() }

// fixtures mirrors the classic parameter shapes:
//
//	f0()
//	f1(x)
//	f2(x, y=0)
//	f3(x, y, z=0)
//	f4(*a)
//	f5(x, y=0, *a, **k)
type fixtures struct {
	calls              *counter
	f0, f1, f2, f3, f4 *signature.Func
	f5                 *signature.Func
}

func newFixtures() *fixtures {
	c := &counter{}
	fx := &fixtures{calls: c}

	fx.f0 = signature.MustNew("f0", signature.MustParse(""), func(ctx context.Context, b signature.Bound) (any, error) {
		c.incr()
		return nil, nil
	})
	fx.f1 = signature.MustNew("f1", signature.MustParse("x"), func(ctx context.Context, b signature.Bound) (any, error) {
		c.incr()
		return b.Value("x"), nil
	})
	fx.f2 = signature.MustNew("f2", signature.MustParse("x, y=0"), func(ctx context.Context, b signature.Bound) (any, error) {
		c.incr()
		return []any{b.Value("x"), b.Value("y")}, nil
	})
	fx.f3 = signature.MustNew("f3", signature.MustParse("x, y, z=0"), func(ctx context.Context, b signature.Bound) (any, error) {
		c.incr()
		return []any{b.Value("x"), b.Value("y"), b.Value("z")}, nil
	})
	fx.f4 = signature.MustNew("f4", signature.MustParse("*a"), func(ctx context.Context, b signature.Bound) (any, error) {
		c.incr()
		return b.Extra, nil
	})
	fx.f5 = signature.MustNew("f5", signature.MustParse("x, y=0, *a, **k"), func(ctx context.Context, b signature.Bound) (any, error) {
		c.incr()
		return []any{b.Value("x"), b.Value("y"), b.Extra, b.ExtraNamed}, nil
	})
	return fx
}

// multicall calls fn ten times with args, checks the number of underlying
// invocations and that every result equals the first, and returns it.
func multicall(t testing.TB, c *counter, fn signature.Callable, args signature.Args, wantCalls int64) any {
	t.Helper()
	c.reset()

	results := make([]any, 0, 10)
	for i := 0; i < 10; i++ {
		r, err := fn.Call(context.Background(), args)
		require.NoError(t, err)
		results = append(results, r)
	}

	assert.Equal(t, wantCalls, c.count(), "underlying invocations")
	for _, r := range results {
		assert.Equal(t, results[0], r, "memoized function must be deterministic")
	}
	return results[0]
}

// assertMemoizedOK checks that a fresh wrapper of fn built with opts returns
// what fn returns while invoking it once for ten identical calls.
func assertMemoizedOK(t testing.TB, c *counter, fn signature.Callable, args signature.Args, opts ...Option) {
	t.Helper()
	m, err := Memoize(fn, opts...)
	require.NoError(t, err)

	want := multicall(t, c, fn, args, 10)
	got := multicall(t, c, m, args, 1)
	assert.Equal(t, want, got)
}

// call is shorthand for building Args from positional values and name/value pairs.
func call(positional []any, named ...any) signature.Args {
	args := signature.Pos(positional...)
	for i := 0; i+1 < len(named); i += 2 {
		args = args.With(named[i].(string), named[i+1])
	}
	return args
}

func pos(values ...any) []any {
	return values
}

func miniredisServer(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	return miniredis.RunT(t)
}

func redisClient(t *testing.T, addr string) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// newRedisStore starts an in-memory Redis server and returns a store on it.
func newRedisStore(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredisServer(t)
	store, err := cache.NewRedis(redisClient(t, mr.Addr()))
	require.NoError(t, err)
	return store, mr
}
