package memo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonwraymond/memoized/cache"
	"github.com/jonwraymond/memoized/observe"
	"github.com/jonwraymond/memoized/signature"
)

// Memoized is a memoizing wrapper around a Callable.
//
// Contract:
//   - Concurrency: Call is safe for concurrent use when the store is. Without
//     coalescing, concurrent misses for one key may each invoke the callable;
//     the last store wins.
//   - Context: ctx is passed to the callable and the store unchanged.
//   - Errors: the callable's errors are returned unchanged and never cached.
//     Calls that do not fit the wrapper fail with a *signature.ArgumentError.
//     Store failures are logged and never mask a computed result.
type Memoized struct {
	fn     signature.Callable
	meta   observe.FuncMeta
	plan   Plan
	sig    signature.Signature
	store  cache.Store
	fetch  *cache.Map
	key    keyFunc
	entry  signature.CallFunc
	invoke signature.CallFunc
	decode Decoder
	logger observe.Logger
	mw     *observe.Middleware
	group  *flights
}

// Memoize wraps fn with the key strategy its shape and opts call for.
func Memoize(fn signature.Callable, opts ...Option) (*Memoized, error) {
	if fn == nil {
		return nil, ErrNilCallable
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.PreserveSignature && o.Preserver == nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, ErrPreserverUnavailable)
	}

	original := fn.Signature()
	plan := Select(original.Shape(), o)

	name := o.Name
	if name == "" {
		name = signature.NameOf(fn)
	}

	m := &Memoized{
		fn: fn,
		meta: observe.FuncMeta{
			ID:       uuid.NewString(),
			Name:     name,
			Strategy: plan.Kind.String(),
		},
		plan:   plan,
		key:    keyFor(plan, original.Params),
		invoke: fn.Call,
		decode: o.Decode,
		mw:     o.Middleware,
	}
	if m.decode == nil {
		m.decode = DecodeJSON
	}

	if o.Cache != nil {
		m.store = o.Cache
	} else {
		store := cache.NewMap()
		m.store = store
		if plan.Kind.Fast() {
			m.fetch = store
		}
	}

	logger := o.Logger
	if logger == nil && o.Middleware != nil {
		logger = o.Middleware.Logger()
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	m.logger = logger.WithFunc(m.meta)

	if o.Middleware != nil {
		wrapped := o.Middleware.Wrap(func(ctx context.Context, _ observe.FuncMeta, input any) (any, error) {
			return fn.Call(ctx, input.(signature.Args))
		})
		m.invoke = func(ctx context.Context, args signature.Args) (any, error) {
			return wrapped(ctx, m.meta, args)
		}
	}

	if o.Coalesce {
		m.group = newFlights()
	}

	m.entry = m.lookup
	m.sig = convention(plan, original)
	if plan.Preserve {
		p, err := o.Preserver(named{Callable: fn, name: m.meta.Name}, m.lookup)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		m.entry = p.Call
		m.sig = p.Signature()
	}

	return m, nil
}

// named presents a Callable under the wrapper's name, so a preserved
// signature reports argument errors the way the rest of the wrapper does.
type named struct {
	signature.Callable
	name string
}

func (n named) Name() string { return n.name }

// Call looks args up in the store, invoking the callable on a miss.
func (m *Memoized) Call(ctx context.Context, args signature.Args) (any, error) {
	return m.entry(ctx, args)
}

// Signature returns the parameter list the wrapper accepts: the original
// one when the signature is preserved, otherwise the strategy's own.
func (m *Memoized) Signature() signature.Signature {
	return m.sig.Clone()
}

// Name returns the wrapper name.
func (m *Memoized) Name() string {
	return m.meta.Name
}

// ID returns the wrapper's unique identifier.
func (m *Memoized) ID() string {
	return m.meta.ID
}

// Kind returns the selected key strategy.
func (m *Memoized) Kind() Kind {
	return m.plan.Kind
}

// Plan returns the full selection outcome.
func (m *Memoized) Plan() Plan {
	return m.plan
}

// Store returns the backing store.
func (m *Memoized) Store() cache.Store {
	return m.store
}

// Unwrap returns the memoized callable.
func (m *Memoized) Unwrap() signature.Callable {
	return m.fn
}

func (m *Memoized) lookup(ctx context.Context, args signature.Args) (any, error) {
	key, err := m.key(m.meta.Name, args)
	if err != nil {
		return nil, err
	}

	compute := func() (any, error) {
		return m.invoke(ctx, args)
	}
	if m.group != nil {
		solo := compute
		compute = func() (any, error) { return m.group.do(key, solo) }
	}

	if m.fetch != nil {
		missed := false
		v, err := m.fetch.Fetch(key, func() (any, error) {
			missed = true
			return compute()
		})
		m.recordLookup(ctx, !missed)
		return v, err
	}

	if v, ok := m.store.Get(ctx, key); ok {
		if v, ok := m.decodeHit(ctx, v); ok {
			m.recordLookup(ctx, true)
			return v, nil
		}
	}
	m.recordLookup(ctx, false)

	v, err := compute()
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, key, v); err != nil {
		m.logger.Warn(ctx, "failed to store result", observe.Field{Key: "error", Value: err.Error()})
	}
	return v, nil
}

func (m *Memoized) decodeHit(ctx context.Context, v any) (any, bool) {
	raw, ok := v.(cache.Raw)
	if !ok {
		return v, true
	}
	decoded, err := m.decode(raw)
	if err != nil {
		m.logger.Warn(ctx, "failed to decode stored result", observe.Field{Key: "error", Value: err.Error()})
		return nil, false
	}
	return decoded, true
}

func (m *Memoized) recordLookup(ctx context.Context, hit bool) {
	if m.mw != nil {
		m.mw.RecordLookup(ctx, m.meta, hit)
	}
}

// Ensure Memoized implements Callable
var (
	_ signature.Callable = (*Memoized)(nil)
	_ signature.Namer    = (*Memoized)(nil)
)
