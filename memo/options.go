package memo

import (
	"encoding/json"

	"github.com/jonwraymond/memoized/cache"
	"github.com/jonwraymond/memoized/observe"
	"github.com/jonwraymond/memoized/signature"
)

// Preserver produces a Callable that declares original's parameter list and
// delegates to call. original is named after the wrapper, so NameOf(original)
// honours WithName. signature.Preserve is the default.
type Preserver func(original signature.Callable, call signature.CallFunc) (signature.Callable, error)

// Decoder turns a cache.Raw hit back into a result value.
type Decoder func(raw []byte) (any, error)

// DecodeJSON is the default Decoder. It unmarshals into an untyped value, so
// numbers come back as float64 and objects as map[string]any.
func DecodeJSON(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Options configures Memoize.
type Options struct {
	// IsMethod marks the first parameter as a receiver. It only keeps
	// one-parameter callables off the fast path.
	IsMethod bool

	// AllowNamed permits named arguments. nil infers it from whether the
	// callable has defaults.
	AllowNamed *bool

	// Hashable reports whether every argument is comparable. When false keys
	// are built from the canonical encoding of the arguments.
	Hashable bool

	// PreserveSignature makes the wrapper expose the original parameter list
	// and normalize calls against it.
	PreserveSignature bool

	// Cache is the backing store. nil creates a fresh cache.Map per wrapper.
	Cache cache.Store

	// Preserver implements PreserveSignature.
	Preserver Preserver

	// Coalesce makes concurrent misses for one key share one invocation.
	Coalesce bool

	// Name overrides the callable's name in errors and telemetry.
	Name string

	// Middleware instruments invocations and lookups. nil disables it.
	Middleware *observe.Middleware

	// Logger receives store and decode failures. nil falls back to the
	// middleware's logger, then to a no-op logger.
	Logger observe.Logger

	// Decode converts cache.Raw hits. nil means DecodeJSON.
	Decode Decoder
}

// DefaultOptions returns the options Memoize starts from.
func DefaultOptions() Options {
	return Options{
		Hashable:  true,
		Preserver: signature.Preserve,
	}
}

// Option configures Memoize.
type Option func(*Options)

// WithMethod marks the callable as a method.
func WithMethod() Option {
	return func(o *Options) {
		o.IsMethod = true
	}
}

// WithAllowNamed sets whether named arguments are accepted.
func WithAllowNamed(allow bool) Option {
	return func(o *Options) {
		o.AllowNamed = &allow
	}
}

// WithUnhashableArgs keys calls on the canonical encoding of their
// arguments, so slices, maps and other non-comparable values are accepted.
func WithUnhashableArgs() Option {
	return func(o *Options) {
		o.Hashable = false
	}
}

// WithPreservedSignature makes the wrapper expose the callable's own
// parameter list.
func WithPreservedSignature() Option {
	return func(o *Options) {
		o.PreserveSignature = true
	}
}

// WithCache sets the backing store. The wrapper borrows it; the caller owns
// its lifetime and synchronization.
func WithCache(store cache.Store) Option {
	return func(o *Options) {
		o.Cache = store
	}
}

// WithPreserver replaces the signature preserver. nil disables preservation.
func WithPreserver(p Preserver) Option {
	return func(o *Options) {
		o.Preserver = p
	}
}

// WithCoalescing enables call coalescing.
func WithCoalescing() Option {
	return func(o *Options) {
		o.Coalesce = true
	}
}

// WithName sets the wrapper name.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithMiddleware instruments the wrapper.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *Options) {
		o.Middleware = mw
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithDecoder sets the decoder for cache.Raw hits.
func WithDecoder(d Decoder) Option {
	return func(o *Options) {
		o.Decode = d
	}
}
