package signature

import (
	"context"
	"fmt"
)

// Callable is a function with a declared parameter list.
//
// Contract:
// - Concurrency: Call may be invoked concurrently if the implementation allows it.
// - Context: ctx is passed through to the implementation unchanged.
// - Errors: argument mismatches are reported as ArgumentError; any other error
// comes from the implementation itself.
type Callable interface {
	// Signature returns the declared parameter list.
	Signature() Signature

	// Call invokes the callable.
	Call(ctx context.Context, args Args) (any, error)
}

// Namer is implemented by callables that carry a name for errors and telemetry.
type Namer interface {
	Name() string
}

// NameOf returns c's name, or "" if it has none.
func NameOf(c Callable) string {
	if n, ok := c.(Namer); ok {
		return n.Name()
	}
	return ""
}

// CallFunc is the signature of Callable.Call as a plain function.
type CallFunc func(ctx context.Context, args Args) (any, error)

// Body implements a Func. It receives arguments already bound to the
// declared parameters.
type Body func(ctx context.Context, args Bound) (any, error)

// Func is a Callable built from a declared Signature and a Body.
type Func struct {
	name string
	sig  Signature
	body Body
}

// New creates a Func. The signature is validated and copied.
func New(name string, sig Signature, body Body) (*Func, error) {
	if body == nil {
		return nil, ErrNilBody
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	return &Func{name: name, sig: sig.Clone(), body: body}, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, sig Signature, body Body) *Func {
	f, err := New(name, sig, body)
	if err != nil {
		panic(fmt.Sprintf("signature: MustNew(%q): %v", name, err))
	}
	return f
}

// Name returns the callable's name.
func (f *Func) Name() string {
	return f.name
}

// Signature returns a copy of the declared parameter list.
func (f *Func) Signature() Signature {
	return f.sig.Clone()
}

// Call binds args and runs the body.
func (f *Func) Call(ctx context.Context, args Args) (any, error) {
	b, err := f.sig.Bind(f.name, args)
	if err != nil {
		return nil, err
	}
	return f.body(ctx, b)
}

var _ Callable = (*Func)(nil)
