package signature

import "context"

type preserved struct {
	name string
	sig  Signature
	call CallFunc
}

// Preserve returns a Callable that declares original's parameter list but
// runs call.
//
// Each call is bound against that list before call sees it, so call receives
// canonical arguments: declared parameters by position with defaults applied,
// then surplus positionals, and only surplus named values by name. Calls that
// do not fit the list fail with an ArgumentError, as original would.
func Preserve(original Callable, call CallFunc) (Callable, error) {
	if original == nil || call == nil {
		return nil, ErrNilCallable
	}
	return &preserved{
		name: NameOf(original),
		sig:  original.Signature(),
		call: call,
	}, nil
}

func (p *preserved) Name() string {
	return p.name
}

func (p *preserved) Signature() Signature {
	return p.sig.Clone()
}

func (p *preserved) Call(ctx context.Context, args Args) (any, error) {
	b, err := p.sig.Bind(p.name, args)
	if err != nil {
		return nil, err
	}
	return p.call(ctx, b.Args())
}
