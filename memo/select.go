package memo

import "github.com/jonwraymond/memoized/signature"

// Plan is the outcome of strategy selection.
type Plan struct {
	// Kind is the selected key strategy.
	Kind Kind

	// Named reports whether calls may pass arguments by name.
	Named bool

	// Preserve reports whether the wrapper exposes the original signature.
	Preserve bool
}

// Select chooses the key strategy for a callable of the given shape.
//
// It is a pure function of its inputs; o should start from DefaultOptions.
// A Plan is returned for every shape. Whether preservation can actually be
// honored is checked by Memoize.
func Select(shape signature.Shape, o Options) Plan {
	external := o.Cache != nil

	if o.PreserveSignature {
		if !o.Hashable {
			return Plan{Kind: NonHashable, Named: true, Preserve: true}
		}
		return Plan{Kind: PositionalAndNamed, Named: true, Preserve: true}
	}

	allowNamed := shape.HasDefaults
	if o.AllowNamed != nil {
		allowNamed = *o.AllowNamed
	}
	if allowNamed || shape.HasVariadicNamed {
		if !o.Hashable {
			return Plan{Kind: NonHashable, Named: true}
		}
		return Plan{Kind: PositionalAndNamed, Named: true}
	}

	if shape.PositionalCount > 1 || shape.HasVariadicPositional || shape.HasDefaults ||
		!o.Hashable || (shape.PositionalCount == 0 && external) {
		if !o.Hashable {
			return Plan{Kind: NonHashable}
		}
		return Plan{Kind: PositionalOnly}
	}

	if shape.PositionalCount == 1 {
		if o.IsMethod || external {
			return Plan{Kind: OneArgGeneral}
		}
		return Plan{Kind: OneArgFast}
	}

	return Plan{Kind: ZeroArgFast}
}

// convention returns the parameter list a non-preserving wrapper accepts.
func convention(plan Plan, original signature.Signature) signature.Signature {
	switch {
	case plan.Kind == ZeroArgFast:
		return signature.Signature{}
	case plan.Kind == OneArgFast || plan.Kind == OneArgGeneral:
		return signature.Signature{Params: []signature.Param{signature.Required(original.Params[0].Name)}}
	case plan.Named:
		return signature.Signature{VarArgs: "args", VarNamed: "kwargs"}
	default:
		return signature.Signature{VarArgs: "args"}
	}
}
