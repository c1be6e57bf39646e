package memo

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/jonwraymond/memoized/cache"
	"github.com/jonwraymond/memoized/signature"
)

// Kind identifies a key strategy.
type Kind int

const (
	// ZeroArgFast caches the single result of a parameterless function.
	ZeroArgFast Kind = iota

	// OneArgFast keys on the sole argument and uses cache.Map.Fetch.
	OneArgFast

	// OneArgGeneral keys on the sole argument with explicit Get and Set.
	OneArgGeneral

	// PositionalOnly keys on the positional values and rejects named arguments.
	PositionalOnly

	// PositionalAndNamed keys on the positional values plus the named values
	// sorted by name.
	PositionalAndNamed

	// NonHashable keys on the canonical encoding of the arguments.
	NonHashable
)

var kindNames = [...]string{
	ZeroArgFast:        "zero_arg_fast",
	OneArgFast:         "one_arg_fast",
	OneArgGeneral:      "one_arg_general",
	PositionalOnly:     "positional_only",
	PositionalAndNamed: "positional_and_named",
	NonHashable:        "non_hashable",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Fast reports whether k uses the fused compute-on-miss primitive.
func (k Kind) Fast() bool {
	return k == ZeroArgFast || k == OneArgFast
}

// keyFunc turns a call's arguments into a store key. fn names the wrapper in
// errors.
type keyFunc func(fn string, args signature.Args) (any, error)

// zeroKey is the key of every ZeroArgFast call.
type zeroKey struct{}

// pair is one named argument in a callKey.
type pair struct {
	Name  string
	Value any
}

// callKey is the PositionalAndNamed key. Positional is an [N]any array and
// Named a [M]pair array sorted by name, so equal calls give equal keys
// whatever order the names were passed in.
type callKey struct {
	Positional any
	Named      any
}

// encodedCall is what NonHashable encodes when named arguments are accepted.
type encodedCall struct {
	Positional []any
	Named      map[string]any
}

var (
	anyType  = reflect.TypeFor[any]()
	pairType = reflect.TypeFor[pair]()
)

func keyFor(plan Plan, params []signature.Param) keyFunc {
	switch plan.Kind {
	case ZeroArgFast:
		return zeroArgKey
	case OneArgFast, OneArgGeneral:
		name := "arg"
		if len(params) > 0 {
			name = params[0].Name
		}
		return oneArgKey(name)
	case PositionalOnly:
		return positionalKey
	case PositionalAndNamed:
		return namedKey
	default:
		return encodedKey(plan.Named)
	}
}

func zeroArgKey(fn string, args signature.Args) (any, error) {
	if err := positionalOnly(fn, args); err != nil {
		return nil, err
	}
	if n := len(args.Positional); n != 0 {
		return nil, signature.Argf(fn, "takes 0 positional arguments but %d were given", n)
	}
	return zeroKey{}, nil
}

func oneArgKey(param string) keyFunc {
	return func(fn string, args signature.Args) (any, error) {
		if err := positionalOnly(fn, args); err != nil {
			return nil, err
		}
		switch n := len(args.Positional); {
		case n == 0:
			return nil, signature.Argf(fn, "missing 1 required positional argument: %q", param)
		case n > 1:
			return nil, signature.Argf(fn, "takes 1 positional argument but %d were given", n)
		}
		v := args.Positional[0]
		if !hashable(v) {
			return nil, unhashable(fn, "argument 0", v)
		}
		return v, nil
	}
}

func positionalKey(fn string, args signature.Args) (any, error) {
	if err := positionalOnly(fn, args); err != nil {
		return nil, err
	}
	return tuple(fn, args.Positional)
}

func namedKey(fn string, args signature.Args) (any, error) {
	pos, err := tuple(fn, args.Positional)
	if err != nil {
		return nil, err
	}
	if !args.HasNamed() {
		return callKey{Positional: pos}, nil
	}

	names := args.SortedNames()
	pairs := reflect.New(reflect.ArrayOf(len(names), pairType)).Elem()
	for i, name := range names {
		v := args.Named[name]
		if !hashable(v) {
			return nil, unhashable(fn, fmt.Sprintf("argument %q", name), v)
		}
		pairs.Index(i).Set(reflect.ValueOf(pair{Name: name, Value: v}))
	}
	return callKey{Positional: pos, Named: pairs.Interface()}, nil
}

func encodedKey(named bool) keyFunc {
	return func(fn string, args signature.Args) (any, error) {
		pos := slices.Clone(args.Positional)
		if pos == nil {
			pos = []any{}
		}

		var v any = pos
		if named {
			call := encodedCall{Positional: pos}
			if args.HasNamed() {
				call.Named = args.Named
			}
			v = call
		} else if err := positionalOnly(fn, args); err != nil {
			return nil, err
		}

		b, err := cache.Encode(v)
		if err != nil {
			return nil, &signature.ArgumentError{
				Func:   fn,
				Reason: "arguments cannot be encoded",
				Err:    fmt.Errorf("%w: %w", ErrUnhashable, err),
			}
		}
		return string(b), nil
	}
}

func positionalOnly(fn string, args signature.Args) error {
	if args.HasNamed() {
		return signature.Argf(fn, "got an unexpected keyword argument %q", args.SortedNames()[0])
	}
	return nil
}

// tuple builds an [N]any array holding values.
func tuple(fn string, values []any) (any, error) {
	for i, v := range values {
		if !hashable(v) {
			return nil, unhashable(fn, fmt.Sprintf("argument %d", i), v)
		}
	}

	switch len(values) {
	case 0:
		return [0]any{}, nil
	case 1:
		return [1]any{values[0]}, nil
	case 2:
		return [2]any{values[0], values[1]}, nil
	case 3:
		return [3]any{values[0], values[1], values[2]}, nil
	}

	arr := reflect.New(reflect.ArrayOf(len(values), anyType)).Elem()
	for i, v := range values {
		if v != nil {
			arr.Index(i).Set(reflect.ValueOf(v))
		}
	}
	return arr.Interface(), nil
}

func hashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}

func unhashable(fn, what string, v any) error {
	return &signature.ArgumentError{
		Func:   fn,
		Reason: fmt.Sprintf("%s: unhashable type %T", what, v),
		Err:    ErrUnhashable,
	}
}
