package signature

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Args are the arguments of a single call.
type Args struct {
	Positional []any
	Named      map[string]any
}

// Pos returns Args holding only positional values.
func Pos(values ...any) Args {
	return Args{Positional: values}
}

// With returns a copy of a with name bound to value. a is not modified.
func (a Args) With(name string, value any) Args {
	named := make(map[string]any, len(a.Named)+1)
	maps.Copy(named, a.Named)
	named[name] = value
	return Args{Positional: a.Positional, Named: named}
}

// HasNamed reports whether any argument was passed by name.
func (a Args) HasNamed() bool {
	return len(a.Named) > 0
}

// SortedNames returns the names of the named arguments in ascending order.
func (a Args) SortedNames() []string {
	return slices.Sorted(maps.Keys(a.Named))
}

// Bound is the result of binding Args to a Signature.
type Bound struct {
	sig    Signature
	values []any

	// Extra holds positional values collected by the variadic positional parameter.
	Extra []any

	// ExtraNamed holds named values collected by the variadic named parameter.
	ExtraNamed map[string]any
}

// Get returns the value bound to a declared parameter.
func (b Bound) Get(name string) (any, bool) {
	i := b.sig.Index(name)
	if i < 0 {
		return nil, false
	}
	return b.values[i], true
}

// Value returns the value bound to a declared parameter, or nil.
func (b Bound) Value(name string) any {
	v, _ := b.Get(name)
	return v
}

// Values returns the declared parameters' values in declaration order.
func (b Bound) Values() []any {
	return slices.Clone(b.values)
}

// Args re-expresses b as a canonical call: declared parameters and surplus
// positionals by position, surplus named values by name.
func (b Bound) Args() Args {
	pos := make([]any, 0, len(b.values)+len(b.Extra))
	pos = append(pos, b.values...)
	pos = append(pos, b.Extra...)
	var named map[string]any
	if len(b.ExtraNamed) > 0 {
		named = maps.Clone(b.ExtraNamed)
	}
	return Args{Positional: pos, Named: named}
}

// Bind maps args onto the parameters of s, applying defaults. fn names the
// callable in errors.
func (s Signature) Bind(fn string, args Args) (Bound, error) {
	n := len(s.Params)
	if len(args.Positional) > n && s.VarArgs == "" {
		return Bound{}, Argf(fn, "takes %d positional argument%s but %d were given",
			n, plural(n), len(args.Positional))
	}

	b := Bound{sig: s, values: make([]any, n)}
	set := make([]bool, n)
	for i, v := range args.Positional {
		if i < n {
			b.values[i] = v
			set[i] = true
			continue
		}
		b.Extra = append(b.Extra, v)
	}

	for _, name := range args.SortedNames() {
		v := args.Named[name]
		if i := s.Index(name); i >= 0 {
			if set[i] {
				return Bound{}, Argf(fn, "got multiple values for argument %q", name)
			}
			b.values[i] = v
			set[i] = true
			continue
		}
		if s.VarNamed == "" {
			return Bound{}, Argf(fn, "got an unexpected keyword argument %q", name)
		}
		if b.ExtraNamed == nil {
			b.ExtraNamed = make(map[string]any)
		}
		b.ExtraNamed[name] = v
	}

	var missing []string
	for i, p := range s.Params {
		if set[i] {
			continue
		}
		if p.HasDefault {
			b.values[i] = p.Default
			continue
		}
		missing = append(missing, strconv.Quote(p.Name))
	}
	if len(missing) > 0 {
		return Bound{}, Argf(fn, "missing %d required argument%s: %s",
			len(missing), plural(len(missing)), strings.Join(missing, ", "))
	}
	return b, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
