package signature

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Param is a named positional parameter.
type Param struct {
	Name       string
	Default    any
	HasDefault bool
}

// Required returns a parameter without a default.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional returns a parameter that takes def when the caller omits it.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Signature is a declared parameter list.
type Signature struct {
	// Params are the named positional parameters, in declaration order.
	Params []Param

	// VarArgs names the variadic positional collector. Empty if absent.
	VarArgs string

	// VarNamed names the variadic named collector. Empty if absent.
	VarNamed string
}

// Shape summarizes the structure of a Signature.
type Shape struct {
	PositionalCount       int
	HasVariadicPositional bool
	HasVariadicNamed      bool
	HasDefaults           bool
}

// Shape derives the structural summary of s.
func (s Signature) Shape() Shape {
	sh := Shape{
		PositionalCount:       len(s.Params),
		HasVariadicPositional: s.VarArgs != "",
		HasVariadicNamed:      s.VarNamed != "",
	}
	for _, p := range s.Params {
		if p.HasDefault {
			sh.HasDefaults = true
			break
		}
	}
	return sh
}

// Validate checks that names are present and unique and that no required
// parameter follows a defaulted one.
func (s Signature) Validate() error {
	seen := make(map[string]bool, len(s.Params)+2)
	defaulted := false
	for _, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: empty parameter name", ErrInvalidSignature)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidSignature, p.Name)
		}
		seen[p.Name] = true

		if p.HasDefault {
			defaulted = true
		} else if defaulted {
			return fmt.Errorf("%w: non-default parameter %q follows default parameter", ErrInvalidSignature, p.Name)
		}
	}
	for _, name := range []string{s.VarArgs, s.VarNamed} {
		if name == "" {
			continue
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidSignature, name)
		}
		seen[name] = true
	}
	return nil
}

// Index returns the position of the named parameter, or -1.
func (s Signature) Index(name string) int {
	for i, p := range s.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Clone returns a copy of s that shares no state with it.
func (s Signature) Clone() Signature {
	s.Params = slices.Clone(s.Params)
	return s
}

// Equal reports whether s and o declare the same names, defaults and
// variadic markers.
func (s Signature) Equal(o Signature) bool {
	if s.VarArgs != o.VarArgs || s.VarNamed != o.VarNamed || len(s.Params) != len(o.Params) {
		return false
	}
	for i, a := range s.Params {
		b := o.Params[i]
		if a.Name != b.Name || a.HasDefault != b.HasDefault || !reflect.DeepEqual(a.Default, b.Default) {
			return false
		}
	}
	return true
}

// String renders s in the form accepted by Parse, e.g. `x, y=0, *args, **kwargs`.
func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+2)
	for _, p := range s.Params {
		if p.HasDefault {
			parts = append(parts, p.Name+"="+formatLiteral(p.Default))
		} else {
			parts = append(parts, p.Name)
		}
	}
	if s.VarArgs != "" {
		parts = append(parts, "*"+s.VarArgs)
	}
	if s.VarNamed != "" {
		parts = append(parts, "**"+s.VarNamed)
	}
	return strings.Join(parts, ", ")
}

func formatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(x)
	}
}
