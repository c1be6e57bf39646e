package signature

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// GoFunc is a Callable derived from a plain Go function.
//
// A leading context.Context parameter receives the call's ctx and is not part
// of the declared parameter list. A trailing error result becomes Call's error.
// The remaining results are returned as nil (none), the value itself (one) or
// an []any (several).
type GoFunc struct {
	*Func
	fn           reflect.Value
	typ          reflect.Type
	takesContext bool
	returnsError bool
	results      []reflect.Type
}

// FromFunc derives a Callable from fn. names, if given, name the declared
// parameters (including a variadic one) in order; otherwise parameters are
// named arg0, arg1, ... and a variadic parameter is named rest.
func FromFunc(fn any, names ...string) (*GoFunc, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}
	typ := rv.Type()

	g := &GoFunc{fn: rv, typ: typ}
	first := 0
	if typ.NumIn() > 0 && typ.In(0) == contextType {
		g.takesContext = true
		first = 1
	}

	declared := typ.NumIn() - first
	if len(names) > 0 && len(names) != declared {
		return nil, fmt.Errorf("%w: %d names for %d parameters", ErrInvalidSignature, len(names), declared)
	}

	var sig Signature
	for i := 0; i < declared; i++ {
		name := fmt.Sprintf("arg%d", i)
		if len(names) > 0 {
			name = names[i]
		}
		if typ.IsVariadic() && i == declared-1 {
			if len(names) == 0 {
				name = "rest"
			}
			sig.VarArgs = name
			continue
		}
		sig.Params = append(sig.Params, Required(name))
	}

	out := typ.NumOut()
	if out > 0 && typ.Out(out-1) == errorType {
		g.returnsError = true
		out--
	}
	for i := 0; i < out; i++ {
		g.results = append(g.results, typ.Out(i))
	}

	f, err := New(funcName(rv), sig, g.invoke)
	if err != nil {
		return nil, err
	}
	g.Func = f
	return g, nil
}

// Type returns the Go type of the underlying function.
func (g *GoFunc) Type() reflect.Type {
	return g.typ
}

// TakesContext reports whether the function's first parameter is a context.Context.
func (g *GoFunc) TakesContext() bool {
	return g.takesContext
}

// ReturnsError reports whether the function's last result is an error.
func (g *GoFunc) ReturnsError() bool {
	return g.returnsError
}

// Results returns the types of the non-error results.
func (g *GoFunc) Results() []reflect.Type {
	return g.results
}

func (g *GoFunc) invoke(ctx context.Context, b Bound) (any, error) {
	in := make([]reflect.Value, 0, g.typ.NumIn()+len(b.Extra))
	offset := 0
	if g.takesContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
		offset = 1
	}

	for i, v := range b.values {
		rv, err := convertArg(v, g.typ.In(offset+i))
		if err != nil {
			return nil, Argf(g.Name(), "argument %q: %v", b.sig.Params[i].Name, err)
		}
		in = append(in, rv)
	}

	if g.typ.IsVariadic() {
		elem := g.typ.In(g.typ.NumIn() - 1).Elem()
		for i, v := range b.Extra {
			rv, err := convertArg(v, elem)
			if err != nil {
				return nil, Argf(g.Name(), "argument %s[%d]: %v", b.sig.VarArgs, i, err)
			}
			in = append(in, rv)
		}
	}

	return g.unpack(g.fn.Call(in))
}

func (g *GoFunc) unpack(out []reflect.Value) (any, error) {
	var err error
	if g.returnsError {
		last := out[len(out)-1]
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	}
	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}
	return values, err
}

// ConvertTo returns v as a reflect.Value of type t. nil becomes t's zero value
// for nilable kinds; numeric values convert between integer and float kinds.
func ConvertTo(v any, t reflect.Type) (reflect.Value, error) {
	return convertArg(v, t)
}

func convertArg(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if numericConvertible(rv.Kind(), t.Kind()) || rv.Kind() == t.Kind() {
		if rv.CanConvert(t) {
			return rv.Convert(t), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func numericConvertible(from, to reflect.Kind) bool {
	switch {
	case isInteger(from) && isInteger(to):
		return true
	case isInteger(from) && isFloat(to):
		return true
	case isFloat(from) && isFloat(to):
		return true
	}
	return false
}

func isInteger(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Int64) || (k >= reflect.Uint && k <= reflect.Uintptr)
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func funcName(rv reflect.Value) string {
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
