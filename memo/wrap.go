package memo

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/jonwraymond/memoized/signature"
)

var errorType = reflect.TypeFor[error]()

// Wrap memoizes the Go function fn and returns a function of the same type.
//
// A leading context.Context parameter receives the caller's context and is
// not part of the key. When fn's last result is an error, failures (including
// argument errors) are returned through it; otherwise they panic. If any
// parameter type is not comparable, arguments are keyed by their encoding as
// with WithUnhashableArgs. Hits from stores returning cache.Raw are decoded
// as JSON into fn's result types.
func Wrap[F any](fn F, opts ...Option) (F, error) {
	var zero F

	g, err := signature.FromFunc(fn)
	if err != nil {
		return zero, err
	}
	typ := g.Type()

	defaults := []Option{WithDecoder(typedDecoder(g.Results()))}
	if !comparableParams(typ, g.TakesContext()) {
		defaults = append(defaults, WithUnhashableArgs())
	}

	m, err := Memoize(g, append(defaults, opts...)...)
	if err != nil {
		return zero, err
	}

	wrapped := reflect.MakeFunc(typ, func(in []reflect.Value) []reflect.Value {
		ctx := context.Background()
		if g.TakesContext() {
			if !in[0].IsNil() {
				ctx = in[0].Interface().(context.Context)
			}
			in = in[1:]
		}

		args := make([]any, 0, len(in))
		for i, v := range in {
			if typ.IsVariadic() && i == len(in)-1 {
				for j := 0; j < v.Len(); j++ {
					args = append(args, v.Index(j).Interface())
				}
				continue
			}
			args = append(args, v.Interface())
		}

		res, err := m.Call(ctx, signature.Pos(args...))
		return resultValues(typ, g, res, err)
	})
	return wrapped.Interface().(F), nil
}

// MustWrap is like Wrap but panics on error.
func MustWrap[F any](fn F, opts ...Option) F {
	w, err := Wrap(fn, opts...)
	if err != nil {
		panic(fmt.Sprintf("memo: MustWrap: %v", err))
	}
	return w
}

func comparableParams(typ reflect.Type, takesContext bool) bool {
	first := 0
	if takesContext {
		first = 1
	}
	for i := first; i < typ.NumIn(); i++ {
		t := typ.In(i)
		if typ.IsVariadic() && i == typ.NumIn()-1 {
			t = t.Elem()
		}
		if !t.Comparable() {
			return false
		}
	}
	return true
}

func resultValues(typ reflect.Type, g *signature.GoFunc, res any, err error) []reflect.Value {
	results := g.Results()
	out := make([]reflect.Value, 0, typ.NumOut())

	if err != nil {
		if !g.ReturnsError() {
			panic(err)
		}
		for _, t := range results {
			out = append(out, reflect.Zero(t))
		}
		return append(out, reflect.ValueOf(&err).Elem())
	}

	var values []any
	switch len(results) {
	case 0:
	case 1:
		values = []any{res}
	default:
		values = res.([]any)
	}
	for i, t := range results {
		v, convErr := signature.ConvertTo(values[i], t)
		if convErr != nil {
			panic(fmt.Errorf("memo: result %d of %s: %w", i, g.Name(), convErr))
		}
		out = append(out, v)
	}
	if g.ReturnsError() {
		out = append(out, reflect.Zero(errorType))
	}
	return out
}

// typedDecoder decodes JSON stored results into the given result types.
// Several results are stored as a JSON array.
func typedDecoder(results []reflect.Type) Decoder {
	decodeOne := func(raw []byte, t reflect.Type) (any, error) {
		p := reflect.New(t)
		if err := json.Unmarshal(raw, p.Interface()); err != nil {
			return nil, err
		}
		return p.Elem().Interface(), nil
	}

	return func(raw []byte) (any, error) {
		switch len(results) {
		case 0:
			return nil, nil
		case 1:
			return decodeOne(raw, results[0])
		}

		var parts []json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil {
			return nil, err
		}
		if len(parts) != len(results) {
			return nil, fmt.Errorf("memo: stored %d results, want %d", len(parts), len(results))
		}
		values := make([]any, len(parts))
		for i, part := range parts {
			v, err := decodeOne(part, results[i])
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}
}
