package cache

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

var textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

// Encode produces a deterministic encoding of v.
//
// Structurally equal values encode identically: map entries are sorted by
// their encoded key, struct fields follow declaration order and pointers are
// followed to their targets. Every scalar carries its type, so 1, 1.0 and "1"
// differ. Values implementing encoding.TextMarshaler encode through it.
// Functions, channels and unsafe pointers fail with ErrUnencodable; cyclic
// values fail with ErrCyclicValue.
func Encode(v any) ([]byte, error) {
	var e encoder
	if err := e.encode(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type visit struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type encoder struct {
	buf  []byte
	path map[visit]bool
}

func (e *encoder) encode(v reflect.Value) error {
	if !v.IsValid() {
		e.buf = append(e.buf, "nil"...)
		return nil
	}

	t := v.Type()
	if t.Implements(textMarshalerType) && v.CanInterface() && !isNilable(v) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnencodable, t, err)
		}
		e.tag(t)
		e.buf = append(e.buf, '~')
		e.buf = strconv.AppendQuote(e.buf, string(text))
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		e.tag(t)
		e.buf = append(e.buf, '(')
		e.buf = strconv.AppendBool(e.buf, v.Bool())
		e.buf = append(e.buf, ')')
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.tag(t)
		e.buf = append(e.buf, '(')
		e.buf = strconv.AppendInt(e.buf, v.Int(), 10)
		e.buf = append(e.buf, ')')
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.tag(t)
		e.buf = append(e.buf, '(')
		e.buf = strconv.AppendUint(e.buf, v.Uint(), 10)
		e.buf = append(e.buf, ')')
	case reflect.Float32, reflect.Float64:
		e.tag(t)
		e.buf = append(e.buf, '(')
		e.buf = strconv.AppendFloat(e.buf, v.Float(), 'g', -1, 64)
		e.buf = append(e.buf, ')')
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		e.tag(t)
		e.buf = append(e.buf, '(')
		e.buf = strconv.AppendFloat(e.buf, real(c), 'g', -1, 64)
		e.buf = append(e.buf, ',')
		e.buf = strconv.AppendFloat(e.buf, imag(c), 'g', -1, 64)
		e.buf = append(e.buf, ')')
	case reflect.String:
		e.tag(t)
		e.buf = append(e.buf, '(')
		e.buf = strconv.AppendQuote(e.buf, v.String())
		e.buf = append(e.buf, ')')
	case reflect.Interface:
		if v.IsNil() {
			e.buf = append(e.buf, "nil"...)
			return nil
		}
		return e.encode(v.Elem())
	case reflect.Pointer:
		if v.IsNil() {
			e.tag(t)
			e.buf = append(e.buf, "(nil)"...)
			return nil
		}
		return e.within(visit{typ: t, ptr: v.Pointer()}, func() error {
			e.buf = append(e.buf, '&')
			return e.encode(v.Elem())
		})
	case reflect.Slice:
		if v.IsNil() {
			e.tag(t)
			e.buf = append(e.buf, "(nil)"...)
			return nil
		}
		return e.within(visit{typ: t, ptr: v.Pointer(), len: v.Len()}, func() error {
			return e.sequence(v)
		})
	case reflect.Array:
		return e.sequence(v)
	case reflect.Map:
		if v.IsNil() {
			e.tag(t)
			e.buf = append(e.buf, "(nil)"...)
			return nil
		}
		return e.within(visit{typ: t, ptr: v.Pointer()}, func() error {
			return e.mapping(v)
		})
	case reflect.Struct:
		e.tag(t)
		e.buf = append(e.buf, '{')
		for i := 0; i < v.NumField(); i++ {
			if i > 0 {
				e.buf = append(e.buf, ',')
			}
			e.buf = append(e.buf, t.Field(i).Name...)
			e.buf = append(e.buf, ':')
			if err := e.encode(v.Field(i)); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, '}')
	default:
		return fmt.Errorf("%w: %s", ErrUnencodable, t)
	}
	return nil
}

func (e *encoder) sequence(v reflect.Value) error {
	e.tag(v.Type())
	e.buf = append(e.buf, '[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		if err := e.encode(v.Index(i)); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, ']')
	return nil
}

func (e *encoder) mapping(v reflect.Value) error {
	type entry struct {
		key, value []byte
	}

	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := e.sub(iter.Key())
		if err != nil {
			return err
		}
		val, err := e.sub(iter.Value())
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: k, value: val})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return bytes.Compare(a.key, b.key)
	})

	e.tag(v.Type())
	e.buf = append(e.buf, '{')
	for i, en := range entries {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = append(e.buf, en.key...)
		e.buf = append(e.buf, ':')
		e.buf = append(e.buf, en.value...)
	}
	e.buf = append(e.buf, '}')
	return nil
}

// sub encodes v into a separate buffer, sharing the cycle-detection path.
func (e *encoder) sub(v reflect.Value) ([]byte, error) {
	inner := encoder{path: e.path}
	err := inner.encode(v)
	e.path = inner.path
	return inner.buf, err
}

// within runs fn with key marked as being on the current path.
func (e *encoder) within(key visit, fn func() error) error {
	if e.path[key] {
		return fmt.Errorf("%w: %s", ErrCyclicValue, key.typ)
	}
	if e.path == nil {
		e.path = make(map[visit]bool)
	}
	e.path[key] = true
	defer delete(e.path, key)
	return fn()
}

func (e *encoder) tag(t reflect.Type) {
	if t.Name() != "" && t.PkgPath() != "" {
		e.buf = append(e.buf, t.PkgPath()...)
		e.buf = append(e.buf, '.')
		e.buf = append(e.buf, t.Name()...)
		return
	}
	e.buf = append(e.buf, t.String()...)
}

func isNilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}
