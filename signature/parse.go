package signature

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var paramLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Float", Pattern: `[-+]?\d+\.\d*([eE][-+]?\d+)?`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Stars", Pattern: `\*\*|\*`},
	{Name: "Punct", Pattern: `[,=]`},
	{Name: "whitespace", Pattern: `\s+`},
})

type paramList struct {
	Items []*paramItem `parser:"( @@ ( \",\" @@ )* )?"`
}

type paramItem struct {
	Stars   string   `parser:"@Stars?"`
	Name    string   `parser:"@Ident"`
	Default *literal `parser:"( \"=\" @@ )?"`
}

type literal struct {
	Str   *string  `parser:"  @String"`
	Float *float64 `parser:"| @Float"`
	Int   *int64   `parser:"| @Int"`
	Ident *string  `parser:"| @Ident"`
}

var paramParser = participle.MustBuild[paramList](
	participle.Lexer(paramLexer),
	participle.Unquote("String"),
)

// Parse reads a parameter list such as `x, y=0, *args, **kwargs`.
//
// Defaults may be integers (int), floats (float64), double-quoted strings,
// True/False/true/false and None/nil.
func Parse(src string) (Signature, error) {
	list, err := paramParser.ParseString("", src)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var sig Signature
	for _, item := range list.Items {
		switch item.Stars {
		case "**":
			if item.Default != nil {
				return Signature{}, fmt.Errorf("%w: **%s cannot have a default", ErrInvalidSignature, item.Name)
			}
			if sig.VarNamed != "" {
				return Signature{}, fmt.Errorf("%w: more than one ** parameter", ErrInvalidSignature)
			}
			sig.VarNamed = item.Name
		case "*":
			if item.Default != nil {
				return Signature{}, fmt.Errorf("%w: *%s cannot have a default", ErrInvalidSignature, item.Name)
			}
			if sig.VarNamed != "" {
				return Signature{}, fmt.Errorf("%w: *%s follows **%s", ErrInvalidSignature, item.Name, sig.VarNamed)
			}
			if sig.VarArgs != "" {
				return Signature{}, fmt.Errorf("%w: more than one * parameter", ErrInvalidSignature)
			}
			sig.VarArgs = item.Name
		default:
			if sig.VarArgs != "" || sig.VarNamed != "" {
				return Signature{}, fmt.Errorf("%w: parameter %q follows a variadic parameter", ErrInvalidSignature, item.Name)
			}
			p := Required(item.Name)
			if item.Default != nil {
				v, err := item.Default.value()
				if err != nil {
					return Signature{}, err
				}
				p = Optional(item.Name, v)
			}
			sig.Params = append(sig.Params, p)
		}
	}

	if err := sig.Validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Signature {
	sig, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return sig
}

func (l *literal) value() (any, error) {
	switch {
	case l.Str != nil:
		return *l.Str, nil
	case l.Float != nil:
		return *l.Float, nil
	case l.Int != nil:
		return int(*l.Int), nil
	}
	switch *l.Ident {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "nil":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unknown literal %q", ErrInvalidSignature, *l.Ident)
}
