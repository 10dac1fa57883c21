package clarity

import "fmt"

// Type describes an expected wire shape for encoding validation.
type Type struct {
	Kind   Kind
	Elem   *Type            // list element type
	Fields map[string]*Type // tuple fields
	Inner  *Type            // payload of optional/response types
}

func UintT() *Type      { return &Type{Kind: KindUint} }
func IntT() *Type       { return &Type{Kind: KindInt} }
func BoolT() *Type      { return &Type{Kind: KindBool} }
func StringT() *Type    { return &Type{Kind: KindString} }
func PrincipalT() *Type { return &Type{Kind: KindPrincipal} }
func BufferT() *Type    { return &Type{Kind: KindBuffer} }
func ListT(elem *Type) *Type {
	return &Type{Kind: KindList, Elem: elem}
}
func TupleT(fields map[string]*Type) *Type {
	return &Type{Kind: KindTuple, Fields: fields}
}
func OptionalT(inner *Type) *Type {
	return &Type{Kind: KindSome, Inner: inner}
}

// Encode validates that v matches the expected type and returns it
// unchanged. A shape mismatch is an EncodeError; malformed wire data is
// never emitted.
func Encode(v Value, expected *Type) (Value, error) {
	if expected == nil {
		return Value{}, &EncodeError{Got: v.Kind, Detail: "nil expected type"}
	}
	if err := check(v, expected, ""); err != nil {
		return Value{}, err
	}
	return v, nil
}

func check(v Value, t *Type, path string) error {
	// Optional types accept none or a matching some payload.
	if t.Kind == KindSome {
		switch v.Kind {
		case KindNone:
			return nil
		case KindSome:
			if v.Inner == nil {
				return &EncodeError{Expected: t.Inner.Kind, Got: KindSome, Detail: at(path, "some with no payload")}
			}
			return check(*v.Inner, t.Inner, path)
		default:
			return &EncodeError{Expected: KindSome, Got: v.Kind, Detail: at(path, "expected optional")}
		}
	}

	if v.Kind != t.Kind {
		return &EncodeError{Expected: t.Kind, Got: v.Kind, Detail: at(path, "")}
	}

	switch t.Kind {
	case KindList:
		for i, item := range v.ListVal {
			if err := check(item, t.Elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case KindTuple:
		for name, ft := range t.Fields {
			fv, ok := v.TupleVal[name]
			if !ok {
				return &EncodeError{Expected: ft.Kind, Got: KindTuple, Detail: at(path, "missing field "+name)}
			}
			if err := check(fv, ft, path+"."+name); err != nil {
				return err
			}
		}
		for name := range v.TupleVal {
			if _, ok := t.Fields[name]; !ok {
				return &EncodeError{Expected: KindTuple, Got: KindTuple, Detail: at(path, "unexpected field "+name)}
			}
		}
	case KindPrincipal:
		if v.StrVal == "" {
			return &EncodeError{Expected: KindPrincipal, Got: KindPrincipal, Detail: at(path, "empty principal")}
		}
	}
	return nil
}

func at(path, detail string) string {
	if path == "" {
		return detail
	}
	if detail == "" {
		return "at " + path
	}
	return "at " + path + ": " + detail
}
