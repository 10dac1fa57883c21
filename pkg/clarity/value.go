package clarity

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Kind identifies the wire tag of a Value.
type Kind string

const (
	KindUint      Kind = "uint"
	KindInt       Kind = "int"
	KindBool      Kind = "bool"
	KindString    Kind = "string"
	KindPrincipal Kind = "principal"
	KindBuffer    Kind = "buffer"
	KindList      Kind = "list"
	KindTuple     Kind = "tuple"
	KindSome      Kind = "some"
	KindNone      Kind = "none"
	KindOk        Kind = "ok"
	KindErr       Kind = "err"
)

// Value is one tagged wire value as exchanged with the ledger contract.
// Exactly one of the payload fields is meaningful for a given Kind.
type Value struct {
	Kind      Kind
	UintVal   uint64
	IntVal    int64
	BoolVal   bool
	StrVal    string
	BufferVal []byte
	ListVal   []Value
	TupleVal  map[string]Value
	Inner     *Value // payload of some/ok/err
}

// Constructors

func Uint(v uint64) Value      { return Value{Kind: KindUint, UintVal: v} }
func Int(v int64) Value        { return Value{Kind: KindInt, IntVal: v} }
func Bool(v bool) Value        { return Value{Kind: KindBool, BoolVal: v} }
func String(v string) Value    { return Value{Kind: KindString, StrVal: v} }
func Principal(v string) Value { return Value{Kind: KindPrincipal, StrVal: v} }
func Buffer(v []byte) Value    { return Value{Kind: KindBuffer, BufferVal: v} }
func List(items ...Value) Value {
	return Value{Kind: KindList, ListVal: items}
}
func Tuple(fields map[string]Value) Value {
	return Value{Kind: KindTuple, TupleVal: fields}
}
func Some(v Value) Value { return Value{Kind: KindSome, Inner: &v} }
func None() Value        { return Value{Kind: KindNone} }
func Ok(v Value) Value   { return Value{Kind: KindOk, Inner: &v} }
func Err(v Value) Value  { return Value{Kind: KindErr, Inner: &v} }

// Accessors. Each fails with a DecodeError when the tag does not match,
// so callers never read a zero value off the wrong union arm.

func (v Value) AsUint() (uint64, error) {
	if v.Kind != KindUint {
		return 0, typeMismatch(KindUint, v.Kind)
	}
	return v.UintVal, nil
}

func (v Value) AsInt() (int64, error) {
	if v.Kind != KindInt {
		return 0, typeMismatch(KindInt, v.Kind)
	}
	return v.IntVal, nil
}

func (v Value) AsBool() (bool, error) {
	if v.Kind != KindBool {
		return false, typeMismatch(KindBool, v.Kind)
	}
	return v.BoolVal, nil
}

func (v Value) AsString() (string, error) {
	if v.Kind != KindString {
		return "", typeMismatch(KindString, v.Kind)
	}
	return v.StrVal, nil
}

func (v Value) AsPrincipal() (string, error) {
	if v.Kind != KindPrincipal {
		return "", typeMismatch(KindPrincipal, v.Kind)
	}
	return v.StrVal, nil
}

func (v Value) AsBuffer() ([]byte, error) {
	if v.Kind != KindBuffer {
		return nil, typeMismatch(KindBuffer, v.Kind)
	}
	return v.BufferVal, nil
}

func (v Value) AsList() ([]Value, error) {
	if v.Kind != KindList {
		return nil, typeMismatch(KindList, v.Kind)
	}
	return v.ListVal, nil
}

func (v Value) AsTuple() (map[string]Value, error) {
	if v.Kind != KindTuple {
		return nil, typeMismatch(KindTuple, v.Kind)
	}
	return v.TupleVal, nil
}

// Field returns a named tuple field.
func (v Value) Field(name string) (Value, bool) {
	if v.Kind != KindTuple {
		return Value{}, false
	}
	f, ok := v.TupleVal[name]
	return f, ok
}

// FieldNames returns tuple field names in sorted order for deterministic iteration.
func (v Value) FieldNames() []string {
	if v.Kind != KindTuple {
		return nil
	}
	names := make([]string, 0, len(v.TupleVal))
	for name := range v.TupleVal {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports deep equality of two wire values.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUint:
		return a.UintVal == b.UintVal
	case KindInt:
		return a.IntVal == b.IntVal
	case KindBool:
		return a.BoolVal == b.BoolVal
	case KindString, KindPrincipal:
		return a.StrVal == b.StrVal
	case KindBuffer:
		return hexutil.Encode(a.BufferVal) == hexutil.Encode(b.BufferVal)
	case KindList:
		if len(a.ListVal) != len(b.ListVal) {
			return false
		}
		for i := range a.ListVal {
			if !Equal(a.ListVal[i], b.ListVal[i]) {
				return false
			}
		}
		return true
	case KindTuple:
		if len(a.TupleVal) != len(b.TupleVal) {
			return false
		}
		for name, av := range a.TupleVal {
			bv, ok := b.TupleVal[name]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindSome, KindOk, KindErr:
		if a.Inner == nil || b.Inner == nil {
			return a.Inner == b.Inner
		}
		return Equal(*a.Inner, *b.Inner)
	case KindNone:
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case KindUint:
		return fmt.Sprintf("u%d", v.UintVal)
	case KindInt:
		return fmt.Sprintf("%d", v.IntVal)
	case KindBool:
		return fmt.Sprintf("%t", v.BoolVal)
	case KindString:
		return fmt.Sprintf("%q", v.StrVal)
	case KindPrincipal:
		return "'" + v.StrVal
	case KindBuffer:
		return hexutil.Encode(v.BufferVal)
	case KindList:
		s := "(list"
		for _, item := range v.ListVal {
			s += " " + item.String()
		}
		return s + ")"
	case KindTuple:
		s := "(tuple"
		for _, name := range v.FieldNames() {
			s += fmt.Sprintf(" (%s %s)", name, v.TupleVal[name].String())
		}
		return s + ")"
	case KindSome:
		return "(some " + v.Inner.String() + ")"
	case KindNone:
		return "none"
	case KindOk:
		return "(ok " + v.Inner.String() + ")"
	case KindErr:
		return "(err " + v.Inner.String() + ")"
	}
	return "<invalid>"
}
