package clarity

import (
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// wireJSON is the tagged transport form: {"type": "...", "value": ...}.
// Integers travel as decimal strings so they round-trip exactly; buffers
// travel as 0x-prefixed hex.
type wireJSON struct {
	Type  Kind            `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch v.Kind {
	case KindUint:
		payload = strconv.FormatUint(v.UintVal, 10)
	case KindInt:
		payload = strconv.FormatInt(v.IntVal, 10)
	case KindBool:
		payload = v.BoolVal
	case KindString, KindPrincipal:
		payload = v.StrVal
	case KindBuffer:
		payload = hexutil.Encode(v.BufferVal)
	case KindList:
		items := v.ListVal
		if items == nil {
			items = []Value{}
		}
		payload = items
	case KindTuple:
		fields := v.TupleVal
		if fields == nil {
			fields = map[string]Value{}
		}
		payload = fields
	case KindSome, KindOk, KindErr:
		payload = v.Inner
	case KindNone:
		return json.Marshal(wireJSON{Type: KindNone})
	default:
		return nil, &EncodeError{Got: v.Kind, Detail: "unknown kind"}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireJSON{Type: v.Kind, Value: raw})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return &DecodeError{Reason: MalformedValue, Detail: err.Error()}
	}

	switch w.Type {
	case KindUint:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "uint value must be a decimal string"}
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "bad uint: " + s}
		}
		*v = Uint(n)
	case KindInt:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "int value must be a decimal string"}
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "bad int: " + s}
		}
		*v = Int(n)
	case KindBool:
		var b bool
		if err := json.Unmarshal(w.Value, &b); err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "bad bool"}
		}
		*v = Bool(b)
	case KindString:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "bad string"}
		}
		*v = String(s)
	case KindPrincipal:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "bad principal"}
		}
		*v = Principal(s)
	case KindBuffer:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "bad buffer"}
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return &DecodeError{Reason: MalformedValue, Detail: "bad buffer hex: " + s}
		}
		*v = Buffer(b)
	case KindList:
		var items []Value
		if err := json.Unmarshal(w.Value, &items); err != nil {
			return err
		}
		*v = List(items...)
	case KindTuple:
		var fields map[string]Value
		if err := json.Unmarshal(w.Value, &fields); err != nil {
			return err
		}
		*v = Tuple(fields)
	case KindSome, KindOk, KindErr:
		var inner Value
		if err := json.Unmarshal(w.Value, &inner); err != nil {
			return err
		}
		v.Kind = w.Type
		v.Inner = &inner
	case KindNone:
		*v = None()
	default:
		// A closed decoder: an unrecognized tag is an error, never a
		// passthrough of the raw value.
		return &DecodeError{Reason: UnknownWireType, Detail: "unrecognized tag: " + string(w.Type)}
	}
	return nil
}
