package clarity

// UnwrapResponse unwraps (ok v) to v and turns (err v) into a
// DecodeError carrying the ledger's error code verbatim.
func UnwrapResponse(v Value) (Value, error) {
	switch v.Kind {
	case KindOk:
		if v.Inner == nil {
			return Value{}, &DecodeError{Reason: MalformedValue, Detail: "ok with no payload"}
		}
		return *v.Inner, nil
	case KindErr:
		e := &DecodeError{Reason: ResponseErr, Detail: "ledger rejected the call"}
		if v.Inner != nil && v.Inner.Kind == KindUint {
			e.LedgerCode = v.Inner.UintVal
		}
		return Value{}, e
	default:
		return Value{}, &DecodeError{
			Reason: TypeMismatch,
			Detail: "expected response, got " + string(v.Kind),
		}
	}
}

// UnwrapOptional unwraps (some v) to (v, true) and none to (_, false).
// none is absence, not an error.
func UnwrapOptional(v Value) (Value, bool, error) {
	switch v.Kind {
	case KindSome:
		if v.Inner == nil {
			return Value{}, false, &DecodeError{Reason: MalformedValue, Detail: "some with no payload"}
		}
		return *v.Inner, true, nil
	case KindNone:
		return Value{}, false, nil
	default:
		return Value{}, false, &DecodeError{
			Reason: TypeMismatch,
			Detail: "expected optional, got " + string(v.Kind),
		}
	}
}
