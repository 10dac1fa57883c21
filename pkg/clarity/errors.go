package clarity

import "fmt"

// DecodeErrorKind classifies decode failures.
type DecodeErrorKind string

const (
	UnknownWireType DecodeErrorKind = "UNKNOWN_WIRE_TYPE"
	TypeMismatch    DecodeErrorKind = "TYPE_MISMATCH"
	MissingField    DecodeErrorKind = "MISSING_FIELD"
	MalformedValue  DecodeErrorKind = "MALFORMED_VALUE"
	ResponseErr     DecodeErrorKind = "RESPONSE_ERR"
)

// DecodeError reports a wire value that could not be mapped to the domain.
// The engine never guesses a default for a field it cannot decode.
type DecodeError struct {
	Reason DecodeErrorKind
	Field  string
	Detail string
	// LedgerCode carries the contract's numeric error code when the
	// failure is an unwrapped (err u...) response.
	LedgerCode uint64
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s: %s: %s", e.Field, e.Reason, e.Detail)
	}
	return fmt.Sprintf("decode: %s: %s", e.Reason, e.Detail)
}

// EncodeError reports a domain value whose shape does not match the
// expected wire type. Nothing malformed is ever emitted.
type EncodeError struct {
	Expected Kind
	Got      Kind
	Detail   string
}

func (e *EncodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("encode: expected %s, got %s: %s", e.Expected, e.Got, e.Detail)
	}
	return fmt.Sprintf("encode: expected %s, got %s", e.Expected, e.Got)
}

func typeMismatch(want, got Kind) *DecodeError {
	return &DecodeError{
		Reason: TypeMismatch,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}
