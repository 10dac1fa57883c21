package clarity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	values := []Value{
		Uint(50000000),
		Int(-42),
		Bool(true),
		String("Family Vault"),
		Principal("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"),
		Buffer([]byte{0x00, 0xff, 0x10}),
		List(Uint(1), Uint(2), Uint(3)),
		Tuple(map[string]Value{
			"vault-name":   String("X"),
			"sbtc-balance": Uint(50000000),
			"owner":        Principal("SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"),
		}),
		Some(Uint(7)),
		None(),
		Ok(Tuple(map[string]Value{"total": Uint(9)})),
		Err(Uint(401)),
	}

	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err, "marshal %s", v)

		var back Value
		require.NoError(t, json.Unmarshal(data, &back), "unmarshal %s", data)
		assert.True(t, Equal(v, back), "round trip mismatch: %s vs %s", v, back)
	}
}

func TestUnmarshalUnknownTag(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`{"type":"float","value":"1.5"}`), &v)
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, UnknownWireType, de.Reason)
}

func TestUnmarshalIntegerExactness(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"type":"uint","value":"18446744073709551615"}`), &v))
	got, err := v.AsUint()
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), got)

	// A float payload is malformed, not truncated.
	err = json.Unmarshal([]byte(`{"type":"uint","value":"1.5"}`), &v)
	require.Error(t, err)
}

func TestUnwrapResponse(t *testing.T) {
	inner, err := UnwrapResponse(Ok(Uint(5)))
	require.NoError(t, err)
	assert.True(t, Equal(Uint(5), inner))

	_, err = UnwrapResponse(Err(Uint(103)))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, ResponseErr, de.Reason)
	assert.Equal(t, uint64(103), de.LedgerCode)

	_, err = UnwrapResponse(Uint(1))
	require.Error(t, err)
}

func TestUnwrapOptional(t *testing.T) {
	inner, present, err := UnwrapOptional(Some(Bool(true)))
	require.NoError(t, err)
	assert.True(t, present)
	assert.True(t, Equal(Bool(true), inner))

	_, present, err = UnwrapOptional(None())
	require.NoError(t, err)
	assert.False(t, present, "none is absence, not an error")

	_, _, err = UnwrapOptional(String("x"))
	require.Error(t, err)
}

func TestAccessorTypeMismatch(t *testing.T) {
	_, err := Uint(1).AsBool()
	require.Error(t, err)
	_, err = String("a").AsUint()
	require.Error(t, err)
	_, err = Bool(true).AsTuple()
	require.Error(t, err)
}

func TestEncodeShapeChecks(t *testing.T) {
	vaultArgT := TupleT(map[string]*Type{
		"vault-id": StringT(),
		"owner":    PrincipalT(),
		"amount":   UintT(),
	})

	good := Tuple(map[string]Value{
		"vault-id": String("vault-1"),
		"owner":    Principal("SP000000000000000000002Q6VF78"),
		"amount":   Uint(1000),
	})
	_, err := Encode(good, vaultArgT)
	require.NoError(t, err)

	// Wrong field kind.
	bad := Tuple(map[string]Value{
		"vault-id": String("vault-1"),
		"owner":    Principal("SP000000000000000000002Q6VF78"),
		"amount":   String("1000"),
	})
	_, err = Encode(bad, vaultArgT)
	var ee *EncodeError
	require.True(t, errors.As(err, &ee))

	// Missing field.
	_, err = Encode(Tuple(map[string]Value{"vault-id": String("v")}), vaultArgT)
	require.Error(t, err)

	// Unexpected extra field rejected before emission.
	extra := Tuple(map[string]Value{
		"vault-id": String("vault-1"),
		"owner":    Principal("SP000000000000000000002Q6VF78"),
		"amount":   Uint(1),
		"bogus":    Uint(2),
	})
	_, err = Encode(extra, vaultArgT)
	require.Error(t, err)

	// Empty principal is malformed.
	_, err = Encode(Principal(""), PrincipalT())
	require.Error(t, err)

	// Optionals accept both arms.
	_, err = Encode(None(), OptionalT(UintT()))
	require.NoError(t, err)
	_, err = Encode(Some(Uint(3)), OptionalT(UintT()))
	require.NoError(t, err)
	_, err = Encode(Some(String("3")), OptionalT(UintT()))
	require.Error(t, err)

	// Lists check every element.
	_, err = Encode(List(Uint(1), String("2")), ListT(UintT()))
	require.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(None(), None()))
	assert.False(t, Equal(Uint(1), Int(1)))
	assert.False(t, Equal(Some(Uint(1)), Some(Uint(2))))
	assert.True(t, Equal(Buffer([]byte{1}), Buffer([]byte{1})))
	assert.False(t, Equal(
		Tuple(map[string]Value{"a": Uint(1)}),
		Tuple(map[string]Value{"a": Uint(1), "b": Uint(2)}),
	))
}
