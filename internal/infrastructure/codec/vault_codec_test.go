package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbtc-heritage.backend/internal/domain/entities"
	"sbtc-heritage.backend/pkg/clarity"
)

const (
	ownerPrincipal = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"
	heirPrincipal  = "SP000000000000000000002Q6VF78"
)

func sampleVault() *entities.Vault {
	return &entities.Vault{
		VaultID:                "vault-7c9e6679",
		Name:                   "Family Vault",
		Owner:                  ownerPrincipal,
		SbtcBalanceSats:        50_000_000,
		SbtcLocked:             true,
		InheritanceDelayBlocks: 144 * 365,
		GracePeriodBlocks:      144 * 7,
		MinimumInheritanceSats: 10_000,
		AutoDistribute:         true,
		PrivacyLevel:           entities.PrivacySemiPrivate,
		Status:                 entities.StatusActive,
		CreatedAt:              1000,
		LastActivityAt:         2000,
		Beneficiaries: []entities.Beneficiary{
			{Address: heirPrincipal, AllocationPercentage: 60, MinimumSbtcAmount: 5000},
			{Address: ownerPrincipal, AllocationPercentage: 40, Claimed: true, ClaimDeadline: 99999},
		},
	}
}

func TestVaultRoundTrip(t *testing.T) {
	v := sampleVault()
	decoded, err := DecodeVaultTuple(EncodeVaultTuple(v))
	require.NoError(t, err)
	assert.Equal(t, v, decoded)
}

func TestVaultRoundTripWithExecution(t *testing.T) {
	v := sampleVault()
	v.Status = entities.StatusInheritanceTriggered
	v.Execution = &entities.InheritanceExecution{
		TriggeredAt:          60000,
		TriggeredBy:          heirPrincipal,
		TotalDistributedSats: 30_000_000,
		PerBeneficiaryClaims: map[uint64]uint64{0: 30_000_000},
		CompletionPercentage: 60,
	}
	decoded, err := DecodeVaultTuple(EncodeVaultTuple(v))
	require.NoError(t, err)
	assert.Equal(t, v, decoded)
}

func TestDecodePartialTuple(t *testing.T) {
	// A minimal read: only three known fields present.
	wire := clarity.Ok(clarity.Some(clarity.Tuple(map[string]clarity.Value{
		"vault-name":   clarity.String("X"),
		"sbtc-balance": clarity.Uint(50000000),
		"status":       clarity.String("active"),
	})))

	vault, found, err := DecodeVaultResponse(wire)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "X", vault.Name)
	assert.Equal(t, uint64(50000000), vault.SbtcBalanceSats)
	assert.Equal(t, entities.StatusActive, vault.Status)
}

func TestDecodeNoneIsNotFoundNotError(t *testing.T) {
	vault, found, err := DecodeVaultResponse(clarity.Ok(clarity.None()))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, vault)
}

func TestDecodeErrResponseCarriesLedgerCode(t *testing.T) {
	_, _, err := DecodeVaultResponse(clarity.Err(clarity.Uint(404)))
	require.Error(t, err)

	var de *clarity.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, clarity.ResponseErr, de.Reason)
	assert.Equal(t, uint64(404), de.LedgerCode)
}

func TestDecodeWrongFieldTypeFails(t *testing.T) {
	// Amounts must decode exactly as integers; a string is never coerced.
	wire := clarity.Ok(clarity.Some(clarity.Tuple(map[string]clarity.Value{
		"sbtc-balance": clarity.String("50000000"),
	})))
	_, _, err := DecodeVaultResponse(wire)
	require.Error(t, err)

	var de *clarity.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "sbtc-balance", de.Field)
}

func TestUnknownFieldsPreserved(t *testing.T) {
	wire := clarity.Tuple(map[string]clarity.Value{
		"vault-name":       clarity.String("X"),
		"sbtc-yield-accum": clarity.Uint(777),
	})
	vault, err := DecodeVaultTuple(wire)
	require.NoError(t, err)
	require.Contains(t, vault.Extra, "sbtc-yield-accum")

	// And they survive re-encoding under the original wire name.
	reencoded := EncodeVaultTuple(vault)
	field, ok := reencoded.Field("sbtc-yield-accum")
	require.True(t, ok)
	assert.True(t, clarity.Equal(clarity.Uint(777), field))
}

func TestEncodeCreateVaultArgs(t *testing.T) {
	args, err := EncodeCreateVaultArgs("vault-1", &entities.CreateVaultInput{
		Name:                   "Family Vault",
		InheritanceDelayBlocks: 52560,
		GracePeriodBlocks:      1008,
		AutoDistribute:         true,
		PrivacyLevel:           entities.PrivacyPrivate,
	})
	require.NoError(t, err)
	require.Len(t, args, 1)

	id, ok := args[0].Field("vault-id")
	require.True(t, ok)
	assert.True(t, clarity.Equal(clarity.String("vault-1"), id))
}

func TestEncodeAddBeneficiaryRejectsEmptyAddress(t *testing.T) {
	_, err := EncodeAddBeneficiaryArgs("vault-1", entities.BeneficiaryInput{
		Address:              "",
		AllocationPercentage: 100,
	})
	require.Error(t, err)

	var ee *clarity.EncodeError
	assert.True(t, errors.As(err, &ee))
}

func TestDecodeVaultIDList(t *testing.T) {
	ids, err := DecodeVaultIDList(clarity.Ok(clarity.List(
		clarity.String("vault-1"),
		clarity.String("vault-2"),
	)))
	require.NoError(t, err)
	assert.Equal(t, []string{"vault-1", "vault-2"}, ids)

	_, err = DecodeVaultIDList(clarity.Err(clarity.Uint(500)))
	require.Error(t, err)

	_, err = DecodeVaultIDList(clarity.Ok(clarity.List(clarity.Uint(1))))
	require.Error(t, err, "non-string element is a decode failure")
}

func TestDecodeUint(t *testing.T) {
	n, err := DecodeUint(clarity.Ok(clarity.Uint(12)))
	require.NoError(t, err)
	assert.Equal(t, uint64(12), n)
}
