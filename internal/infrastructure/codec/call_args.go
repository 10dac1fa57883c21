package codec

import (
	"sbtc-heritage.backend/internal/domain/entities"
	"sbtc-heritage.backend/pkg/clarity"
)

var createVaultArgT = clarity.TupleT(map[string]*clarity.Type{
	fieldVaultID:            clarity.StringT(),
	fieldVaultName:          clarity.StringT(),
	fieldInheritanceDelay:   clarity.UintT(),
	fieldGracePeriod:        clarity.UintT(),
	fieldMinimumInheritance: clarity.UintT(),
	fieldAutoDistribute:     clarity.BoolT(),
	fieldPrivacyLevel:       clarity.StringT(),
})

var beneficiaryArgT = clarity.TupleT(map[string]*clarity.Type{
	fieldAddress:           clarity.PrincipalT(),
	fieldAllocationPercent: clarity.UintT(),
	fieldMinimumSbtc:       clarity.UintT(),
})

// EncodeCreateVaultArgs builds the create-vault call arguments. Shape is
// validated before emission; a mismatch never reaches the wire.
func EncodeCreateVaultArgs(vaultID string, in *entities.CreateVaultInput) ([]clarity.Value, error) {
	arg := clarity.Tuple(map[string]clarity.Value{
		fieldVaultID:            clarity.String(vaultID),
		fieldVaultName:          clarity.String(in.Name),
		fieldInheritanceDelay:   clarity.Uint(in.InheritanceDelayBlocks),
		fieldGracePeriod:        clarity.Uint(in.GracePeriodBlocks),
		fieldMinimumInheritance: clarity.Uint(in.MinimumInheritanceSats),
		fieldAutoDistribute:     clarity.Bool(in.AutoDistribute),
		fieldPrivacyLevel:       clarity.String(string(in.PrivacyLevel)),
	})
	checked, err := clarity.Encode(arg, createVaultArgT)
	if err != nil {
		return nil, err
	}
	return []clarity.Value{checked}, nil
}

// EncodeAddBeneficiaryArgs builds an add-beneficiary call for one entry.
func EncodeAddBeneficiaryArgs(vaultID string, in entities.BeneficiaryInput) ([]clarity.Value, error) {
	arg := clarity.Tuple(map[string]clarity.Value{
		fieldAddress:           clarity.Principal(in.Address),
		fieldAllocationPercent: clarity.Uint(in.AllocationPercentage),
		fieldMinimumSbtc:       clarity.Uint(in.MinimumSbtcAmount),
	})
	checked, err := clarity.Encode(arg, beneficiaryArgT)
	if err != nil {
		return nil, err
	}
	return []clarity.Value{clarity.String(vaultID), checked}, nil
}

// EncodeAmountArgs builds deposit/withdraw arguments.
func EncodeAmountArgs(vaultID string, amountSats uint64) ([]clarity.Value, error) {
	amount, err := clarity.Encode(clarity.Uint(amountSats), clarity.UintT())
	if err != nil {
		return nil, err
	}
	return []clarity.Value{clarity.String(vaultID), amount}, nil
}

// EncodeVaultIDArg builds single-id arguments (proof of life, trigger).
func EncodeVaultIDArg(vaultID string) []clarity.Value {
	return []clarity.Value{clarity.String(vaultID)}
}

// EncodeClaimArgs builds claim-inheritance arguments. The beneficiary is
// addressed by list index on the ledger.
func EncodeClaimArgs(vaultID string, beneficiaryIndex uint64) []clarity.Value {
	return []clarity.Value{clarity.String(vaultID), clarity.Uint(beneficiaryIndex)}
}

// DecodeVaultIDList decodes a get-user-vaults response into vault ids.
func DecodeVaultIDList(v clarity.Value) ([]string, error) {
	inner, err := clarity.UnwrapResponse(v)
	if err != nil {
		return nil, err
	}
	items, err := inner.AsList()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		id, err := item.AsString()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DecodeUint decodes a bare uint read such as get-total-vaults.
func DecodeUint(v clarity.Value) (uint64, error) {
	inner, err := clarity.UnwrapResponse(v)
	if err != nil {
		return 0, err
	}
	return inner.AsUint()
}
