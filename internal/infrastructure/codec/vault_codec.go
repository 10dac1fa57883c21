// Package codec maps decoded ledger wire values onto the vault domain
// model and back. All mappings are fixed and total: every known wire
// field has exactly one domain field, unknown fields are preserved under
// their original names, and unexpected shapes fail instead of guessing.
package codec

import (
	"sort"

	"sbtc-heritage.backend/internal/domain/entities"
	"sbtc-heritage.backend/pkg/clarity"
)

// Wire tuple field names (kebab-case on the ledger).
const (
	fieldVaultID            = "vault-id"
	fieldVaultName          = "vault-name"
	fieldOwner              = "owner"
	fieldSbtcBalance        = "sbtc-balance"
	fieldSbtcLocked         = "sbtc-locked"
	fieldInheritanceDelay   = "inheritance-delay"
	fieldGracePeriod        = "grace-period"
	fieldMinimumInheritance = "minimum-inheritance"
	fieldAutoDistribute     = "auto-distribute"
	fieldPrivacyLevel       = "privacy-level"
	fieldStatus             = "status"
	fieldCreatedAt          = "created-at"
	fieldLastActivity       = "last-activity"
	fieldBeneficiaries      = "beneficiaries"
	fieldExecution          = "execution"

	fieldAddress           = "address"
	fieldAllocationPercent = "allocation-percentage"
	fieldMinimumSbtc       = "minimum-sbtc-amount"
	fieldClaimed           = "claimed"
	fieldClaimDeadline     = "claim-deadline"

	fieldTriggeredAt       = "triggered-at"
	fieldTriggeredBy       = "triggered-by"
	fieldTotalDistributed  = "total-distributed"
	fieldCompletionPercent = "completion-percentage"
	fieldClaims            = "claims"
	fieldClaimIndex        = "index"
	fieldClaimAmount       = "amount"
)

// DecodeVaultResponse unwraps a get-vault read: response.ok, then
// optional. none maps to ErrNotFound semantics via the (nil, false)
// return, not an error.
func DecodeVaultResponse(v clarity.Value) (*entities.Vault, bool, error) {
	inner, err := clarity.UnwrapResponse(v)
	if err != nil {
		return nil, false, err
	}
	payload, present, err := clarity.UnwrapOptional(inner)
	if err != nil {
		return nil, false, err
	}
	if !present {
		return nil, false, nil
	}
	vault, err := DecodeVaultTuple(payload)
	if err != nil {
		return nil, false, err
	}
	return vault, true, nil
}

// DecodeVaultTuple maps one wire vault tuple onto the domain model.
// Absent fields keep their zero values (older contract versions);
// wrongly-typed fields are decode failures, never defaults.
func DecodeVaultTuple(v clarity.Value) (*entities.Vault, error) {
	fields, err := v.AsTuple()
	if err != nil {
		return nil, err
	}

	vault := &entities.Vault{}
	for _, name := range v.FieldNames() {
		fv := fields[name]
		switch name {
		case fieldVaultID:
			if vault.VaultID, err = fv.AsString(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldVaultName:
			if vault.Name, err = fv.AsString(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldOwner:
			if vault.Owner, err = fv.AsPrincipal(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldSbtcBalance:
			if vault.SbtcBalanceSats, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldSbtcLocked:
			if vault.SbtcLocked, err = fv.AsBool(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldInheritanceDelay:
			if vault.InheritanceDelayBlocks, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldGracePeriod:
			if vault.GracePeriodBlocks, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldMinimumInheritance:
			if vault.MinimumInheritanceSats, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldAutoDistribute:
			if vault.AutoDistribute, err = fv.AsBool(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldPrivacyLevel:
			s, err := fv.AsString()
			if err != nil {
				return nil, fieldErr(name, err)
			}
			vault.PrivacyLevel = entities.PrivacyLevel(s)
		case fieldStatus:
			s, err := fv.AsString()
			if err != nil {
				return nil, fieldErr(name, err)
			}
			vault.Status = entities.VaultStatus(s)
		case fieldCreatedAt:
			if vault.CreatedAt, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldLastActivity:
			if vault.LastActivityAt, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldBeneficiaries:
			items, err := fv.AsList()
			if err != nil {
				return nil, fieldErr(name, err)
			}
			for _, item := range items {
				b, err := DecodeBeneficiaryTuple(item)
				if err != nil {
					return nil, err
				}
				vault.Beneficiaries = append(vault.Beneficiaries, b)
			}
		case fieldExecution:
			payload, present, err := clarity.UnwrapOptional(fv)
			if err != nil {
				return nil, fieldErr(name, err)
			}
			if present {
				exec, err := DecodeExecutionTuple(payload)
				if err != nil {
					return nil, err
				}
				vault.Execution = exec
			}
		default:
			// Forward compatibility: newer contract fields ride along
			// under their original wire names.
			if vault.Extra == nil {
				vault.Extra = map[string]interface{}{}
			}
			vault.Extra[name] = fv
		}
	}
	return vault, nil
}

// DecodeBeneficiaryTuple maps one beneficiary entry.
func DecodeBeneficiaryTuple(v clarity.Value) (entities.Beneficiary, error) {
	var b entities.Beneficiary
	fields, err := v.AsTuple()
	if err != nil {
		return b, err
	}
	for name, fv := range fields {
		switch name {
		case fieldAddress:
			if b.Address, err = fv.AsPrincipal(); err != nil {
				return b, fieldErr(name, err)
			}
		case fieldAllocationPercent:
			if b.AllocationPercentage, err = fv.AsUint(); err != nil {
				return b, fieldErr(name, err)
			}
		case fieldMinimumSbtc:
			if b.MinimumSbtcAmount, err = fv.AsUint(); err != nil {
				return b, fieldErr(name, err)
			}
		case fieldClaimed:
			if b.Claimed, err = fv.AsBool(); err != nil {
				return b, fieldErr(name, err)
			}
		case fieldClaimDeadline:
			if b.ClaimDeadline, err = fv.AsUint(); err != nil {
				return b, fieldErr(name, err)
			}
		}
	}
	return b, nil
}

// DecodeExecutionTuple maps an inheritance execution record.
func DecodeExecutionTuple(v clarity.Value) (*entities.InheritanceExecution, error) {
	fields, err := v.AsTuple()
	if err != nil {
		return nil, err
	}
	exec := &entities.InheritanceExecution{}
	for name, fv := range fields {
		switch name {
		case fieldTriggeredAt:
			if exec.TriggeredAt, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldTriggeredBy:
			if exec.TriggeredBy, err = fv.AsPrincipal(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldTotalDistributed:
			if exec.TotalDistributedSats, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldCompletionPercent:
			if exec.CompletionPercentage, err = fv.AsUint(); err != nil {
				return nil, fieldErr(name, err)
			}
		case fieldClaims:
			items, err := fv.AsList()
			if err != nil {
				return nil, fieldErr(name, err)
			}
			if len(items) > 0 {
				exec.PerBeneficiaryClaims = make(map[uint64]uint64, len(items))
			}
			for _, item := range items {
				entry, err := item.AsTuple()
				if err != nil {
					return nil, fieldErr(name, err)
				}
				idx, err := entry[fieldClaimIndex].AsUint()
				if err != nil {
					return nil, fieldErr(fieldClaimIndex, err)
				}
				amount, err := entry[fieldClaimAmount].AsUint()
				if err != nil {
					return nil, fieldErr(fieldClaimAmount, err)
				}
				exec.PerBeneficiaryClaims[idx] = amount
			}
		}
	}
	return exec, nil
}

// EncodeVaultTuple is the inverse mapping; decode(encode(v)) == v for
// any well-formed vault.
func EncodeVaultTuple(v *entities.Vault) clarity.Value {
	fields := map[string]clarity.Value{
		fieldVaultID:            clarity.String(v.VaultID),
		fieldVaultName:          clarity.String(v.Name),
		fieldOwner:              clarity.Principal(v.Owner),
		fieldSbtcBalance:        clarity.Uint(v.SbtcBalanceSats),
		fieldSbtcLocked:         clarity.Bool(v.SbtcLocked),
		fieldInheritanceDelay:   clarity.Uint(v.InheritanceDelayBlocks),
		fieldGracePeriod:        clarity.Uint(v.GracePeriodBlocks),
		fieldMinimumInheritance: clarity.Uint(v.MinimumInheritanceSats),
		fieldAutoDistribute:     clarity.Bool(v.AutoDistribute),
		fieldPrivacyLevel:       clarity.String(string(v.PrivacyLevel)),
		fieldStatus:             clarity.String(string(v.Status)),
		fieldCreatedAt:          clarity.Uint(v.CreatedAt),
		fieldLastActivity:       clarity.Uint(v.LastActivityAt),
	}

	items := make([]clarity.Value, 0, len(v.Beneficiaries))
	for _, b := range v.Beneficiaries {
		items = append(items, EncodeBeneficiaryTuple(b))
	}
	fields[fieldBeneficiaries] = clarity.List(items...)

	if v.Execution != nil {
		fields[fieldExecution] = clarity.Some(EncodeExecutionTuple(v.Execution))
	} else {
		fields[fieldExecution] = clarity.None()
	}

	for name, extra := range v.Extra {
		if wv, ok := extra.(clarity.Value); ok {
			fields[name] = wv
		}
	}
	return clarity.Tuple(fields)
}

// EncodeBeneficiaryTuple encodes one beneficiary entry.
func EncodeBeneficiaryTuple(b entities.Beneficiary) clarity.Value {
	return clarity.Tuple(map[string]clarity.Value{
		fieldAddress:           clarity.Principal(b.Address),
		fieldAllocationPercent: clarity.Uint(b.AllocationPercentage),
		fieldMinimumSbtc:       clarity.Uint(b.MinimumSbtcAmount),
		fieldClaimed:           clarity.Bool(b.Claimed),
		fieldClaimDeadline:     clarity.Uint(b.ClaimDeadline),
	})
}

// EncodeExecutionTuple encodes an execution record. Claim entries are
// sorted by index so encoding is deterministic.
func EncodeExecutionTuple(exec *entities.InheritanceExecution) clarity.Value {
	indices := make([]uint64, 0, len(exec.PerBeneficiaryClaims))
	for idx := range exec.PerBeneficiaryClaims {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	claims := make([]clarity.Value, 0, len(indices))
	for _, idx := range indices {
		claims = append(claims, clarity.Tuple(map[string]clarity.Value{
			fieldClaimIndex:  clarity.Uint(idx),
			fieldClaimAmount: clarity.Uint(exec.PerBeneficiaryClaims[idx]),
		}))
	}

	return clarity.Tuple(map[string]clarity.Value{
		fieldTriggeredAt:       clarity.Uint(exec.TriggeredAt),
		fieldTriggeredBy:       clarity.Principal(exec.TriggeredBy),
		fieldTotalDistributed:  clarity.Uint(exec.TotalDistributedSats),
		fieldCompletionPercent: clarity.Uint(exec.CompletionPercentage),
		fieldClaims:            clarity.List(claims...),
	})
}

func fieldErr(name string, err error) error {
	if de, ok := err.(*clarity.DecodeError); ok {
		return &clarity.DecodeError{Reason: de.Reason, Field: name, Detail: de.Detail, LedgerCode: de.LedgerCode}
	}
	return err
}
