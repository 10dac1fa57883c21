package usecases

import (
	"fmt"
	"strings"

	"sbtc-heritage.backend/internal/domain/entities"
	"sbtc-heritage.backend/internal/domain/errors"
)

// Validation rule identifiers, reported with the first violation.
const (
	RuleNonEmpty         = "beneficiaries-non-empty"
	RuleAddressWellForm  = "address-well-formed"
	RulePercentageRange  = "allocation-percentage-range"
	RulePercentageSum    = "allocation-percentage-sum"
	RuleMinimumVsShare   = "minimum-vs-share"
	RuleDuplicateAddress = "address-unique"
)

// c32 alphabet used by Stacks addresses (Crockford base32, no I L O U).
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// AllocationValidator checks beneficiary sets before submission. The
// same invariants are re-derivable from a decoded on-chain vault via
// entities.Vault.CheckInvariants.
type AllocationValidator struct{}

func NewAllocationValidator() *AllocationValidator {
	return &AllocationValidator{}
}

// Validate applies the allocation rules in order and fails on the first
// violation. Warnings cover conditions that can legitimately change
// before trigger (balance movement) and never block submission.
func (v *AllocationValidator) Validate(beneficiaries []entities.BeneficiaryInput, autoDistribute bool, balanceSats uint64) ([]string, error) {
	if len(beneficiaries) == 0 {
		return nil, errors.NewValidationError(RuleNonEmpty, "at least one beneficiary is required")
	}

	for i, b := range beneficiaries {
		if err := ValidatePrincipal(b.Address); err != nil {
			return nil, errors.NewValidationError(RuleAddressWellForm,
				"beneficiary %d: %v", i, err)
		}
	}

	seen := make(map[string]int, len(beneficiaries))
	for i, b := range beneficiaries {
		if prev, dup := seen[b.Address]; dup {
			return nil, errors.NewValidationError(RuleDuplicateAddress,
				"beneficiary %d duplicates address of beneficiary %d", i, prev)
		}
		seen[b.Address] = i
	}

	var sum uint64
	for i, b := range beneficiaries {
		if b.AllocationPercentage < 1 || b.AllocationPercentage > 100 {
			return nil, errors.NewValidationError(RulePercentageRange,
				"beneficiary %d: allocation percentage %d outside [1,100]", i, b.AllocationPercentage)
		}
		sum += b.AllocationPercentage
	}
	if sum != 100 {
		return nil, errors.NewValidationError(RulePercentageSum,
			"allocation percentages sum to %d, expected exactly 100", sum)
	}

	var warnings []string
	if !autoDistribute {
		for i, b := range beneficiaries {
			share := balanceSats * b.AllocationPercentage / 100
			if b.MinimumSbtcAmount > share {
				warnings = append(warnings, fmt.Sprintf(
					"beneficiary %d: minimum %d sats exceeds current share %d sats; the claim will fail unless the balance grows",
					i, b.MinimumSbtcAmount, share))
			}
		}
	}
	return warnings, nil
}

// ValidatePrincipal checks the shape of a Stacks principal: a version
// prefix (SP/SM mainnet, ST/SN testnet), a c32 body, and an optional
// .contract-name suffix. Shape only; ownership is proven by the ledger
// rejecting calls from the wrong sender.
func ValidatePrincipal(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is empty")
	}

	base := addr
	if dot := strings.IndexByte(addr, '.'); dot >= 0 {
		base = addr[:dot]
		if err := validateContractName(addr[dot+1:]); err != nil {
			return err
		}
	}

	if len(base) < 4 {
		return fmt.Errorf("address %q too short", addr)
	}
	switch base[:2] {
	case "SP", "ST", "SM", "SN":
	default:
		return fmt.Errorf("address %q has unknown version prefix %q", addr, base[:2])
	}
	if len(base) > 41 {
		return fmt.Errorf("address %q too long", addr)
	}
	for _, c := range base[2:] {
		if !strings.ContainsRune(c32Alphabet, c) {
			return fmt.Errorf("address %q contains non-c32 character %q", addr, c)
		}
	}
	return nil
}

func validateContractName(name string) error {
	if name == "" || len(name) > 40 {
		return fmt.Errorf("contract name %q has invalid length", name)
	}
	for i, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		case (c == '-' || c == '_') && i > 0:
		default:
			return fmt.Errorf("contract name %q contains invalid character %q", name, c)
		}
	}
	return nil
}
