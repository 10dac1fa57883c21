package entities

import (
	domainerrors "sbtc-heritage.backend/internal/domain/errors"
)

// Block and unit conversions for the target ledger.
const (
	BlocksPerDay     = 144 // 1 block ≈ 600 seconds
	SatsPerSBTC      = 100_000_000
	MinDelayBlocks   = BlocksPerDay // inheritance delay floor: one day
	MinGraceBlocks   = BlocksPerDay
	ClaimWindowBlocks = 365 * BlocksPerDay // window beneficiaries have to claim after trigger
)

// VaultStatus is the vault's ledger-side status field.
type VaultStatus string

const (
	StatusActive              VaultStatus = "active"
	StatusInheritanceTriggered VaultStatus = "inheritance-triggered"
	StatusEmergencyPaused     VaultStatus = "emergency-paused"
	StatusCompleted           VaultStatus = "completed"
)

// PrivacyLevel controls how much of the vault state beneficiaries can
// observe before inheritance triggers.
type PrivacyLevel string

const (
	PrivacyPublic        PrivacyLevel = "public"
	PrivacySemiPrivate   PrivacyLevel = "semi-private"
	PrivacyPrivate       PrivacyLevel = "private"
	PrivacyHighlyPrivate PrivacyLevel = "highly-private"
)

// Vault is one ledger-resident inheritance plan. The ledger copy is the
// single source of truth once creation is accepted; local copies are
// advisory snapshots.
type Vault struct {
	VaultID                string        `json:"vaultId"`
	Name                   string        `json:"name"`
	Owner                  string        `json:"owner"`
	SbtcBalanceSats        uint64        `json:"sbtcBalanceSats"`
	SbtcLocked             bool          `json:"sbtcLocked"`
	InheritanceDelayBlocks uint64        `json:"inheritanceDelayBlocks"`
	GracePeriodBlocks      uint64        `json:"gracePeriodBlocks"`
	MinimumInheritanceSats uint64        `json:"minimumInheritanceSats"`
	AutoDistribute         bool          `json:"autoDistribute"`
	PrivacyLevel           PrivacyLevel  `json:"privacyLevel"`
	Status                 VaultStatus   `json:"status"`
	CreatedAt              uint64        `json:"createdAt"`
	LastActivityAt         uint64        `json:"lastActivityAt"`
	Beneficiaries          []Beneficiary `json:"beneficiaries"`

	Execution *InheritanceExecution `json:"execution,omitempty"`

	// Extra preserves wire tuple fields this version does not know,
	// keyed by their original kebab-case names, so newer contract
	// fields survive a round trip.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Beneficiary is one allocation entry. Index position is the addressing
// key used by the ledger's claim function, so order is immutable after
// submission.
type Beneficiary struct {
	Address              string `json:"address"`
	AllocationPercentage uint64 `json:"allocationPercentage"`
	MinimumSbtcAmount    uint64 `json:"minimumSbtcAmount"`
	Claimed              bool   `json:"claimed"`
	ClaimDeadline        uint64 `json:"claimDeadline,omitempty"`
}

// ShareSats is the beneficiary's cut of a balance at its allocation
// percentage, in satoshis.
func (b Beneficiary) ShareSats(balanceSats uint64) uint64 {
	return balanceSats * b.AllocationPercentage / 100
}

// InheritanceExecution records a successful trigger. Terminal once every
// beneficiary has claimed.
type InheritanceExecution struct {
	TriggeredAt          uint64            `json:"triggeredAt"`
	TriggeredBy          string            `json:"triggeredBy"`
	TotalDistributedSats uint64            `json:"totalDistributedSats"`
	PerBeneficiaryClaims map[uint64]uint64 `json:"perBeneficiaryClaims"`
	CompletionPercentage uint64            `json:"completionPercentage"`
}

// AllClaimed reports whether every beneficiary of the vault has claimed.
func (v *Vault) AllClaimed() bool {
	if len(v.Beneficiaries) == 0 {
		return false
	}
	for _, b := range v.Beneficiaries {
		if !b.Claimed {
			return false
		}
	}
	return true
}

// Elapsed is the number of blocks since the owner's last proof of life.
func (v *Vault) Elapsed(nowBlockHeight uint64) uint64 {
	if nowBlockHeight < v.LastActivityAt {
		return 0
	}
	return nowBlockHeight - v.LastActivityAt
}

// CheckInvariants verifies the structural invariants every vault must
// hold, used both on caller input and on decoded ledger reads.
func (v *Vault) CheckInvariants() error {
	if v.InheritanceDelayBlocks < MinDelayBlocks {
		return invariantErr("inheritance delay %d below minimum %d blocks", v.InheritanceDelayBlocks, MinDelayBlocks)
	}
	if v.GracePeriodBlocks < MinGraceBlocks {
		return invariantErr("grace period %d below minimum %d blocks", v.GracePeriodBlocks, MinGraceBlocks)
	}
	if len(v.Beneficiaries) > 0 {
		var sum uint64
		for i, b := range v.Beneficiaries {
			if b.AllocationPercentage < 1 || b.AllocationPercentage > 100 {
				return invariantErr("beneficiary %d allocation %d outside [1,100]", i, b.AllocationPercentage)
			}
			sum += b.AllocationPercentage
		}
		if sum != 100 {
			return invariantErr("beneficiary allocations sum to %d, want exactly 100", sum)
		}
	}
	return nil
}

func invariantErr(format string, args ...interface{}) error {
	return domainerrors.NewValidationError("invariant", format, args...)
}
