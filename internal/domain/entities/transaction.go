package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionType labels one audit record.
type TransactionType string

const (
	TxDeposit            TransactionType = "deposit"
	TxWithdrawal         TransactionType = "withdrawal"
	TxProofOfLife        TransactionType = "proof-of-life"
	TxInheritanceTrigger TransactionType = "inheritance-trigger"
	TxInheritanceClaim   TransactionType = "inheritance-claim"
)

// TransactionStatus tracks ledger confirmation of a submitted call.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxConfirmed TransactionStatus = "confirmed"
	TxFailed    TransactionStatus = "failed"
)

// VaultTransaction is one append-only audit record. Records are never
// mutated except for the pending -> confirmed/failed status transition
// applied when ledger confirmations arrive.
type VaultTransaction struct {
	ID               uuid.UUID         `json:"id"`
	VaultID          string            `json:"vaultId"`
	Principal        string            `json:"principal"`
	Type             TransactionType   `json:"type"`
	AmountSats       null.Uint64       `json:"amountSats,omitempty"`
	BeneficiaryIndex null.Uint64       `json:"beneficiaryIndex,omitempty"`
	Status           TransactionStatus `json:"status"`
	TxRef            string            `json:"txRef"`
	BlockHeight      null.Uint64       `json:"blockHeight,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// BeneficiaryInput is one allocation entry as submitted by the caller.
type BeneficiaryInput struct {
	Address              string `json:"address" binding:"required"`
	AllocationPercentage uint64 `json:"allocationPercentage" binding:"required"`
	MinimumSbtcAmount    uint64 `json:"minimumSbtcAmount"`
}

// CreateVaultInput is the caller's vault definition. The vault id is
// generated server-side; the vault becomes canonical only once the
// ledger accepts it.
type CreateVaultInput struct {
	Name                   string             `json:"name" binding:"required"`
	InheritanceDelayBlocks uint64             `json:"inheritanceDelayBlocks" binding:"required"`
	GracePeriodBlocks      uint64             `json:"gracePeriodBlocks" binding:"required"`
	MinimumInheritanceSats uint64             `json:"minimumInheritanceSats"`
	AutoDistribute         bool               `json:"autoDistribute"`
	PrivacyLevel           PrivacyLevel       `json:"privacyLevel"`
	Beneficiaries          []BeneficiaryInput `json:"beneficiaries" binding:"required"`
}

// AmountInput carries a satoshi amount for deposit/withdraw.
type AmountInput struct {
	AmountSats uint64 `json:"amountSats" binding:"required"`
}

// ClaimInput addresses the beneficiary by index, the ledger's claim key.
type ClaimInput struct {
	BeneficiaryIndex uint64 `json:"beneficiaryIndex"`
}

// SubmitResponse acknowledges a submitted call. The tx ref is returned
// before finality; callers re-poll the vault to observe eventual state.
type SubmitResponse struct {
	VaultID string `json:"vaultId"`
	TxRef   string `json:"txRef"`
	Status  string `json:"status"`
}

// VaultView pairs a snapshot with its derived lifecycle state.
type VaultView struct {
	Vault          *Vault         `json:"vault"`
	LifecycleState LifecycleState `json:"lifecycleState"`
	BlockHeight    uint64         `json:"blockHeight"`
}

// LifecycleDetail is the classification breakdown served to the
// presentation layer.
type LifecycleDetail struct {
	State          LifecycleState `json:"state"`
	BlockHeight    uint64         `json:"blockHeight"`
	ElapsedBlocks  uint64         `json:"elapsedBlocks"`
	DeadlineBlock  uint64         `json:"deadlineBlock"`
	GraceEndsBlock uint64         `json:"graceEndsBlock"`
	LegalActions   []Action       `json:"legalActions"`
}

// InheritancePreview mirrors the contract's calculate-inheritance-amount
// read for one beneficiary.
type InheritancePreview struct {
	BeneficiaryIndex uint64 `json:"beneficiaryIndex"`
	Address          string `json:"address"`
	ShareSats        uint64 `json:"shareSats"`
	MeetsMinimum     bool   `json:"meetsMinimum"`
	Claimed          bool   `json:"claimed"`
}
