package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"sbtc-heritage.backend/internal/domain/entities"
	"sbtc-heritage.backend/internal/domain/errors"
	domainRepos "sbtc-heritage.backend/internal/domain/repositories"
	"sbtc-heritage.backend/internal/infrastructure/blockchain"
	"sbtc-heritage.backend/internal/infrastructure/codec"
	"sbtc-heritage.backend/pkg/clarity"
)

// VaultUsecase sequences mutating ledger calls and reconciles the local
// cache with ledger truth after each one. Every guard re-reads a fresh
// snapshot first; a cached snapshot is never the basis for a lifecycle
// decision. Mutations are submitted exactly once and never auto-resubmitted:
// on a transport error after submission the caller must inspect the audit
// log rather than retry blindly.
type VaultUsecase struct {
	vaultRepo domainRepos.VaultRepository
	txLog     domainRepos.TransactionLogRepository
	validator *AllocationValidator
	client    *blockchain.StacksClient
}

func NewVaultUsecase(
	vaultRepo domainRepos.VaultRepository,
	txLog domainRepos.TransactionLogRepository,
	validator *AllocationValidator,
	client *blockchain.StacksClient,
) *VaultUsecase {
	return &VaultUsecase{
		vaultRepo: vaultRepo,
		txLog:     txLog,
		validator: validator,
		client:    client,
	}
}

// CreateVaultOutput acknowledges a vault creation plus any non-blocking
// allocation warnings.
type CreateVaultOutput struct {
	VaultID  string   `json:"vaultId"`
	TxRefs   []string `json:"txRefs"`
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
}

// CreateVault validates the definition, submits create-vault, then one
// add-beneficiary call per entry. The vault id is generated server-side;
// the vault is canonical only once the ledger accepts it.
func (uc *VaultUsecase) CreateVault(ctx context.Context, owner string, in *entities.CreateVaultInput) (*CreateVaultOutput, error) {
	if in.InheritanceDelayBlocks < entities.MinDelayBlocks {
		return nil, errors.NewValidationError("inheritance-delay-minimum",
			"inheritance delay must be at least %d blocks (one day)", entities.MinDelayBlocks)
	}
	if in.GracePeriodBlocks < entities.MinGraceBlocks {
		return nil, errors.NewValidationError("grace-period-minimum",
			"grace period must be at least %d blocks (one day)", entities.MinGraceBlocks)
	}
	if in.PrivacyLevel == "" {
		in.PrivacyLevel = entities.PrivacyPublic
	}

	warnings, err := uc.validator.Validate(in.Beneficiaries, in.AutoDistribute, 0)
	if err != nil {
		return nil, err
	}

	vaultID := "vault-" + uuid.New().String()

	args, err := codec.EncodeCreateVaultArgs(vaultID, in)
	if err != nil {
		return nil, err
	}
	txRef, err := uc.client.SubmitCall(ctx, blockchain.FnCreateVault, owner, args)
	if err != nil {
		return nil, err
	}

	txRefs := []string{txRef}
	for _, b := range in.Beneficiaries {
		bArgs, err := codec.EncodeAddBeneficiaryArgs(vaultID, b)
		if err != nil {
			return nil, err
		}
		bRef, err := uc.client.SubmitCall(ctx, blockchain.FnAddBeneficiary, owner, bArgs)
		if err != nil {
			return nil, fmt.Errorf("vault %s submitted but add-beneficiary failed: %w", vaultID, err)
		}
		txRefs = append(txRefs, bRef)
	}

	uc.vaultRepo.Invalidate(vaultID)
	return &CreateVaultOutput{
		VaultID:  vaultID,
		TxRefs:   txRefs,
		Status:   string(entities.TxPending),
		Warnings: warnings,
	}, nil
}

// Deposit adds sBTC to the vault. Legal until inheritance is triggered.
func (uc *VaultUsecase) Deposit(ctx context.Context, owner, vaultID string, amountSats uint64) (*entities.SubmitResponse, error) {
	if amountSats == 0 {
		return nil, errors.ErrInvalidAmount
	}

	vault, height, err := uc.freshSnapshot(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if !actionLegal(vault, height, entities.ActionDeposit) {
		return nil, fmt.Errorf("deposit in state %s: %w", entities.Classify(vault, height), errors.ErrNotEligible)
	}

	args, err := codec.EncodeAmountArgs(vaultID, amountSats)
	if err != nil {
		return nil, err
	}
	return uc.submit(ctx, blockchain.FnDepositSbtc, owner, vaultID, args, &entities.VaultTransaction{
		VaultID:    vaultID,
		Principal:  owner,
		Type:       entities.TxDeposit,
		AmountSats: null.Uint64From(amountSats),
	})
}

// Withdraw removes sBTC. Legal only while the owner is in good standing;
// once the grace period starts the balance is frozen for beneficiaries.
func (uc *VaultUsecase) Withdraw(ctx context.Context, owner, vaultID string, amountSats uint64) (*entities.SubmitResponse, error) {
	if amountSats == 0 {
		return nil, errors.ErrInvalidAmount
	}

	vault, height, err := uc.freshSnapshot(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if amountSats > vault.SbtcBalanceSats {
		return nil, fmt.Errorf("withdraw %d exceeds balance %d: %w", amountSats, vault.SbtcBalanceSats, errors.ErrInvalidAmount)
	}
	if !actionLegal(vault, height, entities.ActionWithdraw) {
		return nil, fmt.Errorf("withdraw in state %s: %w", entities.Classify(vault, height), errors.ErrNotEligible)
	}

	args, err := codec.EncodeAmountArgs(vaultID, amountSats)
	if err != nil {
		return nil, err
	}
	return uc.submit(ctx, blockchain.FnWithdrawSbtc, owner, vaultID, args, &entities.VaultTransaction{
		VaultID:    vaultID,
		Principal:  owner,
		Type:       entities.TxWithdrawal,
		AmountSats: null.Uint64From(amountSats),
	})
}

// UpdateProofOfLife resets the activity clock. Rejected from the grace
// period onward: a late refresh would retroactively hide the missed
// deadline from beneficiaries.
func (uc *VaultUsecase) UpdateProofOfLife(ctx context.Context, owner, vaultID string) (*entities.SubmitResponse, error) {
	vault, height, err := uc.freshSnapshot(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if !entities.CanUpdateProofOfLife(vault, height) {
		return nil, fmt.Errorf("proof of life in state %s: %w", entities.Classify(vault, height), errors.ErrNotEligible)
	}

	return uc.submit(ctx, blockchain.FnUpdateProofOfLife, owner, vaultID,
		codec.EncodeVaultIDArg(vaultID), &entities.VaultTransaction{
			VaultID:   vaultID,
			Principal: owner,
			Type:      entities.TxProofOfLife,
		})
}

// TriggerInheritance starts distribution. Only legal from
// ReadyForInheritance; a second trigger observes the updated status and
// fails with AlreadyTriggered instead of re-executing.
func (uc *VaultUsecase) TriggerInheritance(ctx context.Context, sender, vaultID string) (*entities.SubmitResponse, error) {
	vault, height, err := uc.freshSnapshot(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if vault.Status == entities.StatusInheritanceTriggered || vault.Status == entities.StatusCompleted {
		return nil, errors.ErrAlreadyTriggered
	}
	if !entities.CanTrigger(vault, height) {
		return nil, fmt.Errorf("trigger in state %s: %w", entities.Classify(vault, height), errors.ErrNotEligible)
	}

	return uc.submit(ctx, blockchain.FnTriggerInheritance, sender, vaultID,
		codec.EncodeVaultIDArg(vaultID), &entities.VaultTransaction{
			VaultID:   vaultID,
			Principal: sender,
			Type:      entities.TxInheritanceTrigger,
		})
}

// ClaimInheritance claims one beneficiary's share, addressed by list
// index. A repeat claim fails with AlreadyClaimed.
func (uc *VaultUsecase) ClaimInheritance(ctx context.Context, sender, vaultID string, beneficiaryIndex uint64) (*entities.SubmitResponse, error) {
	vault, height, err := uc.freshSnapshot(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	if beneficiaryIndex >= uint64(len(vault.Beneficiaries)) {
		return nil, fmt.Errorf("beneficiary index %d: %w", beneficiaryIndex, errors.ErrNotFound)
	}
	if vault.Beneficiaries[beneficiaryIndex].Claimed {
		return nil, errors.ErrAlreadyClaimed
	}
	if state := entities.Classify(vault, height); state != entities.StateInheritanceTriggered {
		return nil, fmt.Errorf("claim in state %s: %w", state, errors.ErrNotEligible)
	}

	return uc.submit(ctx, blockchain.FnClaimInheritance, sender, vaultID,
		codec.EncodeClaimArgs(vaultID, beneficiaryIndex), &entities.VaultTransaction{
			VaultID:          vaultID,
			Principal:        sender,
			Type:             entities.TxInheritanceClaim,
			BeneficiaryIndex: null.Uint64From(beneficiaryIndex),
		})
}

// GetVault returns a snapshot paired with its derived lifecycle state.
func (uc *VaultUsecase) GetVault(ctx context.Context, vaultID string) (*entities.VaultView, error) {
	vault, err := uc.vaultRepo.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	height, err := uc.client.BlockHeight(ctx)
	if err != nil {
		return nil, err
	}
	return &entities.VaultView{
		Vault:          vault,
		LifecycleState: entities.Classify(vault, height),
		BlockHeight:    height,
	}, nil
}

// ListVaults resolves all vaults for the owner with lifecycle states.
func (uc *VaultUsecase) ListVaults(ctx context.Context, owner string) ([]*entities.VaultView, error) {
	vaults, err := uc.vaultRepo.ListForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	height, err := uc.client.BlockHeight(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*entities.VaultView, 0, len(vaults))
	for _, v := range vaults {
		views = append(views, &entities.VaultView{
			Vault:          v,
			LifecycleState: entities.Classify(v, height),
			BlockHeight:    height,
		})
	}
	return views, nil
}

// GetLifecycle returns the classification breakdown for one vault.
func (uc *VaultUsecase) GetLifecycle(ctx context.Context, vaultID string) (*entities.LifecycleDetail, error) {
	vault, height, err := uc.freshSnapshot(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	return &entities.LifecycleDetail{
		State:          entities.Classify(vault, height),
		BlockHeight:    height,
		ElapsedBlocks:  vault.Elapsed(height),
		DeadlineBlock:  vault.LastActivityAt + vault.InheritanceDelayBlocks,
		GraceEndsBlock: vault.LastActivityAt + vault.InheritanceDelayBlocks + vault.GracePeriodBlocks,
		LegalActions:   entities.LegalActions(vault, height),
	}, nil
}

// CalculateInheritance previews each beneficiary's distributable share.
// Amounts come from the contract's own calculation so the preview cannot
// drift from what a claim would pay.
func (uc *VaultUsecase) CalculateInheritance(ctx context.Context, vaultID string) ([]entities.InheritancePreview, error) {
	vault, err := uc.vaultRepo.Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	previews := make([]entities.InheritancePreview, 0, len(vault.Beneficiaries))
	for i, b := range vault.Beneficiaries {
		idx := uint64(i)
		result, err := uc.client.CallReadOnly(ctx, blockchain.FnCalculateInheritance, codec.EncodeClaimArgs(vaultID, idx))
		if err != nil {
			return nil, err
		}
		share, err := codec.DecodeUint(result)
		if err != nil {
			return nil, err
		}
		previews = append(previews, entities.InheritancePreview{
			BeneficiaryIndex: idx,
			Address:          b.Address,
			ShareSats:        share,
			MeetsMinimum:     share >= b.MinimumSbtcAmount,
			Claimed:          b.Claimed,
		})
	}
	return previews, nil
}

// ListTransactions pages the vault's audit log, newest first.
func (uc *VaultUsecase) ListTransactions(ctx context.Context, vaultID string, limit, offset int) ([]*entities.VaultTransaction, int, error) {
	return uc.txLog.ListByVault(ctx, vaultID, limit, offset)
}

// freshSnapshot drops the cached entry and re-reads vault and tip so
// guards never act on stale state.
func (uc *VaultUsecase) freshSnapshot(ctx context.Context, vaultID string) (*entities.Vault, uint64, error) {
	uc.vaultRepo.Invalidate(vaultID)
	vault, err := uc.vaultRepo.Get(ctx, vaultID)
	if err != nil {
		return nil, 0, err
	}
	height, err := uc.client.BlockHeight(ctx)
	if err != nil {
		return nil, 0, err
	}
	return vault, height, nil
}

// submit sends the call once, appends the audit record, and invalidates
// the cache so the next read observes ledger truth.
func (uc *VaultUsecase) submit(ctx context.Context, fn, sender, vaultID string, args []clarity.Value, record *entities.VaultTransaction) (*entities.SubmitResponse, error) {
	txRef, err := uc.client.SubmitCall(ctx, fn, sender, args)
	if err != nil {
		return nil, err
	}

	record.Status = entities.TxPending
	record.TxRef = txRef
	if err := uc.txLog.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("call %s acked as %s but audit append failed: %w", fn, txRef, err)
	}

	uc.vaultRepo.Invalidate(vaultID)
	return &entities.SubmitResponse{
		VaultID: vaultID,
		TxRef:   txRef,
		Status:  string(entities.TxPending),
	}, nil
}

func actionLegal(v *entities.Vault, height uint64, action entities.Action) bool {
	for _, a := range entities.LegalActions(v, height) {
		if a == action {
			return true
		}
	}
	return false
}
