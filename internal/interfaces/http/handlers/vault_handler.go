package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sbtc-heritage.backend/internal/domain/entities"
	domainerrors "sbtc-heritage.backend/internal/domain/errors"
	"sbtc-heritage.backend/internal/interfaces/http/middleware"
	"sbtc-heritage.backend/internal/interfaces/http/response"
	"sbtc-heritage.backend/internal/usecases"
	"sbtc-heritage.backend/pkg/utils"
)

// VaultService is the orchestrator surface consumed by the handler.
type VaultService interface {
	CreateVault(ctx context.Context, owner string, in *entities.CreateVaultInput) (*usecases.CreateVaultOutput, error)
	Deposit(ctx context.Context, owner, vaultID string, amountSats uint64) (*entities.SubmitResponse, error)
	Withdraw(ctx context.Context, owner, vaultID string, amountSats uint64) (*entities.SubmitResponse, error)
	UpdateProofOfLife(ctx context.Context, owner, vaultID string) (*entities.SubmitResponse, error)
	TriggerInheritance(ctx context.Context, sender, vaultID string) (*entities.SubmitResponse, error)
	ClaimInheritance(ctx context.Context, sender, vaultID string, beneficiaryIndex uint64) (*entities.SubmitResponse, error)
	GetVault(ctx context.Context, vaultID string) (*entities.VaultView, error)
	ListVaults(ctx context.Context, owner string) ([]*entities.VaultView, error)
	GetLifecycle(ctx context.Context, vaultID string) (*entities.LifecycleDetail, error)
	CalculateInheritance(ctx context.Context, vaultID string) ([]entities.InheritancePreview, error)
	ListTransactions(ctx context.Context, vaultID string, limit, offset int) ([]*entities.VaultTransaction, int, error)
}

// VaultHandler handles vault endpoints
type VaultHandler struct {
	vaults VaultService
}

// NewVaultHandler creates a new vault handler
func NewVaultHandler(vaults VaultService) *VaultHandler {
	return &VaultHandler{vaults: vaults}
}

// CreateVault creates a new vault with its beneficiary set
// POST /api/v1/vaults
func (h *VaultHandler) CreateVault(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("principal not authenticated"))
		return
	}

	var input entities.CreateVaultInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	out, err := h.vaults.CreateVault(c.Request.Context(), principal, &input)
	middleware.RecordLedgerCall("create-vault", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, out)
}

// ListVaults lists the caller's vaults with lifecycle states
// GET /api/v1/vaults
func (h *VaultHandler) ListVaults(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("principal not authenticated"))
		return
	}

	views, err := h.vaults.ListVaults(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"vaults": views})
}

// GetVault returns one vault with its derived lifecycle state
// GET /api/v1/vaults/:id
func (h *VaultHandler) GetVault(c *gin.Context) {
	view, err := h.vaults.GetVault(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// Deposit adds sBTC to the vault
// POST /api/v1/vaults/:id/deposit
func (h *VaultHandler) Deposit(c *gin.Context) {
	h.submitAmount(c, "deposit-sbtc", h.vaults.Deposit)
}

// Withdraw removes sBTC from the vault
// POST /api/v1/vaults/:id/withdraw
func (h *VaultHandler) Withdraw(c *gin.Context) {
	h.submitAmount(c, "withdraw-sbtc", h.vaults.Withdraw)
}

func (h *VaultHandler) submitAmount(c *gin.Context, fn string, op func(ctx context.Context, owner, vaultID string, amountSats uint64) (*entities.SubmitResponse, error)) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("principal not authenticated"))
		return
	}

	var input entities.AmountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := op(c.Request.Context(), principal, c.Param("id"), input.AmountSats)
	middleware.RecordLedgerCall(fn, err)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, resp)
}

// ProofOfLife resets the vault's activity clock
// POST /api/v1/vaults/:id/proof-of-life
func (h *VaultHandler) ProofOfLife(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("principal not authenticated"))
		return
	}

	resp, err := h.vaults.UpdateProofOfLife(c.Request.Context(), principal, c.Param("id"))
	middleware.RecordLedgerCall("update-proof-of-life", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, resp)
}

// Trigger starts inheritance distribution
// POST /api/v1/vaults/:id/trigger
func (h *VaultHandler) Trigger(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("principal not authenticated"))
		return
	}

	resp, err := h.vaults.TriggerInheritance(c.Request.Context(), principal, c.Param("id"))
	middleware.RecordLedgerCall("trigger-inheritance", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, resp)
}

// Claim claims one beneficiary share by index
// POST /api/v1/vaults/:id/claim
func (h *VaultHandler) Claim(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("principal not authenticated"))
		return
	}

	var input entities.ClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.vaults.ClaimInheritance(c.Request.Context(), principal, c.Param("id"), input.BeneficiaryIndex)
	middleware.RecordLedgerCall("claim-inheritance", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, resp)
}

// GetLifecycle returns the classification breakdown
// GET /api/v1/vaults/:id/lifecycle
func (h *VaultHandler) GetLifecycle(c *gin.Context) {
	detail, err := h.vaults.GetLifecycle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// GetInheritance previews each beneficiary's distributable share
// GET /api/v1/vaults/:id/inheritance
func (h *VaultHandler) GetInheritance(c *gin.Context) {
	previews, err := h.vaults.CalculateInheritance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"beneficiaries": previews})
}

// ListTransactions pages the vault's audit log
// GET /api/v1/vaults/:id/transactions
func (h *VaultHandler) ListTransactions(c *gin.Context) {
	page, limit, offset := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	txs, total, err := h.vaults.ListTransactions(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := (total + limit - 1) / limit
	response.Success(c, http.StatusOK, gin.H{
		"transactions": txs,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}
