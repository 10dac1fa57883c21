package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sbtc-heritage.backend/internal/domain/repositories"
	"sbtc-heritage.backend/internal/interfaces/http/response"
)

// TipSource reports the most recently observed chain tip.
type TipSource interface {
	TipHeight() uint64
}

// AdminHandler handles the operator surface
type AdminHandler struct {
	vaultRepo repositories.VaultRepository
	tip       TipSource
}

func NewAdminHandler(vaultRepo repositories.VaultRepository, tip TipSource) *AdminHandler {
	return &AdminHandler{vaultRepo: vaultRepo, tip: tip}
}

// Stats reports engine-level counters
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	total, err := h.vaultRepo.TotalVaults(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"totalVaults":    total,
		"cachedVaults":   h.vaultRepo.CacheSize(),
		"chainTipHeight": h.tip.TipHeight(),
	})
}
