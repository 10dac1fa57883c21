package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "sbtc-heritage.backend/internal/domain/errors"
	"sbtc-heritage.backend/internal/interfaces/http/response"
	"sbtc-heritage.backend/internal/usecases"
	"sbtc-heritage.backend/pkg/jwt"
)

// AuthHandler issues principal session tokens
type AuthHandler struct {
	jwtService *jwt.Service
}

func NewAuthHandler(jwtService *jwt.Service) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

type sessionInput struct {
	Principal string `json:"principal" binding:"required"`
}

// CreateSession issues a token pair for a wallet principal
// POST /api/v1/auth/session
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var input sessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := usecases.ValidatePrincipal(input.Principal); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(input.Principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"principal": input.Principal,
		"tokens":    pair,
	})
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshSession exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshSession(c *gin.Context) {
	var input refreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	claims, err := h.jwtService.ValidateToken(input.RefreshToken)
	if err != nil {
		response.Error(c, domainerrors.Unauthorized("invalid refresh token"))
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(claims.Principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"principal": claims.Principal,
		"tokens":    pair,
	})
}
