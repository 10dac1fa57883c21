package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "sbtc-heritage.backend/internal/domain/errors"
	"sbtc-heritage.backend/internal/interfaces/http/response"
	"sbtc-heritage.backend/pkg/jwt"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	// PrincipalKey is the context key for the authenticated wallet
	// principal. The principal is the only identity the engine knows.
	PrincipalKey = "principal"
)

// AuthMiddleware validates the session token and stores the principal.
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			abortUnauthorized(c, "authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "invalid authorization format, use: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			if err == jwt.ErrExpiredToken {
				abortUnauthorized(c, "token has expired")
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(PrincipalKey, claims.Principal)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	response.ErrorWithStatus(c, http.StatusUnauthorized, domainerrors.CodeUnauthorized, message)
	c.Abort()
}

// GetPrincipal returns the authenticated principal from the context.
func GetPrincipal(c *gin.Context) (string, bool) {
	principal, exists := c.Get(PrincipalKey)
	if !exists {
		return "", false
	}
	p, ok := principal.(string)
	return p, ok && p != ""
}
