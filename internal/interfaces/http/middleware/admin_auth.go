package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "sbtc-heritage.backend/internal/domain/errors"
	"sbtc-heritage.backend/internal/interfaces/http/response"
	"sbtc-heritage.backend/pkg/crypto"
)

const AdminAPIKeyHeader = "X-Admin-API-Key"

// AdminAuthMiddleware gates the admin surface behind a bcrypt-hashed API
// key. Only the hash lives in configuration.
func AdminAuthMiddleware(apiKeyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKeyHash == "" {
			response.ErrorWithStatus(c, http.StatusForbidden, domainerrors.CodeForbidden, "admin surface is disabled")
			c.Abort()
			return
		}

		key := c.GetHeader(AdminAPIKeyHeader)
		if key == "" || !crypto.CheckAPIKey(key, apiKeyHash) {
			response.ErrorWithStatus(c, http.StatusForbidden, domainerrors.CodeForbidden, "invalid admin api key")
			c.Abort()
			return
		}
		c.Next()
	}
}
