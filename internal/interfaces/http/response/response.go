package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "sbtc-heritage.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps a domain error to its HTTP envelope and sends it. Every
// error body carries a machine code plus a human message so the caller
// can show a specific remediation.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

// ErrorWithStatus sends an error response with a specific status and code.
func ErrorWithStatus(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
