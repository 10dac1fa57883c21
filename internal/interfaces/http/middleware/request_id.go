package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sbtc-heritage.backend/pkg/logger"
)

const RequestIDKey = "request_id"

// RequestIDMiddleware tags each request with a unique id, honoring a
// caller-supplied X-Request-ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)

		// Mirror into the request context so logger.WithContext finds it.
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", id)
		c.Next()
	}
}
