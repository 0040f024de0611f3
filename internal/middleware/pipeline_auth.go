package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "valuemap/internal/errors"
)

// PipelineAuthMiddleware guards pipeline routes with the X-API-Key header.
// Rejections are reported through ErrorHandler.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			_ = c.Error(apperrors.ErrPipelineNotConfigured)
			c.Abort()
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			_ = c.Error(apperrors.ErrInvalidAPIKey)
			c.Abort()
			return
		}
		c.Next()
	}
}
