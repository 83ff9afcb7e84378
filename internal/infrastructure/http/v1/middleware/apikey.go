package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
)

const HeaderAPIKey = "X-API-Key"

// APIKey checks the X-API-Key header against the configured keys.
// An empty key list disables the check (local development).
func APIKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		provided := c.GetHeader(HeaderAPIKey)
		if provided == "" {
			_ = c.Error(apperror.NewUnauthorized("missing API key"))
			c.Abort()
			return
		}

		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				c.Next()
				return
			}
		}

		_ = c.Error(apperror.NewUnauthorized("invalid API key"))
		c.Abort()
	}
}
