package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/wzgate/estatechat/internal/pkg/errcode"
	"github.com/wzgate/estatechat/internal/pkg/response"
)

const apiKeyHeader = "app-api-key"

// APIKey rejects requests whose app-api-key header does not match the
// configured key. An empty configured key disables the check.
func APIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}
		got := c.GetHeader(apiKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			response.Error(c, errcode.ErrUnauthorized, "invalid api key")
			c.Abort()
			return
		}
		c.Next()
	}
}
