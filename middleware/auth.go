package middleware

import (
	"crypto/subtle"
	"proxyprobe/pkg/errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证中间件，apiKey 为空时不校验
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey != "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				apiErr := errors.NewUnauthorizedError("Missing Authorization header")
				SendAPIError(c, apiErr)
				return
			}

			// 移除Bearer前缀
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				apiErr := errors.NewUnauthorizedError("Invalid API key")
				SendAPIError(c, apiErr)
				return
			}
		}
		c.Next()
	}
}
