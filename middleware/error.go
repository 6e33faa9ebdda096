package middleware

import (
	"net/http"
	"proxyprobe/log"
	"proxyprobe/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ErrorMiddleware 把处理器中的 panic 转成统一的错误响应
func ErrorMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		switch v := recovered.(type) {
		case *errors.APIError:
			log.Error("API error: %v", v)
			SendAPIError(c, v)
		case error:
			log.Error("Unexpected error on %s: %v", c.Request.URL.Path, v)
			SendError(c, v)
		default:
			log.Error("Unexpected panic on %s: %v", c.Request.URL.Path, v)
			SendErrorResponse(c, http.StatusInternalServerError, "internal_error", "Internal server error")
		}
	})
}

// NotFoundHandler 未注册路由的响应
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		SendAPIError(c, errors.ErrNotFound)
	}
}
