package middleware

import (
	stderrors "errors"
	"proxyprobe/log"
	"proxyprobe/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 状态接口的错误响应
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// SendErrorResponse 写入错误响应并中止后续处理
func SendErrorResponse(c *gin.Context, statusCode int, errorType string, message string) {
	log.Warn("%s %s -> %d %s: %s", c.Request.Method, c.Request.URL.Path, statusCode, errorType, message)
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Type:    errorType,
			Message: message,
			Code:    statusCode,
		},
	})
}

// SendAPIError 发送APIError类型的错误响应
func SendAPIError(c *gin.Context, apiErr *errors.APIError) {
	SendErrorResponse(c, apiErr.Code, apiErr.Type, apiErr.Message)
}

// SendError 任意错误，非 APIError 按 500 处理
func SendError(c *gin.Context, err error) {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		SendAPIError(c, apiErr)
		return
	}
	SendAPIError(c, errors.NewInternalServerError("Internal server error", err))
}
