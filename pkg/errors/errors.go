package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// 自定义错误类型
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Err     error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// 预定义错误
var (
	ErrUnauthorized   = &APIError{Code: http.StatusUnauthorized, Message: "Unauthorized", Type: "unauthorized"}
	ErrNotFound       = &APIError{Code: http.StatusNotFound, Message: "Not found", Type: "not_found"}
	ErrInternalServer = &APIError{Code: http.StatusInternalServerError, Message: "Internal server error", Type: "internal_error"}
)

func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Code:    http.StatusUnauthorized,
		Message: message,
		Type:    "unauthorized",
	}
}

func NewInternalServerError(message string, err error) *APIError {
	return &APIError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Type:    "internal_error",
		Err:     err,
	}
}

// 配置错误
var (
	ErrConfigLoad       = errors.New("failed to load configuration")
	ErrConfigValidation = errors.New("configuration validation failed")
)

// 探测错误
var (
	ErrMalformedEndpoint = errors.New("malformed endpoint")
	ErrNoVerifier        = errors.New("no verifier for protocol family")
	ErrUnexpectedStatus  = errors.New("unexpected echo status")
	ErrUnrecognizedBody  = errors.New("unrecognized echo body")
	ErrHandshake         = errors.New("proxy handshake failed")
	ErrAttemptTimeout    = errors.New("probe attempt timed out")
)

// 来源与输出错误
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSinkWrite         = errors.New("failed to write results")
)
