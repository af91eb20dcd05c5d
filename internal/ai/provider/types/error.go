package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType API 错误类型
type ErrorType string

const (
	// 4xx 客户端错误
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error" // 400 - 请求格式或内容错误
	ErrorTypeAuthentication ErrorType = "authentication_error"  // 401/403 - API Key 问题
	ErrorTypeNotFound       ErrorType = "not_found_error"       // 404 - 模型不存在或无权访问
	ErrorTypeRateLimit      ErrorType = "rate_limit_error"      // 429 - 配额耗尽

	// 5xx 服务器错误
	ErrorTypeAPI        ErrorType = "api_error"        // 500 - 内部服务器错误
	ErrorTypeOverloaded ErrorType = "overloaded_error" // 503/529 - 服务暂时不可用
)

var (
	// ErrProviderNotImplemented 所选 Provider 尚未接入
	ErrProviderNotImplemented = errors.New("provider not implemented")
	// ErrEmptyResponse Provider 没有返回任何内容
	ErrEmptyResponse = errors.New("provider returned an empty response")
)

// ProviderError Provider 错误
type ProviderError struct {
	Type       ErrorType // 错误类型
	Provider   string    // Provider 名称
	StatusCode int       // HTTP 状态码
	Message    string    // 原始错误消息
	Err        error     // 原始错误
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s][%s][%d] %s", e.Provider, e.Type, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Provider, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Provider, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable 判断错误是否可重试
func (e *ProviderError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeOverloaded:
		return true
	default:
		return false
	}
}

// NewProviderError 创建 Provider 错误
func NewProviderError(provider, message string, err error) *ProviderError {
	errType := ErrorTypeAPI
	if err != nil && mentionsAPIKey(err.Error()) {
		errType = ErrorTypeAuthentication
	}
	return &ProviderError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

// NewHTTPError 根据 HTTP 状态码和响应体创建错误
func NewHTTPError(provider string, statusCode int, body string) *ProviderError {
	message := fmt.Sprintf("API error: %s", strings.TrimSpace(body))
	return &ProviderError{
		Type:       ClassifyStatus(statusCode, message),
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ClassifyStatus 将状态码映射为错误类型，提到 API key 的消息视为认证错误
func ClassifyStatus(statusCode int, message string) ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuthentication
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusServiceUnavailable || statusCode == 529:
		return ErrorTypeOverloaded
	case mentionsAPIKey(message):
		return ErrorTypeAuthentication
	case statusCode >= 400 && statusCode < 500:
		return ErrorTypeInvalidRequest
	default:
		return ErrorTypeAPI
	}
}

func mentionsAPIKey(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "api key") || strings.Contains(lower, "api_key")
}

// TypeOf 返回错误类型，非 ProviderError 时为空
func TypeOf(err error) ErrorType {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Type
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return ErrorTypeAuthentication
	}
	return ""
}

// IsAuthentication 判断是否为认证错误
func IsAuthentication(err error) bool {
	return TypeOf(err) == ErrorTypeAuthentication
}

// IsModelNotFound 判断是否为模型不存在
func IsModelNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound
}

// IsQuotaExceeded 判断是否为配额耗尽或服务暂不可用
func IsQuotaExceeded(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.IsRetryable()
}
