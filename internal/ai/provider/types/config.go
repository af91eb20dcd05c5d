package types

import (
	"errors"
	"time"
)

var (
	ErrMissingAPIKey  = errors.New("API key is required")
	ErrMissingBaseURL = errors.New("base URL is required")
)

// DefaultTimeout 默认请求超时
const DefaultTimeout = 60 * time.Second

// Config Provider 通用配置
type Config struct {
	APIKey  string            // API Key
	BaseURL string            // API 基础 URL
	Timeout time.Duration     // 请求超时
	Headers map[string]string // 自定义 HTTP Headers
}

// Validate 验证配置，缺少 API Key 时返回认证错误
func (c *Config) Validate(provider string) error {
	if c.APIKey == "" {
		return &ProviderError{
			Type:     ErrorTypeAuthentication,
			Provider: provider,
			Message:  "missing API key",
			Err:      ErrMissingAPIKey,
		}
	}
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
