package factory

import (
	"strings"
	"time"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/anthropic"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/google"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/openai"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
)

// defaultBaseURLs 各 Provider 的官方地址
var defaultBaseURLs = map[registry.ProviderID]string{
	registry.Google:    google.DefaultBaseURL,
	registry.OpenAI:    openai.DefaultBaseURL,
	registry.Anthropic: anthropic.DefaultBaseURL,
}

// ConfigBuilder 客户端配置构建器，以 Provider 官方地址为起点
type ConfigBuilder struct {
	config types.Config
}

// NewConfig 创建 id 对应的配置构建器
func NewConfig(id registry.ProviderID) *ConfigBuilder {
	return &ConfigBuilder{config: types.Config{
		BaseURL: defaultBaseURLs[id],
		Timeout: types.DefaultTimeout,
		Headers: make(map[string]string),
	}}
}

// WithAPIKey 设置 API Key，去掉首尾空白
func (b *ConfigBuilder) WithAPIKey(apiKey string) *ConfigBuilder {
	b.config.APIKey = strings.TrimSpace(apiKey)
	return b
}

// WithEndpoint 应用配置文件中的覆盖项，空字段保持默认值
func (b *ConfigBuilder) WithEndpoint(ep Endpoint) *ConfigBuilder {
	if ep.BaseURL != "" {
		b.config.BaseURL = strings.TrimRight(ep.BaseURL, "/")
	}
	return b.WithTimeout(ep.Timeout).WithHeaders(ep.Headers)
}

// WithTimeout 设置超时时间，非正数保持默认值
func (b *ConfigBuilder) WithTimeout(timeout time.Duration) *ConfigBuilder {
	if timeout > 0 {
		b.config.Timeout = timeout
	}
	return b
}

// WithHeaders 合并自定义 Headers
func (b *ConfigBuilder) WithHeaders(headers map[string]string) *ConfigBuilder {
	for key, value := range headers {
		b.config.Headers[key] = value
	}
	return b
}

// Build 构建最终配置，每次返回独立副本
func (b *ConfigBuilder) Build() *types.Config {
	clone := b.config
	clone.Headers = make(map[string]string, len(b.config.Headers))
	for k, v := range b.config.Headers {
		clone.Headers[k] = v
	}
	return &clone
}
