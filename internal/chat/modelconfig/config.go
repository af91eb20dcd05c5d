package modelconfig

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
)

// Provider 配置中的 Provider 标识
type Provider = registry.ProviderID

// 环境变量中的默认 Google 密钥，按顺序查找
var googleEnvKeys = []string{"GEMINI_API_KEY", "API_KEY"}

// APIKeys 用户自带的各 Provider 密钥
type APIKeys struct {
	Google    string `json:"google"`
	OpenAI    string `json:"openai"`
	Anthropic string `json:"anthropic"`
}

// Get 返回指定 Provider 的密钥
func (k APIKeys) Get(p Provider) string {
	switch p {
	case registry.Google:
		return k.Google
	case registry.OpenAI:
		return k.OpenAI
	case registry.Anthropic:
		return k.Anthropic
	default:
		return ""
	}
}

// Set 设置指定 Provider 的密钥，未知 Provider 忽略
func (k *APIKeys) Set(p Provider, key string) {
	key = strings.TrimSpace(key)
	switch p {
	case registry.Google:
		k.Google = key
	case registry.OpenAI:
		k.OpenAI = key
	case registry.Anthropic:
		k.Anthropic = key
	}
}

// ModelConfig 当前选择的 Provider、模型以及 BYOK 密钥
type ModelConfig struct {
	Provider Provider `json:"provider"`
	ModelID  string   `json:"modelId"`
	APIKeys  APIKeys  `json:"apiKeys"`
}

// DefaultConfig 默认使用 Google 的图像模型
func DefaultConfig() ModelConfig {
	return ModelConfig{
		Provider: registry.Google,
		ModelID:  registry.DefaultModel(registry.Google),
	}
}

// Migrate 规范化持久化的配置
// 旧模型 ID 按别名重写，未知 Provider 回到默认配置，目录外的模型回到该 Provider 的首个模型，密钥保持不变
func Migrate(cfg ModelConfig) ModelConfig {
	if !registry.IsKnown(cfg.Provider) {
		def := DefaultConfig()
		def.APIKeys = cfg.APIKeys
		return def
	}

	cfg.ModelID = registry.ResolveAlias(strings.TrimSpace(cfg.ModelID))
	if !registry.HasModel(cfg.Provider, cfg.ModelID) {
		cfg.ModelID = registry.DefaultModel(cfg.Provider)
	}
	return cfg
}

// WithProvider 切换 Provider；modelID 不在目录中时使用该 Provider 的首个模型
func (c ModelConfig) WithProvider(p Provider, modelID string) ModelConfig {
	c.Provider = p
	c.ModelID = registry.ResolveAlias(modelID)
	if !registry.HasModel(p, c.ModelID) {
		c.ModelID = registry.DefaultModel(p)
	}
	return c
}

// WithModel 在当前 Provider 内切换模型
func (c ModelConfig) WithModel(modelID string) ModelConfig {
	return c.WithProvider(c.Provider, modelID)
}

// Validate 校验 Provider 与模型是否在目录中
func (c ModelConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Provider, validation.Required, validation.By(func(value interface{}) error {
			if !registry.IsKnown(value.(Provider)) {
				return validation.NewError("validation_unknown_provider", "unknown provider")
			}
			return nil
		})),
		validation.Field(&c.ModelID, validation.Required, validation.By(func(value interface{}) error {
			if !registry.HasModel(c.Provider, value.(string)) {
				return validation.NewError("validation_unknown_model", "model is not in the provider catalog")
			}
			return nil
		})),
	)
}

// ResolveAPIKey 返回调用 Provider 使用的密钥
// 优先使用 BYOK；仅 Google 在为空时回退到环境变量
func ResolveAPIKey(cfg ModelConfig, getenv func(string) string) string {
	if key := cfg.APIKeys.Get(cfg.Provider); key != "" {
		return key
	}
	if cfg.Provider != registry.Google || getenv == nil {
		return ""
	}
	for _, name := range googleEnvKeys {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
