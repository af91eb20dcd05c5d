package registry

import (
	"fmt"
	"sync"
)

// ProviderID 大模型 Provider 标识
type ProviderID string

const (
	Google    ProviderID = "google"
	OpenAI    ProviderID = "openai"
	Anthropic ProviderID = "anthropic"
)

// ModelInfo 目录中的一个模型
type ModelInfo struct {
	ID    string
	Label string
	Image bool // 支持图像生成
}

// ProviderInfo Provider 及其模型目录，Models[0] 为该 Provider 的默认模型
type ProviderInfo struct {
	ID     ProviderID
	Label  string
	Models []ModelInfo
}

var (
	mu        sync.RWMutex
	providers []ProviderInfo
	aliases   = make(map[string]string) // 旧模型 ID -> 新模型 ID
)

func init() {
	Register(ProviderInfo{ID: Google, Label: "Google Gemini", Models: []ModelInfo{
		{ID: "gemini-2.5-flash-image", Label: "Gemini 2.5 Flash Image", Image: true},
		{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash"},
		{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro"},
	}}, "gemini-2.5-flash-image-preview", "gemini-2.0-flash-exp-image-generation")
	Register(ProviderInfo{ID: OpenAI, Label: "OpenAI", Models: []ModelInfo{
		{ID: "gpt-4o", Label: "GPT-4o"},
		{ID: "gpt-4-turbo", Label: "GPT-4 Turbo"},
		{ID: "gpt-4o-mini", Label: "GPT-4o mini"},
	}})
	Register(ProviderInfo{ID: Anthropic, Label: "Anthropic", Models: []ModelInfo{
		{ID: "claude-3-5-sonnet-latest", Label: "Claude 3.5 Sonnet"},
		{ID: "claude-3-opus-latest", Label: "Claude 3 Opus"},
	}})

	RegisterAlias("gemini-2.0-pro-exp-02-05", "gemini-2.5-pro")
	RegisterAlias("claude-3-5-sonnet", "claude-3-5-sonnet-latest")
	RegisterAlias("claude-3-opus", "claude-3-opus-latest")
}

// Register 注册 Provider 目录，aliasNames 为指向默认模型的历史 ID
// 重复注册同一 Provider 会替换原目录
func Register(info ProviderInfo, aliasNames ...string) {
	mu.Lock()
	defer mu.Unlock()

	replaced := false
	for i := range providers {
		if providers[i].ID == info.ID {
			providers[i] = info
			replaced = true
		}
	}
	if !replaced {
		providers = append(providers, info)
	}

	if len(info.Models) > 0 {
		for _, alias := range aliasNames {
			aliases[alias] = info.Models[0].ID
		}
	}
}

// RegisterAlias 注册模型重命名
func RegisterAlias(oldID, newID string) {
	mu.Lock()
	defer mu.Unlock()
	aliases[oldID] = newID
}

// ResolveAlias 解析别名为当前模型 ID，非别名原样返回
func ResolveAlias(id string) string {
	mu.RLock()
	defer mu.RUnlock()
	if realID, ok := aliases[id]; ok {
		return realID
	}
	return id
}

// Get 获取 Provider 目录
func Get(id ProviderID) (ProviderInfo, error) {
	mu.RLock()
	defer mu.RUnlock()

	for _, p := range providers {
		if p.ID == id {
			return p, nil
		}
	}
	return ProviderInfo{}, fmt.Errorf("provider %s not found", id)
}

// IsKnown 判断 Provider 是否已注册
func IsKnown(id ProviderID) bool {
	_, err := Get(id)
	return err == nil
}

// List 按注册顺序列出所有 Provider
func List() []ProviderInfo {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]ProviderInfo, len(providers))
	copy(out, providers)
	return out
}

// Models 返回 Provider 的模型目录
func Models(id ProviderID) []ModelInfo {
	info, err := Get(id)
	if err != nil {
		return nil
	}
	return info.Models
}

// HasModel 判断模型是否在 Provider 目录中
func HasModel(id ProviderID, modelID string) bool {
	for _, m := range Models(id) {
		if m.ID == modelID {
			return true
		}
	}
	return false
}

// DefaultModel 返回 Provider 的第一个模型
func DefaultModel(id ProviderID) string {
	models := Models(id)
	if len(models) == 0 {
		return ""
	}
	return models[0].ID
}
