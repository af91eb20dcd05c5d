package factory

import (
	"fmt"
	"time"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/anthropic"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/google"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/openai"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// Endpoint 单个 Provider 的连接设置
type Endpoint struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// Factory 按 Provider 标识创建客户端
type Factory struct {
	endpoints map[registry.ProviderID]Endpoint
	log       *logger.Logger
}

// New 创建 Factory，未配置的 Provider 使用默认地址
func New(endpoints map[registry.ProviderID]Endpoint, log *logger.Logger) *Factory {
	if endpoints == nil {
		endpoints = make(map[registry.ProviderID]Endpoint)
	}
	return &Factory{endpoints: endpoints, log: log}
}

// Create 使用 apiKey 创建 Provider 客户端
// 缺少 apiKey 返回认证错误，未接入的 Provider 返回 ErrProviderNotImplemented
func (f *Factory) Create(id registry.ProviderID, apiKey string) (types.Provider, error) {
	cfg := NewConfig(id).
		WithAPIKey(apiKey).
		WithEndpoint(f.endpoints[id]).
		Build()

	var (
		p   types.Provider
		err error
	)
	switch id {
	case registry.Google:
		p, err = google.New(cfg, f.log)
	case registry.OpenAI:
		p, err = openai.New(cfg, f.log)
	case registry.Anthropic:
		p, err = anthropic.New(cfg, f.log)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrProviderNotImplemented, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
