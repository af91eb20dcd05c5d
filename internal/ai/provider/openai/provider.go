package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/httpclient"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// DefaultBaseURL OpenAI API 地址
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider OpenAI Provider 实现
type Provider struct {
	client     *openai.Client
	httpClient *http.Client
	log        *logger.Logger
}

// New 创建 OpenAI Provider
func New(config *types.Config, lgr *logger.Logger) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if err := config.Validate("openai"); err != nil {
		return nil, err
	}

	log := lgr
	if log == nil {
		log = logger.L()
	}

	httpClient := httpclient.New(config.Timeout)

	clientCfg := openai.DefaultConfig(config.APIKey)
	clientCfg.BaseURL = strings.TrimRight(config.BaseURL, "/")
	clientCfg.HTTPClient = &headerDoer{client: httpClient, headers: config.Headers}

	return &Provider{
		client:     openai.NewClientWithConfig(clientCfg),
		httpClient: httpClient,
		log:        log.Named("openai"),
	}, nil
}

// headerDoer 为每个请求附加自定义 headers
type headerDoer struct {
	client  *http.Client
	headers map[string]string
}

func (d *headerDoer) Do(req *http.Request) (*http.Response, error) {
	for key, value := range d.headers {
		req.Header.Set(key, value)
	}
	return d.client.Do(req)
}

// Name 返回 Provider 名称
func (p *Provider) Name() string {
	return "openai"
}

// Generate 调用 Chat Completions 接口
func (p *Provider) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResult, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.convertRequest(req))
	if err != nil {
		return nil, p.convertError(err)
	}

	result := &types.GenerateResult{Model: req.Model}
	if resp.Model != "" {
		result.Model = resp.Model
	}
	// 只取第一个候选
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		result.Parts = append(result.Parts, types.ResultPart{Text: resp.Choices[0].Message.Content})
	}

	p.log.Debug("chat completion finished",
		zap.String("model", result.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return result, nil
}

// ListModels 获取可用模型列表
func (p *Provider) ListModels(ctx context.Context) ([]types.Model, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, p.convertError(err)
	}

	models := make([]types.Model, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, types.Model{ID: m.ID, DisplayName: m.ID, OwnedBy: m.OwnedBy})
	}
	return models, nil
}

// Close 关闭 Provider
func (p *Provider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *Provider) convertRequest(req *types.GenerateRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == chattypes.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: strings.Join(turn.Texts, "\n"),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	}
}

// convertError 将 SDK 错误转换为 ProviderError
func (p *Provider) convertError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := types.NewHTTPError(p.Name(), apiErr.HTTPStatusCode, apiErr.Message)
		pe.Err = err
		return pe
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		pe := types.NewHTTPError(p.Name(), reqErr.HTTPStatusCode, reqErr.Error())
		pe.Err = err
		return pe
	}

	return types.NewProviderError(p.Name(), "request failed", err)
}
