package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/httpclient"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// DefaultBaseURL Anthropic API 地址
const DefaultBaseURL = "https://api.anthropic.com"

const (
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

// Provider Anthropic Provider 实现
type Provider struct {
	config *types.Config
	client *http.Client
	log    *logger.Logger
}

// New 创建 Anthropic Provider
func New(config *types.Config, log *logger.Logger) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if err := config.Validate("anthropic"); err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		client: httpclient.New(config.Timeout),
		log:    log.Named("anthropic"),
	}, nil
}

// Name 返回 Provider 名称
func (p *Provider) Name() string {
	return "anthropic"
}

// setHeaders 设置请求 headers（包括默认 headers 和自定义 headers）
func (p *Provider) setHeaders(req *http.Request, includeContentType bool) {
	if includeContentType {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	for key, value := range p.config.Headers {
		req.Header.Set(key, value)
	}
}

// Anthropic 内部请求结构
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Anthropic 内部响应结构
type anthropicResponse struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicModelsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
}

// Generate 调用 /v1/messages
func (p *Provider) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResult, error) {
	reqBody, err := json.Marshal(p.convertRequest(req))
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "marshal request failed", err)
	}

	body, err := p.do(ctx, http.MethodPost, "/v1/messages", reqBody)
	if err != nil {
		return nil, err
	}

	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, types.NewProviderError(p.Name(), "unmarshal response failed", err)
	}

	p.log.Debug("messages completed",
		zap.String("model", resp.Model),
		zap.String("stop_reason", resp.StopReason))

	return p.convertResponse(req.Model, &resp), nil
}

// ListModels 获取可用模型列表
func (p *Provider) ListModels(ctx context.Context) ([]types.Model, error) {
	body, err := p.do(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return nil, err
	}

	var modelsResp anthropicModelsResponse
	if err := json.Unmarshal(body, &modelsResp); err != nil {
		return nil, types.NewProviderError(p.Name(), "unmarshal response failed", err)
	}

	models := make([]types.Model, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		models = append(models, types.Model{ID: m.ID, DisplayName: m.DisplayName, OwnedBy: p.Name()})
	}
	return models, nil
}

// Close 关闭 Provider
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Provider) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, p.config.BaseURL+path, reader)
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "create request failed", err)
	}
	p.setHeaders(httpReq, payload != nil)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "read response failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewHTTPError(p.Name(), resp.StatusCode, string(body))
	}
	return body, nil
}

// convertRequest 转换为 Anthropic 请求，系统指令单独放在 system 字段
func (p *Provider) convertRequest(req *types.GenerateRequest) *anthropicRequest {
	out := &anthropicRequest{
		Model:       req.Model,
		System:      req.SystemInstruction,
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
	}

	for _, turn := range req.History {
		role := "user"
		if turn.Role == chattypes.RoleModel {
			role = "assistant"
		}
		out.Messages = append(out.Messages, anthropicMessage{
			Role:    role,
			Content: strings.Join(turn.Texts, "\n"),
		})
	}
	out.Messages = append(out.Messages, anthropicMessage{Role: "user", Content: req.Prompt})

	return out
}

// convertResponse 按顺序保留所有文本块
func (p *Provider) convertResponse(model string, resp *anthropicResponse) *types.GenerateResult {
	result := &types.GenerateResult{Model: model}
	if resp.Model != "" {
		result.Model = resp.Model
	}
	for _, c := range resp.Content {
		if c.Type == "text" && c.Text != "" {
			result.Parts = append(result.Parts, types.ResultPart{Text: c.Text})
		}
	}
	return result
}
