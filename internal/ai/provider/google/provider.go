package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/httpclient"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// DefaultBaseURL Gemini REST API 地址
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Provider Google Gemini Provider 实现
type Provider struct {
	config *types.Config
	client *http.Client
	log    *logger.Logger
}

// New 创建 Gemini Provider
func New(config *types.Config, log *logger.Logger) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if err := config.Validate("google"); err != nil {
		return nil, err
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Provider{
		config: config,
		client: httpclient.New(config.Timeout),
		log:    log.Named("google"),
	}, nil
}

// Name 返回 Provider 名称
func (p *Provider) Name() string {
	return "google"
}

// Gemini 请求结构
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateContentRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

// Gemini 响应结构
type generateContentResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		DisplayName                string   `json:"displayName"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
}

// Generate 调用 models/{model}:generateContent
// 文本与内联图片按返回顺序保留，图片转换为 data URI
func (p *Provider) Generate(ctx context.Context, req *types.GenerateRequest) (*types.GenerateResult, error) {
	reqBody, err := json.Marshal(p.convertRequest(req))
	if err != nil {
		return nil, types.NewProviderError(p.Name(), "marshal request failed", err)
	}

	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(req.Model))
	body, err := p.do(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, err
	}

	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, types.NewProviderError(p.Name(), "unmarshal response failed", err)
	}

	result := &types.GenerateResult{Model: req.Model}
	if len(resp.Candidates) == 0 {
		return result, nil
	}

	candidate := resp.Candidates[0]
	for _, part := range candidate.Content.Parts {
		switch {
		case part.InlineData != nil && part.InlineData.Data != "" && isImageMIME(part.InlineData.MimeType):
			result.Parts = append(result.Parts, types.ResultPart{
				ImageDataURI: fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data),
			})
		case part.Text != "":
			result.Parts = append(result.Parts, types.ResultPart{Text: part.Text})
		}
	}

	p.log.Debug("generate content finished",
		zap.String("model", req.Model),
		zap.String("finish_reason", candidate.FinishReason),
		zap.Int("parts", len(result.Parts)))

	return result, nil
}

// ListModels 列出支持 generateContent 的模型
func (p *Provider) ListModels(ctx context.Context) ([]types.Model, error) {
	body, err := p.do(ctx, http.MethodGet, "/models?pageSize=1000", nil)
	if err != nil {
		return nil, err
	}

	var resp listModelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, types.NewProviderError(p.Name(), "unmarshal response failed", err)
	}

	models := make([]types.Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		if !supports(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		models = append(models, types.Model{
			ID:          strings.TrimPrefix(m.Name, "models/"),
			DisplayName: m.DisplayName,
			OwnedBy:     p.Name(),
		})
	}
	return models, nil
}

// Close 关闭 Provider
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func supports(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
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
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("x-goog-api-key", p.config.APIKey)
	for key, value := range p.config.Headers {
		httpReq.Header.Set(key, value)
	}

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
		return nil, types.NewHTTPError(p.Name(), resp.StatusCode, errorMessage(body))
	}
	return body, nil
}

// errorMessage 提取 {"error":{"message":...}}，无法解析时返回原始响应体
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	return string(body)
}

// convertRequest 历史中的 model 轮次保持 role=model
func (p *Provider) convertRequest(req *types.GenerateRequest) *generateContentRequest {
	out := &generateContentRequest{
		GenerationConfig: generationConfig{Temperature: req.Temperature},
	}
	if req.SystemInstruction != "" {
		out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}

	for _, turn := range req.History {
		role := "user"
		if turn.Role == chattypes.RoleModel {
			role = "model"
		}
		parts := make([]geminiPart, 0, len(turn.Texts))
		for _, text := range turn.Texts {
			parts = append(parts, geminiPart{Text: text})
		}
		out.Contents = append(out.Contents, geminiContent{Role: role, Parts: parts})
	}
	out.Contents = append(out.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}})

	return out
}

func isImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}
