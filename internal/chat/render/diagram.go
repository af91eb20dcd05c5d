package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/httpclient"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// ErrDiagramDisabled 未配置流程图引擎
var ErrDiagramDisabled = errors.New("diagram rendering is disabled")

// DiagramEngine 把流程图源码渲染为 SVG
// id 在一次渲染内唯一，引擎可用它作为 SVG 根元素的 ID
type DiagramEngine interface {
	Render(ctx context.Context, language, source, id string) (string, error)
}

// NopDiagramEngine 总是返回 ErrDiagramDisabled，渲染器回退为源码占位
type NopDiagramEngine struct{}

func (NopDiagramEngine) Render(context.Context, string, string, string) (string, error) {
	return "", ErrDiagramDisabled
}

// KrokiConfig Kroki 服务配置
type KrokiConfig struct {
	BaseURL string
	Timeout time.Duration
}

// KrokiEngine 通过 Kroki HTTP 接口渲染 mermaid/graphviz/plantuml
type KrokiEngine struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewKrokiEngine 创建 Kroki 引擎
func NewKrokiEngine(cfg KrokiConfig, log *logger.Logger) (*KrokiEngine, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("kroki base URL is required")
	}
	return &KrokiEngine{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpclient.New(cfg.Timeout),
		log:     log.Named("kroki"),
	}, nil
}

// krokiLanguage 将 fence 标签映射为 Kroki 的图表类型
func krokiLanguage(language string) string {
	switch strings.ToLower(language) {
	case "dot", "graphviz":
		return "graphviz"
	case "plantuml":
		return "plantuml"
	default:
		return "mermaid"
	}
}

// Render POST {base}/{language}/svg
func (e *KrokiEngine) Render(ctx context.Context, language, source, id string) (string, error) {
	lang := krokiLanguage(language)
	url := fmt.Sprintf("%s/%s/svg", e.baseURL, lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(source))
	if err != nil {
		return "", fmt.Errorf("create kroki request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("kroki request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read kroki response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		e.log.Warn("diagram render rejected",
			zap.String("diagram_id", id),
			zap.String("language", lang),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("kroki error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return scopeSVG(string(body), id), nil
}

var (
	svgOpenTag = regexp.MustCompile(`<svg\b[^>]*>`)
	svgRootID  = regexp.MustCompile(`\sid="([^"]*)"`)
)

// scopeSVG 把根元素 ID 改为 id，并同步改写内联样式中的 #原ID 选择器
func scopeSVG(svg, id string) string {
	if id == "" {
		return svg
	}
	loc := svgOpenTag.FindStringIndex(svg)
	if loc == nil {
		return svg
	}
	open := svg[loc[0]:loc[1]]
	m := svgRootID.FindStringSubmatch(open)
	if m == nil {
		return svg[:loc[0]] + "<svg" + ` id="` + id + `"` + svg[loc[0]+len("<svg"):]
	}

	oldID := m[1]
	scoped := strings.Replace(open, m[0], ` id="`+id+`"`, 1)
	rest := svg[loc[1]:]
	if oldID != "" {
		rest = strings.ReplaceAll(rest, "#"+oldID, "#"+id)
	}
	return svg[:loc[0]] + scoped + rest
}

// Close 释放空闲连接
func (e *KrokiEngine) Close() {
	e.client.CloseIdleConnections()
}
