package export

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lk2023060901/seekcompass-assistant/internal/chat/render"
	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// CanvasExporter 使用块渲染器导出 HTML，图表和流程图与聊天画布一致
type CanvasExporter struct {
	renderer render.Renderer
	timeout  time.Duration
}

// NewCanvasExporter 创建画布导出器，timeout 限制整个导出的渲染时间
func NewCanvasExporter(renderer render.Renderer, timeout time.Duration) *CanvasExporter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CanvasExporter{renderer: renderer, timeout: timeout}
}

const canvasStyle = `body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; }
.message { margin: 1rem 0; padding: 0.75rem; border-radius: 8px; }
.message-user { background: #eef2ff; }
.message-model { background: #f9fafb; }
.bar { display: flex; align-items: center; gap: 8px; }
.track { flex: 1; background: #e5e7eb; height: 12px; border-radius: 4px; }
.fill { background: #6366f1; height: 12px; border-radius: 4px; }
.diagram-error { color: #b91c1c; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d5db; padding: 4px 8px; }`

// Export 渲染每条消息
func (e *CanvasExporter) Export(messages []*chattypes.Message) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n",
		html.EscapeString(Title), canvasStyle)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(Title))

	for _, msg := range messages {
		out, err := e.renderer.RenderMessage(ctx, msg)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.ID, err)
		}
		b.WriteString(out)
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String()), nil
}

func (e *CanvasExporter) FileExtension() string { return ".html" }

func (e *CanvasExporter) MimeType() string { return "text/html" }
