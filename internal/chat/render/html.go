package render

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// ExternalLinkMarker 外链标记
const ExternalLinkMarker = "↗"

var linkSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

// safeLinkURL 只允许 http、https 与 mailto 链接生成锚点
func safeLinkURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return linkSchemes[strings.ToLower(u.Scheme)]
}

// HTMLRenderer 将消息渲染为 HTML 片段
type HTMLRenderer struct {
	diagrams DiagramEngine
	log      *logger.Logger
}

// NewHTMLRenderer 创建 HTML 渲染器，diagrams 为 nil 时流程图只显示源码占位
func NewHTMLRenderer(diagrams DiagramEngine, log *logger.Logger) *HTMLRenderer {
	if diagrams == nil {
		diagrams = NopDiagramEngine{}
	}
	return &HTMLRenderer{diagrams: diagrams, log: log.Named("render.html")}
}

// RenderMessage 渲染消息的所有内容块
func (r *HTMLRenderer) RenderMessage(ctx context.Context, msg *types.Message) (string, error) {
	body, err := r.RenderBlocks(ctx, msg.ID, msg.Parts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<div class="message message-%s" data-id="%s">%s</div>`,
		msg.Role, html.EscapeString(msg.ID), body), nil
}

// RenderBlocks 按顺序渲染内容块，scope 用于生成流程图 ID
func (r *HTMLRenderer) RenderBlocks(ctx context.Context, scope string, blocks []types.ContentBlock) (string, error) {
	var b strings.Builder
	ids := NewDiagramScope(scope)

	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch block.Kind {
		case types.BlockText:
			r.writeText(&b, block.Text)
		case types.BlockTable:
			r.writeTable(&b, block.Text)
		case types.BlockChart:
			r.writeChart(&b, block.Chart)
		case types.BlockDiagram:
			r.writeDiagram(ctx, &b, block, ids.Next(i))
		case types.BlockImage:
			r.writeImage(&b, block.Text)
		default:
			return "", fmt.Errorf("unknown block kind %q", block.Kind)
		}
	}

	return b.String(), nil
}

// InlineHTML 渲染行内格式
func InlineHTML(text string) string {
	var b strings.Builder
	for _, span := range FormatInline(text) {
		switch span.Kind {
		case SpanBold:
			b.WriteString("<strong>" + html.EscapeString(span.Text) + "</strong>")
		case SpanItalic:
			b.WriteString("<em>" + html.EscapeString(span.Text) + "</em>")
		case SpanLink:
			if !safeLinkURL(span.URL) {
				b.WriteString(html.EscapeString(span.Text))
				continue
			}
			fmt.Fprintf(&b, `<a href="%s" target="_blank" rel="noopener noreferrer">%s <span class="external">%s</span></a>`,
				html.EscapeString(span.URL), html.EscapeString(span.Text), ExternalLinkMarker)
		default:
			b.WriteString(html.EscapeString(span.Text))
		}
	}
	return b.String()
}

func (r *HTMLRenderer) writeText(b *strings.Builder, text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = InlineHTML(line)
	}
	b.WriteString(`<div class="text">` + strings.Join(lines, "<br>") + "</div>")
}

func (r *HTMLRenderer) writeTable(b *strings.Builder, content string) {
	t := ParseTable(content)

	b.WriteString(`<table class="table"><thead><tr>`)
	for _, h := range t.Headers {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + InlineHTML(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func (r *HTMLRenderer) writeChart(b *strings.Builder, points []types.ChartPoint) {
	widths := BarWidths(points)

	b.WriteString(`<div class="chart">`)
	for i, p := range points {
		fmt.Fprintf(b,
			`<div class="bar"><span class="label">%s</span><div class="track"><div class="fill" style="width: %.2f%%"></div></div><span class="value">%s</span></div>`,
			html.EscapeString(p.Label), widths[i], formatValue(p.Value))
	}
	b.WriteString("</div>")
}

func (r *HTMLRenderer) writeDiagram(ctx context.Context, b *strings.Builder, block types.ContentBlock, id string) {
	svg, err := r.diagrams.Render(ctx, block.Language, block.Text, id)
	if err != nil {
		r.log.Debug("diagram fallback to source", zap.String("diagram_id", id), zap.Error(err))
		fmt.Fprintf(b, `<div class="diagram diagram-error" id="%s"><p>Unable to render diagram.</p><pre><code>%s</code></pre></div>`,
			html.EscapeString(id), html.EscapeString(block.Text))
		return
	}
	fmt.Fprintf(b, `<div class="diagram" id="%s">%s</div>`, html.EscapeString(id), svg)
}

func (r *HTMLRenderer) writeImage(b *strings.Builder, dataURI string) {
	name := ImageFileName(dataURI, nowFunc())
	fmt.Fprintf(b, `<figure class="image"><img src="%s" alt="Generated image"><a download="%s" href="%s">Download</a></figure>`,
		html.EscapeString(dataURI), html.EscapeString(name), html.EscapeString(dataURI))
}
