package export

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// MarkdownExporter 导出为 Markdown
type MarkdownExporter struct{}

// NewMarkdownExporter 创建 Markdown 导出器
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export 每条消息一个三级标题，块之间以空行分隔
func (e *MarkdownExporter) Export(messages []*chattypes.Message) ([]byte, error) {
	var b strings.Builder
	b.WriteString("# " + Title + "\n")

	for _, msg := range messages {
		b.WriteString("\n### " + roleLabel(msg.Role) + "\n\n")
		for i, block := range msg.Parts {
			md, err := blockMarkdown(block)
			if err != nil {
				return nil, fmt.Errorf("message %s: %w", msg.ID, err)
			}
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(md)
		}
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }

func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// HTMLExporter 将 Markdown 导出结果经 goldmark 转为独立的 HTML 页面
type HTMLExporter struct {
	md goldmark.Markdown
}

// NewHTMLExporter 创建 HTML 导出器，启用 GFM 表格
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; color: #1f2937; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d5db; padding: 4px 8px; }
pre { background: #f3f4f6; padding: 8px; overflow-x: auto; }
img { max-width: 100%%; }
</style>
</head>
<body>
%s</body>
</html>
`

// Export 渲染 HTML
func (e *HTMLExporter) Export(messages []*chattypes.Message) ([]byte, error) {
	source, err := NewMarkdownExporter().Export(messages)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := e.md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}
	return []byte(fmt.Sprintf(htmlPage, html.EscapeString(Title), body.String())), nil
}

func (e *HTMLExporter) FileExtension() string { return ".html" }

func (e *HTMLExporter) MimeType() string { return "text/html" }

// TextExporter 导出为纯文本
type TextExporter struct{}

// NewTextExporter 创建纯文本导出器
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export 先用 blackfriday 渲染 Markdown，再去掉标签
func (e *TextExporter) Export(messages []*chattypes.Message) ([]byte, error) {
	source, err := NewMarkdownExporter().Export(messages)
	if err != nil {
		return nil, err
	}
	rendered := blackfriday.Run(source)
	return []byte(htmlToPlainText(string(rendered)) + "\n"), nil
}

func (e *TextExporter) FileExtension() string { return ".txt" }

func (e *TextExporter) MimeType() string { return "text/plain" }

var (
	reBlockBreak   = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</tr>|</li>|</pre>`)
	reHeading      = regexp.MustCompile(`(?i)</h[1-6]>`)
	reCell         = regexp.MustCompile(`(?i)</t[hd]>`)
	reImage        = regexp.MustCompile(`(?i)<img[^>]*>`)
	reTag          = regexp.MustCompile(`<[^>]+>`)
	reMultiNewline = regexp.MustCompile(`\n{3,}`)
)

// htmlToPlainText 将 HTML 转换为纯文本
func htmlToPlainText(s string) string {
	s = reImage.ReplaceAllString(s, "[Image]")
	s = reBlockBreak.ReplaceAllString(s, "\n")
	s = reHeading.ReplaceAllString(s, "\n\n")
	s = reCell.ReplaceAllString(s, "\t")
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, strings.TrimSpace(line))
	}
	s = strings.Join(cleaned, "\n")
	s = reMultiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
