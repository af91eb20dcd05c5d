package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// TerminalStyles 终端渲染使用的样式
type TerminalStyles struct {
	UserLabel  lipgloss.Style
	ModelLabel lipgloss.Style
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	Link       lipgloss.Style
	Border     lipgloss.Style
	Bar        lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
}

// DefaultTerminalStyles 默认配色
func DefaultTerminalStyles() TerminalStyles {
	return TerminalStyles{
		UserLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#89B4FA"}),
		ModelLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#A6E3A1"}),
		Bold:       lipgloss.NewStyle().Bold(true),
		Italic:     lipgloss.NewStyle().Italic(true),
		Link:       lipgloss.NewStyle().Underline(true).Foreground(lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#89DCEB"}),
		Border:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Bar:        lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#CBA6F7"}),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// TerminalRenderer 将消息渲染为带 ANSI 样式的终端文本
type TerminalRenderer struct {
	styles   TerminalStyles
	barWidth int
}

// NewTerminalRenderer 创建终端渲染器，图表柱最长 barWidth 列
func NewTerminalRenderer(styles TerminalStyles, barWidth int) *TerminalRenderer {
	if barWidth <= 0 {
		barWidth = 30
	}
	return &TerminalRenderer{styles: styles, barWidth: barWidth}
}

// RenderMessage 渲染一条消息
func (r *TerminalRenderer) RenderMessage(ctx context.Context, msg *types.Message) (string, error) {
	label := r.styles.ModelLabel.Render("AI")
	if msg.Role == types.RoleUser {
		label = r.styles.UserLabel.Render("You")
	}

	sections := make([]string, 0, len(msg.Parts)+1)
	sections = append(sections, label)
	for _, block := range msg.Parts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := r.renderBlock(block)
		if err != nil {
			return "", err
		}
		sections = append(sections, out)
	}
	return strings.Join(sections, "\n"), nil
}

func (r *TerminalRenderer) renderBlock(block types.ContentBlock) (string, error) {
	switch block.Kind {
	case types.BlockText:
		lines := strings.Split(block.Text, "\n")
		for i, line := range lines {
			lines[i] = r.inline(line)
		}
		return strings.Join(lines, "\n"), nil
	case types.BlockTable:
		return r.table(block.Text), nil
	case types.BlockChart:
		return r.chart(block.Chart), nil
	case types.BlockDiagram:
		header := r.styles.Muted.Render(fmt.Sprintf("[%s diagram]", block.Language))
		return header + "\n" + r.styles.Border.Render(block.Text), nil
	case types.BlockImage:
		size := "unknown size"
		if img, err := ParseDataURI(block.Text); err == nil {
			size = fmt.Sprintf("%s, %d bytes", img.MimeType, len(img.Data))
		}
		return r.styles.Muted.Render(fmt.Sprintf("[Image: %s] use /save to download", size)), nil
	default:
		return "", fmt.Errorf("unknown block kind %q", block.Kind)
	}
}

func (r *TerminalRenderer) inline(text string) string {
	var b strings.Builder
	for _, span := range FormatInline(text) {
		switch span.Kind {
		case SpanBold:
			b.WriteString(r.styles.Bold.Render(span.Text))
		case SpanItalic:
			b.WriteString(r.styles.Italic.Render(span.Text))
		case SpanLink:
			b.WriteString(r.styles.Link.Render(span.Text))
			b.WriteString(r.styles.Muted.Render(" " + ExternalLinkMarker + " " + span.URL))
		default:
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

func (r *TerminalRenderer) table(content string) string {
	parsed := ParseTable(content)

	rows := make([][]string, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = r.inline(cell)
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.styles.Border).
		Headers(parsed.Headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Bold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

func (r *TerminalRenderer) chart(points []types.ChartPoint) string {
	widths := BarWidths(points)

	labelWidth := 0
	for _, p := range points {
		labelWidth = max(labelWidth, lipgloss.Width(p.Label))
	}

	lines := make([]string, 0, len(points))
	for i, p := range points {
		cols := int(widths[i] / 100 * float64(r.barWidth))
		label := p.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(p.Label))
		lines = append(lines, fmt.Sprintf("%s %s %s",
			label, r.styles.Bar.Render(strings.Repeat("█", cols)), r.styles.Muted.Render(formatValue(p.Value))))
	}
	return strings.Join(lines, "\n")
}
