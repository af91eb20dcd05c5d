package render

import (
	"regexp"
	"strings"
)

// SpanKind 行内片段类型
type SpanKind string

const (
	SpanText   SpanKind = "text"
	SpanBold   SpanKind = "bold"
	SpanItalic SpanKind = "italic"
	SpanLink   SpanKind = "link"
)

// Span 行内格式化后的片段
type Span struct {
	Kind SpanKind
	Text string
	URL  string // 仅 SpanLink
}

var (
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// FormatInline 将 markdown-lite 文本切分为片段
// 先提取 [label](url) 链接，其余部分依次按 **粗体** 和 *斜体* 切分，
// 未配对的星号保持原样
func FormatInline(text string) []Span {
	spans := make([]Span, 0, 1)

	splitAround(linkPattern, text, func(plain string) {
		spans = appendEmphasis(spans, plain)
	}, func(groups []string) {
		spans = append(spans, Span{Kind: SpanLink, Text: groups[0], URL: groups[1]})
	})

	return spans
}

// PlainText 去掉行内标记后的文本，链接保留标签
func PlainText(text string) string {
	var b strings.Builder
	for _, span := range FormatInline(text) {
		b.WriteString(span.Text)
	}
	return b.String()
}

func appendEmphasis(spans []Span, text string) []Span {
	splitAround(boldPattern, text, func(plain string) {
		splitAround(italicPattern, plain, func(rest string) {
			spans = append(spans, Span{Kind: SpanText, Text: rest})
		}, func(groups []string) {
			spans = append(spans, Span{Kind: SpanItalic, Text: groups[0]})
		})
	}, func(groups []string) {
		spans = append(spans, Span{Kind: SpanBold, Text: groups[0]})
	})
	return spans
}

// splitAround 按正则交替回调未匹配片段与捕获组，空片段跳过
func splitAround(re *regexp.Regexp, text string, plain func(string), match func([]string)) {
	last := 0
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			plain(text[last:loc[0]])
		}
		groups := make([]string, 0, len(loc)/2-1)
		for i := 2; i < len(loc); i += 2 {
			if loc[i] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, text[loc[i]:loc[i+1]])
		}
		match(groups)
		last = loc[1]
	}
	if last < len(text) {
		plain(text[last:])
	}
}
