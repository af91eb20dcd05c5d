package render

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

func TestFormatInline(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Span
	}{
		{
			name: "plain text is unchanged",
			text: "just words",
			want: []Span{{Kind: SpanText, Text: "just words"}},
		},
		{
			name: "bold and italic",
			text: "a **b** *c* d",
			want: []Span{
				{Kind: SpanText, Text: "a "},
				{Kind: SpanBold, Text: "b"},
				{Kind: SpanText, Text: " "},
				{Kind: SpanItalic, Text: "c"},
				{Kind: SpanText, Text: " d"},
			},
		},
		{
			name: "bold then link",
			text: "**Jasper** see [Site](https://jasper.ai)",
			want: []Span{
				{Kind: SpanBold, Text: "Jasper"},
				{Kind: SpanText, Text: " see "},
				{Kind: SpanLink, Text: "Site", URL: "https://jasper.ai"},
			},
		},
		{
			name: "bold and link compose",
			text: "**Bold** and [Link](https://x.com)",
			want: []Span{
				{Kind: SpanBold, Text: "Bold"},
				{Kind: SpanText, Text: " and "},
				{Kind: SpanLink, Text: "Link", URL: "https://x.com"},
			},
		},
		{
			name: "lone asterisk stays literal",
			text: "5 * 3",
			want: []Span{{Kind: SpanText, Text: "5 * 3"}},
		},
		{
			name: "empty",
			text: "",
			want: []Span{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInline(tt.text))
		})
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Use Jasper now", PlainText("Use **Jasper** [now](https://x)"))
	assert.Equal(t, "no markup", PlainText("no markup"))
}

func TestParseTable(t *testing.T) {
	got := ParseTable("| Tool | Price |\n|---|---|\n| Jasper | Paid |\n| Copy.ai | Freemium |\n")
	assert.Equal(t, []string{"Tool", "Price"}, got.Headers)
	assert.Equal(t, [][]string{{"Jasper", "Paid"}, {"Copy.ai", "Freemium"}}, got.Rows)

	headerOnly := ParseTable("| A | B |")
	assert.Equal(t, []string{"A", "B"}, headerOnly.Headers)
	assert.Empty(t, headerOnly.Rows)
}

func TestBarWidths(t *testing.T) {
	tests := []struct {
		name   string
		points []types.ChartPoint
		want   []float64
	}{
		{name: "relative to max", points: []types.ChartPoint{{Label: "A", Value: 50}, {Label: "B", Value: 100}}, want: []float64{50, 100}},
		{name: "negative clamped", points: []types.ChartPoint{{Label: "A", Value: -10}, {Label: "B", Value: 20}}, want: []float64{0, 100}},
		{name: "zero max", points: []types.ChartPoint{{Label: "A", Value: 0}, {Label: "B", Value: 0}}, want: []float64{0, 0}},
		{name: "all negative", points: []types.ChartPoint{{Label: "A", Value: -1}}, want: []float64{0}},
		{name: "empty", points: nil, want: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BarWidths(tt.points))
		})
	}
}

type stubDiagrams struct {
	svg string
	err error
	ids []string
}

func (s *stubDiagrams) Render(_ context.Context, _, _, id string) (string, error) {
	s.ids = append(s.ids, id)
	return s.svg, s.err
}

func TestHTMLRendererBlocks(t *testing.T) {
	r := NewHTMLRenderer(nil, logger.NewNop())
	msg := &types.Message{ID: "m1", Role: types.RoleModel, Parts: []types.ContentBlock{
		types.TextBlock("Try [Jasper](https://jasper.ai) <now>"),
		types.TableBlock("| Tool |\n|---|\n| **Jasper** |"),
		types.ChartBlock([]types.ChartPoint{{Label: "A", Value: 25}, {Label: "B", Value: 100}}),
		types.ImageBlock("data:image/jpeg;base64,AAAA"),
	}}

	out, err := r.RenderMessage(context.Background(), msg)
	require.NoError(t, err)

	assert.Contains(t, out, `<a href="https://jasper.ai" target="_blank" rel="noopener noreferrer">Jasper`)
	assert.Contains(t, out, ExternalLinkMarker)
	assert.Contains(t, out, "&lt;now&gt;")
	assert.Contains(t, out, "<th>Tool</th>")
	assert.Contains(t, out, "<td><strong>Jasper</strong></td>")
	assert.Contains(t, out, "width: 25.00%")
	assert.Contains(t, out, "width: 100.00%")
	assert.Contains(t, out, `download="seekcompass-ai-image-`)
	assert.Contains(t, out, `.jpg"`)
}

func TestInlineHTMLLinkSchemes(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		anchor string
		plain  string
	}{
		{name: "https", text: "[Docs](https://example.com/a?b=1)", anchor: `href="https://example.com/a?b=1"`},
		{name: "http", text: "[Site](http://example.com)", anchor: `href="http://example.com"`},
		{name: "mailto", text: "[Mail](mailto:team@example.com)", anchor: `href="mailto:team@example.com"`},
		{name: "upper case scheme", text: "[Up](HTTPS://example.com)", anchor: `href="HTTPS://example.com"`},
		{name: "javascript", text: "[x](javascript:alert(1))", plain: "x"},
		{name: "mixed case javascript", text: "[x](JaVaScRiPt:alert(1))", plain: "x"},
		{name: "data uri", text: "[d](data:text/html;base64,PHNjcmlwdD4=)", plain: "d"},
		{name: "vbscript", text: "[v](vbscript:msgbox)", plain: "v"},
		{name: "relative", text: "[r](/etc/passwd)", plain: "r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := InlineHTML(tt.text)
			if tt.anchor != "" {
				assert.Contains(t, out, "<a "+tt.anchor)
				return
			}
			assert.NotContains(t, out, "<a")
			assert.NotContains(t, strings.ToLower(out), "javascript")
			assert.NotContains(t, out, "href")
			assert.True(t, strings.HasPrefix(out, tt.plain))
		})
	}
}

func TestHTMLRendererDiagrams(t *testing.T) {
	t.Run("engine output is embedded with scoped ids", func(t *testing.T) {
		engine := &stubDiagrams{svg: "<svg>ok</svg>"}
		r := NewHTMLRenderer(engine, logger.NewNop())

		blocks := []types.ContentBlock{
			types.DiagramBlock("mermaid", "A-->B"),
			types.TextBlock("between"),
			types.DiagramBlock("mermaid", "C-->D"),
		}
		out, err := r.RenderBlocks(context.Background(), "msg", blocks)
		require.NoError(t, err)

		assert.Contains(t, out, "<svg>ok</svg>")
		assert.Equal(t, []string{"msg-0-1", "msg-2-2"}, engine.ids)
	})

	t.Run("failure shows escaped source", func(t *testing.T) {
		engine := &stubDiagrams{err: errors.New("syntax error")}
		r := NewHTMLRenderer(engine, logger.NewNop())

		out, err := r.RenderBlocks(context.Background(), "msg", []types.ContentBlock{
			types.DiagramBlock("mermaid", "A --> <B>"),
		})
		require.NoError(t, err)
		assert.Contains(t, out, "diagram-error")
		assert.Contains(t, out, "A --&gt; &lt;B&gt;")
	})
}

func TestRenderDoesNotMutateBlocks(t *testing.T) {
	blocks := []types.ContentBlock{
		types.TextBlock("**x**"),
		types.ChartBlock([]types.ChartPoint{{Label: "A", Value: 200}}),
	}
	before := append([]types.ContentBlock(nil), blocks...)

	_, err := NewHTMLRenderer(nil, logger.NewNop()).RenderBlocks(context.Background(), "s", blocks)
	require.NoError(t, err)
	_, err = NewTerminalRenderer(DefaultTerminalStyles(), 10).RenderMessage(context.Background(),
		&types.Message{ID: "s", Role: types.RoleModel, Parts: blocks})
	require.NoError(t, err)

	assert.Equal(t, before, blocks)
}

func TestTerminalRenderer(t *testing.T) {
	r := NewTerminalRenderer(DefaultTerminalStyles(), 10)
	msg := &types.Message{ID: "t", Role: types.RoleModel, Parts: []types.ContentBlock{
		types.TextBlock("See [Docs](https://d.example)"),
		types.TableBlock("| Name | Price |\n|---|---|\n| Jasper | Paid |"),
		types.ChartBlock([]types.ChartPoint{{Label: "A", Value: 5}, {Label: "B", Value: 10}}),
		types.DiagramBlock("mermaid", "A-->B"),
	}}

	out, err := r.RenderMessage(context.Background(), msg)
	require.NoError(t, err)

	assert.Contains(t, out, "Docs")
	assert.Contains(t, out, "https://d.example")
	assert.Contains(t, out, "Jasper")
	assert.Contains(t, out, strings.Repeat("█", 10))
	assert.Contains(t, out, "A-->B")
}

func TestImageHelpers(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "seekcompass-ai-image-1700000000123.png", ImageFileName("data:image/png;base64,AAAA", now))
	assert.Equal(t, "seekcompass-ai-image-1700000000123.webp", ImageFileName("data:image/webp;base64,AAAA", now))

	_, err := ParseDataURI("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrInvalidDataURI)

	dir := t.TempDir()
	path, err := DownloadImage("data:image/png;base64,aGVsbG8=", dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "seekcompass-ai-image-1700000000123.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestScopeSVG(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		id   string
		want string
	}{
		{name: "bare root", svg: `<svg viewBox="0 0 1 1"><g/></svg>`, id: "d1", want: `<svg id="d1" viewBox="0 0 1 1"><g/></svg>`},
		{name: "existing id", svg: `<svg id="graph"><style>#graph rect{fill:#fff}</style></svg>`, id: "d2", want: `<svg id="d2"><style>#d2 rect{fill:#fff}</style></svg>`},
		{name: "xml prolog", svg: `<?xml version="1.0"?><svg data-id="x">a</svg>`, id: "d3", want: `<?xml version="1.0"?><svg id="d3" data-id="x">a</svg>`},
		{name: "no svg element", svg: `diagram`, id: "d4", want: `diagram`},
		{name: "empty id", svg: `<svg id="a"></svg>`, id: "", want: `<svg id="a"></svg>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scopeSVG(tt.svg, tt.id))
		})
	}
}

func TestKrokiEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/graphviz/svg":
			w.Write([]byte("<svg>graph</svg>"))
		case "/mermaid/svg":
			body, _ := io.ReadAll(r.Body)
			if string(body) == "broken" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Syntax error"))
				return
			}
			w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg" id="mermaid-svg"><style>#mermaid-svg{fill:red}#mermaid-svg .node{stroke:blue}</style><g/></svg>`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Syntax error"))
		}
	}))
	defer srv.Close()

	engine, err := NewKrokiEngine(KrokiConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, logger.NewNop())
	require.NoError(t, err)
	defer engine.Close()

	svg, err := engine.Render(context.Background(), "dot", "digraph { a -> b }", "d1")
	require.NoError(t, err)
	assert.Equal(t, `<svg id="d1">graph</svg>`, svg)

	first, err := engine.Render(context.Background(), "mermaid", "graph TD; A-->B", "m1-0-1")
	require.NoError(t, err)
	second, err := engine.Render(context.Background(), "mermaid", "graph TD; C-->D", "m2-0-1")
	require.NoError(t, err)
	assert.NotContains(t, first, "mermaid-svg")
	assert.Contains(t, first, `id="m1-0-1"`)
	assert.Contains(t, first, "#m1-0-1{fill:red}#m1-0-1 .node")
	assert.Contains(t, second, `id="m2-0-1"`)
	assert.NotContains(t, second, "m1-0-1")

	_, err = engine.Render(context.Background(), "mermaid", "broken", "d2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax error")

	_, err = NewKrokiEngine(KrokiConfig{}, logger.NewNop())
	assert.Error(t, err)
}
