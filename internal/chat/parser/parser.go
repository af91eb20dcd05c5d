// Package parser decodes raw model output into typed content blocks.
//
// The input is scanned line by line. Fenced regions (``` ... ```) become a
// single block chosen by the fence tag, consecutive pipe-delimited lines
// become a table block, and everything else is prose.
package parser

import (
	"strings"

	"github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// ChartErrorText replaces a chart fence whose payload cannot be decoded.
const ChartErrorText = "Error parsing chart data."

const fenceMarker = "```"

type fenceKind int

const (
	fenceText fenceKind = iota
	fenceChart
	fenceDiagram
)

// fenceKindOf maps a fence tag to the block kind the fence produces.
func fenceKindOf(tag string) fenceKind {
	switch strings.ToLower(tag) {
	case "json", "chart":
		return fenceChart
	case "mermaid", "diagram", "dot", "graphviz", "plantuml":
		return fenceDiagram
	default:
		return fenceText
	}
}

type parser struct {
	blocks []types.ContentBlock

	buf        []string
	bufIsTable bool

	inFence   bool
	fenceKind fenceKind
	fenceTag  string
	fenceOpen string
	fenceBuf  []string
}

// Parse splits raw into ordered content blocks. It never fails: a chart
// payload that does not decode degrades to a text block holding
// ChartErrorText, and an unterminated fence is emitted as plain text.
func Parse(raw string) []types.ContentBlock {
	p := &parser{blocks: []types.ContentBlock{}}
	if raw == "" {
		return p.blocks
	}

	for _, line := range strings.Split(raw, "\n") {
		p.feed(line)
	}
	p.finish()
	return p.blocks
}

func (p *parser) feed(line string) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, fenceMarker) {
		if p.inFence {
			p.closeFence()
		} else {
			p.flushProse()
			p.openFence(line, strings.TrimSpace(strings.TrimPrefix(trimmed, fenceMarker)))
		}
		return
	}

	if p.inFence {
		p.fenceBuf = append(p.fenceBuf, line)
		return
	}

	isTable := isTableLine(trimmed)
	if len(p.buf) > 0 && isTable != p.bufIsTable {
		p.flushProse()
	}
	p.buf = append(p.buf, line)
	p.bufIsTable = isTable
}

func (p *parser) finish() {
	if p.inFence {
		// an unterminated fence keeps its opening line
		lines := append([]string{p.fenceOpen}, p.fenceBuf...)
		p.emitText(strings.Join(lines, "\n"))
		p.resetFence()
		return
	}
	p.flushProse()
}

func (p *parser) openFence(line, tag string) {
	p.inFence = true
	p.fenceOpen = line
	p.fenceTag = strings.ToLower(tag)
	p.fenceKind = fenceKindOf(tag)
	p.fenceBuf = nil
}

func (p *parser) closeFence() {
	body := strings.Join(p.fenceBuf, "\n")

	switch p.fenceKind {
	case fenceChart:
		points, err := decodeChart(body)
		if err != nil {
			p.blocks = append(p.blocks, types.TextBlock(ChartErrorText))
		} else {
			p.blocks = append(p.blocks, types.ChartBlock(points))
		}
	case fenceDiagram:
		lang := p.fenceTag
		if lang == "diagram" {
			lang = types.DefaultDiagramLanguage
		}
		if strings.TrimSpace(body) != "" {
			p.blocks = append(p.blocks, types.DiagramBlock(lang, body))
		}
	default:
		p.emitText(body)
	}

	p.resetFence()
}

func (p *parser) resetFence() {
	p.inFence = false
	p.fenceKind = fenceText
	p.fenceTag = ""
	p.fenceOpen = ""
	p.fenceBuf = nil
}

// flushProse finalizes the pending prose or table buffer.
func (p *parser) flushProse() {
	if len(p.buf) == 0 {
		return
	}
	content := strings.Join(p.buf, "\n")
	if p.bufIsTable {
		p.blocks = append(p.blocks, types.TableBlock(content))
	} else {
		p.emitText(content)
	}
	p.buf = nil
	p.bufIsTable = false
}

func (p *parser) emitText(content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	p.blocks = append(p.blocks, types.TextBlock(content))
}

func isTableLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}
