// Package export writes a chat transcript to Markdown, HTML or plain text.
//
// Exporters read the transcript and never modify it.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// Title heads every exported document.
const Title = "SeekCompass AI conversation"

// Exporter converts a transcript to one output format.
type Exporter interface {
	Export(messages []*chattypes.Message) ([]byte, error)
	FileExtension() string
	MimeType() string
}

// ForFormat returns the exporter registered for a format name.
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "md", "markdown":
		return NewMarkdownExporter(), nil
	case "html", "htm":
		return NewHTMLExporter(), nil
	case "txt", "text":
		return NewTextExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ToFile exports messages into dir and returns the written path.
func ToFile(messages []*chattypes.Message, exporter Exporter, dir string, now time.Time) (string, error) {
	content, err := exporter.Export(messages)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("seekcompass-conversation-%s%s", now.Format("20060102_150405"), exporter.FileExtension())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

func roleLabel(role chattypes.Role) string {
	if role == chattypes.RoleUser {
		return "You"
	}
	return "SeekCompass AI"
}

// blockMarkdown renders one block as Markdown
func blockMarkdown(block chattypes.ContentBlock) (string, error) {
	switch block.Kind {
	case chattypes.BlockText, chattypes.BlockTable:
		return block.Text, nil
	case chattypes.BlockChart:
		data, err := json.MarshalIndent(block.Chart, "", "  ")
		if err != nil {
			return "", err
		}
		return "```chart\n" + string(data) + "\n```", nil
	case chattypes.BlockDiagram:
		lang := block.Language
		if lang == "" {
			lang = chattypes.DefaultDiagramLanguage
		}
		return "```" + lang + "\n" + block.Text + "\n```", nil
	case chattypes.BlockImage:
		return "![Generated image](" + block.Text + ")", nil
	default:
		return "", fmt.Errorf("unknown block kind %q", block.Kind)
	}
}
