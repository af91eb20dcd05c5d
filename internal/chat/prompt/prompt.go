// Package prompt builds the system instruction sent with every chat turn.
package prompt

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/seekcompass-assistant/internal/catalog"
)

// DefaultTemperature keeps answers close to the catalog data.
const DefaultTemperature = 0.3

// Suggestions are the conversation starters offered on an empty transcript.
var Suggestions = []string{
	"Compare Free vs Paid video tools",
	"Chart the popularity of coding tools",
	"Design a logo for a tool called 'DataWeave'",
	"Show me marketing tools with links",
}

const instructionTemplate = `You are an advanced AI assistant for "SeekCompass".
DATA CONTEXT:
%s
FORMATTING RULES (CANVAS MODE):
1. Text: Use **bold** for emphasis.
2. Tables: For comparisons, MUST use Markdown tables.
3. Links: When listing tools, ALWAYS include a clickable Markdown link: [Label](URL).
4. Charts: For popularity or numeric comparisons, MUST output a JSON block tagged 'chart'. Format: ` + "```chart\n[{\"label\": \"A\", \"value\": 85}]\n```" + `
5. Diagrams: For workflows or relationships, output a block tagged 'mermaid'.
6. Images: If asked to "design", "draw", or "create an image/logo", you MUST generate and return an image.
BEHAVIOR:
- Always be helpful and concise.`

// ToolLine renders one catalog entry as a context line.
func ToolLine(t catalog.Tool) string {
	popularity := "Average"
	if t.Popular {
		popularity = "High"
	}
	return fmt.Sprintf("- %s (Category: %s, Price: %s, Popularity: %s, URL: %s)",
		t.Name, strings.Join(t.Categories, ", "), t.Pricing, popularity, t.WebsiteURL)
}

// Build returns the system instruction for the given catalog snapshot.
func Build(tools []catalog.Tool) string {
	lines := make([]string, 0, len(tools))
	for _, t := range tools {
		lines = append(lines, ToolLine(t))
	}
	return fmt.Sprintf(instructionTemplate, strings.Join(lines, "\n"))
}
