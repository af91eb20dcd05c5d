package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Role 消息作者
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// BlockKind 内容块类型
type BlockKind string

const (
	BlockText    BlockKind = "text"
	BlockTable   BlockKind = "table"
	BlockChart   BlockKind = "chart"
	BlockDiagram BlockKind = "diagram"
	BlockImage   BlockKind = "image"
)

// DefaultDiagramLanguage 未指定方言时的图表语言
const DefaultDiagramLanguage = "mermaid"

// ChartPoint 柱状图数据点
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ContentBlock 消息中的一个类型化内容块
// Text 承载 text/table/diagram 的源文本以及 image 的 data URI，Chart 仅用于 chart
type ContentBlock struct {
	Kind     BlockKind
	Text     string
	Chart    []ChartPoint
	Language string
}

// TextBlock 创建文本块
func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

// TableBlock 创建表格块
func TableBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockTable, Text: text}
}

// ChartBlock 创建图表块
func ChartBlock(points []ChartPoint) ContentBlock {
	return ContentBlock{Kind: BlockChart, Chart: points}
}

// DiagramBlock 创建流程图块
func DiagramBlock(language, source string) ContentBlock {
	if language == "" {
		language = DefaultDiagramLanguage
	}
	return ContentBlock{Kind: BlockDiagram, Text: source, Language: language}
}

// ImageBlock 创建图片块，dataURI 形如 data:<mime>;base64,<payload>
func ImageBlock(dataURI string) ContentBlock {
	return ContentBlock{Kind: BlockImage, Text: dataURI}
}

// wireBlock 持久化格式 {"type","content","language"}
type wireBlock struct {
	Type     BlockKind       `json:"type"`
	Content  json.RawMessage `json:"content"`
	Language string          `json:"language,omitempty"`
}

// MarshalJSON chart 的 content 为数组，其余类型为字符串
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	var (
		content []byte
		err     error
	)
	switch b.Kind {
	case BlockChart:
		points := b.Chart
		if points == nil {
			points = []ChartPoint{}
		}
		content, err = json.Marshal(points)
	case BlockText, BlockTable, BlockDiagram, BlockImage:
		content, err = json.Marshal(b.Text)
	default:
		return nil, fmt.Errorf("unknown block kind %q", b.Kind)
	}
	if err != nil {
		return nil, err
	}

	w := wireBlock{Type: b.Kind, Content: content}
	if b.Kind == BlockDiagram {
		w.Language = b.Language
	}
	return json.Marshal(w)
}

// UnmarshalJSON 解析持久化格式
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*b = ContentBlock{Kind: w.Type}
	switch w.Type {
	case BlockChart:
		if err := json.Unmarshal(w.Content, &b.Chart); err != nil {
			return fmt.Errorf("decode chart content: %w", err)
		}
	case BlockText, BlockTable, BlockImage:
		if err := json.Unmarshal(w.Content, &b.Text); err != nil {
			return fmt.Errorf("decode %s content: %w", w.Type, err)
		}
	case BlockDiagram:
		if err := json.Unmarshal(w.Content, &b.Text); err != nil {
			return fmt.Errorf("decode diagram content: %w", err)
		}
		b.Language = w.Language
		if b.Language == "" {
			b.Language = DefaultDiagramLanguage
		}
	default:
		return fmt.Errorf("unknown block kind %q", w.Type)
	}
	return nil
}

// Message 对话中的一条消息
type Message struct {
	ID    string         `json:"id"`
	Role  Role           `json:"role"`
	Parts []ContentBlock `json:"parts"`
}

// NewMessageID 生成基于创建时间的消息 ID
func NewMessageID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}

// NewUserMessage 用户消息只有一个承载原始输入的文本块
func NewUserMessage(now time.Time, text string) *Message {
	return &Message{
		ID:    NewMessageID(now),
		Role:  RoleUser,
		Parts: []ContentBlock{TextBlock(text)},
	}
}

// NewModelMessage 创建模型消息
func NewModelMessage(now time.Time, parts []ContentBlock) *Message {
	return &Message{
		ID:    NewMessageID(now),
		Role:  RoleModel,
		Parts: parts,
	}
}

// TextParts 返回所有 text 块的内容
func (m *Message) TextParts() []string {
	texts := make([]string, 0, len(m.Parts))
	for _, part := range m.Parts {
		if part.Kind == BlockText {
			texts = append(texts, part.Text)
		}
	}
	return texts
}
