package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// StaticSource 内存中的固定工具列表
type StaticSource struct {
	tools []Tool
}

// NewStaticSource 创建固定数据源
func NewStaticSource(tools []Tool) *StaticSource {
	return &StaticSource{tools: tools}
}

// List 返回工具副本
func (s *StaticSource) List(context.Context) ([]Tool, error) {
	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out, nil
}

// FileSource 从 JSON 文件读取用户提交的工具，文件不存在时为空列表
type FileSource struct {
	path string
}

// NewFileSource 创建文件数据源
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// List 读取并解析文件
func (s *FileSource) List(context.Context) ([]Tool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var tools []Tool
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", s.path, err)
	}
	return tools, nil
}

// MultiSource 依次合并多个数据源，出错的数据源被跳过并记录日志
type MultiSource struct {
	sources []Source
	log     *logger.Logger
}

// NewMultiSource 用户提交的工具应排在前面
func NewMultiSource(log *logger.Logger, sources ...Source) *MultiSource {
	return &MultiSource{sources: sources, log: log.Named("catalog")}
}

// List 合并所有数据源，按 ID 去重，先出现者优先
func (m *MultiSource) List(ctx context.Context) ([]Tool, error) {
	seen := make(map[string]bool)
	var out []Tool
	for _, src := range m.sources {
		tools, err := src.List(ctx)
		if err != nil {
			m.log.Warn("catalog source skipped", zap.Error(err))
			continue
		}
		for _, t := range tools {
			if t.ID != "" && seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// SeedTools 内置的工具目录
func SeedTools() []Tool {
	return []Tool{
		{
			ID: "chatgpt", Name: "ChatGPT", Description: "Conversational assistant for writing, coding and research.",
			WebsiteURL: "https://chat.openai.com", Pricing: PricingFreemium,
			Categories: []string{"Chatbots", "Writing"}, AddedAt: date("2023-01-10"), Popular: true,
		},
		{
			ID: "midjourney", Name: "Midjourney", Description: "Image generation from text prompts.",
			WebsiteURL: "https://www.midjourney.com", Pricing: PricingPaid,
			Categories: []string{"Image Generation", "Design"}, AddedAt: date("2023-02-01"), Popular: true,
		},
		{
			ID: "github-copilot", Name: "GitHub Copilot", Description: "AI pair programmer inside the editor.",
			WebsiteURL: "https://github.com/features/copilot", Pricing: PricingFreeTrial,
			Categories: []string{"Coding", "Developer Tools"}, AddedAt: date("2023-03-15"), Popular: true,
		},
		{
			ID: "cursor", Name: "Cursor", Description: "Code editor built around AI assistance.",
			WebsiteURL: "https://www.cursor.com", Pricing: PricingFreemium,
			Categories: []string{"Coding", "Developer Tools"}, AddedAt: date("2024-01-20"), Popular: true,
		},
		{
			ID: "tabnine", Name: "Tabnine", Description: "Code completion with private models.",
			WebsiteURL: "https://www.tabnine.com", Pricing: PricingFreemium,
			Categories: []string{"Coding"}, AddedAt: date("2023-05-02"), Popular: false,
		},
		{
			ID: "runway", Name: "Runway", Description: "Video generation and editing suite.",
			WebsiteURL: "https://runwayml.com", Pricing: PricingFreemium,
			Categories: []string{"Video", "Design"}, AddedAt: date("2023-04-11"), Popular: true,
		},
		{
			ID: "synthesia", Name: "Synthesia", Description: "Avatar-based video creation for training content.",
			WebsiteURL: "https://www.synthesia.io", Pricing: PricingPaid,
			Categories: []string{"Video"}, AddedAt: date("2023-06-08"), Popular: false,
		},
		{
			ID: "capcut", Name: "CapCut", Description: "Free video editor with AI effects.",
			WebsiteURL: "https://www.capcut.com", Pricing: PricingFree,
			Categories: []string{"Video"}, AddedAt: date("2023-07-19"), Popular: true,
		},
		{
			ID: "jasper", Name: "Jasper", Description: "Marketing copy and brand voice generation.",
			WebsiteURL: "https://www.jasper.ai", Pricing: PricingPaid,
			Categories: []string{"Marketing", "Writing"}, AddedAt: date("2023-02-22"), Popular: true,
		},
		{
			ID: "copy-ai", Name: "Copy.ai", Description: "Sales and marketing workflow automation.",
			WebsiteURL: "https://www.copy.ai", Pricing: PricingFreemium,
			Categories: []string{"Marketing"}, AddedAt: date("2023-03-03"), Popular: false,
		},
		{
			ID: "hubspot-ai", Name: "HubSpot AI", Description: "CRM-native assistants for campaigns.",
			WebsiteURL: "https://www.hubspot.com/artificial-intelligence", Pricing: PricingContact,
			Categories: []string{"Marketing", "Sales"}, AddedAt: date("2024-02-14"), Popular: false,
		},
		{
			ID: "elevenlabs", Name: "ElevenLabs", Description: "Realistic voice synthesis and dubbing.",
			WebsiteURL: "https://elevenlabs.io", Pricing: PricingDeals,
			Categories: []string{"Audio", "Voice"}, AddedAt: date("2023-08-30"), Popular: true,
		},
	}
}
