package biz

import (
	"encoding/json"
	"strings"
	"time"

	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// 侧边栏宽度约束
const (
	DefaultSidebarWidth = 450
	MinSidebarWidth     = 300
	MaxSidebarWidth     = 800
)

// CopiedWindow 复制成功提示的持续时间
const CopiedWindow = 2 * time.Second

// ImagePlaceholder 复制图片块时使用的占位文本
const ImagePlaceholder = "[Image]"

// Feedback 对模型消息的评价
type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackLike
	FeedbackDislike
)

// uiState 仅存在于内存中的界面状态
type uiState struct {
	sidebarWidth int
	maximized    bool
	copiedID     string
	copiedAt     time.Time
	feedback     map[string]Feedback
}

func newUIState() uiState {
	return uiState{
		sidebarWidth: DefaultSidebarWidth,
		feedback:     make(map[string]Feedback),
	}
}

func (s *uiState) resetFeedback() {
	s.feedback = make(map[string]Feedback)
	s.copiedID = ""
}

// SidebarWidth 返回当前宽度
func (uc *ConversationUseCase) SidebarWidth() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.ui.sidebarWidth
}

// SetSidebarWidth 宽度仅在 [300, 800] 内时生效，返回是否被接受
func (uc *ConversationUseCase) SetSidebarWidth(width int) bool {
	if width < MinSidebarWidth || width > MaxSidebarWidth {
		return false
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.ui.sidebarWidth = width
	return true
}

// ToggleMaximize 切换最大化并返回新状态
func (uc *ConversationUseCase) ToggleMaximize() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.ui.maximized = !uc.ui.maximized
	return uc.ui.maximized
}

// IsMaximized 是否最大化
func (uc *ConversationUseCase) IsMaximized() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.ui.maximized
}

// CopyText 返回消息的可复制文本并记录复制时间
func (uc *ConversationUseCase) CopyText(id string) (string, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	msg, ok := uc.findLocked(id)
	if !ok {
		return "", false
	}
	uc.ui.copiedID = id
	uc.ui.copiedAt = uc.now()
	return CopyableText(msg), true
}

// IsCopied 复制后 2 秒内为 true
func (uc *ConversationUseCase) IsCopied(id string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.ui.copiedID == id && uc.now().Sub(uc.ui.copiedAt) < CopiedWindow
}

// Like 切换点赞，点赞会取消点踩
func (uc *ConversationUseCase) Like(id string) Feedback {
	return uc.toggleFeedback(id, FeedbackLike)
}

// Dislike 切换点踩，点踩会取消点赞
func (uc *ConversationUseCase) Dislike(id string) Feedback {
	return uc.toggleFeedback(id, FeedbackDislike)
}

// FeedbackFor 返回消息当前的评价
func (uc *ConversationUseCase) FeedbackFor(id string) Feedback {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.ui.feedback[id]
}

func (uc *ConversationUseCase) toggleFeedback(id string, f Feedback) Feedback {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.ui.feedback[id] == f {
		delete(uc.ui.feedback, id)
		return FeedbackNone
	}
	uc.ui.feedback[id] = f
	return f
}

// CopyableText 把消息的各个块转换为纯文本，块之间以空行分隔
func CopyableText(msg *chattypes.Message) string {
	parts := make([]string, 0, len(msg.Parts))
	for _, block := range msg.Parts {
		switch block.Kind {
		case chattypes.BlockChart:
			data, err := json.MarshalIndent(block.Chart, "", "  ")
			if err != nil {
				continue
			}
			parts = append(parts, string(data))
		case chattypes.BlockImage:
			parts = append(parts, ImagePlaceholder)
		default:
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
