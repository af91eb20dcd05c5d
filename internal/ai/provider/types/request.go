package types

import chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"

// Turn 历史对话中的一轮，只包含文本内容
type Turn struct {
	Role  chattypes.Role
	Texts []string
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	Model             string
	History           []Turn
	Prompt            string
	SystemInstruction string
	Temperature       float64
}

// WithModel 返回替换了模型的请求副本
func (r *GenerateRequest) WithModel(model string) *GenerateRequest {
	clone := *r
	clone.Model = model
	return &clone
}

// HistoryFromMessages 将对话记录转换为历史轮次
// 只回放 text 块，表格、图表、流程图、图片均不发送，没有文本的消息被跳过
func HistoryFromMessages(messages []*chattypes.Message) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, msg := range messages {
		texts := msg.TextParts()
		if len(texts) == 0 {
			continue
		}
		turns = append(turns, Turn{Role: msg.Role, Texts: texts})
	}
	return turns
}
