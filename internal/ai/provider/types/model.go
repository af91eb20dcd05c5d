package types

// Model 表示 AI 模型信息
type Model struct {
	ID          string `json:"id"`           // 模型 ID
	DisplayName string `json:"display_name"` // 显示名称
	OwnedBy     string `json:"owned_by"`     // 所有者
}

// ModelIDs 提取模型 ID 列表
func ModelIDs(models []Model) []string {
	ids := make([]string, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	return ids
}
