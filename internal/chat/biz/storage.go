package biz

// 持久化键，与原侧边栏的本地存储键保持一致
const (
	KeyModelConfig = "ai_hub_model_config"
	KeyChatHistory = "seekcompass_chat_history"
)

// Storage 键值持久化接口
// Load 在键不存在时返回 ok=false 且 err 为 nil
type Storage interface {
	Load(key string) (data []byte, ok bool, err error)
	Save(key string, data []byte) error
	Clear(key string) error
}
