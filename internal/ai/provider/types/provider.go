package types

import "context"

// Provider 统一的大模型调用接口
type Provider interface {
	// Name 返回 Provider 名称
	Name() string

	// Generate 发起一次完整（非流式）的生成请求
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// ListModels 获取当前凭证可用的模型列表
	ListModels(ctx context.Context) ([]Model, error)

	// Close 关闭 Provider，释放资源
	Close() error
}
