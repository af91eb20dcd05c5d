package biz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/fallback"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/types"
	"github.com/lk2023060901/seekcompass-assistant/internal/catalog"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/modelconfig"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/parser"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/prompt"
	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	apperrors "github.com/lk2023060901/seekcompass-assistant/internal/pkg/errors"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// ProviderFactory 按 Provider 标识和密钥创建客户端
type ProviderFactory interface {
	Create(id registry.ProviderID, apiKey string) (types.Provider, error)
}

// Generator 执行带回退的生成调用
type Generator interface {
	Generate(ctx context.Context, id registry.ProviderID, p types.Provider, req *types.GenerateRequest) (*fallback.Outcome, error)
}

// Executor 执行后台生成任务
type Executor interface {
	Submit(task func()) error
}

// Option 用例可选配置
type Option func(*ConversationUseCase)

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(uc *ConversationUseCase) {
		uc.now = now
	}
}

// WithGetenv 注入环境变量读取函数
func WithGetenv(getenv func(string) string) Option {
	return func(uc *ConversationUseCase) {
		uc.getenv = getenv
	}
}

// WithTemperature 设置采样温度
func WithTemperature(t float64) Option {
	return func(uc *ConversationUseCase) {
		uc.temperature = t
	}
}

// WithExecutor 设置后台任务执行器，默认为每个请求启动一个 goroutine
func WithExecutor(e Executor) Option {
	return func(uc *ConversationUseCase) {
		uc.executor = e
	}
}

// WithCatalog 设置构造系统指令使用的工具目录
func WithCatalog(src catalog.Source) Option {
	return func(uc *ConversationUseCase) {
		uc.catalog = src
	}
}

// ConversationUseCase 对话记录、模型配置与界面状态
type ConversationUseCase struct {
	store     Storage
	factory   ProviderFactory
	generator Generator
	executor  Executor
	log       *logger.Logger

	catalog     catalog.Source
	temperature float64
	now         func() time.Time
	getenv      func(string) string
	sessionID   string

	mu       sync.Mutex
	messages []*chattypes.Message
	config   modelconfig.ModelConfig
	loading  bool
	ui       uiState
}

// NewConversationUseCase 创建对话用例
func NewConversationUseCase(store Storage, factory ProviderFactory, generator Generator, log *logger.Logger, opts ...Option) *ConversationUseCase {
	if log == nil {
		log = logger.L()
	}
	uc := &ConversationUseCase{
		store:       store,
		factory:     factory,
		generator:   generator,
		log:         log.Named("conversation"),
		catalog:     catalog.NewStaticSource(catalog.SeedTools()),
		temperature: prompt.DefaultTemperature,
		now:         time.Now,
		getenv:      os.Getenv,
		config:      modelconfig.DefaultConfig(),
		ui:          newUIState(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.sessionID = chattypes.NewMessageID(uc.now())
	return uc
}

// Load 读取持久化的对话记录与配置，损坏的数据记录日志后使用默认值
func (uc *ConversationUseCase) Load(ctx context.Context) error {
	log := uc.log.WithContext(ctx)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.config = modelconfig.DefaultConfig()
	uc.messages = nil

	if data, ok, err := uc.store.Load(KeyModelConfig); err != nil {
		return apperrors.Wrap(err, apperrors.ErrStorage, KeyModelConfig)
	} else if ok {
		var cfg modelconfig.ModelConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			log.Warn("ignoring corrupt model config", zap.Error(err))
		} else {
			uc.config = modelconfig.Migrate(cfg)
		}
	}

	if data, ok, err := uc.store.Load(KeyChatHistory); err != nil {
		return apperrors.Wrap(err, apperrors.ErrStorage, KeyChatHistory)
	} else if ok {
		var messages []*chattypes.Message
		if err := json.Unmarshal(data, &messages); err != nil {
			log.Warn("ignoring corrupt chat history", zap.Error(err))
		} else {
			uc.messages = messages
		}
	}

	log.Debug("conversation loaded",
		zap.Int("messages", len(uc.messages)),
		zap.String("provider", string(uc.config.Provider)),
		zap.String("model", uc.config.ModelID))
	return nil
}

// Messages 返回对话记录快照
func (uc *ConversationUseCase) Messages() []*chattypes.Message {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]*chattypes.Message, len(uc.messages))
	copy(out, uc.messages)
	return out
}

// Message 按 ID 查找消息
func (uc *ConversationUseCase) Message(id string) (*chattypes.Message, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.findLocked(id)
}

func (uc *ConversationUseCase) findLocked(id string) (*chattypes.Message, bool) {
	for _, m := range uc.messages {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// LastModelMessage 返回最近一条模型消息
func (uc *ConversationUseCase) LastModelMessage() (*chattypes.Message, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for i := len(uc.messages) - 1; i >= 0; i-- {
		if uc.messages[i].Role == chattypes.RoleModel {
			return uc.messages[i], true
		}
	}
	return nil, false
}

// IsLoading 是否有请求正在进行
func (uc *ConversationUseCase) IsLoading() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.loading
}

// Config 返回当前模型配置
func (uc *ConversationUseCase) Config() modelconfig.ModelConfig {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.config
}

// SaveConfig 规范化并立即持久化配置
func (uc *ConversationUseCase) SaveConfig(ctx context.Context, cfg modelconfig.ModelConfig) error {
	cfg = modelconfig.Migrate(cfg)
	if err := cfg.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidParams, err.Error())
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal)
	}

	uc.mu.Lock()
	uc.config = cfg
	uc.mu.Unlock()

	if err := uc.store.Save(KeyModelConfig, data); err != nil {
		return apperrors.Wrap(err, apperrors.ErrStorage, KeyModelConfig)
	}
	uc.log.WithContext(ctx).Info("model config saved",
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.ModelID))
	return nil
}

// ClearConversation 清空对话记录，模型配置不变
func (uc *ConversationUseCase) ClearConversation(ctx context.Context) error {
	uc.mu.Lock()
	uc.messages = nil
	uc.ui.resetFeedback()
	uc.mu.Unlock()

	if err := uc.store.Clear(KeyChatHistory); err != nil {
		return apperrors.Wrap(err, apperrors.ErrStorage, KeyChatHistory)
	}
	uc.log.WithContext(ctx).Info("conversation cleared")
	return nil
}

// SendMessage 发送一条用户消息
// 输入为空或已有请求进行中时返回 ok=false；否则用户消息同步写入记录，
// 模型回复（或一条错误消息）在后台生成后写入记录并通过 channel 发布一次
func (uc *ConversationUseCase) SendMessage(ctx context.Context, text string) (<-chan *chattypes.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	uc.mu.Lock()
	if uc.loading {
		uc.mu.Unlock()
		return nil, false
	}
	history := make([]*chattypes.Message, len(uc.messages))
	copy(history, uc.messages)
	userMsg := chattypes.NewUserMessage(uc.now(), text)
	uc.messages = append(uc.messages, userMsg)
	uc.loading = true
	cfg := uc.config
	uc.persistLocked(ctx)
	uc.mu.Unlock()

	ctx = logger.WithSessionID(ctx, uc.sessionID)
	ctx = logger.WithMessageID(ctx, userMsg.ID)

	out := make(chan *chattypes.Message, 1)
	task := func() {
		defer close(out)
		reply := uc.respond(ctx, cfg, history, text)

		uc.mu.Lock()
		uc.messages = append(uc.messages, reply)
		uc.loading = false
		uc.persistLocked(ctx)
		uc.mu.Unlock()

		out <- reply
	}
	if uc.executor == nil {
		go task()
	} else if err := uc.executor.Submit(task); err != nil {
		uc.log.WithContext(ctx).Warn("executor rejected task, falling back to a goroutine", zap.Error(err))
		go task()
	}
	return out, true
}

// respond 调用 Provider 并把结果或错误转换为一条模型消息
func (uc *ConversationUseCase) respond(ctx context.Context, cfg modelconfig.ModelConfig, history []*chattypes.Message, text string) *chattypes.Message {
	log := uc.log.WithContext(ctx)
	start := uc.now()

	p, err := uc.factory.Create(cfg.Provider, modelconfig.ResolveAPIKey(cfg, uc.getenv))
	if err != nil {
		log.Warn("failed to create provider", zap.String("provider", string(cfg.Provider)), zap.Error(err))
		return uc.errorMessage(cfg, err)
	}
	defer p.Close()

	req := &types.GenerateRequest{
		Model:             cfg.ModelID,
		History:           types.HistoryFromMessages(history),
		Prompt:            text,
		SystemInstruction: prompt.Build(uc.tools(ctx)),
		Temperature:       uc.temperature,
	}

	outcome, err := uc.generator.Generate(ctx, cfg.Provider, p, req)
	if err != nil {
		return uc.errorMessage(cfg, err)
	}

	if outcome.Result.Empty() {
		return uc.errorMessage(cfg, types.ErrEmptyResponse)
	}
	parts := blocksFromResult(outcome.Result)
	if len(parts) == 0 {
		return uc.errorMessage(cfg, types.ErrEmptyResponse)
	}

	log.Info("response received",
		zap.String("model", outcome.Model),
		zap.Int("attempts", len(outcome.Attempts)),
		zap.Int("blocks", len(parts)),
		zap.Duration("latency", uc.now().Sub(start)))
	return chattypes.NewModelMessage(uc.now(), parts)
}

func (uc *ConversationUseCase) tools(ctx context.Context) []catalog.Tool {
	if uc.catalog == nil {
		return nil
	}
	tools, err := uc.catalog.List(ctx)
	if err != nil {
		uc.log.WithContext(ctx).Warn("failed to list catalog", zap.Error(err))
		return nil
	}
	return tools
}

// blocksFromResult 图片片段直接成块，文本片段经解析器切分，顺序不变
func blocksFromResult(result *types.GenerateResult) []chattypes.ContentBlock {
	if result == nil {
		return nil
	}
	var blocks []chattypes.ContentBlock
	for _, part := range result.Parts {
		if part.IsImage() {
			blocks = append(blocks, chattypes.ImageBlock(part.ImageDataURI))
			continue
		}
		blocks = append(blocks, parser.Parse(part.Text)...)
	}
	return blocks
}

var providerNames = map[registry.ProviderID]string{
	registry.Google:    "Google",
	registry.OpenAI:    "OpenAI",
	registry.Anthropic: "Anthropic",
}

// Classify 将生成失败映射为业务错误码
func Classify(cfg modelconfig.ModelConfig, err error) *apperrors.AppError {
	name := providerNames[cfg.Provider]
	if name == "" {
		name = string(cfg.Provider)
	}

	switch {
	case errors.Is(err, types.ErrProviderNotImplemented):
		return apperrors.Wrap(err, apperrors.ErrProviderNotImplemented,
			fmt.Sprintf("%s is not supported yet. Please choose another provider in Settings.", name))
	case errors.Is(err, types.ErrEmptyResponse):
		return apperrors.Wrap(err, apperrors.ErrEmptyResponse, "The model returned no content. Please try again.")
	case types.IsAuthentication(err), strings.Contains(err.Error(), "API key"):
		return apperrors.Wrap(err, apperrors.ErrAuthentication,
			fmt.Sprintf("Please check your %s API Key in Settings.", name))
	case types.IsQuotaExceeded(err):
		return apperrors.Wrap(err, apperrors.ErrQuotaExceeded,
			"The model is busy or out of quota. Please wait a moment and try again.")
	case types.IsModelNotFound(err):
		detail := fmt.Sprintf("%s is not available for this API key", cfg.ModelID)
		if available := fallback.AvailableModels(err); len(available) > 0 {
			detail += ". Available models: " + strings.Join(available, ", ")
		}
		return apperrors.Wrap(err, apperrors.ErrModelNotFound, detail)
	default:
		return apperrors.Wrap(err, apperrors.ErrProviderFailed)
	}
}

func (uc *ConversationUseCase) errorMessage(cfg modelconfig.ModelConfig, err error) *chattypes.Message {
	appErr := Classify(cfg, err)
	uc.log.Error("generation failed",
		zap.Int("code", appErr.Code),
		zap.String("provider", string(cfg.Provider)),
		zap.String("model", cfg.ModelID),
		zap.Error(err))
	return chattypes.NewModelMessage(uc.now(), []chattypes.ContentBlock{chattypes.TextBlock(appErr.UserMessage())})
}

// persistLocked 保存对话记录，失败只记录日志，调用方需持有锁
func (uc *ConversationUseCase) persistLocked(ctx context.Context) {
	data, err := json.Marshal(uc.messages)
	if err != nil {
		uc.log.WithContext(ctx).Error("failed to encode chat history", zap.Error(err))
		return
	}
	if err := uc.store.Save(KeyChatHistory, data); err != nil {
		uc.log.WithContext(ctx).Error("failed to persist chat history", zap.Error(err))
	}
}
