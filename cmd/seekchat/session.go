package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/biz"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/export"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/prompt"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/render"
	chattypes "github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
	apperrors "github.com/lk2023060901/seekcompass-assistant/internal/pkg/errors"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true)
)

// errQuit 由 /quit 返回，结束 REPL
var errQuit = errors.New("quit")

// session 一次交互会话
type session struct {
	conversation *biz.ConversationUseCase
	terminal     render.Renderer
	canvas       render.Renderer
	exportDir    string
	out          io.Writer
	copyFn       func(string) error
	now          func() time.Time
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, s *session, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"/help":     {"/help", "show this help", cmdHelp},
		"/clear":    {"/clear", "clear the conversation", cmdClear},
		"/provider": {"/provider [google|openai|anthropic]", "show or switch the provider", cmdProvider},
		"/model":    {"/model [id]", "show or switch the model", cmdModel},
		"/models":   {"/models", "list the models of every provider", cmdModels},
		"/key":      {"/key [provider] <api-key>", "set your own API key", cmdKey},
		"/export":   {"/export [md|html|txt|canvas]", "export the conversation", cmdExport},
		"/copy":     {"/copy", "copy the last answer to the clipboard", cmdCopy},
		"/like":     {"/like", "like the last answer", cmdLike},
		"/dislike":  {"/dislike", "dislike the last answer", cmdDislike},
		"/width":    {"/width <300-800>", "set the sidebar width", cmdWidth},
		"/maximize": {"/maximize", "toggle the maximized layout", cmdMaximize},
		"/suggest":  {"/suggest [n]", "list starters or send starter n", cmdSuggest},
		"/save":     {"/save [dir]", "download the last generated image", cmdSave},
		"/quit":     {"/quit", "exit", cmdQuit},
	}
}

func (s *session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) info(format string, args ...interface{}) {
	fmt.Fprintln(s.out, infoStyle.Render(fmt.Sprintf(format, args...)))
}

func (s *session) success(format string, args ...interface{}) {
	fmt.Fprintln(s.out, successStyle.Render(fmt.Sprintf(format, args...)))
}

// handleLine 处理一行输入，返回 errQuit 时结束会话
func (s *session) handleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return s.send(ctx, line)
	}

	fields := strings.Fields(line)
	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %s, type /help", fields[0])
	}
	return cmd.run(ctx, s, fields[1:])
}

// recordable 判断输入能否写入行编辑历史，带 API Key 的 /key 不记录
func recordable(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	return strings.ToLower(fields[0]) != "/key"
}

// send 发送消息并等待回复，请求一旦发出不可取消
func (s *session) send(ctx context.Context, text string) error {
	ch, ok := s.conversation.SendMessage(ctx, text)
	if !ok {
		return apperrors.New(apperrors.ErrBusy)
	}

	s.info("thinking...")
	reply, ok := <-ch
	if !ok || reply == nil {
		return nil
	}
	return s.render(ctx, reply)
}

// interrupt 响应 Ctrl+C，请求进行中时提示等待，返回是否有请求进行中
func (s *session) interrupt() bool {
	if !s.conversation.IsLoading() {
		return false
	}
	s.info("Still waiting for the answer, a sent request cannot be cancelled.")
	return true
}

func (s *session) render(ctx context.Context, msg *chattypes.Message) error {
	out, err := s.terminal.RenderMessage(ctx, msg)
	if err != nil {
		return err
	}
	s.printf("%s\n\n", out)
	return nil
}

// replay 启动时重放已有记录，空记录时给出建议
func (s *session) replay(ctx context.Context) error {
	messages := s.conversation.Messages()
	if len(messages) == 0 {
		printSuggestions(s)
		return nil
	}
	for _, msg := range messages {
		if err := s.render(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) lastModelMessage() (*chattypes.Message, error) {
	msg, ok := s.conversation.LastModelMessage()
	if !ok {
		return nil, errors.New("no answer yet")
	}
	return msg, nil
}

func printSuggestions(s *session) {
	s.info("Try one of these (/suggest <n>):")
	for i, text := range prompt.Suggestions {
		s.printf("  %d. %s\n", i+1, text)
	}
}

func cmdHelp(_ context.Context, s *session, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands[name]
		s.printf("  %-38s %s\n", c.usage, c.help)
	}
	return nil
}

func cmdClear(ctx context.Context, s *session, _ []string) error {
	if err := s.conversation.ClearConversation(ctx); err != nil {
		return err
	}
	s.success("Conversation cleared.")
	return nil
}

func cmdProvider(ctx context.Context, s *session, args []string) error {
	cfg := s.conversation.Config()
	if len(args) == 0 {
		for _, p := range registry.List() {
			marker := " "
			if p.ID == cfg.Provider {
				marker = "*"
			}
			s.printf("%s %-10s %s\n", marker, p.ID, p.Label)
		}
		return nil
	}

	id := registry.ProviderID(strings.ToLower(args[0]))
	if !registry.IsKnown(id) {
		return fmt.Errorf("unknown provider %q", args[0])
	}
	next := cfg.WithProvider(id, "")
	if err := s.conversation.SaveConfig(ctx, next); err != nil {
		return err
	}
	s.success("Provider set to %s (%s).", id, next.ModelID)
	return nil
}

func cmdModel(ctx context.Context, s *session, args []string) error {
	cfg := s.conversation.Config()
	if len(args) == 0 {
		s.printf("%s / %s\n", cfg.Provider, cfg.ModelID)
		return nil
	}

	id := registry.ResolveAlias(args[0])
	if !registry.HasModel(cfg.Provider, id) {
		return fmt.Errorf("model %q is not available for %s, see /models", args[0], cfg.Provider)
	}
	if err := s.conversation.SaveConfig(ctx, cfg.WithModel(id)); err != nil {
		return err
	}
	s.success("Model set to %s.", id)
	return nil
}

func cmdModels(_ context.Context, s *session, _ []string) error {
	cfg := s.conversation.Config()
	for _, p := range registry.List() {
		s.printf("%s\n", p.Label)
		for _, m := range p.Models {
			marker := " "
			if p.ID == cfg.Provider && m.ID == cfg.ModelID {
				marker = "*"
			}
			suffix := ""
			if m.Image {
				suffix = " (images)"
			}
			s.printf("  %s %-28s %s%s\n", marker, m.ID, m.Label, suffix)
		}
	}
	return nil
}

func cmdKey(ctx context.Context, s *session, args []string) error {
	cfg := s.conversation.Config()
	provider := cfg.Provider
	switch len(args) {
	case 1:
	case 2:
		provider = registry.ProviderID(strings.ToLower(args[0]))
		if !registry.IsKnown(provider) {
			return fmt.Errorf("unknown provider %q", args[0])
		}
		args = args[1:]
	default:
		return errors.New("usage: /key [provider] <api-key>")
	}

	cfg.APIKeys.Set(provider, args[0])
	if err := s.conversation.SaveConfig(ctx, cfg); err != nil {
		return err
	}
	s.success("API key saved for %s (%s).", provider, maskKey(args[0]))
	return nil
}

// maskKey 只保留最后 4 位
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 4) + key[len(key)-4:]
}

func cmdExport(_ context.Context, s *session, args []string) error {
	format := ""
	if len(args) > 0 {
		format = args[0]
	}

	var exporter export.Exporter
	if strings.EqualFold(format, "canvas") {
		exporter = export.NewCanvasExporter(s.canvas, 0)
	} else {
		e, err := export.ForFormat(format)
		if err != nil {
			return err
		}
		exporter = e
	}

	path, err := export.ToFile(s.conversation.Messages(), exporter, s.exportDir, s.now())
	if err != nil {
		return err
	}
	s.success("Exported to %s", path)
	return nil
}

func cmdCopy(_ context.Context, s *session, _ []string) error {
	msg, err := s.lastModelMessage()
	if err != nil {
		return err
	}
	text, _ := s.conversation.CopyText(msg.ID)
	if err := s.copyFn(text); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	s.success("Copied!")
	return nil
}

func feedbackLabel(f biz.Feedback) string {
	switch f {
	case biz.FeedbackLike:
		return "liked"
	case biz.FeedbackDislike:
		return "disliked"
	default:
		return "cleared"
	}
}

func cmdLike(_ context.Context, s *session, _ []string) error {
	msg, err := s.lastModelMessage()
	if err != nil {
		return err
	}
	s.info("Feedback %s.", feedbackLabel(s.conversation.Like(msg.ID)))
	return nil
}

func cmdDislike(_ context.Context, s *session, _ []string) error {
	msg, err := s.lastModelMessage()
	if err != nil {
		return err
	}
	s.info("Feedback %s.", feedbackLabel(s.conversation.Dislike(msg.ID)))
	return nil
}

func cmdWidth(_ context.Context, s *session, args []string) error {
	if len(args) == 0 {
		s.printf("%d\n", s.conversation.SidebarWidth())
		return nil
	}
	width, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid width %q", args[0])
	}
	if !s.conversation.SetSidebarWidth(width) {
		return fmt.Errorf("width must be between %d and %d", biz.MinSidebarWidth, biz.MaxSidebarWidth)
	}
	s.success("Width set to %d.", width)
	return nil
}

func cmdMaximize(_ context.Context, s *session, _ []string) error {
	if s.conversation.ToggleMaximize() {
		s.info("Maximized.")
	} else {
		s.info("Restored.")
	}
	return nil
}

func cmdSuggest(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		printSuggestions(s)
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(prompt.Suggestions) {
		return fmt.Errorf("pick a suggestion between 1 and %d", len(prompt.Suggestions))
	}
	return s.send(ctx, prompt.Suggestions[n-1])
}

func cmdSave(_ context.Context, s *session, args []string) error {
	dir := s.exportDir
	if len(args) > 0 {
		dir = args[0]
	}

	messages := s.conversation.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		parts := messages[i].Parts
		for j := len(parts) - 1; j >= 0; j-- {
			if parts[j].Kind != chattypes.BlockImage {
				continue
			}
			path, err := render.DownloadImage(parts[j].Text, dir, s.now())
			if err != nil {
				return err
			}
			s.success("Saved image to %s", path)
			return nil
		}
	}
	return errors.New("no image in the conversation")
}

func cmdQuit(context.Context, *session, []string) error {
	return errQuit
}

// errorText 命令错误的展示文本
func errorText(err error) string {
	return apperrors.UserMessage(err)
}
