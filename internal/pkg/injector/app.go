package injector

import (
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/biz"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/render"
	"github.com/lk2023060901/seekcompass-assistant/internal/conf"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// App encapsulates all application dependencies
type App struct {
	Config       *conf.Config
	Logger       *logger.Logger
	Conversation *biz.ConversationUseCase
	Terminal     *render.TerminalRenderer
	Canvas       *render.HTMLRenderer
}
