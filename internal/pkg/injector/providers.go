package injector

import (
	"fmt"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/fallback"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/factory"
	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/catalog"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/biz"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/data"
	"github.com/lk2023060901/seekcompass-assistant/internal/chat/render"
	"github.com/lk2023060901/seekcompass-assistant/internal/conf"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/workerpool"
)

// terminalBarWidth is the longest chart bar in terminal columns
const terminalBarWidth = 32

func provideStorage(config *conf.Config, log *logger.Logger) (biz.Storage, error) {
	dir, err := config.StorageDir()
	if err != nil {
		return nil, err
	}
	store, err := data.NewFileStorage(dir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	return store, nil
}

func provideEndpoints(config *conf.Config) map[registry.ProviderID]factory.Endpoint {
	endpoints := make(map[registry.ProviderID]factory.Endpoint, len(config.Providers))
	for name, p := range config.Providers {
		endpoints[registry.ProviderID(name)] = factory.Endpoint{
			BaseURL: p.BaseURL,
			Timeout: p.Timeout,
			Headers: p.Headers,
		}
	}
	return endpoints
}

func provideFactory(endpoints map[registry.ProviderID]factory.Endpoint, log *logger.Logger) biz.ProviderFactory {
	return factory.New(endpoints, log)
}

func provideGenerator(log *logger.Logger) biz.Generator {
	return fallback.NewController(log)
}

func provideCatalog(config *conf.Config, log *logger.Logger) catalog.Source {
	seed := catalog.NewStaticSource(catalog.SeedTools())
	if config.Catalog.File == "" {
		return seed
	}
	return catalog.NewMultiSource(log, catalog.NewFileSource(config.Catalog.File), seed)
}

func providePool(log *logger.Logger) (*workerpool.Pool, func(), error) {
	pool, err := workerpool.New(workerpool.DefaultConfig(), log)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Shutdown, nil
}

func provideConversation(store biz.Storage, f biz.ProviderFactory, g biz.Generator, tools catalog.Source, pool *workerpool.Pool, config *conf.Config, log *logger.Logger) *biz.ConversationUseCase {
	return biz.NewConversationUseCase(store, f, g, log,
		biz.WithCatalog(tools),
		biz.WithExecutor(pool),
		biz.WithTemperature(config.Chat.Temperature),
	)
}

func provideDiagramEngine(config *conf.Config, log *logger.Logger) (render.DiagramEngine, func(), error) {
	if !config.Diagram.Enabled {
		return render.NopDiagramEngine{}, func() {}, nil
	}
	engine, err := render.NewKrokiEngine(render.KrokiConfig{
		BaseURL: config.Diagram.KrokiURL,
		Timeout: config.Diagram.Timeout,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init diagram engine: %w", err)
	}
	return engine, engine.Close, nil
}

func provideCanvas(engine render.DiagramEngine, log *logger.Logger) *render.HTMLRenderer {
	return render.NewHTMLRenderer(engine, log)
}

func provideTerminal() *render.TerminalRenderer {
	return render.NewTerminalRenderer(render.DefaultTerminalStyles(), terminalBarWidth)
}

func provideApp(config *conf.Config, log *logger.Logger, conversation *biz.ConversationUseCase, terminal *render.TerminalRenderer, canvas *render.HTMLRenderer) *App {
	return &App{
		Config:       config,
		Logger:       log,
		Conversation: conversation,
		Terminal:     terminal,
		Canvas:       canvas,
	}
}
