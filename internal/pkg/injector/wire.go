//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"

	"github.com/lk2023060901/seekcompass-assistant/internal/conf"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// ProviderSet is the Wire provider set for all dependencies
var ProviderSet = wire.NewSet(
	// Data layer
	provideStorage,

	// Providers
	provideEndpoints,
	provideFactory,
	provideGenerator,
	provideCatalog,

	// Use cases
	providePool,
	provideConversation,

	// Rendering
	provideDiagramEngine,
	provideCanvas,
	provideTerminal,

	provideApp,
)

// InitializeApp builds the application graph
func InitializeApp(config *conf.Config, log *logger.Logger) (*App, func(), error) {
	panic(wire.Build(ProviderSet))
}
