//go:build wireinject
// +build wireinject

package di

import (
	"FxPulse/pkg/config"
	"FxPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideBytesCache,

		// Repositories
		ProvideCandleStore,
		ProvideAlertStore,
		ProvideAlertPublisher,

		// Engine and use cases
		ProvideEngineConfig,
		ProvideAggregator,
		ProvideEngine,
		ProvideFlusher,
		ProvideCandlesUseCase,
		ProvideTicksHandler,

		// Feed intake
		ProvideFeedStream,
		ProvideCollector,

		// HTTP surface and application server
		ProvideMarketHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
