//go:build wireinject
// +build wireinject

package di

import (
	"github.com/pral10/SmartIoT/pkg/config"
	"github.com/pral10/SmartIoT/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Domain singletons
		ProvideEngine,
		ProvideEvaluator,
		ProvideRegistry,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideThresholdCache,
		ProvideBytesCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideReadingStore,
		ProvidePublisher,
		ProvideSensorStream,

		// Queue
		ProvideAlertQueue,
		ProvideQueueService,

		// Use cases
		ProvideThresholdService,
		ProvideReadingProcessor,
		ProvideReadingEnricher,
		ProvideReadingCollector,
		ProvideQueryService,
		ProvideKafkaReadingsHandler,

		// HTTP
		ProvideDashboardHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
