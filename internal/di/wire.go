//go:build wireinject
// +build wireinject

package di

import (
	"ShortScan/pkg/config"
	"ShortScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideRunParams,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideHistoryCache,

		// Repositories and services
		ProvidePriceSource,
		ProvidePanelAssembler,
		ProvideEvaluator,
		ProvideRunSinks,

		// Use cases
		ProvideShortPipeline,

		// Transport
		ProvideRunsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
