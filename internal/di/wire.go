//go:build wireinject
// +build wireinject

package di

import (
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/config"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideClock,
		ProvideMetrics,

		// Resolution infrastructure
		ProvideCacheStore,
		ProvideCache,
		ProvideLimiter,
		ProvideClickHouseClient,
		ProvideHistoryStore,
		ProvideEventPublisher,

		// Sources and use cases
		ProvideStrategies,
		ProvideFallback,
		ProvideResolver,
		ProvideSentimentService,

		// Transport
		ProvideMarketHandler,
		ProvideQuoteHub,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
