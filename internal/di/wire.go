//go:build wireinject
// +build wireinject

package di

import (
	"SETPulse/pkg/config"
	"SETPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideQuoteCache,
		ProvideMarketData,

		// Use cases
		ProvideAnalyzer,
		ProvideScanner,
		ProvideStreamer,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
