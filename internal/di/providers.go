package di

import (
	"SETPulse/internal/domain/repository"
	"SETPulse/internal/handler/api"
	icache "SETPulse/internal/service/cache"
	"SETPulse/internal/service/marketdata"
	svcmetrics "SETPulse/internal/service/metrics"
	"SETPulse/internal/usecase"
	"SETPulse/pkg/config"
	xhttp "SETPulse/pkg/http"
	applogger "SETPulse/pkg/logger"
	"SETPulse/pkg/metrics"
	"SETPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New()
}

// ProvideQuoteCache picks the byte cache backend: Redis when enabled,
// otherwise in-process TTL map.
func ProvideQuoteCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideMarketData creates the cached vendor client.
func ProvideMarketData(cfg *config.Config, log *applogger.Logger, m repository.Metrics, store icache.BytesCache) repository.MarketData {
	client := marketdata.New(marketdata.Config{
		ChartBaseURL: cfg.Vendor.ChartBaseURL,
		QuoteBaseURL: cfg.Vendor.QuoteBaseURL,
		QuoteAPIKey:  cfg.Vendor.QuoteAPIKey,
		Timeout:      cfg.Vendor.Timeout,
	}, log, m)
	return marketdata.NewCachedClient(client, store, log)
}

// ProvideAnalyzer creates the per-symbol analysis use case.
func ProvideAnalyzer(data repository.MarketData, log *applogger.Logger, m repository.Metrics) *usecase.Analyzer {
	return usecase.NewAnalyzer(data, log, m)
}

// ProvideScanner creates the universe scanner use case.
func ProvideScanner(data repository.MarketData, log *applogger.Logger, m repository.Metrics) *usecase.Scanner {
	return usecase.NewScanner(data, log, m)
}

// ProvideStreamer creates the realtime quote streamer; nil when the
// feed is disabled in config.
func ProvideStreamer(cfg *config.Config, store icache.BytesCache, log *applogger.Logger) *usecase.Streamer {
	if !cfg.Stream.Enabled {
		return nil
	}
	stream := marketdata.NewStream(
		cfg.Vendor.QuoteAPIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		log,
	)
	return usecase.NewStreamer(stream, store, log, cfg.Stream.Symbols)
}

// ProvideHandler creates the Echo HTTP handler.
func ProvideHandler(log *applogger.Logger, analyzer *usecase.Analyzer, scanner *usecase.Scanner) xhttp.Handler {
	return api.NewAnalysisEchoHandler(log, analyzer, scanner)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler, streamer *usecase.Streamer) *server.App {
	return server.New(cfg, log, handler, streamer)
}
