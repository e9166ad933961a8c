package repository

import (
	"context"

	"SETPulse/internal/domain/models"
)

// MarketData is the data-access collaborator the engine consumes.
// Implementations never leak transport errors as panics: no data means
// an empty series or a zero-price quote.
type MarketData interface {
	// Historical returns OHLCV bars for period/interval, empty on
	// no-data or vendor failure.
	Historical(ctx context.Context, symbol, period, interval string) (*models.Series, error)

	// Quote returns the freshest price snapshot; Quote.Price == 0
	// signals "unavailable" and callers fall back to last close.
	Quote(ctx context.Context, symbol string) (models.Quote, error)

	// Dividends returns up to five years of ex-dividend events.
	Dividends(ctx context.Context, symbol string) ([]models.Dividend, error)

	// Info returns company fundamentals for recommendation context.
	Info(ctx context.Context, symbol string) (models.StockInfo, error)
}

// QuoteStream pushes realtime quotes over a long-lived connection.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan models.Quote, <-chan error)
	Close() error
}

// Metrics is the recording surface the engine and scanner report to.
type Metrics interface {
	RecordScanTask(mode string, ok bool)
	RecordFetchError(kind string)
	RecordLatency(op string, seconds float64)
	RecordScore(symbol string, score float64)
}
