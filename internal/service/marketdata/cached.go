package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/domain/repository"
	"SETPulse/internal/service/cache"
	"SETPulse/pkg/logger"
)

// CachedClient wraps a MarketData source with a TTL cache. Quote and
// historical lifetimes follow the market clock so entries go stale
// quickly while the SET trades and survive long after close.
type CachedClient struct {
	next  repository.MarketData
	store cache.BytesCache
	log   *logger.Logger
	now   func() time.Time
}

// NewCachedClient builds the caching decorator. now may be nil.
func NewCachedClient(next repository.MarketData, store cache.BytesCache, log *logger.Logger) *CachedClient {
	return &CachedClient{next: next, store: store, log: log, now: time.Now}
}

func (c *CachedClient) Historical(ctx context.Context, symbol, period, interval string) (*models.Series, error) {
	key := fmt.Sprintf("hist:%s:%s:%s", symbol, period, interval)
	var series models.Series
	if c.lookup(key, &series) {
		return &series, nil
	}
	fresh, err := c.next.Historical(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	c.stash(key, fresh, HistoricalTTL(c.now()))
	return fresh, nil
}

func (c *CachedClient) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	key := "quote:" + symbol
	var q models.Quote
	if c.lookup(key, &q) {
		return q, nil
	}
	fresh, err := c.next.Quote(ctx, symbol)
	if err != nil {
		return models.Quote{}, err
	}
	c.stash(key, fresh, QuoteTTL(c.now()))
	return fresh, nil
}

func (c *CachedClient) Dividends(ctx context.Context, symbol string) ([]models.Dividend, error) {
	key := "div:" + symbol
	var divs []models.Dividend
	if c.lookup(key, &divs) {
		return divs, nil
	}
	fresh, err := c.next.Dividends(ctx, symbol)
	if err != nil {
		return nil, err
	}
	c.stash(key, fresh, 24*time.Hour)
	return fresh, nil
}

func (c *CachedClient) Info(ctx context.Context, symbol string) (models.StockInfo, error) {
	key := "info:" + symbol
	var info models.StockInfo
	if c.lookup(key, &info) {
		return info, nil
	}
	fresh, err := c.next.Info(ctx, symbol)
	if err != nil {
		return models.StockInfo{}, err
	}
	c.stash(key, fresh, time.Hour)
	return fresh, nil
}

func (c *CachedClient) lookup(key string, dest any) bool {
	b, ok, err := c.store.GetBytes(key)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false
	}
	return true
}

// stash is best effort; a failed write only costs the next caller a
// vendor round trip.
func (c *CachedClient) stash(key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.SetBytes(key, b, ttl); err != nil {
		c.log.Debug("cache write failed", logger.String("key", key), logger.Error(err))
	}
}
