package marketdata

import (
	"context"
	"testing"
	"time"

	"SETPulse/internal/domain/models"
)

type fakeStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (s *fakeStore) GetBytes(key string) ([]byte, bool, error) {
	b, ok := s.data[key]
	return b, ok, nil
}

func (s *fakeStore) SetBytes(key string, value []byte, ttl time.Duration) error {
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

// countingData records call counts per method.
type countingData struct {
	hist, quote, divs, info int
}

func (d *countingData) Historical(ctx context.Context, symbol, period, interval string) (*models.Series, error) {
	d.hist++
	return &models.Series{Symbol: symbol, Candles: []models.Candle{
		{Timestamp: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Open: 34, High: 35, Low: 33, Close: 34.5, Volume: 1000},
	}}, nil
}

func (d *countingData) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	d.quote++
	return models.Quote{Symbol: symbol, Price: 34.5, Source: "realtime"}, nil
}

func (d *countingData) Dividends(ctx context.Context, symbol string) ([]models.Dividend, error) {
	d.divs++
	return []models.Dividend{{Amount: 0.5, Year: 2024}}, nil
}

func (d *countingData) Info(ctx context.Context, symbol string) (models.StockInfo, error) {
	d.info++
	return models.StockInfo{Symbol: symbol, Name: "PTT"}, nil
}

func newCachedUnderTest(t *testing.T, clock time.Time) (*CachedClient, *countingData, *fakeStore) {
	t.Helper()
	next := &countingData{}
	store := newFakeStore()
	c := NewCachedClient(next, store, testLogger(t))
	c.now = func() time.Time { return clock }
	return c, next, store
}

func TestCachedHistoricalHitAndMiss(t *testing.T) {
	// Sunday: market closed, long TTL.
	closed := time.Date(2024, 1, 7, 11, 0, 0, 0, bangkok)
	c, next, store := newCachedUnderTest(t, closed)
	ctx := context.Background()

	s1, err := c.Historical(ctx, "PTT", "1y", "1d")
	if err != nil {
		t.Fatalf("Historical: %v", err)
	}
	s2, err := c.Historical(ctx, "PTT", "1y", "1d")
	if err != nil {
		t.Fatalf("Historical (cached): %v", err)
	}
	if next.hist != 1 {
		t.Fatalf("upstream calls = %d, want 1", next.hist)
	}
	if s1.Len() != s2.Len() || s2.Last().Close != 34.5 {
		t.Fatalf("cached series differs: %v vs %v", s1.Len(), s2.Len())
	}
	if ttl := store.ttls["hist:PTT:1y:1d"]; ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h while closed", ttl)
	}

	// A different period is a different key.
	if _, err := c.Historical(ctx, "PTT", "6mo", "1d"); err != nil {
		t.Fatalf("Historical: %v", err)
	}
	if next.hist != 2 {
		t.Fatalf("upstream calls = %d, want 2", next.hist)
	}
}

func TestCachedQuoteTTLTracksMarketClock(t *testing.T) {
	open := time.Date(2024, 1, 8, 11, 0, 0, 0, bangkok)
	c, next, store := newCachedUnderTest(t, open)
	ctx := context.Background()

	if _, err := c.Quote(ctx, "PTT"); err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if _, err := c.Quote(ctx, "PTT"); err != nil {
		t.Fatalf("Quote (cached): %v", err)
	}
	if next.quote != 1 {
		t.Fatalf("upstream calls = %d, want 1", next.quote)
	}
	if ttl := store.ttls["quote:PTT"]; ttl != 30*time.Second {
		t.Fatalf("ttl = %v, want 30s while trading", ttl)
	}
}

func TestCachedDividendsAndInfo(t *testing.T) {
	c, next, store := newCachedUnderTest(t, time.Date(2024, 1, 8, 11, 0, 0, 0, bangkok))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Dividends(ctx, "PTT"); err != nil {
			t.Fatalf("Dividends: %v", err)
		}
		if _, err := c.Info(ctx, "PTT"); err != nil {
			t.Fatalf("Info: %v", err)
		}
	}
	if next.divs != 1 || next.info != 1 {
		t.Fatalf("upstream calls = %d/%d, want 1/1", next.divs, next.info)
	}
	if ttl := store.ttls["div:PTT"]; ttl != 24*time.Hour {
		t.Fatalf("dividends ttl = %v", ttl)
	}
	if ttl := store.ttls["info:PTT"]; ttl != time.Hour {
		t.Fatalf("info ttl = %v", ttl)
	}
}
