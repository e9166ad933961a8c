package usecase

import (
	"context"
	"encoding/json"
	"time"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/domain/repository"
	"SETPulse/internal/service/cache"
	"SETPulse/internal/service/marketdata"
	"SETPulse/pkg/logger"
)

// Streamer consumes the realtime quote feed and keeps the quote cache
// warm, so REST callers see live prices without hitting the vendor.
type Streamer struct {
	stream  repository.QuoteStream
	store   cache.BytesCache
	log     *logger.Logger
	symbols []string
}

func NewStreamer(stream repository.QuoteStream, store cache.BytesCache, log *logger.Logger, symbols []string) *Streamer {
	return &Streamer{stream: stream, store: store, log: log, symbols: symbols}
}

// Run blocks until ctx is canceled, reconnecting on stream errors.
func (s *Streamer) Run(ctx context.Context) error {
	if err := s.stream.Connect(ctx); err != nil {
		return err
	}
	defer s.stream.Close()

	if err := s.stream.Subscribe(ctx, s.symbols); err != nil {
		return err
	}

	quotes, errs := s.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case q, ok := <-quotes:
			if !ok {
				return nil
			}
			s.cacheQuote(q)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			s.log.Warn("quote stream error", logger.Error(err))
			if rc, can := s.stream.(interface {
				Reconnect(context.Context, []string) error
			}); can {
				if rerr := rc.Reconnect(ctx, s.symbols); rerr != nil {
					return rerr
				}
				quotes, errs = s.stream.Read(ctx)
			}
		}
	}
}

func (s *Streamer) cacheQuote(q models.Quote) {
	b, err := json.Marshal(q)
	if err != nil {
		return
	}
	ttl := marketdata.QuoteTTL(time.Now())
	if err := s.store.SetBytes("quote:"+q.Symbol, b, ttl); err != nil {
		s.log.Debug("quote cache write failed",
			logger.String("symbol", q.Symbol),
			logger.Error(err))
	}
}
