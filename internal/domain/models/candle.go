package models

import (
	"sort"
	"time"
)

// Candle is one OHLCV bar.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series is an OHLCV history ordered by time.
type Series struct {
	Symbol  string
	Candles []Candle
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Candles) }

// Empty reports whether the series holds no bars.
func (s *Series) Empty() bool { return s == nil || len(s.Candles) == 0 }

// Last returns the most recent bar. Callers must check Empty first.
func (s *Series) Last() Candle { return s.Candles[len(s.Candles)-1] }

// Sanitize drops bars with non-positive prices or inverted high/low,
// de-duplicates timestamps (last one wins) and sorts ascending by time.
// The upstream vendor occasionally emits both.
func (s *Series) Sanitize() {
	if s == nil {
		return
	}
	seen := make(map[int64]int, len(s.Candles))
	out := s.Candles[:0]
	for _, c := range s.Candles {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			continue
		}
		if c.High < c.Low {
			continue
		}
		ts := c.Timestamp.Unix()
		if i, dup := seen[ts]; dup {
			out[i] = c
			continue
		}
		seen[ts] = len(out)
		out = append(out, c)
	}
	s.Candles = out
	sort.Slice(s.Candles, func(i, j int) bool {
		return s.Candles[i].Timestamp.Before(s.Candles[j].Timestamp)
	})
}

// Tail returns a view of the last n bars (the whole series when shorter).
func (s *Series) Tail(n int) []Candle {
	if n >= len(s.Candles) {
		return s.Candles
	}
	return s.Candles[len(s.Candles)-n:]
}

// Resample4H folds 1-hour candles into 4-hour candles.
func Resample4H(s *Series) *Series {
	if s.Empty() {
		return s
	}
	out := &Series{Symbol: s.Symbol}
	var cur Candle
	var open bool
	bucket := func(t time.Time) time.Time { return t.Truncate(4 * time.Hour) }
	for _, c := range s.Candles {
		b := bucket(c.Timestamp)
		if !open || !bucket(cur.Timestamp).Equal(b) {
			if open {
				out.Candles = append(out.Candles, cur)
			}
			cur = c
			cur.Timestamp = b
			open = true
			continue
		}
		if c.High > cur.High {
			cur.High = c.High
		}
		if c.Low < cur.Low {
			cur.Low = c.Low
		}
		cur.Close = c.Close
		cur.Volume += c.Volume
	}
	if open {
		out.Candles = append(out.Candles, cur)
	}
	return out
}
