// Package usecase orchestrates the analysis pipeline: fetch, compute,
// score, recommend. Services stay pure; everything IO-shaped funnels
// through here.
package usecase

import (
	"context"
	"fmt"
	"time"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/domain/repository"
	"SETPulse/internal/services/backtest"
	"SETPulse/internal/services/bellcurve"
	"SETPulse/internal/services/indicators"
	"SETPulse/internal/services/patterns"
	"SETPulse/internal/services/recommend"
	"SETPulse/internal/services/signals"
	"SETPulse/internal/services/targets"
	"SETPulse/pkg/logger"
)

// Analysis is the full per-symbol pipeline output.
type Analysis struct {
	Symbol    string `json:"symbol"`
	Period    string `json:"period"`
	Interval  string `json:"interval"`
	Timeframe string `json:"timeframe"`

	Price float64      `json:"price"`
	Quote models.Quote `json:"quote"`
	Bars  int          `json:"bars"`

	Score   int             `json:"score"`
	Signals []models.Signal `json:"signals"`
	Regime  models.Regime   `json:"regime"`

	Patterns       []models.Pattern      `json:"patterns"`
	Targets        models.Targets        `json:"targets"`
	Recommendation models.Recommendation `json:"recommendation"`
	BellCurve      models.BellCurveStats `json:"bell_curve"`
}

// Analyzer runs the per-symbol pipeline against a market data source.
type Analyzer struct {
	data    repository.MarketData
	log     *logger.Logger
	metrics repository.Metrics
}

// NewAnalyzer builds the analysis facade. metrics may be nil in tests.
func NewAnalyzer(data repository.MarketData, log *logger.Logger, metrics repository.Metrics) *Analyzer {
	return &Analyzer{data: data, log: log, metrics: metrics}
}

// Analyze fetches history and runs scoring, pattern detection, price
// targets, the recommendation table and the bell curve in one pass.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalyzeRequest) (*Analysis, error) {
	started := time.Now()
	frame, err := a.frame(ctx, req.Symbol, req.Period, req.Interval, req.Timeframe)
	if err != nil {
		return nil, err
	}

	out := &Analysis{
		Symbol:    req.Symbol,
		Period:    repository.NormalizePeriod(req.Period),
		Interval:  repository.NormalizeInterval(req.Interval),
		Timeframe: req.Timeframe,
		Bars:      frame.Len(),
	}

	// Freshest price wins; fall back to the last close.
	quote, qErr := a.data.Quote(ctx, req.Symbol)
	if qErr != nil {
		a.log.Warn("quote fetch failed", logger.String("symbol", req.Symbol), logger.Error(qErr))
	}
	out.Quote = quote
	out.Price = quote.Price
	if quote.Unavailable() && frame.Len() > 0 {
		out.Price = frame.Last().Close
	}

	out.Patterns = patterns.Detect(frame)
	score, sigs, regime, scoreErr := a.score(frame, out.Patterns, out.Interval)
	out.Score = score
	out.Signals = sigs
	out.Regime = regime

	if frame.Len() > 0 {
		out.Targets = targets.Calculate(frame, out.Price)
	}
	out.Recommendation = recommend.Generate(frame, score, sigs, regime, out.Price, req.Timeframe)

	if bc, err := bellcurve.Analyze(frame, 0); err == nil {
		out.BellCurve = bc
	}

	if a.metrics != nil {
		a.metrics.RecordScore(req.Symbol, float64(score))
		a.metrics.RecordLatency("analyze", time.Since(started).Seconds())
	}
	if scoreErr != nil {
		a.log.Debug("scored with degraded input",
			logger.String("symbol", req.Symbol),
			logger.Int("bars", frame.Len()),
			logger.Error(scoreErr))
	}
	return out, nil
}

// Patterns returns candlestick matches at or above a confidence floor.
func (a *Analyzer) Patterns(ctx context.Context, req models.PatternsRequest) ([]models.Pattern, error) {
	frame, err := a.frame(ctx, req.Symbol, req.Period, "1d", "")
	if err != nil {
		return nil, err
	}
	detected := patterns.Detect(frame)
	if req.MinConfidence <= 0 {
		return detected, nil
	}
	out := detected[:0]
	for _, p := range detected {
		if p.Confidence >= req.MinConfidence {
			out = append(out, p)
		}
	}
	return out, nil
}

// BellCurve returns the mean-reversion snapshot for a symbol.
func (a *Analyzer) BellCurve(ctx context.Context, req models.BellCurveRequest) (models.BellCurveStats, error) {
	frame, err := a.frame(ctx, req.Symbol, req.Period, "1d", "")
	if err != nil {
		return models.BellCurveStats{}, err
	}
	return bellcurve.Analyze(frame, req.Window)
}

// Backtest replays a strategy over the requested history.
func (a *Analyzer) Backtest(ctx context.Context, req models.BacktestRequest) (models.BacktestResult, error) {
	frame, err := a.frame(ctx, req.Symbol, req.Period, "1d", "")
	if err != nil {
		return models.BacktestResult{}, err
	}
	return backtest.Run(frame, req.Strategy, req.Capital, req.StopLossPc)
}

// Quote proxies the realtime quote endpoint.
func (a *Analyzer) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	return a.data.Quote(ctx, symbol)
}

// Dividends returns dividend history for a symbol.
func (a *Analyzer) Dividends(ctx context.Context, symbol string) ([]models.Dividend, error) {
	return a.data.Dividends(ctx, symbol)
}

// Info returns company fundamentals.
func (a *Analyzer) Info(ctx context.Context, symbol string) (models.StockInfo, error) {
	return a.data.Info(ctx, symbol)
}

// frame fetches and computes the indicator frame for the request. The
// 4H timeframe rides on hourly bars folded down before indicators.
func (a *Analyzer) frame(ctx context.Context, symbol, period, interval, timeframe string) (*models.Frame, error) {
	fetchInterval := repository.NormalizeInterval(interval)
	if timeframe == "4H" {
		fetchInterval = "1h"
	}

	series, err := a.data.Historical(ctx, symbol, period, fetchInterval)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if timeframe == "4H" {
		series = models.Resample4H(series)
	}

	if fetchInterval == "1d" || timeframe == "4H" {
		return indicators.Compute(series), nil
	}
	return indicators.ComputeIntraday(series), nil
}

func (a *Analyzer) score(f *models.Frame, pats []models.Pattern, interval string) (int, []models.Signal, models.Regime, error) {
	if interval != "1d" {
		return signals.ScoreIntraday(f)
	}
	return signals.Score(f, pats)
}
