// Package backtest replays one of the fixed entry/exit strategies over
// a historical frame and reports trade statistics.
package backtest

import (
	"fmt"
	"math"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/services/patterns"
	"SETPulse/internal/services/signals"
)

// strategyFunc evaluates entry/exit for one strategy at bar i. The
// frame is read-only; the score strategy re-scores the prefix up to i.
type strategyFunc func(f *models.Frame, i int) (entry, exit bool)

var strategies = map[models.Strategy]strategyFunc{
	models.StrategyEMACross:  emaCross,
	models.StrategyRSI:       rsiBounds,
	models.StrategyMACDCross: macdCross,
	models.StrategyBBBounce:  bbBounce,
	models.StrategyScore:     scoreGate,
}

// Run simulates a single-position long-only strategy: one unit in or
// out, equity compounding per closed trade, a fixed percent stop below
// entry. Unknown strategies and frames shorter than three bars return
// an empty result with flat stats.
func Run(f *models.Frame, strategy models.Strategy, capital, slPct float64) (models.BacktestResult, error) {
	res := models.BacktestResult{Strategy: strategy, FinalEquity: capital}
	eval, ok := strategies[strategy]
	if !ok {
		return res, fmt.Errorf("backtest: unknown strategy %q", strategy)
	}
	if f == nil || f.Len() < 3 {
		return res, models.ErrInsufficientData
	}

	equity := capital
	inPosition := false
	var entryPrice float64
	var entryDate = f.Candles[0].Timestamp

	curve := []models.EquityPoint{{Date: f.Candles[0].Timestamp, Equity: capital}}

	for i := 2; i < f.Len(); i++ {
		close := f.Candles[i].Close
		entry, exit := eval(f, i)

		if !inPosition && entry {
			inPosition = true
			entryPrice = close
			entryDate = f.Candles[i].Timestamp
		} else if inPosition {
			slPrice := entryPrice * (1 - slPct)
			if exit || close <= slPrice {
				pnlPct := (close - entryPrice) / entryPrice * 100
				pnlAmt := equity * (close - entryPrice) / entryPrice
				equity += pnlAmt
				res.Trades = append(res.Trades, models.Trade{
					EntryDate:  entryDate,
					ExitDate:   f.Candles[i].Timestamp,
					EntryPrice: round2(entryPrice),
					ExitPrice:  round2(close),
					PnLPct:     round2(pnlPct),
					PnLAmount:  round2(pnlAmt),
					Win:        pnlPct > 0,
					StopHit:    !exit && close <= slPrice,
				})
				inPosition = false
			}
		}
		curve = append(curve, models.EquityPoint{Date: f.Candles[i].Timestamp, Equity: round2(equity)})
	}

	res.EquityCurve = curve
	res.FinalEquity = round2(equity)
	res.TotalTrades = len(res.Trades)
	if len(res.Trades) > 0 {
		res.TotalReturn = round2((equity - capital) / capital * 100)
		wins := 0
		for _, t := range res.Trades {
			if t.Win {
				wins++
			}
		}
		res.WinRate = round2(float64(wins) / float64(len(res.Trades)) * 100)
		res.MaxDrawdown = round2(maxDrawdown(curve))
	}
	return res, nil
}

// maxDrawdown is the deepest peak-to-trough dip of the equity curve in
// percent (negative or zero).
func maxDrawdown(curve []models.EquityPoint) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (p.Equity - peak) / peak * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func emaCross(f *models.Frame, i int) (bool, bool) {
	now9 := models.ValueOr(models.At(f.EMA9, i), 0)
	now21 := models.ValueOr(models.At(f.EMA21, i), 0)
	prev9 := models.ValueOr(models.At(f.EMA9, i-1), 0)
	prev21 := models.ValueOr(models.At(f.EMA21, i-1), 0)
	return prev9 < prev21 && now9 > now21, prev9 > prev21 && now9 < now21
}

func rsiBounds(f *models.Frame, i int) (bool, bool) {
	now := models.ValueOr(models.At(f.RSI, i), 50)
	prev := models.ValueOr(models.At(f.RSI, i-1), 50)
	return prev < 30 && now >= 30, prev < 70 && now >= 70
}

func macdCross(f *models.Frame, i int) (bool, bool) {
	now := models.ValueOr(models.At(f.MACD, i), 0)
	sig := models.ValueOr(models.At(f.MACDSignal, i), 0)
	prev := models.ValueOr(models.At(f.MACD, i-1), 0)
	prevSig := models.ValueOr(models.At(f.MACDSignal, i-1), 0)
	return prev < prevSig && now > sig, prev > prevSig && now < sig
}

func bbBounce(f *models.Frame, i int) (bool, bool) {
	lower := models.ValueOr(models.At(f.BBLower, i), 0)
	upper := models.ValueOr(models.At(f.BBUpper, i), 0)
	close := f.Candles[i].Close
	return lower > 0 && close <= lower*1.005, upper > 0 && close >= upper*0.995
}

// scoreGate re-runs the composite scorer on the frame prefix ending at
// bar i. O(n) per bar, so the score strategy is the slow one.
func scoreGate(f *models.Frame, i int) (bool, bool) {
	prefix := slice(f, i+1)
	sc, _, _, _ := signals.Score(prefix, patterns.Detect(prefix))
	return sc >= 65, sc <= 35
}

// slice returns a view of the first n rows of a frame.
func slice(f *models.Frame, n int) *models.Frame {
	if n >= f.Len() {
		return f
	}
	out := &models.Frame{Series: models.Series{Symbol: f.Symbol, Candles: f.Candles[:n]}}
	out.EMA9 = head(f.EMA9, n)
	out.EMA21 = head(f.EMA21, n)
	out.EMA50 = head(f.EMA50, n)
	out.EMA200 = head(f.EMA200, n)
	out.SMA20 = head(f.SMA20, n)
	out.RSI = head(f.RSI, n)
	out.MACD = head(f.MACD, n)
	out.MACDSignal = head(f.MACDSignal, n)
	out.MACDHist = head(f.MACDHist, n)
	out.BBUpper = head(f.BBUpper, n)
	out.BBMiddle = head(f.BBMiddle, n)
	out.BBLower = head(f.BBLower, n)
	out.BBWidth = head(f.BBWidth, n)
	out.ATR = head(f.ATR, n)
	out.ADX = head(f.ADX, n)
	out.DIPlus = head(f.DIPlus, n)
	out.DIMinus = head(f.DIMinus, n)
	out.StochRSIK = head(f.StochRSIK, n)
	out.StochRSID = head(f.StochRSID, n)
	out.OBV = head(f.OBV, n)
	out.VolSMA = head(f.VolSMA, n)
	out.VolRatio = head(f.VolRatio, n)
	return out
}

func head(col []float64, n int) []float64 {
	if n > len(col) {
		n = len(col)
	}
	return col[:n]
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
