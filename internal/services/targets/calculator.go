// Package targets derives a concrete trade plan (buy zone, stop loss,
// profit targets, fibonacci map) from the latest frame.
package targets

import (
	"math"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/services/indicators"
)

const (
	swingWindow = 60

	atrFallbackPct = 0.02
	supFallbackPct = 0.95
)

var fibRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1.0}

// Calculate builds the full price-target plan for the current price.
// Missing ATR falls back to 2% of price; missing supports fall back to
// 5% below price. Always returns a usable plan for a non-empty frame.
func Calculate(f *models.Frame, currentPrice float64) models.Targets {
	supports, resistances := indicators.SupportResistance(f)

	atr := models.ValueOr(f.LastOf(f.ATR), currentPrice*atrFallbackPct)

	periodHigh, periodLow := swingRange(f, swingWindow)
	fibRange := periodHigh - periodLow

	fib := make([]models.FibLevel, 0, len(fibRatios))
	for _, r := range fibRatios {
		fib = append(fib, models.FibLevel{Ratio: r, Price: round2(periodLow + fibRange*r)})
	}
	fib618 := periodLow + fibRange*0.618

	nearestSup := currentPrice * supFallbackPct
	if len(supports) > 0 {
		nearestSup = supports[0]
	}

	buyLow := round2(math.Min(nearestSup, fib618) * 0.99)
	buyHigh := round2(math.Max(nearestSup, fib618) * 1.01)

	stopLoss := round2(buyLow - atr*1.5)
	riskAmount := currentPrice - stopLoss
	riskPct := 5.0
	if currentPrice > 0 {
		riskPct = riskAmount / currentPrice * 100
	}

	tp1 := round2(currentPrice + riskAmount*2)
	tp2 := round2(currentPrice + riskAmount*3)
	tp3 := round2(currentPrice + riskAmount*4)
	if len(resistances) > 0 {
		tp3 = round2(resistances[0])
	}

	riskReward := 0.5
	if tp1-currentPrice > 0 {
		riskReward = riskAmount / (tp1 - currentPrice)
	}

	for i := range supports {
		supports[i] = round2(supports[i])
	}
	for i := range resistances {
		resistances[i] = round2(resistances[i])
	}

	return models.Targets{
		BuyZone:      models.PriceBand{Low: buyLow, High: buyHigh},
		StopLoss:     stopLoss,
		Targets:      [3]float64{tp1, tp2, tp3},
		TrailingStop: round2(currentPrice - atr*2),
		RiskPct:      round2(math.Abs(riskPct)),
		RiskReward:   round3(riskReward),
		Fibonacci:    fib,
		Supports:     supports,
		Resistances:  resistances,
	}
}

// swingRange returns the rolling high/low over the last window bars.
func swingRange(f *models.Frame, window int) (high, low float64) {
	bars := f.Tail(window)
	high, low = math.Inf(-1), math.Inf(1)
	for _, c := range bars {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	if len(bars) == 0 {
		return 0, 0
	}
	return high, low
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
