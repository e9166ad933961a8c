// Package signals turns an indicator frame into a bounded conviction
// score, the list of triggered signals and a market regime label.
package signals

import (
	"fmt"

	"SETPulse/internal/domain/models"
)

const minBars = 5

// evalCtx snapshots the last two rows of a frame once so every rule
// reads the same values. Undefined cells stay NaN; rule comparisons
// against NaN are false, so missing columns simply never fire.
type evalCtx struct {
	f         *models.Frame
	n         int
	close     float64
	prevClose float64

	ema9, ema21, ema50, ema200 float64
	prevEMA9, prevEMA21        float64

	rsi                     float64
	macd, macdSig, macdHist float64
	prevMACD, prevMACDSig   float64
	stochK, stochD          float64
	prevStochK, prevStochD  float64
	bbUpper, bbLower        float64
	volRatio                float64
	obv, obvBack            float64

	patterns []models.Pattern
}

func newEvalCtx(f *models.Frame, patterns []models.Pattern) *evalCtx {
	n := f.Len()
	c := &evalCtx{f: f, n: n, patterns: patterns}
	c.close = f.Candles[n-1].Close
	c.prevClose = f.Candles[n-2].Close

	c.ema9 = f.LastOf(f.EMA9)
	c.ema21 = f.LastOf(f.EMA21)
	c.ema50 = f.LastOf(f.EMA50)
	c.ema200 = f.LastOf(f.EMA200)
	c.prevEMA9 = f.PrevOf(f.EMA9)
	c.prevEMA21 = f.PrevOf(f.EMA21)

	c.rsi = f.LastOf(f.RSI)
	c.macd = f.LastOf(f.MACD)
	c.macdSig = f.LastOf(f.MACDSignal)
	c.macdHist = f.LastOf(f.MACDHist)
	c.prevMACD = f.PrevOf(f.MACD)
	c.prevMACDSig = f.PrevOf(f.MACDSignal)

	c.stochK = f.LastOf(f.StochRSIK)
	c.stochD = f.LastOf(f.StochRSID)
	c.prevStochK = f.PrevOf(f.StochRSIK)
	c.prevStochD = f.PrevOf(f.StochRSID)

	c.bbUpper = f.LastOf(f.BBUpper)
	c.bbLower = f.LastOf(f.BBLower)
	c.volRatio = f.LastOf(f.VolRatio)

	c.obv = f.LastOf(f.OBV)
	c.obvBack = c.obv
	if n >= 10 {
		c.obvBack = models.At(f.OBV, n-10)
	}
	return c
}

// rule is one scoring contribution. Rules are evaluated in table order
// and each returns a score delta plus the signals it raised. A rule
// that does not apply returns (0, nil).
type rule struct {
	name string
	eval func(*evalCtx) (int, []models.Signal)
}

func one(t models.SignalType, st models.Strength, reason string) []models.Signal {
	return []models.Signal{{Type: t, Strength: st, Reason: reason}}
}

// dailyRules is the full scoring table for daily and 4H frames. Order
// matters only for signal listing; deltas are additive.
var dailyRules = []rule{
	{name: "ema_alignment", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.ema9 > c.ema21 && c.ema21 > c.ema50 && c.ema50 > c.ema200 && c.close > c.ema9:
			return 15, one(models.SignalBuy, models.StrengthStrong, "full bullish EMA alignment (9>21>50>200)")
		case c.ema9 < c.ema21 && c.ema21 < c.ema50 && c.ema50 < c.ema200 && c.close < c.ema9:
			return -15, one(models.SignalSell, models.StrengthStrong, "full bearish EMA alignment (9<21<50<200)")
		case c.close > c.ema50:
			return 7, one(models.SignalBuy, models.StrengthMedium, "price above EMA50, mid-term uptrend")
		case c.close < c.ema50:
			return -7, one(models.SignalSell, models.StrengthMedium, "price below EMA50, mid-term downtrend")
		}
		return 0, nil
	}},
	{name: "ema_cross", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.prevEMA9 < c.prevEMA21 && c.ema9 > c.ema21:
			return 12, one(models.SignalBuy, models.StrengthStrong, "golden cross EMA9 over EMA21")
		case c.prevEMA9 > c.prevEMA21 && c.ema9 < c.ema21:
			return -12, one(models.SignalSell, models.StrengthStrong, "death cross EMA9 under EMA21")
		}
		return 0, nil
	}},
	{name: "ema200_distance", eval: func(c *evalCtx) (int, []models.Signal) {
		if !(c.ema200 > 0) {
			return 0, nil
		}
		diffPct := (c.close - c.ema200) / c.ema200 * 100
		switch {
		case diffPct > 5:
			return 8, one(models.SignalBuy, models.StrengthMedium,
				fmt.Sprintf("price %.1f%% above EMA200, long-term uptrend", diffPct))
		case diffPct < -5:
			return -8, one(models.SignalSell, models.StrengthMedium,
				fmt.Sprintf("price %.1f%% below EMA200, long-term downtrend", diffPct))
		}
		return 0, nil
	}},
	{name: "rsi", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.rsi < 30:
			return 12, one(models.SignalBuy, models.StrengthStrong,
				fmt.Sprintf("RSI %.1f oversold", c.rsi))
		case c.rsi > 70:
			return -12, one(models.SignalSell, models.StrengthStrong,
				fmt.Sprintf("RSI %.1f overbought", c.rsi))
		case c.rsi >= 40 && c.rsi <= 60:
			return 0, one(models.SignalNeutral, models.StrengthWeak,
				fmt.Sprintf("RSI %.1f in neutral zone", c.rsi))
		}
		return 0, nil
	}},
	{name: "macd", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.prevMACD < c.prevMACDSig && c.macd > c.macdSig:
			return 10, one(models.SignalBuy, models.StrengthStrong, "MACD crossed above signal line")
		case c.prevMACD > c.prevMACDSig && c.macd < c.macdSig:
			return -10, one(models.SignalSell, models.StrengthStrong, "MACD crossed below signal line")
		case c.macd > c.macdSig && c.macd > 0:
			return 5, one(models.SignalBuy, models.StrengthWeak, "MACD above signal in positive territory")
		case c.macd < c.macdSig && c.macd < 0:
			return -5, one(models.SignalSell, models.StrengthWeak, "MACD below signal in negative territory")
		}
		return 0, nil
	}},
	{name: "stoch_rsi", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.prevStochK < c.prevStochD && c.stochK > c.stochD && c.stochK < 30:
			return 8, one(models.SignalBuy, models.StrengthMedium,
				fmt.Sprintf("StochRSI bullish cross at %.1f in oversold zone", c.stochK))
		case c.prevStochK > c.prevStochD && c.stochK < c.stochD && c.stochK > 70:
			return -8, one(models.SignalSell, models.StrengthMedium,
				fmt.Sprintf("StochRSI bearish cross at %.1f in overbought zone", c.stochK))
		}
		return 0, nil
	}},
	{name: "volume_spike", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.volRatio > 2.0 && c.close > c.prevClose:
			return 10, one(models.SignalBuy, models.StrengthStrong,
				fmt.Sprintf("volume %.1fx average on an up bar, breakout pressure", c.volRatio))
		case c.volRatio > 2.0 && c.close < c.prevClose:
			return -10, one(models.SignalSell, models.StrengthStrong,
				fmt.Sprintf("volume %.1fx average on a down bar, breakdown pressure", c.volRatio))
		case c.volRatio < 0.5:
			return 0, one(models.SignalNeutral, models.StrengthWeak,
				fmt.Sprintf("volume %.1fx average, weak participation", c.volRatio))
		}
		return 0, nil
	}},
	{name: "obv_trend", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.obv > c.obvBack && c.close > c.prevClose:
			return 7, one(models.SignalBuy, models.StrengthMedium, "OBV rising with price, accumulation")
		case c.obv < c.obvBack && c.close < c.prevClose:
			return -7, one(models.SignalSell, models.StrengthMedium, "OBV falling with price, distribution")
		}
		return 0, nil
	}},
	{name: "bollinger_touch", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.bbLower > 0 && c.close <= c.bbLower*1.01:
			return 5, one(models.SignalBuy, models.StrengthMedium, "price at lower Bollinger band, bounce zone")
		case c.bbUpper > 0 && c.close >= c.bbUpper*0.99:
			return -5, one(models.SignalSell, models.StrengthMedium, "price at upper Bollinger band, pullback zone")
		}
		return 0, nil
	}},
	{name: "patterns", eval: func(c *evalCtx) (int, []models.Signal) {
		delta := 0
		var out []models.Signal
		for _, p := range c.patterns {
			switch p.Type {
			case models.SignalBuy:
				delta += 5
			case models.SignalSell:
				delta -= 5
			}
			out = append(out, models.Signal{
				Type:     p.Type,
				Strength: models.StrengthMedium,
				Reason:   fmt.Sprintf("%s: %s", p.Name, p.Note),
			})
		}
		return delta, out
	}},
}

// Score evaluates the daily rule table over a frame. It starts neutral
// at 50, applies every rule and clamps to [0,100]. Frames shorter than
// five bars return the neutral score, no signals and the regime the
// frame still supports, alongside ErrInsufficientData.
func Score(f *models.Frame, patterns []models.Pattern) (int, []models.Signal, models.Regime, error) {
	regime := Regime(f)
	if f == nil || f.Len() < minBars {
		return models.ScoreNeutral, nil, regime, models.ErrInsufficientData
	}

	c := newEvalCtx(f, patterns)
	score := models.ScoreNeutral
	var out []models.Signal
	for _, r := range dailyRules {
		delta, sigs := r.eval(c)
		score += delta
		out = append(out, sigs...)
	}
	return clamp(score), out, regime, nil
}

// Regime classifies the market state from ADX direction strength and
// the EMA200 side. Undefined columns fall through to SIDEWAYS.
func Regime(f *models.Frame) models.Regime {
	if f == nil || f.Len() == 0 {
		return models.RegimeSideways
	}
	adx := models.ValueOr(f.LastOf(f.ADX), 0)
	diPlus := models.ValueOr(f.LastOf(f.DIPlus), 0)
	diMinus := models.ValueOr(f.LastOf(f.DIMinus), 0)
	price := f.Last().Close
	ema200 := models.ValueOr(f.LastOf(f.EMA200), price)

	if adx > 25 {
		switch {
		case price > ema200 && diPlus > diMinus:
			return models.RegimeBullTrend
		case price < ema200 && diMinus > diPlus:
			return models.RegimeBearTrend
		default:
			return models.RegimeTransition
		}
	}
	return models.RegimeSideways
}

func clamp(score int) int {
	if score < models.ScoreMin {
		return models.ScoreMin
	}
	if score > models.ScoreMax {
		return models.ScoreMax
	}
	return score
}
