package signals

import (
	"fmt"

	"SETPulse/internal/domain/models"
)

// intradayRules weight momentum and volume harder than trend; the
// short-interval frame has no EMA200 or ADX to lean on.
var intradayRules = []rule{
	{name: "ema_momentum", eval: func(c *evalCtx) (int, []models.Signal) {
		switch {
		case c.ema9 > c.ema21 && c.close > c.ema9:
			return 12, one(models.SignalBuy, models.StrengthMedium, "EMA9 above EMA21 with price on top")
		case c.ema9 < c.ema21 && c.close < c.ema9:
			return -12, one(models.SignalSell, models.StrengthMedium, "EMA9 below EMA21 with price underneath")
		}
		return 0, nil
	}},
	{name: "macd_hist_direction", eval: func(c *evalCtx) (int, []models.Signal) {
		prevHist := models.ValueOr(c.f.PrevOf(c.f.MACDHist), 0)
		hist := models.ValueOr(c.macdHist, 0)
		switch {
		case hist > 0 && hist > prevHist:
			return 10, one(models.SignalBuy, models.StrengthMedium, "MACD histogram expanding upward")
		case hist < 0 && hist < prevHist:
			return -10, one(models.SignalSell, models.StrengthMedium, "MACD histogram expanding downward")
		}
		return 0, nil
	}},
	{name: "macd_cross_up", eval: func(c *evalCtx) (int, []models.Signal) {
		macd := models.ValueOr(c.macd, 0)
		sig := models.ValueOr(c.macdSig, 0)
		prevMACD := models.ValueOr(c.prevMACD, macd)
		prevSig := models.ValueOr(c.prevMACDSig, sig)
		if macd > sig && prevMACD <= prevSig {
			return 8, one(models.SignalBuy, models.StrengthStrong, "MACD bullish cross")
		}
		return 0, nil
	}},
	{name: "rsi_zones", eval: func(c *evalCtx) (int, []models.Signal) {
		rsi := models.ValueOr(c.rsi, 50)
		switch {
		case rsi < 30:
			return 15, one(models.SignalBuy, models.StrengthStrong,
				fmt.Sprintf("RSI %.0f oversold", rsi))
		case rsi > 70:
			return -15, one(models.SignalSell, models.StrengthStrong,
				fmt.Sprintf("RSI %.0f overbought", rsi))
		case rsi >= 40 && rsi <= 60:
			return 5, nil
		}
		return 0, nil
	}},
	{name: "bollinger_bounce", eval: func(c *evalCtx) (int, []models.Signal) {
		bbLo := models.ValueOr(c.bbLower, c.close*0.98)
		bbUp := models.ValueOr(c.bbUpper, c.close*1.02)
		switch {
		case c.close <= bbLo*1.005:
			return 10, one(models.SignalBuy, models.StrengthMedium, "price at lower band, bounce setup")
		case c.close >= bbUp*0.995:
			return -10, one(models.SignalSell, models.StrengthMedium, "price at upper band, reversal setup")
		}
		return 0, nil
	}},
	{name: "volume_spike", eval: func(c *evalCtx) (int, []models.Signal) {
		volR := models.ValueOr(c.volRatio, 1)
		switch {
		case volR >= 2.0:
			dir := models.SignalBuy
			if c.close < c.f.Last().Open {
				dir = models.SignalSell
			}
			return 10, one(dir, models.StrengthStrong,
				fmt.Sprintf("volume spike %.1fx", volR))
		case volR >= 1.5:
			return 5, nil
		}
		return 0, nil
	}},
	{name: "candle_momentum", eval: func(c *evalCtx) (int, []models.Signal) {
		bar := c.f.Last()
		body := c.close - bar.Open
		size := bar.High - bar.Low
		if size <= 0 || abs(body)/size <= 0.6 {
			return 0, nil
		}
		if body > 0 {
			return 5, one(models.SignalBuy, models.StrengthWeak, "strong green bar")
		}
		return -5, one(models.SignalSell, models.StrengthWeak, "strong red bar")
	}},
}

// ScoreIntraday evaluates the momentum-weighted table used for short
// intervals. The regime comes from the resulting score band rather
// than from ADX.
func ScoreIntraday(f *models.Frame) (int, []models.Signal, models.Regime, error) {
	if f == nil || f.Len() < minBars {
		return models.ScoreNeutral, nil, models.RegimeSideways, models.ErrInsufficientData
	}

	c := newEvalCtx(f, nil)
	score := models.ScoreNeutral
	var out []models.Signal
	for _, r := range intradayRules {
		delta, sigs := r.eval(c)
		score += delta
		out = append(out, sigs...)
	}
	score = clamp(score)

	regime := models.RegimeSideways
	switch {
	case score >= 65:
		regime = models.RegimeBullMomentum
	case score <= 35:
		regime = models.RegimeBearMomentum
	}
	return score, out, regime, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
