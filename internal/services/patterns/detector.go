// Package patterns detects candlestick formations on the most recent
// bars of a frame, with context-weighted confidence grades.
package patterns

import (
	"math"
	"sort"

	"SETPulse/internal/domain/models"
)

// Candle anatomy helpers. Range is floored at a tiny epsilon so flat
// bars never divide by zero.
func body(c models.Candle) float64      { return math.Abs(c.Close - c.Open) }
func upperWick(c models.Candle) float64 { return c.High - math.Max(c.Close, c.Open) }
func lowerWick(c models.Candle) float64 { return math.Min(c.Close, c.Open) - c.Low }
func fullRange(c models.Candle) float64 { return math.Max(c.High-c.Low, 1e-9) }
func isBull(c models.Candle) bool       { return c.Close > c.Open }
func isBear(c models.Candle) bool       { return c.Close < c.Open }
func bodyPct(c models.Candle) float64   { return body(c) / fullRange(c) }

// detCtx carries the recent bars and the 20-bar averages each rule
// compares against.
type detCtx struct {
	f        *models.Frame
	c0       models.Candle // latest
	c1       models.Candle
	c2       models.Candle
	avgBody  float64
	avgRange float64
	avgVol   float64
	vol0     float64
}

// Detect runs every pattern rule over the latest bars and returns the
// matches sorted by confidence, highest first. Fewer than three bars
// yields no patterns.
func Detect(f *models.Frame) []models.Pattern {
	if f == nil || f.Len() < 3 {
		return nil
	}
	n := f.Len()

	recent := f.Candles
	if n > 20 {
		recent = f.Candles[n-20:]
	}
	var sumBody, sumRange, sumVol float64
	for _, c := range recent {
		sumBody += body(c)
		sumRange += fullRange(c)
		sumVol += c.Volume
	}
	cnt := float64(len(recent))

	c := &detCtx{
		f:        f,
		c0:       f.Candles[n-1],
		c1:       f.Candles[n-2],
		c2:       f.Candles[n-3],
		avgBody:  sumBody / cnt,
		avgRange: sumRange / cnt,
		avgVol:   sumVol / cnt,
	}
	c.vol0 = c.c0.Volume

	var out []models.Pattern
	for _, rule := range detectors {
		if p, ok := rule(c); ok {
			p.Date = c.c0.Timestamp
			p.BarIndex = n - 1
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

type detector func(*detCtx) (models.Pattern, bool)

var detectors = []detector{
	longGreen, longRed,
	hammer, shootingStar, invertedHammer,
	bullishEngulfing, bearishEngulfing,
	morningStar, eveningStar,
	doji,
	threeWhiteSoldiers, threeBlackCrows,
	longUpperShadow,
	tweezerTop, tweezerBottom,
}

func longGreen(c *detCtx) (models.Pattern, bool) {
	if !isBull(c.c0) || body(c.c0) <= c.avgBody*1.5 || bodyPct(c.c0) <= 0.6 {
		return models.Pattern{}, false
	}
	conf := capConf(60 + int((bodyPct(c.c0)-0.6)*100))
	if c.vol0 > c.avgVol*1.2 {
		conf = capConf(conf + 15)
	}
	strength := models.StrengthMedium
	if conf >= 75 {
		strength = models.StrengthStrong
	}
	return models.Pattern{
		Name:       "Long Green Candle",
		Type:       models.SignalBuy,
		Strength:   strength,
		Confidence: conf,
		Price:      c.c0.Close,
		Note:       "wide-bodied green bar, buyers in control",
	}, true
}

func longRed(c *detCtx) (models.Pattern, bool) {
	if !isBear(c.c0) || body(c.c0) <= c.avgBody*1.5 || bodyPct(c.c0) <= 0.6 {
		return models.Pattern{}, false
	}
	conf := capConf(60 + int((bodyPct(c.c0)-0.6)*100))
	if c.vol0 > c.avgVol*1.2 {
		conf = capConf(conf + 15)
	}
	strength := models.StrengthMedium
	if conf >= 75 {
		strength = models.StrengthStrong
	}
	return models.Pattern{
		Name:       "Long Red Candle",
		Type:       models.SignalSell,
		Strength:   strength,
		Confidence: conf,
		Price:      c.c0.Close,
		Note:       "wide-bodied red bar, heavy selling",
	}, true
}

func hammer(c *detCtx) (models.Pattern, bool) {
	lw, uw, b := lowerWick(c.c0), upperWick(c.c0), body(c.c0)
	if lw <= b*2.0 || uw >= b*0.5 || bodyPct(c.c0) >= 0.35 {
		return models.Pattern{}, false
	}
	priorDown := isBear(c.c1)
	conf := 55
	if priorDown {
		conf += 20
	}
	if isBull(c.c0) {
		conf += 10
	}
	strength := models.StrengthMedium
	if priorDown {
		strength = models.StrengthStrong
	}
	return models.Pattern{
		Name:       "Hammer",
		Type:       models.SignalBuy,
		Strength:   strength,
		Confidence: capConf(conf),
		Price:      c.c0.Close,
		Note:       "long lower wick, dip was bought back",
	}, true
}

func shootingStar(c *detCtx) (models.Pattern, bool) {
	lw, uw, b := lowerWick(c.c0), upperWick(c.c0), body(c.c0)
	if uw <= b*2.0 || lw >= b*0.5 || bodyPct(c.c0) >= 0.35 {
		return models.Pattern{}, false
	}
	priorUp := isBull(c.c1)
	conf := 55
	if priorUp {
		conf += 20
	}
	if isBear(c.c0) {
		conf += 10
	}
	strength := models.StrengthMedium
	if priorUp {
		strength = models.StrengthStrong
	}
	return models.Pattern{
		Name:       "Shooting Star",
		Type:       models.SignalSell,
		Strength:   strength,
		Confidence: capConf(conf),
		Price:      c.c0.High,
		Note:       "long upper wick, rally was sold into",
	}, true
}

func invertedHammer(c *detCtx) (models.Pattern, bool) {
	lw, uw, b := lowerWick(c.c0), upperWick(c.c0), body(c.c0)
	if uw <= b*2.0 || lw >= b*0.5 || !isBear(c.c1) {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Name:       "Inverted Hammer",
		Type:       models.SignalBuy,
		Strength:   models.StrengthWeak,
		Confidence: 50,
		Price:      c.c0.Close,
		Note:       "possible upside reversal, needs confirmation",
	}, true
}

func bullishEngulfing(c *detCtx) (models.Pattern, bool) {
	if !isBear(c.c1) || !isBull(c.c0) || c.c0.Open > c.c1.Close || c.c0.Close < c.c1.Open {
		return models.Pattern{}, false
	}
	sizeRatio := body(c.c0) / math.Max(body(c.c1), 1e-9)
	conf := capConf(65 + int((sizeRatio-1)*20))
	if c.vol0 > c.avgVol*1.3 {
		conf = capConf(conf + 10)
	}
	return models.Pattern{
		Name:       "Bullish Engulfing",
		Type:       models.SignalBuy,
		Strength:   models.StrengthStrong,
		Confidence: conf,
		Price:      c.c0.Close,
		Note:       "green body swallows the prior red bar",
	}, true
}

func bearishEngulfing(c *detCtx) (models.Pattern, bool) {
	if !isBull(c.c1) || !isBear(c.c0) || c.c0.Open < c.c1.Close || c.c0.Close > c.c1.Open {
		return models.Pattern{}, false
	}
	sizeRatio := body(c.c0) / math.Max(body(c.c1), 1e-9)
	conf := capConf(65 + int((sizeRatio-1)*20))
	if c.vol0 > c.avgVol*1.3 {
		conf = capConf(conf + 10)
	}
	return models.Pattern{
		Name:       "Bearish Engulfing",
		Type:       models.SignalSell,
		Strength:   models.StrengthStrong,
		Confidence: conf,
		Price:      c.c0.Close,
		Note:       "red body swallows the prior green bar",
	}, true
}

func morningStar(c *detCtx) (models.Pattern, bool) {
	if !isBear(c.c2) || body(c.c1) >= body(c.c2)*0.35 || !isBull(c.c0) {
		return models.Pattern{}, false
	}
	if c.c0.Close <= (c.c2.Open+c.c2.Close)/2 {
		return models.Pattern{}, false
	}
	conf := 75
	if c.vol0 > c.avgVol {
		conf += 10
	}
	return models.Pattern{
		Name:       "Morning Star",
		Type:       models.SignalBuy,
		Strength:   models.StrengthStrong,
		Confidence: capConf(conf),
		Price:      c.c0.Close,
		Note:       "three-bar upside reversal",
	}, true
}

func eveningStar(c *detCtx) (models.Pattern, bool) {
	if !isBull(c.c2) || body(c.c1) >= body(c.c2)*0.35 || !isBear(c.c0) {
		return models.Pattern{}, false
	}
	if c.c0.Close >= (c.c2.Open+c.c2.Close)/2 {
		return models.Pattern{}, false
	}
	conf := 75
	if c.vol0 > c.avgVol {
		conf += 10
	}
	return models.Pattern{
		Name:       "Evening Star",
		Type:       models.SignalSell,
		Strength:   models.StrengthStrong,
		Confidence: capConf(conf),
		Price:      c.c0.Close,
		Note:       "three-bar downside reversal",
	}, true
}

func doji(c *detCtx) (models.Pattern, bool) {
	if bodyPct(c.c0) >= 0.08 {
		return models.Pattern{}, false
	}
	afterUp := isBull(c.c1) && body(c.c1) > c.avgBody
	afterDown := isBear(c.c1) && body(c.c1) > c.avgBody

	sigType := models.SignalNeutral
	conf := 40
	strength := models.StrengthWeak
	switch {
	case afterUp:
		sigType, conf, strength = models.SignalSell, 60, models.StrengthMedium
	case afterDown:
		sigType, conf, strength = models.SignalBuy, 60, models.StrengthMedium
	}
	return models.Pattern{
		Name:       "Doji",
		Type:       sigType,
		Strength:   strength,
		Confidence: conf,
		Price:      c.c0.Close,
		Note:       "indecision bar, buyers and sellers balanced",
	}, true
}

func threeWhiteSoldiers(c *detCtx) (models.Pattern, bool) {
	if !isBull(c.c0) || !isBull(c.c1) || !isBull(c.c2) {
		return models.Pattern{}, false
	}
	if body(c.c0) <= c.avgBody*0.8 || body(c.c1) <= c.avgBody*0.8 {
		return models.Pattern{}, false
	}
	if !(c.c0.Close > c.c1.Close && c.c1.Close > c.c2.Close) {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Name:       "Three White Soldiers",
		Type:       models.SignalBuy,
		Strength:   models.StrengthStrong,
		Confidence: 82,
		Price:      c.c0.Close,
		Note:       "three consecutive advancing green bars",
	}, true
}

func threeBlackCrows(c *detCtx) (models.Pattern, bool) {
	if !isBear(c.c0) || !isBear(c.c1) || !isBear(c.c2) {
		return models.Pattern{}, false
	}
	if body(c.c0) <= c.avgBody*0.8 || body(c.c1) <= c.avgBody*0.8 {
		return models.Pattern{}, false
	}
	if !(c.c0.Close < c.c1.Close && c.c1.Close < c.c2.Close) {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Name:       "Three Black Crows",
		Type:       models.SignalSell,
		Strength:   models.StrengthStrong,
		Confidence: 82,
		Price:      c.c0.Close,
		Note:       "three consecutive declining red bars",
	}, true
}

func longUpperShadow(c *detCtx) (models.Pattern, bool) {
	uw := upperWick(c.c0)
	if uw <= body(c.c0)*2.5 || uw <= c.avgRange*0.4 {
		return models.Pattern{}, false
	}
	n := c.f.Len()
	if n < 6 {
		return models.Pattern{}, false
	}
	sum := 0.0
	for _, bar := range c.f.Candles[n-6 : n-1] {
		sum += bar.Close
	}
	if c.c0.Close <= sum/5 {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Name:       "Long Upper Shadow",
		Type:       models.SignalSell,
		Strength:   models.StrengthMedium,
		Confidence: 58,
		Price:      c.c0.High,
		Note:       "sellers capping an uptrend",
	}, true
}

func tweezerTop(c *detCtx) (models.Pattern, bool) {
	hiDiff := math.Abs(c.c0.High-c.c1.High) / math.Max(c.c1.High, 1e-9)
	if hiDiff >= 0.003 || !isBull(c.c1) || !isBear(c.c0) {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Name:       "Tweezer Top",
		Type:       models.SignalSell,
		Strength:   models.StrengthMedium,
		Confidence: 65,
		Price:      c.c0.High,
		Note:       "price rejected twice at the same high",
	}, true
}

func tweezerBottom(c *detCtx) (models.Pattern, bool) {
	loDiff := math.Abs(c.c0.Low-c.c1.Low) / math.Max(c.c1.Low, 1e-9)
	if loDiff >= 0.003 || !isBear(c.c1) || !isBull(c.c0) {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Name:       "Tweezer Bottom",
		Type:       models.SignalBuy,
		Strength:   models.StrengthMedium,
		Confidence: 65,
		Price:      c.c0.Low,
		Note:       "price held twice at the same low",
	}, true
}

func capConf(v int) int {
	if v > 100 {
		return 100
	}
	return v
}
