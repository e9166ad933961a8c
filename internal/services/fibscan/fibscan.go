// Package fibscan scores a symbol's position inside its Fibonacci
// retracement map. Pure computation over an indicator frame; fetching
// and fan-out live in the usecase layer.
package fibscan

import (
	"fmt"
	"math"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/services/patterns"
	"SETPulse/internal/services/signals"
)

// Retracement zones, scanned in order; the first zone containing the
// price wins.
var zones = [][2]float64{
	{0, 0.236}, {0.236, 0.382}, {0.382, 0.5},
	{0.5, 0.618}, {0.618, 0.786}, {0.786, 1.0},
}

var tpRatiosSwing = []float64{0.236, 0.382, 0.5, 0.618, 0.786, 1.0, 1.272, 1.618}
var tpRatiosIntraday = []float64{0.236, 0.382, 0.5, 0.618, 0.786, 1.0}

// fibMap anchors the retracement: in an uptrend levels are measured up
// from the swing low, in a downtrend down from the swing high.
type fibMap struct {
	base      float64
	direction float64
	span      float64
}

func (m fibMap) at(r float64) float64 { return m.base + m.direction*m.span*r }

// AnalyzeSwing scores one symbol over a daily frame. Returns
// ErrDegenerate when the swing range collapses to zero.
func AnalyzeSwing(f *models.Frame) (*models.ScanResult, error) {
	n := f.Len()
	if n < 15 {
		return nil, models.ErrInsufficientData
	}
	current := f.Last().Close
	if current <= 0 {
		return nil, models.ErrDegenerate
	}

	swingHigh, swingLow := extremes(f.Candles)
	span := swingHigh - swingLow
	if span <= 0 {
		return nil, models.ErrDegenerate
	}

	up := swingUptrend(f)
	fm := newFibMap(swingHigh, swingLow, up)

	res := &models.ScanResult{
		Symbol:    f.Symbol,
		Price:     round2(current),
		IsUptrend: up,
		SwingHigh: round2(swingHigh),
		SwingLow:  round2(swingLow),
	}
	fillZone(res, fm, current)
	fillKeyLevels(res, fm, current)

	score, sigs, regime, _ := signals.Score(f, patterns.Detect(f))
	res.SignalScore = score
	res.Regime = regime
	res.BuySignals = models.CountByType(sigs, models.SignalBuy)
	res.SellSignals = models.CountByType(sigs, models.SignalSell)

	rsi := models.ValueOr(f.LastOf(f.RSI), 50)
	atr := models.ValueOr(f.LastOf(f.ATR), current*0.02)
	volRatio := models.ValueOr(f.LastOf(f.VolRatio), 1)
	res.RSI = round1(rsi)
	res.VolRatio = round2(volRatio)

	// Stop loss sits on the trend side: the 78.6% line or 1.5 ATR away,
	// clamped to at most 15% and at least 2% from price.
	if up {
		sl := math.Max(math.Min(fm.at(0.786), current-atr*1.5), current*0.85)
		res.StopLoss = math.Min(round2(sl), round2(current*0.98))
	} else {
		sl := math.Min(math.Max(fm.at(0.786), current+atr*1.5), current*1.15)
		res.StopLoss = math.Max(round2(sl), round2(current*1.02))
	}
	res.RiskPct = round1(math.Max(math.Abs((current-res.StopLoss)/current*100), 0.1))

	res.TP1, res.TP2 = takeProfits(fm, current, up, tpRatiosSwing, 0.005, 0.05, 0.10)
	profitPct := math.Abs(res.TP1-current) / current * 100
	res.RiskReward = round2(profitPct / res.RiskPct)

	res.FibScore = fibScore(res.ZoneRatio, res.DistNearest, score, volRatio, rsi)
	res.Grade = grade(res.FibScore)

	if n >= 6 {
		p5 := f.Candles[n-6].Close
		if p5 > 0 {
			res.Change5D = round2((current - p5) / p5 * 100)
		}
	}
	return res, nil
}

// AnalyzeIntraday scores one symbol over a short-interval frame, using
// the swing of the last 40 bars and tighter stops and targets.
func AnalyzeIntraday(f *models.Frame, interval string) (*models.ScanResult, error) {
	n := f.Len()
	if n < 10 {
		return nil, models.ErrInsufficientData
	}
	current := f.Last().Close
	if current <= 0 {
		return nil, models.ErrDegenerate
	}

	window := f.Tail(40)
	swingHigh, swingLow := extremes(window)
	span := swingHigh - swingLow
	if span < current*0.001 {
		return nil, models.ErrDegenerate
	}

	up := intradayUptrend(f)
	fm := newFibMap(swingHigh, swingLow, up)

	res := &models.ScanResult{
		Symbol:    f.Symbol,
		Price:     round2(current),
		IsUptrend: up,
		SwingHigh: round2(swingHigh),
		SwingLow:  round2(swingLow),
		Interval:  interval,
	}
	fillZone(res, fm, current)
	fillKeyLevels(res, fm, current)

	score, sigs, regime, _ := signals.ScoreIntraday(f)
	res.SignalScore = score
	res.Regime = regime
	res.BuySignals = models.CountByType(sigs, models.SignalBuy)
	res.SellSignals = models.CountByType(sigs, models.SignalSell)

	rsi := models.ValueOr(f.LastOf(f.RSI), 50)
	atr := models.ValueOr(f.LastOf(f.ATR), current*0.01)
	volRatio := models.ValueOr(f.LastOf(f.VolRatio), 1)
	res.RSI = round1(rsi)
	res.VolRatio = round2(volRatio)
	res.ATR = round3(atr)

	// Tighter stop for intraday: 1 ATR, clamped between 1% and 3%.
	if up {
		res.StopLoss = math.Min(round2(math.Max(current-atr, current*0.97)), round2(current*0.99))
	} else {
		res.StopLoss = math.Max(round2(math.Min(current+atr, current*1.03)), round2(current*1.01))
	}
	res.RiskPct = round2(math.Max(math.Abs((current-res.StopLoss)/current*100), 0.1))

	res.TP1, res.TP2 = takeProfits(fm, current, up, tpRatiosIntraday, 0.002, 0.02, 0.04)
	res.RiskReward = round2(math.Abs(res.TP1-current) / current * 100 / res.RiskPct)

	res.FibScore = fibScore(res.ZoneRatio, res.DistNearest, score, volRatio, rsi)
	res.Grade = grade(res.FibScore)

	last := f.Last()
	if last.Open > 0 {
		res.Change5D = round2((current - last.Open) / last.Open * 100)
	}

	if vwap, ok := vwapOf(window); ok {
		res.VWAP = round2(vwap)
		res.VsVWAPPct = round2((current - vwap) / vwap * 100)
	} else {
		res.VWAP = round2(current)
	}
	return res, nil
}

func newFibMap(high, low float64, uptrend bool) fibMap {
	if uptrend {
		return fibMap{base: low, direction: 1, span: high - low}
	}
	return fibMap{base: high, direction: -1, span: high - low}
}

// swingUptrend compares EMA50 now against ten bars back, falling back
// to comparing the means of the frame halves.
func swingUptrend(f *models.Frame) bool {
	n := f.Len()
	if n >= 10 {
		now := f.LastOf(f.EMA50)
		then := models.At(f.EMA50, n-10)
		if models.Defined(now) && models.Defined(then) {
			return now >= then
		}
	}
	mid := n / 2
	return meanClose(f.Candles[mid:]) >= meanClose(f.Candles[:mid])
}

// intradayUptrend uses the EMA21 slope over the last five bars.
func intradayUptrend(f *models.Frame) bool {
	n := f.Len()
	if n >= 5 {
		now := f.LastOf(f.EMA21)
		then := models.At(f.EMA21, n-5)
		if models.Defined(now) && models.Defined(then) {
			return now >= then
		}
	}
	if n >= 20 {
		return meanClose(f.Candles[n-10:]) >= meanClose(f.Candles[n-20:n-10])
	}
	mid := n / 2
	return meanClose(f.Candles[mid:]) >= meanClose(f.Candles[:mid])
}

func fillZone(res *models.ScanResult, fm fibMap, current float64) {
	res.ZoneRatio = -1
	res.Zone = "outside range"
	for _, z := range zones {
		p0, p1 := fm.at(z[0]), fm.at(z[1])
		lo, hi := math.Min(p0, p1), math.Max(p0, p1)
		if lo <= current && current <= hi {
			res.ZoneRatio = (z[0] + z[1]) / 2
			res.Zone = fmt.Sprintf("%.1f-%.1f%%", z[0]*100, z[1]*100)
			if IsGoldenZone(res.ZoneRatio) {
				res.Zone += " (golden)"
			}
			break
		}
	}
}

func fillKeyLevels(res *models.ScanResult, fm fibMap, current float64) {
	keys := []struct {
		name  string
		ratio float64
	}{
		{"38.2%", 0.382},
		{"50.0%", 0.5},
		{"61.8%", 0.618},
	}
	best := keys[0]
	bestDist := math.Inf(1)
	for _, k := range keys {
		if d := math.Abs(fm.at(k.ratio) - current); d < bestDist {
			best, bestDist = k, d
		}
	}
	res.NearestLevel = best.name
	res.DistNearest = round1(math.Abs((current - fm.at(best.ratio)) / fm.at(best.ratio) * 100))
	res.DistGolden = round1(math.Abs((current - fm.at(0.618)) / fm.at(0.618) * 100))
	res.GoldenPrice = round2(fm.at(0.618))
}

// takeProfits picks the first two fib levels beyond the minimum move
// threshold in the trade direction, with percent fallbacks when the
// map offers nothing.
func takeProfits(fm fibMap, current float64, up bool, ratios []float64, minMove, fb1, fb2 float64) (float64, float64) {
	var candidates []float64
	for _, r := range ratios {
		tp := fm.at(r)
		if up && tp > current*(1+minMove) {
			candidates = append(candidates, round2(tp))
		} else if !up && tp < current*(1-minMove) {
			candidates = append(candidates, round2(tp))
		}
	}
	dir := 1.0
	if !up {
		dir = -1.0
	}
	tp1 := round2(current * (1 + dir*fb1))
	tp2 := round2(current * (1 + dir*fb2))
	if len(candidates) > 0 {
		tp1 = candidates[0]
	}
	if len(candidates) > 1 {
		tp2 = candidates[1]
	}
	return tp1, tp2
}

// fibScore blends zone quality, key-level proximity, the technical
// score, volume and RSI health into 0..100.
func fibScore(zoneRatio, distNearest float64, signalScore int, volRatio, rsi float64) float64 {
	score := 0.0

	if zoneRatio >= 0 {
		switch {
		case IsGoldenZone(zoneRatio):
			score += 35
		case zoneRatio >= 0.236 && zoneRatio <= 0.786:
			score += 18
		}
	}
	score += math.Max(0, 30-distNearest*3)
	score += float64(signalScore) / 100 * 20

	switch {
	case volRatio >= 2.0:
		score += 10
	case volRatio >= 1.5:
		score += 7
	case volRatio >= 1.0:
		score += 4
	}
	switch {
	case rsi >= 30 && rsi <= 60:
		score += 5
	case rsi < 30:
		score += 4
	case rsi <= 70:
		score += 2
	}
	return math.Min(100, round1(score))
}

// IsGoldenZone reports whether a zone midpoint sits in the 38.2-61.8%
// pocket.
func IsGoldenZone(mid float64) bool { return mid >= 0.382 && mid <= 0.618 }

// Grade maps a single-timeframe fib score to a letter.
func grade(score float64) string {
	switch {
	case score >= 75:
		return "A+"
	case score >= 65:
		return "A"
	case score >= 55:
		return "B+"
	case score >= 45:
		return "B"
	default:
		return "C"
	}
}

// GradeMTF regrades after the confluence bonus; thresholds shift up.
func GradeMTF(score float64) string {
	switch {
	case score >= 80:
		return "A+"
	case score >= 70:
		return "A"
	case score >= 58:
		return "B+"
	case score >= 45:
		return "B"
	default:
		return "C"
	}
}

func extremes(candles []models.Candle) (high, low float64) {
	high, low = math.Inf(-1), math.Inf(1)
	for _, c := range candles {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	return high, low
}

func meanClose(candles []models.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candles {
		sum += c.Close
	}
	return sum / float64(len(candles))
}

func vwapOf(candles []models.Candle) (float64, bool) {
	var pv, vol float64
	for _, c := range candles {
		pv += c.Close * c.Volume
		vol += c.Volume
	}
	if vol <= 0 {
		return 0, false
	}
	return pv / vol, true
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
