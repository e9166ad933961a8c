// Package recommend folds score, signals and regime into a single
// actionable verdict with entry, stop and target levels.
package recommend

import (
	"fmt"
	"math"

	"SETPulse/internal/domain/models"
)

const (
	minBars     = 5
	maxReasons  = 5
	maxCautions = 3
)

// facts is everything the decision table reads, extracted once from
// the frame and the scorer output.
type facts struct {
	score  int
	regime models.Regime

	close float64
	rsi   float64
	atr   float64
	adx   float64

	buyStrong  int
	sellStrong int
	sellMedium int

	isUptrend     bool
	isStrongTrend bool
	aboveEMA200   bool
	emaAlignedUp  bool
	emaAlignedDn  bool
	macdBullish   bool
	macdImproving bool
	rsiOversold   bool
	rsiOverbought bool
	nearBBLower   bool
	nearBBUpper   bool
	volConfirm    bool
	volRatio      float64
}

// condition rows are evaluated top to bottom; the first match decides
// the action. The fallthrough row always matches.
type row struct {
	action models.Action
	match  func(*facts) bool
	apply  func(*facts, *models.Recommendation)
}

var decisionTable = []row{
	{
		action: models.ActionBuy,
		match: func(f *facts) bool {
			return f.score >= 72 && f.emaAlignedUp && f.macdBullish &&
				f.aboveEMA200 && !f.rsiOverbought
		},
		apply: func(f *facts, r *models.Recommendation) {
			r.Confidence = models.ConfidenceMedium
			if f.score >= 80 {
				r.Confidence = models.ConfidenceHigh
			}
			r.Summary = "multiple strong bullish signals firing together with good momentum"
			r.Reasons = append(r.Reasons, "bullish EMA stack (9 > 21 > 50), trend is clear")
			r.Reasons = append(r.Reasons, "MACD above signal line in positive territory")
			r.Reasons = append(r.Reasons, "price above EMA200, long-term uptrend intact")
			if f.volConfirm {
				r.Reasons = append(r.Reasons, fmt.Sprintf("volume %.1fx average confirms buying pressure", f.volRatio))
			}
		},
	},
	{
		action: models.ActionAccumulate,
		match: func(f *facts) bool {
			return f.score >= 60 && (f.isUptrend || f.rsiOversold || f.nearBBLower) &&
				f.sellStrong == 0
		},
		apply: func(f *facts, r *models.Recommendation) {
			r.Confidence = models.ConfidenceMedium
			r.Summary = "constructive but not yet decisive, scale in gradually"
			if f.rsiOversold {
				r.Reasons = append(r.Reasons, fmt.Sprintf("RSI %.0f oversold, bounce odds favorable", f.rsi))
			}
			if f.nearBBLower {
				r.Reasons = append(r.Reasons, "price at the lower Bollinger band, support nearby")
			}
			if f.isUptrend {
				r.Reasons = append(r.Reasons, "price still above EMA50, larger trend up")
			}
			if f.macdImproving {
				r.Reasons = append(r.Reasons, "MACD histogram improving, momentum returning")
			}
			r.Cautions = append(r.Cautions, "no decisive breakout yet, staged buying beats all-in")
		},
	},
	{
		action: models.ActionHold,
		match: func(f *facts) bool {
			return f.score >= 45 && f.score < 60 && !f.rsiOverbought && !f.emaAlignedDn
		},
		apply: func(f *facts, r *models.Recommendation) {
			r.Confidence = models.ConfidenceLow
			r.Summary = "mixed signals, both directions still in play"
			r.Reasons = append(r.Reasons, fmt.Sprintf("score %d/100 sits in the neutral zone", f.score))
			if !f.isStrongTrend {
				r.Reasons = append(r.Reasons, fmt.Sprintf("ADX %.0f, no strong trend yet (needs > 25)", f.adx))
			}
			r.Cautions = append(r.Cautions, "wait for price to confirm a direction")
			r.Cautions = append(r.Cautions, "watch volume, rising volume with price is the tell")
		},
	},
	{
		action: models.ActionReduce,
		match: func(f *facts) bool {
			return f.score >= 40 && f.score < 55 &&
				(f.rsiOverbought || f.nearBBUpper || f.emaAlignedDn) &&
				f.sellMedium >= 1
		},
		apply: func(f *facts, r *models.Recommendation) {
			r.Confidence = models.ConfidenceMedium
			r.Summary = "signals weakening, trim exposure"
			if f.rsiOverbought {
				r.Reasons = append(r.Reasons, fmt.Sprintf("RSI %.0f overbought, pullback risk high", f.rsi))
			}
			if f.nearBBUpper {
				r.Reasons = append(r.Reasons, "price at the upper Bollinger band, resistance overhead")
			}
			if f.emaAlignedDn {
				r.Reasons = append(r.Reasons, "bearish EMA stack (9 < 21 < 50), trend rolling over")
			}
			r.Cautions = append(r.Cautions, "no need to dump everything, trimming 30-50% first is fine")
		},
	},
	{
		action: models.ActionSell,
		match: func(f *facts) bool {
			return f.score < 40 && f.sellStrong >= 1 &&
				(f.emaAlignedDn || (!f.aboveEMA200 && f.regime == models.RegimeBearTrend))
		},
		apply: func(f *facts, r *models.Recommendation) {
			r.Confidence = models.ConfidenceMedium
			if f.score < 30 {
				r.Confidence = models.ConfidenceHigh
			}
			r.Summary = "multiple bearish signals confirmed, downtrend established"
			if f.emaAlignedDn {
				r.Reasons = append(r.Reasons, "full bearish EMA alignment, downtrend confirmed")
			}
			if !f.aboveEMA200 {
				r.Reasons = append(r.Reasons, "price below EMA200, long-term trend negative")
			}
			if f.sellStrong > 0 {
				r.Reasons = append(r.Reasons, fmt.Sprintf("%d strong sell signals active", f.sellStrong))
			}
			r.Cautions = append(r.Cautions, "if still holding, place a stop loss immediately")
		},
	},
	{
		action: models.ActionWait,
		match:  func(*facts) bool { return true },
		apply: func(f *facts, r *models.Recommendation) {
			r.Confidence = models.ConfidenceLow
			r.Summary = "conflicting signals, not a good entry yet"
			r.Reasons = append(r.Reasons, fmt.Sprintf("score %d/100, below the entry threshold (>60)", f.score))
			if f.sellStrong > 0 && f.buyStrong > 0 {
				r.Reasons = append(r.Reasons, "strong buy and sell signals coexist, tape is conflicted")
			}
			r.Cautions = append(r.Cautions, "do not force an entry, wait for clarity")
		},
	},
}

var regimeNotes = map[models.Regime]string{
	models.RegimeBullTrend:  "bull trend regime, upside carries the edge",
	models.RegimeBearTrend:  "bear trend regime, protect capital first",
	models.RegimeSideways:   "sideways market, buy support and sell resistance",
	models.RegimeTransition: "regime in transition, wait for a confirmed breakout",
}

// Generate walks the decision table and returns the first matching
// verdict, decorated with entry/stop/target levels and regime context.
// Frames shorter than five bars return a neutral WAIT.
func Generate(f *models.Frame, score int, signals []models.Signal, regime models.Regime, currentPrice float64, timeframe string) models.Recommendation {
	if f == nil || f.Len() < minBars {
		return neutral(score, timeframe)
	}

	fx := extract(f, score, signals, regime, currentPrice)

	rec := models.Recommendation{
		Score:     score,
		Regime:    regime,
		RSI:       round1(fx.rsi),
		Timeframe: timeframe,
	}
	for _, r := range decisionTable {
		if r.match(fx) {
			rec.Action = r.action
			r.apply(fx, &rec)
			break
		}
	}

	if note, ok := regimeNotes[regime]; ok {
		rec.Reasons = append(rec.Reasons, note)
	}

	attachLevels(fx, &rec)

	if fx.rsi > 70 && rec.Action != models.ActionSell && rec.Action != models.ActionReduce {
		rec.Cautions = append(rec.Cautions, fmt.Sprintf("RSI %.0f elevated, short-term pullback possible", fx.rsi))
	} else if fx.rsi < 30 && rec.Action != models.ActionBuy && rec.Action != models.ActionAccumulate {
		rec.Cautions = append(rec.Cautions, fmt.Sprintf("RSI %.0f deeply oversold, a bounce can run against you", fx.rsi))
	}

	if len(rec.Reasons) > maxReasons {
		rec.Reasons = rec.Reasons[:maxReasons]
	}
	if len(rec.Cautions) > maxCautions {
		rec.Cautions = rec.Cautions[:maxCautions]
	}
	return rec
}

func extract(f *models.Frame, score int, signals []models.Signal, regime models.Regime, currentPrice float64) *facts {
	close := currentPrice
	if close == 0 {
		close = f.Last().Close
	}

	rsi := models.ValueOr(f.LastOf(f.RSI), 50)
	macd := models.ValueOr(f.LastOf(f.MACD), 0)
	macdSig := models.ValueOr(f.LastOf(f.MACDSignal), 0)
	macdHist := models.ValueOr(f.LastOf(f.MACDHist), 0)
	prevHist := models.ValueOr(f.PrevOf(f.MACDHist), 0)
	ema9 := models.ValueOr(f.LastOf(f.EMA9), close)
	ema21 := models.ValueOr(f.LastOf(f.EMA21), close)
	ema50 := models.ValueOr(f.LastOf(f.EMA50), close)
	ema200 := models.ValueOr(f.LastOf(f.EMA200), close)
	atr := models.ValueOr(f.LastOf(f.ATR), close*0.02)
	bbUp := models.ValueOr(f.LastOf(f.BBUpper), close*1.02)
	bbLo := models.ValueOr(f.LastOf(f.BBLower), close*0.98)
	volR := models.ValueOr(f.LastOf(f.VolRatio), 1)
	adx := models.ValueOr(f.LastOf(f.ADX), 0)

	aboveEMA200 := true
	if ema200 > 0 {
		aboveEMA200 = close > ema200
	}

	return &facts{
		score:  score,
		regime: regime,

		close: close,
		rsi:   rsi,
		atr:   atr,
		adx:   adx,

		buyStrong:  models.CountSignals(signals, models.SignalBuy, models.StrengthStrong),
		sellStrong: models.CountSignals(signals, models.SignalSell, models.StrengthStrong),
		sellMedium: models.CountSignals(signals, models.SignalSell, models.StrengthMedium),

		isUptrend:     close > ema50 && ema50 > 0,
		isStrongTrend: adx > 25,
		aboveEMA200:   aboveEMA200,
		emaAlignedUp:  ema9 > ema21 && ema21 > ema50,
		emaAlignedDn:  ema9 < ema21 && ema21 < ema50,
		macdBullish:   macd > macdSig && macdHist > 0,
		macdImproving: macdHist > prevHist,
		rsiOversold:   rsi < 35,
		rsiOverbought: rsi > 70,
		nearBBLower:   close <= bbLo*1.02,
		nearBBUpper:   close >= bbUp*0.98,
		volConfirm:    volR >= 1.5,
		volRatio:      volR,
	}
}

// attachLevels sets entry zone, stop and targets for constructive
// actions and an exit trigger for defensive ones.
func attachLevels(fx *facts, rec *models.Recommendation) {
	switch rec.Action {
	case models.ActionBuy, models.ActionAccumulate:
		rec.EntryZone = &models.PriceBand{
			Low:  round2(fx.close * 0.99),
			High: round2(fx.close * 1.005),
		}
		rec.StopLoss = round2(fx.close - fx.atr*2.0)
		tp1 := round2(fx.close + fx.atr*2.5)
		tp2 := round2(fx.close + fx.atr*4.0)
		rec.Targets = []float64{tp1, tp2}

		riskPct := abs(fx.close-rec.StopLoss) / fx.close * 100
		rewardPct := abs(tp1-fx.close) / fx.close * 100
		rr := 0.0
		if riskPct > 0 {
			rr = rewardPct / riskPct
		}
		if rr < 1.5 {
			rec.Cautions = append(rec.Cautions, fmt.Sprintf("R:R only 1:%.1f, below the 1:2 guideline", rr))
		} else {
			rec.Reasons = append(rec.Reasons, fmt.Sprintf("R:R 1:%.1f, risk is worth taking", rr))
		}

	case models.ActionReduce, models.ActionSell:
		// Exit trigger for holders rather than a long stop.
		rec.StopLoss = round2(fx.close + fx.atr*1.5)
	}
}

func neutral(score int, timeframe string) models.Recommendation {
	return models.Recommendation{
		Action:     models.ActionWait,
		Confidence: models.ConfidenceLow,
		Summary:    "not enough history to analyze",
		Cautions:   []string{"pick a longer timeframe"},
		Score:      score,
		Regime:     models.RegimeUnknown,
		RSI:        50,
		Timeframe:  timeframe,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
