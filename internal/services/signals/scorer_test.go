package signals

import (
	"errors"
	"testing"
	"time"

	"SETPulse/internal/domain/models"
)

// bareFrame returns a frame with n flat candles and every indicator
// column undefined, so tests can light up exactly the rules they want.
func bareFrame(n int, close float64) *models.Frame {
	f := &models.Frame{Series: models.Series{Symbol: "TEST"}}
	t0 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		f.Candles = append(f.Candles, models.Candle{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      close, High: close + 0.5, Low: close - 0.5, Close: close,
			Volume: 1000,
		})
	}
	nan := func() []float64 {
		col := make([]float64, n)
		for i := range col {
			col[i] = models.Undefined()
		}
		return col
	}
	f.EMA9, f.EMA21, f.EMA50, f.EMA200 = nan(), nan(), nan(), nan()
	f.SMA20 = nan()
	f.RSI = nan()
	f.MACD, f.MACDSignal, f.MACDHist = nan(), nan(), nan()
	f.BBUpper, f.BBMiddle, f.BBLower, f.BBWidth = nan(), nan(), nan(), nan()
	f.ATR, f.ADX, f.DIPlus, f.DIMinus = nan(), nan(), nan(), nan()
	f.StochRSIK, f.StochRSID = nan(), nan()
	f.OBV = nan()
	f.VolSMA, f.VolRatio = nan(), nan()
	return f
}

func setLast(col []float64, v float64)  { col[len(col)-1] = v }
func setPrev(col []float64, v float64)  { col[len(col)-2] = v }
func setFirst(col []float64, v float64) { col[0] = v }

func TestScoreInsufficientData(t *testing.T) {
	f := bareFrame(3, 100)
	score, sigs, _, err := Score(f, nil)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if score != models.ScoreNeutral || sigs != nil {
		t.Fatalf("short frame should be neutral and silent, got %d / %v", score, sigs)
	}
}

func TestScoreBullishStack(t *testing.T) {
	f := bareFrame(6, 110)
	f.Candles[4].Close = 109 // up bar

	setLast(f.EMA9, 105)
	setLast(f.EMA21, 104)
	setLast(f.EMA50, 100)
	setLast(f.EMA200, 90)
	setPrev(f.EMA9, 105)
	setPrev(f.EMA21, 104) // no fresh cross

	setLast(f.RSI, 50) // neutral zone, signal without delta
	setLast(f.MACD, 1.0)
	setLast(f.MACDSignal, 0.5)
	setPrev(f.MACD, 1.0)
	setPrev(f.MACDSignal, 0.5) // held above, not a cross
	setLast(f.VolRatio, 2.5)

	score, sigs, _, err := Score(f, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 50 +15 alignment +8 ema200 distance +5 macd hold +10 volume
	if score != 88 {
		t.Fatalf("score = %d, want 88", score)
	}
	if got := models.CountByType(sigs, models.SignalBuy); got != 4 {
		t.Fatalf("buy signals = %d, want 4", got)
	}
	if got := models.CountByType(sigs, models.SignalNeutral); got != 1 {
		t.Fatalf("neutral signals = %d, want 1", got)
	}
}

func TestScoreBearishClampsAtZero(t *testing.T) {
	f := bareFrame(10, 90)
	f.Candles[8].Close = 91 // down bar

	setLast(f.EMA9, 92)
	setLast(f.EMA21, 93)
	setLast(f.EMA50, 95)
	setLast(f.EMA200, 100)
	setPrev(f.EMA9, 92)
	setPrev(f.EMA21, 93)

	setLast(f.RSI, 75)
	setLast(f.MACD, -1.0)
	setLast(f.MACDSignal, -0.5)
	setPrev(f.MACD, -1.0)
	setPrev(f.MACDSignal, -0.5)
	setLast(f.VolRatio, 2.5)
	setFirst(f.OBV, 0)
	setLast(f.OBV, -500)

	score, sigs, _, err := Score(f, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 50 -15 -8 -12 -5 -10 -7 = -7, clamped
	if score != 0 {
		t.Fatalf("score = %d, want 0", score)
	}
	if got := models.CountByType(sigs, models.SignalSell); got != 6 {
		t.Fatalf("sell signals = %d, want 6", got)
	}
}

func TestScoreGoldenCross(t *testing.T) {
	f := bareFrame(6, 100)
	setLast(f.EMA9, 101)
	setLast(f.EMA21, 100.5)
	setPrev(f.EMA9, 100)
	setPrev(f.EMA21, 100.5)

	score, sigs, _, err := Score(f, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Alignment rule skips on undefined EMA50/200; only the cross fires.
	if score != 62 {
		t.Fatalf("score = %d, want 62", score)
	}
	if len(sigs) != 1 || sigs[0].Strength != models.StrengthStrong {
		t.Fatalf("expected one strong cross signal, got %v", sigs)
	}
}

func TestScorePatternContribution(t *testing.T) {
	f := bareFrame(6, 100)
	pats := []models.Pattern{{
		Name: "Hammer",
		Type: models.SignalBuy,
		Note: "bullish reversal candle",
	}}

	score, sigs, _, err := Score(f, pats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 55 {
		t.Fatalf("score = %d, want 55", score)
	}
	if len(sigs) != 1 || sigs[0].Reason != "Hammer: bullish reversal candle" {
		t.Fatalf("unexpected signals %v", sigs)
	}
}

func TestRegimeClassification(t *testing.T) {
	mk := func(adx, diP, diM, close, ema200 float64) *models.Frame {
		f := bareFrame(6, close)
		setLast(f.ADX, adx)
		setLast(f.DIPlus, diP)
		setLast(f.DIMinus, diM)
		setLast(f.EMA200, ema200)
		return f
	}

	cases := []struct {
		name string
		f    *models.Frame
		want models.Regime
	}{
		{"bull trend", mk(30, 30, 10, 110, 100), models.RegimeBullTrend},
		{"bear trend", mk(30, 10, 30, 90, 100), models.RegimeBearTrend},
		{"transition", mk(30, 10, 30, 110, 100), models.RegimeTransition},
		{"weak adx", mk(20, 30, 10, 110, 100), models.RegimeSideways},
	}
	for _, tc := range cases {
		if got := Regime(tc.f); got != tc.want {
			t.Fatalf("%s: regime = %s, want %s", tc.name, got, tc.want)
		}
	}
	if got := Regime(nil); got != models.RegimeSideways {
		t.Fatalf("nil frame regime = %s, want SIDEWAYS", got)
	}
}

func TestScoreIntradayBullMomentum(t *testing.T) {
	f := bareFrame(8, 102)
	last := len(f.Candles) - 1
	f.Candles[last].Open = 100
	f.Candles[last].High = 102.2
	f.Candles[last].Low = 99.9

	setLast(f.EMA9, 101)
	setLast(f.EMA21, 100.5)
	setLast(f.MACDHist, 0.5)
	setPrev(f.MACDHist, 0.3)
	setLast(f.MACD, 0.5)
	setLast(f.MACDSignal, 0.3)
	setPrev(f.MACD, 0.1)
	setPrev(f.MACDSignal, 0.3)
	setLast(f.RSI, 50)
	setLast(f.BBLower, 95)
	setLast(f.BBUpper, 105)
	setLast(f.VolRatio, 1.6)

	score, sigs, regime, err := ScoreIntraday(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 50 +12 ema +10 hist +8 cross +5 rsi +5 vol +5 candle body
	if score != 95 {
		t.Fatalf("score = %d, want 95", score)
	}
	if regime != models.RegimeBullMomentum {
		t.Fatalf("regime = %s, want BULL_MOMENTUM", regime)
	}
	if got := models.CountByType(sigs, models.SignalBuy); got != 4 {
		t.Fatalf("buy signals = %d, want 4", got)
	}
}

func TestScoreIntradayInsufficient(t *testing.T) {
	_, _, regime, err := ScoreIntraday(bareFrame(2, 10))
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if regime != models.RegimeSideways {
		t.Fatalf("regime = %s, want SIDEWAYS", regime)
	}
}
