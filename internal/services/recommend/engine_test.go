package recommend

import (
	"math"
	"strings"
	"testing"
	"time"

	"SETPulse/internal/domain/models"
)

// bareFrame allocates every indicator column as NaN so each test only
// pins down the cells the rule under test reads.
func bareFrame(n int, close float64) *models.Frame {
	f := &models.Frame{}
	nan := make([]float64, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range nan {
		nan[i] = math.NaN()
		f.Candles = append(f.Candles, models.Candle{
			Timestamp: t0.AddDate(0, 0, i),
			Open:      close,
			High:      close,
			Low:       close,
			Close:     close,
			Volume:    1000,
		})
	}
	col := func() []float64 { return append([]float64(nil), nan...) }
	f.EMA9, f.EMA21, f.EMA50, f.EMA200 = col(), col(), col(), col()
	f.RSI = col()
	f.MACD, f.MACDSignal, f.MACDHist = col(), col(), col()
	f.BBUpper, f.BBMiddle, f.BBLower = col(), col(), col()
	f.ATR, f.ADX = col(), col()
	f.VolRatio = col()
	return f
}

func setLast(col []float64, v float64) { col[len(col)-1] = v }

func hasReason(rec models.Recommendation, substr string) bool {
	for _, r := range rec.Reasons {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}

func hasCaution(rec models.Recommendation, substr string) bool {
	for _, c := range rec.Cautions {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

func TestGenerateShortFrameNeutral(t *testing.T) {
	rec := Generate(bareFrame(3, 100), 77, nil, models.RegimeBullTrend, 100, "1d")
	if rec.Action != models.ActionWait {
		t.Fatalf("action = %q, want WAIT", rec.Action)
	}
	if rec.Confidence != models.ConfidenceLow {
		t.Fatalf("confidence = %q, want LOW", rec.Confidence)
	}
	if rec.Regime != models.RegimeUnknown || rec.RSI != 50 {
		t.Fatalf("neutral fields: regime=%q rsi=%v", rec.Regime, rec.RSI)
	}
	if rec.Score != 77 || rec.Timeframe != "1d" {
		t.Fatalf("score/timeframe not carried through: %d %q", rec.Score, rec.Timeframe)
	}
}

func TestGenerateBuy(t *testing.T) {
	f := bareFrame(30, 100)
	setLast(f.EMA9, 103)
	setLast(f.EMA21, 102)
	setLast(f.EMA50, 98)
	setLast(f.EMA200, 90)
	setLast(f.MACD, 1.0)
	setLast(f.MACDSignal, 0.5)
	setLast(f.MACDHist, 0.5)
	setLast(f.RSI, 55)

	rec := Generate(f, 85, nil, models.RegimeBullTrend, 100, "1d")
	if rec.Action != models.ActionBuy {
		t.Fatalf("action = %q, want BUY", rec.Action)
	}
	if rec.Confidence != models.ConfidenceHigh {
		t.Fatalf("confidence = %q, want HIGH for score 85", rec.Confidence)
	}
	if rec.EntryZone == nil {
		t.Fatalf("BUY must carry an entry zone")
	}
	if rec.EntryZone.Low != 99 || rec.EntryZone.High != 100.5 {
		t.Fatalf("entry zone = %+v", *rec.EntryZone)
	}
	// ATR column is NaN, fallback is 2% of price.
	if rec.StopLoss != 96 {
		t.Fatalf("stop loss = %v, want 96", rec.StopLoss)
	}
	if len(rec.Targets) != 2 || rec.Targets[0] != 105 || rec.Targets[1] != 108 {
		t.Fatalf("targets = %v, want [105 108]", rec.Targets)
	}
	if !hasReason(rec, "bullish EMA stack") || !hasReason(rec, "above EMA200") {
		t.Fatalf("missing core reasons: %v", rec.Reasons)
	}
	if !hasReason(rec, "bull trend regime") {
		t.Fatalf("regime note missing: %v", rec.Reasons)
	}
	// Reward 5% vs risk 4% is under the 1:1.5 guideline.
	if !hasCaution(rec, "R:R only 1:1.2") {
		t.Fatalf("expected R:R caution, got %v", rec.Cautions)
	}
}

func TestGenerateAccumulate(t *testing.T) {
	f := bareFrame(30, 100)
	setLast(f.EMA50, 95)

	rec := Generate(f, 65, nil, models.RegimeSideways, 100, "1d")
	if rec.Action != models.ActionAccumulate {
		t.Fatalf("action = %q, want ACCUMULATE", rec.Action)
	}
	if rec.Confidence != models.ConfidenceMedium {
		t.Fatalf("confidence = %q, want MEDIUM", rec.Confidence)
	}
	if !hasReason(rec, "still above EMA50") {
		t.Fatalf("missing uptrend reason: %v", rec.Reasons)
	}
	if !hasCaution(rec, "staged buying") {
		t.Fatalf("missing staged-buying caution: %v", rec.Cautions)
	}
	if rec.EntryZone == nil || rec.StopLoss != 96 {
		t.Fatalf("ACCUMULATE must carry levels: zone=%v sl=%v", rec.EntryZone, rec.StopLoss)
	}
}

func TestGenerateAccumulateBlockedByStrongSell(t *testing.T) {
	f := bareFrame(30, 100)
	setLast(f.EMA50, 95)
	sells := []models.Signal{{Type: models.SignalSell, Strength: models.StrengthStrong, Reason: "x"}}

	rec := Generate(f, 65, sells, models.RegimeSideways, 100, "1d")
	if rec.Action == models.ActionAccumulate {
		t.Fatalf("a strong sell signal must block ACCUMULATE")
	}
}

func TestGenerateHold(t *testing.T) {
	f := bareFrame(30, 100)

	rec := Generate(f, 50, nil, models.RegimeTransition, 100, "1d")
	if rec.Action != models.ActionHold {
		t.Fatalf("action = %q, want HOLD", rec.Action)
	}
	if rec.Confidence != models.ConfidenceLow {
		t.Fatalf("confidence = %q, want LOW", rec.Confidence)
	}
	if !hasReason(rec, "score 50/100") || !hasReason(rec, "ADX 0") {
		t.Fatalf("reasons = %v", rec.Reasons)
	}
	if !hasReason(rec, "regime in transition") {
		t.Fatalf("regime note missing: %v", rec.Reasons)
	}
	if rec.EntryZone != nil || rec.StopLoss != 0 {
		t.Fatalf("HOLD carries no levels: zone=%v sl=%v", rec.EntryZone, rec.StopLoss)
	}
}

func TestGenerateReduce(t *testing.T) {
	f := bareFrame(30, 100)
	setLast(f.RSI, 75)
	sells := []models.Signal{{Type: models.SignalSell, Strength: models.StrengthMedium, Reason: "x"}}

	rec := Generate(f, 50, sells, models.RegimeBearTrend, 100, "1d")
	if rec.Action != models.ActionReduce {
		t.Fatalf("action = %q, want REDUCE", rec.Action)
	}
	if !hasReason(rec, "RSI 75 overbought") {
		t.Fatalf("reasons = %v", rec.Reasons)
	}
	if !hasCaution(rec, "trimming 30-50%") {
		t.Fatalf("cautions = %v", rec.Cautions)
	}
	// Exit trigger sits above price for defensive actions.
	if rec.StopLoss != 103 {
		t.Fatalf("exit trigger = %v, want 103", rec.StopLoss)
	}
	if hasCaution(rec, "elevated") {
		t.Fatalf("REDUCE must not get the elevated-RSI caution: %v", rec.Cautions)
	}
}

func TestGenerateSell(t *testing.T) {
	f := bareFrame(30, 89)
	setLast(f.EMA9, 90)
	setLast(f.EMA21, 92)
	setLast(f.EMA50, 95)
	setLast(f.EMA200, 100)
	sells := []models.Signal{{Type: models.SignalSell, Strength: models.StrengthStrong, Reason: "x"}}

	rec := Generate(f, 25, sells, models.RegimeBearTrend, 89, "1d")
	if rec.Action != models.ActionSell {
		t.Fatalf("action = %q, want SELL", rec.Action)
	}
	if rec.Confidence != models.ConfidenceHigh {
		t.Fatalf("confidence = %q, want HIGH for score 25", rec.Confidence)
	}
	if !hasReason(rec, "bearish EMA alignment") || !hasReason(rec, "below EMA200") {
		t.Fatalf("reasons = %v", rec.Reasons)
	}
	if !hasReason(rec, "1 strong sell signals active") {
		t.Fatalf("reasons = %v", rec.Reasons)
	}
	if !hasCaution(rec, "stop loss immediately") {
		t.Fatalf("cautions = %v", rec.Cautions)
	}
	// ATR fallback is 2% of 89.
	if rec.StopLoss != 91.67 {
		t.Fatalf("exit trigger = %v, want 91.67", rec.StopLoss)
	}
}

func TestGenerateWaitConflicted(t *testing.T) {
	f := bareFrame(30, 100)
	setLast(f.RSI, 75)
	signals := []models.Signal{
		{Type: models.SignalBuy, Strength: models.StrengthStrong, Reason: "x"},
		{Type: models.SignalSell, Strength: models.StrengthStrong, Reason: "y"},
	}

	rec := Generate(f, 45, signals, models.RegimeUnknown, 100, "1d")
	if rec.Action != models.ActionWait {
		t.Fatalf("action = %q, want WAIT", rec.Action)
	}
	if !hasReason(rec, "below the entry threshold") || !hasReason(rec, "coexist") {
		t.Fatalf("reasons = %v", rec.Reasons)
	}
	if !hasCaution(rec, "do not force an entry") {
		t.Fatalf("cautions = %v", rec.Cautions)
	}
	if !hasCaution(rec, "RSI 75 elevated") {
		t.Fatalf("overbought caution missing on WAIT: %v", rec.Cautions)
	}
}
