package backtest

import (
	"testing"
	"time"

	"SETPulse/internal/domain/models"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func frameOf(closes ...float64) *models.Frame {
	f := &models.Frame{}
	for i, c := range closes {
		f.Candles = append(f.Candles, models.Candle{
			Timestamp: day(i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		})
	}
	return f
}

func TestRunUnknownStrategy(t *testing.T) {
	f := frameOf(100, 101, 102)
	res, err := Run(f, models.Strategy("martingale"), 10000, 0.05)
	if err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
	if res.FinalEquity != 10000 {
		t.Fatalf("final equity = %v, want untouched capital", res.FinalEquity)
	}
}

func TestRunTooFewBars(t *testing.T) {
	f := frameOf(100, 101)
	if _, err := Run(f, models.StrategyEMACross, 10000, 0.05); err != models.ErrInsufficientData {
		t.Fatalf("got %v, want ErrInsufficientData", err)
	}
	if _, err := Run(nil, models.StrategyEMACross, 10000, 0.05); err != models.ErrInsufficientData {
		t.Fatalf("nil frame: got %v, want ErrInsufficientData", err)
	}
}

func TestRunEMACrossRoundTrip(t *testing.T) {
	// Golden cross at bar 2, death cross at bar 5, +10% on the trade.
	f := frameOf(100, 100, 100, 105, 108, 110, 110, 110)
	f.EMA21 = []float64{100, 100, 100, 100, 100, 100, 100, 100}
	f.EMA9 = []float64{99, 99, 101, 101, 101, 99, 99, 99}

	res, err := Run(f, models.StrategyEMACross, 10000, 0.05)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1", res.TotalTrades)
	}
	tr := res.Trades[0]
	if tr.EntryPrice != 100 || tr.ExitPrice != 110 {
		t.Fatalf("trade prices = %v/%v", tr.EntryPrice, tr.ExitPrice)
	}
	if !tr.EntryDate.Equal(day(2)) || !tr.ExitDate.Equal(day(5)) {
		t.Fatalf("trade dates = %v/%v", tr.EntryDate, tr.ExitDate)
	}
	if tr.PnLPct != 10 || tr.PnLAmount != 1000 {
		t.Fatalf("pnl = %v%% / %v", tr.PnLPct, tr.PnLAmount)
	}
	if !tr.Win || tr.StopHit {
		t.Fatalf("trade flags: win=%v stop=%v", tr.Win, tr.StopHit)
	}
	if res.FinalEquity != 11000 || res.TotalReturn != 10 {
		t.Fatalf("equity = %v return = %v", res.FinalEquity, res.TotalReturn)
	}
	if res.WinRate != 100 {
		t.Fatalf("win rate = %v", res.WinRate)
	}
	if res.MaxDrawdown != 0 {
		t.Fatalf("drawdown = %v, want 0 for a monotone curve", res.MaxDrawdown)
	}
	// One point per simulated bar plus the seed.
	if len(res.EquityCurve) != 7 {
		t.Fatalf("curve length = %d, want 7", len(res.EquityCurve))
	}
	if last := res.EquityCurve[len(res.EquityCurve)-1]; last.Equity != 11000 {
		t.Fatalf("curve end = %v", last.Equity)
	}
}

func TestRunStopLossExit(t *testing.T) {
	f := frameOf(100, 100, 100, 94, 94)
	f.EMA21 = []float64{100, 100, 100, 100, 100}
	f.EMA9 = []float64{99, 99, 101, 101, 101}

	res, err := Run(f, models.StrategyEMACross, 10000, 0.05)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1", res.TotalTrades)
	}
	tr := res.Trades[0]
	if !tr.StopHit {
		t.Fatalf("expected a stop-loss exit, got %+v", tr)
	}
	if tr.Win || tr.PnLPct != -6 {
		t.Fatalf("pnl = %v win = %v", tr.PnLPct, tr.Win)
	}
	if res.FinalEquity != 9400 || res.WinRate != 0 {
		t.Fatalf("equity = %v win rate = %v", res.FinalEquity, res.WinRate)
	}
	if res.MaxDrawdown != -6 {
		t.Fatalf("drawdown = %v, want -6", res.MaxDrawdown)
	}
}

func TestRunRSIBounds(t *testing.T) {
	// Oversold recovery at bar 2, overbought exit at bar 5.
	f := frameOf(100, 100, 100, 100, 120, 120)
	f.RSI = []float64{50, 25, 35, 40, 50, 75}

	res, err := Run(f, models.StrategyRSI, 10000, 0.10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1", res.TotalTrades)
	}
	tr := res.Trades[0]
	if tr.EntryPrice != 100 || tr.ExitPrice != 120 || tr.PnLPct != 20 {
		t.Fatalf("trade = %+v", tr)
	}
	if res.FinalEquity != 12000 {
		t.Fatalf("equity = %v", res.FinalEquity)
	}
}

func TestRunOpenPositionNotCounted(t *testing.T) {
	// MACD crosses up at bar 2 and never crosses back down, so the
	// position stays open and no trade is booked.
	f := frameOf(100, 100, 100, 130)
	f.MACD = []float64{-1, -1, 1, 1}
	f.MACDSignal = []float64{0, 0, 0, 0}

	res, err := Run(f, models.StrategyMACDCross, 10000, 0.05)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TotalTrades != 0 {
		t.Fatalf("trades = %d, want 0 while position is still open", res.TotalTrades)
	}
	if res.FinalEquity != 10000 || res.TotalReturn != 0 {
		t.Fatalf("equity = %v return = %v", res.FinalEquity, res.TotalReturn)
	}
}

func TestRunBBBounce(t *testing.T) {
	// Touch of the lower band enters, touch of the upper band exits.
	f := frameOf(100, 100, 95, 100, 105, 105)
	f.BBLower = []float64{95, 95, 95, 95, 95, 95}
	f.BBUpper = []float64{105, 105, 105, 105, 105, 105}

	res, err := Run(f, models.StrategyBBBounce, 10000, 0.20)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.TotalTrades != 1 {
		t.Fatalf("trades = %d, want 1", res.TotalTrades)
	}
	tr := res.Trades[0]
	if tr.EntryPrice != 95 || tr.ExitPrice != 105 {
		t.Fatalf("trade prices = %v/%v", tr.EntryPrice, tr.ExitPrice)
	}
	if res.FinalEquity != 11052.63 {
		t.Fatalf("equity = %v", res.FinalEquity)
	}
}
