package models

import "time"

// Strategy names the backtest entry/exit rule.
type Strategy string

const (
	StrategyEMACross   Strategy = "ema_cross"    // EMA9/21 crossover
	StrategyRSI        Strategy = "rsi"          // oversold entry / overbought exit
	StrategyMACDCross  Strategy = "macd_cross"   // MACD/signal crossover
	StrategyBBBounce   Strategy = "bb_bounce"    // lower-band entry / upper-band exit
	StrategyScore      Strategy = "score"        // composite score >=65 in, <=35 out
)

// Trade is one closed round trip in a backtest.
type Trade struct {
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	PnLPct     float64   `json:"pnl_pct"`
	PnLAmount  float64   `json:"pnl_amount"`
	Win        bool      `json:"win"`
	StopHit    bool      `json:"stop_hit"`
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// BacktestResult summarizes a single-position simulation. No
// commissions or slippage are modeled; equity compounds per trade.
type BacktestResult struct {
	Strategy    Strategy      `json:"strategy"`
	TotalReturn float64       `json:"total_return"` // percent
	WinRate     float64       `json:"win_rate"`     // percent
	MaxDrawdown float64       `json:"max_drawdown"` // percent, negative
	TotalTrades int           `json:"total_trades"`
	FinalEquity float64       `json:"final_equity"`
	Trades      []Trade       `json:"trades"`
	EquityCurve []EquityPoint `json:"equity_curve"`
}
