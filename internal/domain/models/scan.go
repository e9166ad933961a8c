package models

// ScanMode selects the scanner pipeline.
type ScanMode string

const (
	ScanModeSwing    ScanMode = "swing"     // single timeframe
	ScanModeMTF      ScanMode = "mtf"       // multi-timeframe confluence
	ScanModeIntraday ScanMode = "intraday"  // day-trade, short intervals
)

// ScanParams configures a scan run. Defaults mirror the legacy scanner.
type ScanParams struct {
	Mode    ScanMode `json:"mode" default:"swing" validate:"oneof=swing mtf intraday"`
	Symbols []string `json:"symbols,omitempty"`

	Period   string   `json:"period,omitempty" default:"1y"`
	Periods  []string `json:"periods,omitempty"` // mtf mode, default 3mo/6mo/1y
	Interval string   `json:"interval,omitempty" default:"15m"`

	MinFibScore float64 `json:"min_fib_score" default:"40" validate:"gte=0,lte=100"`
	MinRR       float64 `json:"min_rr" default:"1.0" validate:"gte=0"`
	Workers     int     `json:"workers" default:"10" validate:"gte=1,lte=15"`
}

// ScanResult is one scored symbol in the ranked table. Built by a scan
// task, merged, returned, then discarded; nothing survives the run.
type ScanResult struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	FibScore  float64 `json:"fib_score"`
	Grade     string  `json:"grade"`
	Zone      string  `json:"zone"`
	ZoneRatio float64 `json:"zone_ratio"` // midpoint of the containing zone, -1 when outside

	DistNearest  float64 `json:"dist_nearest"` // % to nearest key level
	NearestLevel string  `json:"nearest_level"`
	DistGolden   float64 `json:"dist_golden"` // % to the 61.8% line

	SignalScore int     `json:"signal_score"`
	Regime      Regime  `json:"regime"`
	RSI         float64 `json:"rsi"`
	VolRatio    float64 `json:"vol_ratio"`
	BuySignals  int     `json:"buy_signals"`
	SellSignals int     `json:"sell_signals"`

	StopLoss   float64 `json:"stop_loss"`
	TP1        float64 `json:"tp1"`
	TP2        float64 `json:"tp2"`
	RiskPct    float64 `json:"risk_pct"`
	RiskReward float64 `json:"risk_reward"`
	IsUptrend  bool    `json:"is_uptrend"`

	Change5D    float64 `json:"change_5d"` // intraday mode: last-bar change
	SwingHigh   float64 `json:"swing_high"`
	SwingLow    float64 `json:"swing_low"`
	GoldenPrice float64 `json:"golden_price"`

	// Multi-timeframe extras.
	MTFScore     float64            `json:"mtf_score,omitempty"`
	Confluence   string             `json:"confluence,omitempty"`
	PassedTFs    int                `json:"passed_tfs,omitempty"`
	PeriodScores map[string]float64 `json:"period_scores,omitempty"`
	PeriodZones  map[string]string  `json:"period_zones,omitempty"`

	// Intraday extras.
	VWAP      float64 `json:"vwap,omitempty"`
	VsVWAPPct float64 `json:"vs_vwap_pct,omitempty"`
	Interval  string  `json:"interval,omitempty"`
	ATR       float64 `json:"atr,omitempty"`
}

// ProgressFunc receives (completed, total, label) after each scan task
// finishes, success or not. Invoked concurrently from worker goroutines.
type ProgressFunc func(done, total int, label string)
