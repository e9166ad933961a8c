package models

// PriceBand is an inclusive low/high price range.
type PriceBand struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// FibLevel is one retracement line of a swing.
type FibLevel struct {
	Ratio float64 `json:"ratio"`
	Price float64 `json:"price"`
}

// Targets is the full entry/exit plan derived from the latest frame.
// Recomputed from scratch on every call; holds no incremental state.
type Targets struct {
	BuyZone      PriceBand  `json:"buy_zone"`
	StopLoss     float64    `json:"stop_loss"`
	Targets      [3]float64 `json:"targets"`
	TrailingStop float64    `json:"trailing_stop"`
	RiskPct      float64    `json:"risk_pct"`
	RiskReward   float64    `json:"risk_reward"`

	Fibonacci   []FibLevel `json:"fibonacci"`
	Supports    []float64  `json:"support_levels"`
	Resistances []float64  `json:"resistance_levels"`
}

// Action is a recommended course of action, ordered from most to least
// constructive.
type Action string

const (
	ActionBuy        Action = "BUY"
	ActionAccumulate Action = "ACCUMULATE"
	ActionHold       Action = "HOLD"
	ActionReduce     Action = "REDUCE"
	ActionSell       Action = "SELL"
	ActionWait       Action = "WAIT"
)

// Confidence grades a recommendation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Recommendation is the final human-facing verdict. A pure function of
// (frame, score, signals, regime, price, timeframe).
type Recommendation struct {
	Action     Action     `json:"action"`
	Confidence Confidence `json:"confidence"`
	Summary    string     `json:"summary"`
	Reasons    []string   `json:"reasons"`
	Cautions   []string   `json:"cautions"`

	EntryZone *PriceBand `json:"entry_zone,omitempty"`
	StopLoss  float64    `json:"stop_loss,omitempty"`
	Targets   []float64  `json:"targets,omitempty"`

	Score     int     `json:"score"`
	Regime    Regime  `json:"regime"`
	RSI       float64 `json:"rsi"`
	Timeframe string  `json:"timeframe"`
}
