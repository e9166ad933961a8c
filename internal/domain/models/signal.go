package models

import "errors"

// SignalType is the direction of a discrete signal.
type SignalType string

const (
	SignalBuy     SignalType = "BUY"
	SignalSell    SignalType = "SELL"
	SignalNeutral SignalType = "NEUTRAL"
)

// Strength grades a signal.
type Strength string

const (
	StrengthWeak   Strength = "WEAK"
	StrengthMedium Strength = "MEDIUM"
	StrengthStrong Strength = "STRONG"
)

// Signal is one triggered rule with its rationale. Transient per
// evaluation, never persisted.
type Signal struct {
	Type     SignalType `json:"type"`
	Strength Strength   `json:"strength"`
	Reason   string     `json:"reason"`
}

// Regime is the market state derived from ADX and trend direction.
type Regime string

const (
	RegimeBullTrend    Regime = "BULL_TREND"
	RegimeBearTrend    Regime = "BEAR_TREND"
	RegimeSideways     Regime = "SIDEWAYS"
	RegimeTransition   Regime = "TRANSITION"
	RegimeBullMomentum Regime = "BULL_MOMENTUM" // intraday scorer only
	RegimeBearMomentum Regime = "BEAR_MOMENTUM" // intraday scorer only
	RegimeUnknown      Regime = "UNKNOWN"
)

// Scoring starts neutral and is clamped to [0,100].
const (
	ScoreNeutral = 50
	ScoreMin     = 0
	ScoreMax     = 100
)

// CountSignals tallies signals matching type and strength.
func CountSignals(signals []Signal, t SignalType, st Strength) int {
	n := 0
	for _, s := range signals {
		if s.Type == t && s.Strength == st {
			n++
		}
	}
	return n
}

// CountByType tallies signals of one direction regardless of strength.
func CountByType(signals []Signal, t SignalType) int {
	n := 0
	for _, s := range signals {
		if s.Type == t {
			n++
		}
	}
	return n
}

// Sentinel errors for the two degenerate-input classes the engine
// distinguishes. Callers that only want the fail-soft value can ignore
// them; callers that care can errors.Is on the kind.
var (
	// ErrInsufficientData marks inputs with too few bars or missing
	// warm-up columns.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerate marks computations that collapse (zero variance,
	// zero range, division by zero).
	ErrDegenerate = errors.New("degenerate computation")
)
