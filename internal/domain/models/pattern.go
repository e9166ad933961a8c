package models

import "time"

// Pattern is a detected candlestick formation on the latest bars.
type Pattern struct {
	Name       string     `json:"name"`
	Type       SignalType `json:"type"`
	Strength   Strength   `json:"strength"`
	Confidence int        `json:"confidence"` // 0..100
	Date       time.Time  `json:"date"`
	BarIndex   int        `json:"bar_index"`
	Price      float64    `json:"price"`
	Note       string     `json:"note"`
}

// BellCurveStats is the rolling-window mean-reversion snapshot.
// Zero value means "not computable" (use OK to tell them apart).
type BellCurveStats struct {
	OK bool `json:"ok"`

	Current    float64 `json:"current"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	ZScore     float64 `json:"z_score"`
	Percentile float64 `json:"percentile"`

	Regime        string  `json:"regime"`
	ReversionProb float64 `json:"reversion_prob"` // percent; fixed heuristic table, not calibrated
	Direction     string  `json:"direction"`      // "UP" when stretched below mean, "DOWN" above

	ReturnMean float64 `json:"ret_mean"`
	ReturnStd  float64 `json:"ret_std"`
	ReturnLast float64 `json:"ret_last"`
	ReturnZ    float64 `json:"ret_z"`

	BBPosition float64 `json:"bb_pos"` // 0 at lower band, 1 at upper
	BBLabel    string  `json:"bb_label"`
	BBUpper    float64 `json:"bb_upper"`
	BBMiddle   float64 `json:"bb_middle"`
	BBLower    float64 `json:"bb_lower"`

	Window int `json:"window"`
}

// Mean-reversion regime buckets keyed by |z|. The probabilities are
// deliberate fixed constants carried from the legacy model.
const (
	ReversionStretchedExtreme = "STRETCHED_EXTREME"
	ReversionStretchedHigh    = "STRETCHED_HIGH"
	ReversionStretched        = "STRETCHED"
	ReversionNormal           = "NORMAL"
	ReversionCompressed       = "COMPRESSED"
)
