// Package bellcurve measures how stretched the latest close is versus
// its rolling distribution and maps that into a mean-reversion read.
package bellcurve

import (
	"math"

	"SETPulse/internal/domain/models"
)

const (
	// DefaultWindow is the rolling sample used when callers pass 0.
	DefaultWindow = 60

	minBars = 20
)

// Analyze computes the distribution snapshot over the last window
// closes. Frames shorter than 20 bars or with zero variance return a
// zero-valued stats struct with OK false and a typed error.
func Analyze(f *models.Frame, window int) (models.BellCurveStats, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if f == nil || f.Len() < minBars {
		return models.BellCurveStats{}, models.ErrInsufficientData
	}

	closes := make([]float64, f.Len())
	for i, c := range f.Candles {
		closes[i] = c.Close
	}
	n := window
	if n > len(closes) {
		n = len(closes)
	}
	recent := closes[len(closes)-n:]

	current := recent[len(recent)-1]
	mean, std := meanStd(recent)
	if std == 0 {
		return models.BellCurveStats{}, models.ErrDegenerate
	}

	z := (current - mean) / std
	stats := models.BellCurveStats{
		OK:         true,
		Current:    current,
		Mean:       mean,
		Std:        std,
		ZScore:     z,
		Percentile: percentileOf(recent, current),
		Window:     n,
	}

	stats.Regime, stats.ReversionProb = reversionBucket(z)
	if z < 0 {
		stats.Direction = "UP"
	} else {
		stats.Direction = "DOWN"
	}

	// Day-over-day percent returns across the window.
	returns := pctReturns(closes, n-1)
	if len(returns) > 0 {
		retMean, retStd := meanStd(returns)
		stats.ReturnMean = retMean
		stats.ReturnStd = retStd
		stats.ReturnLast = returns[len(returns)-1]
		if retStd > 0 {
			stats.ReturnZ = (stats.ReturnLast - retMean) / retStd
		}
	}

	fillBBPosition(&stats, f, mean, std)
	return stats, nil
}

// reversionBucket maps |z| to a regime label and a fixed reversion
// probability in percent. The table is a heuristic, not a calibrated
// model.
func reversionBucket(z float64) (string, float64) {
	switch absZ := math.Abs(z); {
	case absZ > 2.5:
		return models.ReversionStretchedExtreme, 85.0
	case absZ > 2.0:
		return models.ReversionStretchedHigh, 75.0
	case absZ > 1.5:
		return models.ReversionStretched, 62.0
	case absZ > 1.0:
		return models.ReversionNormal, 48.0
	default:
		return models.ReversionCompressed, 35.0
	}
}

func fillBBPosition(stats *models.BellCurveStats, f *models.Frame, mean, std float64) {
	up := f.LastOf(f.BBUpper)
	lo := f.LastOf(f.BBLower)
	mid := f.LastOf(f.BBMiddle)
	if !models.Defined(up) || !models.Defined(lo) {
		stats.BBPosition = 0.5
		stats.BBLabel = "N/A"
		stats.BBUpper = mean + 2*std
		stats.BBLower = mean - 2*std
		stats.BBMiddle = mean
		return
	}
	stats.BBUpper = up
	stats.BBLower = lo
	stats.BBMiddle = models.ValueOr(mid, mean)

	cur := stats.Current
	if rng := up - lo; rng > 0 {
		stats.BBPosition = (cur - lo) / rng
	} else {
		stats.BBPosition = 0.5
	}
	switch {
	case cur > up:
		stats.BBLabel = "above upper band (overbought)"
	case cur < lo:
		stats.BBLabel = "below lower band (oversold)"
	default:
		stats.BBLabel = "inside bands"
	}
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)-1))
}

// percentileOf ranks value within the sample the way a mid-rank
// percentile does: equal observations count half.
func percentileOf(sample []float64, value float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	below, equal := 0, 0
	for _, v := range sample {
		switch {
		case v < value:
			below++
		case v == value:
			equal++
		}
	}
	return (float64(below) + float64(equal)/2) / float64(len(sample)) * 100
}

// pctReturns yields the last n close-to-close percent changes.
func pctReturns(closes []float64, n int) []float64 {
	var out []float64
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			out = append(out, (closes[i]-closes[i-1])/closes[i-1]*100)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
