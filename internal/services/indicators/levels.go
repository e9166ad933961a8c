package indicators

import (
	"math"
	"sort"

	"SETPulse/internal/domain/models"
)

const (
	extremaOrder  = 10
	clusterPct    = 0.01
	maxLevels     = 7
	supportCeil   = 1.02
	resistanceFlr = 0.98
)

// SupportResistance extracts clustered swing levels from the closes.
// Local extrema over a +-order window are grouped when within 1% of
// the running group and averaged; supports sit below roughly the
// current price, resistances above, each capped at 7 entries ordered
// by distance from the current close.
func SupportResistance(f *models.Frame) (supports, resistances []float64) {
	n := f.Len()
	if n < 2*extremaOrder+1 {
		return nil, nil
	}
	closes := make([]float64, n)
	for i, c := range f.Candles {
		closes[i] = c.Close
	}
	current := closes[n-1]

	var minima, maxima []float64
	for i := extremaOrder; i < n-extremaOrder; i++ {
		isMin, isMax := true, true
		for j := i - extremaOrder; j <= i+extremaOrder; j++ {
			if j == i {
				continue
			}
			if closes[j] < closes[i] {
				isMin = false
			}
			if closes[j] > closes[i] {
				isMax = false
			}
			if !isMin && !isMax {
				break
			}
		}
		if isMin {
			minima = append(minima, closes[i])
		}
		if isMax {
			maxima = append(maxima, closes[i])
		}
	}

	supports = pickLevels(cluster(minima), current, func(lv float64) bool {
		return lv < current*supportCeil
	})
	resistances = pickLevels(cluster(maxima), current, func(lv float64) bool {
		return lv > current*resistanceFlr
	})
	return supports, resistances
}

// cluster merges sorted levels that lie within clusterPct of the last
// member of the running group, replacing each group by its mean.
func cluster(levels []float64) []float64 {
	if len(levels) == 0 {
		return nil
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	var out []float64
	group := []float64{sorted[0]}
	for _, lv := range sorted[1:] {
		last := group[len(group)-1]
		if last != 0 && math.Abs(lv-last)/last <= clusterPct {
			group = append(group, lv)
			continue
		}
		out = append(out, mean(group))
		group = []float64{lv}
	}
	return append(out, mean(group))
}

func pickLevels(levels []float64, current float64, keep func(float64) bool) []float64 {
	var out []float64
	for _, lv := range levels {
		if keep(lv) {
			out = append(out, lv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i]-current) < math.Abs(out[j]-current)
	})
	if len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
