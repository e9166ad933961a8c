package marketdata

import (
	"math"
	"sort"

	"SETPulse/internal/domain/models"
)

// DividendCAGR computes the compound annual growth rate of total
// dividends per year across the events, in percent. Needs at least two
// distinct years with a positive first year.
func DividendCAGR(divs []models.Dividend) float64 {
	if len(divs) == 0 {
		return 0
	}
	annual := make(map[int]float64)
	for _, d := range divs {
		annual[d.Year] += d.Amount
	}
	years := make([]int, 0, len(annual))
	for y := range annual {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) < 2 {
		return 0
	}

	first := annual[years[0]]
	last := annual[years[len(years)-1]]
	span := years[len(years)-1] - years[0]
	if first <= 0 || span <= 0 {
		return 0
	}
	cagr := (math.Pow(last/first, 1/float64(span)) - 1) * 100
	return math.Round(cagr*100) / 100
}
