package marketdata

import (
	"math"
	"testing"
	"time"

	"SETPulse/internal/domain/models"
)

func div(year int, month time.Month, amount float64) models.Dividend {
	return models.Dividend{
		ExDate: time.Date(year, month, 15, 0, 0, 0, 0, time.UTC),
		Amount: amount,
		Year:   year,
	}
}

func TestDividendCAGR(t *testing.T) {
	// 1.00 total in 2021 to 1.21 in 2023 is 10% a year.
	divs := []models.Dividend{
		div(2021, time.April, 0.4),
		div(2021, time.October, 0.6),
		div(2023, time.April, 1.21),
	}
	got := DividendCAGR(divs)
	if math.Abs(got-10) > 0.01 {
		t.Fatalf("CAGR = %v, want 10", got)
	}
}

func TestDividendCAGRDegenerateInputs(t *testing.T) {
	if got := DividendCAGR(nil); got != 0 {
		t.Fatalf("empty: %v", got)
	}
	oneYear := []models.Dividend{div(2023, time.April, 0.5), div(2023, time.October, 0.5)}
	if got := DividendCAGR(oneYear); got != 0 {
		t.Fatalf("single year: %v", got)
	}
	zeroFirst := []models.Dividend{div(2021, time.April, 0), div(2023, time.April, 1)}
	if got := DividendCAGR(zeroFirst); got != 0 {
		t.Fatalf("zero first year: %v", got)
	}
}

func TestDividendCAGRSumsWithinYear(t *testing.T) {
	// Two payouts per year; growth is measured on annual totals.
	divs := []models.Dividend{
		div(2022, time.April, 0.5),
		div(2022, time.October, 0.5),
		div(2024, time.April, 2.0),
		div(2024, time.October, 2.0),
	}
	// 1.0 to 4.0 over two years doubles annually.
	if got := DividendCAGR(divs); math.Abs(got-100) > 0.01 {
		t.Fatalf("CAGR = %v, want 100", got)
	}
}
