package repository

// Period is a vendor history span ("3mo", "6mo", "1y", ...).
type Period = string

// Supported history periods and intraday intervals.
var validPeriods = map[string]bool{
	"5d": true, "10d": true, "20d": true, "1mo": true, "3mo": true,
	"6mo": true, "1y": true, "2y": true, "5y": true, "max": true,
}

var validIntervals = map[string]bool{
	"1d": true, "1h": true, "30m": true, "15m": true, "5m": true,
}

// IsValidPeriod reports whether p is a supported history span.
func IsValidPeriod(p string) bool { return validPeriods[p] }

// IsValidInterval reports whether iv is a supported bar interval.
func IsValidInterval(iv string) bool { return validIntervals[iv] }

// NormalizePeriod converts a raw string to a valid period (or "1y").
func NormalizePeriod(s string) Period {
	if s == "" || !IsValidPeriod(s) {
		return "1y"
	}
	return s
}

// NormalizeInterval converts a raw string to a valid interval (or "1d").
func NormalizeInterval(s string) string {
	if s == "" || !validIntervals[s] {
		return "1d"
	}
	return s
}

// IntradayFetch maps an intraday interval to the history span and the
// minimum bar count the scanner accepts for it. Vendor intraday history
// is shallow, hence the short spans.
type IntradayFetch struct {
	Period  string
	MinBars int
}

var intradayFetch = map[string]IntradayFetch{
	"5m":  {Period: "5d", MinBars: 30},
	"15m": {Period: "5d", MinBars: 20},
	"30m": {Period: "10d", MinBars: 15},
	"1h":  {Period: "20d", MinBars: 20},
}

// IntradayFetchFor returns the fetch plan for an interval, defaulting
// to the 15-minute plan.
func IntradayFetchFor(interval string) IntradayFetch {
	if f, ok := intradayFetch[interval]; ok {
		return f
	}
	return intradayFetch["15m"]
}
