package marketdata

import "time"

// SET trades Bangkok time (UTC+7) in two sessions.
var bangkok = time.FixedZone("ICT", 7*60*60)

// IsMarketOpen reports whether the SET is in a trading session at t:
// weekdays 10:00-12:30 and 14:30-17:00 local time.
func IsMarketOpen(t time.Time) bool {
	local := t.In(bangkok)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	hm := local.Hour()*60 + local.Minute()
	morning := hm >= 10*60 && hm <= 12*60+30
	afternoon := hm >= 14*60+30 && hm <= 17*60
	return morning || afternoon
}

// QuoteTTL is how long a cached quote stays fresh: short while the
// market trades, long when it is closed.
func QuoteTTL(t time.Time) time.Duration {
	if IsMarketOpen(t) {
		return 30 * time.Second
	}
	return 10 * time.Minute
}

// HistoricalTTL is the cache lifetime for daily bar fetches.
func HistoricalTTL(t time.Time) time.Duration {
	if IsMarketOpen(t) {
		return 5 * time.Minute
	}
	return time.Hour
}
