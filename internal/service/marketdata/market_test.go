package marketdata

import (
	"testing"
	"time"
)

// ict builds a Bangkok wall-clock moment. 2024-01-08 is a Monday.
func ict(day, hour, min int) time.Time {
	return time.Date(2024, 1, day, hour, min, 0, 0, bangkok)
}

func TestIsMarketOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"pre-open", ict(8, 9, 59), false},
		{"morning open", ict(8, 10, 0), true},
		{"mid morning", ict(8, 11, 30), true},
		{"morning close inclusive", ict(8, 12, 30), true},
		{"lunch", ict(8, 13, 0), false},
		{"afternoon open", ict(8, 14, 30), true},
		{"afternoon close inclusive", ict(8, 17, 0), true},
		{"after hours", ict(8, 17, 1), false},
		{"saturday", ict(6, 11, 0), false},
		{"sunday", ict(7, 11, 0), false},
	}
	for _, tc := range cases {
		if got := IsMarketOpen(tc.t); got != tc.want {
			t.Fatalf("%s: IsMarketOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsMarketOpenConvertsZone(t *testing.T) {
	// 04:00 UTC on a Monday is 11:00 in Bangkok.
	utc := time.Date(2024, 1, 8, 4, 0, 0, 0, time.UTC)
	if !IsMarketOpen(utc) {
		t.Fatalf("expected open at 11:00 ICT")
	}
}

func TestQuoteTTL(t *testing.T) {
	if ttl := QuoteTTL(ict(8, 11, 0)); ttl != 30*time.Second {
		t.Fatalf("open market quote TTL = %v", ttl)
	}
	if ttl := QuoteTTL(ict(7, 11, 0)); ttl != 10*time.Minute {
		t.Fatalf("closed market quote TTL = %v", ttl)
	}
}

func TestHistoricalTTL(t *testing.T) {
	if ttl := HistoricalTTL(ict(8, 11, 0)); ttl != 5*time.Minute {
		t.Fatalf("open market historical TTL = %v", ttl)
	}
	if ttl := HistoricalTTL(ict(7, 11, 0)); ttl != time.Hour {
		t.Fatalf("closed market historical TTL = %v", ttl)
	}
}

func TestValidSymbol(t *testing.T) {
	for _, s := range []string{"PTT", "CPALL", "TTB", "COM7", "PTT-R", "A"} {
		if !ValidSymbol(s) {
			t.Fatalf("ValidSymbol(%q) = false", s)
		}
	}
	for _, s := range []string{"", "ptt", "PTT.BK", "TOOLONGSYMBOLX", "P T", "PTT;DROP"} {
		if ValidSymbol(s) {
			t.Fatalf("ValidSymbol(%q) = true", s)
		}
	}
}
