package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SETPulse/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// chartJSON serves three clean daily bars plus one zero-price bar that
// Sanitize must drop.
const chartJSON = `{"chart":{"result":[{
  "meta":{"regularMarketPrice":36.5,"chartPreviousClose":34.0,"currency":"THB"},
  "timestamp":[1704067200,1704153600,1704240000,1704326400],
  "indicators":{"quote":[{
	"open":[34.0,0,35.0,36.0],
	"high":[35.0,0,36.0,37.0],
	"low":[33.5,0,34.5,35.5],
	"close":[34.5,0,35.5,36.5],
	"volume":[1000,0,2000,3000]
  }]}
}],"error":null}}`

func chartServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v8/finance/chart/PTT.BK":
			fmt.Fprint(w, chartJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHistoricalParsesAndSanitizes(t *testing.T) {
	srv := chartServer(t)
	c := New(Config{ChartBaseURL: srv.URL}, testLogger(t), nil)

	series, err := c.Historical(context.Background(), "PTT", "1y", "1d")
	if err != nil {
		t.Fatalf("Historical: %v", err)
	}
	if series.Symbol != "PTT" {
		t.Fatalf("symbol = %q", series.Symbol)
	}
	if series.Len() != 3 {
		t.Fatalf("bars = %d, want 3 after dropping the zero bar", series.Len())
	}
	first, last := series.Candles[0], series.Last()
	if first.Close != 34.5 || last.Close != 36.5 {
		t.Fatalf("closes = %v..%v", first.Close, last.Close)
	}
	if last.Volume != 3000 {
		t.Fatalf("volume = %v", last.Volume)
	}
	if !last.Timestamp.Equal(time.Unix(1704326400, 0).UTC()) {
		t.Fatalf("timestamp = %v", last.Timestamp)
	}
}

func TestHistoricalRejectsInvalidSymbol(t *testing.T) {
	c := New(Config{ChartBaseURL: "http://127.0.0.1:0"}, testLogger(t), nil)
	series, err := c.Historical(context.Background(), "ptt.bk", "1y", "1d")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !series.Empty() {
		t.Fatalf("invalid symbol must yield an empty series")
	}
}

func TestQuoteDelayedFallback(t *testing.T) {
	srv := chartServer(t)
	// No quote API key configured, so the chart meta path is the source.
	c := New(Config{ChartBaseURL: srv.URL}, testLogger(t), nil)

	q, err := c.Quote(context.Background(), "PTT")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Source != "delayed" {
		t.Fatalf("source = %q, want delayed", q.Source)
	}
	if q.Price != 36.5 || q.PrevClose != 35.5 {
		t.Fatalf("price = %v prev = %v", q.Price, q.PrevClose)
	}
	if q.Change != 1.0 {
		t.Fatalf("change = %v", q.Change)
	}
}

func TestQuoteRealtime(t *testing.T) {
	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("symbol"); got != "PTT.BK" {
			t.Errorf("symbol param = %q", got)
		}
		if got := r.URL.Query().Get("token"); got != "k" {
			t.Errorf("token param = %q", got)
		}
		fmt.Fprint(w, `{"c":30.5,"d":0.5,"dp":1.67,"h":31,"l":30,"o":30.2,"pc":30,"v":123456,"t":1704067200}`)
	}))
	defer quoteSrv.Close()

	c := New(Config{QuoteBaseURL: quoteSrv.URL, QuoteAPIKey: "k"}, testLogger(t), nil)
	q, err := c.Quote(context.Background(), "PTT")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Source != "realtime" || q.Price != 30.5 || q.Volume != 123456 {
		t.Fatalf("quote = %+v", q)
	}
}

func TestQuoteRealtimeZeroFallsBack(t *testing.T) {
	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"c":0}`)
	}))
	defer quoteSrv.Close()
	chartSrv := chartServer(t)

	c := New(Config{ChartBaseURL: chartSrv.URL, QuoteBaseURL: quoteSrv.URL, QuoteAPIKey: "k"}, testLogger(t), nil)
	q, err := c.Quote(context.Background(), "PTT")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Source != "delayed" {
		t.Fatalf("source = %q, want delayed after a zero realtime price", q.Source)
	}
}

func TestDividendsFiltersAndSorts(t *testing.T) {
	now := time.Now()
	recent := now.AddDate(0, -1, 0).Unix()
	older := now.AddDate(-2, 0, 0).Unix()
	ancient := now.AddDate(-6, 0, 0).Unix()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[{
  "timestamp":[],
  "indicators":{"quote":[]},
  "events":{"dividends":{
	"a":{"amount":0.5,"date":%d},
	"b":{"amount":0.4,"date":%d},
	"c":{"amount":1.0,"date":%d}
  }}
}],"error":null}}`, recent, older, ancient)
	}))
	defer srv.Close()

	c := New(Config{ChartBaseURL: srv.URL}, testLogger(t), nil)
	divs, err := c.Dividends(context.Background(), "PTT")
	if err != nil {
		t.Fatalf("Dividends: %v", err)
	}
	if len(divs) != 2 {
		t.Fatalf("events = %d, want 2 inside the five-year window", len(divs))
	}
	if divs[0].Amount != 0.5 || divs[1].Amount != 0.4 {
		t.Fatalf("order = %v, want newest first", divs)
	}
	if divs[0].Year != divs[0].ExDate.Year() {
		t.Fatalf("year mismatch: %+v", divs[0])
	}
}

func TestInfoParsesFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v10/finance/quoteSummary/PTT.BK" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"quoteSummary":{"result":[{
  "price":{"longName":"PTT Public Company Limited","shortName":"PTT"},
  "summaryProfile":{"sector":"Energy","industry":"Oil & Gas Integrated"},
  "summaryDetail":{
	"marketCap":{"raw":1000000000000},
	"trailingPE":{"raw":10.5},
	"dividendYield":{"raw":0.05},
	"fiftyTwoWeekHigh":{"raw":40},
	"fiftyTwoWeekLow":{"raw":30},
	"beta":{"raw":0.9}
  },
  "defaultKeyStatistics":{"priceToBook":{"raw":1.2},"trailingEps":{"raw":3.4}},
  "financialData":{"returnOnEquity":{"raw":0.12}}
}]}}`)
	}))
	defer srv.Close()

	c := New(Config{ChartBaseURL: srv.URL}, testLogger(t), nil)
	info, err := c.Info(context.Background(), "PTT")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Name != "PTT Public Company Limited" || info.Sector != "Energy" {
		t.Fatalf("identity = %q / %q", info.Name, info.Sector)
	}
	if info.MarketCap != 1e12 || info.PERatio != 10.5 || info.PBV != 1.2 {
		t.Fatalf("valuation = %v / %v / %v", info.MarketCap, info.PERatio, info.PBV)
	}
	// Ratios arrive as fractions and are reported in percent.
	if info.ROE < 11.99 || info.ROE > 12.01 {
		t.Fatalf("roe = %v", info.ROE)
	}
	if info.DivYield < 4.99 || info.DivYield > 5.01 {
		t.Fatalf("yield = %v", info.DivYield)
	}
	if info.High52W != 40 || info.Low52W != 30 || info.Beta != 0.9 {
		t.Fatalf("range = %v..%v beta %v", info.Low52W, info.High52W, info.Beta)
	}
}
