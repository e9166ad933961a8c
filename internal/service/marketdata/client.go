// Package marketdata fetches Thai equity prices from the chart vendor
// with a realtime-quote endpoint layered on top. All methods fail soft:
// vendor trouble surfaces as empty series or zero-price quotes, never
// panics.
package marketdata

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"SETPulse/internal/domain/models"
	"SETPulse/internal/domain/repository"
	"SETPulse/internal/service/ratelimit"
	"SETPulse/pkg/http"
	"SETPulse/pkg/logger"
)

// SET tickers carry the .BK suffix on the vendor side.
const symbolSuffix = ".BK"

// Vendor rate limits are undocumented; a small token bucket per host
// keeps scanner fan-out from tripping them.
const (
	vendorBurst   = 5.0
	vendorPerSec  = 2.0
	throttleSleep = 200 * time.Millisecond
)

var symbolRe = regexp.MustCompile(`^[A-Z0-9]{1,12}(-R)?$`)

// Config wires the vendor endpoints.
type Config struct {
	ChartBaseURL string
	QuoteBaseURL string
	QuoteAPIKey  string
	Timeout      time.Duration
}

// Client implements repository.MarketData over the vendor HTTP APIs.
type Client struct {
	cfg     Config
	http    *http.Client
	log     *logger.Logger
	metrics repository.Metrics
	limiter *ratelimit.Limiter
}

// New builds a market data client. metrics may be nil in tests.
func New(cfg Config, log *logger.Logger, metrics repository.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    http.NewClient(http.WithTimeout(cfg.Timeout)),
		log:     log,
		metrics: metrics,
		limiter: ratelimit.New(),
	}
}

// throttle blocks until the per-host bucket yields a token or ctx ends.
func (c *Client) throttle(ctx context.Context, host string) error {
	for !c.limiter.Allow(host, vendorBurst, vendorPerSec) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(throttleSleep):
		}
	}
	return nil
}

// ValidSymbol reports whether s looks like a SET ticker.
func ValidSymbol(s string) bool { return symbolRe.MatchString(s) }

// chartResponse mirrors the vendor chart payload; only the fields the
// engine reads.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				Currency           string  `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Historical fetches OHLCV bars. Vendor failures and unknown symbols
// come back as an empty series with a logged warning.
func (c *Client) Historical(ctx context.Context, symbol, period, interval string) (*models.Series, error) {
	series := &models.Series{Symbol: symbol}
	if !ValidSymbol(symbol) {
		return series, fmt.Errorf("marketdata: invalid symbol %q", symbol)
	}
	period = repository.NormalizePeriod(period)
	interval = repository.NormalizeInterval(interval)

	if err := c.throttle(ctx, "chart"); err != nil {
		return series, err
	}
	start := time.Now()
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s%s", c.cfg.ChartBaseURL, symbol, symbolSuffix),
		QueryParams: map[string][]string{
			"range":    {period},
			"interval": {interval},
			"events":   {"div"},
		},
	}, &resp)
	c.observe("historical", start)
	if err != nil {
		c.fetchError("historical")
		c.log.Warn("historical fetch failed",
			logger.String("symbol", symbol),
			logger.String("period", period),
			logger.Error(err))
		return series, err
	}
	if resp.Chart.Error != nil || len(resp.Chart.Result) == 0 {
		c.fetchError("historical")
		return series, nil
	}

	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return series, nil
	}
	q := res.Indicators.Quote[0]
	for i, ts := range res.Timestamp {
		if i >= len(q.Close) {
			break
		}
		series.Candles = append(series.Candles, models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      at(q.Open, i),
			High:      at(q.High, i),
			Low:       at(q.Low, i),
			Close:     at(q.Close, i),
			Volume:    at(q.Volume, i),
		})
	}
	series.Sanitize()
	return series, nil
}

// quoteResponse mirrors the realtime quote endpoint.
type quoteResponse struct {
	Current   float64 `json:"c"`
	Change    float64 `json:"d"`
	PctChange float64 `json:"dp"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Open      float64 `json:"o"`
	PrevClose float64 `json:"pc"`
	Volume    int64   `json:"v"`
	Timestamp int64   `json:"t"`
}

// Quote tries the realtime endpoint first and falls back to the chart
// meta price. A zero-price quote means "vendor had nothing".
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	quote := models.Quote{Symbol: symbol, Source: "unknown"}
	if !ValidSymbol(symbol) {
		return quote, fmt.Errorf("marketdata: invalid symbol %q", symbol)
	}

	if c.cfg.QuoteAPIKey != "" {
		if q, ok := c.realtimeQuote(ctx, symbol); ok {
			return q, nil
		}
	}
	return c.delayedQuote(ctx, symbol)
}

func (c *Client) realtimeQuote(ctx context.Context, symbol string) (models.Quote, bool) {
	if err := c.throttle(ctx, "quote"); err != nil {
		return models.Quote{}, false
	}
	start := time.Now()
	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    c.cfg.QuoteBaseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol + symbolSuffix},
			"token":  {c.cfg.QuoteAPIKey},
		},
	}, &resp)
	c.observe("quote", start)
	if err != nil || resp.Current <= 0 {
		if err != nil {
			c.fetchError("quote")
		}
		return models.Quote{}, false
	}
	return models.Quote{
		Symbol:    symbol,
		Price:     resp.Current,
		Change:    resp.Change,
		PctChange: resp.PctChange,
		Open:      resp.Open,
		High:      resp.High,
		Low:       resp.Low,
		PrevClose: resp.PrevClose,
		Volume:    resp.Volume,
		Timestamp: time.Unix(resp.Timestamp, 0).UTC(),
		Source:    "realtime",
	}, true
}

// delayedQuote derives a snapshot from the newest daily bar; the chart
// feed lags the tape by about fifteen minutes.
func (c *Client) delayedQuote(ctx context.Context, symbol string) (models.Quote, error) {
	quote := models.Quote{Symbol: symbol, Source: "delayed"}
	series, err := c.Historical(ctx, symbol, "5d", "1d")
	if err != nil || series.Empty() {
		return models.Quote{Symbol: symbol, Source: "unknown"}, err
	}

	last := series.Last()
	prev := last.Close
	if series.Len() >= 2 {
		prev = series.Candles[series.Len()-2].Close
	}
	quote.Price = last.Close
	quote.Open = last.Open
	quote.High = last.High
	quote.Low = last.Low
	quote.PrevClose = prev
	quote.Volume = int64(last.Volume)
	quote.Timestamp = last.Timestamp
	quote.Change = last.Close - prev
	if prev != 0 {
		quote.PctChange = quote.Change / prev * 100
	}
	return quote, nil
}

// Dividends returns ex-dividend events from the last five years,
// newest first.
func (c *Client) Dividends(ctx context.Context, symbol string) ([]models.Dividend, error) {
	if !ValidSymbol(symbol) {
		return nil, fmt.Errorf("marketdata: invalid symbol %q", symbol)
	}

	if err := c.throttle(ctx, "chart"); err != nil {
		return nil, err
	}
	start := time.Now()
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s%s", c.cfg.ChartBaseURL, symbol, symbolSuffix),
		QueryParams: map[string][]string{
			"range":    {"5y"},
			"interval": {"1d"},
			"events":   {"div"},
		},
	}, &resp)
	c.observe("dividends", start)
	if err != nil {
		c.fetchError("dividends")
		return nil, err
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	cutoff := time.Now().AddDate(-5, 0, 0)
	var out []models.Dividend
	for _, d := range resp.Chart.Result[0].Events.Dividends {
		ex := time.Unix(d.Date, 0).UTC()
		if ex.Before(cutoff) {
			continue
		}
		out = append(out, models.Dividend{ExDate: ex, Amount: d.Amount, Year: ex.Year()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExDate.After(out[j].ExDate) })
	return out, nil
}

// infoResponse mirrors the vendor fundamentals payload.
type infoResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"price"`
			SummaryProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"summaryProfile"`
			SummaryDetail struct {
				MarketCap        rawNumber `json:"marketCap"`
				TrailingPE       rawNumber `json:"trailingPE"`
				DividendYield    rawNumber `json:"dividendYield"`
				FiftyTwoWeekHigh rawNumber `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  rawNumber `json:"fiftyTwoWeekLow"`
				Beta             rawNumber `json:"beta"`
			} `json:"summaryDetail"`
			KeyStatistics struct {
				PriceToBook rawNumber `json:"priceToBook"`
				TrailingEps rawNumber `json:"trailingEps"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				ReturnOnEquity rawNumber `json:"returnOnEquity"`
			} `json:"financialData"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

type rawNumber struct {
	Raw float64 `json:"raw"`
}

// Info fetches company fundamentals. Missing fields come back zeroed;
// a failed call returns a stub carrying only the symbol.
func (c *Client) Info(ctx context.Context, symbol string) (models.StockInfo, error) {
	info := models.StockInfo{Symbol: symbol, Name: symbol}
	if !ValidSymbol(symbol) {
		return info, fmt.Errorf("marketdata: invalid symbol %q", symbol)
	}

	if err := c.throttle(ctx, "chart"); err != nil {
		return info, err
	}
	start := time.Now()
	var resp infoResponse
	err := c.http.SendAndParse(ctx, &http.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/v10/finance/quoteSummary/%s%s", c.cfg.ChartBaseURL, symbol, symbolSuffix),
		QueryParams: map[string][]string{
			"modules": {"price,summaryProfile,summaryDetail,defaultKeyStatistics,financialData"},
		},
	}, &resp)
	c.observe("info", start)
	if err != nil {
		c.fetchError("info")
		return info, err
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return info, nil
	}

	r := resp.QuoteSummary.Result[0]
	if r.Price.LongName != "" {
		info.Name = r.Price.LongName
	} else if r.Price.ShortName != "" {
		info.Name = r.Price.ShortName
	}
	info.Sector = r.SummaryProfile.Sector
	info.Industry = r.SummaryProfile.Industry
	info.MarketCap = r.SummaryDetail.MarketCap.Raw
	info.PERatio = r.SummaryDetail.TrailingPE.Raw
	info.PBV = r.KeyStatistics.PriceToBook.Raw
	info.EPS = r.KeyStatistics.TrailingEps.Raw
	info.ROE = r.FinancialData.ReturnOnEquity.Raw * 100
	info.DivYield = r.SummaryDetail.DividendYield.Raw * 100
	info.High52W = r.SummaryDetail.FiftyTwoWeekHigh.Raw
	info.Low52W = r.SummaryDetail.FiftyTwoWeekLow.Raw
	info.Beta = r.SummaryDetail.Beta.Raw
	return info, nil
}

func (c *Client) observe(op string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}

func (c *Client) fetchError(kind string) {
	if c.metrics != nil {
		c.metrics.RecordFetchError(kind)
	}
}

func at(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}
