package models

import "time"

// Quote is a realtime (or vendor-delayed) price snapshot.
// Price == 0 means the vendor had nothing; callers fall back to the
// last historical close.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	PctChange float64   `json:"pct_change"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	PrevClose float64   `json:"prev_close"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Unavailable reports whether the quote carries no usable price.
func (q Quote) Unavailable() bool { return q.Price <= 0 }

// Dividend is one ex-dividend event.
type Dividend struct {
	ExDate time.Time `json:"ex_date"`
	Amount float64   `json:"amount"`
	Year   int       `json:"year"`
}

// StockInfo is company context used by the recommendation surface only.
type StockInfo struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	Industry     string  `json:"industry"`
	MarketCap    float64 `json:"market_cap"`
	PERatio      float64 `json:"pe_ratio"`
	PBV          float64 `json:"pbv"`
	EPS          float64 `json:"eps"`
	ROE          float64 `json:"roe"`
	DivYield     float64 `json:"div_yield"`
	High52W      float64 `json:"high_52w"`
	Low52W       float64 `json:"low_52w"`
	Beta         float64 `json:"beta"`
}
