package models

// Request payloads for the HTTP surface. Transport tags only; the
// engine packages never see these types.

// AnalyzeRequest asks for the full per-symbol pipeline.
type AnalyzeRequest struct {
	Symbol    string `json:"symbol" query:"symbol" validate:"required,min=1,max=12"`
	Period    string `json:"period" query:"period" default:"1y"`
	Interval  string `json:"interval" query:"interval" default:"1d"`
	Timeframe string `json:"timeframe" query:"timeframe" default:"1D"`
}

// PatternsRequest asks for candlestick patterns on recent bars.
type PatternsRequest struct {
	Symbol        string `json:"symbol" query:"symbol" validate:"required,min=1,max=12"`
	Period        string `json:"period" query:"period" default:"6mo"`
	MinConfidence int    `json:"min_confidence" query:"min_confidence" default:"0" validate:"gte=0,lte=100"`
}

// BellCurveRequest asks for the mean-reversion snapshot.
type BellCurveRequest struct {
	Symbol string `json:"symbol" query:"symbol" validate:"required,min=1,max=12"`
	Period string `json:"period" query:"period" default:"1y"`
	Window int    `json:"window" query:"window" default:"60" validate:"gte=20,lte=250"`
}

// BacktestRequest asks for a strategy simulation.
type BacktestRequest struct {
	Symbol     string   `json:"symbol" validate:"required,min=1,max=12"`
	Period     string   `json:"period" default:"2y"`
	Strategy   Strategy `json:"strategy" default:"ema_cross" validate:"oneof=ema_cross rsi macd_cross bb_bounce score"`
	Capital    float64  `json:"capital" default:"100000" validate:"gt=0"`
	StopLossPc float64  `json:"stop_loss_pct" default:"0.05" validate:"gt=0,lte=0.5"`
}

// QuoteRequest asks for a realtime quote.
type QuoteRequest struct {
	Symbol string `json:"symbol" query:"symbol" validate:"required,min=1,max=12"`
}
