package models

import "math"

// Frame is an OHLCV series extended with derived indicator columns.
// Columns are parallel slices indexed like Candles. NaN marks a value
// that is undefined because the bar lacks warm-up history; consumers
// must check Defined before using a cell.
type Frame struct {
	Series

	EMA9   []float64
	EMA21  []float64
	EMA50  []float64
	EMA200 []float64
	SMA20  []float64

	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BBUpper  []float64
	BBMiddle []float64
	BBLower  []float64
	BBWidth  []float64

	ATR     []float64
	ADX     []float64
	DIPlus  []float64
	DIMinus []float64

	StochRSIK []float64
	StochRSID []float64

	OBV []float64

	Tenkan  []float64
	Kijun   []float64
	SenkouA []float64
	SenkouB []float64
	Chikou  []float64

	VolSMA   []float64
	VolRatio []float64
}

// Defined reports whether v carries a real value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Undefined is the marker stored in warm-up cells.
func Undefined() float64 { return math.NaN() }

// At returns column[i], or NaN when the column is missing or short.
func At(col []float64, i int) float64 {
	if i < 0 || i >= len(col) {
		return math.NaN()
	}
	return col[i]
}

// LastOf returns the latest value of a column, NaN when absent.
func (f *Frame) LastOf(col []float64) float64 { return At(col, f.Len()-1) }

// PrevOf returns the second-to-last value of a column, NaN when absent.
func (f *Frame) PrevOf(col []float64) float64 { return At(col, f.Len()-2) }

// ValueOr returns v, or fallback when v is undefined.
func ValueOr(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}

// Trim removes the first n rows from the frame, keeping all columns
// aligned. Used to cut the warm-up prefix after indicator computation.
func (f *Frame) Trim(n int) {
	if n <= 0 {
		return
	}
	if n >= f.Len() {
		n = f.Len()
	}
	f.Candles = f.Candles[n:]
	cols := []*[]float64{
		&f.EMA9, &f.EMA21, &f.EMA50, &f.EMA200, &f.SMA20,
		&f.RSI, &f.MACD, &f.MACDSignal, &f.MACDHist,
		&f.BBUpper, &f.BBMiddle, &f.BBLower, &f.BBWidth,
		&f.ATR, &f.ADX, &f.DIPlus, &f.DIMinus,
		&f.StochRSIK, &f.StochRSID, &f.OBV,
		&f.Tenkan, &f.Kijun, &f.SenkouA, &f.SenkouB, &f.Chikou,
		&f.VolSMA, &f.VolRatio,
	}
	for _, c := range cols {
		if len(*c) >= n {
			*c = (*c)[n:]
		}
	}
}
