// Package indicators computes derived technical columns over OHLCV
// series. All functions are pure; warm-up cells are NaN, never zero.
package indicators

import (
	"math"

	"SETPulse/internal/domain/models"
)

// Standard parameter set for daily frames.
const (
	rsiLength   = 14
	atrLength   = 14
	adxLength   = 14
	bbLength    = 20
	bbStd       = 2.0
	stochLength = 14
	stochSmooth = 3
	volLength   = 20

	tenkanLength = 9
	kijunLength  = 26
	senkouLength = 52
)

// Compute extends a sanitized series into a full indicator frame and
// trims the warm-up prefix (rows where EMA21, RSI or MACD are still
// undefined). Returns an empty frame when nothing survives; it never
// fails hard on short input.
func Compute(s *models.Series) *models.Frame {
	f := &models.Frame{Series: models.Series{Symbol: s.Symbol, Candles: append([]models.Candle(nil), s.Candles...)}}
	n := f.Len()
	if n == 0 {
		return f
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	vols := make([]float64, n)
	for i, c := range f.Candles {
		closes[i], highs[i], lows[i], vols[i] = c.Close, c.High, c.Low, c.Volume
	}

	f.EMA9 = EMA(closes, 9)
	f.EMA21 = EMA(closes, 21)
	f.EMA50 = EMA(closes, 50)
	f.EMA200 = EMA(closes, 200)
	f.SMA20 = SMA(closes, 20)
	f.MACD, f.MACDSignal, f.MACDHist = MACD(closes, 12, 26, 9)
	f.RSI = RSI(closes, rsiLength)
	f.BBUpper, f.BBMiddle, f.BBLower, f.BBWidth = Bollinger(closes, bbLength, bbStd)
	f.ATR = ATR(highs, lows, closes, atrLength)
	f.ADX, f.DIPlus, f.DIMinus = ADX(highs, lows, closes, adxLength)
	f.StochRSIK, f.StochRSID = StochRSI(closes, stochLength, stochSmooth, stochSmooth)
	f.OBV = OBV(closes, vols)
	f.Tenkan, f.Kijun, f.SenkouA, f.SenkouB, f.Chikou = Ichimoku(highs, lows, closes, tenkanLength, kijunLength, senkouLength)
	f.VolSMA = SMA(vols, volLength)
	f.VolRatio = ratio(vols, f.VolSMA)

	f.Trim(firstDefined(f.EMA21, f.RSI, f.MACD))
	return f
}

// ComputeIntraday builds the lightweight frame used for short-interval
// bars: no EMA200, no ADX, no Ichimoku, shorter windows. Trims on
// EMA9, RSI and ATR.
func ComputeIntraday(s *models.Series) *models.Frame {
	f := &models.Frame{Series: models.Series{Symbol: s.Symbol, Candles: append([]models.Candle(nil), s.Candles...)}}
	n := f.Len()
	if n == 0 {
		return f
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	vols := make([]float64, n)
	for i, c := range f.Candles {
		closes[i], highs[i], lows[i], vols[i] = c.Close, c.High, c.Low, c.Volume
	}

	f.EMA9 = EMA(closes, 9)
	f.EMA21 = EMA(closes, 21)
	f.SMA20 = SMA(closes, 20)
	f.RSI = RSI(closes, rsiLength)
	f.MACD, f.MACDSignal, f.MACDHist = MACD(closes, 8, 17, 9)
	f.BBUpper, f.BBMiddle, f.BBLower, f.BBWidth = Bollinger(closes, 10, bbStd)
	f.ATR = ATR(highs, lows, closes, 7)
	f.OBV = OBV(closes, vols)
	f.VolSMA = SMA(vols, 10)
	f.VolRatio = ratio(vols, f.VolSMA)

	f.Trim(firstDefined(f.EMA9, f.RSI, f.ATR))
	return f
}

// EMA is an exponential moving average with alpha 2/(length+1), seeded
// by the first value rather than an SMA prefix. Defined from index 0.
func EMA(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(length) + 1.0)
	ema := values[0]
	out[0] = ema
	for i := 1; i < len(values); i++ {
		ema = alpha*values[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// SMA is a simple moving average; NaN until the window fills.
func SMA(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if length <= 0 || len(values) < length {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= length {
			sum -= values[i-length]
		}
		if i >= length-1 {
			out[i] = sum / float64(length)
		}
	}
	return out
}

// RSI is Wilder's relative strength index: gains and losses smoothed
// with alpha 1/length, seeded by the simple mean of the first window.
// When the average loss reaches zero the output saturates at 100 (the
// NaN-vs-100 decision goes to 100, matching the smoothing limit).
func RSI(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	if len(values) <= length {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= length; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(length)
	avgLoss /= float64(length)
	out[length] = rsiFrom(avgGain, avgLoss)
	for i := length + 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(length-1) + gain) / float64(length)
		avgLoss = (avgLoss*float64(length-1) + loss) / float64(length)
		out[i] = rsiFrom(avgGain, avgLoss)
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns line, signal and histogram for the given EMA lengths.
func MACD(values []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)
	line = nanSlice(len(values))
	for i := range values {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(line, signal)
	hist = nanSlice(len(values))
	for i := range values {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// Bollinger returns upper/mid/lower bands and relative width. The
// standard deviation is the sample deviation over the window.
func Bollinger(values []float64, length int, k float64) (upper, mid, lower, width []float64) {
	n := len(values)
	upper, mid, lower, width = nanSlice(n), SMA(values, length), nanSlice(n), nanSlice(n)
	for i := length - 1; i < n; i++ {
		m := mid[i]
		if !models.Defined(m) {
			continue
		}
		var ss float64
		for j := i - length + 1; j <= i; j++ {
			d := values[j] - m
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(length-1))
		upper[i] = m + k*sd
		lower[i] = m - k*sd
		if m != 0 {
			width[i] = (upper[i] - lower[i]) / m
		}
	}
	return upper, mid, lower, width
}

// TrueRange of bar i given the previous close; bar 0 falls back to
// high-low.
func trueRange(high, low, prevClose float64, first bool) float64 {
	tr := high - low
	if first {
		return tr
	}
	if d := math.Abs(high - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// ATR is the Wilder-smoothed true range: alpha 1/length seeded by the
// simple mean of the first window.
func ATR(highs, lows, closes []float64, length int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n <= length {
		return out
	}
	sum := 0.0
	for i := 0; i <= length; i++ {
		sum += trueRange(highs[i], lows[i], at(closes, i-1), i == 0)
	}
	atr := sum / float64(length+1)
	out[length] = atr
	for i := length + 1; i < n; i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1], false)
		atr = (atr*float64(length-1) + tr) / float64(length)
		out[i] = atr
	}
	return out
}

// ADX returns the average directional index and both directional
// indicators. Directional movement is smoothed with the same span EMA
// used elsewhere; DX is smoothed again into ADX.
func ADX(highs, lows, closes []float64, length int) (adx, diPlus, diMinus []float64) {
	n := len(closes)
	adx, diPlus, diMinus = nanSlice(n), nanSlice(n), nanSlice(n)
	if n < 2 {
		return adx, diPlus, diMinus
	}

	dmPlus := make([]float64, n)
	dmMinus := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > 0 && up > down {
			dmPlus[i] = up
		}
		if down > 0 && down > up {
			dmMinus[i] = down
		}
	}

	atr := ATR(highs, lows, closes, length)
	smPlus := EMA(dmPlus, length)
	smMinus := EMA(dmMinus, length)

	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		a := atr[i]
		if !models.Defined(a) || a == 0 {
			continue
		}
		diPlus[i] = 100 * smPlus[i] / a
		diMinus[i] = 100 * smMinus[i] / a
		sum := diPlus[i] + diMinus[i]
		if sum != 0 {
			dx[i] = 100 * math.Abs(diPlus[i]-diMinus[i]) / sum
		}
	}

	// Smooth DX into ADX, skipping the undefined prefix.
	start := -1
	for i, v := range dx {
		if models.Defined(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return adx, diPlus, diMinus
	}
	alpha := 2.0 / (float64(length) + 1.0)
	cur := dx[start]
	adx[start] = cur
	for i := start + 1; i < n; i++ {
		if !models.Defined(dx[i]) {
			continue
		}
		cur = alpha*dx[i] + (1-alpha)*cur
		adx[i] = cur
	}
	return adx, diPlus, diMinus
}

// StochRSI applies a stochastic oscillator to the RSI series and
// smooths it twice into K and D lines.
func StochRSI(values []float64, length, k, d int) (kLine, dLine []float64) {
	rsi := RSI(values, length)
	n := len(values)
	stoch := nanSlice(n)
	for i := 0; i < n; i++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		ok := true
		for j := i - length + 1; j <= i; j++ {
			v := at(rsi, j)
			if !models.Defined(v) {
				ok = false
				break
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if !ok || i-length+1 < 0 {
			continue
		}
		if hi > lo {
			stoch[i] = 100 * (rsi[i] - lo) / (hi - lo)
		}
	}
	kLine = rollingMean(stoch, k)
	dLine = rollingMean(kLine, d)
	return kLine, dLine
}

// OBV is cumulative volume signed by the close-to-close direction.
func OBV(closes, volumes []float64) []float64 {
	out := nanSlice(len(closes))
	if len(closes) == 0 {
		return out
	}
	obv := 0.0
	out[0] = 0
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv += volumes[i]
		case closes[i] < closes[i-1]:
			obv -= volumes[i]
		}
		out[i] = obv
	}
	return out
}

// Ichimoku returns the five cloud lines. Senkou A and B are shifted
// forward by the kijun period; Chikou is the close shifted backward.
func Ichimoku(highs, lows, closes []float64, tenkan, kijun, senkou int) (t, k, sa, sb, ch []float64) {
	n := len(closes)
	t = midpoint(highs, lows, tenkan)
	k = midpoint(highs, lows, kijun)
	sa, sb, ch = nanSlice(n), nanSlice(n), nanSlice(n)
	base := midpoint(highs, lows, senkou)
	for i := 0; i < n; i++ {
		if j := i - kijun; j >= 0 {
			if models.Defined(t[j]) && models.Defined(k[j]) {
				sa[i] = (t[j] + k[j]) / 2
			}
			sb[i] = base[j]
		}
		if j := i + kijun; j < n {
			ch[i] = closes[j]
		}
	}
	return t, k, sa, sb, ch
}

func midpoint(highs, lows []float64, length int) []float64 {
	n := len(highs)
	out := nanSlice(n)
	for i := length - 1; i < n; i++ {
		hi, lo := math.Inf(-1), math.Inf(1)
		for j := i - length + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		out[i] = (hi + lo) / 2
	}
	return out
}

// ratio divides a by b element-wise with NaN on undefined or zero b.
func ratio(a, b []float64) []float64 {
	out := nanSlice(len(a))
	for i := range a {
		if i < len(b) && models.Defined(b[i]) && b[i] != 0 {
			out[i] = a[i] / b[i]
		}
	}
	return out
}

// rollingMean averages the last `length` defined-only windows; a window
// containing NaN yields NaN.
func rollingMean(values []float64, length int) []float64 {
	out := nanSlice(len(values))
	for i := length - 1; i < len(values); i++ {
		sum, ok := 0.0, true
		for j := i - length + 1; j <= i; j++ {
			if !models.Defined(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(length)
		}
	}
	return out
}

// firstDefined returns the first row index at which every given column
// is defined; len(cols[0]) when no such row exists (trim-all).
func firstDefined(cols ...[]float64) int {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return 0
	}
	n := len(cols[0])
	for i := 0; i < n; i++ {
		ok := true
		for _, c := range cols {
			if !models.Defined(at(c, i)) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return n
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func at(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return math.NaN()
	}
	return values[i]
}
