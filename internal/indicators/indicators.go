// Package indicators converts ordered price/volume series into the technical
// indicator sets consumed by the analyzer. Every calculation degrades to a
// documented neutral default instead of failing when the series is too short;
// downstream rule bands depend on those exact defaults.
package indicators

// Neutral defaults applied when an indicator cannot be computed. Kept in one
// place so analyzer and decision code never drift apart on what "no data"
// reads as.
const (
	NeutralVolatility    = 0.5
	NeutralRangePosition = 0.5
)

// AnnualSet holds the long-window (~1 year of daily samples) indicators.
// Fields that could not be computed hold their neutral default and are named
// in Defaulted, so consumers and tests can tell a genuine reading from a
// data-starved fallback.
type AnnualSet struct {
	RSI14               float64     `json:"rsi_14"`
	RSI30               float64     `json:"rsi_30"`
	SMA20               float64     `json:"sma_20"`
	SMA50               float64     `json:"sma_50"`
	SMA100              float64     `json:"sma_100"`
	SMA200              float64     `json:"sma_200"`
	DistanceToSMA200Pct float64     `json:"distance_to_sma200_pct"`
	BBUpper             float64     `json:"bb_upper"`
	BBLower             float64     `json:"bb_lower"`
	BBWidth             float64     `json:"bb_width"`
	MACD                float64     `json:"macd"`
	MACDSignal          float64     `json:"macd_signal"`
	MACDHistogram       float64     `json:"macd_histogram"`
	Volatility30d       float64     `json:"volatility_30d"`
	VolatilityAnnual    float64     `json:"volatility_annual"`
	YearHigh            float64     `json:"year_high"`
	YearLow             float64     `json:"year_low"`
	CurrentPosition     float64     `json:"current_position"`
	InvalidationLevel   float64     `json:"invalidation_level"`
	ATR                 float64     `json:"atr"`
	Momentum3M          float64     `json:"momentum_3m"`
	Momentum6M          float64     `json:"momentum_6m"`
	VolumeTrend         VolumeTrend `json:"volume_trend"`

	Defaulted []string `json:"defaulted,omitempty"`
}

// MonthlySet holds the short-window (~30 daily samples) indicators.
type MonthlySet struct {
	RSI14                float64     `json:"rsi_14"`
	SMA20                float64     `json:"sma_20"`
	BBUpper              float64     `json:"bb_upper"`
	BBLower              float64     `json:"bb_lower"`
	BBWidth              float64     `json:"bb_width"`
	Volatility10d        float64     `json:"volatility_10d"`
	MonthHigh            float64     `json:"month_high"`
	MonthLow             float64     `json:"month_low"`
	CurrentMonthPosition float64     `json:"current_month_position"`
	Momentum1W           float64     `json:"momentum_1w"`
	VolumeTrend          VolumeTrend `json:"volume_trend"`
	ATR                  float64     `json:"atr"`

	Defaulted []string `json:"defaulted,omitempty"`
}

// CalculateAnnual computes the long-window indicator set. Returns nil when
// fewer than 50 samples are available; callers treat a nil set the same way
// they treat a symbol with no annual history.
func CalculateAnnual(prices, volumes []float64) *AnnualSet {
	if len(prices) < 50 {
		return nil
	}

	set := &AnnualSet{
		RSI14: CalculateRSI(prices, 14),
		RSI30: CalculateRSI(prices, 30),
		SMA20: CalculateSMA(prices, 20),
		SMA50: CalculateSMA(prices, 50),
	}
	last := prices[len(prices)-1]

	if len(prices) >= 100 {
		set.SMA100 = CalculateSMA(prices, 100)
	} else {
		set.markDefaulted("sma_100")
	}
	if len(prices) >= 200 {
		set.SMA200 = CalculateSMA(prices, 200)
		set.DistanceToSMA200Pct = (last - set.SMA200) / set.SMA200 * 100
	} else {
		set.markDefaulted("sma_200", "distance_to_sma200_pct")
	}

	set.BBUpper, set.BBLower, set.BBWidth = bollinger(prices)

	set.MACD, set.MACDSignal, set.MACDHistogram = macd(prices)

	set.Volatility30d = CalculateVolatility(prices, 31)
	if len(prices) >= 252 {
		set.VolatilityAnnual = CalculateVolatility(prices, 253)
	} else {
		set.VolatilityAnnual = NeutralVolatility
		set.markDefaulted("volatility_annual")
	}

	high, low := highLow(prices)
	set.YearHigh = high
	set.YearLow = low
	set.CurrentPosition = rangePosition(last, low, high)

	set.InvalidationLevel = CalculateInvalidationLevel(prices)
	set.ATR = CalculateATR(prices, 14)

	if len(prices) >= 90 {
		set.Momentum3M = CalculateMomentum(prices, 90)
	} else {
		set.markDefaulted("momentum_3m")
	}
	if len(prices) >= 180 {
		set.Momentum6M = CalculateMomentum(prices, 180)
	} else {
		set.markDefaulted("momentum_6m")
	}

	set.VolumeTrend = CalculateVolumeTrend(prices, volumes)
	return set
}

// CalculateMonthly computes the short-window indicator set. Returns nil when
// fewer than 20 samples are available.
func CalculateMonthly(prices, volumes []float64) *MonthlySet {
	if len(prices) < 20 {
		return nil
	}

	set := &MonthlySet{
		RSI14: CalculateRSI(prices, 14),
		SMA20: CalculateSMA(prices, 20),
	}
	last := prices[len(prices)-1]

	set.BBUpper, set.BBLower, set.BBWidth = bollinger(prices)
	set.Volatility10d = CalculateVolatility(prices, 11)

	high, low := highLow(prices)
	set.MonthHigh = high
	set.MonthLow = low

	// Position is read against the trailing 20 samples, not the full month.
	lookHigh, lookLow := highLow(prices[len(prices)-20:])
	set.CurrentMonthPosition = rangePosition(last, lookLow, lookHigh)

	set.Momentum1W = CalculateMomentum(prices, 7)
	set.VolumeTrend = CalculateVolumeTrend(prices, volumes)
	set.ATR = CalculateATR(prices, 14)
	return set
}

func (s *AnnualSet) markDefaulted(names ...string) {
	s.Defaulted = append(s.Defaulted, names...)
}

// bollinger returns the 20-period Bollinger band at 2 standard deviations,
// with the width normalized by the middle band.
func bollinger(prices []float64) (upper, lower, width float64) {
	if len(prices) < 20 {
		return 0, 0, 0
	}

	window := prices[len(prices)-20:]
	middle := CalculateSMA(prices, 20)
	stdDev := populationStdev(window)

	upper = middle + 2*stdDev
	lower = middle - 2*stdDev
	if middle != 0 {
		width = (upper - lower) / middle
	}
	return upper, lower, width
}

// macd returns the 12/26 MACD line plus a 9-period signal line computed over
// the MACD series itself.
func macd(prices []float64) (line, signal, histogram float64) {
	if len(prices) < 26 {
		return 0, 0, 0
	}

	diffs := make([]float64, 0, len(prices)-25)
	for i := 26; i <= len(prices); i++ {
		diffs = append(diffs, CalculateEMA(prices[:i], 12)-CalculateEMA(prices[:i], 26))
	}

	line = diffs[len(diffs)-1]
	signal = CalculateEMA(diffs, 9)
	return line, signal, line - signal
}
