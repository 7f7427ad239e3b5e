package indicators

import "math"

// NeutralRSI is the documented fallback when a series is too short for RSI,
// or when it shows neither gains nor losses. Downstream rule bands treat 50
// as the neutral zone, so this value must not change.
const NeutralRSI = 50.0

// CalculateRSI calculates the Relative Strength Index over the trailing
// period deltas using Wilder-style simple averages.
func CalculateRSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return NeutralRSI
	}

	gains := 0.0
	losses := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return NeutralRSI // perfectly flat window
		}
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// CalculateSMA calculates the Simple Moving Average of the trailing window.
// Falls back to the last price when the series is too short.
func CalculateSMA(prices []float64, window int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < window {
		return prices[len(prices)-1]
	}

	sum := 0.0
	for i := len(prices) - window; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(window)
}

// CalculateEMA calculates the Exponential Moving Average, seeded with the SMA
// of the first period samples.
func CalculateEMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i] * multiplier) + (ema * (1 - multiplier))
	}
	return ema
}

// CalculateMomentum calculates the percent change against the price lag
// samples back. Returns 0 when the series does not reach that far.
func CalculateMomentum(prices []float64, lag int) float64 {
	if len(prices) < lag || lag <= 0 {
		return 0
	}
	past := prices[len(prices)-lag]
	if past == 0 {
		return 0
	}
	return (prices[len(prices)-1] - past) / past * 100
}

// CalculateVolatility calculates the sample standard deviation of
// day-over-day returns across the trailing window. Returns 0 when fewer than
// two return samples are available.
func CalculateVolatility(prices []float64, window int) float64 {
	if len(prices) < 3 {
		return 0
	}

	start := len(prices) - window
	if start < 1 {
		start = 1
	}
	var returns []float64
	for i := start; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) < 2 {
		return 0
	}
	return sampleStdev(returns)
}

// rangePosition locates the last price inside the window's high/low range,
// 0 at the low and 1 at the high. A degenerate (flat) range reads as 0.5.
func rangePosition(last, low, high float64) float64 {
	if high == low {
		return 0.5
	}
	pos := (last - low) / (high - low)
	return math.Min(1, math.Max(0, pos))
}

func highLow(prices []float64) (high, low float64) {
	high = prices[0]
	low = prices[0]
	for _, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low
}

// sampleStdev is the n-1 standard deviation.
func sampleStdev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(n-1))
}

// populationStdev is the n-denominator standard deviation, used by the
// Bollinger band and support-estimate math.
func populationStdev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(n))
}
