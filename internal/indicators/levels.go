package indicators

import (
	"math"
	"sort"
)

// DefaultATRFraction sizes the ATR fallback when a series is too short:
// 2% of the last price.
const DefaultATRFraction = 0.02

// CalculateATR calculates the Average True Range over the trailing period.
// With daily close-only series, high and low are both taken as the close, so
// the true range collapses to the absolute close-to-close move. This
// underestimates a real OHLC ATR; kept deliberately until intrabar data is
// available, since every stop-loss threshold downstream is tuned to it.
func CalculateATR(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period+1 {
		return prices[len(prices)-1] * DefaultATRFraction
	}

	trueRanges := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		high := prices[i]
		low := prices[i]
		prevClose := prices[i-1]

		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		trueRanges = append(trueRanges, tr)
	}

	n := period
	if len(trueRanges) < n {
		n = len(trueRanges)
	}
	sum := 0.0
	for i := len(trueRanges) - n; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(n)
}

// CalculateInvalidationLevel derives a support-based stop suggestion from the
// trailing 20 samples: the nearest local minimum below the current price, or
// a statistical estimate when no clean support exists. The level is widened
// with recent volatility and never sits more than 15% below current price.
func CalculateInvalidationLevel(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	current := prices[len(prices)-1]
	if len(prices) < 20 {
		return current * 0.95
	}

	recent := prices[len(prices)-20:]

	// Local minima: at or below the two neighbors on each side.
	var supports []float64
	for i := 2; i < len(recent)-2; i++ {
		if recent[i] <= recent[i-1] && recent[i] <= recent[i-2] &&
			recent[i] <= recent[i+1] && recent[i] <= recent[i+2] {
			supports = append(supports, recent[i])
		}
	}

	var level float64
	if len(supports) == 0 {
		level = statisticalSupport(recent, current)
	} else {
		nearest := 0.0
		found := false
		for _, s := range supports {
			if s < current && s > nearest {
				nearest = s
				found = true
			}
		}
		if found {
			level = nearest
		} else {
			// Every support sits above current price; fall back to the mean.
			mean := 0.0
			for _, s := range supports {
				mean += s
			}
			mean /= float64(len(supports))
			level = math.Min(mean, current*0.95)
		}
	}

	// Widen the gap with recent volatility, at most an extra 5%.
	vol := CalculateVolatility(prices, 11)
	adjustment := math.Min(0.05, vol*2)
	level -= current * adjustment

	// Never more than 15% below current.
	return math.Max(level, current*0.85)
}

// statisticalSupport estimates support as mean - 2*stdev of the lowest third
// of the window, floored at 90% of current price.
func statisticalSupport(window []float64, current float64) float64 {
	lows := append([]float64(nil), window...)
	sort.Float64s(lows)
	lows = lows[:len(lows)/3]
	if len(lows) == 0 {
		return current * 0.92
	}

	mean := 0.0
	for _, v := range lows {
		mean += v
	}
	mean /= float64(len(lows))
	return math.Max(mean-2*populationStdev(lows), current*0.9)
}
