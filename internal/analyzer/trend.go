package analyzer

import "market-advisor/internal/indicators"

// Trend labels a market direction over some window.
type Trend string

const (
	TrendStrongBullish Trend = "STRONG_BULLISH"
	TrendBullish       Trend = "BULLISH"
	TrendNeutral       Trend = "NEUTRAL"
	TrendBearish       Trend = "BEARISH"
	TrendStrongBearish Trend = "STRONG_BEARISH"
)

// VolatilityClass buckets average volatility for the decision rules.
type VolatilityClass string

const (
	VolatilityVeryLow  VolatilityClass = "VERY_LOW"
	VolatilityLow      VolatilityClass = "LOW"
	VolatilityMedium   VolatilityClass = "MEDIUM"
	VolatilityHigh     VolatilityClass = "HIGH"
	VolatilityVeryHigh VolatilityClass = "VERY_HIGH"
)

// trendWeights maps trend labels to the integer weights used when fusing the
// annual and monthly verdicts.
var trendWeights = map[Trend]float64{
	TrendStrongBullish: 3,
	TrendBullish:       2,
	TrendNeutral:       0,
	TrendBearish:       -2,
	TrendStrongBearish: -3,
}

// AnnualTrend scores the long-window structure: moving-average ordering
// dominates, momentum and range position refine it.
func AnnualTrend(set *indicators.AnnualSet) Trend {
	if set == nil {
		return TrendNeutral
	}

	score := 0

	// Moving average stack. A missing SMA200 reads as zero, so any positive
	// SMA50 scores bullish; that matches how sparse histories have always
	// been graded.
	if set.SMA20 > set.SMA50 {
		score += 2
	} else if set.SMA20 < set.SMA50 {
		score -= 2
	}
	if set.SMA50 > set.SMA200 {
		score += 3
	} else if set.SMA50 < set.SMA200 {
		score -= 3
	}

	// Momentum.
	if set.Momentum3M > 10 {
		score++
	} else if set.Momentum3M < -10 {
		score--
	}
	if set.Momentum6M > 15 {
		score += 2
	} else if set.Momentum6M < -15 {
		score -= 2
	}

	// Position within the yearly range.
	if set.CurrentPosition > 0.8 {
		score++
	} else if set.CurrentPosition < 0.2 {
		score--
	}

	// RSI alignment across both periods.
	if set.RSI14 > 60 && set.RSI30 > 55 {
		score++
	} else if set.RSI14 < 40 && set.RSI30 < 45 {
		score--
	}

	switch {
	case score >= 4:
		return TrendStrongBullish
	case score >= 1:
		return TrendBullish
	case score <= -4:
		return TrendStrongBearish
	case score <= -1:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

// MonthlyTrend scores the short window: RSI, weekly momentum, and position in
// the monthly range.
func MonthlyTrend(set *indicators.MonthlySet) Trend {
	if set == nil {
		return TrendNeutral
	}

	score := 0

	if set.RSI14 > 60 {
		score += 2
	} else if set.RSI14 < 40 {
		score -= 2
	}

	if set.Momentum1W > 5 {
		score += 2
	} else if set.Momentum1W < -5 {
		score -= 2
	}

	if set.CurrentMonthPosition > 0.8 {
		score++
	} else if set.CurrentMonthPosition < 0.2 {
		score--
	}

	switch {
	case score >= 3:
		return TrendStrongBullish
	case score >= 1:
		return TrendBullish
	case score <= -3:
		return TrendStrongBearish
	case score <= -1:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

// CombineTrends fuses the two windows at a 60/40 split. The annual window
// dominates because it reflects structural trend; the monthly window captures
// near-term reversals.
func CombineTrends(annual, monthly Trend) Trend {
	combined := trendWeights[annual]*0.6 + trendWeights[monthly]*0.4

	switch {
	case combined >= 2:
		return TrendStrongBullish
	case combined >= 0.5:
		return TrendBullish
	case combined <= -2:
		return TrendStrongBearish
	case combined <= -0.5:
		return TrendBearish
	default:
		return TrendNeutral
	}
}

// DualConfidence scores how much the two windows agree, 25..95.
func DualConfidence(annual *indicators.AnnualSet, monthly *indicators.MonthlySet, volume24h float64) float64 {
	confidence := 50.0

	if annual != nil {
		if abs(annual.RSI14-annual.RSI30) < 10 {
			confidence += 9
		}
		if annual.VolatilityAnnual > 0.2 && annual.VolatilityAnnual < 0.8 {
			confidence += 6
		}
	}

	if monthly != nil {
		if monthly.RSI14 >= 40 && monthly.RSI14 <= 60 {
			confidence += 6
		}
		if monthly.Volatility10d > 0.1 && monthly.Volatility10d < 0.4 {
			confidence += 4
		}
	}

	if volume24h > 10_000_000 {
		confidence += 10
	} else if volume24h > 5_000_000 {
		confidence += 5
	}

	return clamp(confidence, 25, 95)
}

// DualVolatility averages whatever volatility readings are available and maps
// the result onto the class bands. No data reads as MEDIUM.
func DualVolatility(annual *indicators.AnnualSet, monthly *indicators.MonthlySet) VolatilityClass {
	sum := 0.0
	count := 0

	if annual != nil {
		sum += annual.VolatilityAnnual
		count++
	}
	if monthly != nil {
		sum += monthly.Volatility10d
		count++
	}
	if count == 0 {
		return VolatilityMedium
	}

	avg := sum / float64(count)
	switch {
	case avg > 0.8:
		return VolatilityVeryHigh
	case avg > 0.5:
		return VolatilityHigh
	case avg > 0.3:
		return VolatilityMedium
	case avg > 0.15:
		return VolatilityLow
	default:
		return VolatilityVeryLow
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
