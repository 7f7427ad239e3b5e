package analyzer

import "market-advisor/internal/indicators"

// trendMultipliers seed the price projection per fused trend label.
var trendMultipliers = map[Trend]float64{
	TrendStrongBullish: 1.05,
	TrendBullish:       1.03,
	TrendNeutral:       1.01,
	TrendBearish:       0.98,
	TrendStrongBearish: 0.95,
}

// PredictPrice projects the price from the fused trend, with mean-reversion
// adjustments near range extremes and a blended momentum factor.
func PredictPrice(currentPrice float64, annual *indicators.AnnualSet, monthly *indicators.MonthlySet, trend Trend) float64 {
	multiplier, ok := trendMultipliers[trend]
	if !ok {
		multiplier = 1.01
	}

	if annual != nil {
		if annual.CurrentPosition > 0.85 {
			multiplier *= 0.98 // near the yearly high, bias down
		} else if annual.CurrentPosition < 0.15 {
			multiplier *= 1.02 // near the yearly low, bounce potential
		}
	}

	if monthly != nil {
		if monthly.CurrentMonthPosition > 0.9 {
			multiplier *= 0.99
		} else if monthly.CurrentMonthPosition < 0.1 {
			multiplier *= 1.01
		}
	}

	momentumAdjustment := 1.0
	if annual != nil {
		momentumAdjustment += (annual.Momentum3M / 100) * 0.2
	}
	if monthly != nil {
		momentumAdjustment += (monthly.Momentum1W / 100) * 0.1
	}
	multiplier *= momentumAdjustment

	return currentPrice * multiplier
}

// IdentifyPatterns collects chart-pattern tags from both windows plus a
// dual-confirmation tag when the fused trend is strong either way.
func IdentifyPatterns(annual *indicators.AnnualSet, monthly *indicators.MonthlySet, trend Trend) []string {
	var patterns []string

	if annual != nil {
		if annual.RSI14 > 70 {
			patterns = append(patterns, "OVERBOUGHT_ANNUAL")
		} else if annual.RSI14 < 30 {
			patterns = append(patterns, "OVERSOLD_ANNUAL")
		}
		if annual.CurrentPosition > 0.9 {
			patterns = append(patterns, "YEAR_HIGH_PROXIMITY")
		} else if annual.CurrentPosition < 0.1 {
			patterns = append(patterns, "YEAR_LOW_PROXIMITY")
		}
	}

	if monthly != nil {
		if monthly.RSI14 > 70 {
			patterns = append(patterns, "OVERBOUGHT_MONTHLY")
		} else if monthly.RSI14 < 30 {
			patterns = append(patterns, "OVERSOLD_MONTHLY")
		}
		if monthly.CurrentMonthPosition > 0.85 {
			patterns = append(patterns, "MONTH_HIGH_PROXIMITY")
		} else if monthly.CurrentMonthPosition < 0.15 {
			patterns = append(patterns, "MONTH_LOW_PROXIMITY")
		}
	}

	if trend == TrendStrongBullish {
		patterns = append(patterns, "DUAL_BULLISH_CONFIRMATION")
	} else if trend == TrendStrongBearish {
		patterns = append(patterns, "DUAL_BEARISH_CONFIRMATION")
	}

	if len(patterns) == 0 {
		return []string{"NEUTRAL_PATTERN"}
	}
	return patterns
}

// RiskReward blends upside-to-downside ratios from the two windows at 70/30.
// A zero downside reads as a favorable 2.0 default.
func RiskReward(annual *indicators.AnnualSet, monthly *indicators.MonthlySet, currentPrice float64) float64 {
	if currentPrice <= 0 {
		return 2.0
	}

	upside := 0.0
	downside := 0.0

	if annual != nil {
		upside += (annual.YearHigh - currentPrice) / currentPrice * 0.7
		downside += (currentPrice - annual.YearLow) / currentPrice * 0.7
	}
	if monthly != nil {
		upside += (monthly.MonthHigh - currentPrice) / currentPrice * 0.3
		downside += (currentPrice - monthly.MonthLow) / currentPrice * 0.3
	}

	if downside <= 0 {
		return 2.0
	}
	return round(upside/downside, 2)
}
