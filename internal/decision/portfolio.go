package decision

import "math"

// PortfolioSummary aggregates a recommendation batch for presentation.
type PortfolioSummary struct {
	TotalAssets       int                `json:"total_assets"`
	Actions           map[Action]int     `json:"actions"`
	RiskDistribution  map[RiskLevel]int  `json:"risk_distribution"`
	AverageConfidence float64            `json:"average_confidence"`
	MarketSentiment   string             `json:"market_sentiment"`
	OverallRisk       RiskLevel          `json:"overall_risk"`
}

// SummarizePortfolio tallies actions and risk across a recommendation batch.
func SummarizePortfolio(recommendations map[string]Recommendation) PortfolioSummary {
	summary := PortfolioSummary{
		Actions:          map[Action]int{ActionBuy: 0, ActionSell: 0, ActionHold: 0},
		RiskDistribution: map[RiskLevel]int{RiskLow: 0, RiskMedium: 0, RiskHigh: 0},
	}

	total := 0.0
	for _, rec := range recommendations {
		summary.Actions[rec.Action]++
		summary.RiskDistribution[rec.RiskLevel]++
		total += rec.Confidence
	}

	summary.TotalAssets = len(recommendations)
	if summary.TotalAssets > 0 {
		summary.AverageConfidence = math.Round(total/float64(summary.TotalAssets)*100) / 100
	}
	summary.MarketSentiment = marketSentiment(summary.Actions)
	summary.OverallRisk = overallRisk(summary.RiskDistribution)
	return summary
}

// marketSentiment reads the batch as bullish or bearish when over 60% of
// verdicts lean one way.
func marketSentiment(actions map[Action]int) string {
	total := actions[ActionBuy] + actions[ActionSell] + actions[ActionHold]
	if total == 0 {
		return "NEUTRAL"
	}

	buyRatio := float64(actions[ActionBuy]) / float64(total)
	sellRatio := float64(actions[ActionSell]) / float64(total)
	if buyRatio > 0.6 {
		return "BULLISH"
	}
	if sellRatio > 0.6 {
		return "BEARISH"
	}
	return "NEUTRAL"
}

func overallRisk(distribution map[RiskLevel]int) RiskLevel {
	total := distribution[RiskLow] + distribution[RiskMedium] + distribution[RiskHigh]
	if total == 0 {
		return RiskMedium
	}

	highRatio := float64(distribution[RiskHigh]) / float64(total)
	if highRatio > 0.5 {
		return RiskHigh
	}
	if highRatio > 0.2 {
		return RiskMedium
	}
	return RiskLow
}

// SuggestPositionSize returns the portfolio fraction to commit, scaled by the
// risk level and the configured tolerance, capped at MaxPositionSize.
func SuggestPositionSize(riskLevel RiskLevel, cfg Config) float64 {
	var base float64
	switch riskLevel {
	case RiskLow:
		base = 0.15
	case RiskMedium:
		base = 0.10
	default:
		base = 0.05
	}

	size := math.Min(base*cfg.RiskTolerance, cfg.MaxPositionSize)
	return math.Round(size*1000) / 1000
}
