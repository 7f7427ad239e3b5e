// Package analyzer fuses dual-horizon indicator sets into a per-asset
// trend/confidence/volatility verdict with a price projection. Each analysis
// is a value recomputed from inputs; nothing here holds state across runs, so
// batches are safe to parallelize per asset.
package analyzer

import (
	"math"

	"github.com/rs/zerolog"

	"market-advisor/internal/indicators"
	"market-advisor/internal/marketdata"
)

// Analysis is the per-asset verdict produced by one run.
type Analysis struct {
	Symbol       string `json:"symbol"`
	Trend        Trend  `json:"trend"`
	AnnualTrend  Trend  `json:"annual_trend"`
	MonthlyTrend Trend  `json:"monthly_trend"`

	Confidence float64         `json:"confidence"`
	Volatility VolatilityClass `json:"volatility"`

	PredictedPrice float64  `json:"predicted_price"`
	CurrentPrice   float64  `json:"current_price"`
	PriceChangePct float64  `json:"price_change_pct"`
	Patterns       []string `json:"patterns"`

	RiskRewardRatio         float64                `json:"risk_reward_ratio"`
	VolumeTrend             indicators.VolumeTrend `json:"volume_trend"`
	DistanceToSMA200Pct     float64                `json:"distance_to_sma200_pct"`
	InvalidationLevel       float64                `json:"invalidation_level"`
	InvalidationDistancePct float64                `json:"invalidation_distance_pct"`
	ATR                     float64                `json:"atr"`
	ATRPct                  float64                `json:"atr_pct"`
	DynamicStopLoss         float64                `json:"dynamic_stop_loss"`

	// AnalysisDepth distinguishes a full dual-window run from a degraded one.
	AnalysisDepth string `json:"analysis_depth"`

	Annual  *indicators.AnnualSet  `json:"annual_metrics,omitempty"`
	Monthly *indicators.MonthlySet `json:"monthly_metrics,omitempty"`
}

// AnnualRSI14 returns the long-window RSI(14), neutral when no annual data.
func (a Analysis) AnnualRSI14() float64 {
	if a.Annual == nil {
		return indicators.NeutralRSI
	}
	return a.Annual.RSI14
}

// Analyzer runs the dual-horizon pipeline over a market snapshot.
type Analyzer struct {
	logger zerolog.Logger
}

// New creates an Analyzer.
func New(logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		logger: logger.With().Str("component", "Analyzer").Logger(),
	}
}

// Analyze runs the full pipeline for every asset in the snapshot. A bad asset
// degrades to a neutral analysis; it never fails the batch.
func (a *Analyzer) Analyze(snapshot map[string]marketdata.AssetData) map[string]Analysis {
	results := make(map[string]Analysis, len(snapshot))
	for symbol, data := range snapshot {
		results[symbol] = a.AnalyzeAsset(symbol, data)
	}
	return results
}

// AnalyzeAsset runs indicator calculation, trend fusion, and price projection
// for one asset.
func (a *Analyzer) AnalyzeAsset(symbol string, data marketdata.AssetData) Analysis {
	if data.CurrentPrice <= 0 {
		a.logger.Warn().Str("symbol", symbol).Msg("no usable current price, emitting degraded analysis")
		return degradedAnalysis(symbol, data.CurrentPrice)
	}

	annual := indicators.CalculateAnnual(marketdata.Prices(data.Historical), marketdata.Volumes(data.Historical))
	monthly := indicators.CalculateMonthly(marketdata.Prices(data.Monthly), marketdata.Volumes(data.Monthly))

	annualTrend := AnnualTrend(annual)
	monthlyTrend := MonthlyTrend(monthly)
	finalTrend := CombineTrends(annualTrend, monthlyTrend)

	confidence := DualConfidence(annual, monthly, data.Volume24h)
	volatility := DualVolatility(annual, monthly)
	predicted := PredictPrice(data.CurrentPrice, annual, monthly, finalTrend)
	patterns := IdentifyPatterns(annual, monthly, finalTrend)
	riskReward := RiskReward(annual, monthly, data.CurrentPrice)

	volumeTrend := indicators.VolumeNeutral
	distanceToSMA200 := 0.0
	invalidation := data.CurrentPrice * 0.95
	atr := data.CurrentPrice * indicators.DefaultATRFraction
	if annual != nil {
		volumeTrend = annual.VolumeTrend
		distanceToSMA200 = annual.DistanceToSMA200Pct
		invalidation = annual.InvalidationLevel
		atr = annual.ATR
	}

	return Analysis{
		Symbol:                  symbol,
		Trend:                   finalTrend,
		AnnualTrend:             annualTrend,
		MonthlyTrend:            monthlyTrend,
		Confidence:              round(confidence, 2),
		Volatility:              volatility,
		PredictedPrice:          round(predicted, 4),
		CurrentPrice:            data.CurrentPrice,
		PriceChangePct:          round((predicted-data.CurrentPrice)/data.CurrentPrice*100, 2),
		Patterns:                patterns,
		RiskRewardRatio:         riskReward,
		VolumeTrend:             volumeTrend,
		DistanceToSMA200Pct:     round(distanceToSMA200, 2),
		InvalidationLevel:       round(invalidation, 4),
		InvalidationDistancePct: round((data.CurrentPrice-invalidation)/data.CurrentPrice*100, 2),
		ATR:                     round(atr, 6),
		ATRPct:                  round(atr/data.CurrentPrice*100, 2),
		DynamicStopLoss:         round(data.CurrentPrice-2*atr, 4),
		AnalysisDepth:           "DUAL_1YR_1MO",
		Annual:                  annual,
		Monthly:                 monthly,
	}
}

// degradedAnalysis is the safe per-asset fallback: neutral verdict, medium
// volatility, and the canonical price-relative defaults.
func degradedAnalysis(symbol string, currentPrice float64) Analysis {
	if currentPrice <= 0 {
		currentPrice = 100
	}
	return Analysis{
		Symbol:                  symbol,
		Trend:                   TrendNeutral,
		AnnualTrend:             TrendNeutral,
		MonthlyTrend:            TrendNeutral,
		Confidence:              50,
		Volatility:              VolatilityMedium,
		PredictedPrice:          currentPrice,
		CurrentPrice:            currentPrice,
		PriceChangePct:          0,
		Patterns:                []string{"NEUTRAL_PATTERN"},
		RiskRewardRatio:         1.5,
		VolumeTrend:             indicators.VolumeNeutral,
		DistanceToSMA200Pct:     0,
		InvalidationLevel:       round(currentPrice*0.95, 4),
		InvalidationDistancePct: 5,
		ATR:                     round(currentPrice*indicators.DefaultATRFraction, 6),
		ATRPct:                  indicators.DefaultATRFraction * 100,
		DynamicStopLoss:         round(currentPrice*(1-2*indicators.DefaultATRFraction), 4),
		AnalysisDepth:           "LIMITED",
	}
}

func round(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
