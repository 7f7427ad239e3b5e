package analyzer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"market-advisor/internal/indicators"
	"market-advisor/internal/marketdata"
)

func testAnalyzer() *Analyzer {
	return New(zerolog.Nop())
}

func seriesData(symbol string, annual, monthly []float64, volume24h float64) marketdata.AssetData {
	toPoints := func(prices []float64) []marketdata.PricePoint {
		points := make([]marketdata.PricePoint, len(prices))
		for i, p := range prices {
			points[i] = marketdata.PricePoint{Price: p, Volume: 1_000_000}
		}
		return points
	}

	current := 0.0
	if len(annual) > 0 {
		current = annual[len(annual)-1]
	} else if len(monthly) > 0 {
		current = monthly[len(monthly)-1]
	}

	return marketdata.AssetData{
		Symbol:       symbol,
		CurrentPrice: current,
		Volume24h:    volume24h,
		Historical:   toPoints(annual),
		Monthly:      toPoints(monthly),
	}
}

func rising(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.5
	}
	return prices
}

func flat(n int, level float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = level
	}
	return prices
}

func TestAnalyzeAssetUptrend(t *testing.T) {
	a := testAnalyzer()
	data := seriesData("BTC_crypto", rising(260), rising(290)[260:], 20_000_000)

	result := a.AnalyzeAsset("BTC_crypto", data)

	if result.AnalysisDepth != "DUAL_1YR_1MO" {
		t.Fatalf("expected a full dual-window run, got %q", result.AnalysisDepth)
	}
	if result.Annual == nil || result.Monthly == nil {
		t.Fatal("expected both indicator sets")
	}
	if result.Trend != TrendBullish && result.Trend != TrendStrongBullish {
		t.Errorf("sustained uptrend should read bullish, got %v", result.Trend)
	}
	if result.Confidence < 25 || result.Confidence > 95 {
		t.Errorf("confidence %v outside [25,95]", result.Confidence)
	}
	if result.PredictedPrice <= 0 {
		t.Errorf("expected a positive projection, got %v", result.PredictedPrice)
	}
	if result.ATR <= 0 {
		t.Errorf("expected positive ATR, got %v", result.ATR)
	}
	if result.DynamicStopLoss >= result.CurrentPrice {
		t.Errorf("dynamic stop %v should sit below current %v", result.DynamicStopLoss, result.CurrentPrice)
	}
	if result.InvalidationLevel >= result.CurrentPrice {
		t.Errorf("invalidation %v should sit below current %v", result.InvalidationLevel, result.CurrentPrice)
	}
}

func TestAnalyzeAssetShortFlatHistory(t *testing.T) {
	a := testAnalyzer()
	// Only a month of flat prices: no annual set, neutral monthly verdict.
	data := seriesData("NEWCOIN_crypto", flat(30, 100), flat(30, 100), 0)

	result := a.AnalyzeAsset("NEWCOIN_crypto", data)

	if result.Annual != nil {
		t.Error("30 samples must not produce an annual set")
	}
	if result.Monthly == nil {
		t.Fatal("expected a monthly set at 30 samples")
	}
	if result.Trend != TrendNeutral || result.MonthlyTrend != TrendNeutral {
		t.Errorf("flat series should read neutral, got %v/%v", result.Trend, result.MonthlyTrend)
	}
	if result.AnalysisDepth != "DUAL_1YR_1MO" {
		t.Errorf("a usable price still runs the full pipeline, got %q", result.AnalysisDepth)
	}
	// Neutral trend seeds a 1% projection with no momentum adjustment.
	if result.PredictedPrice != 101 {
		t.Errorf("expected 101 projection, got %v", result.PredictedPrice)
	}
	// Flat monthly range collapses risk/reward to its favorable default.
	if result.RiskRewardRatio != 2.0 {
		t.Errorf("expected default 2.0 risk/reward, got %v", result.RiskRewardRatio)
	}
	if result.InvalidationLevel != 95 {
		t.Errorf("no annual set falls back to 5%% buffer, got %v", result.InvalidationLevel)
	}
}

func TestAnalyzeAssetDegraded(t *testing.T) {
	a := testAnalyzer()
	result := a.AnalyzeAsset("BROKEN", marketdata.AssetData{Symbol: "BROKEN", CurrentPrice: 0})

	if result.AnalysisDepth != "LIMITED" {
		t.Fatalf("expected LIMITED depth, got %q", result.AnalysisDepth)
	}
	if result.Trend != TrendNeutral || result.Confidence != 50 || result.Volatility != VolatilityMedium {
		t.Errorf("degraded analysis should be fully neutral: %+v", result)
	}
	if result.CurrentPrice != 100 {
		t.Errorf("unusable price defaults to 100, got %v", result.CurrentPrice)
	}
	if !reflect.DeepEqual(result.Patterns, []string{"NEUTRAL_PATTERN"}) {
		t.Errorf("expected NEUTRAL_PATTERN, got %v", result.Patterns)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := testAnalyzer()
	snapshot := map[string]marketdata.AssetData{
		"BTC_crypto": seriesData("BTC_crypto", rising(260), rising(30), 20_000_000),
		"ETH_crypto": seriesData("ETH_crypto", flat(60, 50), flat(30, 50), 1_000_000),
	}

	first := a.Analyze(snapshot)
	second := a.Analyze(snapshot)
	if !reflect.DeepEqual(first, second) {
		t.Error("same snapshot must produce identical results")
	}
	if len(first) != 2 {
		t.Errorf("expected 2 analyses, got %d", len(first))
	}
}

func TestAnalysisJSONRoundTrip(t *testing.T) {
	a := testAnalyzer()
	original := a.AnalyzeAsset("BTC_crypto", seriesData("BTC_crypto", rising(260), rising(30), 20_000_000))

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Analysis
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Error("analysis changed across a JSON round trip")
	}
}

func TestPredictPriceRangeAdjustments(t *testing.T) {
	// At the top of both ranges the projection gets pulled down relative to
	// the bare trend multiplier.
	base := PredictPrice(100, nil, nil, TrendBullish)
	if base != 103 {
		t.Fatalf("bare bullish projection should be 103, got %v", base)
	}

	atHighs := PredictPrice(100,
		&indicators.AnnualSet{CurrentPosition: 0.95},
		&indicators.MonthlySet{CurrentMonthPosition: 0.95},
		TrendBullish)
	if atHighs >= base {
		t.Errorf("projection at range highs (%v) should sit below baseline (%v)", atHighs, base)
	}

	atLows := PredictPrice(100,
		&indicators.AnnualSet{CurrentPosition: 0.05},
		&indicators.MonthlySet{CurrentMonthPosition: 0.05},
		TrendBullish)
	if atLows <= base {
		t.Errorf("projection at range lows (%v) should sit above baseline (%v)", atLows, base)
	}
}
