// Package decision turns per-asset analyses into trade recommendations via a
// layered rule cascade: institutional pre-filters, trend rules with volume and
// SMA-200 penalties, ATR-based stop refinement, and a risk-tolerance gate.
package decision

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"market-advisor/internal/analyzer"
	"market-advisor/internal/indicators"
)

// Action is the final verdict for an asset.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// RiskLevel grades the risk of acting on a recommendation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// SignalColor is the coarse severity tag surfaced to presentation layers.
type SignalColor string

const (
	SignalGreen  SignalColor = "GREEN"
	SignalRed    SignalColor = "RED"
	SignalYellow SignalColor = "YELLOW"
	SignalOrange SignalColor = "ORANGE"
	SignalGray   SignalColor = "GRAY"
)

// Recommendation is the engine's per-asset output.
type Recommendation struct {
	Action     Action      `json:"action"`
	Reason     string      `json:"reason"`
	RiskLevel  RiskLevel   `json:"risk_level"`
	Confidence float64     `json:"confidence"`
	SignalColor SignalColor `json:"signal_color"`

	TargetPrice     float64 `json:"target_price"`
	StopLoss        float64 `json:"stop_loss"`
	PredictedChange float64 `json:"predicted_change"`

	Volatility          analyzer.VolatilityClass `json:"volatility"`
	VolumeTrend         indicators.VolumeTrend   `json:"volume_trend"`
	DistanceToSMA200Pct float64                  `json:"distance_to_sma200_pct"`
	InvalidationLevel   float64                  `json:"invalidation_level"`
	ATR                 float64                  `json:"atr"`
	ATRPct              float64                  `json:"atr_pct"`
	DynamicStopLoss     float64                  `json:"dynamic_stop_loss"`
}

// Engine generates recommendations. It is stateless apart from its logger;
// all tuning lives in the Config passed to each call.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "DecisionEngine").Logger(),
	}
}

// Recommend generates one recommendation per analyzed asset. A failure while
// processing a single asset yields that asset's safe fallback; it never
// aborts the batch.
func (e *Engine) Recommend(analyses map[string]analyzer.Analysis, cfg Config) map[string]Recommendation {
	recommendations := make(map[string]Recommendation, len(analyses))
	for symbol, analysis := range analyses {
		recommendations[symbol] = e.recommendOne(symbol, analysis, cfg)
	}
	return recommendations
}

func (e *Engine) recommendOne(symbol string, analysis analyzer.Analysis, cfg Config) (rec Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("symbol", symbol).Interface("panic", r).Msg("recommendation failed, using fallback")
			rec = Recommendation{
				Action:      ActionHold,
				Reason:      fmt.Sprintf("Error: %v", r),
				RiskLevel:   RiskHigh,
				Confidence:  0,
				SignalColor: SignalYellow,
			}
		}
	}()
	return e.generate(analysis, cfg)
}

// generate runs the rule cascade for one asset. Order matters: the first four
// checks can terminate early, the oversold-bounce preference is carried as a
// pending upgrade into the final color assignment.
func (e *Engine) generate(a analyzer.Analysis, cfg Config) Recommendation {
	confidence := a.Confidence
	currentPrice := a.CurrentPrice
	rsi14 := a.AnnualRSI14()

	indicatorFields := func(rec Recommendation) Recommendation {
		rec.Volatility = a.Volatility
		rec.VolumeTrend = a.VolumeTrend
		rec.DistanceToSMA200Pct = a.DistanceToSMA200Pct
		rec.InvalidationLevel = a.InvalidationLevel
		rec.ATR = a.ATR
		rec.ATRPct = a.ATRPct
		rec.DynamicStopLoss = a.DynamicStopLoss
		rec.PredictedChange = a.PriceChangePct
		return rec
	}

	// 1. Pre-filter: refuse asymmetric setups outright.
	if a.RiskRewardRatio < 1.0 {
		return indicatorFields(Recommendation{
			Action:      ActionHold,
			Reason:      "NO TRADE (Bad R:R)",
			RiskLevel:   RiskHigh,
			Confidence:  confidence,
			TargetPrice: currentPrice,
			StopLoss:    round4(currentPrice * 0.95),
			SignalColor: SignalGray,
		})
	}

	// 2. Pre-filter: blow-off tops far above the long-term mean.
	if rsi14 > 80 && a.DistanceToSMA200Pct > 30 {
		return indicatorFields(Recommendation{
			Action:      ActionHold,
			Reason:      "DANGER: OVEREXTENDED (Wait for Pullback)",
			RiskLevel:   RiskHigh,
			Confidence:  confidence,
			TargetPrice: currentPrice,
			StopLoss:    round4(currentPrice * 0.95),
			SignalColor: SignalOrange,
		})
	}

	// 3. Soft preference: deeply oversold far below the mean. Does not
	// terminate; it pre-sets the color and upgrades the verdict at the end
	// if the color survives as GREEN.
	pendingUpgrade := ""
	var signalColor SignalColor
	if rsi14 < 25 && a.DistanceToSMA200Pct < -20 {
		pendingUpgrade = "STRONG BUY (Oversold Bounce)"
		signalColor = SignalGreen
	}

	// 4. Confidence gate.
	if confidence < cfg.MinConfidence {
		return indicatorFields(Recommendation{
			Action:      ActionHold,
			Reason:      fmt.Sprintf("Low confidence (%.0f%%)", confidence),
			RiskLevel:   RiskHigh,
			Confidence:  confidence,
			TargetPrice: currentPrice,
			StopLoss:    round4(currentPrice * 0.95),
			SignalColor: SignalGray,
		})
	}

	// 5. Main trend rules.
	action := ActionHold
	reason := "No clear signal"
	riskLevel := RiskMedium

	switch {
	case a.Trend == analyzer.TrendBullish && confidence > 70:
		sma200Penalty := false
		if a.DistanceToSMA200Pct > 15 {
			sma200Penalty = true
			confidence -= 15
			reason = fmt.Sprintf("Bullish trend but %.1f%% above SMA_200 - high risk entry", a.DistanceToSMA200Pct)
			riskLevel = RiskHigh
		}

		volumeValidated := true
		if a.VolumeTrend == indicators.VolumeBullishWeak {
			confidence -= 10
			reason = "Bullish trend without volume confirmation - potential trap"
			riskLevel = RiskHigh
			volumeValidated = false
		} else if a.VolumeTrend == indicators.VolumeBearishConfirmed {
			confidence -= 20
			reason = "Bullish trend contradicted by bearish volume - avoid"
			riskLevel = RiskHigh
			volumeValidated = false
		}

		if !sma200Penalty && volumeValidated && a.Volatility == analyzer.VolatilityLow {
			action = ActionBuy
			reason = "Strong bullish trend with low volatility and volume confirmation"
			riskLevel = RiskLow
		} else if !sma200Penalty && volumeValidated && a.Volatility == analyzer.VolatilityMedium && confidence > 75 {
			action = ActionBuy
			reason = "Bullish trend with volume confirmation and acceptable volatility"
			riskLevel = RiskMedium
		} else {
			action = ActionHold
			if !strings.HasPrefix(reason, "Bullish trend") {
				reason = "Bullish trend but high volatility or weak signals - wait for better entry"
			}
			riskLevel = RiskHigh
		}

	case a.Trend == analyzer.TrendBearish && confidence > 70:
		volumeValidated := true
		if a.VolumeTrend == indicators.VolumeBearishWeak {
			confidence -= 10
			reason = "Bearish trend without volume confirmation - weak signal"
			riskLevel = RiskMedium
			volumeValidated = false
		} else if a.VolumeTrend == indicators.VolumeBullishConfirmed {
			confidence -= 25
			reason = "Bearish trend contradicted by bullish volume - avoid selling"
			riskLevel = RiskHigh
			volumeValidated = false
			action = ActionHold
		}

		if volumeValidated {
			if a.Volatility == analyzer.VolatilityLow {
				action = ActionSell
				reason = "Strong bearish trend with low volatility and volume confirmation"
				riskLevel = RiskLow
			} else if a.Volatility == analyzer.VolatilityMedium && confidence > 75 {
				action = ActionSell
				reason = "Bearish trend with volume confirmation - exit position"
				riskLevel = RiskMedium
			} else {
				action = ActionHold
				reason = "Bearish trend but high volatility - wait for confirmation"
				riskLevel = RiskHigh
			}
		}

	case a.Trend == analyzer.TrendNeutral:
		action = ActionHold
		reason = "Neutral trend - no action needed"
		riskLevel = RiskLow
	}

	// 6. Projection override for still-held assets with a big predicted move.
	if a.PriceChangePct > 5 && action == ActionHold {
		action = ActionBuy
		reason = fmt.Sprintf("Predicted price increase of %.2f%%", a.PriceChangePct)
	} else if a.PriceChangePct < -5 && action == ActionHold {
		action = ActionSell
		reason = fmt.Sprintf("Predicted price decrease of %.2f%%", a.PriceChangePct)
	}

	// 7. Rule-based targets from volatility.
	targetPrice, stopLoss := CalculatePriceTargets(currentPrice, a.PredictedPrice, action, a.Volatility)

	// 8. ATR refinement: for BUY keep the highest floor, for SELL the
	// tightest ceiling, among the ATR stop, the invalidation level, and the
	// rule-based stop.
	atrStopLoss := currentPrice - 2*a.ATR
	if action == ActionBuy {
		stopLoss = math.Max(atrStopLoss, math.Max(a.InvalidationLevel, stopLoss))
	} else if action == ActionSell {
		stopLoss = math.Min(atrStopLoss, stopLoss)
		if a.InvalidationLevel > 0 {
			stopLoss = math.Min(a.InvalidationLevel, stopLoss)
		}
	}

	// 9. Risk-tolerance gate.
	if cfg.RiskTolerance < 0.3 && riskLevel == RiskHigh {
		action = ActionHold
		reason = fmt.Sprintf("High risk position - below risk tolerance. Original: %s", reason)
	}

	// 10. Color assignment, then the pending oversold-bounce upgrade. The
	// preference only wins when the color ended up GREEN; otherwise it is
	// silently dropped.
	if signalColor == "" {
		switch action {
		case ActionBuy:
			signalColor = SignalGreen
		case ActionSell:
			signalColor = SignalRed
		default:
			signalColor = SignalYellow
		}
	}
	if pendingUpgrade != "" && signalColor == SignalGreen {
		reason = fmt.Sprintf("%s - %s", pendingUpgrade, reason)
		if action != ActionBuy {
			action = ActionBuy
			confidence = math.Min(95, confidence+10)
		}
	}

	return indicatorFields(Recommendation{
		Action:      action,
		Reason:      reason,
		RiskLevel:   riskLevel,
		Confidence:  confidence,
		TargetPrice: targetPrice,
		StopLoss:    round4(stopLoss),
		SignalColor: signalColor,
	})
}

// CalculatePriceTargets derives the rule-based target and stop from the
// action and volatility class. HOLD pins both to the current price.
func CalculatePriceTargets(currentPrice, predictedPrice float64, action Action, volatility analyzer.VolatilityClass) (target, stop float64) {
	switch action {
	case ActionBuy:
		target = math.Max(predictedPrice, currentPrice*1.05)
		switch volatility {
		case analyzer.VolatilityLow:
			stop = currentPrice * 0.98
		case analyzer.VolatilityMedium:
			stop = currentPrice * 0.95
		default:
			stop = currentPrice * 0.92
		}
	case ActionSell:
		target = math.Min(predictedPrice, currentPrice*0.95)
		switch volatility {
		case analyzer.VolatilityLow:
			stop = currentPrice * 1.02
		case analyzer.VolatilityMedium:
			stop = currentPrice * 1.05
		default:
			stop = currentPrice * 1.08
		}
	default:
		target = currentPrice
		stop = currentPrice
	}
	return round4(target), round4(stop)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
