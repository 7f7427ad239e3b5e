package indicators

// VolumeTrend classifies whether volume confirms or contradicts the recent
// price move.
type VolumeTrend string

const (
	VolumeBullishConfirmed VolumeTrend = "BULLISH_CONFIRMED"
	VolumeBullishWeak      VolumeTrend = "BULLISH_WEAK"
	VolumeBullishNeutral   VolumeTrend = "BULLISH_NEUTRAL"
	VolumeBearishConfirmed VolumeTrend = "BEARISH_CONFIRMED"
	VolumeBearishWeak      VolumeTrend = "BEARISH_WEAK"
	VolumeBearishNeutral   VolumeTrend = "BEARISH_NEUTRAL"
	VolumeAccumulation     VolumeTrend = "ACCUMULATION"
	VolumeNeutral          VolumeTrend = "NEUTRAL"
	VolumeInsufficientData VolumeTrend = "INSUFFICIENT_DATA"
)

// CalculateVolumeTrend compares the 10-day price change with the ratio of the
// last 5-day average volume to the prior 5-day average. A move on rising
// volume is confirmed; a move on shrinking volume is a potential trap.
func CalculateVolumeTrend(prices, volumes []float64) VolumeTrend {
	if len(prices) < 10 || len(volumes) < 10 {
		return VolumeInsufficientData
	}

	base := prices[len(prices)-10]
	if base == 0 {
		return VolumeInsufficientData
	}
	priceChange := (prices[len(prices)-1] - base) / base

	recentAvg := 0.0
	priorAvg := 0.0
	for i := len(volumes) - 5; i < len(volumes); i++ {
		recentAvg += volumes[i]
	}
	for i := len(volumes) - 10; i < len(volumes)-5; i++ {
		priorAvg += volumes[i]
	}
	recentAvg /= 5
	priorAvg /= 5

	volumeRatio := 1.0
	if priorAvg > 0 {
		volumeRatio = recentAvg / priorAvg
	}

	switch {
	case priceChange > 0.02:
		if volumeRatio > 1.2 {
			return VolumeBullishConfirmed
		}
		if volumeRatio < 0.8 {
			return VolumeBullishWeak
		}
		return VolumeBullishNeutral
	case priceChange < -0.02:
		if volumeRatio > 1.2 {
			return VolumeBearishConfirmed
		}
		if volumeRatio < 0.8 {
			return VolumeBearishWeak
		}
		return VolumeBearishNeutral
	default:
		if volumeRatio > 1.5 {
			return VolumeAccumulation
		}
		return VolumeNeutral
	}
}
