package decision

// Config holds the engine's two tuning knobs. It is immutable once built;
// pass a fresh Config per call site to use different profiles concurrently.
type Config struct {
	// RiskTolerance in [0,1], where 1 accepts high-risk entries.
	RiskTolerance float64
	// MinConfidence in [0,100]; verdicts below it are held.
	MinConfidence float64
	// MaxPositionSize caps the suggested portfolio fraction per asset.
	MaxPositionSize float64
}

// DefaultConfig mirrors the engine's historical defaults.
func DefaultConfig() Config {
	return Config{
		RiskTolerance:   0.5,
		MinConfidence:   60,
		MaxPositionSize: 0.1,
	}
}

// NewConfig builds a Config, silently clamping out-of-range values. Clamping
// instead of rejecting is deliberate: callers feeding a slider or a config
// file always get a working engine.
func NewConfig(riskTolerance, minConfidence float64) Config {
	cfg := DefaultConfig()
	cfg.RiskTolerance = clamp(riskTolerance, 0, 1)
	cfg.MinConfidence = clamp(minConfidence, 0, 100)
	return cfg
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
