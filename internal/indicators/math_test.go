package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestCalculateRSI(t *testing.T) {
	t.Run("short series returns neutral", func(t *testing.T) {
		if got := CalculateRSI([]float64{100, 101, 102}, 14); got != NeutralRSI {
			t.Errorf("expected %v, got %v", NeutralRSI, got)
		}
	})

	t.Run("flat series reads neutral", func(t *testing.T) {
		prices := make([]float64, 30)
		for i := range prices {
			prices[i] = 100
		}
		if got := CalculateRSI(prices, 14); got != NeutralRSI {
			t.Errorf("expected %v for flat series, got %v", NeutralRSI, got)
		}
	})

	t.Run("pure uptrend reads 100", func(t *testing.T) {
		prices := make([]float64, 30)
		for i := range prices {
			prices[i] = 100 + float64(i)
		}
		if got := CalculateRSI(prices, 14); got != 100 {
			t.Errorf("expected 100 for loss-free series, got %v", got)
		}
	})

	t.Run("always within bounds", func(t *testing.T) {
		prices := []float64{100, 97, 103, 99, 105, 101, 98, 104, 96, 107, 102, 95, 108, 100, 106, 99}
		got := CalculateRSI(prices, 14)
		if got < 0 || got > 100 {
			t.Errorf("RSI %v outside [0,100]", got)
		}
	})

	t.Run("uptrend scores above downtrend", func(t *testing.T) {
		up := make([]float64, 20)
		down := make([]float64, 20)
		for i := range up {
			up[i] = 100 + float64(i) + float64(i%3)
			down[i] = 200 - float64(i) - float64(i%3)
		}
		if CalculateRSI(up, 14) <= CalculateRSI(down, 14) {
			t.Error("expected uptrend RSI above downtrend RSI")
		}
	})
}

func TestCalculateSMA(t *testing.T) {
	if got := CalculateSMA(nil, 20); got != 0 {
		t.Errorf("empty series: expected 0, got %v", got)
	}
	if got := CalculateSMA([]float64{100, 110, 120}, 20); got != 120 {
		t.Errorf("short series should fall back to last price, got %v", got)
	}
	if got := CalculateSMA([]float64{1, 2, 3, 4}, 2); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}
}

func TestCalculateEMA(t *testing.T) {
	if got := CalculateEMA(nil, 12); got != 0 {
		t.Errorf("empty series: expected 0, got %v", got)
	}
	if got := CalculateEMA([]float64{100, 105}, 12); got != 105 {
		t.Errorf("short series should fall back to last price, got %v", got)
	}

	// Flat series stays pinned at the level regardless of smoothing.
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 250
	}
	if got := CalculateEMA(flat, 12); !almostEqual(got, 250, 1e-9) {
		t.Errorf("flat series EMA drifted to %v", got)
	}
}

func TestCalculateMomentum(t *testing.T) {
	if got := CalculateMomentum([]float64{100}, 7); got != 0 {
		t.Errorf("short series: expected 0, got %v", got)
	}
	if got := CalculateMomentum([]float64{100, 105, 110}, 3); !almostEqual(got, 10, 1e-9) {
		t.Errorf("expected 10%%, got %v", got)
	}
	if got := CalculateMomentum([]float64{0, 110}, 2); got != 0 {
		t.Errorf("zero base price: expected 0, got %v", got)
	}
}

func TestCalculateVolatility(t *testing.T) {
	if got := CalculateVolatility([]float64{100, 101}, 10); got != 0 {
		t.Errorf("too-short series: expected 0, got %v", got)
	}

	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
	}
	if got := CalculateVolatility(flat, 30); got != 0 {
		t.Errorf("flat series: expected 0, got %v", got)
	}

	choppy := []float64{100, 110, 95, 112, 90, 115, 88, 118, 85, 120, 84, 122}
	steady := []float64{100, 100.5, 101, 101.4, 102, 102.3, 103, 103.2, 104, 104.6, 105, 105.3}
	if CalculateVolatility(choppy, 11) <= CalculateVolatility(steady, 11) {
		t.Error("expected choppy series to score higher volatility")
	}
}

func TestRangePosition(t *testing.T) {
	if got := rangePosition(100, 100, 100); got != 0.5 {
		t.Errorf("flat range: expected 0.5, got %v", got)
	}
	if got := rangePosition(75, 50, 100); got != 0.5 {
		t.Errorf("midpoint: expected 0.5, got %v", got)
	}
	if got := rangePosition(120, 50, 100); got != 1 {
		t.Errorf("above the range must clamp to 1, got %v", got)
	}
	if got := rangePosition(10, 50, 100); got != 0 {
		t.Errorf("below the range must clamp to 0, got %v", got)
	}
}
