package indicators

import "testing"

func risingSeries(n int) ([]float64, []float64) {
	prices := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		prices[i] = 100 + float64(i)*0.5
		volumes[i] = 1_000_000 + float64(i)*10_000
	}
	return prices, volumes
}

func flatSeries(n int) ([]float64, []float64) {
	prices := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		prices[i] = 100
		volumes[i] = 1_000_000
	}
	return prices, volumes
}

func TestCalculateAnnualInsufficientData(t *testing.T) {
	prices, volumes := risingSeries(49)
	if set := CalculateAnnual(prices, volumes); set != nil {
		t.Fatal("expected nil below 50 samples")
	}
}

func TestCalculateAnnualSparseSeriesDefaults(t *testing.T) {
	prices, volumes := risingSeries(60)
	set := CalculateAnnual(prices, volumes)
	if set == nil {
		t.Fatal("expected a set at 60 samples")
	}

	if set.VolatilityAnnual != NeutralVolatility {
		t.Errorf("expected neutral annual volatility, got %v", set.VolatilityAnnual)
	}
	if set.SMA200 != 0 || set.SMA100 != 0 {
		t.Errorf("expected zeroed long SMAs, got sma100=%v sma200=%v", set.SMA100, set.SMA200)
	}

	defaulted := map[string]bool{}
	for _, name := range set.Defaulted {
		defaulted[name] = true
	}
	for _, want := range []string{"sma_100", "sma_200", "volatility_annual", "momentum_3m", "momentum_6m"} {
		if !defaulted[want] {
			t.Errorf("expected %s in defaulted list %v", want, set.Defaulted)
		}
	}
}

func TestCalculateAnnualFullSeries(t *testing.T) {
	prices, volumes := risingSeries(260)
	set := CalculateAnnual(prices, volumes)
	if set == nil {
		t.Fatal("expected a set at 260 samples")
	}

	if len(set.Defaulted) != 0 {
		t.Errorf("full series should have no defaulted fields, got %v", set.Defaulted)
	}
	if set.SMA20 <= set.SMA50 || set.SMA50 <= set.SMA200 {
		t.Errorf("rising series should stack SMAs bullishly: %v %v %v", set.SMA20, set.SMA50, set.SMA200)
	}
	if set.Momentum3M <= 0 || set.Momentum6M <= 0 {
		t.Errorf("rising series should carry positive momentum: %v %v", set.Momentum3M, set.Momentum6M)
	}
	if set.CurrentPosition != 1 {
		t.Errorf("last price is the year high, expected position 1, got %v", set.CurrentPosition)
	}
	if set.YearHigh != prices[len(prices)-1] || set.YearLow != prices[0] {
		t.Errorf("bad year range: %v..%v", set.YearLow, set.YearHigh)
	}
	if set.ATR <= 0 {
		t.Errorf("expected positive ATR, got %v", set.ATR)
	}
	if set.InvalidationLevel >= prices[len(prices)-1] {
		t.Errorf("invalidation %v should sit below current %v", set.InvalidationLevel, prices[len(prices)-1])
	}
	if set.InvalidationLevel < prices[len(prices)-1]*0.85 {
		t.Errorf("invalidation %v breached the 15%% floor", set.InvalidationLevel)
	}
}

func TestCalculateMonthly(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		prices, volumes := flatSeries(19)
		if set := CalculateMonthly(prices, volumes); set != nil {
			t.Fatal("expected nil below 20 samples")
		}
	})

	t.Run("flat month reads neutral", func(t *testing.T) {
		prices, volumes := flatSeries(30)
		set := CalculateMonthly(prices, volumes)
		if set == nil {
			t.Fatal("expected a set at 30 samples")
		}
		if set.RSI14 != NeutralRSI {
			t.Errorf("flat month RSI should be neutral, got %v", set.RSI14)
		}
		if set.CurrentMonthPosition != NeutralRangePosition {
			t.Errorf("flat month position should be 0.5, got %v", set.CurrentMonthPosition)
		}
		if set.Volatility10d != 0 {
			t.Errorf("flat month volatility should be 0, got %v", set.Volatility10d)
		}
		if set.Momentum1W != 0 {
			t.Errorf("flat month momentum should be 0, got %v", set.Momentum1W)
		}
	})
}

func TestCalculateATR(t *testing.T) {
	if got := CalculateATR(nil, 14); got != 0 {
		t.Errorf("empty series: expected 0, got %v", got)
	}
	if got := CalculateATR([]float64{100, 102, 104}, 14); got != 104*DefaultATRFraction {
		t.Errorf("short series should fall back to 2%% of last price, got %v", got)
	}

	prices, _ := flatSeries(30)
	if got := CalculateATR(prices, 14); got != 0 {
		t.Errorf("flat series: expected 0 true range, got %v", got)
	}

	// Constant daily move of 0.5 collapses the true range to exactly 0.5.
	rising, _ := risingSeries(30)
	if got := CalculateATR(rising, 14); !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("expected ATR 0.5, got %v", got)
	}
}

func TestCalculateVolumeTrend(t *testing.T) {
	tests := []struct {
		name    string
		prices  []float64
		volumes []float64
		want    VolumeTrend
	}{
		{
			name:    "too short",
			prices:  []float64{1, 2, 3},
			volumes: []float64{1, 1, 1},
			want:    VolumeInsufficientData,
		},
		{
			name:    "rally on rising volume",
			prices:  []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 110},
			volumes: []float64{10, 10, 10, 10, 10, 20, 20, 20, 20, 20},
			want:    VolumeBullishConfirmed,
		},
		{
			name:    "rally on shrinking volume",
			prices:  []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 110},
			volumes: []float64{20, 20, 20, 20, 20, 10, 10, 10, 10, 10},
			want:    VolumeBullishWeak,
		},
		{
			name:    "selloff on rising volume",
			prices:  []float64{110, 109, 108, 107, 106, 105, 104, 103, 102, 100},
			volumes: []float64{10, 10, 10, 10, 10, 20, 20, 20, 20, 20},
			want:    VolumeBearishConfirmed,
		},
		{
			name:    "quiet drift with volume spike",
			prices:  []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100.5},
			volumes: []float64{10, 10, 10, 10, 10, 20, 20, 20, 20, 20},
			want:    VolumeAccumulation,
		},
		{
			name:    "quiet drift flat volume",
			prices:  []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100.5},
			volumes: []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 10},
			want:    VolumeNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateVolumeTrend(tt.prices, tt.volumes); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateInvalidationLevel(t *testing.T) {
	if got := CalculateInvalidationLevel(nil); got != 0 {
		t.Errorf("empty series: expected 0, got %v", got)
	}
	if got := CalculateInvalidationLevel([]float64{100, 105}); got != 105*0.95 {
		t.Errorf("short series: expected 5%% buffer, got %v", got)
	}

	prices, _ := risingSeries(60)
	current := prices[len(prices)-1]
	level := CalculateInvalidationLevel(prices)
	if level >= current {
		t.Errorf("level %v should sit below current %v", level, current)
	}
	if level < current*0.85 {
		t.Errorf("level %v breached the 15%% floor", level)
	}
}
