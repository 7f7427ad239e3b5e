package marketdata

import "time"

// PricePoint is a single daily sample of a price/volume series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// AssetData is the per-symbol payload supplied by the data collection layer.
// Historical covers roughly one year of daily samples, Monthly roughly 30 days.
type AssetData struct {
	Symbol       string       `json:"symbol"`
	CurrentPrice float64      `json:"current_price"`
	Change24h    float64      `json:"change_24h"`
	Volume24h    float64      `json:"volume_24h"`
	Historical   []PricePoint `json:"historical_data"`
	Monthly      []PricePoint `json:"monthly_data"`
}

// Provider supplies market data for a set of tracked symbols.
// Implementations are expected to apply their own fetch timeouts; the
// analysis pipeline only ever sees in-memory series.
type Provider interface {
	LoadLatest() (map[string]AssetData, error)
}

// Prices extracts the close prices of a series in chronological order.
func Prices(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Price
	}
	return out
}

// Volumes extracts the volumes of a series in chronological order.
func Volumes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Volume
	}
	return out
}
