package database

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is one audited analysis run for one symbol. The full
// analysis document is kept as JSONB next to the queryable columns.
type AnalysisRecord struct {
	ID             uuid.UUID `json:"id"`
	Symbol         string    `json:"symbol"`
	Trend          string    `json:"trend"`
	Confidence     float64   `json:"confidence"`
	Volatility     string    `json:"volatility"`
	CurrentPrice   float64   `json:"current_price"`
	PredictedPrice float64   `json:"predicted_price"`
	Analysis       []byte    `json:"analysis"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecommendationRecord is one audited recommendation for one symbol.
type RecommendationRecord struct {
	ID             uuid.UUID `json:"id"`
	Symbol         string    `json:"symbol"`
	Action         string    `json:"action"`
	Reason         string    `json:"reason"`
	RiskLevel      string    `json:"risk_level"`
	Confidence     float64   `json:"confidence"`
	Recommendation []byte    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
}
