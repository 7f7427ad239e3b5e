package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository provides data access methods for the audit tables.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck performs a database health check
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// InsertAnalysis records one analysis run. The record ID is generated here.
func (r *Repository) InsertAnalysis(ctx context.Context, rec *AnalysisRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	query := `
		INSERT INTO analysis_history (id, symbol, trend, confidence, volatility, current_price, predicted_price, analysis)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		rec.ID, rec.Symbol, rec.Trend, rec.Confidence, rec.Volatility,
		rec.CurrentPrice, rec.PredictedPrice, rec.Analysis,
	).Scan(&rec.CreatedAt)
}

// InsertRecommendation records one recommendation.
func (r *Repository) InsertRecommendation(ctx context.Context, rec *RecommendationRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	query := `
		INSERT INTO recommendation_history (id, symbol, action, reason, risk_level, confidence, recommendation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		rec.ID, rec.Symbol, rec.Action, rec.Reason, rec.RiskLevel,
		rec.Confidence, rec.Recommendation,
	).Scan(&rec.CreatedAt)
}

// GetAnalysisHistory retrieves recent analyses for a symbol, newest first.
func (r *Repository) GetAnalysisHistory(ctx context.Context, symbol string, limit int) ([]*AnalysisRecord, error) {
	query := `
		SELECT id, symbol, trend, confidence, volatility, current_price, predicted_price, analysis, created_at
		FROM analysis_history
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*AnalysisRecord
	for rows.Next() {
		rec := &AnalysisRecord{}
		err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.Trend, &rec.Confidence, &rec.Volatility,
			&rec.CurrentPrice, &rec.PredictedPrice, &rec.Analysis, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRecommendationHistory retrieves recent recommendations for a symbol,
// newest first.
func (r *Repository) GetRecommendationHistory(ctx context.Context, symbol string, limit int) ([]*RecommendationRecord, error) {
	query := `
		SELECT id, symbol, action, reason, risk_level, confidence, recommendation, created_at
		FROM recommendation_history
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*RecommendationRecord
	for rows.Next() {
		rec := &RecommendationRecord{}
		err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.Action, &rec.Reason, &rec.RiskLevel,
			&rec.Confidence, &rec.Recommendation, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// HistoryStats summarizes the audit tables.
type HistoryStats struct {
	AnalysisCount       int64      `json:"analysis_count"`
	RecommendationCount int64      `json:"recommendation_count"`
	TrackedSymbols      int64      `json:"tracked_symbols"`
	OldestRecord        *time.Time `json:"oldest_record,omitempty"`
	NewestRecord        *time.Time `json:"newest_record,omitempty"`
}

// GetHistoryStats returns counts and the time range of the audit history.
func (r *Repository) GetHistoryStats(ctx context.Context) (*HistoryStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM analysis_history),
			(SELECT COUNT(*) FROM recommendation_history),
			(SELECT COUNT(DISTINCT symbol) FROM analysis_history),
			(SELECT MIN(created_at) FROM analysis_history),
			(SELECT MAX(created_at) FROM analysis_history)
	`
	stats := &HistoryStats{}
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&stats.AnalysisCount, &stats.RecommendationCount, &stats.TrackedSymbols,
		&stats.OldestRecord, &stats.NewestRecord,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// PruneHistory deletes audit rows older than the retention window.
func (r *Repository) PruneHistory(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	total := int64(0)
	for _, table := range []string{"analysis_history", "recommendation_history"} {
		tag, err := r.db.Pool.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, table), cutoff)
		if err != nil {
			return total, fmt.Errorf("pruning %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}
