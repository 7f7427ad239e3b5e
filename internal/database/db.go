package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"market-advisor/config"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDB creates a new database connection
func NewDB(cfg config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	db := &DB{Pool: pool, logger: logger.With().Str("component", "Database").Logger()}
	db.logger.Info().Msg("connected to PostgreSQL")
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info().Msg("database connection closed")
	}
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	db.logger.Info().Msg("running database migrations")

	migrations := []string{
		// Analysis audit log, one row per symbol per analysis run
		`CREATE TABLE IF NOT EXISTS analysis_history (
			id UUID PRIMARY KEY,
			symbol VARCHAR(40) NOT NULL,
			trend VARCHAR(30) NOT NULL,
			confidence DECIMAL(6, 2) NOT NULL,
			volatility VARCHAR(20) NOT NULL,
			current_price DECIMAL(20, 8) NOT NULL,
			predicted_price DECIMAL(20, 8) NOT NULL,
			analysis JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_history_symbol ON analysis_history(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_history_created_at ON analysis_history(created_at)`,

		// Recommendation audit log
		`CREATE TABLE IF NOT EXISTS recommendation_history (
			id UUID PRIMARY KEY,
			symbol VARCHAR(40) NOT NULL,
			action VARCHAR(10) NOT NULL,
			reason TEXT NOT NULL,
			risk_level VARCHAR(10) NOT NULL,
			confidence DECIMAL(6, 2) NOT NULL,
			recommendation JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendation_history_symbol ON recommendation_history(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendation_history_created_at ON recommendation_history(created_at)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	db.logger.Info().Msg("database migrations completed")
	return nil
}
