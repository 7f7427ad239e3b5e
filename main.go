package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"market-advisor/config"
	"market-advisor/internal/analyzer"
	"market-advisor/internal/api"
	"market-advisor/internal/cache"
	"market-advisor/internal/database"
	"market-advisor/internal/decision"
	"market-advisor/internal/logging"
	"market-advisor/internal/marketdata"
	"market-advisor/internal/position"
)

func main() {
	generateConfig := flag.Bool("generate-config", false, "write a sample config.json and exit")
	flag.Parse()
	if *generateConfig {
		if err := config.GenerateSampleConfig("config.json"); err != nil {
			log.Fatalf("Failed to write sample config: %v", err)
		}
		log.Println("sample config.json written")
		return
	}

	// .env is optional, real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(&logging.Config{
		Level:       cfg.LoggingConfig.Level,
		Output:      cfg.LoggingConfig.Output,
		JSONFormat:  cfg.LoggingConfig.JSONFormat,
		IncludeFile: cfg.LoggingConfig.IncludeFile,
	})
	logger.Info().Msg("structured logging initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Core pipeline
	snapshots, err := marketdata.NewSnapshotStore(cfg.DataConfig.SnapshotDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize snapshot store")
	}
	an := analyzer.New(logger)
	engine := decision.NewEngine(logger)
	engineCfg := decision.NewConfig(cfg.EngineConfig.RiskTolerance, cfg.EngineConfig.MinConfidence)
	engineCfg.MaxPositionSize = cfg.EngineConfig.MaxPositionSize

	positions, err := position.NewManager(cfg.DataConfig.PositionsDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize position manager")
	}

	watchlist := marketdata.NewWatchlist(cfg.DataConfig.WatchlistDir, logger)

	// Optional backends
	var cacheService *cache.CacheService
	if cfg.RedisConfig.Enabled {
		cacheService, err = cache.NewCacheService(cfg.RedisConfig, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("cache disabled")
			cacheService = nil
		} else {
			defer cacheService.Close()
		}
	}

	var repo *database.Repository
	if cfg.DatabaseConfig.Enabled {
		db, err := database.NewDB(cfg.DatabaseConfig, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("audit history disabled")
		} else {
			defer db.Close()
			if cfg.DatabaseConfig.MigrateOnStart {
				if err := db.RunMigrations(ctx); err != nil {
					logger.Fatal().Err(err).Msg("database migrations failed")
				}
			}
			repo = database.NewRepository(db)
			go pruneHistoryLoop(ctx, repo, cfg.DatabaseConfig.RetentionDays, logger)
		}
	}

	server := api.NewServer(
		cfg.ServerConfig, engineCfg,
		snapshots, an, engine, positions, watchlist,
		cacheService, repo,
		logger,
	)

	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("shutdown complete")
}

// pruneHistoryLoop trims audit history to the retention window once a day.
func pruneHistoryLoop(ctx context.Context, repo *database.Repository, retentionDays int, logger zerolog.Logger) {
	if retentionDays <= 0 {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		pruned, err := repo.PruneHistory(ctx, retentionDays)
		if err != nil {
			logger.Error().Err(err).Msg("history prune failed")
		} else if pruned > 0 {
			logger.Info().Int64("rows", pruned).Msg("pruned audit history")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
