package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerConfig   ServerConfig   `json:"server"`
	DataConfig     DataConfig     `json:"data"`
	EngineConfig   EngineConfig   `json:"engine"`
	LoggingConfig  LoggingConfig  `json:"logging"`
	RedisConfig    RedisConfig    `json:"redis"`
	DatabaseConfig DatabaseConfig `json:"database"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"` // CORS allowed origins
	ReadTimeout     int    `json:"read_timeout"`    // Seconds
	WriteTimeout    int    `json:"write_timeout"`   // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"`
}

// DataConfig holds on-disk data locations
type DataConfig struct {
	SnapshotDir  string `json:"snapshot_dir"`  // market snapshots
	PositionsDir string `json:"positions_dir"` // position collection
	WatchlistDir string `json:"watchlist_dir"` // watchlist entries
}

// EngineConfig holds the recommendation engine tuning knobs
type EngineConfig struct {
	RiskTolerance   float64 `json:"risk_tolerance"`    // 0-1, 1 accepts high-risk entries
	MinConfidence   float64 `json:"min_confidence"`    // 0-100, verdicts below are held
	MaxPositionSize float64 `json:"max_position_size"` // Portfolio fraction cap per asset
}

type LoggingConfig struct {
	Level       string `json:"level"`        // DEBUG, INFO, WARN, ERROR
	Output      string `json:"output"`       // stdout, stderr, or file path
	JSONFormat  bool   `json:"json_format"`  // Output as JSON
	IncludeFile bool   `json:"include_file"` // Include file and line number
}

// RedisConfig holds Redis configuration for the analysis cache
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
	CacheTTL int    `json:"cache_ttl"` // Seconds
}

// DatabaseConfig holds PostgreSQL configuration for the audit log
type DatabaseConfig struct {
	Enabled        bool          `json:"enabled"`
	URL            string        `json:"url"`
	MaxConns       int           `json:"max_conns"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	RetentionDays  int           `json:"retention_days"`
	MigrateOnStart bool          `json:"migrate_on_start"`
}

func defaultConfig() *Config {
	return &Config{
		ServerConfig: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			AllowedOrigins:  "*",
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
		},
		DataConfig: DataConfig{
			SnapshotDir:  "data",
			PositionsDir: "data",
			WatchlistDir: "data",
		},
		EngineConfig: EngineConfig{
			RiskTolerance:   0.5,
			MinConfidence:   60,
			MaxPositionSize: 0.1,
		},
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
		RedisConfig: RedisConfig{
			Address:  "localhost:6379",
			PoolSize: 10,
			CacheTTL: 300,
		},
		DatabaseConfig: DatabaseConfig{
			MaxConns:       4,
			ConnectTimeout: 5 * time.Second,
			RetentionDays:  90,
			MigrateOnStart: true,
		},
	}
}

// Load builds the configuration in three layers: built-in defaults, then
// config.json when present, then environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile("config.json")
	if err == nil {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variables on top of the loaded config.
// Unset variables leave the current value alone.
func applyEnvOverrides(cfg *Config) {
	// Server config
	overrideInt(&cfg.ServerConfig.Port, "WEB_PORT")
	overrideString(&cfg.ServerConfig.Host, "WEB_HOST")
	overrideString(&cfg.ServerConfig.AllowedOrigins, "SERVER_ALLOWED_ORIGINS")
	overrideInt(&cfg.ServerConfig.ReadTimeout, "SERVER_READ_TIMEOUT")
	overrideInt(&cfg.ServerConfig.WriteTimeout, "SERVER_WRITE_TIMEOUT")
	overrideInt(&cfg.ServerConfig.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT")

	// Data locations
	overrideString(&cfg.DataConfig.SnapshotDir, "DATA_SNAPSHOT_DIR")
	overrideString(&cfg.DataConfig.PositionsDir, "DATA_POSITIONS_DIR")
	overrideString(&cfg.DataConfig.WatchlistDir, "DATA_WATCHLIST_DIR")

	// Engine config
	overrideFloat(&cfg.EngineConfig.RiskTolerance, "ENGINE_RISK_TOLERANCE")
	overrideFloat(&cfg.EngineConfig.MinConfidence, "ENGINE_MIN_CONFIDENCE")
	overrideFloat(&cfg.EngineConfig.MaxPositionSize, "ENGINE_MAX_POSITION_SIZE")

	// Logging config
	overrideString(&cfg.LoggingConfig.Level, "LOG_LEVEL")
	overrideString(&cfg.LoggingConfig.Output, "LOG_OUTPUT")
	overrideBool(&cfg.LoggingConfig.JSONFormat, "LOG_JSON")
	overrideBool(&cfg.LoggingConfig.IncludeFile, "LOG_INCLUDE_FILE")

	// Redis config
	overrideBool(&cfg.RedisConfig.Enabled, "REDIS_ENABLED")
	overrideString(&cfg.RedisConfig.Address, "REDIS_ADDRESS")
	overrideString(&cfg.RedisConfig.Password, "REDIS_PASSWORD")
	overrideInt(&cfg.RedisConfig.DB, "REDIS_DB")
	overrideInt(&cfg.RedisConfig.PoolSize, "REDIS_POOL_SIZE")
	overrideInt(&cfg.RedisConfig.CacheTTL, "REDIS_CACHE_TTL")

	// Database config
	overrideBool(&cfg.DatabaseConfig.Enabled, "DATABASE_ENABLED")
	overrideString(&cfg.DatabaseConfig.URL, "DATABASE_URL")
	overrideInt(&cfg.DatabaseConfig.MaxConns, "DATABASE_MAX_CONNS")
	overrideDuration(&cfg.DatabaseConfig.ConnectTimeout, "DATABASE_CONNECT_TIMEOUT")
	overrideInt(&cfg.DatabaseConfig.RetentionDays, "DATABASE_RETENTION_DAYS")
	overrideBool(&cfg.DatabaseConfig.MigrateOnStart, "DATABASE_MIGRATE_ON_START")
}

func overrideString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func overrideInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			*dst = intVal
		}
	}
}

func overrideFloat(dst *float64, key string) {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			*dst = floatVal
		}
	}
}

func overrideBool(dst *bool, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value == "true" || value == "1"
	}
}

func overrideDuration(dst *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			*dst = duration
		}
	}
}

// GenerateSampleConfig writes the default configuration as a starting point.
func GenerateSampleConfig(filename string) error {
	data, err := json.MarshalIndent(defaultConfig(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
