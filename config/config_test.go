package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.ServerConfig.Port)
	}
	if cfg.EngineConfig.RiskTolerance != 0.5 || cfg.EngineConfig.MinConfidence != 60 {
		t.Errorf("unexpected engine defaults: %+v", cfg.EngineConfig)
	}
	if cfg.RedisConfig.Enabled || cfg.DatabaseConfig.Enabled {
		t.Error("optional backends should default to disabled")
	}
	if cfg.DataConfig.SnapshotDir != "data" {
		t.Errorf("expected default data dir, got %q", cfg.DataConfig.SnapshotDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("ENGINE_RISK_TOLERANCE", "0.8")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("LOG_JSON", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerConfig.Port != 9090 {
		t.Errorf("WEB_PORT override lost, got %d", cfg.ServerConfig.Port)
	}
	if cfg.EngineConfig.RiskTolerance != 0.8 {
		t.Errorf("ENGINE_RISK_TOLERANCE override lost, got %v", cfg.EngineConfig.RiskTolerance)
	}
	if !cfg.RedisConfig.Enabled {
		t.Error("REDIS_ENABLED override lost")
	}
	if cfg.LoggingConfig.JSONFormat {
		t.Error("LOG_JSON=false override lost")
	}
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("WEB_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("unparseable value should keep the default, got %d", cfg.ServerConfig.Port)
	}
}
