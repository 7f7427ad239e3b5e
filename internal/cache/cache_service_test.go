package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"market-advisor/config"
)

func degradedService(t *testing.T) *CacheService {
	t.Helper()
	// Points at a port nothing listens on, so the service starts degraded.
	cs, err := NewCacheService(config.RedisConfig{
		Enabled:  true,
		Address:  "127.0.0.1:1",
		PoolSize: 2,
		CacheTTL: 300,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	return cs
}

func TestNewCacheServiceDisabled(t *testing.T) {
	_, err := NewCacheService(config.RedisConfig{Enabled: false}, zerolog.Nop())
	if err == nil {
		t.Error("disabled config should be an error")
	}
}

func TestDegradedModeShortCircuits(t *testing.T) {
	cs := degradedService(t)
	defer cs.Close()

	if cs.IsHealthy() {
		t.Fatal("unreachable Redis should start unhealthy")
	}

	ctx := context.Background()
	if _, err := cs.Get(ctx, "analysis:all"); err == nil {
		t.Error("degraded Get should fail fast")
	}
	if err := cs.Set(ctx, "analysis:all", "x", time.Minute); err == nil {
		t.Error("degraded Set should fail fast")
	}
	if err := cs.GetJSON(ctx, "analysis:all", &struct{}{}); err == nil {
		t.Error("degraded GetJSON should fail fast")
	}
}

func TestTTLFromConfig(t *testing.T) {
	cs := degradedService(t)
	defer cs.Close()

	if got := cs.TTL(); got != 300*time.Second {
		t.Errorf("expected 300s TTL, got %v", got)
	}
}

func TestStatsReflectState(t *testing.T) {
	cs := degradedService(t)
	defer cs.Close()

	stats := cs.GetStats()
	if stats.Healthy {
		t.Error("stats should report unhealthy")
	}
	if stats.Address != "127.0.0.1:1" || stats.PoolSize != 2 {
		t.Errorf("stats should carry config values, got %+v", stats)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := AnalysisKey("all"); got != "analysis:all" {
		t.Errorf("unexpected analysis key %q", got)
	}
	if RecommendationsKey() != "recommendations:all" || PortfolioKey() != "portfolio:summary" {
		t.Error("unexpected batch keys")
	}
}
