package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Identity.CurrentUserID != DefaultCurrentUserID {
		t.Errorf("expected current user %q, got %q", DefaultCurrentUserID, cfg.Identity.CurrentUserID)
	}
	if cfg.Identity.ProtectedAccount != "admin" {
		t.Errorf("expected protected account %q, got %q", "admin", cfg.Identity.ProtectedAccount)
	}
	if cfg.Rules.Files.MaxReadBytes != 100_000_000 {
		t.Errorf("expected max read bytes 100000000, got %d", cfg.Rules.Files.MaxReadBytes)
	}
	if cfg.Rules.Queries.LargeSelect != 1000 {
		t.Errorf("expected large select 1000, got %d", cfg.Rules.Queries.LargeSelect)
	}
	if cfg.Rules.Orders.PremiumOnlyAbove != 10000 {
		t.Errorf("expected premium threshold 10000, got %v", cfg.Rules.Orders.PremiumOnlyAbove)
	}
	if !cfg.Audit.Enabled {
		t.Error("expected audit to be enabled by default")
	}
	if !cfg.Audit.SQLite.WALMode {
		t.Error("expected WAL mode by default")
	}
	if cfg.Audit.Recorder.WriteTimeout != 5*time.Second {
		t.Errorf("expected write timeout 5s, got %v", cfg.Audit.Recorder.WriteTimeout)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be enabled by default")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config should be valid, got: %v", err)
	}
}

func TestApplyDefaults_PreservesSetValues(t *testing.T) {
	cfg := &Config{}
	cfg.Rules.Queries.GuardedTable = "accounts"
	cfg.Audit.Backend = "memory"
	cfg.Telemetry.Metrics.DurationBuckets = []float64{1, 2}

	ApplyDefaults(cfg)

	if cfg.Rules.Queries.GuardedTable != "accounts" {
		t.Errorf("expected guarded table to be preserved, got %q", cfg.Rules.Queries.GuardedTable)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("expected backend to be preserved, got %q", cfg.Audit.Backend)
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) != 2 {
		t.Errorf("expected buckets to be preserved, got %v", cfg.Telemetry.Metrics.DurationBuckets)
	}
	if cfg.Rules.Queries.BulkDelete != DefaultBulkDelete {
		t.Errorf("expected bulk delete default, got %d", cfg.Rules.Queries.BulkDelete)
	}
}

func TestApplyDefaults_DoesNotShareBuckets(t *testing.T) {
	a, b := Default(), Default()
	a.Telemetry.Metrics.DurationBuckets[0] = 42
	if b.Telemetry.Metrics.DurationBuckets[0] == 42 {
		t.Error("configs share the default bucket slice")
	}
}
