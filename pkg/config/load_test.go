package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
identity:
  current_user_id: "user123"

rules:
  queries:
    guarded_table: "accounts"
    large_select: 250
  orders:
    minimum_amount: 1

audit:
  backend: "sqlite"
  sqlite:
    path: "./audit.db"
    driver: "sqlite"
    busy_timeout: "2s"

telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Identity.CurrentUserID != "user123" {
		t.Errorf("expected current user %q, got %q", "user123", cfg.Identity.CurrentUserID)
	}
	if cfg.Identity.ProtectedAccount != DefaultProtectedAccount {
		t.Errorf("expected default protected account, got %q", cfg.Identity.ProtectedAccount)
	}
	if cfg.Rules.Queries.GuardedTable != "accounts" || cfg.Rules.Queries.LargeSelect != 250 {
		t.Errorf("unexpected query rules: %+v", cfg.Rules.Queries)
	}
	if cfg.Rules.Queries.BulkUpdate != DefaultBulkUpdate {
		t.Errorf("expected default bulk update, got %d", cfg.Rules.Queries.BulkUpdate)
	}
	if cfg.Rules.Orders.MinimumAmount != 1 {
		t.Errorf("expected minimum amount 1, got %v", cfg.Rules.Orders.MinimumAmount)
	}
	if cfg.Audit.SQLite.Driver != "sqlite" {
		t.Errorf("expected driver %q, got %q", "sqlite", cfg.Audit.SQLite.Driver)
	}
	if cfg.Audit.SQLite.BusyTimeout != 2*time.Second {
		t.Errorf("expected busy timeout 2s, got %v", cfg.Audit.SQLite.BusyTimeout)
	}
	if !cfg.Audit.SQLite.WALMode {
		t.Error("expected WAL mode to keep its default")
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_ExplicitFalseOverridesDefault(t *testing.T) {
	path := writeConfig(t, `
audit:
  enabled: false
telemetry:
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Audit.Enabled {
		t.Error("expected audit to be disabled")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics to be disabled")
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty file should load with defaults, got: %v", err)
	}
	if cfg.Audit.Backend != DefaultAuditBackend {
		t.Errorf("expected default backend, got %q", cfg.Audit.Backend)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "invalid yaml",
			content: "identity: [unclosed",
			wantMsg: "failed to parse",
		},
		{
			name: "invalid backend",
			content: `
audit:
  backend: "postgres"
`,
			wantMsg: "audit.backend",
		},
		{
			name: "invalid cron",
			content: `
audit:
  retention:
    schedule: "every day"
`,
			wantMsg: "audit.retention.schedule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error to mention %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/guard.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
identity:
  current_user_id: "from-file"
`)

	t.Setenv("GUARD_IDENTITY_CURRENT_USER_ID", "from-env")
	t.Setenv("GUARD_RULES_QUERIES_LARGE_SELECT", "42")
	t.Setenv("GUARD_RULES_ORDERS_PREMIUM_ONLY_ABOVE", "20000.5")
	t.Setenv("GUARD_AUDIT_BACKEND", "memory")
	t.Setenv("GUARD_AUDIT_RECORDER_WRITE_TIMEOUT", "250ms")
	t.Setenv("GUARD_TELEMETRY_TRACING_ENABLED", "true")
	t.Setenv("GUARD_RULES_QUERIES_BULK_DELETE", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Identity.CurrentUserID != "from-env" {
		t.Errorf("expected env to win, got %q", cfg.Identity.CurrentUserID)
	}
	if cfg.Rules.Queries.LargeSelect != 42 {
		t.Errorf("expected large select 42, got %d", cfg.Rules.Queries.LargeSelect)
	}
	if cfg.Rules.Orders.PremiumOnlyAbove != 20000.5 {
		t.Errorf("expected premium threshold 20000.5, got %v", cfg.Rules.Orders.PremiumOnlyAbove)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("expected backend memory, got %q", cfg.Audit.Backend)
	}
	if cfg.Audit.Recorder.WriteTimeout != 250*time.Millisecond {
		t.Errorf("expected write timeout 250ms, got %v", cfg.Audit.Recorder.WriteTimeout)
	}
	if !cfg.Telemetry.Tracing.Enabled {
		t.Error("expected tracing to be enabled")
	}
	if cfg.Rules.Queries.BulkDelete != DefaultBulkDelete {
		t.Errorf("malformed override should be ignored, got %d", cfg.Rules.Queries.BulkDelete)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("GUARD_AUDIT_BACKEND", "memory")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("expected backend memory, got %q", cfg.Audit.Backend)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidAfterOverride(t *testing.T) {
	t.Setenv("GUARD_TELEMETRY_LOGGING_LEVEL", "verbose")

	_, err := LoadConfigWithEnvOverrides(writeConfig(t, ""))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !hasFieldError(verr, "telemetry.logging.level") {
		t.Errorf("expected telemetry.logging.level error, got %v", verr)
	}
}
