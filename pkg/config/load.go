package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "GUARD_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields absent from the file keep their defaults. The result is validated.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention GUARD_SECTION_FIELD (e.g., GUARD_AUDIT_BACKEND).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed numeric and boolean values are ignored.
func applyEnvOverrides(cfg *Config) {
	// Identity overrides
	envString("IDENTITY_CURRENT_USER_ID", &cfg.Identity.CurrentUserID)
	envString("IDENTITY_PROTECTED_ACCOUNT", &cfg.Identity.ProtectedAccount)

	// Rule overrides
	envInt64("RULES_FILES_MAX_READ_BYTES", &cfg.Rules.Files.MaxReadBytes)
	envInt64("RULES_FILES_MAX_WRITE_BYTES", &cfg.Rules.Files.MaxWriteBytes)
	envString("RULES_FILES_TEMP_SUFFIX", &cfg.Rules.Files.TempSuffix)
	envString("RULES_FILES_SYSTEM_PREFIX", &cfg.Rules.Files.SystemPrefix)
	envString("RULES_QUERIES_GUARDED_TABLE", &cfg.Rules.Queries.GuardedTable)
	envInt("RULES_QUERIES_LARGE_SELECT", &cfg.Rules.Queries.LargeSelect)
	envInt("RULES_QUERIES_BULK_DELETE", &cfg.Rules.Queries.BulkDelete)
	envInt("RULES_QUERIES_BULK_UPDATE", &cfg.Rules.Queries.BulkUpdate)
	envInt("RULES_QUERIES_HIGH_PRIORITY", &cfg.Rules.Queries.HighPriority)
	envFloat("RULES_ORDERS_PREMIUM_ONLY_ABOVE", &cfg.Rules.Orders.PremiumOnlyAbove)
	envFloat("RULES_ORDERS_REVIEW_AMOUNT", &cfg.Rules.Orders.ReviewAmount)
	envInt("RULES_ORDERS_REVIEW_ITEMS", &cfg.Rules.Orders.ReviewItems)
	envFloat("RULES_ORDERS_MINIMUM_AMOUNT", &cfg.Rules.Orders.MinimumAmount)

	// Audit overrides
	envBool("AUDIT_ENABLED", &cfg.Audit.Enabled)
	envString("AUDIT_BACKEND", &cfg.Audit.Backend)
	envString("AUDIT_SQLITE_PATH", &cfg.Audit.SQLite.Path)
	envString("AUDIT_SQLITE_DRIVER", &cfg.Audit.SQLite.Driver)
	envBool("AUDIT_SQLITE_WAL_MODE", &cfg.Audit.SQLite.WALMode)
	envDuration("AUDIT_SQLITE_BUSY_TIMEOUT", &cfg.Audit.SQLite.BusyTimeout)
	envInt("AUDIT_RECORDER_ASYNC_BUFFER", &cfg.Audit.Recorder.AsyncBuffer)
	envDuration("AUDIT_RECORDER_WRITE_TIMEOUT", &cfg.Audit.Recorder.WriteTimeout)
	envInt("AUDIT_RETENTION_DAYS", &cfg.Audit.Retention.Days)
	envString("AUDIT_RETENTION_SCHEDULE", &cfg.Audit.Retention.Schedule)
	envInt64("AUDIT_RETENTION_MAX_RECORDS", &cfg.Audit.Retention.MaxRecords)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_REDACT_PII", &cfg.Telemetry.Logging.RedactPII)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)

	envBool("WATCH", &cfg.Watch)
}

func lookupEnv(key string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return val, val != ""
}

func envString(key string, dst *string) {
	if val, ok := lookupEnv(key); ok {
		*dst = val
	}
}

func envBool(key string, dst *bool) {
	if val, ok := lookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if val, ok := lookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envInt64(key string, dst *int64) {
	if val, ok := lookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if val, ok := lookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val, ok := lookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
