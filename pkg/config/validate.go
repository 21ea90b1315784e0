package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "audit.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateIdentity(&cfg.Identity)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateIdentity validates identity configuration.
func validateIdentity(cfg *IdentityConfig) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.CurrentUserID) == "" {
		errs = append(errs, FieldError{
			Field:   "identity.current_user_id",
			Message: "current user ID is required",
		})
	}
	if strings.TrimSpace(cfg.ProtectedAccount) == "" {
		errs = append(errs, FieldError{
			Field:   "identity.protected_account",
			Message: "protected account is required",
		})
	}

	return errs
}

// validateRules validates rule thresholds.
func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	// Files
	if cfg.Files.MaxReadBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.files.max_read_bytes",
			Message: "max read bytes must be non-negative",
		})
	}
	if cfg.Files.MaxWriteBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.files.max_write_bytes",
			Message: "max write bytes must be non-negative",
		})
	}

	// Queries
	if cfg.Queries.GuardedTable == "" {
		errs = append(errs, FieldError{
			Field:   "rules.queries.guarded_table",
			Message: "guarded table is required",
		})
	}
	thresholds := []struct {
		field string
		value int
	}{
		{"large_select", cfg.Queries.LargeSelect},
		{"bulk_delete", cfg.Queries.BulkDelete},
		{"bulk_update", cfg.Queries.BulkUpdate},
		{"high_priority", cfg.Queries.HighPriority},
	}
	for _, th := range thresholds {
		if th.value < 0 {
			errs = append(errs, FieldError{
				Field:   "rules.queries." + th.field,
				Message: "threshold must be non-negative",
			})
		}
	}

	// Orders
	if cfg.Orders.ReviewItems < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.orders.review_items",
			Message: "review items must be non-negative",
		})
	}
	if cfg.Orders.ReviewAmount > cfg.Orders.PremiumOnlyAbove {
		errs = append(errs, FieldError{
			Field:   "rules.orders.review_amount",
			Message: fmt.Sprintf("review amount %.2f must not exceed premium_only_above %.2f", cfg.Orders.ReviewAmount, cfg.Orders.PremiumOnlyAbove),
		})
	}

	return errs
}

// validateAudit validates audit configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	// If auditing is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	switch cfg.Backend {
	case "memory":
		if cfg.Memory.MaxRecords < 0 {
			errs = append(errs, FieldError{
				Field:   "audit.memory.max_records",
				Message: "max records must be non-negative",
			})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "audit.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.Driver != "sqlite3" && cfg.SQLite.Driver != "sqlite" {
			errs = append(errs, FieldError{
				Field:   "audit.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite3' or 'sqlite'", cfg.SQLite.Driver),
			})
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			errs = append(errs, FieldError{
				Field:   "audit.sqlite.max_open_conns",
				Message: "max open connections must be at least 1",
			})
		}
	case "":
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: "backend is required when audit is enabled",
		})
	default:
		errs = append(errs, FieldError{
			Field:   "audit.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		})
	}

	if cfg.Recorder.AsyncBuffer < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.async_buffer",
			Message: "async buffer must be at least 1",
		})
	}
	if cfg.Recorder.WriteTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "audit.recorder.write_timeout",
			Message: "write timeout must be positive",
		})
	}

	// Validate retention
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "audit.retention.schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Retention.Schedule, err),
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text' or 'console'", cfg.Logging.Format),
		})
	}

	// Validate metrics
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}
	for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
		if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
