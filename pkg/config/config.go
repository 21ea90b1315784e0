package config

import "time"

// Config is the root configuration structure for the guard engine.
// It contains the identity used by access rules, the thresholds of the
// configurable rule tables, audit storage and telemetry settings.
type Config struct {
	// Identity configures who the acting user is for access decisions.
	Identity IdentityConfig `yaml:"identity"`

	// Rules contains the thresholds of the file, query and order tables.
	Rules RulesConfig `yaml:"rules"`

	// Audit contains configuration for the decision audit trail including
	// backend selection, the async recorder and retention.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Watch enables hot reload of this file while `guard run` is active.
	// Default: false
	Watch bool `yaml:"watch"`
}

// IdentityConfig configures the acting user for access decisions.
type IdentityConfig struct {
	// CurrentUserID is the user whose own data USER-level callers may access.
	// Default: "current_user_123"
	CurrentUserID string `yaml:"current_user_id"`

	// ProtectedAccount is the user ID that ADMIN callers may not delete.
	// Default: "admin"
	ProtectedAccount string `yaml:"protected_account"`
}

// RulesConfig contains the thresholds of the configurable rule tables.
type RulesConfig struct {
	Files   FilesRulesConfig `yaml:"files"`
	Queries QueryRulesConfig `yaml:"queries"`
	Orders  OrderRulesConfig `yaml:"orders"`
}

// FilesRulesConfig configures the file operation table.
type FilesRulesConfig struct {
	// MaxReadBytes is the largest readable file.
	// Default: 100000000
	MaxReadBytes int64 `yaml:"max_read_bytes"`

	// MaxWriteBytes is the largest writable file.
	// Default: 500000000
	MaxWriteBytes int64 `yaml:"max_write_bytes"`

	// TempSuffix marks unreadable temporary files.
	// Default: ".tmp"
	TempSuffix string `yaml:"temp_suffix"`

	// SystemPrefix marks undeletable system files.
	// Default: "system_"
	SystemPrefix string `yaml:"system_prefix"`
}

// QueryRulesConfig configures the database query table.
type QueryRulesConfig struct {
	// GuardedTable is the table with pagination and bulk-write limits.
	// Default: "users"
	GuardedTable string `yaml:"guarded_table"`

	// LargeSelect is the row count above which selects draw a warning.
	// Default: 1000
	LargeSelect int `yaml:"large_select"`

	// BulkDelete is the row count above which deletes need a transaction.
	// Default: 100
	BulkDelete int `yaml:"bulk_delete"`

	// BulkUpdate is the row count above which updates need a transaction.
	// Default: 50
	BulkUpdate int `yaml:"bulk_update"`

	// HighPriority is the priority above which transactions are flagged.
	// Default: 5
	HighPriority int `yaml:"high_priority"`
}

// OrderRulesConfig configures the order validation table.
type OrderRulesConfig struct {
	// PremiumOnlyAbove is the amount above which premium membership is required.
	// Default: 10000
	PremiumOnlyAbove float64 `yaml:"premium_only_above"`

	// ReviewAmount is the amount that, together with ReviewItems, triggers
	// manual review.
	// Default: 5000
	ReviewAmount float64 `yaml:"review_amount"`

	// ReviewItems is the item count that, together with ReviewAmount,
	// triggers manual review.
	// Default: 20
	ReviewItems int `yaml:"review_items"`

	// MinimumAmount is the amount below which only priority orders pass.
	// Default: 10
	MinimumAmount float64 `yaml:"minimum_amount"`
}

// AuditConfig contains configuration for the decision audit trail.
type AuditConfig struct {
	// Enabled controls whether decisions are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for audit records.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Memory contains in-memory backend configuration.
	Memory MemoryConfig `yaml:"memory"`

	// Recorder contains async recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite3" (mattn/go-sqlite3, cgo), "sqlite" (modernc.org/sqlite, pure Go)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// MemoryConfig contains in-memory backend configuration.
type MemoryConfig struct {
	// MaxRecords caps the records held in memory; the oldest are evicted.
	// Default: 10000
	MaxRecords int `yaml:"max_records"`
}

// RecorderConfig contains audit recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds both enqueueing a record and storing it.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain audit records.
	// 0 means keep records forever.
	// Default: 30
	Days int `yaml:"days"`

	// Schedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII masks secrets, e-mail addresses and file contents in logs.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "guard"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: ""
	Subsystem string `yaml:"subsystem"`

	// ListenAddress serves the metrics endpoint when set (e.g. "127.0.0.1:9090").
	// Default: "" (not served)
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// DurationBuckets defines histogram buckets for decision duration (seconds).
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "guard"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
