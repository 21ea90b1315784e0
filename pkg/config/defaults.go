package config

import "time"

// Default values for configuration fields.
const (
	// Identity defaults
	DefaultCurrentUserID    = "current_user_123"
	DefaultProtectedAccount = "admin"

	// File rule defaults
	DefaultMaxReadBytes  = int64(100_000_000)
	DefaultMaxWriteBytes = int64(500_000_000)
	DefaultTempSuffix    = ".tmp"
	DefaultSystemPrefix  = "system_"

	// Query rule defaults
	DefaultGuardedTable = "users"
	DefaultLargeSelect  = 1000
	DefaultBulkDelete   = 100
	DefaultBulkUpdate   = 50
	DefaultHighPriority = 5

	// Order rule defaults
	DefaultPremiumOnlyAbove = 10000.0
	DefaultReviewAmount     = 5000.0
	DefaultReviewItems      = 20
	DefaultMinimumAmount    = 10.0

	// Audit defaults
	DefaultAuditEnabled              = true
	DefaultAuditBackend              = "sqlite"
	DefaultAuditSQLitePath           = "data/audit.db"
	DefaultAuditSQLiteDriver         = "sqlite3"
	DefaultAuditSQLiteMaxOpenConns   = 10
	DefaultAuditSQLiteMaxIdleConns   = 5
	DefaultAuditSQLiteWALMode        = true
	DefaultAuditSQLiteBusyTimeout    = 5 * time.Second
	DefaultAuditMemoryMaxRecords     = 10000
	DefaultAuditRecorderAsyncBuffer  = 1000
	DefaultAuditRecorderWriteTimeout = 5 * time.Second
	DefaultAuditRetentionDays        = 30
	DefaultAuditRetentionSchedule    = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultLogRedactPII       = true
	DefaultMetricsEnabled     = true
	DefaultMetricsNamespace   = "guard"
	DefaultMetricsPath        = "/metrics"
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "guard"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultDurationBuckets are the decision duration histogram buckets in
// seconds. Decisions are in-memory, so the buckets start at microseconds.
var DefaultDurationBuckets = []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.01}

// Default returns a configuration populated with every default value.
// Boolean settings whose default is true are only set here, since a zero
// value cannot be told apart from an explicit false after parsing.
func Default() *Config {
	cfg := &Config{}
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Audit.SQLite.WALMode = DefaultAuditSQLiteWALMode
	cfg.Telemetry.Logging.RedactPII = DefaultLogRedactPII
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Insecure = DefaultTracingInsecure
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued field with its default.
func ApplyDefaults(cfg *Config) {
	// Identity defaults
	if cfg.Identity.CurrentUserID == "" {
		cfg.Identity.CurrentUserID = DefaultCurrentUserID
	}
	if cfg.Identity.ProtectedAccount == "" {
		cfg.Identity.ProtectedAccount = DefaultProtectedAccount
	}

	// Rule defaults
	files := &cfg.Rules.Files
	if files.MaxReadBytes == 0 {
		files.MaxReadBytes = DefaultMaxReadBytes
	}
	if files.MaxWriteBytes == 0 {
		files.MaxWriteBytes = DefaultMaxWriteBytes
	}
	if files.TempSuffix == "" {
		files.TempSuffix = DefaultTempSuffix
	}
	if files.SystemPrefix == "" {
		files.SystemPrefix = DefaultSystemPrefix
	}

	queries := &cfg.Rules.Queries
	if queries.GuardedTable == "" {
		queries.GuardedTable = DefaultGuardedTable
	}
	if queries.LargeSelect == 0 {
		queries.LargeSelect = DefaultLargeSelect
	}
	if queries.BulkDelete == 0 {
		queries.BulkDelete = DefaultBulkDelete
	}
	if queries.BulkUpdate == 0 {
		queries.BulkUpdate = DefaultBulkUpdate
	}
	if queries.HighPriority == 0 {
		queries.HighPriority = DefaultHighPriority
	}

	orders := &cfg.Rules.Orders
	if orders.PremiumOnlyAbove == 0 {
		orders.PremiumOnlyAbove = DefaultPremiumOnlyAbove
	}
	if orders.ReviewAmount == 0 {
		orders.ReviewAmount = DefaultReviewAmount
	}
	if orders.ReviewItems == 0 {
		orders.ReviewItems = DefaultReviewItems
	}
	if orders.MinimumAmount == 0 {
		orders.MinimumAmount = DefaultMinimumAmount
	}

	// Audit defaults
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultAuditSQLitePath
	}
	if cfg.Audit.SQLite.Driver == "" {
		cfg.Audit.SQLite.Driver = DefaultAuditSQLiteDriver
	}
	if cfg.Audit.SQLite.MaxOpenConns == 0 {
		cfg.Audit.SQLite.MaxOpenConns = DefaultAuditSQLiteMaxOpenConns
	}
	if cfg.Audit.SQLite.MaxIdleConns == 0 {
		cfg.Audit.SQLite.MaxIdleConns = DefaultAuditSQLiteMaxIdleConns
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultAuditSQLiteBusyTimeout
	}
	if cfg.Audit.Memory.MaxRecords == 0 {
		cfg.Audit.Memory.MaxRecords = DefaultAuditMemoryMaxRecords
	}
	if cfg.Audit.Recorder.AsyncBuffer == 0 {
		cfg.Audit.Recorder.AsyncBuffer = DefaultAuditRecorderAsyncBuffer
	}
	if cfg.Audit.Recorder.WriteTimeout == 0 {
		cfg.Audit.Recorder.WriteTimeout = DefaultAuditRecorderWriteTimeout
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultAuditRetentionSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
