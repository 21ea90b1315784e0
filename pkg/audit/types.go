package audit

import (
	"context"
	"io"
	"time"
)

// Record is the audit trail entry for a single decision. It captures who
// asked, what was asked and which rule answered.
type Record struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // Caller supplied or generated per input

	// Timestamps
	DecidedAt  time.Time `json:"decided_at"`  // When the decision was made
	RecordedAt time.Time `json:"recorded_at"` // When the record was written

	// Decision
	Domain  string `json:"domain"`
	Shape   string `json:"shape"`
	RuleID  string `json:"rule_id"`
	Outcome string `json:"outcome"` // "success", "warning", "error", "pending"
	Message string `json:"message"`

	// Input
	Input     string `json:"input"`      // Encoded envelope
	InputHash string `json:"input_hash"` // SHA-256 of Input

	// Actor
	Actor string `json:"actor"` // Acting user, if known

	// Latency of the decision itself.
	Duration time.Duration `json:"duration"`
}

// Query defines filter parameters for querying audit records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	Domain    string `json:"domain,omitempty"`
	RuleID    string `json:"rule_id,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Actor     string `json:"actor,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// Sorting
	SortBy    string `json:"sort_by,omitempty"`    // "decided_at", "recorded_at", "duration"
	SortOrder string `json:"sort_order,omitempty"` // "asc", "desc"
}

// Storage defines the interface for audit storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists an audit record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves audit records matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// QueryStream returns a channel of audit records for memory-efficient
	// streaming. Both channels are closed when the query completes; errCh
	// carries at most one error.
	QueryStream(ctx context.Context, query *Query) (<-chan *Record, <-chan error, error)

	// Count returns the number of audit records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes audit records matching the query filters and returns
	// the number deleted. Pagination and sorting are ignored.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}

// Exporter writes audit records in a specific format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
	ExportStream(ctx context.Context, recordsCh <-chan *Record, w io.Writer) error
}
