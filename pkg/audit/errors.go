package audit

import (
	"errors"
	"fmt"
)

// Error categories. Every typed error below matches its category with
// errors.Is as well as its cause.
var (
	ErrStorage      = errors.New("audit storage failure")
	ErrInvalidQuery = errors.New("invalid audit query")
	ErrRecord       = errors.New("audit record not written")
	ErrRetention    = errors.New("audit retention failure")
	ErrExport       = errors.New("audit export failure")
)

// StorageError is returned by storage backends.
type StorageError struct {
	Backend   string // "sqlite", "memory"
	Operation string // "open", "store", "query", "delete", ...
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit %s %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Cause} }

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// QueryError reports the first invalid parameter of a Query.
type QueryError struct {
	Query *Query
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid audit query: %v", e.Cause)
}

func (e *QueryError) Unwrap() []error { return []error{ErrInvalidQuery, e.Cause} }

// NewQueryError creates a new QueryError.
func NewQueryError(query *Query, cause error) *QueryError {
	return &QueryError{Query: query, Cause: cause}
}

// RecorderError is returned when a decision could not be queued for the
// audit trail. RecordID is empty when the record could not be built.
type RecorderError struct {
	RecordID string
	Cause    error
}

func (e *RecorderError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("audit record not built: %v", e.Cause)
	}
	return fmt.Sprintf("audit record %s dropped: %v", e.RecordID, e.Cause)
}

func (e *RecorderError) Unwrap() []error { return []error{ErrRecord, e.Cause} }

// NewRecorderError creates a new RecorderError.
func NewRecorderError(recordID string, cause error) *RecorderError {
	return &RecorderError{RecordID: recordID, Cause: cause}
}

// RetentionError is returned when pruning by age fails.
type RetentionError struct {
	RetentionDays int
	Cause         error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("audit retention (%d days): %v", e.RetentionDays, e.Cause)
}

func (e *RetentionError) Unwrap() []error { return []error{ErrRetention, e.Cause} }

// NewRetentionError creates a new RetentionError.
func NewRetentionError(retentionDays int, cause error) *RetentionError {
	return &RetentionError{RetentionDays: retentionDays, Cause: cause}
}

// ExportError is returned by exporters. RecordCount is the number of
// records written before the failure.
type ExportError struct {
	Format      string
	RecordCount int
	Cause       error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("audit %s export after %d records: %v", e.Format, e.RecordCount, e.Cause)
}

func (e *ExportError) Unwrap() []error { return []error{ErrExport, e.Cause} }

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{Format: format, RecordCount: recordCount, Cause: cause}
}
