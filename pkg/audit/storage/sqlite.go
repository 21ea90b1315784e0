package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/config"
)

// SQLite driver names.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend. It creates the
// parent directory of the database file, initializes the schema and enables
// WAL mode if configured.
func NewSQLiteStorage(cfg *config.SQLiteConfig) (*SQLiteStorage, error) {
	if cfg == nil {
		cfg = &config.Default().Audit.SQLite
	}
	c := *cfg
	if c.Driver == "" {
		c.Driver = DriverCGO
	}
	if c.Driver != DriverCGO && c.Driver != DriverPure {
		return nil, audit.NewStorageError("sqlite", "open", fmt.Errorf("unsupported driver %q", c.Driver))
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	if dir := filepath.Dir(c.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, audit.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open(c.Driver, c.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: c,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", c.Path,
		"driver", c.Driver,
		"wal_mode", c.WALMode,
		"max_open_conns", c.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return audit.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store persists an audit record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	query := `INSERT INTO decisions (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var actor any
	if record.Actor != "" {
		actor = record.Actor
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RequestID,
		record.DecidedAt.UnixNano(), record.RecordedAt.UnixNano(),
		record.Domain, record.Shape, record.RuleID, record.Outcome, record.Message,
		record.Input, record.InputHash,
		actor,
		int64(record.Duration),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves audit records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	sqlQuery, args := s.buildSelect(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*audit.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream returns a channel of audit records for memory-efficient streaming.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Record, <-chan error, error) {
	recordsCh := make(chan *audit.Record, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := s.buildSelect(query)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRow(rows)
			if err != nil {
				errCh <- audit.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- audit.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of audit records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes audit records matching the query filters.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// buildSelect builds the paginated SELECT for query. Sort fields are
// validated against audit.ValidSortFields before being interpolated.
func (s *SQLiteStorage) buildSelect(query *audit.Query) (string, []any) {
	q := *query
	q.ApplyDefaults()
	if !audit.ValidSortFields[q.SortBy] {
		q.SortBy = audit.SortDecidedAt
	}
	sortOrder := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	whereClause, args := buildWhereClause(&q)

	sqlQuery := "SELECT " + recordColumns + " FROM decisions"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s, id %s", q.SortBy, sortOrder, sortOrder)
	sqlQuery += fmt.Sprintf(" LIMIT %d", q.Limit)
	if q.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	return sqlQuery, args
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *audit.Query) (string, []any) {
	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "decided_at >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "decided_at <= ?")
		args = append(args, query.EndTime.UnixNano())
	}

	filters := []struct {
		column string
		value  string
	}{
		{"domain", query.Domain},
		{"rule_id", query.RuleID},
		{"outcome", query.Outcome},
		{"actor", query.Actor},
		{"request_id", query.RequestID},
	}
	for _, f := range filters {
		if f.value != "" {
			conditions = append(conditions, f.column+" = ?")
			args = append(args, f.value)
		}
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into a Record.
func scanRow(row *sql.Rows) (*audit.Record, error) {
	var (
		record                audit.Record
		decidedAt, recordedAt int64
		duration              int64
		actor                 sql.NullString
	)

	err := row.Scan(
		&record.ID, &record.RequestID,
		&decidedAt, &recordedAt,
		&record.Domain, &record.Shape, &record.RuleID, &record.Outcome, &record.Message,
		&record.Input, &record.InputHash,
		&actor,
		&duration,
	)
	if err != nil {
		return nil, err
	}

	record.DecidedAt = time.Unix(0, decidedAt).UTC()
	record.RecordedAt = time.Unix(0, recordedAt).UTC()
	record.Duration = time.Duration(duration)
	if actor.Valid {
		record.Actor = actor.String
	}

	return &record, nil
}
