package storage

import (
	"fmt"

	"mercator-hq/guard/pkg/audit"
	"mercator-hq/guard/pkg/config"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// New opens the storage backend selected by cfg.
func New(cfg *config.AuditConfig) (audit.Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(cfg.Memory.MaxRecords), nil
	case BackendSQLite, "":
		return NewSQLiteStorage(&cfg.SQLite)
	default:
		return nil, audit.NewStorageError(cfg.Backend, "open", fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}
