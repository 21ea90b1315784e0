package storage

import (
	"context"
	"sort"
	"sync"

	"mercator-hq/guard/pkg/audit"
)

// MemoryStorage implements audit.Storage in memory. Records are kept in
// insertion order; once MaxRecords is reached the oldest are evicted.
type MemoryStorage struct {
	records    []*audit.Record
	maxRecords int
	mu         sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend. maxRecords <= 0
// means unlimited.
func NewMemoryStorage(maxRecords int) *MemoryStorage {
	return &MemoryStorage{maxRecords: maxRecords}
}

// Store persists a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records = append(s.records, &recordCopy)

	if s.maxRecords > 0 && len(s.records) > s.maxRecords {
		evict := len(s.records) - s.maxRecords
		clear(s.records[:evict])
		s.records = s.records[evict:]
	}

	return nil
}

// Query retrieves audit records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	s.mu.RLock()
	results := s.filter(query)
	s.mu.RUnlock()

	return paginate(results, query), nil
}

// QueryStream streams the records Query would return.
func (s *MemoryStorage) QueryStream(ctx context.Context, query *audit.Query) (<-chan *audit.Record, <-chan error, error) {
	records, err := s.Query(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	recordsCh := make(chan *audit.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, record := range records {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of audit records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if query.Matches(record) {
			count++
		}
	}
	return count, nil
}

// Delete removes audit records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if query.Matches(record) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	clear(s.records[len(kept):])
	s.records = kept

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// Size returns the number of records held.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// filter returns copies of the matching records. Callers hold s.mu.
func (s *MemoryStorage) filter(query *audit.Query) []*audit.Record {
	var results []*audit.Record
	for _, record := range s.records {
		if query.Matches(record) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}
	return results
}

// paginate sorts results the way the SQLite backend does and applies the
// query's offset and limit.
func paginate(results []*audit.Record, query *audit.Query) []*audit.Record {
	q := *query
	q.ApplyDefaults()

	less := func(a, b *audit.Record) bool {
		switch q.SortBy {
		case audit.SortRecordedAt:
			return a.RecordedAt.Before(b.RecordedAt)
		case audit.SortDuration:
			return a.Duration < b.Duration
		default:
			return a.DecidedAt.Before(b.DecidedAt)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if q.SortOrder == "asc" {
			return less(results[i], results[j])
		}
		return less(results[j], results[i])
	})

	if q.Offset >= len(results) {
		return []*audit.Record{}
	}
	end := q.Offset + q.Limit
	if end > len(results) {
		end = len(results)
	}
	return results[q.Offset:end]
}
