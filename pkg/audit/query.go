package audit

import (
	"fmt"

	"mercator-hq/guard/pkg/guard"
)

const (
	// DefaultLimit is the number of records returned when a query sets none.
	DefaultLimit = 100

	// MaxLimit is the largest page a single query may request.
	MaxLimit = 10000
)

// Sortable fields. Each maps to a storage column of the same name.
const (
	SortDecidedAt  = "decided_at"
	SortRecordedAt = "recorded_at"
	SortDuration   = "duration"
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	SortDecidedAt:  true,
	SortRecordedAt: true,
	SortDuration:   true,
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// Validate checks a query and returns a *QueryError describing the first
// invalid parameter.
func (q *Query) Validate() error {
	if q.Limit < 0 {
		return NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}

	if q.Outcome != "" && !guard.Outcome(q.Outcome).Valid() {
		return NewQueryError(q, fmt.Errorf("invalid outcome: %s", q.Outcome))
	}

	return nil
}

// ApplyDefaults fills the pagination and sorting defaults: the newest
// DefaultLimit records first.
func (q *Query) ApplyDefaults() {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = SortDecidedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

// Matches reports whether r satisfies the query's filters. Pagination and
// sorting are not considered.
func (q *Query) Matches(r *Record) bool {
	if q.StartTime != nil && r.DecidedAt.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.DecidedAt.After(*q.EndTime) {
		return false
	}
	if q.Domain != "" && r.Domain != q.Domain {
		return false
	}
	if q.RuleID != "" && r.RuleID != q.RuleID {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	if q.Actor != "" && r.Actor != q.Actor {
		return false
	}
	if q.RequestID != "" && r.RequestID != q.RequestID {
		return false
	}
	return true
}
