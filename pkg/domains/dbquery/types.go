// Package dbquery gates database queries by table, operation, transaction
// status and priority.
package dbquery

import (
	"fmt"
	"strings"

	"mercator-hq/guard/pkg/guard"
)

// Operation is the closed set of query operations.
type Operation string

const (
	Select Operation = "SELECT"
	Insert Operation = "INSERT"
	Update Operation = "UPDATE"
	Delete Operation = "DELETE"
	Drop   Operation = "DROP"
)

// Operations returns every operation.
func Operations() []Operation {
	return []Operation{Select, Insert, Update, Delete, Drop}
}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	switch op {
	case Select, Insert, Update, Delete, Drop:
		return true
	default:
		return false
	}
}

// ParseOperation parses an operation name case-insensitively.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	if !op.Valid() {
		return "", fmt.Errorf("unknown query operation %q", s)
	}
	return op, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *Operation) UnmarshalText(text []byte) error {
	parsed, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// ShapeQuery is the only case of Query.
const ShapeQuery guard.Shape = "query"

// Shapes returns the single case of Query.
func Shapes() []guard.Shape {
	return []guard.Shape{ShapeQuery}
}

// Query describes a database query awaiting execution.
type Query struct {
	Table         string    `json:"table"`
	Operation     Operation `json:"operation"`
	RecordCount   int       `json:"record_count"`
	IsTransaction bool      `json:"is_transaction"`
	Priority      int       `json:"priority"`
}

// NewQuery returns a non-transactional query with priority 1.
func NewQuery(table string, op Operation, records int) Query {
	return Query{Table: table, Operation: op, RecordCount: records, Priority: 1}
}

// Shape implements guard.Variant.
func (Query) Shape() guard.Shape { return ShapeQuery }
