package dbquery

import (
	"fmt"

	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/guard"
)

// Thresholds configures the query table.
type Thresholds struct {
	// GuardedTable is the table whose large selects and bulk writes are
	// restricted. Default: "users".
	GuardedTable string

	// LargeSelect is the row count above which a non-transactional select
	// on the guarded table draws a pagination warning. Default: 1000.
	LargeSelect int

	// BulkDelete is the row count above which deletes need a transaction.
	// Default: 100.
	BulkDelete int

	// BulkUpdate is the row count above which updates need a transaction.
	// Default: 50.
	BulkUpdate int

	// HighPriority is the priority above which a transaction is flagged.
	// Default: 5.
	HighPriority int
}

// DefaultThresholds returns the default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GuardedTable: "users",
		LargeSelect:  1000,
		BulkDelete:   100,
		BulkUpdate:   50,
		HighPriority: 5,
	}
}

// NewTable builds the query table.
func NewTable(th Thresholds) (*guard.Table[Query], error) {
	if th.GuardedTable == "" {
		return nil, fmt.Errorf("dbquery: guarded table is required")
	}
	return guard.NewTable(domains.DBQuery, Shapes(), rules(th)...)
}

func rules(th Thresholds) []guard.Rule[Query] {
	onGuarded := func(q Query, op Operation) bool {
		return q.Table == th.GuardedTable && q.Operation == op && !q.IsTransaction
	}

	// DROP is rejected outside a transaction on every table, while the
	// bulk limits only apply to the guarded table.
	return []guard.Rule[Query]{
		guard.When("dbquery.large_select",
			func(q Query) bool { return onGuarded(q, Select) && q.RecordCount > th.LargeSelect },
			guard.OutcomeWarning,
			guard.Message[Query]("⚠️ Large query detected - consider adding pagination")),
		guard.When("dbquery.bulk_delete",
			func(q Query) bool { return onGuarded(q, Delete) && q.RecordCount > th.BulkDelete },
			guard.OutcomeError,
			guard.Message[Query]("❌ Bulk delete requires transaction")),
		guard.When("dbquery.bulk_update",
			func(q Query) bool { return onGuarded(q, Update) && q.RecordCount > th.BulkUpdate },
			guard.OutcomeError,
			guard.Message[Query]("❌ Bulk update requires transaction")),
		guard.When("dbquery.drop_outside_transaction",
			func(q Query) bool { return q.Operation == Drop && !q.IsTransaction },
			guard.OutcomeError,
			guard.Message[Query]("❌ DROP operations require transaction")),
		guard.When("dbquery.high_priority_transaction",
			func(q Query) bool { return q.IsTransaction && q.Priority > th.HighPriority },
			guard.OutcomeSuccess,
			func(q Query) string {
				return fmt.Sprintf("🚀 High priority transaction on %s: %s (%d records)", q.Table, q.Operation, q.RecordCount)
			}),
		guard.When("dbquery.transaction",
			func(q Query) bool { return q.IsTransaction },
			guard.OutcomeSuccess,
			func(q Query) string {
				return fmt.Sprintf("✅ Transaction on %s: %s (%d records)", q.Table, q.Operation, q.RecordCount)
			}),
		guard.Otherwise("dbquery.query",
			guard.OutcomeSuccess,
			func(q Query) string {
				return fmt.Sprintf("✅ Query on %s: %s (%d records)", q.Table, q.Operation, q.RecordCount)
			}),
	}
}

// Samples returns the demonstration queries in presentation order.
func Samples() []Query {
	return []Query{
		NewQuery("users", Select, 500),
		NewQuery("users", Select, 1500),
		NewQuery("users", Delete, 200),
		NewQuery("users", Update, 75),
		NewQuery("users", Drop, 1),
		{Table: "orders", Operation: Insert, RecordCount: 10, IsTransaction: true, Priority: 8},
		{Table: "products", Operation: Update, RecordCount: 25, IsTransaction: true, Priority: 3},
	}
}
