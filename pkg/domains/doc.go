// Package domains groups the five guarded decision domains. Each subpackage
// defines a closed variant set and the ordered rule table that classifies it:
//
//   - network: HTTP-style responses (success, error, loading, timeout)
//   - access:  user-management API requests authorized by auth level
//   - files:   read, write and delete file operations
//   - dbquery: database queries gated by table, operation and transaction
//   - orders:  order validation by amount, items, priority and tier
package domains

// Domain names shared by tables, codecs, metrics and the audit trail.
const (
	Network = "network"
	Access  = "access"
	Files   = "files"
	DBQuery = "dbquery"
	Orders  = "orders"
)

// Names returns every domain name in presentation order.
func Names() []string {
	return []string{Network, Access, Files, DBQuery, Orders}
}
