// Package audit defines the decision audit trail: the Record written for
// every decision, the Query used to read records back, and the Storage and
// Exporter interfaces implemented by its subpackages.
//
// # Architecture
//
//	gatekeeper ──Decision──> recorder ──(async channel)──> storage (memory | sqlite)
//	                                                          ▲
//	                        retention (cron) ──prune──────────┤
//	                        export (json | csv) <──query──────┘
//
// The recorder never blocks a decision on storage: records are queued on a
// buffered channel and written by a single worker. When the queue stays full
// for longer than the configured write timeout the record is dropped and the
// drop is logged and counted.
//
// # Storage
//
// The SQLite backend supports two drivers: "sqlite3" (github.com/mattn/go-sqlite3,
// cgo) and "sqlite" (modernc.org/sqlite, pure Go). Timestamps are stored as
// Unix nanoseconds so both drivers compare them identically.
//
// # Retention
//
// Records older than the retention period are pruned on a cron schedule,
// optionally capped to a maximum record count.
package audit
