package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
// Timestamps are Unix nanoseconds and durations are nanoseconds.
const Schema = `
-- Decision audit records
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- Timestamps
    decided_at INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL,

    -- Decision
    domain TEXT NOT NULL,
    shape TEXT NOT NULL,
    rule_id TEXT NOT NULL,
    outcome TEXT NOT NULL,
    message TEXT NOT NULL,

    -- Input
    input TEXT NOT NULL,
    input_hash TEXT NOT NULL,

    -- Actor
    actor TEXT,

    duration INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_decisions_decided_at ON decisions(decided_at);
CREATE INDEX IF NOT EXISTS idx_decisions_domain ON decisions(domain);
CREATE INDEX IF NOT EXISTS idx_decisions_rule_id ON decisions(rule_id);
CREATE INDEX IF NOT EXISTS idx_decisions_outcome ON decisions(outcome);
CREATE INDEX IF NOT EXISTS idx_decisions_actor ON decisions(actor);
CREATE INDEX IF NOT EXISTS idx_decisions_request_id ON decisions(request_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// recordColumns lists the decisions columns in scan order.
const recordColumns = `id, request_id, decided_at, recorded_at, domain, shape, rule_id, outcome, message, input, input_hash, actor, duration`
