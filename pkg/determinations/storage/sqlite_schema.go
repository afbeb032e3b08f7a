package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the determinations
// database schema. Filterable fields are lifted into indexed columns;
// the full determination payload is stored as JSON.
const Schema = `
-- Stored determinations table
CREATE TABLE IF NOT EXISTS determinations (
    id TEXT PRIMARY KEY,
    subject_id TEXT NOT NULL,

    -- Lifted filter columns
    policy_id TEXT NOT NULL,
    policy_version TEXT NOT NULL,
    overall_status TEXT NOT NULL,
    met_count INTEGER NOT NULL,
    total_count INTEGER NOT NULL,
    as_of TIMESTAMP NOT NULL,

    -- Timestamps
    recorded_at TIMESTAMP NOT NULL,

    -- Full determination payload
    determination TEXT NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_determinations_recorded_at ON determinations(recorded_at);
CREATE INDEX IF NOT EXISTS idx_determinations_subject_id ON determinations(subject_id);
CREATE INDEX IF NOT EXISTS idx_determinations_policy_id ON determinations(policy_id);
CREATE INDEX IF NOT EXISTS idx_determinations_overall_status ON determinations(overall_status);
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
