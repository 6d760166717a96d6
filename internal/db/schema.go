package db

// SchemaSQL is the single source of truth for the database schema. Tests
// build their fixtures from this constant so repository code and schema
// cannot drift apart silently.
const SchemaSQL = `
-- Missions (actionable work derived from classified messages)
CREATE TABLE IF NOT EXISTS missions (
	id TEXT PRIMARY KEY,
	message_id TEXT NOT NULL,
	title TEXT NOT NULL,
	urgency TEXT NOT NULL CHECK(urgency IN ('CRITICAL', 'HIGH', 'MEDIUM', 'LOW', 'INFO')),
	deadline TEXT,
	action_required TEXT,
	context TEXT,
	people_involved TEXT, -- JSON array
	status TEXT NOT NULL CHECK(status IN ('NEW', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')) DEFAULT 'NEW',
	task_ref TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME,
	raw_decision TEXT
);

-- Processed messages (dedup and audit ledger, one row per message ID)
CREATE TABLE IF NOT EXISTS processed_messages (
	message_id TEXT PRIMARY KEY,
	subject TEXT NOT NULL,
	sender TEXT NOT NULL,
	received_at TEXT,
	processed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	has_task BOOLEAN NOT NULL DEFAULT 0,
	mission_id TEXT
);

-- System config (scalar state, notably the check watermark)
CREATE TABLE IF NOT EXISTS system_config (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Print jobs (audit-only ledger of content submitted for printing)
CREATE TABLE IF NOT EXISTS print_jobs (
	id TEXT PRIMARY KEY,
	mission_id TEXT NOT NULL,
	content TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('PENDING', 'PRINTING', 'COMPLETED', 'FAILED')) DEFAULT 'PENDING',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	printed_at DATETIME,
	error TEXT
);
`
