package db

// SchemaSQL is the complete schema for a fresh fitout database.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository tests
// build their in-memory databases from GetSchemaSQL() rather than hardcoding
// CREATE TABLE statements, so a column referenced by repository code but
// missing here fails immediately with "no such column".
//
// Money columns are TEXT holding decimal strings; they are never stored as REAL.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Clients moving through the pipeline
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	address TEXT,
	remark TEXT,
	stage_id TEXT NOT NULL,
	approved INTEGER NOT NULL DEFAULT 0 CHECK(approved IN (0, 1)),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_clients_stage ON clients(stage_id);

-- Checklist of the client's current stage only
CREATE TABLE IF NOT EXISTS client_substages (
	client_id TEXT NOT NULL,
	substage_id TEXT NOT NULL,
	done INTEGER NOT NULL DEFAULT 0 CHECK(done IN (0, 1)),
	PRIMARY KEY (client_id, substage_id),
	FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);

-- One ledger per approved client
CREATE TABLE IF NOT EXISTS ledgers (
	client_id TEXT PRIMARY KEY,
	allocated_budget TEXT NOT NULL,
	opened_at TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);

-- Append-only transaction log; ids increase per ledger
CREATE TABLE IF NOT EXISTS ledger_transactions (
	client_id TEXT NOT NULL,
	id INTEGER NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('payment', 'material', 'labor')),
	date TEXT NOT NULL,
	amount TEXT,
	mode TEXT CHECK(mode IS NULL OR mode IN ('Cash', 'Check', 'Credit')),
	material TEXT,
	quantity INTEGER,
	unit_cost TEXT,
	distributor TEXT,
	worker TEXT,
	role TEXT CHECK(role IS NULL OR role IN ('Main', 'Helper')),
	rate TEXT,
	hours TEXT,
	cost TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (client_id, id),
	FOREIGN KEY (client_id) REFERENCES ledgers(client_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ledger_transactions_kind ON ledger_transactions(client_id, kind);

-- Saved labor sets
CREATE TABLE IF NOT EXISTS crews (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_crews_client ON crews(client_id);

CREATE TABLE IF NOT EXISTS crew_members (
	crew_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('Main', 'Helper')),
	rate TEXT NOT NULL,
	PRIMARY KEY (crew_id, position),
	FOREIGN KEY (crew_id) REFERENCES crews(id) ON DELETE CASCADE
);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
