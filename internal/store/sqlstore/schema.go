package sqlstore

// Schema creates the tables the packet generator reads. It targets SQLite
// and is applied by Migrate; MySQL deployments manage their own DDL.
const Schema = `
CREATE TABLE IF NOT EXISTS claims (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	loss_date   TEXT NOT NULL,
	loss_cause  TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	narrative   TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS areas (
	id          TEXT PRIMARY KEY,
	claim_id    TEXT NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	notes       TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS damage_items (
	id                   TEXT PRIMARY KEY,
	claim_id             TEXT NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
	area_id              TEXT NOT NULL,
	category             TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL DEFAULT '',
	qty                  REAL NOT NULL DEFAULT 1,
	unit                 TEXT NOT NULL DEFAULT '',
	dimensions           TEXT NOT NULL DEFAULT '',
	condition_notes      TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL DEFAULT 'open',
	est_replacement_cost REAL,
	created_at           TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS evidence (
	id              TEXT PRIMARY KEY,
	claim_id        TEXT NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
	damage_item_id  TEXT,
	file_path       TEXT NOT NULL,
	file_type       TEXT NOT NULL,
	caption         TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE INDEX IF NOT EXISTS idx_damage_items_claim ON damage_items(claim_id, created_at);
CREATE INDEX IF NOT EXISTS idx_evidence_claim ON evidence(claim_id, created_at);
`
