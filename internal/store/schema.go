package store

// schemaVersion1 is the initial runs registry layout.
const schemaVersion1 = 1

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersion1

var schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at    TEXT NOT NULL,
	dataset_path  TEXT NOT NULL,
	samples       INTEGER NOT NULL,
	features      INTEGER NOT NULL,
	train_samples INTEGER NOT NULL,
	test_samples  INTEGER NOT NULL,
	split_seed    INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	params        TEXT NOT NULL DEFAULT '{}',
	r2            REAL NOT NULL,
	rmse          REAL NOT NULL,
	mae           REAL NOT NULL,
	artifact_path TEXT,
	status        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`
