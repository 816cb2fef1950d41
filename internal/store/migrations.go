package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	id           TEXT PRIMARY KEY,
	repo         TEXT NOT NULL,
	fetched_at   DATETIME NOT NULL,
	record_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS records (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	repo        TEXT NOT NULL,
	external_id INTEGER NOT NULL,
	number      INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	state       TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	author      TEXT NOT NULL DEFAULT '',
	assignee    TEXT NOT NULL DEFAULT '',
	created_at  DATETIME,
	closed_at   DATETIME,
	merged_at   DATETIME,
	labels      TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (snapshot_id, seq)
);

CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	repo             TEXT NOT NULL,
	started_at       DATETIME NOT NULL,
	alerts_attempted INTEGER NOT NULL DEFAULT 0,
	alerts_delivered INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_snapshots_repo_fetched ON snapshots(repo, fetched_at);
CREATE INDEX IF NOT EXISTS idx_runs_repo_started ON runs(repo, started_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
