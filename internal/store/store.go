// Package store persists fetch snapshots and run reports in a local
// SQLite database so checks and status views can run without hitting
// the GitHub API again.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/spiffcs/repowatch/internal/constants"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/watch"
)

var (
	// ErrNoSnapshot is returned when a repo has no stored snapshot.
	ErrNoSnapshot = errors.New("no snapshot stored")
	// ErrNoRun is returned when a repo has no recorded run.
	ErrNoRun = errors.New("no run recorded")
)

// Snapshot describes one stored fetch result.
type Snapshot struct {
	ID          string    `db:"id" json:"id"`
	Repo        string    `db:"repo" json:"repo"`
	FetchedAt   time.Time `db:"fetched_at" json:"fetchedAt"`
	RecordCount int       `db:"record_count" json:"recordCount"`
}

// Run describes one recorded check run.
type Run struct {
	ID        string    `db:"id" json:"id"`
	Repo      string    `db:"repo" json:"repo"`
	StartedAt time.Time `db:"started_at" json:"startedAt"`
	Attempted int       `db:"alerts_attempted" json:"attempted"`
	Delivered int       `db:"alerts_delivered" json:"delivered"`
}

// Store wraps the SQLite database holding snapshots and runs.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the database at path, enables WAL mode, and
// runs any pending schema migrations. Pass ":memory:" for an ephemeral
// database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// sqlite allows one writer at a time, and a :memory: database
	// exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveSnapshot stores one fetch result and prunes old snapshots for the
// repo down to the configured keep count. Record order is preserved.
func (s *Store) SaveSnapshot(ctx context.Context, repo string, fetchedAt time.Time, records []model.Record) (Snapshot, error) {
	snap := Snapshot{
		ID:          uuid.New().String(),
		Repo:        repo,
		FetchedAt:   fetchedAt.UTC(),
		RecordCount: len(records),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, repo, fetched_at, record_count)
		VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Repo, snap.FetchedAt, snap.RecordCount,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("inserting snapshot for %s: %w", repo, err)
	}

	const query = `
		INSERT INTO records (
			snapshot_id, seq, repo, external_id, number,
			kind, state, title, author, assignee,
			created_at, closed_at, merged_at, labels
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return Snapshot{}, fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		labels, err := json.Marshal(r.Labels)
		if err != nil {
			return Snapshot{}, fmt.Errorf("marshaling labels for #%d: %w", r.Number, err)
		}

		_, err = stmt.ExecContext(ctx,
			snap.ID, i, r.Repo, r.ExternalID, r.Number,
			string(r.Kind), string(r.State), r.Title, r.Author, r.Assignee,
			nullableUTC(r.CreatedAt), nullableUTC(r.ClosedAt), nullableUTC(r.MergedAt), string(labels),
		)
		if err != nil {
			return Snapshot{}, fmt.Errorf("inserting record #%d: %w", r.Number, err)
		}
	}

	// The records delete runs first: the foreign_keys pragma is
	// per-connection in sqlite, so the cascade alone is not enough.
	const keepQuery = `
		SELECT id FROM snapshots WHERE repo = ?
		ORDER BY fetched_at DESC, rowid DESC LIMIT ?`

	_, err = tx.ExecContext(ctx,
		"DELETE FROM records WHERE repo = ? AND snapshot_id NOT IN ("+keepQuery+")",
		repo, repo, constants.SnapshotKeep,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pruning records for %s: %w", repo, err)
	}
	_, err = tx.ExecContext(ctx,
		"DELETE FROM snapshots WHERE repo = ? AND id NOT IN ("+keepQuery+")",
		repo, repo, constants.SnapshotKeep,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pruning snapshots for %s: %w", repo, err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("committing snapshot for %s: %w", repo, err)
	}

	return snap, nil
}

// Latest returns the most recent snapshot for the repo together with
// its records in their original fetch order.
func (s *Store) Latest(ctx context.Context, repo string) (Snapshot, []model.Record, error) {
	var snap Snapshot
	err := s.db.GetContext(ctx, &snap, `
		SELECT id, repo, fetched_at, record_count FROM snapshots
		WHERE repo = ? ORDER BY fetched_at DESC, rowid DESC LIMIT 1`,
		repo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil, fmt.Errorf("%w for %s", ErrNoSnapshot, repo)
	}
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("querying latest snapshot for %s: %w", repo, err)
	}

	rows, err := s.db.QueryxContext(ctx, `
		SELECT repo, external_id, number, kind, state, title, author, assignee,
		       created_at, closed_at, merged_at, labels
		FROM records WHERE snapshot_id = ? ORDER BY seq`,
		snap.ID,
	)
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("querying records for %s: %w", repo, err)
	}
	defer rows.Close()

	records := make([]model.Record, 0, snap.RecordCount)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return Snapshot{}, nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, nil, fmt.Errorf("reading records for %s: %w", repo, err)
	}

	return snap, records, nil
}

// RecordRun stores the outcome of one check run.
func (s *Store) RecordRun(ctx context.Context, report watch.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, repo, started_at, alerts_attempted, alerts_delivered)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), report.Repo, report.StartedAt.UTC(),
		report.Attempted, report.Delivered,
	)
	if err != nil {
		return fmt.Errorf("recording run for %s: %w", report.Repo, err)
	}
	return nil
}

// LastRun returns the most recent recorded run for the repo.
func (s *Store) LastRun(ctx context.Context, repo string) (Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `
		SELECT id, repo, started_at, alerts_attempted, alerts_delivered FROM runs
		WHERE repo = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		repo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w for %s", ErrNoRun, repo)
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying last run for %s: %w", repo, err)
	}
	return run, nil
}

// Repos lists every repo with at least one stored snapshot.
func (s *Store) Repos(ctx context.Context) ([]string, error) {
	var repos []string
	err := s.db.SelectContext(ctx, &repos, "SELECT DISTINCT repo FROM snapshots ORDER BY repo")
	if err != nil {
		return nil, fmt.Errorf("listing repos: %w", err)
	}
	return repos, nil
}

// Clear removes stored snapshots and runs. An empty repo clears
// everything.
func (s *Store) Clear(ctx context.Context, repo string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []struct {
		all    string
		scoped string
	}{
		{"DELETE FROM records", "DELETE FROM records WHERE repo = ?"},
		{"DELETE FROM snapshots", "DELETE FROM snapshots WHERE repo = ?"},
		{"DELETE FROM runs", "DELETE FROM runs WHERE repo = ?"},
	}
	for _, stmt := range statements {
		if repo == "" {
			_, err = tx.ExecContext(ctx, stmt.all)
		} else {
			_, err = tx.ExecContext(ctx, stmt.scoped, repo)
		}
		if err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
	}

	return tx.Commit()
}

// scanRecord scans one record row back into the model type.
func scanRecord(rows *sqlx.Rows) (model.Record, error) {
	var (
		r      model.Record
		kind   string
		state  string
		labels string
	)

	err := rows.Scan(
		&r.Repo, &r.ExternalID, &r.Number, &kind, &state,
		&r.Title, &r.Author, &r.Assignee,
		&r.CreatedAt, &r.ClosedAt, &r.MergedAt, &labels,
	)
	if err != nil {
		return model.Record{}, fmt.Errorf("scanning record row: %w", err)
	}

	r.Kind = model.Kind(kind)
	r.State = model.State(state)

	if labels != "" {
		if err := json.Unmarshal([]byte(labels), &r.Labels); err != nil {
			return model.Record{}, fmt.Errorf("unmarshaling labels: %w", err)
		}
	}

	return r, nil
}

// nullableUTC converts an optional timestamp for storage, mapping nil
// to SQL NULL.
func nullableUTC(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
