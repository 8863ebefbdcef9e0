// Package store persists run bookkeeping and composition tables to SQLite so
// downstream modeling can join covariates without re-running extraction.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/avianlab/habitat-cli/internal/landcover"
	"github.com/avianlab/habitat-cli/internal/pipeline"
)

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)

// Store wraps a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at the given path and configures WAL mode.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck,gosec
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	input          TEXT NOT NULL,
	output         TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'running',
	sites          INTEGER NOT NULL DEFAULT 0,
	rows_written   INTEGER NOT NULL DEFAULT 0,
	rows_dropped   INTEGER NOT NULL DEFAULT 0,
	years_clamped  INTEGER NOT NULL DEFAULT 0,
	started_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at    DATETIME
);

CREATE TABLE IF NOT EXISTS compositions (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	location_id    TEXT NOT NULL,
	year           INTEGER NOT NULL,
	landcover_year INTEGER NOT NULL,
	class_code     INTEGER NOT NULL,
	proportion     REAL NOT NULL,
	PRIMARY KEY (run_id, location_id, year, class_code)
);

CREATE TABLE IF NOT EXISTS grid_compositions (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	cell_id        INTEGER NOT NULL,
	x              REAL NOT NULL,
	y              REAL NOT NULL,
	landcover_year INTEGER NOT NULL,
	class_code     INTEGER NOT NULL,
	proportion     REAL NOT NULL,
	PRIMARY KEY (run_id, cell_id, class_code)
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_compositions_location ON compositions(location_id, year);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun records the start of an extraction or grid run and returns its id.
func (s *Store) CreateRun(ctx context.Context, kind, input, output string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, input, output, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, kind, input, output, RunStatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "store: insert run")
	}
	return id, nil
}

// FinishRun records run completion and final statistics.
func (s *Store) FinishRun(ctx context.Context, id, status string, stats pipeline.Stats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, sites = ?, rows_written = ?, rows_dropped = ?, years_clamped = ?, finished_at = ? WHERE id = ?`,
		status, stats.Sites, stats.Rows, stats.Dropped, stats.Clamped, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "store: update run %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: run %s not found", id)
	}
	return nil
}

// SaveRows persists composition rows in long format, one record per
// (location, year, class).
func (s *Store) SaveRows(ctx context.Context, runID string, legend landcover.Legend, rows []pipeline.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO compositions (run_id, location_id, year, landcover_year, class_code, proportion)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "store: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range rows {
		for i, cls := range legend {
			if _, err := stmt.ExecContext(ctx,
				runID, r.LocationID, r.Year, r.LandcoverYear, cls.Code, r.Comp.Props[i],
			); err != nil {
				return eris.Wrapf(err, "store: insert composition %s/%d", r.LocationID, r.Year)
			}
		}
	}

	return eris.Wrap(tx.Commit(), "store: commit")
}

// SaveCells persists prediction-grid compositions in long format, one record
// per (cell, class).
func (s *Store) SaveCells(ctx context.Context, runID string, legend landcover.Legend, cells []pipeline.GridCell) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO grid_compositions (run_id, cell_id, x, y, landcover_year, class_code, proportion)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "store: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, c := range cells {
		for i, cls := range legend {
			if _, err := stmt.ExecContext(ctx,
				runID, c.ID, c.X, c.Y, c.LandcoverYear, cls.Code, c.Comp.Props[i],
			); err != nil {
				return eris.Wrapf(err, "store: insert grid composition %d", c.ID)
			}
		}
	}

	return eris.Wrap(tx.Commit(), "store: commit")
}
