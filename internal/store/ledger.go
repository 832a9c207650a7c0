// Package store persists per-run data-quality summaries so input quality
// can be audited across runs without re-reading the source tables.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// RunSummary records the quality counters of one pipeline run.
type RunSummary struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	Schools           int
	TractBoundaries   int
	CountyBoundaries  int
	UnresolvedTract   int
	UnresolvedCounty  int
	UnresolvedCZ      int
	ExcludedCells     int
	CountyJoined      int
	CZJoined          int
	DroppedAggregates int
	DroppedMobility   int
}

// Ledger stores run summaries in a local SQLite database.
type Ledger struct {
	db *sql.DB
}

// NewLedger opens the ledger database at the given path and configures WAL
// mode.
func NewLedger(dsn string) (*Ledger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "ledger: exec %s", pragma)
		}
	}
	return &Ledger{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id                 TEXT PRIMARY KEY,
	started_at         DATETIME NOT NULL,
	finished_at        DATETIME NOT NULL,
	schools            INTEGER NOT NULL,
	tract_boundaries   INTEGER NOT NULL,
	county_boundaries  INTEGER NOT NULL,
	unresolved_tract   INTEGER NOT NULL,
	unresolved_county  INTEGER NOT NULL,
	unresolved_cz      INTEGER NOT NULL,
	excluded_cells     INTEGER NOT NULL,
	county_joined      INTEGER NOT NULL,
	cz_joined          INTEGER NOT NULL,
	dropped_aggregates INTEGER NOT NULL,
	dropped_mobility   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Migrate creates the ledger schema.
func (l *Ledger) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "ledger: migrate")
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record inserts one run summary, assigning an ID when absent.
func (l *Ledger) Record(ctx context.Context, run *RunSummary) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, started_at, finished_at, schools,
			tract_boundaries, county_boundaries,
			unresolved_tract, unresolved_county, unresolved_cz,
			excluded_cells, county_joined, cz_joined,
			dropped_aggregates, dropped_mobility
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Schools,
		run.TractBoundaries, run.CountyBoundaries,
		run.UnresolvedTract, run.UnresolvedCounty, run.UnresolvedCZ,
		run.ExcludedCells, run.CountyJoined, run.CZJoined,
		run.DroppedAggregates, run.DroppedMobility,
	)
	return eris.Wrapf(err, "ledger: insert run %s", run.ID)
}

// List returns the most recent run summaries, newest first.
func (l *Ledger) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, schools,
		       tract_boundaries, county_boundaries,
		       unresolved_tract, unresolved_county, unresolved_cz,
		       excluded_cells, county_joined, cz_joined,
		       dropped_aggregates, dropped_mobility
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.FinishedAt, &r.Schools,
			&r.TractBoundaries, &r.CountyBoundaries,
			&r.UnresolvedTract, &r.UnresolvedCounty, &r.UnresolvedCZ,
			&r.ExcludedCells, &r.CountyJoined, &r.CZJoined,
			&r.DroppedAggregates, &r.DroppedMobility,
		); err != nil {
			return nil, eris.Wrap(err, "ledger: scan run row")
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "ledger: iterate run rows")
	}
	return runs, nil
}
