// Package journal records sweep runs and per-combination outcomes in
// SQLite.
//
// The journal is an append-only record for post-hoc inspection: it never
// feeds back into sequencing and a sweep is never resumed from it.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

// Combination outcomes.
const (
	OutcomeProduced = "produced"
	OutcomeSkipped  = "skipped"
	OutcomeFatal    = "fatal"
)

// Run is one sweep execution.
type Run struct {
	ID          string
	Description string
	OutputDir   string
	TableFile   string
	StageCount  int
	Status      string
	Produced    int
	Skipped     int
	StartedAt   time.Time
	FinishedAt  time.Time // zero while running
}

// Record is the outcome of one combination within a run.
type Record struct {
	Ordinal   int
	Artifact  string
	Positions []float64
	Outcome   string
	Detail    string // failure text for skipped/fatal outcomes
	Elapsed   time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS sweep_runs (
    id          TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    output_dir  TEXT NOT NULL,
    table_file  TEXT NOT NULL,
    stage_count INTEGER NOT NULL,
    status      TEXT NOT NULL,
    produced    INTEGER NOT NULL DEFAULT 0,
    skipped     INTEGER NOT NULL DEFAULT 0,
    started_at  TEXT NOT NULL,
    finished_at TEXT
);

CREATE TABLE IF NOT EXISTS sweep_records (
    run_id      TEXT NOT NULL REFERENCES sweep_runs(id),
    ordinal     INTEGER NOT NULL,
    artifact    TEXT NOT NULL,
    positions   TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    detail      TEXT,
    elapsed_ms  INTEGER NOT NULL,
    recorded_at TEXT NOT NULL,
    PRIMARY KEY (run_id, ordinal)
);
`

// Journal writes runs and records to SQLite.
type Journal struct {
	db *sql.DB
}

// New creates a Journal and ensures its schema exists.
//
// Parameters:
//   - db: Open database connection; the journal does not own its lifecycle
//
// Returns:
//   - *Journal: Ready journal
//   - error: If schema creation fails
func New(db *sql.DB) (*Journal, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// StartRun inserts a new run in status "running" and returns it with a
// generated ID and start timestamp.
func (j *Journal) StartRun(ctx context.Context, run Run) (Run, error) {
	run.ID = "run-" + uuid.NewString()[:8]
	run.Status = StatusRunning
	run.StartedAt = time.Now().UTC()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO sweep_runs (id, description, output_dir, table_file, stage_count, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Description, run.OutputDir, run.TableFile, run.StageCount,
		run.Status, run.StartedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// RecordCombination appends one combination outcome to a run.
func (j *Journal) RecordCombination(ctx context.Context, runID string, rec Record) error {
	positions, err := json.Marshal(rec.Positions)
	if err != nil {
		return fmt.Errorf("marshalling positions: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO sweep_records (run_id, ordinal, artifact, positions, outcome, detail, elapsed_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Ordinal, rec.Artifact, string(positions), rec.Outcome,
		nullableString(rec.Detail), rec.Elapsed.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting record for combination %d: %w", rec.Ordinal, err)
	}
	return nil
}

// CompleteRun finalizes a run with its tally and terminal status.
func (j *Journal) CompleteRun(ctx context.Context, runID, status string, produced, skipped int) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE sweep_runs SET status = ?, produced = ?, skipped = ?, finished_at = ? WHERE id = ?`,
		status, produced, skipped, time.Now().UTC().Format(time.RFC3339), runID,
	)
	if err != nil {
		return fmt.Errorf("completing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("completing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("completing run: unknown run %s", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, description, output_dir, table_file, stage_count, status, produced, skipped, started_at, finished_at
		 FROM sweep_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var finishedAt sql.NullString

		if err := rows.Scan(&run.ID, &run.Description, &run.OutputDir, &run.TableFile,
			&run.StageCount, &run.Status, &run.Produced, &run.Skipped,
			&startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp %q: %w", startedAt, err)
		}
		if finishedAt.Valid && finishedAt.String != "" {
			run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing run timestamp %q: %w", finishedAt.String, err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// Records returns a run's combination records in ordinal order.
func (j *Journal) Records(ctx context.Context, runID string) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT ordinal, artifact, positions, outcome, detail, elapsed_ms
		 FROM sweep_records WHERE run_id = ? ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var positions string
		var detail sql.NullString
		var elapsedMS int64

		if err := rows.Scan(&rec.Ordinal, &rec.Artifact, &positions, &rec.Outcome, &detail, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(positions), &rec.Positions); err != nil {
			return nil, fmt.Errorf("unmarshalling positions %q: %w", positions, err)
		}
		if detail.Valid {
			rec.Detail = detail.String
		}
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return recs, nil
}

// nullableString returns nil for empty strings, for nullable TEXT columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
