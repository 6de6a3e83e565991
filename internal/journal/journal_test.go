package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumenlab/sweep-core/internal/infrastructure/database"
)

func testJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	j, err := New(db.DB)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return j
}

func TestRunLifecycle(t *testing.T) {
	j := testJournal(t)
	ctx := context.Background()

	run, err := j.StartRun(ctx, Run{
		Description: "polarisation sweep",
		OutputDir:   "/data/2026-08-29-120000_polarisation_sweep",
		TableFile:   "motion.txt",
		StageCount:  4,
	})
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if run.ID == "" || run.Status != StatusRunning {
		t.Fatalf("StartRun() = %+v, want generated ID and running status", run)
	}

	records := []Record{
		{Ordinal: 1, Artifact: "HV_22-5.csv", Positions: []float64{0, 45, 22.5, 0}, Outcome: OutcomeProduced, Elapsed: 32 * time.Second},
		{Ordinal: 2, Artifact: "combo002.csv", Positions: []float64{90, 0, 0, 0}, Outcome: OutcomeSkipped, Detail: "move failed", Elapsed: 2 * time.Second},
	}
	for _, rec := range records {
		if err := j.RecordCombination(ctx, run.ID, rec); err != nil {
			t.Fatalf("RecordCombination(%d) error = %v", rec.Ordinal, err)
		}
	}

	if err := j.CompleteRun(ctx, run.ID, StatusCompleted, 1, 1); err != nil {
		t.Fatalf("CompleteRun() error = %v", err)
	}

	runs, err := j.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.Status != StatusCompleted || got.Produced != 1 || got.Skipped != 1 {
		t.Errorf("run = %+v, want completed with produced=1 skipped=1", got)
	}
	if got.FinishedAt.IsZero() {
		t.Error("FinishedAt is zero after CompleteRun")
	}

	recs, err := j.Records(ctx, run.ID)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Records() returned %d records, want 2", len(recs))
	}
	if recs[0].Artifact != "HV_22-5.csv" || recs[0].Outcome != OutcomeProduced {
		t.Errorf("record[0] = %+v", recs[0])
	}
	if len(recs[0].Positions) != 4 || recs[0].Positions[2] != 22.5 {
		t.Errorf("record[0] positions = %v, want [0 45 22.5 0]", recs[0].Positions)
	}
	if recs[1].Detail != "move failed" {
		t.Errorf("record[1] detail = %q, want %q", recs[1].Detail, "move failed")
	}
}

func TestCompleteRunUnknownID(t *testing.T) {
	j := testJournal(t)
	if err := j.CompleteRun(context.Background(), "run-missing", StatusAborted, 0, 0); err == nil {
		t.Fatal("CompleteRun() error = nil, want error for unknown run")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	j := testJournal(t)
	ctx := context.Background()

	// Distinct started_at values are required for a stable order; the
	// journal stamps seconds, so space the inserts out explicitly.
	for i, desc := range []string{"first", "second"} {
		run, err := j.StartRun(ctx, Run{Description: desc, OutputDir: "/data", TableFile: "motion.txt", StageCount: 4})
		if err != nil {
			t.Fatalf("StartRun() error = %v", err)
		}
		ts := time.Now().UTC().Add(time.Duration(i) * time.Minute).Format(time.RFC3339)
		if _, err := j.db.ExecContext(ctx, "UPDATE sweep_runs SET started_at = ? WHERE id = ?", ts, run.ID); err != nil {
			t.Fatalf("adjusting timestamp: %v", err)
		}
	}

	runs, err := j.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 || runs[0].Description != "second" {
		t.Errorf("ListRuns() order = %v, want newest first", runs)
	}
}
