package results

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any) {}
func (nopLogger) Warn(string, ...any) {}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// artifactRows mimics the acquisition application's output: two preamble
// lines, then the header, then data.
func artifactRows(counts ...string) [][]string {
	rows := [][]string{
		{"UQD Logic 16 export"},
		{"", ""},
		{"Time[s]", "Pattern 01[counts]", "Pattern 02[counts]"},
	}
	for _, c := range counts {
		rows = append(rows, []string{"0.1", c, "0"})
	}
	return rows
}

func TestAverageColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combo001.csv")
	writeCSV(t, path, artifactRows("10", "20", "not-a-number", "30"))

	avg, err := AverageColumn(path, "Pattern 01[counts]")
	if err != nil {
		t.Fatalf("AverageColumn() error = %v", err)
	}
	if avg != 20 {
		t.Errorf("AverageColumn() = %v, want 20 (non-numeric row skipped)", avg)
	}
}

func TestAverageColumnSkipsShortRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combo001.csv")
	rows := artifactRows("12", "18")
	rows = append(rows, []string{"0.5"}) // ragged row, no value at the column index
	writeCSV(t, path, rows)

	avg, err := AverageColumn(path, "Pattern 01[counts]")
	if err != nil {
		t.Fatalf("AverageColumn() error = %v", err)
	}
	if avg != 15 {
		t.Errorf("AverageColumn() = %v, want 15", avg)
	}
}

func TestAverageColumnNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combo001.csv")
	writeCSV(t, path, artifactRows("10"))

	_, err := AverageColumn(path, "Pattern 99[counts]")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("AverageColumn() error = %v, want ErrColumnNotFound", err)
	}
}

func TestAverageColumnNoValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combo001.csv")
	writeCSV(t, path, artifactRows())

	_, err := AverageColumn(path, "Pattern 01[counts]")
	if !errors.Is(err, ErrNoValues) {
		t.Errorf("AverageColumn() error = %v, want ErrNoValues", err)
	}
}

func TestSummarizeFolder(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "combo001.csv"), artifactRows("10", "20"))
	writeCSV(t, filepath.Join(dir, "combo002.csv"), artifactRows("40"))
	// A stale summary from an earlier pass must not feed the new one.
	writeCSV(t, filepath.Join(dir, SummaryFile), [][]string{{"filename", "avg"}})

	outPath, err := SummarizeFolder(dir, "Pattern 01[counts]", nopLogger{})
	if err != nil {
		t.Fatalf("SummarizeFolder() error = %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("opening summary: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}

	want := [][]string{
		{"filename", "avg_Pattern 01[counts]"},
		{"combo001.csv", "15"},
		{"combo002.csv", "40"},
	}
	if len(rows) != len(want) {
		t.Fatalf("summary has %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("summary[%d][%d] = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestSummarizeFolderSkipsBadFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "combo001.csv"), artifactRows("10"))
	writeCSV(t, filepath.Join(dir, "broken.csv"), [][]string{{"no header here"}})

	outPath, err := SummarizeFolder(dir, "Pattern 01[counts]", nopLogger{})
	if err != nil {
		t.Fatalf("SummarizeFolder() error = %v", err)
	}

	f, _ := os.Open(outPath)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("summary has %d rows, want header plus one (broken file skipped)", len(rows))
	}
}

func TestSummarizeCombosIgnoresLabeledArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "combo001.csv"), artifactRows("10"))
	writeCSV(t, filepath.Join(dir, "HV_22-5.csv"), artifactRows("99"))

	outPath, err := SummarizeCombos(dir, "Pattern 01[counts]", nopLogger{})
	if err != nil {
		t.Fatalf("SummarizeCombos() error = %v", err)
	}
	if filepath.Base(outPath) != ComboSummaryFile {
		t.Errorf("SummarizeCombos() wrote %q, want %q", outPath, ComboSummaryFile)
	}

	f, _ := os.Open(outPath)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "combo001.csv" {
		t.Errorf("summary rows = %v, want header plus combo001.csv only", rows)
	}
}

func TestSummarizeFolderEmpty(t *testing.T) {
	dir := t.TempDir()
	if _, err := SummarizeFolder(dir, "Pattern 01[counts]", nopLogger{}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("SummarizeFolder() error = %v, want ErrNoFiles", err)
	}
}

func TestLatestRunDir(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "2026-03-14-090000_hv")
	recent := filepath.Join(root, "2026-03-14-110000_hv")
	other := filepath.Join(root, "2026-03-14-120000_cal")
	for _, d := range []string{old, recent, other} {
		if err := os.Mkdir(d, 0o750); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := LatestRunDir(root, "hv")
	if err != nil {
		t.Fatalf("LatestRunDir() error = %v", err)
	}
	if got != recent {
		t.Errorf("LatestRunDir() = %q, want %q", got, recent)
	}

	if _, err := LatestRunDir(root, "missing"); !errors.Is(err, ErrNoRunFolder) {
		t.Errorf("LatestRunDir(missing) error = %v, want ErrNoRunFolder", err)
	}
}
