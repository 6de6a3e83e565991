// Package results post-processes the CSV artifacts a sweep produced:
// per-file column averaging and a folder-level summary CSV.
//
// The acquisition application writes a preamble before the real header
// row, so AverageColumn searches for the header rather than assuming
// line one, and tolerates ragged or non-numeric rows below it.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Summary files this package writes. Both are excluded from their own
// input sets.
const (
	SummaryFile      = "total_averages.csv"
	ComboSummaryFile = "combo_averages.csv"
)

// excluded are summary and report files that must never be averaged as
// measurement data.
var excluded = map[string]bool{
	SummaryFile:           true,
	ComboSummaryFile:      true,
	"position_report.csv": true,
}

// Logger is the minimal logging interface this package needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// AverageColumn computes the mean of one named column in a CSV file.
//
// The file is scanned row by row until a row containing the column name
// is found; that row is the header. Below it, rows shorter than the
// column index and cells that do not parse as floats are skipped.
//
// Parameters:
//   - path: CSV file to read
//   - column: Exact header cell of the column to average
//
// Returns:
//   - float64: Mean of the parseable values
//   - error: ErrColumnNotFound, ErrNoValues, or a read failure
func AverageColumn(path, column string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	colIdx := -1
	for colIdx < 0 {
		row, err := reader.Read()
		if err != nil {
			return 0, fmt.Errorf("%w: %q in %s", ErrColumnNotFound, column, path)
		}
		for i, cell := range row {
			if cell == column {
				colIdx = i
				break
			}
		}
	}

	var sum float64
	var count int
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		if len(row) <= colIdx {
			continue
		}
		val, err := strconv.ParseFloat(row[colIdx], 64)
		if err != nil {
			continue
		}
		sum += val
		count++
	}

	if count == 0 {
		return 0, fmt.Errorf("%w: %q in %s", ErrNoValues, column, path)
	}
	return sum / float64(count), nil
}

// SummarizeFolder averages one column across every data CSV in a run
// folder and writes the results to total_averages.csv inside it.
//
// Summary files from earlier runs of this tool are excluded from the
// input set. Files whose column cannot be averaged are logged and
// skipped; they do not fail the summary.
//
// Parameters:
//   - dir: Run output folder containing the artifact CSVs
//   - column: Column to average in each file
//   - logger: Logger instance
//
// Returns:
//   - string: Path of the written summary file
//   - error: ErrNoFiles, or a filesystem failure
func SummarizeFolder(dir, column string, logger Logger) (string, error) {
	return writeSummary(dir, "*.csv", SummaryFile, column, logger)
}

// SummarizeCombos is SummarizeFolder restricted to the ordinal-named
// combo*.csv artifacts, writing combo_averages.csv. Labeled artifacts
// are left out, matching the narrower per-combination report.
func SummarizeCombos(dir, column string, logger Logger) (string, error) {
	return writeSummary(dir, "combo*.csv", ComboSummaryFile, column, logger)
}

func writeSummary(dir, pattern, outName, column string, logger Logger) (string, error) {
	entries, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(entries)

	var files []string
	for _, path := range entries {
		if !excluded[filepath.Base(path)] {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoFiles, dir)
	}

	outPath := filepath.Join(dir, outName)
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", outPath, err)
	}

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"filename", "avg_" + column}); err != nil {
		out.Close() //nolint:errcheck
		return "", fmt.Errorf("writing header: %w", err)
	}

	for _, path := range files {
		avg, err := AverageColumn(path, column)
		if err != nil {
			logger.Warn("skipping file", "file", filepath.Base(path), "error", err)
			continue
		}
		logger.Info("averaged", "file", filepath.Base(path), "value", avg)
		if err := writer.Write([]string{
			filepath.Base(path),
			strconv.FormatFloat(avg, 'g', -1, 64),
		}); err != nil {
			out.Close() //nolint:errcheck
			return "", fmt.Errorf("writing row for %s: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		out.Close() //nolint:errcheck
		return "", fmt.Errorf("flushing summary: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing summary: %w", err)
	}
	return outPath, nil
}

// LatestRunDir finds the most recently modified run folder under root
// whose name ends in "_" + description.
//
// Returns ErrNoRunFolder if nothing matches.
func LatestRunDir(root, description string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*_"+description))
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", root, err)
	}

	var newest string
	var newestMod int64
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = path
			newestMod = mod
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%w: %q under %s", ErrNoRunFolder, description, root)
	}
	return newest, nil
}
