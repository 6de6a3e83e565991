// Package combo parses measurement combination tables.
//
// A combination table is line-oriented text: each row carries one position
// per stage, comma-separated, with an optional trailing label. Comment
// lines start with '#'. Structurally invalid rows are logged and skipped
// rather than failing the whole table, so a hand-edited file with one bad
// row still yields a usable sweep.
package combo

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Field separator and comment marker for combination tables.
const (
	fieldSeparator = ","
	commentMarker  = "#"
)

// Combination is one row of the measurement table: an ordered stage
// position vector plus an optional human-readable label.
//
// Immutable once parsed. Ordinal is the 1-based position within the parsed
// sequence (invalid rows do not consume ordinals).
type Combination struct {
	Positions []float64
	Label     string
	Ordinal   int
}

// Logger is the minimal logging interface this package needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// LoadFile reads a combination table from disk.
//
// Parameters:
//   - path: Path to the table file
//   - stages: Expected number of position fields per row
//   - logger: Destination for skipped-row warnings (must not be nil)
//
// Returns:
//   - []Combination: Valid rows in file order
//   - error: If the file cannot be opened or read
func LoadFile(path string, stages int, logger Logger) ([]Combination, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening combination table: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	combos, err := parse(f, stages, logger)
	if err != nil {
		return nil, fmt.Errorf("reading combination table %s: %w", path, err)
	}
	return combos, nil
}

// parse scans the table line by line, collecting valid combinations.
func parse(f *os.File, stages int, logger Logger) ([]Combination, error) {
	var combos []Combination

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Blank and comment lines are skipped silently.
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		c, ok := parseLine(line, stages)
		if !ok {
			logger.Warn("skipping invalid combination line",
				"line", lineNo,
				"content", line,
			)
			continue
		}

		c.Ordinal = len(combos) + 1
		combos = append(combos, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return combos, nil
}

// parseLine parses one non-blank, non-comment line.
//
// The first `stages` fields must parse as finite floats. A field at
// position stages, if present, is the label; anything beyond it is
// ignored.
func parseLine(line string, stages int) (Combination, bool) {
	parts := strings.Split(line, fieldSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) < stages {
		return Combination{}, false
	}

	positions := make([]float64, stages)
	for i := 0; i < stages; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Combination{}, false
		}
		positions[i] = v
	}

	var label string
	if len(parts) > stages {
		label = parts[stages]
	}

	return Combination{Positions: positions, Label: label}, true
}
