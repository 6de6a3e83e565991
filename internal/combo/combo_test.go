package combo

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

// mockLogger records warnings for assertion.
type mockLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (m *mockLogger) Warn(msg string, _ ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, msg)
}

func (m *mockLogger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.warnings)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "motion.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing table: %v", err)
	}
	return path
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestLoadFile_ValidAndInvalidLines(t *testing.T) {
	table := `# two-qubit calibration sweep
1.0, 2.0, 3.0, 4.0, CalibA
bad, 2, 3, 4

5.0, 6.0, 7.0, 8.0
`
	log := &mockLogger{}
	combos, err := LoadFile(writeTable(t, table), 4, log)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if len(combos) != 2 {
		t.Fatalf("got %d combinations, want 2", len(combos))
	}
	if log.count() != 1 {
		t.Errorf("got %d warnings, want 1 for the malformed line", log.count())
	}

	want0 := []float64{1.0, 2.0, 3.0, 4.0}
	if !reflect.DeepEqual(combos[0].Positions, want0) {
		t.Errorf("combos[0].Positions = %v, want %v", combos[0].Positions, want0)
	}
	if combos[0].Label != "CalibA" {
		t.Errorf("combos[0].Label = %q, want %q", combos[0].Label, "CalibA")
	}
	if combos[0].Ordinal != 1 || combos[1].Ordinal != 2 {
		t.Errorf("ordinals = %d, %d, want 1, 2", combos[0].Ordinal, combos[1].Ordinal)
	}
	if combos[1].Label != "" {
		t.Errorf("combos[1].Label = %q, want empty", combos[1].Label)
	}
}

func TestLoadFile_OrderPreserved(t *testing.T) {
	table := "3,3\n1,1\n2,2\n"
	combos, err := LoadFile(writeTable(t, table), 2, &mockLogger{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	got := []float64{combos[0].Positions[0], combos[1].Positions[0], combos[2].Positions[0]}
	want := []float64{3, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("first positions = %v, want file order %v", got, want)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/motion.txt", 4, &mockLogger{})
	if err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		stages    int
		wantOK    bool
		wantPos   []float64
		wantLabel string
	}{
		{
			name:    "exact field count",
			line:    "1.5, -2.0, 0.0, 4.25",
			stages:  4,
			wantOK:  true,
			wantPos: []float64{1.5, -2.0, 0.0, 4.25},
		},
		{
			name:      "label field",
			line:      "1, 2, HWP at 45",
			stages:    2,
			wantOK:    true,
			wantPos:   []float64{1, 2},
			wantLabel: "HWP at 45",
		},
		{
			name:      "fields beyond label ignored",
			line:      "1, 2, first, second, third",
			stages:    2,
			wantOK:    true,
			wantPos:   []float64{1, 2},
			wantLabel: "first",
		},
		{
			name:   "too few fields",
			line:   "1, 2, 3",
			stages: 4,
			wantOK: false,
		},
		{
			name:   "unparseable float",
			line:   "1, two, 3, 4",
			stages: 4,
			wantOK: false,
		},
		{
			name:   "non-finite position rejected",
			line:   "1, NaN",
			stages: 2,
			wantOK: false,
		},
		{
			name:   "infinite position rejected",
			line:   "Inf, 2",
			stages: 2,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := parseLine(tt.line, tt.stages)
			if ok != tt.wantOK {
				t.Fatalf("parseLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(c.Positions, tt.wantPos) {
				t.Errorf("Positions = %v, want %v", c.Positions, tt.wantPos)
			}
			if c.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", c.Label, tt.wantLabel)
			}
		})
	}
}
