package combo

import (
	"fmt"
	"strings"
	"unicode"
)

// ArtifactName derives the output file name for a combination.
//
// A non-empty label is sanitised for filesystem use: whitespace becomes
// '_' and decimal points become '-', so "HV 22.5" yields "HV_22-5.csv".
// Without a label the name falls back to the zero-padded ordinal, e.g.
// "combo007.csv". Given unique labels (or no labels at all) the result is
// unique per sweep.
func (c Combination) ArtifactName() string {
	label := strings.TrimSpace(c.Label)
	if label == "" {
		return fmt.Sprintf("combo%03d.csv", c.Ordinal)
	}
	return sanitizeLabel(label) + ".csv"
}

// sanitizeLabel replaces characters that would be awkward in a filename
// typed into a save dialog.
func sanitizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case r == '.':
			return '-'
		default:
			return r
		}
	}, label)
}
