package diagfmt

import (
	"math"
	"strings"

	"fortio.org/safecast"

	"dbc/internal/diag"
	"dbc/internal/source"
)

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	base := ""
	if mode == PathModeRelative {
		base = fs.BaseDir()
	}
	return f.FormatPath(mode.key(), base)
}

// visible filters out pass notes unless asked for.
func visible(items []diag.Diagnostic, withNotes bool) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(items))
	for _, d := range items {
		if d.Severity == diag.SevNote && !withNotes {
			continue
		}
		out = append(out, d)
	}
	return out
}

// expandTabs replaces tabs with four spaces so carets line up.
func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func lineCount(f *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil || n == math.MaxUint32 {
		return math.MaxUint32
	}
	return n + 1
}
