package diag

import (
	"dbc/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one immutable finding with a stable code and ordered arguments.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Args     []string
	Notes    []Note
}

// Arg returns the i-th argument or "" when absent.
func (d *Diagnostic) Arg(i int) string {
	if d == nil || i < 0 || i >= len(d.Args) {
		return ""
	}
	return d.Args[i]
}
