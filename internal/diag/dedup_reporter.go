package diag

import (
	"strings"

	"dbc/internal/source"
)

// identity is what makes two reports the same issue.
type identity struct {
	code Code
	sev  Severity
	at   source.Span
	args string
}

// DedupReporter forwards each distinct issue once. A clause declared on an
// interface is resolved again for every implementing class, always at the
// same span; the instrumentation pass wraps its reporter in one of these.
type DedupReporter struct {
	next       Reporter
	seen       map[identity]bool
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	if next == nil {
		next = NopReporter{}
	}
	return &DedupReporter{next: next, seen: make(map[identity]bool)}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, args []string, notes []Note) {
	id := identity{code: code, sev: sev, at: primary, args: strings.Join(args, "\x1f")}
	if r.seen[id] {
		r.suppressed++
		return
	}
	r.seen[id] = true
	r.next.Report(code, sev, primary, args, notes)
}

// Suppressed is the number of repeated reports dropped so far.
func (r *DedupReporter) Suppressed() int { return r.suppressed }
