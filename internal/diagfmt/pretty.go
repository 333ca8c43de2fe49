package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"dbc/internal/diag"
	"dbc/internal/source"
)

type palette struct {
	err, warn, note, code, gutter, caret, path *color.Color
}

func newPalette(on bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		note:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		path:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.note, p.code, p.gutter, p.caret, p.path} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.note
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>:<line>:<col>: <SEV> [<code>]: <message>
//	   12 | source line
//	      |     ^~~~
//
// followed by the secondary notes in the same layout. Items are printed
// in bag order; call bag.Sort() first for stable output.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	items := visible(bag.Items(), opts.ShowNotes)
	for i, d := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeHeader(w, fs, d.Primary, pal.severity(d.Severity).Sprint(d.Severity.String()), pal, opts,
			pal.code.Sprint("["+d.Code.ID()+"]")+": "+d.Message)
		writeSnippet(w, fs, d.Primary, pal, opts)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			writeHeader(w, fs, n.Span, pal.note.Sprint("note"), pal, opts, n.Msg)
			writeSnippet(w, fs, n.Span, pal, opts)
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostics not shown (limit %d)\n", dropped, bag.Cap())
	}
}

func writeHeader(w io.Writer, fs *source.FileSet, sp source.Span, label string, pal palette, opts PrettyOpts, msg string) {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	loc := formatPath(fs, f, opts.PathMode) + ":" + strconv.FormatUint(uint64(start.Line), 10) + ":" + strconv.FormatUint(uint64(start.Col), 10)
	lines := strings.Split(msg, "\n")
	fmt.Fprintf(w, "%s: %s %s\n", pal.path.Sprint(loc), label, lines[0])
	// multi-line messages (printed method bodies) keep their layout
	for _, l := range lines[1:] {
		fmt.Fprintf(w, "    %s\n", l)
	}
}

func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, pal palette, opts PrettyOpts) {
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := start.Line
	if first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	last := min(start.Line+ctx, lineCount(f))
	gw := len(strconv.FormatUint(uint64(last), 10))

	for ln := first; ln <= last; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, " %s %s\n", pal.gutter.Sprintf("%*d |", gw, ln), text)
		if ln != start.Line {
			continue
		}
		raw := f.GetLine(ln)
		pad, width := caretColumns(raw, start.Col, end, start.Line)
		if opts.Width > 0 && pad >= int(opts.Width) {
			continue
		}
		marker := "^" + strings.Repeat("~", max(width-1, 0))
		fmt.Fprintf(w, " %s %s%s\n", pal.gutter.Sprintf("%*s |", gw, ""), strings.Repeat(" ", pad), pal.caret.Sprint(marker))
	}
}

// caretColumns returns the display offset of col on line and the display
// width of the underlined range, clipped to the end of the line.
func caretColumns(line string, col uint32, end source.LineCol, startLine uint32) (pad, width int) {
	b := []byte(line)
	from := min(int(col)-1, len(b))
	from = max(from, 0)
	to := len(b)
	if end.Line == startLine && int(end.Col)-1 <= len(b) {
		to = max(int(end.Col)-1, from)
	}
	pad = runewidth.StringWidth(expandTabs(string(b[:from])))
	width = max(runewidth.StringWidth(expandTabs(string(b[from:to]))), 1)
	return pad, width
}
