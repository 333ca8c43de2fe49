package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"dbc/internal/diag"
	"dbc/internal/source"
)

// Short prints one line per diagnostic:
// <path>:<line>:<col>: <severity> <code>: <message>. Message newlines are
// collapsed.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts ShortOpts) {
	for _, d := range visible(bag.Items(), opts.ShowNotes) {
		f := fs.Get(d.Primary.File)
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			formatPath(fs, f, opts.PathMode), start.Line, start.Col,
			d.Severity.Label(), d.Code.ID(), strings.Join(strings.Fields(d.Message), " "))
	}
}
