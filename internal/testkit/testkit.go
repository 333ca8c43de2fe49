// Package testkit compiles source snippets into linked programs for tests.
package testkit

import (
	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/parser"
	"dbc/internal/prelude"
	"dbc/internal/source"
	"dbc/internal/symbols"
)

// Unit is a parsed and linked snippet together with everything reported
// while building it.
type Unit struct {
	FS      *source.FileSet
	File    *source.File
	Program *ir.Program
	Bag     *diag.Bag
}

// Load parses src as a virtual file named "test.dbc" on top of the prelude
// and links the result.
func Load(src string) *Unit {
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	pre := prelude.Load(fs, r)
	id := fs.AddVirtual("test.dbc", []byte(src))
	file := fs.Get(id)
	res := parser.ParseFile(file, parser.Options{Reporter: r})
	prog := symbols.Link(pre, res.Classes, r)
	return &Unit{FS: fs, File: file, Program: prog, Bag: bag}
}

// Codes lists the codes of the collected diagnostics in report order.
func (u *Unit) Codes() []diag.Code {
	items := u.Bag.Items()
	out := make([]diag.Code, len(items))
	for i, d := range items {
		out[i] = d.Code
	}
	return out
}

// Errors returns only the error diagnostics.
func (u *Unit) Errors() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range u.Bag.Items() {
		if d.Severity == diag.SevError {
			out = append(out, d)
		}
	}
	return out
}

// Golden renders the collected diagnostics in the one-line golden format.
func (u *Unit) Golden(withNotes bool) string {
	return diag.FormatGolden(u.Bag.Items(), u.FS, withNotes)
}
