package diag

import (
	"testing"

	"dbc/internal/source"
)

func TestFormatGolden(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("testdata/stack.dbc", []byte("a\nb\n"))

	diags := []Diagnostic{
		NewError(MissingClause, source.Span{File: file, Start: 2, End: 3}, "Stack.push", "is_full", "Stack"),
		New(SevNote, InstrumentedClass, source.Span{File: file, Start: 0, End: 1}, "Stack", "2"),
		NewError(InvariantIsStatic, source.Span{File: file, Start: 0, End: 1}, "Stack.ok"),
	}

	want := "error invariant.is.static testdata/stack.dbc:1:1 invariant Stack.ok must not be static\n" +
		"error missing.clause testdata/stack.dbc:2:1 Stack.push references clause is_full, which is not declared in Stack or its contract types"
	if got := FormatGolden(diags, fs, false); got != want {
		t.Fatalf("unexpected golden output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}

	withNotes := FormatGolden(diags, fs, true)
	if want := "note instrumented.class testdata/stack.dbc:1:1 instrumented class Stack (2 methods)"; !containsLine(withNotes, want) {
		t.Fatalf("missing note line %q in:\n%s", want, withNotes)
	}
}

func containsLine(text, line string) bool {
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			if text[start:i] == line {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func TestRenderFallsBackOnArity(t *testing.T) {
	got := WrongParamType.Render("only", "two")
	if got != "wrong clause parameter type: only, two" {
		t.Fatalf("got %q", got)
	}
	got = IncompatibleClause.Render("Stack.push", "false", "is_full", "true")
	if got != "Stack.push (static=false) cannot use clause is_full (static=true)" {
		t.Fatalf("got %q", got)
	}
}

func TestBagLimitIgnoresNotes(t *testing.T) {
	bag := NewBag(1)
	span := source.Span{}
	if !bag.Add(NewError(MissingClause, span, "m", "c", "o")) {
		t.Fatal("first error must be kept")
	}
	if bag.Add(NewError(MissingClause, span, "m", "d", "o")) {
		t.Fatal("second error must be dropped")
	}
	if !bag.Add(New(SevNote, InstrumentedClass, span, "C", "1")) {
		t.Fatal("notes are not limited")
	}
	if bag.Dropped() != 1 || bag.Len() != 2 || !bag.HasErrors() {
		t.Fatalf("dropped=%d len=%d", bag.Dropped(), bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.Span{File: 0, Start: 4, End: 9}
	for range 3 {
		ReportError(r, MissingClause, span, "m", "c", "o").Emit()
	}
	ReportError(r, MissingClause, span, "m", "other", "o").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
	if r.Suppressed() != 2 {
		t.Fatalf("expected 2 suppressed reports, got %d", r.Suppressed())
	}
	// same code and args at another span is another issue
	ReportError(r, MissingClause, source.Span{File: 0, Start: 10, End: 12}, "m", "c", "o").Emit()
	if bag.Len() != 3 {
		t.Fatalf("a new span must be reported, bag has %d", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, ClauseIsNotBoolean, source.Span{}, "size", "int")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	if got := bag.Items()[0].Arg(1); got != "int" {
		t.Fatalf("arg 1 = %q", got)
	}
}
