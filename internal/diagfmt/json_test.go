package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"dbc/internal/diag"
	"dbc/internal/source"
)

func decode(t *testing.T, buf *bytes.Buffer) DiagnosticsOutput {
	t.Helper()
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	return out
}

func TestJSONBasic(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(missing(id))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	out := decode(t, &buf)
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", out)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "missing.clause" {
		t.Errorf("severity/code: %s %s", d.Severity, d.Code)
	}
	if len(d.Args) != 3 || d.Args[1] != "nope" {
		t.Errorf("args: %v", d.Args)
	}
	loc := d.Location
	if loc.File != "a.dbc" || loc.StartByte != 44 || loc.EndByte != 50 {
		t.Errorf("location: %+v", loc)
	}
	if loc.StartLine != 2 || loc.StartCol != 15 || loc.EndLine != 2 || loc.EndCol != 21 {
		t.Errorf("positions: %+v", loc)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(missing(id))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(buf.Bytes(), []byte("start_line")) {
		t.Fatalf("positions must be omitted:\n%s", buf.String())
	}
}

func TestJSONNotesAndMax(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevNote, diag.InstrumentedClass, nope(id), "A", "1"))
	bag.Add(missing(id).WithNote(source.Span{File: id}, "declared here"))
	bag.Add(missing(id))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	out := decode(t, &buf)
	if out.Count != 2 || out.Diagnostics[0].Notes != nil {
		t.Fatalf("pass notes and secondary notes must be hidden: %+v", out)
	}

	buf.Reset()
	if err := JSON(&buf, bag, fs, JSONOpts{IncludeNotes: true, Max: 2}); err != nil {
		t.Fatal(err)
	}
	out = decode(t, &buf)
	if out.Count != 2 || out.Dropped != 1 {
		t.Fatalf("count/dropped: %d/%d", out.Count, out.Dropped)
	}
	if out.Diagnostics[0].Severity != "NOTE" {
		t.Fatalf("first item must be the note, got %s", out.Diagnostics[0].Severity)
	}
	if n := out.Diagnostics[1].Notes; len(n) != 1 || n[0].Message != "declared here" {
		t.Fatalf("notes: %+v", n)
	}
}
