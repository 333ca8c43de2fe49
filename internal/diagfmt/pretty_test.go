package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"dbc/internal/diag"
	"dbc/internal/source"
)

const sample = "class A implements Contract {\n" +
	"    @Requires(\"nope\")\n" +
	"    void f() { }\n" +
	"}\n"

// nope is the span of "nope" (with quotes) on line 2.
func nope(id source.FileID) source.Span {
	return source.Span{File: id, Start: 44, End: 50}
}

func missing(id source.FileID) diag.Diagnostic {
	return diag.NewError(diag.MissingClause, nope(id), "A.f", "nope", "A")
}

func setup() (*source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	return fs, fs.AddVirtual("dir/a.dbc", []byte(sample))
}

func TestPrettyCaret(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(missing(id))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})

	want := "a.dbc:2:15: ERROR [missing.clause]: A.f references clause nope, which is not declared in A or its contract types\n" +
		" 2 |     @Requires(\"nope\")\n" +
		"   |               ^~~~~~\n"
	if buf.String() != want {
		t.Fatalf("pretty output:\n got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(missing(id))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	out := buf.String()
	for _, want := range []string{
		"dir/a.dbc:2:15",
		" 1 | class A implements Contract {",
		" 3 |     void f() { }",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, " 4 |") {
		t.Errorf("context must stop at one line:\n%s", out)
	}
}

func TestPrettyNotesAreOptIn(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevNote, diag.InstrumentedMethod, nope(id), "A.f", "void f() {\n    check()\n}"))
	bag.Add(missing(id).WithNote(source.Span{File: id, Start: 0, End: 5}, "declared here"))

	var quiet bytes.Buffer
	Pretty(&quiet, bag, fs, PrettyOpts{})
	if strings.Contains(quiet.String(), "instrumented") || strings.Contains(quiet.String(), "declared here") {
		t.Fatalf("notes must be hidden by default:\n%s", quiet.String())
	}

	var loud bytes.Buffer
	Pretty(&loud, bag, fs, PrettyOpts{ShowNotes: true})
	out := loud.String()
	if !strings.Contains(out, "NOTE [instrumented.method]: instrumented A.f:\n    void f() {\n        check()\n    }\n") {
		t.Fatalf("multi-line note message must be indented:\n%s", out)
	}
	if !strings.Contains(out, "dir/a.dbc:1:1: note declared here") {
		t.Fatalf("secondary note missing:\n%s", out)
	}
}

func TestPrettyWidthAndLimit(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(1)
	bag.Add(missing(id))
	bag.Add(missing(id))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Width: 10})
	out := buf.String()
	if !strings.Contains(out, " 2 |     @Requ…\n") {
		t.Fatalf("line must be truncated to 10 columns:\n%s", out)
	}
	if strings.Contains(out, "^") {
		t.Fatalf("caret past the width must be dropped:\n%s", out)
	}
	if !strings.Contains(out, "1 more diagnostics not shown (limit 1)") {
		t.Fatalf("dropped count missing:\n%s", out)
	}
}

func TestPrettyColor(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(missing(id))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI sequences:\n%q", buf.String())
	}
}

func TestCaretColumnsWithTabsAndWideRunes(t *testing.T) {
	pad, width := caretColumns("\tx = \"日本\"", 6, source.LineCol{Line: 1, Col: 14}, 1)
	// tab expands to four columns, each CJK rune is two wide
	if pad != 8 || width != 6 {
		t.Fatalf("caretColumns = %d, %d", pad, width)
	}
	_, width = caretColumns("abc", 2, source.LineCol{Line: 2, Col: 1}, 1)
	if width != 2 {
		t.Fatalf("multi-line span must stop at the end of line, got %d", width)
	}
}

func TestShort(t *testing.T) {
	fs, id := setup()
	bag := diag.NewBag(0)
	bag.Add(missing(id))
	bag.Add(diag.New(diag.SevNote, diag.InstrumentedClass, nope(id), "A", "1"))

	var buf bytes.Buffer
	Short(&buf, bag, fs, ShortOpts{PathMode: PathModeBasename})
	want := "a.dbc:2:15: error missing.clause: A.f references clause nope, which is not declared in A or its contract types\n"
	if buf.String() != want {
		t.Fatalf("short:\n got: %q\nwant: %q", buf.String(), want)
	}

	buf.Reset()
	Short(&buf, bag, fs, ShortOpts{PathMode: PathModeBasename, ShowNotes: true})
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", n, buf.String())
	}
}

func TestParsePathMode(t *testing.T) {
	for in, want := range map[string]PathMode{
		"":         PathModeAuto,
		"auto":     PathModeAuto,
		"absolute": PathModeAbsolute,
		"relative": PathModeRelative,
		"basename": PathModeBasename,
	} {
		got, ok := ParsePathMode(in)
		if !ok || got != want {
			t.Errorf("ParsePathMode(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParsePathMode("full"); ok {
		t.Errorf("full is not a path mode")
	}
}
