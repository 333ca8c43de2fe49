package parser_test

import (
	"testing"

	"dbc/internal/diag"
	"dbc/internal/parser"
	"dbc/internal/source"
	"dbc/internal/testkit"
)

func TestDeclarationSpansNest(t *testing.T) {
	src := `
interface Sized extends Contract {
    @Pure
    int size();
}

class Box implements Sized {
    private int count;
    static int made = 0;

    public Box() { count = 0; }

    @Requires("positive")
    public void add(int k) { count = count + k; }

    public int size() { return count; }

    boolean positive(int k) { return k > 0; }

    @Invariant
    boolean nonNegative() { return count >= 0; }
}
`
	fs := source.NewFileSet()
	id := fs.AddVirtual("spans.dbc", []byte(src))
	bag := diag.NewBag(0)
	res := parser.ParseFile(fs.Get(id), parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(bag.Items(), fs, false))
	}
	if len(res.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(res.Classes))
	}
	if err := testkit.CheckSpanInvariants(res.Classes, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
}
