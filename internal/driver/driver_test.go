package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dbc/internal/contract"
	"dbc/internal/diag"
	"dbc/internal/instrument"
	"dbc/internal/vm"
)

const stackFile = `
interface Sized extends Contract {
    @Pure
    int size();
}

class Stack implements Sized {
    int[] items;
    int count;

    public Stack(int capacity) { items = new int[capacity]; }

    public int size() { return count; }

    @Requires("hasRoom")
    @Ensures("grew")
    public void push(int v) {
        items[count] = v;
        count = count + 1;
    }

    boolean hasRoom() { return count < items.length; }
    boolean grew() { return count == old().count + 1; }

    @Invariant
    boolean bounded() { return count <= items.length; }
}
`

const mainFile = `
class Main {
    public static int fine() {
        Stack s = new Stack(2);
        s.push(1);
        s.push(2);
        return s.size();
    }

    public static void overflow() {
        Stack s = new Stack(1);
        s.push(1);
        s.push(2);
    }

    public static void boom() {
        throw new IllegalStateException("boom");
    }
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestListSources(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.dbc":        "",
		"a/c.dbc":      "",
		"notes.txt":    "",
		"a/deeper.dbc": "",
	})
	got, err := ListSources([]string{dir, filepath.Join(dir, "b.dbc")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a", "c.dbc"),
		filepath.Join(dir, "a", "deeper.dbc"),
		filepath.Join(dir, "b.dbc"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v\nwant %v", got, want)
	}
	if _, err := ListSources([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatalf("missing path must fail")
	}
}

func TestCheckInstrumentsAcrossFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{"stack.dbc": stackFile, "app/main.dbc": mainFile})
	res, err := Check(context.Background(), []string{dir}, Options{Jobs: 2, Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(res.Bag.Items(), res.FileSet, false))
	}
	if len(res.Files) != 2 || !res.Runnable() {
		t.Fatalf("files=%d runnable=%v", len(res.Files), res.Runnable())
	}
	if res.Instrumented.State("Stack.push") != instrument.Instrumented {
		t.Fatalf("Stack.push must be instrumented")
	}
	if res.Count(instrument.Instrumented) == 0 || res.Classes != 1 {
		t.Fatalf("summary: %+v classes=%d", res.Methods, res.Classes)
	}
	if res.Timing == nil || len(res.Timing.Phases) != 4 {
		t.Fatalf("timings: %+v", res.Timing)
	}
}

func TestCheckReportsFrontEndErrors(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"ok.dbc":     stackFile,
		"broken.dbc": "class Broken { int x = ; }",
	})
	res, err := Check(context.Background(), []string{dir}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() || res.Instrumented != nil {
		t.Fatalf("a syntax error must stop before instrumentation")
	}
	if len(res.Bag.ByCode(diag.SyntaxError)) == 0 {
		t.Fatalf("expected syntax.error, got:\n%s", diag.FormatGolden(res.Bag.Items(), res.FileSet, false))
	}
	if _, err := Run(context.Background(), res, "Main.fine", vm.Options{}); !errors.Is(err, ErrNotRunnable) {
		t.Fatalf("Run on a broken result: %v", err)
	}
}

func TestCheckWithoutSources(t *testing.T) {
	_, err := Check(context.Background(), []string{t.TempDir()}, Options{})
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestCheckHonoursCancellation(t *testing.T) {
	dir := writeTree(t, map[string]string{"stack.dbc": stackFile})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Check(ctx, []string{dir}, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"stack.dbc": stackFile + `
class Bad implements Contract {
    @Requires("nowhere")
    public void m() { }
}
`,
	})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Cache: cache, Notes: true}
	first, err := Check(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || first.OK() {
		t.Fatalf("first run: cached=%v ok=%v", first.Cached, first.OK())
	}
	second, err := Check(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || second.Instrumented != nil {
		t.Fatalf("second run must come from the cache")
	}
	g1 := diag.FormatGolden(first.Bag.Items(), first.FileSet, true)
	g2 := diag.FormatGolden(second.Bag.Items(), second.FileSet, true)
	if g1 != g2 || !strings.Contains(g2, "missing.clause") {
		t.Fatalf("cached diagnostics differ:\n%s\n---\n%s", g1, g2)
	}
	if len(second.Methods) != len(first.Methods) {
		t.Fatalf("method summaries lost")
	}

	// a different option is a different key
	third, err := Check(context.Background(), []string{dir}, Options{Cache: cache})
	if err != nil || third.Cached {
		t.Fatalf("notes=false must miss: cached=%v err=%v", third.Cached, err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	again, err := Check(context.Background(), []string{dir}, opts)
	if err != nil || again.Cached {
		t.Fatalf("after DropAll: cached=%v err=%v", again.Cached, err)
	}
}

func TestProgressEvents(t *testing.T) {
	dir := writeTree(t, map[string]string{"stack.dbc": stackFile, "main.dbc": mainFile})
	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	res, err := Check(context.Background(), []string{dir}, Options{Progress: sink})
	if err != nil || !res.OK() {
		t.Fatalf("check: %v", err)
	}
	final := make(map[string]Status)
	for _, e := range events {
		if e.File != "" {
			final[e.File] = e.Status
		}
	}
	if len(final) != 2 {
		t.Fatalf("expected events for 2 files, got %v", final)
	}
	for f, st := range final {
		if st != StatusDone {
			t.Fatalf("%s ended as %s", f, st)
		}
	}
}

func TestRunEntry(t *testing.T) {
	dir := writeTree(t, map[string]string{"stack.dbc": stackFile, "main.dbc": mainFile})
	res, err := Check(context.Background(), []string{dir}, Options{})
	if err != nil || !res.Runnable() {
		t.Fatalf("check: %v", err)
	}
	var out bytes.Buffer
	opts := vm.Options{Out: &out}

	v, err := Run(context.Background(), res, "Main.fine", opts)
	if err != nil || v.Int != 2 || ExitCode(err) != ExitOK {
		t.Fatalf("Main.fine: %v %v", v, err)
	}

	_, err = Run(context.Background(), res, "Main.overflow", opts)
	if ExitCode(err) != ExitViolation || !errors.Is(err, contract.ErrPrecondition) {
		t.Fatalf("Main.overflow: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Main.overflow: ") {
		t.Fatalf("error must name the entry: %v", err)
	}

	_, err = Run(context.Background(), res, "Main.boom", opts)
	if ExitCode(err) != ExitFailure {
		t.Fatalf("an uncaught exception is a plain failure: %v", err)
	}

	_, err = Run(context.Background(), res, "Main.missing", opts)
	if ExitCode(err) != ExitInternal {
		t.Fatalf("an unknown entry is an engine error: %v", err)
	}
	if _, err := Run(context.Background(), res, "nodot", opts); err == nil {
		t.Fatalf("malformed entry must fail")
	}
}
