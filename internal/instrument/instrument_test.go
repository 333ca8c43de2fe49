package instrument

import (
	"context"
	"strings"
	"testing"

	"dbc/internal/closure"
	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/testkit"
)

type run struct {
	u   *testkit.Unit
	res *Result
	bag *diag.Bag
}

func instrumentSource(t *testing.T, src string, opts Options) *run {
	t.Helper()
	u := testkit.Load(src)
	if u.Bag.HasErrors() {
		t.Fatalf("unexpected front-end diagnostics:\n%s", u.Golden(false))
	}
	bag := diag.NewBag(0)
	res, err := Run(context.Background(), u.Program, closure.Build(u.Program), diag.BagReporter{Bag: bag}, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return &run{u: u, res: res, bag: bag}
}

func (r *run) method(t *testing.T, class, name string) *ir.Method {
	t.Helper()
	c := r.res.Program.Class(class)
	if c == nil {
		t.Fatalf("class %s missing from output", class)
	}
	m := c.Method(name)
	if m == nil {
		t.Fatalf("method %s.%s missing from output", class, name)
	}
	return m
}

func collect[T any](m *ir.Method) []T {
	var out []T
	ir.Inspect(m.Body, func(n any) bool {
		if x, ok := n.(T); ok {
			out = append(out, x)
		}
		return true
	})
	return out
}

const counter = `
class Counter implements Contract {
    int n;

    @Requires("positive")
    @Ensures("grew")
    public int add(int k) {
        n = n + k;
        return n;
    }

    boolean positive(int k) { return k > 0; }
    boolean grew(int returns) { return returns > 0; }
}
`

func TestInstrumentedLayout(t *testing.T) {
	r := instrumentSource(t, counter, Options{})
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(r.bag.Items(), r.u.FS, true))
	}
	got := ir.PrintMethod(r.method(t, "Counter", "add"))
	want := strings.Join([]string{
		`@Requires("positive")`,
		`@Ensures("grew")`,
		`int add(int k) {`,
		`    check precondition positive(k);`,
		`    int $returns;`,
		`    Exception $raises = null;`,
		`    old.enter(this);`,
		`    old.capture(this);`,
		`    try {`,
		`        try {`,
		`            n = n + k;`,
		`            {`,
		`                $returns = n;`,
		`                return $returns;`,
		`            }`,
		`        } catch (Exception $e) {`,
		`            $raises = $e;`,
		`            throw $e;`,
		`        }`,
		`    } finally {`,
		`        try {`,
		`            check postcondition grew($returns);`,
		`        } finally {`,
		`            old.leave(this);`,
		`        }`,
		`    }`,
		`}`,
	}, "\n")
	if got != want {
		t.Fatalf("instrumented form mismatch:\n--- got\n%s\n--- want\n%s", got, want)
	}
	if st := r.res.State("Counter.add"); st != Instrumented {
		t.Fatalf("state: %s", st)
	}
	if st := r.res.State("Counter.positive"); st != Skipped {
		t.Fatalf("clause methods of a class without invariants are uncontracted, got %s", st)
	}
}

func TestSourceProgramIsUntouched(t *testing.T) {
	r := instrumentSource(t, counter, Options{})
	orig := r.u.Program.Class("Counter").Method("add")
	if len(orig.Body.Stmts) != 2 {
		t.Fatalf("source body was modified:\n%s", ir.PrintMethod(orig))
	}
	out := r.method(t, "Counter", "add")
	if out == orig || out.Owner != r.res.Program.Class("Counter") {
		t.Fatalf("output must hold fresh copies owned by the output classes")
	}
	for _, chk := range collect[*ir.Check](out) {
		for _, cl := range chk.Clauses {
			if cl.Target.Owner != r.res.Program.Class("Counter") {
				t.Fatalf("clause target %s points into the source program", cl.Target.QualifiedName())
			}
		}
	}
	// untouched methods share their bodies
	if r.method(t, "Counter", "positive").Body != r.u.Program.Class("Counter").Method("positive").Body {
		t.Fatalf("skipped methods must keep their bodies")
	}
}

const eligibility = `
interface Sized extends Contract {
    int size();
}
class Box implements Sized {
    int count;

    public Box() { count = 0; }

    public void put(int x) { count = count + 1; }

    @Pure
    public int size() { return count; }

    private void reset() { count = 0; }

    public static int twice(int x) { return x * 2; }

    public Object old() { return this; }

    @Invariant
    boolean nonNegative() { return count >= 0; }
}
class Plain {
    public void run() { }
}
`

func TestEligibility(t *testing.T) {
	r := instrumentSource(t, eligibility, Options{})
	cases := []struct {
		name   string
		state  State
		reason SkipReason
	}{
		{"Sized.size", Skipped, SkipAbstract},
		{"Box.put", Instrumented, NotSkipped},
		{"Box.size", Skipped, SkipUncontracted},
		{"Box.reset", Skipped, SkipPrivate},
		{"Box.twice", Skipped, SkipUncontracted},
		{"Box.old", Skipped, SkipOldAccessor},
		{"Box.nonNegative", Instrumented, NotSkipped},
	}
	byName := make(map[string]Record)
	for _, rec := range r.res.Records {
		if !rec.Method.Ctor {
			byName[rec.Name()] = rec
		}
	}
	for _, tc := range cases {
		rec, ok := byName[tc.name]
		if !ok {
			t.Errorf("%s was not discovered", tc.name)
			continue
		}
		if rec.State != tc.state || rec.Reason != tc.reason {
			t.Errorf("%s: got %s/%q, want %s/%q", tc.name, rec.State, rec.Reason, tc.state, tc.reason)
		}
	}
	if _, ok := byName["Plain.run"]; ok {
		t.Errorf("classes outside Contract must not be visited")
	}
}

func TestConstructorKeepsDelegationFirst(t *testing.T) {
	r := instrumentSource(t, `
class Base implements Contract {
    int v;
    public Base(int v) { this.v = v; }
    @Invariant
    boolean ok() { return v >= 0; }
}
class Derived extends Base {
    public Derived() {
        super(1);
        v = v + 1;
    }
}
`, Options{})
	var ctor *ir.Method
	for _, m := range r.res.Program.Class("Derived").Constructors() {
		ctor = m
	}
	if ctor == nil {
		t.Fatal("Derived constructor missing")
	}
	if _, ok := ctor.Body.Stmts[0].(*ir.Delegate); !ok {
		t.Fatalf("delegation must stay first:\n%s", ir.PrintMethod(ctor))
	}
	if len(collect[*ir.OldCapture](ctor)) != 0 {
		t.Fatalf("constructors must not capture old state")
	}
	checks := collect[*ir.Check](ctor)
	if len(checks) != 1 || checks[0].Kind != ir.Invariant {
		t.Fatalf("constructor must check only the invariant:\n%s", ir.PrintMethod(ctor))
	}
	if got := checks[0].Clauses[0].Description; got != "Derived invariant ok" {
		t.Fatalf("description: %s", got)
	}
}

func TestInheritedClausesAreUnioned(t *testing.T) {
	r := instrumentSource(t, `
interface Store extends Contract {
    @Requires("valid")
    @Ensures("stored")
    void put(int x);
}
class Memory implements Store {
    int last;

    @Requires({"small", "valid"})
    public void put(int x) { last = x; }

    boolean valid(int x) { return x >= 0; }
    boolean small(int x) { return x < 100; }
    boolean stored(int x) { return last == x; }
}
`, Options{})
	var rec Record
	for _, x := range r.res.Records {
		if x.Name() == "Memory.put" {
			rec = x
		}
	}
	if rec.State != Instrumented || rec.Pre != 2 || rec.Post != 1 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	pre := collect[*ir.Check](r.method(t, "Memory", "put"))[0]
	var names []string
	for _, cl := range pre.Clauses {
		names = append(names, cl.Target.Name)
	}
	if strings.Join(names, ",") != "small,valid" {
		t.Fatalf("precondition order: %v", names)
	}
}

func TestErroneousClauseBecomesPlaceholder(t *testing.T) {
	r := instrumentSource(t, `
class Gate implements Contract {
    @Requires({"open", "missing"})
    public void pass() { }
    boolean open() { return true; }
}
`, Options{})
	if st := r.res.State("Gate.pass"); st != PartiallyInstrumented {
		t.Fatalf("state: %s", st)
	}
	if len(r.bag.ByCode(diag.MissingClause)) != 1 {
		t.Fatalf("expected missing.clause")
	}
	pre := collect[*ir.Check](r.method(t, "Gate", "pass"))[0]
	if len(pre.Clauses) != 2 || pre.Clauses[0].Erroneous || !pre.Clauses[1].Erroneous {
		t.Fatalf("sibling guards must survive the erroneous one:\n%s", ir.PrintMethod(r.method(t, "Gate", "pass")))
	}
}

func TestLambdaReturnsAreNotCaught(t *testing.T) {
	r := instrumentSource(t, `
class Maker implements Contract {
    @Ensures("made")
    public Function make(int k) {
        if (k > 0) {
            return (int x) -> { return x + k; };
        }
        return null;
    }
    boolean made(Function returns) { return true; }
}
`, Options{})
	var rec Record
	for _, x := range r.res.Records {
		if x.Name() == "Maker.make" {
			rec = x
		}
	}
	if rec.Returns != 2 {
		t.Fatalf("expected 2 rewritten returns, got %d", rec.Returns)
	}
	for _, l := range collect[*ir.Lambda](r.method(t, "Maker", "make")) {
		ret, ok := l.Body.Stmts[0].(*ir.Return)
		if !ok {
			t.Fatalf("lambda body was rewritten")
		}
		if id, ok := ret.Value.(*ir.Ident); ok && id.Name == returnsLocal {
			t.Fatalf("lambda return must not assign $returns")
		}
	}
}

func TestStaticAndPureScopes(t *testing.T) {
	r := instrumentSource(t, `
class Registry implements Contract {
    static int size;
    int hits;

    @Requires("room")
    public static void add() { size = size + 1; }

    @Pure
    @Ensures("sane")
    public int peek() { return hits; }

    static boolean room() { return size < 10; }
    boolean sane(int returns) { return returns >= 0; }

    @Invariant
    boolean counted() { return hits >= 0; }
}
`, Options{})
	add := r.method(t, "Registry", "add")
	caps := collect[*ir.OldCapture](add)
	if len(caps) != 1 || !caps[0].Scope.Static || caps[0].Scope.Class != "Registry" {
		t.Fatalf("static methods capture the class statics:\n%s", ir.PrintMethod(add))
	}
	for _, c := range collect[*ir.Check](add) {
		if c.Kind == ir.Invariant {
			t.Fatalf("static methods never check invariants")
		}
	}

	peek := r.method(t, "Registry", "peek")
	if len(collect[*ir.OldCapture](peek)) != 0 || len(collect[*ir.OldEnter](peek)) != 1 {
		t.Fatalf("pure methods only enter and leave a scope:\n%s", ir.PrintMethod(peek))
	}
	for _, c := range collect[*ir.Check](peek) {
		if c.Kind == ir.Invariant {
			t.Fatalf("pure methods never check invariants")
		}
	}
}

func TestNotes(t *testing.T) {
	r := instrumentSource(t, eligibility, Options{Notes: true})
	for _, code := range []diag.Code{
		diag.InstrumentedMethod,
		diag.ConditionChecks,
		diag.InstrumentedClass,
		diag.ContractInterfaces,
		diag.OverriddenOldMethod,
	} {
		if len(r.bag.ByCode(code)) == 0 {
			t.Errorf("missing note %s", code.ID())
		}
	}
	if r.bag.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", diag.FormatGolden(r.bag.Items(), r.u.FS, false))
	}
	ifc := r.bag.ByCode(diag.ContractInterfaces)
	if ifc[len(ifc)-1].Args[1] != "Box, Sized" {
		t.Fatalf("contract types of Box: %v", ifc[len(ifc)-1].Args)
	}
}

func TestCancelledContext(t *testing.T) {
	u := testkit.Load(counter)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, u.Program, nil, nil, Options{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

const shapes = `
interface Shape extends Contract {
    int area();

    @Requires("area")
    void draw();
}
class Square implements Shape {
    public int area() { return 4; }
    public void draw() { }
}
class Circle implements Shape {
    public int area() { return 3; }
    public void draw() { }
}
`

func TestInheritedClauseIsReportedOnce(t *testing.T) {
	r := instrumentSource(t, shapes, Options{})
	got := r.bag.ByCode(diag.ClauseIsNotBoolean)
	if len(got) != 1 {
		t.Fatalf("expected one clause.is.not.boolean, got:\n%s", diag.FormatGolden(r.bag.Items(), r.u.FS, false))
	}
	if want := "error clause.is.not.boolean test.dbc:5:15 clause area must return boolean, returns int"; diag.FormatGolden(got, r.u.FS, false) != want {
		t.Fatalf("golden:\n got: %s\nwant: %s", diag.FormatGolden(got, r.u.FS, false), want)
	}
	for _, name := range []string{"Square.draw", "Circle.draw"} {
		if st := r.res.State(name); st != PartiallyInstrumented {
			t.Errorf("%s: got %s, want %s", name, st, PartiallyInstrumented)
		}
	}
}

func TestHiddenStaticDoesNotInheritClauses(t *testing.T) {
	r := instrumentSource(t, `
class Parent implements Contract {
    @Requires("ready")
    public static int make() { return 1; }
    static boolean ready() { return true; }
}
class Child extends Parent {
    public static int make() { return 2; }
}
`, Options{})
	if r.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(r.bag.Items(), r.u.FS, false))
	}
	if st := r.res.State("Parent.make"); st != Instrumented {
		t.Fatalf("Parent.make: %s", st)
	}
	if st := r.res.State("Child.make"); st != Skipped {
		t.Fatalf("Child.make hides Parent.make and has no contract of its own, got %s", st)
	}
}
