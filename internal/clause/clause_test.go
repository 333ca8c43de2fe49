package clause

import (
	"errors"
	"reflect"
	"testing"

	"dbc/internal/closure"
	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/testkit"
)

func TestParseGrammar(t *testing.T) {
	cases := []struct {
		text    string
		name    string
		negated bool
		bad     bool
	}{
		{text: "notFull", name: "notFull"},
		{text: "!isEmpty", name: "isEmpty", negated: true},
		{text: "a_1", name: "a_1"},
		{text: "", bad: true},
		{text: "!", bad: true},
		{text: "!!a", bad: true},
		{text: " a", bad: true},
		{text: "a b", bad: true},
		{text: "1abc", bad: true},
		{text: "_a", bad: true},
		{text: "a()", bad: true},
		{text: "a && b", bad: true},
	}
	for _, tc := range cases {
		ref, err := Parse(ir.Precondition, tc.text)
		if tc.bad {
			if !errors.Is(err, ErrMalformedClause) {
				t.Errorf("Parse(%q): expected ErrMalformedClause, got %v", tc.text, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.text, err)
			continue
		}
		if ref.Name != tc.name || ref.Negated != tc.negated || ref.Text != tc.text {
			t.Errorf("Parse(%q) = %+v", tc.text, ref)
		}
	}
}

const account = `
class Account implements Contract {
    int balance;
    static int opened;

    @Requires({"positive", "!frozen"})
    @Ensures({"grew", "nonNegative"})
    public int deposit(int amount) {
        balance = balance + amount;
        return balance;
    }

    @Requires({"returnsOk", "raisedEarly"})
    @Ensures({"raisedOk", "wrongType", "unknownParam", "nothingHere", "counted", "notBool", "voidReturns"})
    public void close(String reason) { }

    @Requires("instanceCheck")
    public static void open() { opened = opened + 1; }

    boolean positive(int amount) { return amount > 0; }
    boolean frozen() { return false; }
    boolean grew(int returns) { return returns > 0; }
    boolean nonNegative() { return balance >= 0; }
    boolean returnsOk(int returns) { return true; }
    boolean raisedOk(Exception raises) { return raises == null; }
    boolean raisedEarly(Exception raises) { return true; }
    boolean voidReturns(int returns) { return true; }
    boolean wrongType(int reason) { return true; }
    boolean unknownParam(int other) { return true; }
    static boolean counted() { return true; }
    int notBool() { return 1; }
    boolean instanceCheck() { return true; }

    @Invariant
    boolean balanceOk() { return balance >= 0; }

    @Invariant
    boolean withArg(int x) { return true; }

    @Invariant
    static boolean staticInv() { return true; }

    @Invariant
    int numericInv() { return 0; }
}
`

type fixture struct {
	u   *testkit.Unit
	bag *diag.Bag
	rs  *Resolver
	cls *ir.Class
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	u := testkit.Load(account)
	if u.Bag.HasErrors() {
		t.Fatalf("unexpected front-end diagnostics:\n%s", u.Golden(false))
	}
	bag := diag.NewBag(0)
	rs := NewResolver(closure.Build(u.Program), diag.BagReporter{Bag: bag})
	return &fixture{u: u, bag: bag, rs: rs, cls: u.Program.Class("Account")}
}

func (f *fixture) resolveAll(m *ir.Method) []*Clause {
	ctx := Context{Class: f.cls, Member: m}
	var out []*Clause
	for _, r := range m.Contract.Requires {
		out = append(out, f.rs.ResolveText(ctx, ir.Precondition, r))
	}
	for _, r := range m.Contract.Ensures {
		out = append(out, f.rs.ResolveText(ctx, ir.Postcondition, r))
	}
	return out
}

func TestResolveHealthyClauses(t *testing.T) {
	f := newFixture(t)
	clauses := f.resolveAll(f.cls.Method("deposit"))
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGolden(f.bag.Items(), f.u.FS, false))
	}
	if len(clauses) != 4 {
		t.Fatalf("expected 4 clauses, got %d", len(clauses))
	}
	pos := clauses[0]
	if pos.Erroneous || pos.Target.Name != "positive" || len(pos.Bindings) != 1 || pos.Bindings[0].Source != FromParam {
		t.Fatalf("unexpected positive clause: %+v", pos)
	}
	if !clauses[1].Ref.Negated {
		t.Fatalf("!frozen must be negated")
	}
	grew := clauses[2]
	if grew.Bindings[0].Source != FromReturns {
		t.Fatalf("grew must bind returns")
	}
	if got := grew.Description(); got != "Account.deposit ensures grew" {
		t.Fatalf("description: %s", got)
	}
}

func TestResolveReportsEveryProblem(t *testing.T) {
	f := newFixture(t)
	clauses := f.resolveAll(f.cls.Method("close"))
	clauses = append(clauses, f.resolveAll(f.cls.Method("open"))...)

	want := []diag.Code{
		diag.ReturnsOnPrecond,
		diag.RaisesOnPrecond,
		diag.WrongParamType,
		diag.MissingParamName,
		diag.MissingClause,
		diag.IncompatibleClause,
		diag.ClauseIsNotBoolean,
		diag.ReturnsOnVoidMethod,
		diag.IncompatibleClause,
	}
	var got []diag.Code
	for _, d := range f.bag.Items() {
		got = append(got, d.Code)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("codes:\n got: %v\nwant: %v", got, want)
	}

	erroneous := 0
	for _, c := range clauses {
		if c.Erroneous {
			erroneous++
		}
	}
	// raisedOk is the only healthy clause of close
	if erroneous != len(clauses)-1 {
		t.Fatalf("expected %d erroneous clauses, got %d", len(clauses)-1, erroneous)
	}

	wrong := f.bag.ByCode(diag.WrongParamType)[0]
	if !reflect.DeepEqual(wrong.Args, []string{"wrongType", "reason", "int", "String"}) {
		t.Fatalf("wrong.param.type args: %v", wrong.Args)
	}
	inc := f.bag.ByCode(diag.IncompatibleClause)[0]
	if !reflect.DeepEqual(inc.Args, []string{"Account.close", "false", "counted", "true"}) {
		t.Fatalf("incompatible.clause args: %v", inc.Args)
	}
	for _, tc := range []struct {
		code diag.Code
		args []string
	}{
		{diag.ReturnsOnPrecond, []string{"returnsOk", "Account.close"}},
		{diag.RaisesOnPrecond, []string{"raisedEarly", "Account.close"}},
		{diag.ReturnsOnVoidMethod, []string{"voidReturns", "Account.close"}},
	} {
		d := f.bag.ByCode(tc.code)
		if len(d) != 1 || !reflect.DeepEqual(d[0].Args, tc.args) {
			t.Fatalf("%s: %+v", tc.code.ID(), d)
		}
	}
	missing := f.bag.ByCode(diag.MissingClause)[0]
	if !reflect.DeepEqual(missing.Args, []string{"Account.close", "nothingHere", "Account"}) {
		t.Fatalf("missing.clause args: %v", missing.Args)
	}
}

func TestMalformedClauseIsReported(t *testing.T) {
	f := newFixture(t)
	m := f.cls.Method("deposit")
	ctx := Context{Class: f.cls, Member: m}
	c := f.rs.ResolveText(ctx, ir.Precondition, ir.ClauseRef{Text: "a || b"})
	if !c.Erroneous {
		t.Fatalf("malformed clause must be erroneous")
	}
	if len(f.bag.ByCode(diag.MalformedClause)) != 1 {
		t.Fatalf("expected malformed.clause")
	}
}

func TestInvariantShapes(t *testing.T) {
	f := newFixture(t)
	invs := f.rs.Invariants(f.cls)
	if len(invs) != 4 {
		t.Fatalf("expected 4 invariants, got %d", len(invs))
	}
	if invs[0].Erroneous || invs[0].Target.Name != "balanceOk" {
		t.Fatalf("balanceOk must be healthy")
	}
	for _, c := range invs[1:] {
		if !c.Erroneous {
			t.Fatalf("%s must be erroneous", c.Ref.Name)
		}
	}
	want := []diag.Code{diag.InvariantArity, diag.InvariantIsStatic, diag.InvariantNotBoolean}
	var got []diag.Code
	for _, d := range f.bag.Items() {
		got = append(got, d.Code)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("codes: got %v want %v", got, want)
	}

	// a second query reports nothing new
	f.rs.Invariants(f.cls)
	if f.bag.Len() != len(want) {
		t.Fatalf("invariant diagnostics must be reported once")
	}
}

func TestResolutionIsDeterministic(t *testing.T) {
	run := func() ([]string, string) {
		f := newFixture(t)
		var targets []string
		for _, name := range []string{"deposit", "close", "open"} {
			for _, c := range f.resolveAll(f.cls.Method(name)) {
				if c.Target != nil {
					targets = append(targets, c.Target.QualifiedName())
				} else {
					targets = append(targets, "<none>")
				}
			}
		}
		return targets, diag.FormatGolden(f.bag.Items(), f.u.FS, false)
	}
	t1, d1 := run()
	t2, d2 := run()
	if !reflect.DeepEqual(t1, t2) || d1 != d2 {
		t.Fatalf("resolution differs between runs:\n%v\n%v\n%s\n%s", t1, t2, d1, d2)
	}

	f := newFixture(t)
	m := f.cls.Method("deposit")
	ctx := Context{Class: f.cls, Member: m}
	a := f.rs.ResolveText(ctx, ir.Precondition, m.Contract.Requires[0])
	b := f.rs.ResolveText(ctx, ir.Precondition, m.Contract.Requires[0])
	if a != b {
		t.Fatalf("memoised resolution must return the same clause")
	}
}
