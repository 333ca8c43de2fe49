package closure

import (
	"strings"
	"testing"

	"dbc/internal/ir"
	"dbc/internal/testkit"
)

const hierarchy = `
interface Sized extends Contract {
    @Pure
    int size();
}
interface Named {
    String name();
}
class Base implements Named {
    public String name() { return "base"; }
    public int size() { return 0; }
}
class Leaf extends Base implements Sized, Named {
    public int size() { return 1; }
}
`

func names(cs []*ir.Class) string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return strings.Join(out, ",")
}

func TestClosureOrder(t *testing.T) {
	u := testkit.Load(hierarchy)
	if u.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", u.Golden(false))
	}
	tab := Build(u.Program)
	leaf := u.Program.Class("Leaf")

	if got, want := names(tab.Closure(leaf)), "Leaf,Base,Sized,Named,Contract"; got != want {
		t.Fatalf("closure: got %s want %s", got, want)
	}
	if got, want := names(tab.Contracts(leaf)), "Leaf,Sized"; got != want {
		t.Fatalf("contracts: got %s want %s", got, want)
	}
	if tab.Participates(u.Program.Class("Base")) {
		t.Fatalf("Base does not implement Contract")
	}
}

func TestLookupFirstMatch(t *testing.T) {
	u := testkit.Load(hierarchy)
	tab := Build(u.Program)
	leaf := u.Program.Class("Leaf")

	m, ok := tab.Lookup(leaf, "size")
	if !ok || m.Owner.Name != "Leaf" {
		t.Fatalf("size must resolve to Leaf.size, got %v", m)
	}
	m, ok = tab.Lookup(leaf, "name")
	if !ok || m.Owner.Name != "Base" {
		t.Fatalf("name must resolve to Base.name, got %v", m)
	}
	if _, ok := tab.Lookup(leaf, "missing"); ok {
		t.Fatalf("missing must not resolve")
	}

	over := tab.Overridden(leaf.Method("size"))
	got := make([]string, len(over))
	for i, o := range over {
		got[i] = o.QualifiedName()
	}
	if strings.Join(got, ",") != "Base.size,Sized.size" {
		t.Fatalf("overridden: %v", got)
	}
}

func TestAssignable(t *testing.T) {
	u := testkit.Load(hierarchy)
	tab := Build(u.Program)

	leaf := ir.ClassType("Leaf")
	cases := []struct {
		from, to ir.TypeRef
		want     bool
	}{
		{leaf, ir.ClassType("Base"), true},
		{leaf, ir.ClassType("Sized"), true},
		{ir.ClassType("Base"), leaf, false},
		{leaf, ir.ObjectType(), true},
		{ir.IntType(), ir.ObjectType(), false},
		{ir.IntType(), ir.IntType(), true},
		{ir.StringType(), ir.ObjectType(), true},
		{ir.ArrayOf(leaf), ir.ArrayOf(ir.ClassType("Named")), true},
		{ir.ArrayOf(ir.IntType()), ir.ArrayOf(ir.ObjectType()), false},
		{ir.ExceptionType(), ir.ClassType("RuntimeException"), false},
		{ir.ClassType("IllegalStateException"), ir.ExceptionType(), true},
		{ir.VoidType(), ir.ObjectType(), false},
	}
	for _, tc := range cases {
		if got := tab.Assignable(tc.from, tc.to); got != tc.want {
			t.Errorf("Assignable(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCyclesDoNotLoop(t *testing.T) {
	u := testkit.Load(`
interface A extends B { }
interface B extends A { }
`)
	tab := Build(u.Program)
	if got := names(tab.Closure(u.Program.Class("A"))); got != "A,B" {
		t.Fatalf("closure: %s", got)
	}
}

func TestStaticMethodsHide(t *testing.T) {
	u := testkit.Load(`
class Parent implements Contract {
    @Requires("ready")
    public static int make() { return 1; }
    public int size() { return 0; }
    static boolean ready() { return true; }
}
class Child extends Parent {
    public static int make() { return 2; }
    public static int size() { return 3; }
}
`)
	if u.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", u.Golden(false))
	}
	tab := Build(u.Program)
	child := u.Program.Class("Child")
	for _, name := range []string{"make", "size"} {
		if over := tab.Overridden(child.Method(name)); len(over) != 0 {
			t.Errorf("Child.%s must not override %v", name, over[0].QualifiedName())
		}
	}
	if over := tab.Overridden(u.Program.Class("Parent").Method("size")); len(over) != 0 {
		t.Errorf("Parent.size has nothing to override, got %d", len(over))
	}
}
