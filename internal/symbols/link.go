// Package symbols links parsed declarations into an ir.Program and checks
// the program-wide facts a single file cannot: unique type names, known
// type references, unique members and acyclic inheritance.
package symbols

import (
	"strconv"

	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/source"
)

// Link builds the program from prelude and user classes, in that order.
// Problems are reported; the program is returned regardless so later
// phases can keep going on the healthy parts.
func Link(prelude, user []*ir.Class, r diag.Reporter) *ir.Program {
	if r == nil {
		r = diag.NopReporter{}
	}
	prog := ir.NewProgram()
	for _, group := range [][]*ir.Class{prelude, user} {
		for _, c := range group {
			if !prog.Add(c) {
				prev := prog.Class(c.Name)
				diag.ReportError(r, diag.DuplicateClass, c.NameSpan, c.Name).
					WithNote(prev.NameSpan, "previous declaration").
					Emit()
			}
		}
	}

	l := &linker{prog: prog, r: r}
	for _, c := range prog.Classes {
		l.checkSupertypes(c)
		l.checkMembers(c)
	}
	l.checkCycles()
	return prog
}

type linker struct {
	prog *ir.Program
	r    diag.Reporter
}

func (l *linker) checkSupertypes(c *ir.Class) {
	verb := "extend"
	for i, name := range c.Supertypes() {
		if i == len(c.Extends) {
			verb = "implement"
		}
		sup := l.prog.Class(name)
		if sup == nil {
			diag.ReportError(l.r, diag.UnknownType, c.NameSpan, name).Emit()
			continue
		}
		wantIface := c.Kind == ir.KindInterface || verb == "implement"
		if wantIface != (sup.Kind == ir.KindInterface) {
			diag.ReportError(l.r, diag.InvalidSupertype, c.NameSpan, c.Name, verb, sup.Kind.String()+" "+name).Emit()
		}
	}
}

func (l *linker) checkMembers(c *ir.Class) {
	fields := make(map[string]*ir.Field, len(c.Fields))
	for _, f := range c.Fields {
		if prev, dup := fields[f.Name]; dup {
			diag.ReportError(l.r, diag.DuplicateMember, f.Span, c.Name, "field "+f.Name).
				WithNote(prev.Span, "previous declaration").
				Emit()
			continue
		}
		fields[f.Name] = f
		l.checkType(f.Type)
		if f.Init != nil {
			ir.InspectExpr(f.Init, l.visit)
		}
	}

	methods := make(map[string]*ir.Method, len(c.Methods))
	for _, m := range c.Methods {
		key := m.Name
		what := "method " + m.Name
		if m.Ctor {
			key = "<init>/" + strconv.Itoa(len(m.Params))
			what = "constructor " + m.Name + " with " + strconv.Itoa(len(m.Params)) + " parameters"
		}
		if prev, dup := methods[key]; dup {
			diag.ReportError(l.r, diag.DuplicateMember, m.NameSpan, c.Name, what).
				WithNote(prev.NameSpan, "previous declaration").
				Emit()
		} else {
			methods[key] = m
		}
		l.checkMethod(m)
	}
}

func (l *linker) checkMethod(m *ir.Method) {
	if !m.Ctor {
		l.checkType(m.Result)
	}
	seen := make(map[string]source.Span, len(m.Params))
	for _, p := range m.Params {
		if prev, dup := seen[p.Name]; dup {
			diag.ReportError(l.r, diag.DuplicateMember, p.Span, m.QualifiedName(), "parameter "+p.Name).
				WithNote(prev, "previous declaration").
				Emit()
		}
		seen[p.Name] = p.Span
		l.checkType(p.Type)
	}
	if m.Body != nil {
		ir.Inspect(m.Body, l.visit)
	}
}

// visit checks the types named inside method bodies.
func (l *linker) visit(n any) bool {
	switch n := n.(type) {
	case *ir.VarDecl:
		l.checkType(n.Type)
	case *ir.Catch:
		l.checkType(n.Type)
	case *ir.New:
		if l.prog.Class(n.Class) == nil {
			diag.ReportError(l.r, diag.UnknownType, n.Span, n.Class).Emit()
		}
	case *ir.NewArray:
		l.checkType(n.Elem)
	case *ir.InstanceOf:
		l.checkType(n.Type)
	case *ir.Lambda:
		for _, p := range n.Params {
			l.checkType(p.Type)
		}
	}
	return true
}

func (l *linker) checkType(t ir.TypeRef) {
	switch t.Kind {
	case ir.TClass:
		if l.prog.Class(t.Name) == nil {
			diag.ReportError(l.r, diag.UnknownType, t.Span, t.Name).Emit()
		}
	case ir.TArray:
		if t.Elem != nil {
			l.checkType(*t.Elem)
		}
	}
}

// checkCycles reports every type that reaches itself through its supertypes.
func (l *linker) checkCycles() {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(l.prog.Classes))
	onCycle := make(map[string]bool)
	var stack []string
	var dfs func(name string)
	dfs = func(name string) {
		color[name] = grey
		stack = append(stack, name)
		if c := l.prog.Class(name); c != nil {
			for _, sup := range c.Supertypes() {
				if l.prog.Class(sup) == nil {
					continue
				}
				switch color[sup] {
				case white:
					dfs(sup)
				case grey:
					for i := len(stack) - 1; i >= 0; i-- {
						onCycle[stack[i]] = true
						if stack[i] == sup {
							break
						}
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
	}
	for _, c := range l.prog.Classes {
		if color[c.Name] == white {
			dfs(c.Name)
		}
	}
	for _, c := range l.prog.Classes {
		if onCycle[c.Name] {
			diag.ReportError(l.r, diag.CyclicInheritance, c.NameSpan, c.Name).Emit()
		}
	}
}
