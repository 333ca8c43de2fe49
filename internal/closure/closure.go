// Package closure precomputes, once per program, the supertype closure of
// every type and the name lookups the clause resolver and the
// instrumentation pass need. The table is immutable after Build and safe
// for concurrent readers.
package closure

import (
	"dbc/internal/ir"
)

// Table is the resolution table for one program.
type Table struct {
	prog    *ir.Program
	entries map[string]*entry
}

type entry struct {
	class     *ir.Class
	closure   []*ir.Class           // self first, BFS over extends then implements
	contracts []*ir.Class           // closure members that participate in Contract
	first     map[string]*ir.Method // first non-constructor method by name
	byName    map[string][]*ir.Method
	supers    map[string]struct{}
}

// Build computes the table. Unknown supertypes are skipped; cycles cannot
// loop because every type is visited at most once.
func Build(prog *ir.Program) *Table {
	t := &Table{prog: prog, entries: make(map[string]*entry, len(prog.Classes))}
	for _, c := range prog.Classes {
		t.entries[c.Name] = t.compute(c)
	}
	for _, e := range t.entries {
		for _, c := range e.closure {
			if c.Name == ir.ContractMarker {
				continue
			}
			if _, ok := t.entries[c.Name].supers[ir.ContractMarker]; ok {
				e.contracts = append(e.contracts, c)
			}
		}
	}
	return t
}

func (t *Table) compute(c *ir.Class) *entry {
	e := &entry{
		class:  c,
		first:  make(map[string]*ir.Method),
		byName: make(map[string][]*ir.Method),
		supers: make(map[string]struct{}),
	}
	queue := []*ir.Class{c}
	e.supers[c.Name] = struct{}{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		e.closure = append(e.closure, cur)
		for _, name := range cur.Supertypes() {
			if _, seen := e.supers[name]; seen {
				continue
			}
			sup := t.prog.Class(name)
			if sup == nil {
				continue
			}
			e.supers[name] = struct{}{}
			queue = append(queue, sup)
		}
	}
	for _, cls := range e.closure {
		for _, m := range cls.Methods {
			if m.Ctor {
				continue
			}
			if _, ok := e.first[m.Name]; !ok {
				e.first[m.Name] = m
			}
			e.byName[m.Name] = append(e.byName[m.Name], m)
		}
	}
	return e
}

// Program returns the program the table was built for.
func (t *Table) Program() *ir.Program { return t.prog }

// Closure returns c followed by all its supertypes in BFS order.
func (t *Table) Closure(c *ir.Class) []*ir.Class {
	if e := t.entry(c); e != nil {
		return e.closure
	}
	return nil
}

// Contracts returns the closure members of c that participate in Contract.
func (t *Table) Contracts(c *ir.Class) []*ir.Class {
	if e := t.entry(c); e != nil {
		return e.contracts
	}
	return nil
}

// Participates reports whether c is a subtype of the Contract marker.
func (t *Table) Participates(c *ir.Class) bool {
	e := t.entry(c)
	if e == nil {
		return false
	}
	_, ok := e.supers[ir.ContractMarker]
	return ok
}

// Lookup returns the first method called name in the closure of c.
func (t *Table) Lookup(c *ir.Class, name string) (*ir.Method, bool) {
	e := t.entry(c)
	if e == nil {
		return nil, false
	}
	m, ok := e.first[name]
	return m, ok
}

// Overridden returns every other declaration of m's name in the closure of
// its owner, in closure order. Static methods hide rather than override, so
// a pair where either side is static is not an override.
func (t *Table) Overridden(m *ir.Method) []*ir.Method {
	if m == nil || m.Ctor {
		return nil
	}
	e := t.entry(m.Owner)
	if e == nil {
		return nil
	}
	var out []*ir.Method
	for _, other := range e.byName[m.Name] {
		if other != m && !other.Static && !m.Static {
			out = append(out, other)
		}
	}
	return out
}

// Declarations returns every declaration of name in the closure of c,
// own declarations first.
func (t *Table) Declarations(c *ir.Class, name string) []*ir.Method {
	if e := t.entry(c); e != nil {
		return e.byName[name]
	}
	return nil
}

// IsSubtype reports whether a is b or inherits from it.
func (t *Table) IsSubtype(a, b string) bool {
	e, ok := t.entries[a]
	if !ok {
		return a == b
	}
	_, ok = e.supers[b]
	return ok
}

// Assignable reports whether a value of type from may be bound to a
// parameter of type to.
func (t *Table) Assignable(from, to ir.TypeRef) bool {
	if from.IsVoid() || to.IsVoid() {
		return false
	}
	if from.Equal(to) {
		return true
	}
	switch to.Kind {
	case ir.TObject:
		return !from.IsPrimitive()
	case ir.TClass:
		return from.Kind == ir.TClass && t.IsSubtype(from.Name, to.Name)
	case ir.TArray:
		if from.Kind != ir.TArray || from.Elem == nil || to.Elem == nil {
			return false
		}
		if from.Elem.IsPrimitive() || to.Elem.IsPrimitive() {
			return from.Elem.Equal(*to.Elem)
		}
		return t.Assignable(*from.Elem, *to.Elem)
	}
	return false
}

func (t *Table) entry(c *ir.Class) *entry {
	if t == nil || c == nil {
		return nil
	}
	return t.entries[c.Name]
}
