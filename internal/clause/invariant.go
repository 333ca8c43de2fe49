package clause

import (
	"strconv"

	"dbc/internal/diag"
	"dbc/internal/ir"
)

// Invariants returns the invariant clauses that hold for instances of c:
// every @Invariant declaration in the closure of c, first declaration of a
// name wins, each resolved to the implementation c actually runs. Shape
// errors are reported once per declaration and make the clause erroneous.
func (rs *Resolver) Invariants(c *ir.Class) []*Clause {
	seen := make(map[string]bool)
	var out []*Clause
	for _, cls := range rs.table.Closure(c) {
		for _, decl := range cls.Invariants() {
			if seen[decl.Name] {
				continue
			}
			seen[decl.Name] = true
			ok := rs.checkInvariantShape(decl)
			target, found := rs.table.Lookup(c, decl.Name)
			if !found {
				target = decl
			}
			cl := &Clause{
				Ref:       Ref{Name: decl.Name, Kind: ir.Invariant, Text: decl.Name, Span: decl.NameSpan},
				Owner:     c.Name,
				Target:    target,
				Erroneous: !ok,
			}
			if ok && target != decl && !invariantShapeOK(target) {
				cl.Erroneous = true
			}
			out = append(out, cl)
		}
	}
	return out
}

// checkInvariantShape reports invariant.non.zero.arity, invariant.is.static
// and invariant.is.not.boolean for decl, once.
func (rs *Resolver) checkInvariantShape(decl *ir.Method) bool {
	ok := invariantShapeOK(decl)
	if rs.invDone[decl] {
		return ok
	}
	rs.invDone[decl] = true
	name := decl.QualifiedName()
	if n := len(decl.Params); n != 0 {
		diag.ReportError(rs.reporter, diag.InvariantArity, decl.NameSpan, name, strconv.Itoa(n)).Emit()
	}
	if decl.Static {
		diag.ReportError(rs.reporter, diag.InvariantIsStatic, decl.NameSpan, name).Emit()
	}
	if !decl.Result.IsBool() {
		diag.ReportError(rs.reporter, diag.InvariantNotBoolean, decl.NameSpan, name, decl.Result.String()).Emit()
	}
	return ok
}

func invariantShapeOK(m *ir.Method) bool {
	return len(m.Params) == 0 && !m.Static && m.Result.IsBool()
}
