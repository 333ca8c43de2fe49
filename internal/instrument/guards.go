package instrument

import (
	"dbc/internal/clause"
	"dbc/internal/contract"
	"dbc/internal/ir"
	"dbc/internal/source"
)

// gather resolves the clauses of one kind for m: its own first, then those
// of every overridden declaration in closure order. Texts seen already are
// dropped.
func (mc *methodContext) gather(kind ir.ConditionKind) []*clause.Clause {
	cc := mc.cc
	ctx := clause.Context{Class: cc.src, Member: mc.src}
	seen := make(map[string]bool)
	var out []*clause.Clause
	add := func(refs []ir.ClauseRef) {
		for _, r := range refs {
			if seen[r.Text] {
				continue
			}
			seen[r.Text] = true
			out = append(out, cc.pass.rs.ResolveText(ctx, kind, r))
		}
	}
	decls := append([]*ir.Method{mc.src}, cc.pass.table.Overridden(mc.src)...)
	for _, d := range decls {
		if kind == ir.Precondition {
			add(d.Contract.Requires)
		} else {
			add(d.Contract.Ensures)
		}
	}
	return out
}

// guard builds the Check statement for clauses, nil when there is nothing
// to check.
func (mc *methodContext) guard(kind ir.ConditionKind, clauses []*clause.Clause) *ir.Check {
	if len(clauses) == 0 {
		return nil
	}
	sp := mc.src.NameSpan
	chk := &ir.Check{Kind: kind, Method: mc.src.QualifiedName(), Span: sp}
	for _, cl := range clauses {
		cc := &ir.CheckClause{
			Description: cl.Description(),
			Negated:     cl.Ref.Negated,
			Span:        cl.Ref.Span,
		}
		if cl.Erroneous || cl.Target == nil {
			cc.Erroneous = true
			mc.erroneous++
		} else {
			cc.Target = mc.cc.pass.remap(cl.Target)
			cc.Args = make([]ir.Expr, 0, len(cl.Bindings))
			for _, b := range cl.Bindings {
				cc.Args = append(cc.Args, bindingArg(b, cl.Ref.Span))
			}
		}
		chk.Clauses = append(chk.Clauses, cc)
	}
	chk.Values = mc.values(kind)
	return chk
}

func bindingArg(b clause.Binding, sp source.Span) ir.Expr {
	switch b.Source {
	case clause.FromReturns:
		return &ir.Ident{Name: returnsLocal, Span: sp}
	case clause.FromRaises:
		return &ir.Ident{Name: raisesLocal, Span: sp}
	}
	return &ir.Ident{Name: b.Member.Name, Span: sp}
}

// values lists what a failing check of kind renders next to its description.
func (mc *methodContext) values(kind ir.ConditionKind) []ir.CheckValue {
	m := mc.src
	var out []ir.CheckValue
	if !m.Static {
		out = append(out, ir.CheckValue{Label: contract.ThisLabel, X: &ir.This{Span: m.NameSpan}})
	}
	if kind == ir.Invariant {
		return out
	}
	for _, p := range m.Params {
		out = append(out, ir.CheckValue{Label: p.Name, X: &ir.Ident{Name: p.Name, Span: p.Span}})
	}
	if kind == ir.Postcondition {
		if hasReturns(m) && m.Param(clause.ReturnsParam) == nil {
			out = append(out, ir.CheckValue{Label: clause.ReturnsParam, X: &ir.Ident{Name: returnsLocal, Span: m.NameSpan}})
		}
		if m.Param(clause.RaisesParam) == nil {
			out = append(out, ir.CheckValue{Label: clause.RaisesParam, X: &ir.Ident{Name: raisesLocal, Span: m.NameSpan}})
		}
	}
	return out
}

func hasReturns(m *ir.Method) bool {
	return !m.Ctor && !m.Result.IsVoid()
}
