package clause

import (
	"strconv"

	"dbc/internal/closure"
	"dbc/internal/diag"
	"dbc/internal/ir"
)

// Names of the synthetic clause parameters.
const (
	ReturnsParam = "returns"
	RaisesParam  = "raises"
)

// Source says where the argument of a clause parameter comes from.
type Source uint8

const (
	FromParam Source = iota
	FromReturns
	FromRaises
)

// Binding maps one parameter of the clause method to its argument.
type Binding struct {
	Param  *ir.Param
	Source Source
	Member *ir.Param // the annotated member's parameter, FromParam only
}

// Clause is a resolved reference. Erroneous clauses keep their Ref and
// Owner so the pass can still emit a placeholder guard for them.
type Clause struct {
	Ref       Ref
	Owner     string     // annotated member, e.g. "Stack.push"
	Member    *ir.Method // nil for invariants
	Target    *ir.Method
	Bindings  []Binding
	Erroneous bool
}

// Description is the text a failing check reports for this clause.
func (c *Clause) Description() string {
	return c.Owner + " " + Keyword(c.Ref.Kind) + " " + c.Ref.Text
}

// Context is the annotated member being resolved against. Class is the
// type whose closure is searched; for inherited clauses it is the class
// being instrumented, not the declaring one.
type Context struct {
	Class  *ir.Class
	Member *ir.Method
}

type memoKey struct {
	class  string
	member *ir.Method
	kind   ir.ConditionKind
	text   string
}

// Resolver resolves clause references against a closure table. Results are
// memoised, so resolving the same text in the same context twice yields the
// same *Clause and reports its diagnostics only once.
type Resolver struct {
	table    *closure.Table
	reporter diag.Reporter
	memo     map[memoKey]*Clause
	invDone  map[*ir.Method]bool
}

func NewResolver(table *closure.Table, r diag.Reporter) *Resolver {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Resolver{
		table:    table,
		reporter: r,
		memo:     make(map[memoKey]*Clause),
		invDone:  make(map[*ir.Method]bool),
	}
}

// Table returns the closure table the resolver works on.
func (rs *Resolver) Table() *closure.Table { return rs.table }

// ResolveText parses and resolves one annotation string. A grammar
// violation is reported as malformed.clause and yields an erroneous clause.
func (rs *Resolver) ResolveText(ctx Context, kind ir.ConditionKind, cref ir.ClauseRef) *Clause {
	ref, err := Parse(kind, cref.Text)
	if err != nil {
		key := memoKey{class: ctx.Class.Name, member: ctx.Member, kind: kind, text: cref.Text}
		if c, ok := rs.memo[key]; ok {
			return c
		}
		diag.ReportError(rs.reporter, diag.MalformedClause, cref.Span, cref.Text, ctx.Member.QualifiedName()).Emit()
		c := &Clause{
			Ref:       Ref{Kind: kind, Text: cref.Text, Span: cref.Span},
			Owner:     ctx.Member.QualifiedName(),
			Member:    ctx.Member,
			Erroneous: true,
		}
		rs.memo[key] = c
		return c
	}
	ref.Span = cref.Span
	return rs.Resolve(ctx, ref)
}

// Resolve finds the clause method and binds its parameters by name.
func (rs *Resolver) Resolve(ctx Context, ref Ref) *Clause {
	key := memoKey{class: ctx.Class.Name, member: ctx.Member, kind: ref.Kind, text: ref.Text}
	if c, ok := rs.memo[key]; ok {
		return c
	}
	c := rs.resolve(ctx, ref)
	rs.memo[key] = c
	return c
}

func (rs *Resolver) resolve(ctx Context, ref Ref) *Clause {
	m := ctx.Member
	c := &Clause{Ref: ref, Owner: m.QualifiedName(), Member: m}
	target, ok := rs.table.Lookup(ctx.Class, ref.Name)
	if !ok {
		rs.report(diag.MissingClause, ref, m.QualifiedName(), ref.Name, ctx.Class.Name)
		c.Erroneous = true
		return c
	}
	c.Target = target

	if !target.Result.IsBool() {
		rs.report(diag.ClauseIsNotBoolean, ref, ref.Name, target.Result.String())
		c.Erroneous = true
	}
	if target.Static != m.Static {
		rs.report(diag.IncompatibleClause, ref,
			m.QualifiedName(), strconv.FormatBool(m.Static),
			ref.Name, strconv.FormatBool(target.Static))
		c.Erroneous = true
	}

	for _, p := range target.Params {
		b, ok := rs.bind(ctx, ref, p)
		if !ok {
			c.Erroneous = true
			continue
		}
		c.Bindings = append(c.Bindings, b)
	}
	return c
}

// bind matches one clause parameter: member parameters first, then the
// synthetic returns and raises values.
func (rs *Resolver) bind(ctx Context, ref Ref, p *ir.Param) (Binding, bool) {
	m := ctx.Member
	if mp := m.Param(p.Name); mp != nil {
		if !rs.table.Assignable(mp.Type, p.Type) {
			rs.report(diag.WrongParamType, ref, ref.Name, p.Name, p.Type.String(), mp.Type.String())
			return Binding{}, false
		}
		return Binding{Param: p, Source: FromParam, Member: mp}, true
	}

	switch p.Name {
	case ReturnsParam:
		if ref.Kind == ir.Precondition {
			rs.report(diag.ReturnsOnPrecond, ref, ref.Name, m.QualifiedName())
			return Binding{}, false
		}
		if m.Ctor || m.Result.IsVoid() {
			rs.report(diag.ReturnsOnVoidMethod, ref, ref.Name, m.QualifiedName())
			return Binding{}, false
		}
		if !rs.table.Assignable(m.Result, p.Type) {
			rs.report(diag.WrongParamType, ref, ref.Name, p.Name, p.Type.String(), m.Result.String())
			return Binding{}, false
		}
		return Binding{Param: p, Source: FromReturns}, true
	case RaisesParam:
		if ref.Kind == ir.Precondition {
			rs.report(diag.RaisesOnPrecond, ref, ref.Name, m.QualifiedName())
			return Binding{}, false
		}
		exc := ir.ExceptionType()
		if !rs.table.Assignable(exc, p.Type) {
			rs.report(diag.WrongParamType, ref, ref.Name, p.Name, p.Type.String(), exc.String())
			return Binding{}, false
		}
		return Binding{Param: p, Source: FromRaises}, true
	}

	rs.report(diag.MissingParamName, ref, ref.Name, p.Name, m.QualifiedName())
	return Binding{}, false
}

func (rs *Resolver) report(code diag.Code, ref Ref, args ...string) {
	diag.ReportError(rs.reporter, code, ref.Span, args...).Emit()
}
