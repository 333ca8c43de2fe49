package instrument

import (
	"context"
	"fmt"

	"dbc/internal/clause"
	"dbc/internal/closure"
	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/trace"
)

// Options configure one pass.
type Options struct {
	// Notes enables the informational notes (instrumented.method etc.).
	Notes bool
}

// Record is the outcome for one discovered method.
type Record struct {
	Class   string
	Method  *ir.Method // the method in the output program
	State   State
	Reason  SkipReason
	Pre     int
	Post    int
	Inv     int
	Returns int // rewritten return statements
}

func (r Record) Name() string { return r.Method.QualifiedName() }

// Result is the instrumented program plus what happened to every method of
// every contract-bearing class.
type Result struct {
	Program *ir.Program
	Table   *closure.Table // built over Program
	Records []Record
	Classes int // classes with at least one instrumented method
}

// State returns the state of the method called qualified ("Stack.push"),
// Skipped when the pass never saw it.
func (r *Result) State(qualified string) State {
	for _, rec := range r.Records {
		if rec.Name() == qualified {
			return rec.State
		}
	}
	return Skipped
}

// Count returns how many records are in state s.
func (r *Result) Count(s State) int {
	n := 0
	for _, rec := range r.Records {
		if rec.State == s {
			n++
		}
	}
	return n
}

type pass struct {
	table    *closure.Table
	rs       *clause.Resolver
	reporter diag.Reporter
	opts     Options
	out      *ir.Program
	methods  map[*ir.Method]*ir.Method
	classes  map[*ir.Class]*ir.Class
}

type classContext struct {
	pass       *pass
	src        *ir.Class
	dst        *ir.Class
	invariants []*clause.Clause
}

type methodContext struct {
	cc        *classContext
	src       *ir.Method
	dst       *ir.Method
	erroneous int
}

// Run instruments prog. Clause problems are reported to r and never stop the
// pass; only ctx cancellation does.
func Run(ctx context.Context, prog *ir.Program, table *closure.Table, r diag.Reporter, opts Options) (*Result, error) {
	dedup := diag.NewDedupReporter(r)
	r = dedup
	if table == nil {
		table = closure.Build(prog)
	}
	ctx, span := trace.Enter(ctx, trace.ScopePass, "instrument")
	defer span.End("")

	p := &pass{
		table:    table,
		rs:       clause.NewResolver(table, r),
		reporter: r,
		opts:     opts,
		methods:  make(map[*ir.Method]*ir.Method),
		classes:  make(map[*ir.Class]*ir.Class),
	}
	p.out = p.copyProgram(prog)

	res := &Result{Program: p.out}
	for _, c := range prog.Classes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("instrument: %w", err)
		}
		if c.Builtin || !table.Participates(c) {
			continue
		}
		p.instrumentClass(ctx, c, res)
	}
	res.Table = closure.Build(p.out)
	span.WithExtra("methods", fmt.Sprint(res.Count(Instrumented)+res.Count(PartiallyInstrumented)))
	if n := dedup.Suppressed(); n > 0 {
		span.WithExtra("repeated", fmt.Sprint(n))
	}
	return res, nil
}

// copyProgram makes shallow copies of every class, field and method so
// bodies can be replaced without touching prog.
func (p *pass) copyProgram(prog *ir.Program) *ir.Program {
	out := ir.NewProgram()
	for _, c := range prog.Classes {
		cp := *c
		cp.Fields = nil
		cp.Methods = nil
		for _, f := range c.Fields {
			fc := *f
			cp.AddField(&fc)
		}
		for _, m := range c.Methods {
			mc := *m
			cp.AddMethod(&mc)
			p.methods[m] = &mc
		}
		p.classes[c] = &cp
		out.Add(&cp)
	}
	return out
}

func (p *pass) remap(m *ir.Method) *ir.Method {
	if n, ok := p.methods[m]; ok {
		return n
	}
	return m
}

func (p *pass) instrumentClass(ctx context.Context, c *ir.Class, res *Result) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeClass, "class:"+c.Name, trace.ParentID(ctx))
	cc := &classContext{
		pass:       p,
		src:        c,
		dst:        p.classes[c],
		invariants: p.rs.Invariants(c),
	}

	done := 0
	for _, m := range c.Methods {
		rec := Record{Class: c.Name, Method: p.remap(m), State: Discovered}
		if reason := cc.eligible(m); reason != NotSkipped {
			rec.State = Skipped
			rec.Reason = reason
			res.Records = append(res.Records, rec)
			continue
		}
		mc := &methodContext{cc: cc, src: m, dst: p.remap(m)}
		mc.instrument(&rec)
		res.Records = append(res.Records, rec)
		done++
		trace.Point(tr, trace.ScopeMethod, "method:"+m.QualifiedName(), rec.State.String(), span.ID())
		if p.opts.Notes {
			p.noteMethod(mc, rec)
		}
	}
	if done > 0 {
		res.Classes++
	}
	if p.opts.Notes {
		p.noteClass(cc, done)
	}
	span.End(fmt.Sprintf("%d instrumented", done))
}

// instrument replaces the body of mc.dst.
func (mc *methodContext) instrument(rec *Record) {
	m := mc.src
	sp := m.Body.Span
	scope := ir.OldScope{Static: m.Static, Class: mc.cc.src.Name}

	pre := mc.guard(ir.Precondition, mc.gather(ir.Precondition))
	post := mc.guard(ir.Postcondition, mc.gather(ir.Postcondition))
	var inv *ir.Check
	if mc.cc.checksInvariants(m) {
		inv = mc.guard(ir.Invariant, mc.cc.invariants)
	}

	deleg, rest := splitDelegation(m)
	rc := &returnCatcher{enabled: hasReturns(m)}
	body := rc.block(&ir.Block{Stmts: rest, Span: sp})

	var stmts []ir.Stmt
	if deleg != nil {
		stmts = append(stmts, deleg)
	}
	if pre != nil {
		stmts = append(stmts, pre)
	}
	if hasReturns(m) {
		stmts = append(stmts, &ir.VarDecl{Name: returnsLocal, Type: m.Result, Synthetic: true, Span: sp})
	}
	stmts = append(stmts,
		&ir.VarDecl{Name: raisesLocal, Type: ir.ExceptionType(), Init: &ir.NullLit{Span: sp}, Synthetic: true, Span: sp},
		&ir.OldEnter{Scope: scope, Span: sp},
	)
	if !m.Ctor && !mc.cc.pure(m) {
		stmts = append(stmts, &ir.OldCapture{Scope: scope, Span: sp})
	}

	var checks []ir.Stmt
	if post != nil {
		checks = append(checks, post)
	}
	if inv != nil {
		checks = append(checks, inv)
	}
	stmts = append(stmts, &ir.Try{
		Span: sp,
		Body: &ir.Block{Span: sp, Stmts: []ir.Stmt{raisesCatch(body)}},
		Finally: &ir.Block{Span: sp, Stmts: []ir.Stmt{&ir.Try{
			Span:    sp,
			Body:    &ir.Block{Span: sp, Stmts: checks},
			Finally: &ir.Block{Span: sp, Stmts: []ir.Stmt{&ir.OldLeave{Scope: scope, Span: sp}}},
		}}},
	})

	mc.dst.Body = &ir.Block{Stmts: stmts, Span: sp}

	rec.Pre = clauseCount(pre)
	rec.Post = clauseCount(post)
	rec.Inv = clauseCount(inv)
	rec.Returns = rc.count
	rec.State = Instrumented
	if mc.erroneous > 0 {
		rec.State = PartiallyInstrumented
	}
}

func clauseCount(c *ir.Check) int {
	if c == nil {
		return 0
	}
	return len(c.Clauses)
}
