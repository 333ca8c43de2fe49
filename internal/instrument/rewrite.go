package instrument

import (
	"dbc/internal/ir"
)

const (
	returnsLocal = "$returns"
	raisesLocal  = "$raises"
	caughtLocal  = "$e"
)

// splitDelegation separates a constructor's leading super(...)/this(...)
// from the rest of its body.
func splitDelegation(m *ir.Method) (*ir.Delegate, []ir.Stmt) {
	stmts := m.Body.Stmts
	if m.Ctor && len(stmts) > 0 {
		if d, ok := stmts[0].(*ir.Delegate); ok {
			return d, stmts[1:]
		}
	}
	return nil, stmts
}

// returnCatcher rewrites the returns of one frame. Expressions are never
// entered, so returns inside lambdas stay with the lambda.
type returnCatcher struct {
	enabled bool
	count   int
}

func (rc *returnCatcher) block(b *ir.Block) *ir.Block {
	if b == nil {
		return nil
	}
	out := &ir.Block{Span: b.Span, Stmts: make([]ir.Stmt, len(b.Stmts))}
	for i, s := range b.Stmts {
		out.Stmts[i] = rc.stmt(s)
	}
	return out
}

func (rc *returnCatcher) stmt(s ir.Stmt) ir.Stmt {
	switch s := s.(type) {
	case *ir.Block:
		return rc.block(s)
	case *ir.Return:
		if !rc.enabled || s.Value == nil {
			return s
		}
		rc.count++
		ret := &ir.Ident{Name: returnsLocal, Span: s.Span}
		return &ir.Block{
			Span: s.Span,
			Stmts: []ir.Stmt{
				&ir.Assign{Target: ret, Value: s.Value, Span: s.Span},
				&ir.Return{Value: &ir.Ident{Name: returnsLocal, Span: s.Span}, Span: s.Span},
			},
		}
	case *ir.If:
		cp := *s
		cp.Then = rc.block(s.Then)
		cp.Else = rc.stmt(s.Else)
		return &cp
	case *ir.While:
		cp := *s
		cp.Body = rc.block(s.Body)
		return &cp
	case *ir.For:
		cp := *s
		cp.Body = rc.block(s.Body)
		return &cp
	case *ir.Try:
		cp := *s
		cp.Body = rc.block(s.Body)
		cp.Finally = rc.block(s.Finally)
		cp.Catches = make([]*ir.Catch, len(s.Catches))
		for i, c := range s.Catches {
			cc := *c
			cc.Body = rc.block(c.Body)
			cp.Catches[i] = &cc
		}
		return &cp
	case nil:
		return nil
	}
	return s
}

// raisesCatch wraps body so any exception is recorded in $raises and rethrown.
func raisesCatch(body *ir.Block) *ir.Try {
	sp := body.Span
	return &ir.Try{
		Span: sp,
		Body: body,
		Catches: []*ir.Catch{{
			Type: ir.ExceptionType(),
			Name: caughtLocal,
			Span: sp,
			Body: &ir.Block{Span: sp, Stmts: []ir.Stmt{
				&ir.Assign{Target: &ir.Ident{Name: raisesLocal, Span: sp}, Value: &ir.Ident{Name: caughtLocal, Span: sp}, Span: sp},
				&ir.Throw{Value: &ir.Ident{Name: caughtLocal, Span: sp}, Span: sp},
			}},
		}},
	}
}
