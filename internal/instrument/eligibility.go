package instrument

import (
	"dbc/internal/ir"
)

// eligible decides whether m gets instrumented.
func (cc *classContext) eligible(m *ir.Method) SkipReason {
	switch {
	case !m.IsConcrete():
		return SkipAbstract
	case m.Private:
		return SkipPrivate
	case m.IsOldAccessor():
		return SkipOldAccessor
	case !cc.contracted(m):
		return SkipUncontracted
	}
	return NotSkipped
}

// contracted: own clauses, an overridden contracted declaration, or class
// invariants to maintain. Pure and static methods never check invariants,
// so invariants alone do not make them contracted.
func (cc *classContext) contracted(m *ir.Method) bool {
	if hasClauses(m) {
		return true
	}
	for _, o := range cc.pass.table.Overridden(m) {
		if hasClauses(o) {
			return true
		}
	}
	return len(cc.invariants) > 0 && cc.checksInvariants(m)
}

// pure: @Pure on m or on any declaration it overrides.
func (cc *classContext) pure(m *ir.Method) bool {
	if m.Contract.Pure {
		return true
	}
	for _, o := range cc.pass.table.Overridden(m) {
		if o.Contract.Pure {
			return true
		}
	}
	return false
}

func hasClauses(m *ir.Method) bool {
	return len(m.Contract.Requires) > 0 || len(m.Contract.Ensures) > 0
}

func (cc *classContext) checksInvariants(m *ir.Method) bool {
	return !m.Static && !cc.pure(m)
}
