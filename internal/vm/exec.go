package vm

import (
	"errors"

	"dbc/internal/ir"
	"dbc/internal/prelude"
)

// completion is how a statement finished when it did not raise.
type completion struct {
	returned bool
	value    Value
}

func (vm *VM) execBlock(f *frame, b *ir.Block) (completion, error) {
	if b == nil {
		return completion{}, nil
	}
	saved := f.env
	f.env = newEnv(saved)
	defer func() { f.env = saved }()
	for _, s := range b.Stmts {
		c, err := vm.exec(f, s)
		if err != nil || c.returned {
			return c, err
		}
	}
	return completion{}, nil
}

func (vm *VM) exec(f *frame, s ir.Stmt) (completion, error) {
	f.span = s.Pos()
	switch s := s.(type) {
	case *ir.Block:
		return vm.execBlock(f, s)
	case *ir.VarDecl:
		v := zeroValue(s.Type)
		if s.Init != nil {
			x, err := vm.eval(f, s.Init)
			if err != nil {
				return completion{}, err
			}
			v = x
		}
		f.env.declare(s.Name, v)
	case *ir.Assign:
		v, err := vm.eval(f, s.Value)
		if err != nil {
			return completion{}, err
		}
		return completion{}, vm.assign(f, s.Target, v)
	case *ir.ExprStmt:
		_, err := vm.eval(f, s.X)
		return completion{}, err
	case *ir.If:
		cond, err := vm.evalBool(f, s.Cond)
		if err != nil {
			return completion{}, err
		}
		if cond {
			return vm.execBlock(f, s.Then)
		}
		if s.Else != nil {
			return vm.exec(f, s.Else)
		}
	case *ir.While:
		for {
			if err := vm.cancelled(); err != nil {
				return completion{}, err
			}
			cond, err := vm.evalBool(f, s.Cond)
			if err != nil || !cond {
				return completion{}, err
			}
			c, err := vm.execBlock(f, s.Body)
			if err != nil || c.returned {
				return c, err
			}
		}
	case *ir.For:
		return vm.execFor(f, s)
	case *ir.Return:
		if s.Value == nil {
			return completion{returned: true, value: VoidValue()}, nil
		}
		v, err := vm.eval(f, s.Value)
		if err != nil {
			return completion{}, err
		}
		return completion{returned: true, value: v}, nil
	case *ir.Throw:
		v, err := vm.eval(f, s.Value)
		if err != nil {
			return completion{}, err
		}
		if v.IsNull() {
			return completion{}, vm.throwNew(prelude.NullPointerException, "throw null", s.Span)
		}
		if !vm.instanceOf(v, ir.ExceptionType()) {
			return completion{}, vm.typeMismatch(s.Span, "Exception", v)
		}
		return completion{}, &Thrown{Obj: v.Obj}
	case *ir.Try:
		return vm.execTry(f, s)
	case *ir.Delegate:
		return completion{}, vm.execDelegate(f, s)
	case *ir.Check:
		if vm.clauses > 0 {
			return completion{}, nil
		}
		return completion{}, vm.execCheck(f, s)
	case *ir.OldEnter:
		if vm.clauses > 0 {
			return completion{}, nil
		}
		return completion{}, vm.oldEnter(f, s.Scope)
	case *ir.OldCapture:
		if vm.clauses > 0 {
			return completion{}, nil
		}
		return completion{}, vm.oldCapture(f, s.Scope, s.Span)
	case *ir.OldLeave:
		if vm.clauses > 0 {
			return completion{}, nil
		}
		return completion{}, vm.oldLeave(f, s.Scope)
	default:
		return completion{}, vm.fail(PanicUnimplemented, s.Pos(), "statement %T", s)
	}
	return completion{}, nil
}

func (vm *VM) execFor(f *frame, s *ir.For) (completion, error) {
	saved := f.env
	f.env = newEnv(saved)
	defer func() { f.env = saved }()
	if s.Init != nil {
		if _, err := vm.exec(f, s.Init); err != nil {
			return completion{}, err
		}
	}
	for {
		if err := vm.cancelled(); err != nil {
			return completion{}, err
		}
		if s.Cond != nil {
			cond, err := vm.evalBool(f, s.Cond)
			if err != nil || !cond {
				return completion{}, err
			}
		}
		c, err := vm.execBlock(f, s.Body)
		if err != nil || c.returned {
			return c, err
		}
		if s.Post != nil {
			if _, err := vm.exec(f, s.Post); err != nil {
				return completion{}, err
			}
		}
	}
}

// execTry: catch clauses see only thrown exception objects; engine and
// contract-internal errors pass through them, but finally always runs. A
// finally that returns or raises replaces the outcome of the body.
func (vm *VM) execTry(f *frame, s *ir.Try) (completion, error) {
	c, err := vm.execBlock(f, s.Body)
	var th *Thrown
	if err != nil && errors.As(err, &th) {
		for _, cat := range s.Catches {
			if !vm.instanceOf(ObjectValue(th.Obj), cat.Type) {
				continue
			}
			saved := f.env
			f.env = newEnv(saved)
			f.env.declare(cat.Name, ObjectValue(th.Obj))
			c, err = vm.execBlock(f, cat.Body)
			f.env = saved
			break
		}
	}
	if s.Finally != nil {
		fc, ferr := vm.execBlock(f, s.Finally)
		if ferr != nil {
			return fc, ferr
		}
		if fc.returned {
			return fc, nil
		}
	}
	return c, err
}
