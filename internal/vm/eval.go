package vm

import (
	"fmt"

	"dbc/internal/ir"
	"dbc/internal/prelude"
	"dbc/internal/source"
)

func (vm *VM) eval(f *frame, e ir.Expr) (Value, error) {
	switch e := e.(type) {
	case *ir.IntLit:
		return IntValue(e.Value), nil
	case *ir.StringLit:
		return StringValue(e.Value), nil
	case *ir.BoolLit:
		return BoolValue(e.Value), nil
	case *ir.NullLit:
		return NullValue(), nil
	case *ir.Ident:
		return vm.readIdent(f, e.Name, e.Span)
	case *ir.This:
		if f.static() {
			return Value{}, vm.fail(PanicUnknownName, e.Span, "this in a static context")
		}
		return f.this, nil
	case *ir.FieldAccess:
		return vm.readField(f, e)
	case *ir.Index:
		arr, idx, err := vm.evalIndex(f, e)
		if err != nil {
			return Value{}, err
		}
		return arr.get(idx), nil
	case *ir.Call:
		return vm.evalCall(f, e)
	case *ir.New:
		c := vm.rt.prog.Class(e.Class)
		if c == nil {
			return Value{}, vm.fail(PanicUnknownClass, e.Span, "unknown class %s", e.Class)
		}
		args, err := vm.evalArgs(f, e.Args)
		if err != nil {
			return Value{}, err
		}
		return vm.instantiate(c, args, e.Span)
	case *ir.NewArray:
		n, err := vm.evalInt(f, e.Len)
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Value{}, vm.throwNew(prelude.IllegalArgumentException, fmt.Sprintf("negative array size %d", n), e.Span)
		}
		arr := &Array{Elem: e.Elem, Values: make([]Value, n)}
		for i := range arr.Values {
			arr.Values[i] = zeroValue(e.Elem)
		}
		return ArrayValue(arr), nil
	case *ir.Unary:
		return vm.evalUnary(f, e)
	case *ir.Binary:
		return vm.evalBinary(f, e)
	case *ir.InstanceOf:
		v, err := vm.eval(f, e.X)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(vm.instanceOf(v, e.Type)), nil
	case *ir.Old:
		return vm.evalOld(f, e.Span)
	case *ir.Lambda:
		return FuncValue(&Closure{Lambda: e, env: f.env, this: f.this, class: f.class, method: f.method}), nil
	}
	return Value{}, vm.fail(PanicUnimplemented, e.Pos(), "expression %T", e)
}

func (vm *VM) evalBool(f *frame, e ir.Expr) (bool, error) {
	v, err := vm.eval(f, e)
	if err != nil {
		return false, err
	}
	if v.Kind != VKBool {
		return false, vm.typeMismatch(e.Pos(), "boolean", v)
	}
	return v.Bool, nil
}

func (vm *VM) evalInt(f *frame, e ir.Expr) (int64, error) {
	v, err := vm.eval(f, e)
	if err != nil {
		return 0, err
	}
	if v.Kind != VKInt {
		return 0, vm.typeMismatch(e.Pos(), "int", v)
	}
	return v.Int, nil
}

// classRef reports the class named by an identifier that is not shadowed
// by a local, a field or a static field.
func (vm *VM) classRef(f *frame, name string) *ir.Class {
	if _, ok := f.env.lookup(name); ok {
		return nil
	}
	if !f.static() && f.this.Obj.has(name) {
		return nil
	}
	if f.class != nil && vm.rt.staticOwner(f.class, name) != nil {
		return nil
	}
	return vm.rt.prog.Class(name)
}

func (vm *VM) readIdent(f *frame, name string, span source.Span) (Value, error) {
	if v, ok := f.env.lookup(name); ok {
		return v, nil
	}
	if !f.static() {
		if v, ok := f.this.Obj.Field(name); ok {
			return v, nil
		}
		if cs := vm.rt.staticOwner(f.this.Obj.Class, name); cs != nil {
			return cs.get(name), nil
		}
	}
	if f.class != nil {
		if cs := vm.rt.staticOwner(f.class, name); cs != nil {
			return cs.get(name), nil
		}
	}
	return Value{}, vm.fail(PanicUnknownName, span, "unknown identifier %s", name)
}

func (vm *VM) readField(f *frame, e *ir.FieldAccess) (Value, error) {
	if id, ok := e.X.(*ir.Ident); ok {
		if c := vm.classRef(f, id.Name); c != nil {
			cs := vm.rt.staticOwner(c, e.Name)
			if cs == nil {
				return Value{}, vm.fail(PanicUnknownName, e.Span, "%s has no static field %s", c.Name, e.Name)
			}
			return cs.get(e.Name), nil
		}
	}
	x, err := vm.eval(f, e.X)
	if err != nil {
		return Value{}, err
	}
	switch x.Kind {
	case VKNull:
		return Value{}, vm.throwNew(prelude.NullPointerException, "cannot read field "+e.Name+" of null", e.Span)
	case VKArray:
		if e.Name == "length" {
			return IntValue(int64(x.Arr.Len())), nil
		}
	case VKObject:
		if v, ok := x.Obj.Field(e.Name); ok {
			return v, nil
		}
		if cs := vm.rt.staticOwner(x.Obj.Class, e.Name); cs != nil {
			return cs.get(e.Name), nil
		}
	}
	return Value{}, vm.fail(PanicUnknownName, e.Span, "%s has no field %s", x.className(), e.Name)
}

func (vm *VM) evalIndex(f *frame, e *ir.Index) (*Array, int, error) {
	x, err := vm.eval(f, e.X)
	if err != nil {
		return nil, 0, err
	}
	idx, err := vm.evalInt(f, e.Index)
	if err != nil {
		return nil, 0, err
	}
	switch x.Kind {
	case VKNull:
		return nil, 0, vm.throwNew(prelude.NullPointerException, "cannot index null", e.Span)
	case VKArray:
	default:
		return nil, 0, vm.typeMismatch(e.Span, "array", x)
	}
	if n := x.Arr.Len(); idx < 0 || idx >= int64(n) {
		return nil, 0, vm.throwNew(prelude.IndexOutOfBoundsException, fmt.Sprintf("index %d out of bounds for length %d", idx, n), e.Span)
	}
	return x.Arr, int(idx), nil
}

func (vm *VM) assign(f *frame, target ir.Expr, v Value) error {
	switch t := target.(type) {
	case *ir.Ident:
		if f.env.assign(t.Name, v) {
			return nil
		}
		if !f.static() && f.this.Obj.has(t.Name) {
			f.this.Obj.setField(t.Name, v)
			return nil
		}
		var cs *classState
		if !f.static() {
			cs = vm.rt.staticOwner(f.this.Obj.Class, t.Name)
		}
		if cs == nil && f.class != nil {
			cs = vm.rt.staticOwner(f.class, t.Name)
		}
		if cs == nil {
			return vm.fail(PanicUnknownName, t.Span, "unknown identifier %s", t.Name)
		}
		cs.set(t.Name, v)
		return nil
	case *ir.FieldAccess:
		if id, ok := t.X.(*ir.Ident); ok {
			if c := vm.classRef(f, id.Name); c != nil {
				cs := vm.rt.staticOwner(c, t.Name)
				if cs == nil {
					return vm.fail(PanicUnknownName, t.Span, "%s has no static field %s", c.Name, t.Name)
				}
				cs.set(t.Name, v)
				return nil
			}
		}
		x, err := vm.eval(f, t.X)
		if err != nil {
			return err
		}
		switch x.Kind {
		case VKNull:
			return vm.throwNew(prelude.NullPointerException, "cannot assign field "+t.Name+" of null", t.Span)
		case VKObject:
			if x.Obj.has(t.Name) {
				x.Obj.setField(t.Name, v)
				return nil
			}
			if cs := vm.rt.staticOwner(x.Obj.Class, t.Name); cs != nil {
				cs.set(t.Name, v)
				return nil
			}
		}
		return vm.fail(PanicUnknownName, t.Span, "%s has no field %s", x.className(), t.Name)
	case *ir.Index:
		arr, idx, err := vm.evalIndex(f, t)
		if err != nil {
			return err
		}
		arr.set(idx, v)
		return nil
	}
	return vm.fail(PanicInvalidTarget, target.Pos(), "cannot assign to %s", ir.PrintExpr(target))
}

func (vm *VM) evalUnary(f *frame, e *ir.Unary) (Value, error) {
	switch e.Op {
	case ir.OpNot:
		b, err := vm.evalBool(f, e.X)
		return BoolValue(!b), err
	case ir.OpNeg:
		n, err := vm.evalInt(f, e.X)
		return IntValue(-n), err
	}
	return Value{}, vm.fail(PanicUnimplemented, e.Span, "unary operator %s", e.Op)
}

func (vm *VM) evalBinary(f *frame, e *ir.Binary) (Value, error) {
	switch e.Op {
	case ir.OpAnd, ir.OpOr:
		l, err := vm.evalBool(f, e.L)
		if err != nil {
			return Value{}, err
		}
		if (e.Op == ir.OpAnd) != l {
			return BoolValue(l), nil
		}
		r, err := vm.evalBool(f, e.R)
		return BoolValue(r), err
	}

	l, err := vm.eval(f, e.L)
	if err != nil {
		return Value{}, err
	}
	r, err := vm.eval(f, e.R)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case ir.OpEq:
		return BoolValue(Equal(l, r)), nil
	case ir.OpNe:
		return BoolValue(!Equal(l, r)), nil
	case ir.OpAdd:
		if l.Kind == VKString || r.Kind == VKString {
			ls, err := vm.display(l, e.Span)
			if err != nil {
				return Value{}, err
			}
			rs, err := vm.display(r, e.Span)
			if err != nil {
				return Value{}, err
			}
			return StringValue(ls + rs), nil
		}
	}

	if l.Kind != VKInt {
		return Value{}, vm.typeMismatch(e.L.Pos(), "int", l)
	}
	if r.Kind != VKInt {
		return Value{}, vm.typeMismatch(e.R.Pos(), "int", r)
	}
	a, b := l.Int, r.Int
	switch e.Op {
	case ir.OpAdd:
		return IntValue(a + b), nil
	case ir.OpSub:
		return IntValue(a - b), nil
	case ir.OpMul:
		return IntValue(a * b), nil
	case ir.OpDiv, ir.OpRem:
		if b == 0 {
			return Value{}, vm.throwNew(prelude.ArithmeticException, "/ by zero", e.Span)
		}
		if e.Op == ir.OpDiv {
			return IntValue(a / b), nil
		}
		return IntValue(a % b), nil
	case ir.OpLt:
		return BoolValue(a < b), nil
	case ir.OpLe:
		return BoolValue(a <= b), nil
	case ir.OpGt:
		return BoolValue(a > b), nil
	case ir.OpGe:
		return BoolValue(a >= b), nil
	}
	return Value{}, vm.fail(PanicUnimplemented, e.Span, "binary operator %s", e.Op)
}

func (vm *VM) instanceOf(v Value, t ir.TypeRef) bool {
	switch t.Kind {
	case ir.TObject:
		return v.IsRef() || v.Kind == VKString
	case ir.TString:
		return v.Kind == VKString
	case ir.TInt:
		return v.Kind == VKInt
	case ir.TBool:
		return v.Kind == VKBool
	case ir.TFunction:
		return v.Kind == VKFunc
	case ir.TClass:
		return v.Kind == VKObject && vm.rt.table.IsSubtype(v.Obj.Class.Name, t.Name)
	case ir.TArray:
		return v.Kind == VKArray && t.Elem != nil && vm.rt.table.Assignable(ir.ArrayOf(v.Arr.Elem), t)
	}
	return false
}
