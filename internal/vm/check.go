package vm

import (
	"errors"

	"dbc/internal/contract"
	"dbc/internal/ir"
	"dbc/internal/prelude"
	"dbc/internal/source"
	"dbc/internal/trace"
)

func contractKind(k ir.ConditionKind) contract.Kind {
	switch k {
	case ir.Postcondition:
		return contract.Postcondition
	case ir.Invariant:
		return contract.Invariant
	}
	return contract.Precondition
}

func violationClass(k contract.Kind) string {
	switch k {
	case contract.Postcondition:
		return prelude.PostconditionViolation
	case contract.Invariant:
		return prelude.InvariantViolation
	}
	return prelude.PreconditionViolation
}

// execCheck evaluates one guard group. A violation becomes a prelude
// exception object so enclosing contracted methods see it as raises.
func (vm *VM) execCheck(f *frame, s *ir.Check) error {
	evals := make([]contract.Evaluation, len(s.Clauses))
	values := func() ([]contract.Binding, error) {
		out := make([]contract.Binding, 0, len(s.Values))
		for _, cv := range s.Values {
			v, err := vm.eval(f, cv.X)
			if err != nil {
				return nil, err
			}
			str, err := vm.display(v, s.Span)
			if err != nil {
				return nil, err
			}
			out = append(out, contract.Binding{Label: cv.Label, Value: str})
		}
		return out, nil
	}
	for i, cl := range s.Clauses {
		evals[i] = contract.Evaluation{
			Description: cl.Description,
			Negated:     cl.Negated,
			Holds:       func() (bool, error) { return vm.holds(f, cl) },
			Values:      values,
		}
	}
	err := contract.Check(contractKind(s.Kind), evals)
	var v *contract.ConditionViolation
	if err == nil || !errors.As(err, &v) {
		return err
	}
	trace.Point(vm.rt.opts.Tracer, trace.ScopeMethod, "violation", v.Error(), 0)
	obj, ierr := vm.instantiate(vm.rt.prog.Class(violationClass(v.Kind)), []Value{StringValue(v.Message)}, s.Span)
	if ierr != nil {
		return ierr
	}
	obj.Obj.cause = v
	return &Thrown{Obj: obj.Obj}
}

// holds calls the clause predicate. Instance clauses dispatch on the
// runtime class of the receiver. The predicate runs with contract
// intrinsics suspended; called directly it is checked like any method.
func (vm *VM) holds(f *frame, cl *ir.CheckClause) (bool, error) {
	if cl.Erroneous || cl.Target == nil {
		return false, contract.Internalf("unresolved clause %s reached run time", cl.Description)
	}
	args, err := vm.evalArgs(f, cl.Args)
	if err != nil {
		return false, err
	}
	m := cl.Target
	this := NullValue()
	if !m.Static {
		if f.static() {
			return false, contract.Internalf("instance clause %s checked without a receiver", cl.Description)
		}
		this = f.this
		if impl := vm.findMethod(f.this.Obj.Class, m.Name); impl != nil {
			m = impl
		}
	}
	if !m.IsConcrete() {
		return false, contract.Internalf("clause %s has no implementation in %s", cl.Description, this.className())
	}
	vm.clauses++
	v, err := vm.invoke(m, this, args, cl.Span)
	vm.clauses--
	if err != nil {
		return false, err
	}
	if v.Kind != VKBool {
		return false, vm.typeMismatch(cl.Span, "boolean", v)
	}
	return v.Bool, nil
}

func (vm *VM) oldTable(f *frame, scope ir.OldScope) (*contract.OldTable, error) {
	if scope.Static {
		cs := vm.rt.statics[scope.Class]
		if cs == nil {
			return nil, contract.Internalf("no static state for class %s", scope.Class)
		}
		return cs.old, nil
	}
	if f.static() {
		return nil, contract.Internalf("instance values table requested in a static context")
	}
	return f.this.Obj.OldTable(), nil
}

func (vm *VM) oldEnter(f *frame, scope ir.OldScope) error {
	t, err := vm.oldTable(f, scope)
	if err != nil {
		return err
	}
	t.Enter(vm.tid)
	return nil
}

func (vm *VM) oldLeave(f *frame, scope ir.OldScope) error {
	t, err := vm.oldTable(f, scope)
	if err != nil {
		return err
	}
	return t.Leave(vm.tid)
}

// oldCapture deep-copies the receiver, or the class statics, into the
// current scope.
func (vm *VM) oldCapture(f *frame, scope ir.OldScope, span source.Span) error {
	t, err := vm.oldTable(f, scope)
	if err != nil {
		return err
	}
	if scope.Static {
		snap := vm.rt.statics[scope.Class].snapshot()
		return t.Put(vm.tid, contract.FieldKey("static"), ObjectValue(snap))
	}
	snap, ok := contract.Snapshot(f.this.Obj).(*Object)
	if !ok {
		return vm.fail(PanicTypeMismatch, span, "snapshot of %s is not an object", f.this.className())
	}
	return t.Put(vm.tid, contract.InstanceKey(contract.ThisLabel), ObjectValue(snap))
}

// evalOld reads the entry state of the innermost contracted invocation on
// this receiver. A class that declares its own old() gets that instead.
func (vm *VM) evalOld(f *frame, span source.Span) (Value, error) {
	if !f.static() {
		if m := vm.findMethod(f.this.Obj.Class, ir.OldAccessor); m != nil && m.IsOldAccessor() && !m.Static {
			return vm.invoke(m, f.this, nil, span)
		}
		v, err := f.this.Obj.OldTable().Get(vm.tid, contract.InstanceKey(contract.ThisLabel))
		if err != nil {
			return Value{}, err
		}
		return v.(Value), nil
	}
	cs := vm.staticScopeOwner(f)
	if cs == nil {
		return Value{}, contract.Internalf("values table does not contain key %s", contract.FieldKey("static"))
	}
	v, err := cs.old.Get(vm.tid, contract.FieldKey("static"))
	if err != nil {
		return Value{}, err
	}
	return v.(Value), nil
}

// staticScopeOwner picks the class whose static table old() reads: the
// frame's own class when it has an open scope, else the nearest static
// caller with one.
func (vm *VM) staticScopeOwner(f *frame) *classState {
	if f.class != nil {
		if cs := vm.rt.statics[f.class.Name]; cs != nil && cs.old.Depth(vm.tid) > 0 {
			return cs
		}
	}
	for i := len(vm.stack) - 1; i >= 0; i-- {
		fr := vm.stack[i]
		if !fr.static() || fr.class == nil {
			continue
		}
		if cs := vm.rt.statics[fr.class.Name]; cs != nil && cs.old.Depth(vm.tid) > 0 {
			return cs
		}
	}
	if f.class != nil {
		return vm.rt.statics[f.class.Name]
	}
	return nil
}
