package vm

import (
	"dbc/internal/ir"
	"dbc/internal/prelude"
	"dbc/internal/source"
)

// findMethod returns the first concrete method called name in the closure
// of c.
func (vm *VM) findMethod(c *ir.Class, name string) *ir.Method {
	for _, m := range vm.rt.table.Declarations(c, name) {
		if m.IsConcrete() {
			return m
		}
	}
	return nil
}

// invoke runs m with receiver this (null for static methods).
func (vm *VM) invoke(m *ir.Method, this Value, args []Value, span source.Span) (Value, error) {
	if len(args) != len(m.Params) {
		return Value{}, vm.fail(PanicArity, span, "%s takes %d arguments, got %d", m.QualifiedName(), len(m.Params), len(args))
	}
	if err := vm.cancelled(); err != nil {
		return Value{}, err
	}
	if m.Static {
		this = NullValue()
	}
	f := &frame{method: m, class: m.Owner, this: this, env: newEnv(nil), span: m.NameSpan}
	for i, p := range m.Params {
		f.env.declare(p.Name, args[i])
	}
	if err := vm.push(f); err != nil {
		return Value{}, err
	}
	defer vm.pop()
	c, err := vm.execBlock(f, m.Body)
	if err != nil {
		return Value{}, err
	}
	if c.returned {
		return c.value, nil
	}
	return VoidValue(), nil
}

// callOn dispatches name on the runtime type of recv.
func (vm *VM) callOn(recv Value, name string, args []Value, span source.Span) (Value, error) {
	switch recv.Kind {
	case VKNull:
		return Value{}, vm.throwNew(prelude.NullPointerException, "cannot invoke "+name+"() on null", span)
	case VKString:
		return vm.stringMethod(recv.Str, name, args, span)
	case VKFunc:
		if name == "call" {
			return vm.callClosure(recv.Fn, args, span)
		}
	case VKObject:
		if m := vm.findMethod(recv.Obj.Class, name); m != nil {
			return vm.invoke(m, recv, args, span)
		}
		return vm.objectMethod(recv, name, args, span)
	}
	return Value{}, vm.fail(PanicUnknownMethod, span, "%s has no method %s", recv.className(), name)
}

func (vm *VM) evalCall(f *frame, e *ir.Call) (Value, error) {
	// Class.staticMethod(...)
	if id, ok := e.Recv.(*ir.Ident); ok {
		if c := vm.classRef(f, id.Name); c != nil {
			m := vm.findMethod(c, e.Name)
			if m == nil || !m.Static {
				return Value{}, vm.fail(PanicUnknownMethod, e.Span, "%s has no static method %s", c.Name, e.Name)
			}
			args, err := vm.evalArgs(f, e.Args)
			if err != nil {
				return Value{}, err
			}
			return vm.invoke(m, NullValue(), args, e.Span)
		}
	}

	var recv Value
	if e.Recv != nil {
		v, err := vm.eval(f, e.Recv)
		if err != nil {
			return Value{}, err
		}
		recv = v
	}
	args, err := vm.evalArgs(f, e.Args)
	if err != nil {
		return Value{}, err
	}
	if e.Recv != nil {
		return vm.callOn(recv, e.Name, args, e.Span)
	}

	// implicit receiver: virtual on this, then the static context
	if !f.static() {
		if m := vm.findMethod(f.this.Obj.Class, e.Name); m != nil {
			return vm.invoke(m, f.this, args, e.Span)
		}
	}
	if f.class != nil {
		if m := vm.findMethod(f.class, e.Name); m != nil {
			if !m.Static {
				return Value{}, vm.fail(PanicUnknownMethod, e.Span, "cannot call instance method %s from a static context", m.QualifiedName())
			}
			return vm.invoke(m, NullValue(), args, e.Span)
		}
	}
	if v, ok, err := vm.globalIntrinsic(e.Name, args, e.Span); ok {
		return v, err
	}
	if !f.static() {
		return vm.objectMethod(f.this, e.Name, args, e.Span)
	}
	return Value{}, vm.fail(PanicUnknownMethod, e.Span, "unknown method %s", e.Name)
}

func (vm *VM) evalArgs(f *frame, exprs []ir.Expr) ([]Value, error) {
	out := make([]Value, len(exprs))
	for i, a := range exprs {
		v, err := vm.eval(f, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (vm *VM) callClosure(c *Closure, args []Value, span source.Span) (Value, error) {
	l := c.Lambda
	if len(args) != len(l.Params) {
		return Value{}, vm.fail(PanicArity, span, "lambda takes %d arguments, got %d", len(l.Params), len(args))
	}
	f := &frame{method: c.method, lambda: true, class: c.class, this: c.this, env: newEnv(c.env), span: l.Span}
	for i, p := range l.Params {
		f.env.declare(p.Name, args[i])
	}
	if err := vm.push(f); err != nil {
		return Value{}, err
	}
	defer vm.pop()
	res, err := vm.execBlock(f, l.Body)
	if err != nil {
		return Value{}, err
	}
	if res.returned {
		return res.value, nil
	}
	return VoidValue(), nil
}

// instantiate allocates an object of c and runs its constructor chain.
func (vm *VM) instantiate(c *ir.Class, args []Value, span source.Span) (Value, error) {
	if c.Kind == ir.KindInterface {
		return Value{}, vm.fail(PanicNotInstantiable, span, "cannot instantiate interface %s", c.Name)
	}
	fields := vm.rt.layout(c)
	names := make([]string, len(fields))
	for i, fl := range fields {
		names[i] = fl.Name
	}
	obj := newObject(c, names)
	for _, fl := range fields {
		obj.fields[fl.Name] = zeroValue(fl.Type)
	}
	if err := vm.construct(obj, c, args, span); err != nil {
		return Value{}, err
	}
	return ObjectValue(obj), nil
}

// construct runs the constructor of c selected by arity. Without an
// explicit delegation the superclass's no-argument constructor runs first,
// then the field initializers of c.
func (vm *VM) construct(obj *Object, c *ir.Class, args []Value, span source.Span) error {
	var ctor *ir.Method
	ctors := c.Constructors()
	for _, m := range ctors {
		if len(m.Params) == len(args) {
			ctor = m
			break
		}
	}
	if ctor == nil {
		if len(args) != 0 || len(ctors) > 0 {
			return vm.fail(PanicArity, span, "no constructor of %s takes %d arguments", c.Name, len(args))
		}
		if err := vm.superInit(obj, c, nil, span); err != nil {
			return err
		}
		return vm.initFields(obj, c)
	}

	f := &frame{method: ctor, class: c, this: ObjectValue(obj), env: newEnv(nil), span: ctor.NameSpan}
	for i, p := range ctor.Params {
		f.env.declare(p.Name, args[i])
	}
	if err := vm.push(f); err != nil {
		return err
	}
	defer vm.pop()
	if !delegates(ctor) {
		if err := vm.superInit(obj, c, nil, span); err != nil {
			return err
		}
		if err := vm.initFields(obj, c); err != nil {
			return err
		}
	}
	_, err := vm.execBlock(f, ctor.Body)
	return err
}

func delegates(ctor *ir.Method) bool {
	if ctor.Body == nil || len(ctor.Body.Stmts) == 0 {
		return false
	}
	_, ok := ctor.Body.Stmts[0].(*ir.Delegate)
	return ok
}

func (vm *VM) superInit(obj *Object, c *ir.Class, args []Value, span source.Span) error {
	sup := vm.rt.prog.Class(c.Superclass())
	if sup == nil {
		if len(args) > 0 {
			return vm.fail(PanicArity, span, "%s has no superclass to pass arguments to", c.Name)
		}
		return nil
	}
	return vm.construct(obj, sup, args, span)
}

func (vm *VM) initFields(obj *Object, c *ir.Class) error {
	var f *frame
	for _, fl := range c.Fields {
		if fl.Static || fl.Init == nil {
			continue
		}
		if f == nil {
			f = &frame{class: c, this: ObjectValue(obj), env: newEnv(nil), span: fl.Span}
			if err := vm.push(f); err != nil {
				return err
			}
			defer vm.pop()
		}
		v, err := vm.eval(f, fl.Init)
		if err != nil {
			return err
		}
		obj.setField(fl.Name, v)
	}
	return nil
}

func (vm *VM) execDelegate(f *frame, s *ir.Delegate) error {
	if f.method == nil || !f.method.Ctor || f.static() {
		return vm.fail(PanicUnimplemented, s.Span, "delegation outside a constructor")
	}
	args, err := vm.evalArgs(f, s.Args)
	if err != nil {
		return err
	}
	obj := f.this.Obj
	if s.Super {
		if err := vm.superInit(obj, f.class, args, s.Span); err != nil {
			return err
		}
		return vm.initFields(obj, f.class)
	}
	return vm.construct(obj, f.class, args, s.Span)
}
