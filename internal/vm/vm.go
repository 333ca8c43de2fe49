package vm

import (
	"context"
	"fmt"

	"dbc/internal/contract"
	"dbc/internal/ir"
	"dbc/internal/source"
)

// VM executes methods of a Runtime's program on one thread.
type VM struct {
	rt    *Runtime
	tid   contract.ThreadID
	ctx   context.Context
	stack []*frame
	// clauses > 0 while a clause predicate runs; its own guards and
	// old scopes are suspended so clauses never check themselves.
	clauses int
}

type frame struct {
	method *ir.Method // nil for initializers
	lambda bool
	class  *ir.Class // declaring class: the static context
	this   Value     // null in static frames
	env    *env
	span   source.Span
}

func (f *frame) name() string {
	switch {
	case f.lambda && f.method != nil:
		return f.method.QualifiedName() + ".<lambda>"
	case f.lambda:
		return "<lambda>"
	case f.method != nil:
		return f.method.QualifiedName()
	case f.class != nil:
		return f.class.Name + ".<init>"
	}
	return "<unknown>"
}

func (f *frame) static() bool { return f.this.Kind != VKObject }

// Thrown is an exception object travelling up the Go call stack.
type Thrown struct {
	Obj *Object
}

func (t *Thrown) Error() string {
	name := t.Obj.Class.Name
	if msg, ok := t.Obj.Field("message"); ok && msg.Kind == VKString {
		return "uncaught " + name + ": " + msg.Str
	}
	return "uncaught " + name
}

// Unwrap exposes the contract violation behind a violation exception, so
// errors.As(err, **contract.ConditionViolation) works on uncaught ones.
func (t *Thrown) Unwrap() error { return t.Obj.cause }

// ThreadID identifies this machine in old-values tables.
func (vm *VM) ThreadID() contract.ThreadID { return vm.tid }

// Runtime returns the shared program state.
func (vm *VM) Runtime() *Runtime { return vm.rt }

func (vm *VM) with(ctx context.Context) func() {
	prev := vm.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	vm.ctx = ctx
	return func() { vm.ctx = prev }
}

// Call runs the static method class.method.
func (vm *VM) Call(ctx context.Context, class, method string, args ...Value) (Value, error) {
	defer vm.with(ctx)()
	c := vm.rt.prog.Class(class)
	if c == nil {
		return Value{}, vm.fail(PanicUnknownClass, source.Span{}, "unknown class %s", class)
	}
	m := vm.findMethod(c, method)
	if m == nil {
		return Value{}, vm.fail(PanicUnknownMethod, source.Span{}, "%s has no method %s", class, method)
	}
	if !m.Static {
		return Value{}, vm.fail(PanicUnknownMethod, m.NameSpan, "%s is not static", m.QualifiedName())
	}
	return vm.invoke(m, NullValue(), args, m.NameSpan)
}

// New instantiates class.
func (vm *VM) New(ctx context.Context, class string, args ...Value) (Value, error) {
	defer vm.with(ctx)()
	c := vm.rt.prog.Class(class)
	if c == nil {
		return Value{}, vm.fail(PanicUnknownClass, source.Span{}, "unknown class %s", class)
	}
	return vm.instantiate(c, args, c.NameSpan)
}

// Invoke calls method on recv with virtual dispatch.
func (vm *VM) Invoke(ctx context.Context, recv Value, method string, args ...Value) (Value, error) {
	defer vm.with(ctx)()
	return vm.callOn(recv, method, args, source.Span{})
}

// Display renders v the way violation messages do.
func (vm *VM) Display(ctx context.Context, v Value) (string, error) {
	defer vm.with(ctx)()
	return vm.display(v, source.Span{})
}

// evalIn evaluates e in a static frame of c.
func (vm *VM) evalIn(ctx context.Context, c *ir.Class, e ir.Expr) (Value, error) {
	defer vm.with(ctx)()
	f := &frame{class: c, this: NullValue(), env: newEnv(nil), span: e.Pos()}
	if err := vm.push(f); err != nil {
		return Value{}, err
	}
	defer vm.pop()
	return vm.eval(f, e)
}

func (vm *VM) push(f *frame) error {
	if len(vm.stack) >= vm.rt.opts.MaxDepth {
		return vm.fail(PanicStackOverflow, f.span, "call depth exceeds %d", vm.rt.opts.MaxDepth)
	}
	vm.stack = append(vm.stack, f)
	return nil
}

func (vm *VM) pop() {
	vm.stack[len(vm.stack)-1] = nil
	vm.stack = vm.stack[:len(vm.stack)-1]
}

// throwNew raises a fresh prelude exception of class name.
func (vm *VM) throwNew(name, msg string, span source.Span) error {
	c := vm.rt.prog.Class(name)
	if c == nil {
		return vm.fail(PanicUnknownClass, span, "unknown exception class %s", name)
	}
	v, err := vm.instantiate(c, []Value{StringValue(msg)}, span)
	if err != nil {
		return err
	}
	return &Thrown{Obj: v.Obj}
}

func (vm *VM) cancelled() error {
	if vm.ctx == nil {
		return nil
	}
	if err := vm.ctx.Err(); err != nil {
		return fmt.Errorf("execution stopped: %w", err)
	}
	return nil
}
