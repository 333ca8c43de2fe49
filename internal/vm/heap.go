package vm

import (
	"sync"
	"sync/atomic"

	"dbc/internal/contract"
	"dbc/internal/ir"
)

var nextObjectID atomic.Uint64

// Object is a class instance. Field order is the declaration order along
// the superclass chain, base class first.
type Object struct {
	Class *ir.Class
	id    uint64

	mu     sync.Mutex
	fields map[string]Value
	order  []string

	oldOnce sync.Once
	old     *contract.OldTable

	// cause links a violation exception back to the Go-side violation.
	cause error
}

func newObject(c *ir.Class, order []string) *Object {
	return &Object{
		Class:  c,
		id:     nextObjectID.Add(1),
		fields: make(map[string]Value, len(order)),
		order:  order,
	}
}

// Field reads a field; ok is false when the object has no such field.
func (o *Object) Field(name string) (Value, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.fields[name]
	return v, ok
}

func (o *Object) has(name string) bool {
	_, ok := o.Field(name)
	return ok
}

func (o *Object) setField(name string, v Value) {
	o.mu.Lock()
	o.fields[name] = v
	o.mu.Unlock()
}

// Fields returns the field names in declaration order.
func (o *Object) Fields() []string { return o.order }

// OldTable returns the entry-state table of o, creating it on first use.
func (o *Object) OldTable() *contract.OldTable {
	o.oldOnce.Do(func() { o.old = contract.NewOldTable() })
	return o.old
}

// Snapshot implements contract.Snapshotter. The copy shares the class and
// field order but owns its field values; it has no old-values table.
func (o *Object) Snapshot(m *contract.Memo) any {
	cp := newObject(o.Class, o.order)
	cp.cause = o.cause
	m.Remember(o, cp)
	o.mu.Lock()
	vals := make(map[string]Value, len(o.fields))
	for k, v := range o.fields {
		vals[k] = v
	}
	o.mu.Unlock()
	for k, v := range vals {
		cp.fields[k] = snapshotValue(v, m)
	}
	return cp
}

// Array is a fixed-length array.
type Array struct {
	Elem ir.TypeRef

	mu     sync.Mutex
	Values []Value
}

func (a *Array) get(i int) Value {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Values[i]
}

func (a *Array) set(i int, v Value) {
	a.mu.Lock()
	a.Values[i] = v
	a.mu.Unlock()
}

func (a *Array) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Values)
}

func (a *Array) Snapshot(m *contract.Memo) any {
	cp := &Array{Elem: a.Elem}
	m.Remember(a, cp)
	a.mu.Lock()
	vals := append([]Value(nil), a.Values...)
	a.mu.Unlock()
	for i := range vals {
		vals[i] = snapshotValue(vals[i], m)
	}
	cp.Values = vals
	return cp
}

// Closure is a lambda value together with the scope it was created in.
type Closure struct {
	Lambda *ir.Lambda
	env    *env
	this   Value
	class  *ir.Class
	method *ir.Method
}

// Snapshot copies the captured variables; the lambda itself is immutable.
func (c *Closure) Snapshot(m *contract.Memo) any {
	cp := &Closure{Lambda: c.Lambda, class: c.class, method: c.method}
	m.Remember(c, cp)
	cp.env = c.env.snapshot(m)
	cp.this = snapshotValue(c.this, m)
	return cp
}

func snapshotValue(v Value, m *contract.Memo) Value {
	switch v.Kind {
	case VKObject:
		return ObjectValue(contract.Copy(v.Obj, m).(*Object))
	case VKArray:
		return ArrayValue(contract.Copy(v.Arr, m).(*Array))
	case VKFunc:
		return FuncValue(contract.Copy(v.Fn, m).(*Closure))
	}
	return v
}

// env is a chain of lexical scopes.
type env struct {
	vars   map[string]Value
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: make(map[string]Value), parent: parent}
}

func (e *env) lookup(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

func (e *env) assign(name string, v Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}

func (e *env) declare(name string, v Value) {
	e.vars[name] = v
}

func (e *env) snapshot(m *contract.Memo) *env {
	if e == nil {
		return nil
	}
	cp := &env{vars: make(map[string]Value, len(e.vars)), parent: e.parent.snapshot(m)}
	for k, v := range e.vars {
		cp.vars[k] = snapshotValue(v, m)
	}
	return cp
}
