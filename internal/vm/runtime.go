package vm

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"dbc/internal/closure"
	"dbc/internal/contract"
	"dbc/internal/ir"
	"dbc/internal/trace"
)

// Options configure a Runtime.
type Options struct {
	Out      io.Writer // println target; nil discards
	MaxDepth int       // call depth limit, default 1024
	Tracer   trace.Tracer
}

// Runtime is the state shared by every VM running one program: static
// fields, their old-values tables and the thread id counter.
type Runtime struct {
	prog    *ir.Program
	table   *closure.Table
	opts    Options
	statics map[string]*classState
	layouts sync.Map // class name -> []*ir.Field, base class first
	nextTID atomic.Uint64
}

type classState struct {
	class  *ir.Class
	mu     sync.Mutex
	fields map[string]Value
	order  []string
	old    *contract.OldTable
}

func (cs *classState) get(name string) Value {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.fields[name]
}

func (cs *classState) set(name string, v Value) {
	cs.mu.Lock()
	cs.fields[name] = v
	cs.mu.Unlock()
}

// snapshot copies the static fields into a detached object so old() can
// be read with ordinary field access.
func (cs *classState) snapshot() *Object {
	obj := newObject(cs.class, cs.order)
	cs.mu.Lock()
	for k, v := range cs.fields {
		obj.fields[k] = v
	}
	cs.mu.Unlock()
	return contract.Snapshot(obj).(*Object)
}

// NewRuntime prepares prog for execution and runs every static field
// initializer in program order. table may be nil.
func NewRuntime(ctx context.Context, prog *ir.Program, table *closure.Table, opts Options) (*Runtime, error) {
	if table == nil {
		table = closure.Build(prog)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 1024
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	rt := &Runtime{
		prog:    prog,
		table:   table,
		opts:    opts,
		statics: make(map[string]*classState, len(prog.Classes)),
	}
	for _, c := range prog.Classes {
		cs := &classState{class: c, fields: make(map[string]Value), old: contract.NewOldTable()}
		for _, f := range c.Fields {
			if f.Static {
				cs.fields[f.Name] = zeroValue(f.Type)
				cs.order = append(cs.order, f.Name)
			}
		}
		rt.statics[c.Name] = cs
	}

	vm := rt.NewVM()
	for _, c := range prog.Classes {
		for _, f := range c.Fields {
			if !f.Static || f.Init == nil {
				continue
			}
			v, err := vm.evalIn(ctx, c, f.Init)
			if err != nil {
				return nil, err
			}
			rt.statics[c.Name].set(f.Name, v)
		}
	}
	return rt, nil
}

// Program returns the program the runtime executes.
func (rt *Runtime) Program() *ir.Program { return rt.prog }

// NewVM returns a machine with a fresh thread id. A VM must be used by one
// goroutine at a time; run one VM per goroutine to execute concurrently.
func (rt *Runtime) NewVM() *VM {
	return &VM{rt: rt, tid: contract.ThreadID(rt.nextTID.Add(1))}
}

// layout returns the instance fields of c along its superclass chain,
// base class first.
func (rt *Runtime) layout(c *ir.Class) []*ir.Field {
	if v, ok := rt.layouts.Load(c.Name); ok {
		return v.([]*ir.Field)
	}
	var chain []*ir.Class
	seen := make(map[string]bool)
	for cur := c; cur != nil && !seen[cur.Name]; cur = rt.prog.Class(cur.Superclass()) {
		seen[cur.Name] = true
		chain = append(chain, cur)
	}
	var fields []*ir.Field
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			if !f.Static {
				fields = append(fields, f)
			}
		}
	}
	rt.layouts.Store(c.Name, fields)
	return fields
}

// staticOwner finds the class in the closure of c that declares static
// field name.
func (rt *Runtime) staticOwner(c *ir.Class, name string) *classState {
	for _, k := range rt.table.Closure(c) {
		if f := k.Field(name); f != nil && f.Static {
			return rt.statics[k.Name]
		}
	}
	return nil
}

// Static reads a static field, for tests and the CLI.
func (rt *Runtime) Static(class, field string) (Value, bool) {
	c := rt.prog.Class(class)
	if c == nil {
		return Value{}, false
	}
	cs := rt.staticOwner(c, field)
	if cs == nil {
		return Value{}, false
	}
	return cs.get(field), true
}

func zeroValue(t ir.TypeRef) Value {
	switch t.Kind {
	case ir.TInt:
		return IntValue(0)
	case ir.TBool:
		return BoolValue(false)
	}
	return NullValue()
}
