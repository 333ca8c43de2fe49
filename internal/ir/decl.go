package ir

import (
	"dbc/internal/source"
)

// ClassKind distinguishes classes from interfaces.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindInterface
)

func (k ClassKind) String() string {
	if k == KindInterface {
		return "interface"
	}
	return "class"
}

// ContractMarker is the name of the capability interface a type opts into.
const ContractMarker = "Contract"

// OldAccessor is the name of the snapshot accessor provided by ContractMarker.
const OldAccessor = "old"

// Class is a class or interface declaration.
type Class struct {
	Name       string
	Kind       ClassKind
	Extends    []string // superclass (at most one) or super-interfaces
	Implements []string
	Fields     []*Field
	Methods    []*Method
	Builtin    bool // declared by the prelude
	Span       source.Span
	NameSpan   source.Span
}

// Supertypes lists direct supertypes in declaration order: extends first.
func (c *Class) Supertypes() []string {
	out := make([]string, 0, len(c.Extends)+len(c.Implements))
	out = append(out, c.Extends...)
	return append(out, c.Implements...)
}

// Superclass returns the extended class name of a class, or "".
func (c *Class) Superclass() string {
	if c.Kind != KindClass || len(c.Extends) == 0 {
		return ""
	}
	return c.Extends[0]
}

// AddMethod appends m and sets its owner.
func (c *Class) AddMethod(m *Method) {
	m.Owner = c
	c.Methods = append(c.Methods, m)
}

// AddField appends f and sets its owner.
func (c *Class) AddField(f *Field) {
	f.Owner = c
	c.Fields = append(c.Fields, f)
}

// Method returns the first method declared directly on c with the given name.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name && !m.Ctor {
			return m
		}
	}
	return nil
}

// Field returns the field declared directly on c with the given name.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Constructors returns the constructors declared on c.
func (c *Class) Constructors() []*Method {
	var out []*Method
	for _, m := range c.Methods {
		if m.Ctor {
			out = append(out, m)
		}
	}
	return out
}

// Invariants returns the methods of c marked as invariants.
func (c *Class) Invariants() []*Method {
	var out []*Method
	for _, m := range c.Methods {
		if m.Contract.Invariant {
			out = append(out, m)
		}
	}
	return out
}

type Field struct {
	Name    string
	Type    TypeRef
	Static  bool
	Private bool
	Init    Expr
	Owner   *Class
	Span    source.Span
}

type Param struct {
	Name string
	Type TypeRef
	Span source.Span
}

// ClauseRef is one clause string as written in an annotation, unvalidated.
type ClauseRef struct {
	Text string
	Span source.Span
}

// Contract is the declarative descriptor attached to a method.
type Contract struct {
	Requires  []ClauseRef
	Ensures   []ClauseRef
	Invariant bool
	Pure      bool
	Span      source.Span // covers the annotations
}

// Empty reports whether no contract annotation is present.
func (c Contract) Empty() bool {
	return len(c.Requires) == 0 && len(c.Ensures) == 0 && !c.Invariant && !c.Pure
}

// Method is a method or constructor declaration.
type Method struct {
	Name     string
	Owner    *Class
	Params   []*Param
	Result   TypeRef
	Static   bool
	Private  bool
	Abstract bool
	Ctor     bool
	Contract Contract
	Body     *Block // nil for abstract methods
	Span     source.Span
	NameSpan source.Span
}

// QualifiedName is Owner.Name for diagnostics and violation messages.
func (m *Method) QualifiedName() string {
	if m.Owner == nil {
		return m.Name
	}
	return m.Owner.Name + "." + m.Name
}

func (m *Method) IsPublic() bool { return !m.Private }

// IsConcrete reports whether the method has a body to instrument.
func (m *Method) IsConcrete() bool { return m.Body != nil && !m.Abstract }

// IsOldAccessor reports whether m is the synthetic old() accessor itself.
func (m *Method) IsOldAccessor() bool {
	return m.Name == OldAccessor && len(m.Params) == 0 && !m.Ctor
}

// Param returns the parameter called name.
func (m *Method) Param(name string) *Param {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Program is the whole typed program the pass rewrites.
type Program struct {
	Classes []*Class
	byName  map[string]*Class
}

func NewProgram() *Program {
	return &Program{byName: make(map[string]*Class)}
}

// Add registers c. It returns false when the name is already taken.
func (p *Program) Add(c *Class) bool {
	if p.byName == nil {
		p.byName = make(map[string]*Class)
	}
	if _, dup := p.byName[c.Name]; dup {
		return false
	}
	p.byName[c.Name] = c
	p.Classes = append(p.Classes, c)
	return true
}

// Class returns the declaration called name, or nil.
func (p *Program) Class(name string) *Class {
	if p == nil {
		return nil
	}
	return p.byName[name]
}

// Replace swaps a class declaration for its rewritten form.
func (p *Program) Replace(c *Class) {
	for i, old := range p.Classes {
		if old.Name == c.Name {
			p.Classes[i] = c
		}
	}
	p.byName[c.Name] = c
}
