package ir

import (
	"dbc/internal/source"
)

// Expr is any expression node.
type Expr interface {
	Pos() source.Span
	exprNode()
}

// Op is a unary or binary operator.
type Op uint8

const (
	OpInvalid Op = iota
	OpNot
	OpNeg
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var opText = [...]string{
	OpInvalid: "?",
	OpNot:     "!",
	OpNeg:     "-",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpRem:     "%",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpAnd:     "&&",
	OpOr:      "||",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return "?"
}

type IntLit struct {
	Value int64
	Span  source.Span
}

type StringLit struct {
	Value string
	Span  source.Span
}

type BoolLit struct {
	Value bool
	Span  source.Span
}

type NullLit struct {
	Span source.Span
}

// Ident names a local, a parameter, a field of this, a static field of the
// current class, or a class (as the receiver of a static access).
type Ident struct {
	Name string
	Span source.Span
}

type This struct {
	Span source.Span
}

// FieldAccess is X.Name. When X is an Ident naming a class it reads a static field;
// Name "length" on an array yields its length.
type FieldAccess struct {
	X    Expr
	Name string
	Span source.Span
}

type Index struct {
	X     Expr
	Index Expr
	Span  source.Span
}

// Call invokes Name on Recv; a nil Recv means the implicit receiver
// (this, or the current class for static methods).
type Call struct {
	Recv Expr
	Name string
	Args []Expr
	Span source.Span
}

type New struct {
	Class string
	Args  []Expr
	Span  source.Span
}

type NewArray struct {
	Elem TypeRef
	Len  Expr
	Span source.Span
}

type Unary struct {
	Op   Op
	X    Expr
	Span source.Span
}

type Binary struct {
	Op   Op
	L    Expr
	R    Expr
	Span source.Span
}

type InstanceOf struct {
	X    Expr
	Type TypeRef
	Span source.Span
}

// Old is the old() accessor: the receiver as it was at method entry, or the
// class statics when evaluated in a static context.
type Old struct {
	Span source.Span
}

// Lambda is an anonymous function value; it owns its own return scope.
type Lambda struct {
	Params []*Param
	Body   *Block
	Span   source.Span
}

func (e *IntLit) Pos() source.Span      { return e.Span }
func (e *StringLit) Pos() source.Span   { return e.Span }
func (e *BoolLit) Pos() source.Span     { return e.Span }
func (e *NullLit) Pos() source.Span     { return e.Span }
func (e *Ident) Pos() source.Span       { return e.Span }
func (e *This) Pos() source.Span        { return e.Span }
func (e *FieldAccess) Pos() source.Span { return e.Span }
func (e *Index) Pos() source.Span       { return e.Span }
func (e *Call) Pos() source.Span        { return e.Span }
func (e *New) Pos() source.Span         { return e.Span }
func (e *NewArray) Pos() source.Span    { return e.Span }
func (e *Unary) Pos() source.Span       { return e.Span }
func (e *Binary) Pos() source.Span      { return e.Span }
func (e *InstanceOf) Pos() source.Span  { return e.Span }
func (e *Old) Pos() source.Span         { return e.Span }
func (e *Lambda) Pos() source.Span      { return e.Span }

func (*IntLit) exprNode()      {}
func (*StringLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*NullLit) exprNode()     {}
func (*Ident) exprNode()       {}
func (*This) exprNode()        {}
func (*FieldAccess) exprNode() {}
func (*Index) exprNode()       {}
func (*Call) exprNode()        {}
func (*New) exprNode()         {}
func (*NewArray) exprNode()    {}
func (*Unary) exprNode()       {}
func (*Binary) exprNode()      {}
func (*InstanceOf) exprNode()  {}
func (*Old) exprNode()         {}
func (*Lambda) exprNode()      {}
