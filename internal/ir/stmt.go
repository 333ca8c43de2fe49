package ir

import (
	"dbc/internal/source"
)

// Stmt is any statement node.
type Stmt interface {
	Pos() source.Span
	stmtNode()
}

type Block struct {
	Stmts []Stmt
	Span  source.Span
}

// VarDecl declares a local. A nil Init means the zero value of Type.
type VarDecl struct {
	Name      string
	Type      TypeRef
	Init      Expr
	Synthetic bool
	Span      source.Span
}

// Assign stores Value into a local, field, static field or array element.
type Assign struct {
	Target Expr
	Value  Expr
	Span   source.Span
}

type ExprStmt struct {
	X    Expr
	Span source.Span
}

// If has an optional Else that is either a *Block or another *If.
type If struct {
	Cond Expr
	Then *Block
	Else Stmt
	Span source.Span
}

type While struct {
	Cond Expr
	Body *Block
	Span source.Span
}

// For is the three-clause loop; every clause is optional.
type For struct {
	Init Stmt
	Cond Expr
	Post Stmt
	Body *Block
	Span source.Span
}

type Return struct {
	Value Expr
	Span  source.Span
}

type Throw struct {
	Value Expr
	Span  source.Span
}

type Catch struct {
	Type TypeRef
	Name string
	Body *Block
	Span source.Span
}

type Try struct {
	Body    *Block
	Catches []*Catch
	Finally *Block
	Span    source.Span
}

// Delegate is a constructor's leading super(...) or this(...) call.
type Delegate struct {
	Super bool
	Args  []Expr
	Span  source.Span
}

// ConditionKind tags a synthetic Check with the clause kind it guards.
type ConditionKind uint8

const (
	Precondition ConditionKind = iota
	Postcondition
	Invariant
)

func (k ConditionKind) String() string {
	switch k {
	case Precondition:
		return "precondition"
	case Postcondition:
		return "postcondition"
	case Invariant:
		return "invariant"
	}
	return "unknown"
}

// CheckClause is one resolved clause call inside a Check.
type CheckClause struct {
	Description string
	Negated     bool
	Target      *Method // nil when Erroneous
	Args        []Expr  // one per Target parameter, in parameter order
	Erroneous   bool
	Span        source.Span
}

// CheckValue is a live value rendered into violation messages.
type CheckValue struct {
	Label string
	X     Expr
}

// Check evaluates a group of clauses of one kind and raises the matching
// violation when any of them fails.
type Check struct {
	Kind    ConditionKind
	Method  string
	Clauses []*CheckClause
	Values  []CheckValue
	Span    source.Span
}

// OldScope selects the values table an Old* statement works on.
type OldScope struct {
	Static bool
	Class  string // owning class for static tables
}

// OldEnter pushes a fresh values scope for the current frame.
type OldEnter struct {
	Scope OldScope
	Span  source.Span
}

// OldCapture deep-copies the receiver (or the class statics) into the current scope.
type OldCapture struct {
	Scope OldScope
	Span  source.Span
}

// OldLeave pops the frame's values scope.
type OldLeave struct {
	Scope OldScope
	Span  source.Span
}

func (s *Block) Pos() source.Span      { return s.Span }
func (s *VarDecl) Pos() source.Span    { return s.Span }
func (s *Assign) Pos() source.Span     { return s.Span }
func (s *ExprStmt) Pos() source.Span   { return s.Span }
func (s *If) Pos() source.Span         { return s.Span }
func (s *While) Pos() source.Span      { return s.Span }
func (s *For) Pos() source.Span        { return s.Span }
func (s *Return) Pos() source.Span     { return s.Span }
func (s *Throw) Pos() source.Span      { return s.Span }
func (s *Try) Pos() source.Span        { return s.Span }
func (s *Delegate) Pos() source.Span   { return s.Span }
func (s *Check) Pos() source.Span      { return s.Span }
func (s *OldEnter) Pos() source.Span   { return s.Span }
func (s *OldCapture) Pos() source.Span { return s.Span }
func (s *OldLeave) Pos() source.Span   { return s.Span }

func (*Block) stmtNode()      {}
func (*VarDecl) stmtNode()    {}
func (*Assign) stmtNode()     {}
func (*ExprStmt) stmtNode()   {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*Return) stmtNode()     {}
func (*Throw) stmtNode()      {}
func (*Try) stmtNode()        {}
func (*Delegate) stmtNode()   {}
func (*Check) stmtNode()      {}
func (*OldEnter) stmtNode()   {}
func (*OldCapture) stmtNode() {}
func (*OldLeave) stmtNode()   {}
