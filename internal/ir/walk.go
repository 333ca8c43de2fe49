package ir

// Inspect walks the statement tree rooted at s in depth-first order, calling
// fn for every statement and expression. Returning false from fn skips the
// children of that node. Lambda bodies are visited like any other block.
func Inspect(s Stmt, fn func(n any) bool) {
	if s == nil {
		return
	}
	walkStmt(s, fn)
}

// InspectExpr is Inspect for a single expression.
func InspectExpr(e Expr, fn func(n any) bool) {
	if e == nil {
		return
	}
	walkExpr(e, fn)
}

func walkStmt(s Stmt, fn func(n any) bool) {
	if s == nil || !fn(s) {
		return
	}
	switch s := s.(type) {
	case *Block:
		for _, x := range s.Stmts {
			walkStmt(x, fn)
		}
	case *VarDecl:
		walkExpr(s.Init, fn)
	case *Assign:
		walkExpr(s.Target, fn)
		walkExpr(s.Value, fn)
	case *ExprStmt:
		walkExpr(s.X, fn)
	case *If:
		walkExpr(s.Cond, fn)
		walkBlock(s.Then, fn)
		walkStmt(s.Else, fn)
	case *While:
		walkExpr(s.Cond, fn)
		walkBlock(s.Body, fn)
	case *For:
		walkStmt(s.Init, fn)
		walkExpr(s.Cond, fn)
		walkStmt(s.Post, fn)
		walkBlock(s.Body, fn)
	case *Return:
		walkExpr(s.Value, fn)
	case *Throw:
		walkExpr(s.Value, fn)
	case *Try:
		walkBlock(s.Body, fn)
		for _, c := range s.Catches {
			if fn(c) {
				walkBlock(c.Body, fn)
			}
		}
		walkBlock(s.Finally, fn)
	case *Delegate:
		for _, a := range s.Args {
			walkExpr(a, fn)
		}
	case *Check:
		for _, c := range s.Clauses {
			for _, a := range c.Args {
				walkExpr(a, fn)
			}
		}
		for _, v := range s.Values {
			walkExpr(v.X, fn)
		}
	}
}

func walkBlock(b *Block, fn func(n any) bool) {
	if b != nil {
		walkStmt(b, fn)
	}
}

func walkExpr(e Expr, fn func(n any) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case *FieldAccess:
		walkExpr(e.X, fn)
	case *Index:
		walkExpr(e.X, fn)
		walkExpr(e.Index, fn)
	case *Call:
		walkExpr(e.Recv, fn)
		for _, a := range e.Args {
			walkExpr(a, fn)
		}
	case *New:
		for _, a := range e.Args {
			walkExpr(a, fn)
		}
	case *NewArray:
		walkExpr(e.Len, fn)
	case *Unary:
		walkExpr(e.X, fn)
	case *Binary:
		walkExpr(e.L, fn)
		walkExpr(e.R, fn)
	case *InstanceOf:
		walkExpr(e.X, fn)
	case *Lambda:
		walkBlock(e.Body, fn)
	}
}
