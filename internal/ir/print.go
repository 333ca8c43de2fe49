package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// PrintMethod renders m in surface syntax, synthetic statements included.
func PrintMethod(m *Method) string {
	p := &printer{}
	p.method(m)
	return strings.TrimRight(p.sb.String(), "\n")
}

// PrintClass renders every member of c.
func PrintClass(c *Class) string {
	p := &printer{}
	p.class(c)
	return strings.TrimRight(p.sb.String(), "\n")
}

// PrintExpr renders a single expression.
func PrintExpr(e Expr) string {
	p := &printer{}
	p.expr(e)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat("    ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) class(c *Class) {
	header := c.Kind.String() + " " + c.Name
	if len(c.Extends) > 0 {
		header += " extends " + strings.Join(c.Extends, ", ")
	}
	if len(c.Implements) > 0 {
		header += " implements " + strings.Join(c.Implements, ", ")
	}
	p.line("%s {", header)
	p.indent++
	for _, f := range c.Fields {
		mods := ""
		if f.Private {
			mods += "private "
		}
		if f.Static {
			mods += "static "
		}
		if f.Init != nil {
			p.line("%s%s %s = %s;", mods, f.Type, f.Name, PrintExpr(f.Init))
		} else {
			p.line("%s%s %s;", mods, f.Type, f.Name)
		}
	}
	for _, m := range c.Methods {
		p.method(m)
	}
	p.indent--
	p.line("}")
}

func (p *printer) method(m *Method) {
	for _, a := range annotations(m.Contract) {
		p.line("%s", a)
	}
	var head strings.Builder
	if m.Private {
		head.WriteString("private ")
	}
	if m.Static {
		head.WriteString("static ")
	}
	if m.Abstract {
		head.WriteString("abstract ")
	}
	if !m.Ctor {
		head.WriteString(m.Result.String())
		head.WriteByte(' ')
	}
	head.WriteString(m.Name)
	head.WriteByte('(')
	for i, prm := range m.Params {
		if i > 0 {
			head.WriteString(", ")
		}
		head.WriteString(prm.Type.String() + " " + prm.Name)
	}
	head.WriteByte(')')
	if m.Body == nil {
		p.line("%s;", head.String())
		return
	}
	p.line("%s {", head.String())
	p.indent++
	p.stmts(m.Body.Stmts)
	p.indent--
	p.line("}")
}

func annotations(c Contract) []string {
	var out []string
	quote := func(refs []ClauseRef) string {
		parts := make([]string, len(refs))
		for i, r := range refs {
			parts[i] = strconv.Quote(r.Text)
		}
		return strings.Join(parts, ", ")
	}
	if len(c.Requires) > 0 {
		out = append(out, "@Requires("+quote(c.Requires)+")")
	}
	if len(c.Ensures) > 0 {
		out = append(out, "@Ensures("+quote(c.Ensures)+")")
	}
	if c.Invariant {
		out = append(out, "@Invariant")
	}
	if c.Pure {
		out = append(out, "@Pure")
	}
	return out
}

func (p *printer) stmts(list []Stmt) {
	for _, s := range list {
		p.stmt(s)
	}
}

func (p *printer) block(b *Block) {
	if b == nil {
		return
	}
	p.indent++
	p.stmts(b.Stmts)
	p.indent--
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case *Block:
		p.line("{")
		p.block(s)
		p.line("}")
	case *VarDecl:
		if s.Init != nil {
			p.line("%s %s = %s;", s.Type, s.Name, PrintExpr(s.Init))
		} else {
			p.line("%s %s;", s.Type, s.Name)
		}
	case *Assign:
		p.line("%s = %s;", PrintExpr(s.Target), PrintExpr(s.Value))
	case *ExprStmt:
		p.line("%s;", PrintExpr(s.X))
	case *If:
		p.ifStmt(s, "")
	case *While:
		p.line("while (%s) {", PrintExpr(s.Cond))
		p.block(s.Body)
		p.line("}")
	case *For:
		p.line("for (%s; %s; %s) {", inlineStmt(s.Init), exprOrEmpty(s.Cond), inlineStmt(s.Post))
		p.block(s.Body)
		p.line("}")
	case *Return:
		if s.Value == nil {
			p.line("return;")
		} else {
			p.line("return %s;", PrintExpr(s.Value))
		}
	case *Throw:
		p.line("throw %s;", PrintExpr(s.Value))
	case *Try:
		p.line("try {")
		p.block(s.Body)
		for _, c := range s.Catches {
			p.line("} catch (%s %s) {", c.Type, c.Name)
			p.block(c.Body)
		}
		if s.Finally != nil {
			p.line("} finally {")
			p.block(s.Finally)
		}
		p.line("}")
	case *Delegate:
		kw := "this"
		if s.Super {
			kw = "super"
		}
		p.line("%s(%s);", kw, exprList(s.Args))
	case *Check:
		for _, c := range s.Clauses {
			if c.Erroneous {
				p.line("check %s <erroneous %s>;", s.Kind, c.Description)
				continue
			}
			p.line("check %s %s%s(%s);", s.Kind, negPrefix(c.Negated), c.Target.Name, exprList(c.Args))
		}
	case *OldEnter:
		p.line("old.enter(%s);", scopeLabel(s.Scope))
	case *OldCapture:
		p.line("old.capture(%s);", scopeLabel(s.Scope))
	case *OldLeave:
		p.line("old.leave(%s);", scopeLabel(s.Scope))
	default:
		p.line("<unknown statement %T>", s)
	}
}

func (p *printer) ifStmt(s *If, prefix string) {
	p.line("%sif (%s) {", prefix, PrintExpr(s.Cond))
	p.block(s.Then)
	switch e := s.Else.(type) {
	case nil:
		p.line("}")
	case *If:
		p.sb.WriteString(strings.Repeat("    ", p.indent))
		p.sb.WriteString("} else ")
		sub := &printer{indent: p.indent}
		sub.ifStmt(e, "")
		p.sb.WriteString(strings.TrimLeft(sub.sb.String(), " "))
	case *Block:
		p.line("} else {")
		p.block(e)
		p.line("}")
	default:
		p.line("} else {")
		p.indent++
		p.stmt(e)
		p.indent--
		p.line("}")
	}
}

func negPrefix(neg bool) string {
	if neg {
		return "!"
	}
	return ""
}

func scopeLabel(s OldScope) string {
	if s.Static {
		return "static " + s.Class
	}
	return "this"
}

func inlineStmt(s Stmt) string {
	if s == nil {
		return ""
	}
	p := &printer{}
	p.stmt(s)
	return strings.TrimSuffix(strings.TrimSpace(p.sb.String()), ";")
}

func exprOrEmpty(e Expr) string {
	if e == nil {
		return ""
	}
	return PrintExpr(e)
}

func exprList(list []Expr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = PrintExpr(e)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case nil:
		p.sb.WriteString("<nil>")
	case *IntLit:
		p.sb.WriteString(strconv.FormatInt(e.Value, 10))
	case *StringLit:
		p.sb.WriteString(strconv.Quote(e.Value))
	case *BoolLit:
		p.sb.WriteString(strconv.FormatBool(e.Value))
	case *NullLit:
		p.sb.WriteString("null")
	case *Ident:
		p.sb.WriteString(e.Name)
	case *This:
		p.sb.WriteString("this")
	case *FieldAccess:
		p.expr(e.X)
		p.sb.WriteString("." + e.Name)
	case *Index:
		p.expr(e.X)
		p.sb.WriteByte('[')
		p.expr(e.Index)
		p.sb.WriteByte(']')
	case *Call:
		if e.Recv != nil {
			p.expr(e.Recv)
			p.sb.WriteByte('.')
		}
		p.sb.WriteString(e.Name + "(" + exprList(e.Args) + ")")
	case *New:
		p.sb.WriteString("new " + e.Class + "(" + exprList(e.Args) + ")")
	case *NewArray:
		p.sb.WriteString("new " + e.Elem.String() + "[")
		p.expr(e.Len)
		p.sb.WriteByte(']')
	case *Unary:
		p.sb.WriteString(e.Op.String())
		p.operand(e.X)
	case *Binary:
		p.operand(e.L)
		p.sb.WriteString(" " + e.Op.String() + " ")
		p.operand(e.R)
	case *InstanceOf:
		p.operand(e.X)
		p.sb.WriteString(" instanceof " + e.Type.String())
	case *Old:
		p.sb.WriteString("old()")
	case *Lambda:
		params := make([]string, len(e.Params))
		for i, prm := range e.Params {
			params[i] = prm.Type.String() + " " + prm.Name
		}
		sub := &printer{indent: p.indent + 1}
		sub.stmts(e.Body.Stmts)
		p.sb.WriteString("(" + strings.Join(params, ", ") + ") -> {\n")
		p.sb.WriteString(sub.sb.String())
		p.sb.WriteString(strings.Repeat("    ", p.indent) + "}")
	default:
		fmt.Fprintf(&p.sb, "<unknown expression %T>", e)
	}
}

// operand parenthesises compound sub-expressions.
func (p *printer) operand(e Expr) {
	switch e.(type) {
	case *Binary, *InstanceOf:
		p.sb.WriteByte('(')
		p.expr(e)
		p.sb.WriteByte(')')
	default:
		p.expr(e)
	}
}
