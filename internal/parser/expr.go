package parser

import (
	"strconv"

	"dbc/internal/ir"
	"dbc/internal/token"
)

// binaryPrec - приоритеты бинарных операторов, больше - сильнее связывает.
var binaryPrec = map[token.Kind]struct {
	prec int
	op   ir.Op
}{
	token.OrOr:    {1, ir.OpOr},
	token.AndAnd:  {2, ir.OpAnd},
	token.EqEq:    {3, ir.OpEq},
	token.BangEq:  {3, ir.OpNe},
	token.Lt:      {4, ir.OpLt},
	token.LtEq:    {4, ir.OpLe},
	token.Gt:      {4, ir.OpGt},
	token.GtEq:    {4, ir.OpGe},
	token.Plus:    {5, ir.OpAdd},
	token.Minus:   {5, ir.OpSub},
	token.Star:    {6, ir.OpMul},
	token.Slash:   {6, ir.OpDiv},
	token.Percent: {6, ir.OpRem},
}

const instanceofPrec = 4

func (p *Parser) parseExpr() (ir.Expr, bool) {
	return p.parseBinary(1)
}

func (p *Parser) parseParenExpr() (ir.Expr, bool) {
	if _, ok := p.expect(token.LParen, "'('"); !ok {
		return nil, false
	}
	x, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	_, ok = p.expect(token.RParen, "')'")
	return x, ok
}

func (p *Parser) parseBinary(minPrec int) (ir.Expr, bool) {
	lhs, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for {
		tok := p.peek()
		if tok.Kind == token.KwInstanceof && instanceofPrec >= minPrec {
			p.advance()
			typ, ok := p.parseType(false)
			if !ok {
				return nil, false
			}
			lhs = &ir.InstanceOf{X: lhs, Type: typ, Span: lhs.Pos().Cover(typ.Span)}
			continue
		}
		info, isOp := binaryPrec[tok.Kind]
		if !isOp || info.prec < minPrec {
			return lhs, true
		}
		p.advance()
		rhs, ok := p.parseBinary(info.prec + 1)
		if !ok {
			return nil, false
		}
		lhs = &ir.Binary{Op: info.op, L: lhs, R: rhs, Span: lhs.Pos().Cover(rhs.Pos())}
	}
}

func (p *Parser) parseUnary() (ir.Expr, bool) {
	tok := p.peek()
	var op ir.Op
	switch tok.Kind {
	case token.Bang:
		op = ir.OpNot
	case token.Minus:
		op = ir.OpNeg
	default:
		return p.parsePostfix()
	}
	p.advance()
	x, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	// -<literal> folds into the literal
	if lit, isLit := x.(*ir.IntLit); isLit && op == ir.OpNeg {
		lit.Value = -lit.Value
		lit.Span = tok.Span.Cover(lit.Span)
		return lit, true
	}
	return &ir.Unary{Op: op, X: x, Span: tok.Span.Cover(x.Pos())}, true
}

func (p *Parser) parsePostfix() (ir.Expr, bool) {
	x, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for {
		switch p.peek().Kind {
		case token.Dot:
			p.advance()
			nameTok, ok := p.expect(token.Ident, "member name")
			if !ok {
				return nil, false
			}
			if p.at(token.LParen) {
				args, ok := p.parseArgs()
				if !ok {
					return nil, false
				}
				x = &ir.Call{Recv: x, Name: nameTok.Text, Args: args, Span: x.Pos().Cover(p.lastSpan)}
				continue
			}
			x = &ir.FieldAccess{X: x, Name: nameTok.Text, Span: x.Pos().Cover(nameTok.Span)}
		case token.LBracket:
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			end, ok := p.expect(token.RBracket, "']'")
			if !ok {
				return nil, false
			}
			x = &ir.Index{X: x, Index: idx, Span: x.Pos().Cover(end.Span)}
		default:
			return x, true
		}
	}
}

func (p *Parser) parsePrimary() (ir.Expr, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.report(tok.Span, "integer literal "+tok.Text+" out of range")
		}
		return &ir.IntLit{Value: v, Span: tok.Span}, true
	case token.StringLit:
		p.advance()
		return &ir.StringLit{Value: tok.Text, Span: tok.Span}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ir.BoolLit{Value: tok.Kind == token.KwTrue, Span: tok.Span}, true
	case token.KwNull:
		p.advance()
		return &ir.NullLit{Span: tok.Span}, true
	case token.KwThis:
		p.advance()
		return &ir.This{Span: tok.Span}, true
	case token.KwNew:
		return p.parseNew()
	case token.LParen:
		if p.lambdaAhead() {
			return p.parseLambda()
		}
		p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		_, ok = p.expect(token.RParen, "')'")
		return x, ok
	case token.Ident:
		p.advance()
		if !p.at(token.LParen) {
			return &ir.Ident{Name: tok.Text, Span: tok.Span}, true
		}
		if tok.Text == ir.OldAccessor && p.peekAt(1).Kind == token.RParen {
			p.advance()
			end := p.advance()
			return &ir.Old{Span: tok.Span.Cover(end.Span)}, true
		}
		args, ok := p.parseArgs()
		if !ok {
			return nil, false
		}
		return &ir.Call{Name: tok.Text, Args: args, Span: tok.Span.Cover(p.lastSpan)}, true
	}
	p.err("expected expression, found " + describe(tok))
	return nil, false
}

func (p *Parser) parseArgs() ([]ir.Expr, bool) {
	if _, ok := p.expect(token.LParen, "'('"); !ok {
		return nil, false
	}
	var args []ir.Expr
	if p.eat(token.RParen) {
		return args, true
	}
	for {
		a, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		args = append(args, a)
		if p.eat(token.Comma) {
			continue
		}
		_, ok = p.expect(token.RParen, "')'")
		return args, ok
	}
}

// parseNew parses `new C(args)` and `new T[n]`.
func (p *Parser) parseNew() (ir.Expr, bool) {
	start := p.advance()
	nameTok, ok := p.expect(token.Ident, "type name")
	if !ok {
		return nil, false
	}
	if p.at(token.LBracket) {
		p.advance()
		n, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		end, ok := p.expect(token.RBracket, "']'")
		if !ok {
			return nil, false
		}
		elem, builtin := ir.BuiltinType(nameTok.Text)
		if !builtin {
			elem = ir.ClassType(nameTok.Text)
		}
		elem.Span = nameTok.Span
		return &ir.NewArray{Elem: elem, Len: n, Span: start.Span.Cover(end.Span)}, true
	}
	args, ok := p.parseArgs()
	if !ok {
		return nil, false
	}
	return &ir.New{Class: nameTok.Text, Args: args, Span: start.Span.Cover(p.lastSpan)}, true
}

// lambdaAhead scans from '(' to its matching ')' and checks for '->'.
func (p *Parser) lambdaAhead() bool {
	depth := 0
	for i := 0; ; i++ {
		switch p.peekAt(i).Kind {
		case token.EOF:
			return false
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return p.peekAt(i+1).Kind == token.Arrow
			}
		}
	}
}

func (p *Parser) parseLambda() (ir.Expr, bool) {
	start := p.peek().Span
	params, ok := p.parseParams()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Arrow, "'->'"); !ok {
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	return &ir.Lambda{Params: params, Body: body, Span: start.Cover(body.Span)}, true
}
