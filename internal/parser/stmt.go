package parser

import (
	"dbc/internal/ir"
	"dbc/internal/token"
)

func (p *Parser) parseBlock() (*ir.Block, bool) {
	open, ok := p.expect(token.LBrace, "'{'")
	if !ok {
		return nil, false
	}
	b := &ir.Block{}
	for !p.atOr(token.RBrace, token.EOF) {
		before := p.pos
		s, ok := p.parseStmt()
		if ok && s != nil {
			b.Stmts = append(b.Stmts, s)
			continue
		}
		p.resyncStmt()
		if p.pos == before && !p.at(token.RBrace) {
			p.advance()
		}
	}
	end, ok := p.expect(token.RBrace, "'}'")
	b.Span = open.Span.Cover(end.Span)
	return b, ok
}

func (p *Parser) parseStmt() (ir.Stmt, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		p.advance()
		return &ir.Block{Span: tok.Span}, true
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		p.advance()
		cond, ok := p.parseParenExpr()
		if !ok {
			return nil, false
		}
		body, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		return &ir.While{Cond: cond, Body: body, Span: tok.Span.Cover(body.Span)}, true
	case token.KwFor:
		return p.parseFor()
	case token.KwReturn:
		p.advance()
		r := &ir.Return{}
		if !p.at(token.Semicolon) {
			v, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			r.Value = v
		}
		end, ok := p.expect(token.Semicolon, "';'")
		r.Span = tok.Span.Cover(end.Span)
		return r, ok
	case token.KwThrow:
		p.advance()
		v, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		end, ok := p.expect(token.Semicolon, "';'")
		return &ir.Throw{Value: v, Span: tok.Span.Cover(end.Span)}, ok
	case token.KwTry:
		return p.parseTry()
	case token.KwSuper, token.KwThis:
		if p.peekAt(1).Kind == token.LParen {
			p.advance()
			args, ok := p.parseArgs()
			if !ok {
				return nil, false
			}
			end, ok := p.expect(token.Semicolon, "';'")
			return &ir.Delegate{Super: tok.Kind == token.KwSuper, Args: args, Span: tok.Span.Cover(end.Span)}, ok
		}
	}

	s, ok := p.parseSimpleStmt()
	if !ok {
		return nil, false
	}
	end, ok := p.expect(token.Semicolon, "';'")
	if !ok {
		return nil, false
	}
	return withEnd(s, end), true
}

// parseSimpleStmt parses a declaration, assignment or expression statement
// without its terminator. for-loop headers reuse it.
func (p *Parser) parseSimpleStmt() (ir.Stmt, bool) {
	start := p.peek().Span
	if p.looksLikeDecl() {
		typ, ok := p.parseType(false)
		if !ok {
			return nil, false
		}
		nameTok, ok := p.expect(token.Ident, "variable name")
		if !ok {
			return nil, false
		}
		d := &ir.VarDecl{Name: nameTok.Text, Type: typ, Span: start.Cover(nameTok.Span)}
		if p.eat(token.Assign) {
			init, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			d.Init = init
			d.Span = d.Span.Cover(init.Pos())
		}
		return d, true
	}

	x, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if p.at(token.Assign) {
		p.advance()
		switch x.(type) {
		case *ir.Ident, *ir.FieldAccess, *ir.Index:
		default:
			p.report(x.Pos(), "cannot assign to "+ir.PrintExpr(x))
		}
		v, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		return &ir.Assign{Target: x, Value: v, Span: start.Cover(v.Pos())}, true
	}
	return &ir.ExprStmt{X: x, Span: x.Pos()}, true
}

func withEnd(s ir.Stmt, end token.Token) ir.Stmt {
	switch s := s.(type) {
	case *ir.VarDecl:
		s.Span = s.Span.Cover(end.Span)
	case *ir.Assign:
		s.Span = s.Span.Cover(end.Span)
	case *ir.ExprStmt:
		s.Span = s.Span.Cover(end.Span)
	}
	return s
}

func (p *Parser) parseIf() (ir.Stmt, bool) {
	start := p.advance()
	cond, ok := p.parseParenExpr()
	if !ok {
		return nil, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	s := &ir.If{Cond: cond, Then: then, Span: start.Span.Cover(then.Span)}
	if !p.eat(token.KwElse) {
		return s, true
	}
	if p.at(token.KwIf) {
		elif, ok := p.parseIf()
		if !ok {
			return nil, false
		}
		s.Else = elif
		s.Span = s.Span.Cover(elif.Pos())
		return s, true
	}
	els, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	s.Else = els
	s.Span = s.Span.Cover(els.Span)
	return s, true
}

func (p *Parser) parseFor() (ir.Stmt, bool) {
	start := p.advance()
	if _, ok := p.expect(token.LParen, "'('"); !ok {
		return nil, false
	}
	f := &ir.For{}
	if !p.at(token.Semicolon) {
		init, ok := p.parseSimpleStmt()
		if !ok {
			return nil, false
		}
		f.Init = init
	}
	if _, ok := p.expect(token.Semicolon, "';'"); !ok {
		return nil, false
	}
	if !p.at(token.Semicolon) {
		cond, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		f.Cond = cond
	}
	if _, ok := p.expect(token.Semicolon, "';'"); !ok {
		return nil, false
	}
	if !p.at(token.RParen) {
		post, ok := p.parseSimpleStmt()
		if !ok {
			return nil, false
		}
		if _, isDecl := post.(*ir.VarDecl); isDecl {
			p.report(post.Pos(), "declaration is not allowed in a for post statement")
		}
		f.Post = post
	}
	if _, ok := p.expect(token.RParen, "')'"); !ok {
		return nil, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	f.Body = body
	f.Span = start.Span.Cover(body.Span)
	return f, true
}

func (p *Parser) parseTry() (ir.Stmt, bool) {
	start := p.advance()
	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}
	t := &ir.Try{Body: body, Span: start.Span.Cover(body.Span)}
	for p.at(token.KwCatch) {
		ct := p.advance()
		if _, ok := p.expect(token.LParen, "'('"); !ok {
			return nil, false
		}
		typ, ok := p.parseType(false)
		if !ok {
			return nil, false
		}
		nameTok, ok := p.expect(token.Ident, "exception variable")
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RParen, "')'"); !ok {
			return nil, false
		}
		cb, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		t.Catches = append(t.Catches, &ir.Catch{Type: typ, Name: nameTok.Text, Body: cb, Span: ct.Span.Cover(cb.Span)})
		t.Span = t.Span.Cover(cb.Span)
	}
	if p.eat(token.KwFinally) {
		fb, ok := p.parseBlock()
		if !ok {
			return nil, false
		}
		t.Finally = fb
		t.Span = t.Span.Cover(fb.Span)
	}
	if len(t.Catches) == 0 && t.Finally == nil {
		p.report(start.Span, "try without catch or finally")
	}
	return t, true
}
