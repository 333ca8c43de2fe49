package parser

import (
	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/source"
	"dbc/internal/token"
)

// parseTypeDecl parses `[public] [abstract] (class|interface) Name ... { members }`.
func (p *Parser) parseTypeDecl() (*ir.Class, bool) {
	start := p.peek().Span
	for p.atOr(token.KwPublic, token.KwAbstract) {
		p.advance()
	}
	kind := ir.KindClass
	switch p.peek().Kind {
	case token.KwClass:
	case token.KwInterface:
		kind = ir.KindInterface
	default:
		p.err("expected class or interface declaration, found " + describe(p.peek()))
		p.advance()
		return nil, false
	}
	p.advance()

	nameTok, ok := p.expect(token.Ident, "type name")
	if !ok {
		return nil, false
	}
	c := &ir.Class{Name: nameTok.Text, Kind: kind, NameSpan: nameTok.Span}

	if p.eat(token.KwExtends) {
		c.Extends = p.parseNameList()
		if kind == ir.KindClass && len(c.Extends) > 1 {
			p.report(nameTok.Span, "class "+c.Name+" can extend only one class")
			c.Extends = c.Extends[:1]
		}
	}
	if p.at(token.KwImplements) {
		if kind == ir.KindInterface {
			p.err("interface " + c.Name + " cannot implement; use extends")
		}
		p.advance()
		c.Implements = p.parseNameList()
	}

	if _, ok := p.expect(token.LBrace, "'{'"); !ok {
		return nil, false
	}
	for !p.atOr(token.RBrace, token.EOF) {
		if !p.parseMember(c) {
			p.resyncMember()
		}
	}
	end, _ := p.expect(token.RBrace, "'}'")
	c.Span = start.Cover(end.Span)
	return c, true
}

func (p *Parser) parseNameList() []string {
	var out []string
	for {
		tok, ok := p.expect(token.Ident, "type name")
		if !ok {
			return out
		}
		out = append(out, tok.Text)
		if !p.eat(token.Comma) {
			return out
		}
	}
}

// resyncMember skips a broken member: up to ';' or past a balanced body.
func (p *Parser) resyncMember() {
	for !p.atOr(token.EOF, token.RBrace) {
		switch p.peek().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.LBrace:
			p.skipBalanced()
			return
		case token.At:
			return
		}
		p.advance()
	}
}

type modifiers struct {
	public, private, static, abstract bool
}

// parseMember parses one field, constructor or method into c.
func (p *Parser) parseMember(c *ir.Class) bool {
	start := p.peek().Span
	contract, ok := p.parseAnnotations()
	if !ok {
		return false
	}
	var mods modifiers
loop:
	for {
		switch p.peek().Kind {
		case token.KwPublic:
			mods.public = true
		case token.KwPrivate:
			mods.private = true
		case token.KwStatic:
			mods.static = true
		case token.KwAbstract:
			mods.abstract = true
		default:
			break loop
		}
		p.advance()
	}
	if mods.public && mods.private {
		p.err("member cannot be both public and private")
	}

	// Name(  → constructor
	if p.at(token.Ident) && p.peek().Text == c.Name && p.peekAt(1).Kind == token.LParen {
		nameTok := p.advance()
		m := &ir.Method{
			Name:     nameTok.Text,
			Ctor:     true,
			Private:  mods.private,
			Result:   ir.VoidType(),
			Contract: contract,
			NameSpan: nameTok.Span,
		}
		if c.Kind == ir.KindInterface {
			p.report(nameTok.Span, "interface "+c.Name+" cannot declare a constructor")
		}
		if mods.static || mods.abstract {
			p.report(nameTok.Span, "constructor cannot be static or abstract")
		}
		params, ok := p.parseParams()
		if !ok {
			return false
		}
		m.Params = params
		body, ok := p.parseBlock()
		if !ok {
			return false
		}
		m.Body = body
		p.checkDelegation(m)
		m.Span = start.Cover(body.Span)
		c.AddMethod(m)
		return true
	}

	typ, ok := p.parseType(true)
	if !ok {
		return false
	}
	nameTok, ok := p.expect(token.Ident, "member name")
	if !ok {
		return false
	}

	if !p.at(token.LParen) {
		return p.parseFieldRest(c, start, mods, typ, nameTok, contract)
	}

	m := &ir.Method{
		Name:     nameTok.Text,
		Result:   typ,
		Static:   mods.static,
		Private:  mods.private,
		Abstract: mods.abstract,
		Contract: contract,
		NameSpan: nameTok.Span,
	}
	params, ok := p.parseParams()
	if !ok {
		return false
	}
	m.Params = params
	if p.at(token.Semicolon) {
		end := p.advance()
		if c.Kind == ir.KindClass && !m.Abstract {
			p.report(nameTok.Span, "method "+m.Name+" has no body; mark it abstract")
		}
		m.Abstract = true
		m.Span = start.Cover(end.Span)
		c.AddMethod(m)
		return true
	}
	if m.Abstract {
		p.report(nameTok.Span, "abstract method "+m.Name+" cannot have a body")
	}
	body, ok := p.parseBlock()
	if !ok {
		return false
	}
	m.Body = body
	m.Abstract = false
	p.checkDelegation(m)
	m.Span = start.Cover(body.Span)
	c.AddMethod(m)
	return true
}

func (p *Parser) parseFieldRest(c *ir.Class, start source.Span, mods modifiers, typ ir.TypeRef, nameTok token.Token, contract ir.Contract) bool {
	if !contract.Empty() {
		p.report(contract.Span, "contract annotations apply to methods only")
	}
	if typ.IsVoid() {
		p.report(typ.Span, "field "+nameTok.Text+" cannot be void")
	}
	if mods.abstract {
		p.report(nameTok.Span, "field "+nameTok.Text+" cannot be abstract")
	}
	f := &ir.Field{
		Name:    nameTok.Text,
		Type:    typ,
		Static:  mods.static,
		Private: mods.private,
	}
	if p.eat(token.Assign) {
		init, ok := p.parseExpr()
		if !ok {
			return false
		}
		f.Init = init
	}
	end, ok := p.expect(token.Semicolon, "';'")
	if !ok {
		return false
	}
	f.Span = start.Cover(end.Span)
	c.AddField(f)
	return true
}

func (p *Parser) parseParams() ([]*ir.Param, bool) {
	if _, ok := p.expect(token.LParen, "'('"); !ok {
		return nil, false
	}
	var out []*ir.Param
	if p.eat(token.RParen) {
		return out, true
	}
	for {
		typ, ok := p.parseType(false)
		if !ok {
			return nil, false
		}
		nameTok, ok := p.expect(token.Ident, "parameter name")
		if !ok {
			return nil, false
		}
		out = append(out, &ir.Param{Name: nameTok.Text, Type: typ, Span: typ.Span.Cover(nameTok.Span)})
		if p.eat(token.Comma) {
			continue
		}
		if _, ok := p.expect(token.RParen, "')'"); !ok {
			return nil, false
		}
		return out, true
	}
}

// checkDelegation accepts super(...)/this(...) only as the first statement
// of a constructor.
func (p *Parser) checkDelegation(m *ir.Method) {
	for i, s := range m.Body.Stmts {
		d, ok := s.(*ir.Delegate)
		if !ok {
			continue
		}
		switch {
		case !m.Ctor:
			p.report(d.Span, "method "+m.Name+" is not a constructor and cannot delegate")
		case i > 0:
			p.report(d.Span, "constructor delegation must be the first statement of "+m.Name)
		}
	}
}

// parseAnnotations reads the contract annotations in front of a member.
func (p *Parser) parseAnnotations() (ir.Contract, bool) {
	var c ir.Contract
	first := true
	for p.at(token.At) {
		at := p.advance()
		nameTok, ok := p.expect(token.Ident, "annotation name")
		if !ok {
			return c, false
		}
		sp := at.Span.Cover(nameTok.Span)
		switch nameTok.Text {
		case "Requires", "Ensures":
			refs, end, ok := p.parseClauseArgs()
			if !ok {
				return c, false
			}
			sp = sp.Cover(end)
			if nameTok.Text == "Requires" {
				c.Requires = append(c.Requires, refs...)
			} else {
				c.Ensures = append(c.Ensures, refs...)
			}
		case "Invariant":
			c.Invariant = true
		case "Pure":
			c.Pure = true
		default:
			p.reportCode(diag.InvalidAnnotation, sp, "unknown annotation @"+nameTok.Text)
			if p.at(token.LParen) {
				p.skipParens()
			}
		}
		if (nameTok.Text == "Invariant" || nameTok.Text == "Pure") && p.at(token.LParen) {
			p.reportCode(diag.InvalidAnnotation, p.peek().Span, "@"+nameTok.Text+" takes no arguments")
			p.skipParens()
		}
		if first {
			c.Span = sp
			first = false
		} else {
			c.Span = c.Span.Cover(sp)
		}
	}
	return c, true
}

// parseClauseArgs reads ("a", "b") or ({"a", "b"}).
func (p *Parser) parseClauseArgs() ([]ir.ClauseRef, source.Span, bool) {
	if _, ok := p.expect(token.LParen, "'('"); !ok {
		return nil, source.Span{}, false
	}
	braced := p.eat(token.LBrace)
	closeKind := token.RParen
	if braced {
		closeKind = token.RBrace
	}
	var refs []ir.ClauseRef
	for !p.atOr(closeKind, token.EOF) {
		tok, ok := p.expect(token.StringLit, "clause string")
		if !ok {
			return nil, source.Span{}, false
		}
		refs = append(refs, ir.ClauseRef{Text: tok.Text, Span: tok.Span})
		if !p.eat(token.Comma) {
			break
		}
	}
	if braced {
		if _, ok := p.expect(token.RBrace, "'}'"); !ok {
			return nil, source.Span{}, false
		}
	}
	end, ok := p.expect(token.RParen, "')'")
	if !ok {
		return nil, source.Span{}, false
	}
	return refs, end.Span, true
}

func (p *Parser) skipParens() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.advance().Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}
