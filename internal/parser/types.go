package parser

import (
	"dbc/internal/ir"
	"dbc/internal/token"
)

// parseType parses `void`, a builtin or class name, and any `[]` suffixes.
// void is accepted only when allowVoid is set (method results).
func (p *Parser) parseType(allowVoid bool) (ir.TypeRef, bool) {
	tok := p.peek()
	var t ir.TypeRef
	switch tok.Kind {
	case token.KwVoid:
		p.advance()
		if !allowVoid {
			p.report(tok.Span, "void is only allowed as a method result")
		}
		t = ir.VoidType()
	case token.Ident:
		p.advance()
		if b, ok := ir.BuiltinType(tok.Text); ok {
			t = b
		} else {
			t = ir.ClassType(tok.Text)
		}
	default:
		p.err("expected type, found " + describe(tok))
		return ir.TypeRef{}, false
	}
	t.Span = tok.Span
	for p.at(token.LBracket) && p.peekAt(1).Kind == token.RBracket {
		p.advance()
		end := p.advance()
		sp := t.Span.Cover(end.Span)
		t = ir.ArrayOf(t)
		t.Span = sp
	}
	if t.Kind == ir.TArray && t.Elem.IsVoid() {
		p.report(t.Span, "array of void")
	}
	return t, true
}

// looksLikeDecl reports whether the tokens at the cursor start a local
// declaration: `T x`, `T[] x`, `T[][] x`.
func (p *Parser) looksLikeDecl() bool {
	if !p.at(token.Ident) {
		return false
	}
	i := 1
	for p.peekAt(i).Kind == token.LBracket && p.peekAt(i+1).Kind == token.RBracket {
		i += 2
	}
	return p.peekAt(i).Kind == token.Ident
}
