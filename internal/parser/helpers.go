package parser

import (
	"fmt"

	"dbc/internal/diag"
	"dbc/internal/source"
	"dbc/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan prefers the position right after the last consumed
// token when the parser is sitting on EOF.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect consumes a token of kind k or reports what was found instead.
func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	p.report(sp, fmt.Sprintf("expected %s, found %s", what, describe(p.peek())))
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) err(msg string) {
	p.report(p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(sp source.Span, msg string) {
	if p.opts.Reporter == nil || p.opts.Enough() {
		p.opts.CurrentErrors++
		return
	}
	p.opts.CurrentErrors++
	diag.ReportError(p.opts.Reporter, diag.SyntaxError, sp, msg).Emit()
}

func (p *Parser) reportCode(code diag.Code, sp source.Span, args ...string) {
	if p.opts.Reporter == nil {
		return
	}
	diag.ReportError(p.opts.Reporter, code, sp, args...).Emit()
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident:
		return "identifier " + t.Text
	case token.StringLit:
		return "string literal"
	case token.IntLit:
		return "integer literal " + t.Text
	}
	return "'" + t.Kind.String() + "'"
}

// skipBalanced consumes a {...} group starting at the current '{'.
func (p *Parser) skipBalanced() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.advance().Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

// resyncStmt skips to just after the next ';' or stops before a '}'.
func (p *Parser) resyncStmt() {
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace:
			return
		case token.LBrace:
			p.skipBalanced()
			return
		}
		p.advance()
	}
}
