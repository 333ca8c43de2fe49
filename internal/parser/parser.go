package parser

import (
	"slices"

	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/lexer"
	"dbc/internal/source"
	"dbc/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result is what one file contributes to the program.
type Result struct {
	File    source.FileID
	Classes []*ir.Class
	Errors  uint
}

// Parser holds the per-file state. The token stream is materialised up
// front so lambdas and local declarations can be recognised by lookahead.
type Parser struct {
	file     *source.File
	toks     []token.Token
	pos      int
	opts     Options
	lastSpan source.Span
}

// ParseFile parses every type declaration in file.
func ParseFile(file *source.File, opts Options) Result {
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	toks := lx.All()
	toks = append(toks, lx.Next()) // EOF sentinel
	p := &Parser{
		file:     file,
		toks:     toks,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}
	classes := p.parseItems()
	return Result{File: file.ID, Classes: classes, Errors: p.opts.CurrentErrors}
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// parseItems: основной цикл верхнего уровня.
func (p *Parser) parseItems() []*ir.Class {
	var out []*ir.Class
	for !p.at(token.EOF) {
		c, ok := p.parseTypeDecl()
		if c != nil {
			out = append(out, c)
		}
		if !ok {
			p.resyncTop()
		}
	}
	return out
}

// resyncTop skips to the next class or interface keyword.
func (p *Parser) resyncTop() {
	for !p.at(token.EOF) {
		if p.atOr(token.KwClass, token.KwInterface) {
			return
		}
		p.advance()
	}
}
