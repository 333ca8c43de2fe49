package lexer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"dbc/internal/token"
)

// scanString reads a double-quoted literal. Token.Text holds the decoded,
// NFC-normalised value without quotes, so clause names written with
// composed and decomposed characters compare equal.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	var sb strings.Builder
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			return token.Token{Kind: token.StringLit, Span: lx.cursor.SpanFrom(start), Text: norm.NFC.String(sb.String())}
		case '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: sb.String()}
		case '\\':
			escStart := lx.cursor.Mark()
			lx.cursor.Bump()
			esc := lx.cursor.Bump()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"', '\\', '\'':
				sb.WriteByte(esc)
			default:
				lx.errLex(lx.cursor.SpanFrom(escStart), "unknown escape sequence")
			}
		default:
			sb.WriteByte(lx.cursor.Bump())
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: sb.String()}
}
