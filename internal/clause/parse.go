package clause

import (
	"errors"
	"fmt"
	"regexp"

	"dbc/internal/ir"
	"dbc/internal/source"
)

// ErrMalformedClause is wrapped by Parse for text outside the clause grammar.
var ErrMalformedClause = errors.New("malformed clause")

var grammar = regexp.MustCompile(`^(!)?[A-Za-z][A-Za-z0-9_]*$`)

// Ref is a syntactically valid clause reference, not yet resolved.
type Ref struct {
	Name    string
	Negated bool
	Kind    ir.ConditionKind
	Text    string // as written, including a leading '!'
	Span    source.Span
}

// Parse validates text against the clause grammar: an optional '!' followed
// by an identifier. Anything else, including surrounding whitespace, is
// rejected.
func Parse(kind ir.ConditionKind, text string) (Ref, error) {
	m := grammar.FindStringSubmatch(text)
	if m == nil {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedClause, text)
	}
	ref := Ref{Kind: kind, Text: text, Negated: m[1] == "!"}
	ref.Name = text
	if ref.Negated {
		ref.Name = text[1:]
	}
	return ref, nil
}

// Keyword is the annotation word used in descriptions for kind.
func Keyword(kind ir.ConditionKind) string {
	switch kind {
	case ir.Precondition:
		return "requires"
	case ir.Postcondition:
		return "ensures"
	case ir.Invariant:
		return "invariant"
	}
	return "clause"
}
