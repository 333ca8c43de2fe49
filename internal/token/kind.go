package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit
	StringLit

	// keywords
	KwClass
	KwInterface
	KwExtends
	KwImplements
	KwPublic
	KwPrivate
	KwStatic
	KwAbstract
	KwVoid
	KwIf
	KwElse
	KwWhile
	KwFor
	KwReturn
	KwThrow
	KwTry
	KwCatch
	KwFinally
	KwNew
	KwThis
	KwSuper
	KwNull
	KwTrue
	KwFalse
	KwInstanceof

	// punctuation and operators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Dot
	At
	Arrow // ->
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	EqEq
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	AndAnd
	OrOr
)

var kindNames = [...]string{
	Invalid:      "invalid",
	EOF:          "end of file",
	Ident:        "identifier",
	IntLit:       "integer literal",
	StringLit:    "string literal",
	KwClass:      "class",
	KwInterface:  "interface",
	KwExtends:    "extends",
	KwImplements: "implements",
	KwPublic:     "public",
	KwPrivate:    "private",
	KwStatic:     "static",
	KwAbstract:   "abstract",
	KwVoid:       "void",
	KwIf:         "if",
	KwElse:       "else",
	KwWhile:      "while",
	KwFor:        "for",
	KwReturn:     "return",
	KwThrow:      "throw",
	KwTry:        "try",
	KwCatch:      "catch",
	KwFinally:    "finally",
	KwNew:        "new",
	KwThis:       "this",
	KwSuper:      "super",
	KwNull:       "null",
	KwTrue:       "true",
	KwFalse:      "false",
	KwInstanceof: "instanceof",
	LParen:       "(",
	RParen:       ")",
	LBrace:       "{",
	RBrace:       "}",
	LBracket:     "[",
	RBracket:     "]",
	Comma:        ",",
	Semicolon:    ";",
	Dot:          ".",
	At:           "@",
	Arrow:        "->",
	Assign:       "=",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Bang:         "!",
	EqEq:         "==",
	BangEq:       "!=",
	Lt:           "<",
	LtEq:         "<=",
	Gt:           ">",
	GtEq:         ">=",
	AndAnd:       "&&",
	OrOr:         "||",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
