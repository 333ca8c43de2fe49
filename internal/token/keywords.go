package token

var keywords = map[string]Kind{
	"class":      KwClass,
	"interface":  KwInterface,
	"extends":    KwExtends,
	"implements": KwImplements,
	"public":     KwPublic,
	"private":    KwPrivate,
	"static":     KwStatic,
	"abstract":   KwAbstract,
	"void":       KwVoid,
	"if":         KwIf,
	"else":       KwElse,
	"while":      KwWhile,
	"for":        KwFor,
	"return":     KwReturn,
	"throw":      KwThrow,
	"try":        KwTry,
	"catch":      KwCatch,
	"finally":    KwFinally,
	"new":        KwNew,
	"this":       KwThis,
	"super":      KwSuper,
	"null":       KwNull,
	"true":       KwTrue,
	"false":      KwFalse,
	"instanceof": KwInstanceof,
}

// LookupKeyword reports the keyword kind of ident. Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
