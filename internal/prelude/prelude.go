// Package prelude holds the declarations every program is linked against:
// the Contract marker and the exception hierarchy, including the three
// violation classes raised by failing guards.
package prelude

import (
	_ "embed"

	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/parser"
	"dbc/internal/source"
)

//go:embed prelude.dbc
var src []byte

// Path is the virtual file name the prelude is registered under.
const Path = "<prelude>"

const (
	Exception                  = "Exception"
	RuntimeException           = "RuntimeException"
	IllegalArgumentException   = "IllegalArgumentException"
	IllegalStateException      = "IllegalStateException"
	IndexOutOfBoundsException  = "IndexOutOfBoundsException"
	NullPointerException       = "NullPointerException"
	ArithmeticException        = "ArithmeticException"
	ContractConditionViolation = "ContractConditionViolation"
	PreconditionViolation      = "PreconditionViolation"
	PostconditionViolation     = "PostconditionViolation"
	InvariantViolation         = "InvariantViolation"
)

// Source returns the prelude text.
func Source() []byte {
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

// Load registers the prelude in fs and parses it. Every returned class is
// marked Builtin. Errors here are programming errors in the prelude itself
// and are reported like any other syntax error.
func Load(fs *source.FileSet, r diag.Reporter) []*ir.Class {
	id := fs.AddVirtual(Path, src)
	res := parser.ParseFile(fs.Get(id), parser.Options{Reporter: r})
	for _, c := range res.Classes {
		c.Builtin = true
	}
	return res.Classes
}
