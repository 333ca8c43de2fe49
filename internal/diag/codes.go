package diag

import (
	"fmt"
	"strings"
)

// Code is a stable string identifier an external sink matches against.
type Code string

const (
	UnknownCode Code = ""

	// Clause resolution errors.
	MalformedClause     Code = "malformed.clause"
	MissingClause       Code = "missing.clause"
	MissingParamName    Code = "missing.param.name"
	WrongParamType      Code = "wrong.param.type"
	ReturnsOnVoidMethod Code = "returns.on.void.method"
	ReturnsOnPrecond    Code = "returns.on.precondition"
	RaisesOnPrecond     Code = "raises.on.precondition"
	InvariantArity      Code = "invariant.non.zero.arity"
	InvariantIsStatic   Code = "invariant.is.static"
	InvariantNotBoolean Code = "invariant.is.not.boolean"
	ClauseIsNotBoolean  Code = "clause.is.not.boolean"
	IncompatibleClause  Code = "incompatible.clause"

	// Informational notes of the instrumentation pass.
	InstrumentedMethod  Code = "instrumented.method"
	InstrumentedClass   Code = "instrumented.class"
	ContractInterfaces  Code = "contract.interfaces"
	ConditionChecks     Code = "condition.checks"
	OverriddenOldMethod Code = "overridden.old.method"

	// Front-end.
	SyntaxError       Code = "syntax.error"
	UnknownType       Code = "unknown.type"
	DuplicateMember   Code = "duplicate.member"
	CyclicInheritance Code = "cyclic.inheritance"
	DuplicateClass    Code = "duplicate.class"
	InvalidAnnotation Code = "invalid.annotation"
	InvalidSupertype  Code = "invalid.supertype"

	// Driver.
	IOLoadFile Code = "io.load.file"
)

type codeInfo struct {
	title    string
	template string
	arity    int
}

var codeTable = map[Code]codeInfo{
	UnknownCode: {"unknown diagnostic", "%s", 1},

	MalformedClause:     {"malformed clause", "malformed clause %q on %s", 2},
	MissingClause:       {"missing clause", "%[1]s references clause %[2]s, which is not declared in %[3]s or its contract types", 3},
	MissingParamName:    {"unmatched clause parameter", "parameter %[2]s of clause %[1]s matches no parameter of %[3]s, nor returns/raises", 3},
	WrongParamType:      {"wrong clause parameter type", "parameter %[2]s of clause %[1]s has type %[3]s, which is not assignable from %[4]s", 4},
	ReturnsOnVoidMethod: {"returns on void method", "clause %[1]s binds returns, but %[2]s returns void", 2},
	ReturnsOnPrecond:    {"returns on precondition", "clause %[1]s binds returns, which is not available in a precondition of %[2]s", 2},
	RaisesOnPrecond:     {"raises on precondition", "clause %[1]s binds raises, which is not available in a precondition of %[2]s", 2},
	InvariantArity:      {"invariant with parameters", "invariant %[1]s must take no parameters, has %[2]s", 2},
	InvariantIsStatic:   {"static invariant", "invariant %[1]s must not be static", 1},
	InvariantNotBoolean: {"non-boolean invariant", "invariant %[1]s must return boolean, returns %[2]s", 2},
	ClauseIsNotBoolean:  {"non-boolean clause", "clause %[1]s must return boolean, returns %[2]s", 2},
	IncompatibleClause:  {"incompatible clause", "%[1]s (static=%[2]s) cannot use clause %[3]s (static=%[4]s)", 4},

	InstrumentedMethod:  {"instrumented method", "instrumented %[1]s:\n%[2]s", 2},
	InstrumentedClass:   {"instrumented class", "instrumented class %[1]s (%[2]s methods)", 2},
	ContractInterfaces:  {"contract interfaces", "contract types of %[1]s: %[2]s", 2},
	ConditionChecks:     {"condition checks", "%[1]s checks %[2]s preconditions, %[3]s postconditions, %[4]s invariants", 4},
	OverriddenOldMethod: {"overridden old method", "class %[1]s declares its own old(); the accessor is left untouched", 1},

	SyntaxError:       {"syntax error", "%s", 1},
	UnknownType:       {"unknown type", "unknown type %s", 1},
	DuplicateMember:   {"duplicate member", "%[1]s declares %[2]s more than once", 2},
	CyclicInheritance: {"cyclic inheritance", "type %s inherits from itself", 1},
	DuplicateClass:    {"duplicate type", "type %s is declared more than once", 1},
	InvalidAnnotation: {"invalid annotation", "%s", 1},
	InvalidSupertype:  {"invalid supertype", "%[1]s cannot %[2]s %[3]s", 3},

	IOLoadFile: {"cannot load file", "cannot load %[1]s: %[2]s", 2},
}

// ID returns the stable identifier.
func (c Code) ID() string {
	if c == UnknownCode {
		return "unknown"
	}
	return string(c)
}

func (c Code) Title() string {
	if info, ok := codeTable[c]; ok {
		return info.title
	}
	return codeTable[UnknownCode].title
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Render formats args with the code template. A wrong number of args
// falls back to a comma-joined list so nothing is silently dropped.
func (c Code) Render(args ...string) string {
	info, ok := codeTable[c]
	if !ok || info.arity != len(args) {
		return c.Title() + ": " + strings.Join(args, ", ")
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return fmt.Sprintf(info.template, vals...)
}

// IsNote reports whether the code is one of the informational notes.
func (c Code) IsNote() bool {
	switch c {
	case InstrumentedMethod, InstrumentedClass, ContractInterfaces, ConditionChecks, OverriddenOldMethod:
		return true
	}
	return false
}
