package vm

import (
	"fmt"
	"strings"

	"dbc/internal/source"
)

// PanicCode identifies an engine failure.
type PanicCode int

// Stable codes - do not change values.
const (
	PanicUnknownName     PanicCode = 1001 // VM1001: unresolved identifier
	PanicTypeMismatch    PanicCode = 1002 // VM1002: operand of the wrong type
	PanicArity           PanicCode = 1003 // VM1003: wrong number of arguments
	PanicUnknownMethod   PanicCode = 1004 // VM1004: no such method
	PanicUnknownClass    PanicCode = 1005 // VM1005: no such class
	PanicStackOverflow   PanicCode = 1006 // VM1006: call depth exceeded
	PanicInvalidTarget   PanicCode = 1007 // VM1007: not assignable
	PanicNotInstantiable PanicCode = 1008 // VM1008: new on interface
	PanicUnimplemented   PanicCode = 1999 // VM1999: node the machine cannot run
)

// String returns the code as "VM1001".
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame is one frame in the error backtrace.
type BacktraceFrame struct {
	FuncName string
	Span     source.Span
}

// VMError is a failure of the machine itself. It is never catchable by the
// executed program.
type VMError struct {
	Code      PanicCode
	Message   string
	Span      source.Span
	Backtrace []BacktraceFrame // top to bottom
}

func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// FormatWithFiles formats the error with resolved file:line:col information.
func (p *VMError) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	sb.WriteString("at ")
	sb.WriteString(formatSpan(p.Span, files))
	sb.WriteString("\n")
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at %s\n", i, frame.FuncName, formatSpan(frame.Span, files))
		}
	}
	return sb.String()
}

// formatSpan formats a span as "file:line:col" or "<no-span>".
func formatSpan(span source.Span, files *source.FileSet) string {
	if files == nil || (span.Start == 0 && span.End == 0) {
		return "<no-span>"
	}
	file := files.Get(span.File)
	if file == nil {
		return "<no-span>"
	}
	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}

func (vm *VM) fail(code PanicCode, span source.Span, format string, args ...any) *VMError {
	e := &VMError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
	e.Backtrace = make([]BacktraceFrame, 0, len(vm.stack))
	for i := len(vm.stack) - 1; i >= 0; i-- {
		f := vm.stack[i]
		e.Backtrace = append(e.Backtrace, BacktraceFrame{FuncName: f.name(), Span: f.span})
	}
	return e
}

func (vm *VM) typeMismatch(span source.Span, expected string, got Value) *VMError {
	return vm.fail(PanicTypeMismatch, span, "expected %s, got %s", expected, got.className())
}
