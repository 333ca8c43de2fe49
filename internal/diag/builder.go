package diag

import "dbc/internal/source"

// New builds a diagnostic whose message is rendered from the code template.
func New(sev Severity, code Code, primary source.Span, args ...string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Args:     append([]string(nil), args...),
		Message:  code.Render(args...),
	}
}

func NewError(code Code, primary source.Span, args ...string) Diagnostic {
	return New(SevError, code, primary, args...)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
