package symbols

import (
	"errors"
	"fmt"

	"dbc/internal/ir"
)

// Validate walks the linked program checking structural invariants. Returns
// nil if everything is consistent; otherwise aggregates all detected issues.
func Validate(prog *ir.Program) error {
	if prog == nil {
		return errors.New("nil program")
	}
	var errs []error
	seen := make(map[string]struct{}, len(prog.Classes))
	for i, c := range prog.Classes {
		if c == nil {
			errs = append(errs, fmt.Errorf("class %d is nil", i))
			continue
		}
		if _, dup := seen[c.Name]; dup {
			errs = append(errs, fmt.Errorf("class %s listed twice", c.Name))
		}
		seen[c.Name] = struct{}{}
		if prog.Class(c.Name) != c {
			errs = append(errs, fmt.Errorf("class %s missing from name index", c.Name))
		}
		if c.Kind == ir.KindClass && len(c.Extends) > 1 {
			errs = append(errs, fmt.Errorf("class %s extends %d classes", c.Name, len(c.Extends)))
		}
		for _, f := range c.Fields {
			if f.Owner != c {
				errs = append(errs, fmt.Errorf("field %s.%s has wrong owner", c.Name, f.Name))
			}
		}
		for _, m := range c.Methods {
			if m.Owner != c {
				errs = append(errs, fmt.Errorf("method %s.%s has wrong owner", c.Name, m.Name))
			}
			if m.Abstract && m.Body != nil {
				errs = append(errs, fmt.Errorf("abstract method %s has a body", m.QualifiedName()))
			}
			if m.Ctor && m.Static {
				errs = append(errs, fmt.Errorf("constructor %s is static", m.QualifiedName()))
			}
		}
	}
	return errors.Join(errs...)
}
