package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"dbc/internal/ir"
	"dbc/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on parsed classes:
// 1) every class and member span is non-empty and within file content bounds
// 2) every member span is contained in its class span
// 3) classes appear in source order without overlapping
func CheckSpanInvariants(classes []*ir.Class, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	check := func(what string, sp source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("%s: empty span %v", what, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s: span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("%s: span end beyond content: %d > %d", what, sp.End, lenContent)
		}
		return nil
	}

	var prevEnd uint32
	for _, c := range classes {
		if err := check("class "+c.Name, c.Span); err != nil {
			return err
		}
		if c.Span.Start < prevEnd {
			return fmt.Errorf("class %s overlaps the previous declaration", c.Name)
		}
		prevEnd = c.Span.End
		for _, f := range c.Fields {
			if err := check("field "+c.Name+"."+f.Name, f.Span); err != nil {
				return err
			}
			if !c.Span.Contains(f.Span) {
				return fmt.Errorf("field %s.%s span %v is outside class span %v", c.Name, f.Name, f.Span, c.Span)
			}
		}
		for _, m := range c.Methods {
			if err := check("method "+m.QualifiedName(), m.Span); err != nil {
				return err
			}
			if !c.Span.Contains(m.Span) {
				return fmt.Errorf("method %s span %v is outside class span %v", m.QualifiedName(), m.Span, c.Span)
			}
		}
	}
	return nil
}
