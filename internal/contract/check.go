package contract

import (
	"strings"
)

// ThisLabel is the fixed label the receiver is rendered under.
const ThisLabel = "this"

// Binding is one live value shown next to a failing clause.
type Binding struct {
	Label string
	Value string
}

// Evaluation is one clause of a guard group. Holds returns the raw value of
// the clause predicate; negation is applied by Check. Values is consulted
// only for failing clauses.
type Evaluation struct {
	Description string
	Negated     bool
	Holds       func() (bool, error)
	Values      func() ([]Binding, error)
}

// Check evaluates every clause of one kind. A clause fails when it is false,
// or, when negated, when it is true. All failing descriptions are joined
// with "; " into a single violation. Errors raised while evaluating a clause
// or rendering its values are returned unchanged.
func Check(kind Kind, evals []Evaluation) error {
	var failed []string
	for _, ev := range evals {
		if ev.Holds == nil {
			return Internalf("clause %q has no predicate", ev.Description)
		}
		ok, err := ev.Holds()
		if err != nil {
			return err
		}
		if ev.Negated {
			ok = !ok
		}
		if ok {
			continue
		}
		desc := ev.Description
		if ev.Values != nil {
			vals, err := ev.Values()
			if err != nil {
				return err
			}
			desc += RenderBindings(vals)
		}
		failed = append(failed, desc)
	}
	if len(failed) == 0 {
		return nil
	}
	return NewViolation(kind, strings.Join(failed, "; "))
}

// RenderBindings formats values as " [a=1, b=x]"; empty input renders as "".
func RenderBindings(vals []Binding) string {
	if len(vals) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" [")
	for i, b := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.Label)
		sb.WriteByte('=')
		sb.WriteString(b.Value)
	}
	sb.WriteByte(']')
	return sb.String()
}
