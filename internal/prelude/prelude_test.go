package prelude

import (
	"testing"

	"dbc/internal/diag"
	"dbc/internal/source"
)

func TestPreludeParsesCleanly(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	classes := Load(fs, diag.BagReporter{Bag: bag})
	if bag.Len() != 0 {
		t.Fatalf("prelude diagnostics:\n%s", diag.FormatGolden(bag.Items(), fs, true))
	}
	byName := make(map[string]bool)
	for _, c := range classes {
		if !c.Builtin {
			t.Errorf("%s must be marked builtin", c.Name)
		}
		byName[c.Name] = true
	}
	for _, name := range []string{
		"Contract", Exception, RuntimeException, IllegalArgumentException,
		IllegalStateException, IndexOutOfBoundsException, NullPointerException,
		ArithmeticException, ContractConditionViolation, PreconditionViolation,
		PostconditionViolation, InvariantViolation,
	} {
		if !byName[name] {
			t.Errorf("prelude lacks %s", name)
		}
	}
}
