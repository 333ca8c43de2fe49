package instrument

import (
	"strconv"
	"strings"

	"dbc/internal/diag"
	"dbc/internal/ir"
)

func (p *pass) noteMethod(mc *methodContext, rec Record) {
	m := mc.src
	diag.ReportNote(p.reporter, diag.InstrumentedMethod, m.NameSpan, m.QualifiedName(), ir.PrintMethod(mc.dst)).Emit()
	diag.ReportNote(p.reporter, diag.ConditionChecks, m.NameSpan, m.QualifiedName(),
		strconv.Itoa(rec.Pre), strconv.Itoa(rec.Post), strconv.Itoa(rec.Inv)).Emit()
}

func (p *pass) noteClass(cc *classContext, done int) {
	c := cc.src
	if done > 0 {
		diag.ReportNote(p.reporter, diag.InstrumentedClass, c.NameSpan, c.Name, strconv.Itoa(done)).Emit()
	}
	contracts := p.table.Contracts(c)
	names := make([]string, len(contracts))
	for i, k := range contracts {
		names[i] = k.Name
	}
	diag.ReportNote(p.reporter, diag.ContractInterfaces, c.NameSpan, c.Name, strings.Join(names, ", ")).Emit()
	for _, m := range c.Methods {
		if m.IsOldAccessor() {
			diag.ReportNote(p.reporter, diag.OverriddenOldMethod, m.NameSpan, c.Name).Emit()
		}
	}
}
