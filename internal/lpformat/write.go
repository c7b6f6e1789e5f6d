// Package lpformat emits a compiled model in the CPLEX-LP-style text
// format consumed by external solvers. Emission order follows the
// model's registries exactly, so identical inputs always produce
// byte-identical output.
package lpformat

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vk/optlang/internal/model"
	"github.com/vk/optlang/internal/poly"
)

// Write renders the model to w.
func Write(w io.Writer, m *model.Model) error {
	var b strings.Builder

	obj, hasObj := m.Objective()
	if hasObj {
		b.WriteString(obj.Direction.String())
		b.WriteByte('\n')
		b.WriteString(" obj:")
		writeTerms(&b, m, obj.Expr, obj.Expr.Constant)
		b.WriteByte('\n')
	} else {
		b.WriteString("Minimize\n obj:\n")
	}

	b.WriteString("Subject To\n")
	for _, c := range m.Constraints() {
		diff := c.Left.Clone()
		diff.Sub(c.Right)
		rhs := -diff.Constant
		b.WriteByte(' ')
		b.WriteString(c.Name)
		b.WriteByte(':')
		writeTerms(&b, m, diff, 0)
		fmt.Fprintf(&b, " %s %s\n", c.Op, num(rhs))
	}

	var boundLines, generals, binaries []string
	for _, inst := range m.Instances() {
		switch inst.Kind {
		case model.Binary:
			binaries = append(binaries, inst.Name)
			continue
		case model.Integer:
			generals = append(generals, inst.Name)
		}
		if line, ok := boundLine(inst); ok {
			boundLines = append(boundLines, line)
		}
	}
	if len(boundLines) > 0 {
		b.WriteString("Bounds\n")
		for _, line := range boundLines {
			b.WriteByte(' ')
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if len(generals) > 0 {
		b.WriteString("Generals\n")
		for _, name := range generals {
			b.WriteByte(' ')
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}
	if len(binaries) > 0 {
		b.WriteString("Binaries\n")
		for _, name := range binaries {
			b.WriteByte(' ')
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}
	b.WriteString("End\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeTerms renders the variable terms of a polynomial plus an optional
// trailing constant, in registry term order.
func writeTerms(b *strings.Builder, m *model.Model, p *poly.Polynomial, constant float64) {
	first := true
	for _, t := range p.Terms() {
		name := t.Var
		if inst, ok := m.Lookup(t.Var); ok {
			name = inst.Name
		}
		coef := t.Coef
		switch {
		case coef < 0:
			b.WriteString(" - ")
			coef = -coef
		case first:
			b.WriteByte(' ')
		default:
			b.WriteString(" + ")
		}
		if coef != 1 {
			b.WriteString(num(coef))
			b.WriteByte(' ')
		}
		b.WriteString(name)
		first = false
	}
	if constant != 0 {
		if constant < 0 {
			b.WriteString(" - ")
			b.WriteString(num(-constant))
		} else {
			b.WriteString(" + ")
			b.WriteString(num(constant))
		}
	}
}

// boundLine renders one Bounds-section entry, reporting false when the
// default bounds (zero to plus infinity) make the line unnecessary.
func boundLine(inst *model.Instance) (string, bool) {
	lo, hi := inst.Lower, inst.Upper
	negInf, posInf := math.IsInf(lo, -1), math.IsInf(hi, 1)
	switch {
	case lo == 0 && posInf:
		return "", false
	case negInf && posInf:
		return inst.Name + " free", true
	case negInf:
		return fmt.Sprintf("%s <= %s", inst.Name, num(hi)), true
	case posInf:
		return fmt.Sprintf("%s >= %s", inst.Name, num(lo)), true
	default:
		return fmt.Sprintf("%s <= %s <= %s", num(lo), inst.Name, num(hi)), true
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
