package model

import (
	"fmt"

	"github.com/vk/optlang/internal/opterr"
	"github.com/vk/optlang/internal/poly"
)

// DeclareConstraint appends one constraint row. The name (plus optional
// index tuple for generator-expanded families) must be unique among rows
// after sanitization; a collision between distinct raw names is an
// error. Rows and variable columns are separate LP namespaces, so a row
// may share its name with a column.
func (m *Model) DeclareConstraint(name string, index []string, left *poly.Polynomial, op Op, right *poly.Polynomial) error {
	raw := RawName(name, index)
	clean := m.sanitized(name, index)
	if prior, taken := m.rowNames[clean]; taken {
		if prior == raw {
			return &opterr.ModelError{
				Detail: fmt.Sprintf("constraint %q declared twice", raw),
			}
		}
		return &opterr.ModelError{
			Detail: fmt.Sprintf("sanitized name %q collides: %s vs %s", clean, prior, raw),
		}
	}
	m.rowNames[clean] = raw
	m.constraints = append(m.constraints, &Constraint{
		Name:    clean,
		RawName: raw,
		Left:    left.Clone(),
		Op:      op,
		Right:   right.Clone(),
	})
	return nil
}

// SetObjective installs the objective on the declarative path: a second
// call is a hard error.
func (m *Model) SetObjective(p *poly.Polynomial, dir Direction) error {
	if m.objective != nil {
		return &opterr.ModelError{
			Detail: "objective already set; a model has at most one objective",
		}
	}
	m.objective = &Objective{Expr: p.Clone(), Direction: dir}
	return nil
}

// ReplaceObjective installs the objective on the imperative path: an
// existing objective is replaced with a warning rather than an error.
// The asymmetry with SetObjective is deliberate and load-bearing.
func (m *Model) ReplaceObjective(p *poly.Polynomial, dir Direction) {
	if m.objective != nil {
		m.logger.Warn("replacing previously set objective")
	}
	m.objective = &Objective{Expr: p.Clone(), Direction: dir}
}
