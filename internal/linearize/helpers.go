package linearize

import (
	"fmt"
	"math"

	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/model"
	"github.com/vk/optlang/internal/opterr"
	"github.com/vk/optlang/internal/poly"
)

// declareAux registers a fresh scalar auxiliary variable and returns its
// name together with a unit polynomial over it.
func (en *Engine) declareAux(prefix string, kind model.Kind, bounds model.Bounds) (string, *poly.Polynomial, error) {
	name := en.m.FreshAux(prefix)
	if err := en.m.DeclareVariable(name, nil, kind, bounds); err != nil {
		return "", nil, err
	}
	key, _ := en.m.Instance(name, nil)
	p := poly.New()
	p.AddTerm(key, 1)
	return name, p, nil
}

// row declares one auxiliary constraint with a constant right-hand side.
func (en *Engine) row(name string, left *poly.Polynomial, op model.Op, rhs float64) error {
	return en.m.DeclareConstraint(name, nil, left, op, poly.Const(rhs))
}

// interval computes the reachable range of a polynomial from the declared
// bounds of its variables.
func (en *Engine) interval(p *poly.Polynomial) (lo, hi float64, err error) {
	lo, hi = p.Constant, p.Constant
	for _, t := range p.Terms() {
		vLo, vHi, ok := en.m.Bounds(t.Var)
		if !ok {
			return 0, 0, fmt.Errorf("linearize: no bounds recorded for %s", t.Var)
		}
		if t.Coef >= 0 {
			lo += t.Coef * vLo
			hi += t.Coef * vHi
		} else {
			lo += t.Coef * vHi
			hi += t.Coef * vLo
		}
	}
	return lo, hi, nil
}

// binaryOperands reduces logical operands and verifies each is
// binary-valued over its declared bounds.
func (en *Engine) binaryOperands(op string, args []expr.Node) ([]*poly.Polynomial, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("linearize: %s needs at least two operands, got %d", op, len(args))
	}
	polys := make([]*poly.Polynomial, len(args))
	for i, a := range args {
		p, err := en.reduce(a)
		if err != nil {
			return nil, err
		}
		if err := en.requireBinaryValued(fmt.Sprintf("%s operand %s", op, expr.Sprint(a)), p); err != nil {
			return nil, err
		}
		polys[i] = p
	}
	return polys, nil
}

// requireBinaryValued checks the polynomial's reachable range lies within
// [0, 1].
func (en *Engine) requireBinaryValued(what string, p *poly.Polynomial) error {
	lo, hi, err := en.interval(p)
	if err != nil {
		return err
	}
	if lo < 0 || hi > 1 || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return &opterr.NonLinearError{
			Detail: fmt.Sprintf("%s is not binary-valued (range [%v, %v])", what, lo, hi),
		}
	}
	return nil
}

// scaled returns k times p without mutating p.
func scaled(p *poly.Polynomial, k float64) *poly.Polynomial {
	q := p.Clone()
	q.Scale(k)
	return q
}

func maxOf(xs []float64) float64 {
	acc := math.Inf(-1)
	for _, x := range xs {
		acc = math.Max(acc, x)
	}
	return acc
}

func minOf(xs []float64) float64 {
	acc := math.Inf(1)
	for _, x := range xs {
		acc = math.Min(acc, x)
	}
	return acc
}
