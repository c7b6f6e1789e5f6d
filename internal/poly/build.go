package poly

import (
	"fmt"

	"github.com/vk/optlang/internal/eval"
	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/opterr"
)

// Instances resolves a fully concrete variable reference to its canonical
// instance key. The model registry implements it.
type Instances interface {
	Instance(family string, index []string) (string, bool)
}

// Build folds a concrete expression tree into a polynomial. Every leaf
// must be a numeric Literal or a VariableRef with Literal indices; the
// expander and constant evaluator run before this point.
func Build(n expr.Node, inst Instances) (*Polynomial, error) {
	switch e := n.(type) {
	case *expr.Literal:
		f, err := eval.Float(e.Val)
		if err != nil {
			return nil, fmt.Errorf("literal %s: %w", expr.Sprint(n), err)
		}
		return Const(f), nil

	case *expr.VariableRef:
		index := make([]string, len(e.Indices))
		for i, idx := range e.Indices {
			lit, ok := idx.(*expr.Literal)
			if !ok {
				return nil, &opterr.NonLinearError{
					Detail: fmt.Sprintf("index %d of %s is unresolved: %s", i, e.Name, expr.Sprint(idx)),
				}
			}
			index[i] = eval.KeyText(lit.Val)
		}
		key, ok := inst.Instance(e.Name, index)
		if !ok {
			return nil, &opterr.ModelError{
				Detail: fmt.Sprintf("reference to undeclared variable instance %s", expr.Sprint(e)),
			}
		}
		p := New()
		p.AddTerm(key, 1)
		return p, nil

	case *expr.Sum:
		p := New()
		for _, a := range e.Args {
			q, err := Build(a, inst)
			if err != nil {
				return nil, err
			}
			p.Add(q)
		}
		return p, nil

	case *expr.BinaryOp:
		l, err := Build(e.Left, inst)
		if err != nil {
			return nil, err
		}
		r, err := Build(e.Right, inst)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case expr.OpAdd:
			l.Add(r)
			return l, nil
		case expr.OpSub:
			l.Sub(r)
			return l, nil
		case expr.OpMul:
			switch {
			case l.IsConstant():
				r.Scale(l.Constant)
				return r, nil
			case r.IsConstant():
				l.Scale(r.Constant)
				return l, nil
			default:
				return nil, &opterr.NonLinearError{
					Detail: "product of two variable-bearing expressions: " + expr.Sprint(n),
				}
			}
		case expr.OpDiv:
			if !r.IsConstant() {
				return nil, &opterr.NonLinearError{
					Detail: "division by a variable-bearing expression: " + expr.Sprint(n),
				}
			}
			if r.Constant == 0 {
				return nil, fmt.Errorf("division by zero: %s", expr.Sprint(n))
			}
			l.Scale(1 / r.Constant)
			return l, nil
		}
		return nil, fmt.Errorf("unknown operator in %s", expr.Sprint(n))
	}

	return nil, &opterr.NonLinearError{
		Detail: fmt.Sprintf("%s cannot be reduced to linear form; the linearization engine handles this operator upstream", expr.Sprint(n)),
	}
}
