// Package linearize rewrites nonlinear operators into auxiliary
// variables plus linear constraints that are equivalent over the
// operands' declared domains.
//
// Big-M constants are derived from the operands' bound intervals, never
// from a fixed global constant; an operand whose interval is unbounded
// where a big-M is required makes exact linearization impossible and is a
// hard UnboundedLinearizationError, not a best-effort approximation.
//
// The Abs rewrite is the convex epigraph (a >= e, a >= -e, a >= 0). It is
// exact at the optimum of minimization contexts; a caller placing an
// absolute value where larger-is-better would be rewarded should be aware
// the auxiliary may overshoot.
package linearize

import (
	"fmt"
	"math"
	"sort"

	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/model"
	"github.com/vk/optlang/internal/opterr"
	"github.com/vk/optlang/internal/poly"
)

// ReduceFunc folds an operand subtree into a polynomial, recursing
// through the full pipeline (expansion, nested linearization, constant
// evaluation). The compiler supplies it.
type ReduceFunc func(expr.Node) (*poly.Polynomial, error)

// Engine rewrites nonlinear nodes against a model, declaring the
// auxiliary variables and constraint rows it introduces.
type Engine struct {
	m      *model.Model
	reduce ReduceFunc
}

// New returns an engine writing auxiliaries into m.
func New(m *model.Model, reduce ReduceFunc) *Engine {
	return &Engine{m: m, reduce: reduce}
}

// Linearize rewrites one supported nonlinear node and returns the
// polynomial standing in for it (usually a single auxiliary variable).
func (en *Engine) Linearize(n expr.Node) (*poly.Polynomial, error) {
	switch e := n.(type) {
	case *expr.Abs:
		return en.abs(e)
	case *expr.Max:
		return en.extremum("max", e.Args, true)
	case *expr.Min:
		return en.extremum("min", e.Args, false)
	case *expr.And:
		return en.conjunction(e.Args)
	case *expr.Or:
		return en.disjunction(e.Args)
	case *expr.IfThenElse:
		return en.ifThenElse(e)
	case *expr.PiecewiseLinear:
		return en.piecewise(e)
	}
	return nil, fmt.Errorf("linearize: unsupported node %s", expr.Sprint(n))
}

// abs introduces a non-negative auxiliary a with a >= e and a >= -e.
func (en *Engine) abs(e *expr.Abs) (*poly.Polynomial, error) {
	p, err := en.reduce(e.Expr)
	if err != nil {
		return nil, err
	}
	zero := 0.0
	aux, auxPoly, err := en.declareAux("abs", model.Continuous, model.Bounds{Lower: &zero})
	if err != nil {
		return nil, err
	}

	// a - e >= 0 and a + e >= 0.
	pos := auxPoly.Clone()
	pos.Sub(p)
	if err := en.row(aux+"_pos", pos, model.OpGe, 0); err != nil {
		return nil, err
	}
	neg := auxPoly.Clone()
	neg.Add(p)
	if err := en.row(aux+"_neg", neg, model.OpGe, 0); err != nil {
		return nil, err
	}
	return auxPoly, nil
}

// extremum linearizes max (isMax) or min over two or more operands with
// one auxiliary, one binary selector per operand, a pick-exactly-one row,
// and big-M rows tying the auxiliary to the selected operand.
func (en *Engine) extremum(op string, args []expr.Node, isMax bool) (*poly.Polynomial, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("linearize: %s needs at least two operands, got %d", op, len(args))
	}
	polys := make([]*poly.Polynomial, len(args))
	los := make([]float64, len(args))
	his := make([]float64, len(args))
	for i, a := range args {
		p, err := en.reduce(a)
		if err != nil {
			return nil, err
		}
		lo, hi, err := en.interval(p)
		if err != nil {
			return nil, err
		}
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return nil, &opterr.UnboundedLinearizationError{
				Op:     op,
				Detail: fmt.Sprintf("operand %s has unbounded range [%v, %v]; big-M cannot be sized", expr.Sprint(a), lo, hi),
			}
		}
		polys[i], los[i], his[i] = p, lo, hi
	}

	auxLo, auxHi := los[0], his[0]
	for i := 1; i < len(args); i++ {
		if isMax {
			auxLo, auxHi = math.Max(auxLo, los[i]), math.Max(auxHi, his[i])
		} else {
			auxLo, auxHi = math.Min(auxLo, los[i]), math.Min(auxHi, his[i])
		}
	}
	aux, auxPoly, err := en.declareAux(op, model.Continuous, model.Bounds{Lower: &auxLo, Upper: &auxHi})
	if err != nil {
		return nil, err
	}

	pick := poly.New()
	for i, p := range polys {
		_, selPoly, err := en.declareAux(aux+"_sel", model.Binary, model.Bounds{})
		if err != nil {
			return nil, err
		}
		pick.Add(selPoly)

		if isMax {
			// z >= p_i always; z <= p_i + M_i (1 - s_i).
			dom := auxPoly.Clone()
			dom.Sub(p)
			if err := en.row(fmt.Sprintf("%s_ge%d", aux, i+1), dom, model.OpGe, 0); err != nil {
				return nil, err
			}
			bigM := math.Max(maxOf(his)-los[i], 0)
			tie := auxPoly.Clone()
			tie.Sub(p)
			tie.Add(scaled(selPoly, bigM))
			if err := en.row(fmt.Sprintf("%s_le%d", aux, i+1), tie, model.OpLe, bigM); err != nil {
				return nil, err
			}
		} else {
			// z <= p_i always; z >= p_i - M_i (1 - s_i).
			dom := auxPoly.Clone()
			dom.Sub(p)
			if err := en.row(fmt.Sprintf("%s_le%d", aux, i+1), dom, model.OpLe, 0); err != nil {
				return nil, err
			}
			bigM := math.Max(his[i]-minOf(los), 0)
			tie := auxPoly.Clone()
			tie.Sub(p)
			tie.Sub(scaled(selPoly, bigM))
			if err := en.row(fmt.Sprintf("%s_ge%d", aux, i+1), tie, model.OpGe, -bigM); err != nil {
				return nil, err
			}
		}
	}
	if err := en.row(aux+"_pick", pick, model.OpEq, 1); err != nil {
		return nil, err
	}
	return auxPoly, nil
}

// conjunction emits the standard AND reformulation over binary-valued
// operands: y <= x_i for every operand, y >= sum(x_i) - (n-1).
func (en *Engine) conjunction(args []expr.Node) (*poly.Polynomial, error) {
	polys, err := en.binaryOperands("and", args)
	if err != nil {
		return nil, err
	}
	aux, auxPoly, err := en.declareAux("and", model.Binary, model.Bounds{})
	if err != nil {
		return nil, err
	}
	total := poly.New()
	for i, p := range polys {
		row := auxPoly.Clone()
		row.Sub(p)
		if err := en.row(fmt.Sprintf("%s_le%d", aux, i+1), row, model.OpLe, 0); err != nil {
			return nil, err
		}
		total.Add(p)
	}
	floor := auxPoly.Clone()
	floor.Sub(total)
	if err := en.row(aux+"_ge_sum", floor, model.OpGe, float64(1-len(args))); err != nil {
		return nil, err
	}
	return auxPoly, nil
}

// disjunction emits the standard OR reformulation over binary-valued
// operands: y >= x_i for every operand, y <= sum(x_i).
func (en *Engine) disjunction(args []expr.Node) (*poly.Polynomial, error) {
	polys, err := en.binaryOperands("or", args)
	if err != nil {
		return nil, err
	}
	aux, auxPoly, err := en.declareAux("or", model.Binary, model.Bounds{})
	if err != nil {
		return nil, err
	}
	total := poly.New()
	for i, p := range polys {
		row := auxPoly.Clone()
		row.Sub(p)
		if err := en.row(fmt.Sprintf("%s_ge%d", aux, i+1), row, model.OpGe, 0); err != nil {
			return nil, err
		}
		total.Add(p)
	}
	ceil := auxPoly.Clone()
	ceil.Sub(total)
	if err := en.row(aux+"_le_sum", ceil, model.OpLe, 0); err != nil {
		return nil, err
	}
	return auxPoly, nil
}

// ifThenElse gates the then/else branches by the binary condition with
// big-M indicator rows.
func (en *Engine) ifThenElse(e *expr.IfThenElse) (*poly.Polynomial, error) {
	cond, err := en.reduce(e.Cond)
	if err != nil {
		return nil, err
	}
	if err := en.requireBinaryValued("if condition", cond); err != nil {
		return nil, err
	}
	then, err := en.reduce(e.Then)
	if err != nil {
		return nil, err
	}
	els, err := en.reduce(e.Else)
	if err != nil {
		return nil, err
	}
	tLo, tHi, err := en.interval(then)
	if err != nil {
		return nil, err
	}
	eLo, eHi, err := en.interval(els)
	if err != nil {
		return nil, err
	}
	lo, hi := math.Min(tLo, eLo), math.Max(tHi, eHi)
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, &opterr.UnboundedLinearizationError{
			Op:     "if",
			Detail: "a branch has unbounded range; big-M cannot be sized",
		}
	}
	bigM := hi - lo

	aux, auxPoly, err := en.declareAux("ite", model.Continuous, model.Bounds{Lower: &lo, Upper: &hi})
	if err != nil {
		return nil, err
	}

	// cond = 1 forces r = then: r - then +/- M(1-cond) brackets zero.
	// cond = 0 forces r = else symmetrically.
	rows := []struct {
		name  string
		other *poly.Polynomial
		op    model.Op
		mSign float64 // sign on M*cond moved to the left side
		rhs   float64
	}{
		{aux + "_then_ub", then, model.OpLe, bigM, bigM},
		{aux + "_then_lb", then, model.OpGe, -bigM, -bigM},
		{aux + "_else_ub", els, model.OpLe, -bigM, 0},
		{aux + "_else_lb", els, model.OpGe, bigM, 0},
	}
	for _, r := range rows {
		row := auxPoly.Clone()
		row.Sub(r.other)
		row.Add(scaled(cond, r.mSign))
		if err := en.row(r.name, row, r.op, r.rhs); err != nil {
			return nil, err
		}
	}
	return auxPoly, nil
}

// piecewise emits the epigraph of the affine pieces: a >= s_j*e + c_j for
// every piece j. No big-M is involved, so unbounded operands are allowed.
func (en *Engine) piecewise(e *expr.PiecewiseLinear) (*poly.Polynomial, error) {
	if len(e.Slopes) == 0 || len(e.Slopes) != len(e.Intercepts) {
		return nil, fmt.Errorf("linearize: piecewise needs matching non-empty slopes and intercepts, got %d and %d", len(e.Slopes), len(e.Intercepts))
	}
	if len(e.Breakpoints) != len(e.Slopes)-1 {
		return nil, fmt.Errorf("linearize: piecewise over %d pieces needs %d breakpoints, got %d", len(e.Slopes), len(e.Slopes)-1, len(e.Breakpoints))
	}
	if !sort.Float64sAreSorted(e.Breakpoints) {
		return nil, fmt.Errorf("linearize: piecewise breakpoints must be ascending")
	}
	p, err := en.reduce(e.Expr)
	if err != nil {
		return nil, err
	}
	aux, auxPoly, err := en.declareAux("pwl", model.Continuous, model.Bounds{})
	if err != nil {
		return nil, err
	}
	for j := range e.Slopes {
		row := auxPoly.Clone()
		row.Sub(scaled(p, e.Slopes[j]))
		if err := en.row(fmt.Sprintf("%s_piece%d", aux, j+1), row, model.OpGe, e.Intercepts[j]); err != nil {
			return nil, err
		}
	}
	return auxPoly, nil
}
