// Package compile orchestrates the expression-compilation pipeline:
// constant folding, generator enumeration, wildcard expansion,
// linearization of nonlinear operators, and polynomial construction,
// committing the results through the model assembler.
//
// Compiling one declaration is atomic: the compiler snapshots the model
// before touching it and restores the snapshot if any step fails, so a
// failed constraint never leaves behind the auxiliary variables or rows
// its partial linearization introduced.
package compile

import (
	"fmt"

	"github.com/vk/optlang/internal/binding"
	"github.com/vk/optlang/internal/eval"
	"github.com/vk/optlang/internal/expand"
	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/linearize"
	"github.com/vk/optlang/internal/model"
	"github.com/vk/optlang/internal/opterr"
	"github.com/vk/optlang/internal/poly"
	"github.com/zclconf/go-cty/cty"
)

// Compiler threads one model and one constant-data table through the
// pipeline stages. It is single-threaded and synchronous; the model is
// the only state it mutates.
type Compiler struct {
	m  *model.Model
	ev *eval.Evaluator
}

// New returns a compiler appending to m and reading constants through ev.
func New(m *model.Model, ev *eval.Evaluator) *Compiler {
	return &Compiler{m: m, ev: ev}
}

// Model returns the model under assembly.
func (c *Compiler) Model() *model.Model {
	return c.m
}

// DeclareVariable evaluates the per-position index-domain expressions and
// registers the family. A nil domain list declares a scalar.
func (c *Compiler) DeclareVariable(name string, domainExprs []expr.Node, kind model.Kind, bounds model.Bounds, b *binding.Context) error {
	domains := make([][]cty.Value, len(domainExprs))
	for i, de := range domainExprs {
		seq, err := c.ev.Sequence(de, b)
		if err != nil {
			return fmt.Errorf("variable %q, index position %d: %w", name, i+1, err)
		}
		domains[i] = seq
	}
	return c.m.DeclareVariable(name, domains, kind, bounds)
}

// CompileConstraint compiles one constraint declaration. With generator
// clauses it emits one row per binding tuple, named name(v1,v2,...) from
// the bound values in clause order; without clauses it emits a single
// row under the bare name. The whole declaration commits or rolls back
// as a unit.
func (c *Compiler) CompileConstraint(name string, clauses []expr.Clause, body expr.Node, b *binding.Context) error {
	snap := c.m.Snapshot()
	err := c.compileConstraint(name, clauses, body, b)
	if err != nil {
		c.m.Restore(snap)
	}
	return err
}

func (c *Compiler) compileConstraint(name string, clauses []expr.Clause, body expr.Node, b *binding.Context) error {
	if len(clauses) == 0 {
		return c.compileRow(name, nil, body, b)
	}
	for bound, err := range binding.Enumerate(clauses, b, c.ev) {
		if err != nil {
			return fmt.Errorf("constraint %q: %w", name, err)
		}
		index := boundIndex(clauses, bound)
		if err := c.compileRow(name, index, body, bound); err != nil {
			return err
		}
	}
	return nil
}

// compileRow reduces one comparison to two polynomials and declares it.
func (c *Compiler) compileRow(name string, index []string, body expr.Node, b *binding.Context) error {
	cmp, ok := body.(*expr.Comparison)
	if !ok {
		return &opterr.ModelError{
			Detail: fmt.Sprintf("constraint %q: expression %s is not a comparison", name, expr.Sprint(body)),
		}
	}
	op, err := constraintOp(name, cmp.Op)
	if err != nil {
		return err
	}
	left, err := c.Reduce(cmp.Left, b)
	if err != nil {
		return fmt.Errorf("constraint %q: %w", model.RawName(name, index), err)
	}
	right, err := c.Reduce(cmp.Right, b)
	if err != nil {
		return fmt.Errorf("constraint %q: %w", model.RawName(name, index), err)
	}
	return c.m.DeclareConstraint(name, index, left, op, right)
}

// CompileObjective compiles the objective expression. The declarative
// path fails on a duplicate objective; the imperative path warns and
// replaces. Both roll back cleanly on a reduction error.
func (c *Compiler) CompileObjective(n expr.Node, dir model.Direction, b *binding.Context, declarative bool) error {
	snap := c.m.Snapshot()
	p, err := c.Reduce(n, b)
	if err != nil {
		c.m.Restore(snap)
		return fmt.Errorf("objective: %w", err)
	}
	if declarative {
		if err := c.m.SetObjective(p, dir); err != nil {
			c.m.Restore(snap)
			return err
		}
		return nil
	}
	c.m.ReplaceObjective(p, dir)
	return nil
}

// Reduce folds an expression to a polynomial, running every pipeline
// stage the subtree needs.
func (c *Compiler) Reduce(n expr.Node, b *binding.Context) (*poly.Polynomial, error) {
	folded, err := c.ev.Fold(n, b)
	if err != nil {
		return nil, err
	}

	switch e := folded.(type) {
	case *expr.GeneratorSum:
		total := poly.New()
		for bound, err := range binding.Enumerate(e.Clauses, b, c.ev) {
			if err != nil {
				return nil, err
			}
			q, err := c.Reduce(e.Body, bound)
			if err != nil {
				return nil, err
			}
			total.Add(q)
		}
		return total, nil

	case *expr.Sum:
		total := poly.New()
		for _, a := range e.Args {
			q, err := c.Reduce(a, b)
			if err != nil {
				return nil, err
			}
			total.Add(q)
		}
		return total, nil

	case *expr.Abs, *expr.IfThenElse, *expr.PiecewiseLinear:
		return c.engine(b).Linearize(folded)

	case *expr.Max:
		args, err := c.flattenPatterns(e.Args, b)
		if err != nil {
			return nil, err
		}
		// A pattern over a one-element domain leaves a single operand;
		// the extremum of one thing is the thing itself.
		if len(args) == 1 {
			return c.Reduce(args[0], b)
		}
		return c.engine(b).Linearize(&expr.Max{Args: args})

	case *expr.Min:
		args, err := c.flattenPatterns(e.Args, b)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return c.Reduce(args[0], b)
		}
		return c.engine(b).Linearize(&expr.Min{Args: args})

	case *expr.And:
		args, err := c.flattenPatterns(e.Args, b)
		if err != nil {
			return nil, err
		}
		return c.engine(b).Linearize(&expr.And{Args: args})

	case *expr.Or:
		args, err := c.flattenPatterns(e.Args, b)
		if err != nil {
			return nil, err
		}
		return c.engine(b).Linearize(&expr.Or{Args: args})

	case *expr.PatternSet:
		// A pattern outside an operator argument list denotes the sum
		// over its instances, the same as any other wildcarded subtree.
		return c.expandAndSum(e.Pattern, b)

	case *expr.BinaryOp:
		return c.reduceBinary(e, b)
	}

	if expr.ContainsWildcard(folded) {
		return c.expandAndSum(folded, b)
	}
	return poly.Build(folded, c.m)
}

// reduceBinary recurses through arithmetic so that nonlinear operators
// and wildcarded subtrees nested under +, -, *, / reach their own
// pipeline stages instead of falling into the polynomial builder raw.
// Each operand expands its own wildcards, so a non-wildcarded sibling
// contributes exactly once; a product whose two sides both carry
// wildcards is the exception and expands as one unit, because the
// wildcards share roles across the operand boundary
// (qty["*"] * cost["*"] iterates in lockstep).
func (c *Compiler) reduceBinary(e *expr.BinaryOp, b *binding.Context) (*poly.Polynomial, error) {
	if (e.Op == expr.OpMul || e.Op == expr.OpDiv) &&
		expr.ContainsWildcard(e.Left) && expr.ContainsWildcard(e.Right) {
		return c.expandAndSum(e, b)
	}
	l, err := c.Reduce(e.Left, b)
	if err != nil {
		return nil, err
	}
	r, err := c.Reduce(e.Right, b)
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
				Detail: "product of two variable-bearing expressions: " + expr.Sprint(e),
			}
		}
	case expr.OpDiv:
		if !r.IsConstant() {
			return nil, &opterr.NonLinearError{
				Detail: "division by a variable-bearing expression: " + expr.Sprint(e),
			}
		}
		if r.Constant == 0 {
			return nil, fmt.Errorf("division by zero: %s", expr.Sprint(e))
		}
		l.Scale(1 / r.Constant)
		return l, nil
	}
	return nil, fmt.Errorf("unknown operator in %s", expr.Sprint(e))
}

// expandAndSum expands a wildcarded subtree and sums the instances.
func (c *Compiler) expandAndSum(n expr.Node, b *binding.Context) (*poly.Polynomial, error) {
	instances, expanded, err := expand.Expand(n, c.m)
	if err != nil {
		return nil, err
	}
	if !expanded {
		return poly.Build(n, c.m)
	}
	total := poly.New()
	for _, inst := range instances {
		q, err := c.Reduce(inst, b)
		if err != nil {
			return nil, err
		}
		total.Add(q)
	}
	return total, nil
}

// flattenPatterns replaces PatternSet arguments (and bare wildcarded
// arguments) with their expanded instance lists, so the operator applies
// across the instances rather than their sum.
func (c *Compiler) flattenPatterns(args []expr.Node, b *binding.Context) ([]expr.Node, error) {
	out := make([]expr.Node, 0, len(args))
	for _, a := range args {
		pattern := a
		if ps, ok := a.(*expr.PatternSet); ok {
			pattern = ps.Pattern
		}
		instances, expanded, err := expand.Expand(pattern, c.m)
		if err != nil {
			return nil, err
		}
		if !expanded {
			out = append(out, pattern)
			continue
		}
		out = append(out, instances...)
	}
	return out, nil
}

// engine builds a linearization engine whose operand reduction recurses
// through this compiler under the current binding.
func (c *Compiler) engine(b *binding.Context) *linearize.Engine {
	return linearize.New(c.m, func(n expr.Node) (*poly.Polynomial, error) {
		return c.Reduce(n, b)
	})
}

// boundIndex renders the bound values of the named clauses, in clause
// order, as the constraint's index tuple.
func boundIndex(clauses []expr.Clause, bound *binding.Context) []string {
	var index []string
	for _, cl := range clauses {
		if cl.Name == "" {
			continue
		}
		if v, ok := bound.Lookup(cl.Name); ok {
			index = append(index, eval.KeyText(v))
		}
	}
	return index
}

// constraintOp maps a comparison operator to a constraint relation.
// Strict inequalities have no exact linear-programming form and compile
// to their non-strict counterparts; disequality is rejected.
func constraintOp(name string, op expr.CmpOp) (model.Op, error) {
	switch op {
	case expr.CmpEq:
		return model.OpEq, nil
	case expr.CmpLe, expr.CmpLt:
		return model.OpLe, nil
	case expr.CmpGe, expr.CmpGt:
		return model.OpGe, nil
	}
	return 0, &opterr.ModelError{
		Detail: fmt.Sprintf("constraint %q: != is not representable as a linear constraint", name),
	}
}
