package eval

import (
	"fmt"
	"math"

	"github.com/vk/optlang/internal/binding"
	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/opterr"
	"github.com/zclconf/go-cty/cty"
)

// Evaluator reduces constant subtrees to values against an immutable
// params table. The zero params table is cty.EmptyObjectVal.
type Evaluator struct {
	params cty.Value
}

// New returns an evaluator over the given constant-data table. Passing
// cty.NilVal is allowed and behaves as an empty table.
func New(params cty.Value) *Evaluator {
	if params == cty.NilVal {
		params = cty.EmptyObjectVal
	}
	return &Evaluator{params: params}
}

// Params returns the constant-data table the evaluator reads from.
func (ev *Evaluator) Params() cty.Value {
	return ev.params
}

// Value strictly evaluates a fully constant subtree to a single value.
// Any decision-variable reference or wildcard token inside n is an error.
func (ev *Evaluator) Value(n expr.Node, b *binding.Context) (cty.Value, error) {
	if b == nil {
		b = binding.NewContext()
	}
	switch e := n.(type) {
	case *expr.Literal:
		return e.Val, nil

	case *expr.SymbolicKey:
		if v, ok := b.Lookup(e.Name); ok {
			return v, nil
		}
		if v, ok := ev.rootParam(e.Name); ok {
			return v, nil
		}
		return cty.NilVal, &opterr.UnboundSymbolError{Name: e.Name}

	case *expr.Wildcard:
		return cty.NilVal, &opterr.AmbiguousWildcardError{
			Detail: "wildcard reached constant evaluation without being expanded",
		}

	case *expr.Lookup:
		container, err := ev.Value(e.Container, b)
		if err != nil {
			return cty.NilVal, err
		}
		key, err := ev.lookupKey(e.Key, b)
		if err != nil {
			return cty.NilVal, err
		}
		return indexContainer(container, key, expr.Sprint(e.Container))

	case *expr.BinaryOp:
		l, err := ev.number(e.Left, b)
		if err != nil {
			return cty.NilVal, err
		}
		r, err := ev.number(e.Right, b)
		if err != nil {
			return cty.NilVal, err
		}
		switch e.Op {
		case expr.OpAdd:
			return cty.NumberFloatVal(l + r), nil
		case expr.OpSub:
			return cty.NumberFloatVal(l - r), nil
		case expr.OpMul:
			return cty.NumberFloatVal(l * r), nil
		case expr.OpDiv:
			if r == 0 {
				return cty.NilVal, fmt.Errorf("division by zero in %s", expr.Sprint(n))
			}
			return cty.NumberFloatVal(l / r), nil
		}
		return cty.NilVal, fmt.Errorf("unknown arithmetic operator in %s", expr.Sprint(n))

	case *expr.Comparison:
		return ev.compare(e, b)

	case *expr.Sum:
		total := 0.0
		for _, a := range e.Args {
			f, err := ev.number(a, b)
			if err != nil {
				return cty.NilVal, err
			}
			total += f
		}
		return cty.NumberFloatVal(total), nil

	case *expr.GeneratorSum:
		total := 0.0
		for bound, err := range binding.Enumerate(e.Clauses, b, ev) {
			if err != nil {
				return cty.NilVal, err
			}
			f, err := ev.number(e.Body, bound)
			if err != nil {
				return cty.NilVal, err
			}
			total += f
		}
		return cty.NumberFloatVal(total), nil

	case *expr.Abs:
		f, err := ev.number(e.Expr, b)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.NumberFloatVal(math.Abs(f)), nil

	case *expr.Max:
		return ev.extremum(e.Args, b, math.Max, math.Inf(-1))

	case *expr.Min:
		return ev.extremum(e.Args, b, math.Min, math.Inf(1))

	case *expr.And:
		for _, a := range e.Args {
			v, err := ev.boolean(a, b)
			if err != nil {
				return cty.NilVal, err
			}
			if !v {
				return cty.False, nil
			}
		}
		return cty.True, nil

	case *expr.Or:
		for _, a := range e.Args {
			v, err := ev.boolean(a, b)
			if err != nil {
				return cty.NilVal, err
			}
			if v {
				return cty.True, nil
			}
		}
		return cty.False, nil

	case *expr.IfThenElse:
		cond, err := ev.boolean(e.Cond, b)
		if err != nil {
			return cty.NilVal, err
		}
		if cond {
			return ev.Value(e.Then, b)
		}
		return ev.Value(e.Else, b)

	case *expr.Tuple:
		elems := make([]cty.Value, 0, len(e.Elems))
		for _, el := range e.Elems {
			v, err := ev.Value(el, b)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil

	case *expr.Range:
		seq, err := ev.rangeSequence(e, b)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.TupleVal(seq), nil

	case *expr.VariableRef:
		return cty.NilVal, fmt.Errorf("%s references decision variable %q and is not a compile-time constant", expr.Sprint(n), e.Name)
	}
	return cty.NilVal, fmt.Errorf("cannot evaluate %s as a constant", expr.Sprint(n))
}

// Sequence reduces a domain expression to a finite ordered sequence of
// values, failing with DomainError when that is impossible.
func (ev *Evaluator) Sequence(n expr.Node, b *binding.Context) ([]cty.Value, error) {
	switch e := n.(type) {
	case *expr.Range:
		return ev.rangeSequence(e, b)
	case *expr.Tuple:
		elems := make([]cty.Value, 0, len(e.Elems))
		for _, el := range e.Elems {
			v, err := ev.Value(el, b)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return elems, nil
	}

	v, err := ev.Value(n, b)
	if err != nil {
		return nil, err
	}
	if !v.Type().IsTupleType() && !v.Type().IsListType() && !v.Type().IsSetType() {
		return nil, &opterr.DomainError{
			Reason: fmt.Sprintf("expression %s evaluates to %s, not a finite ordered sequence", expr.Sprint(n), v.Type().FriendlyName()),
		}
	}
	var elems []cty.Value
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		elems = append(elems, el)
	}
	return elems, nil
}

// BindingValue resolves a bare index symbol through the binding context
// only. The params fallback is deliberately absent here: an unbound
// generator name in a variable index must fail loudly, never resolve to
// a coincidentally named constant.
func (ev *Evaluator) BindingValue(name string, b *binding.Context) (cty.Value, error) {
	if b != nil {
		if v, ok := b.Lookup(name); ok {
			return v, nil
		}
	}
	return cty.NilVal, &opterr.UnboundSymbolError{Name: name}
}

// rootParam resolves a top-level name in the params table.
func (ev *Evaluator) rootParam(name string) (cty.Value, bool) {
	t := ev.params.Type()
	switch {
	case t.IsObjectType():
		if t.HasAttribute(name) {
			return ev.params.GetAttr(name), true
		}
	case t.IsMapType():
		key := cty.StringVal(name)
		if ev.params.HasIndex(key).True() {
			return ev.params.Index(key), true
		}
	}
	return cty.NilVal, false
}

// lookupKey resolves a lookup-chain key: bound generator name first, then
// the symbol's text as a literal string key.
func (ev *Evaluator) lookupKey(key expr.Node, b *binding.Context) (cty.Value, error) {
	if sym, ok := key.(*expr.SymbolicKey); ok {
		if v, ok := b.Lookup(sym.Name); ok {
			return v, nil
		}
		return cty.StringVal(sym.Name), nil
	}
	return ev.Value(key, b)
}

func (ev *Evaluator) rangeSequence(e *expr.Range, b *binding.Context) ([]cty.Value, error) {
	lo, err := ev.wholeNumber(e.Lo, b)
	if err != nil {
		return nil, err
	}
	hi, err := ev.wholeNumber(e.Hi, b)
	if err != nil {
		return nil, err
	}
	var elems []cty.Value
	for i := lo; i <= hi; i++ {
		elems = append(elems, cty.NumberIntVal(i))
	}
	return elems, nil
}

func (ev *Evaluator) number(n expr.Node, b *binding.Context) (float64, error) {
	v, err := ev.Value(n, b)
	if err != nil {
		return 0, err
	}
	return Float(v)
}

func (ev *Evaluator) wholeNumber(n expr.Node, b *binding.Context) (int64, error) {
	f, err := ev.number(n, b)
	if err != nil {
		return 0, err
	}
	i := int64(f)
	if float64(i) != f {
		return 0, &opterr.DomainError{
			Reason: fmt.Sprintf("range endpoint %s is not a whole number", expr.Sprint(n)),
		}
	}
	return i, nil
}

func (ev *Evaluator) boolean(n expr.Node, b *binding.Context) (bool, error) {
	v, err := ev.Value(n, b)
	if err != nil {
		return false, err
	}
	if v.Type() != cty.Bool {
		return false, fmt.Errorf("%s evaluates to %s, expected a boolean", expr.Sprint(n), v.Type().FriendlyName())
	}
	return v.True(), nil
}

func (ev *Evaluator) extremum(args []expr.Node, b *binding.Context, pick func(float64, float64) float64, seed float64) (cty.Value, error) {
	if len(args) == 0 {
		return cty.NilVal, fmt.Errorf("extremum over zero operands")
	}
	acc := seed
	for _, a := range args {
		f, err := ev.number(a, b)
		if err != nil {
			return cty.NilVal, err
		}
		acc = pick(acc, f)
	}
	return cty.NumberFloatVal(acc), nil
}

func (ev *Evaluator) compare(e *expr.Comparison, b *binding.Context) (cty.Value, error) {
	l, err := ev.Value(e.Left, b)
	if err != nil {
		return cty.NilVal, err
	}
	r, err := ev.Value(e.Right, b)
	if err != nil {
		return cty.NilVal, err
	}

	switch e.Op {
	case expr.CmpEq:
		return cty.BoolVal(l.Equals(r).True()), nil
	case expr.CmpNe:
		return cty.BoolVal(!l.Equals(r).True()), nil
	}

	// Ordering comparisons: numeric, or lexicographic for strings.
	if l.Type() == cty.String && r.Type() == cty.String {
		ls, rs := l.AsString(), r.AsString()
		switch e.Op {
		case expr.CmpLe:
			return cty.BoolVal(ls <= rs), nil
		case expr.CmpGe:
			return cty.BoolVal(ls >= rs), nil
		case expr.CmpLt:
			return cty.BoolVal(ls < rs), nil
		case expr.CmpGt:
			return cty.BoolVal(ls > rs), nil
		}
	}
	lf, err := Float(l)
	if err != nil {
		return cty.NilVal, err
	}
	rf, err := Float(r)
	if err != nil {
		return cty.NilVal, err
	}
	switch e.Op {
	case expr.CmpLe:
		return cty.BoolVal(lf <= rf), nil
	case expr.CmpGe:
		return cty.BoolVal(lf >= rf), nil
	case expr.CmpLt:
		return cty.BoolVal(lf < rf), nil
	case expr.CmpGt:
		return cty.BoolVal(lf > rf), nil
	}
	return cty.NilVal, fmt.Errorf("unknown comparison operator")
}

// Float converts a cty number to float64.
func Float(v cty.Value) (float64, error) {
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("expected a number, got %s", v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
