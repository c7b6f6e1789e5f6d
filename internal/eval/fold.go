package eval

import (
	"fmt"

	"github.com/vk/optlang/internal/binding"
	"github.com/vk/optlang/internal/expr"
)

// Fold partially reduces a subtree: every fully constant part becomes a
// Literal, variable references keep their structure with indices resolved
// to concrete values, and wildcard tokens survive untouched for the
// expander. GeneratorSum nodes are left whole; enumerating them is the
// compiler's job.
func (ev *Evaluator) Fold(n expr.Node, b *binding.Context) (expr.Node, error) {
	if b == nil {
		b = binding.NewContext()
	}
	if !expr.ContainsVariable(n) && !expr.ContainsWildcard(n) {
		v, err := ev.Value(n, b)
		if err != nil {
			return nil, err
		}
		return &expr.Literal{Val: v}, nil
	}

	switch e := n.(type) {
	case *expr.VariableRef:
		indices := make([]expr.Node, len(e.Indices))
		for i, idx := range e.Indices {
			folded, err := ev.foldIndex(idx, b)
			if err != nil {
				return nil, err
			}
			indices[i] = folded
		}
		return &expr.VariableRef{Name: e.Name, Indices: indices}, nil

	case *expr.Lookup:
		// A lookup reaching this point carries a wildcard somewhere in
		// its chain. Resolve what the binding can resolve; the chain
		// itself stays for the expander.
		container, err := ev.Fold(e.Container, b)
		if err != nil {
			return nil, err
		}
		key, err := ev.foldLookupKey(e.Key, b)
		if err != nil {
			return nil, err
		}
		return &expr.Lookup{Container: container, Key: key}, nil

	case *expr.BinaryOp:
		l, err := ev.Fold(e.Left, b)
		if err != nil {
			return nil, err
		}
		r, err := ev.Fold(e.Right, b)
		if err != nil {
			return nil, err
		}
		return &expr.BinaryOp{Op: e.Op, Left: l, Right: r}, nil

	case *expr.Comparison:
		l, err := ev.Fold(e.Left, b)
		if err != nil {
			return nil, err
		}
		r, err := ev.Fold(e.Right, b)
		if err != nil {
			return nil, err
		}
		return &expr.Comparison{Op: e.Op, Left: l, Right: r}, nil

	case *expr.Sum:
		args, err := ev.foldAll(e.Args, b)
		if err != nil {
			return nil, err
		}
		return &expr.Sum{Args: args}, nil

	case *expr.GeneratorSum:
		return e, nil

	case *expr.PatternSet:
		p, err := ev.Fold(e.Pattern, b)
		if err != nil {
			return nil, err
		}
		return &expr.PatternSet{Pattern: p}, nil

	case *expr.Abs:
		inner, err := ev.Fold(e.Expr, b)
		if err != nil {
			return nil, err
		}
		return &expr.Abs{Expr: inner}, nil

	case *expr.Max:
		args, err := ev.foldAll(e.Args, b)
		if err != nil {
			return nil, err
		}
		return &expr.Max{Args: args}, nil

	case *expr.Min:
		args, err := ev.foldAll(e.Args, b)
		if err != nil {
			return nil, err
		}
		return &expr.Min{Args: args}, nil

	case *expr.And:
		args, err := ev.foldAll(e.Args, b)
		if err != nil {
			return nil, err
		}
		return &expr.And{Args: args}, nil

	case *expr.Or:
		args, err := ev.foldAll(e.Args, b)
		if err != nil {
			return nil, err
		}
		return &expr.Or{Args: args}, nil

	case *expr.IfThenElse:
		cond, err := ev.Fold(e.Cond, b)
		if err != nil {
			return nil, err
		}
		then, err := ev.Fold(e.Then, b)
		if err != nil {
			return nil, err
		}
		els, err := ev.Fold(e.Else, b)
		if err != nil {
			return nil, err
		}
		return &expr.IfThenElse{Cond: cond, Then: then, Else: els}, nil

	case *expr.PiecewiseLinear:
		inner, err := ev.Fold(e.Expr, b)
		if err != nil {
			return nil, err
		}
		return &expr.PiecewiseLinear{
			Expr:        inner,
			Breakpoints: e.Breakpoints,
			Slopes:      e.Slopes,
			Intercepts:  e.Intercepts,
		}, nil

	case *expr.Wildcard:
		return e, nil
	}
	return nil, fmt.Errorf("cannot fold %s", expr.Sprint(n))
}

// foldIndex resolves one VariableRef index. Wildcards survive; a bare
// symbol resolves through the binding context only (never the params
// table); anything else must be fully constant.
func (ev *Evaluator) foldIndex(idx expr.Node, b *binding.Context) (expr.Node, error) {
	switch i := idx.(type) {
	case *expr.Wildcard:
		return i, nil
	case *expr.SymbolicKey:
		v, err := ev.BindingValue(i.Name, b)
		if err != nil {
			return nil, err
		}
		return &expr.Literal{Val: v}, nil
	default:
		v, err := ev.Value(idx, b)
		if err != nil {
			return nil, err
		}
		return &expr.Literal{Val: v}, nil
	}
}

// foldLookupKey resolves a lookup-chain key as far as the binding allows.
// An unbound symbol stays symbolic: its text serves as the literal key
// when the chain is finally evaluated.
func (ev *Evaluator) foldLookupKey(key expr.Node, b *binding.Context) (expr.Node, error) {
	switch k := key.(type) {
	case *expr.Wildcard:
		return k, nil
	case *expr.SymbolicKey:
		if v, ok := b.Lookup(k.Name); ok {
			return &expr.Literal{Val: v}, nil
		}
		return k, nil
	default:
		return ev.Fold(key, b)
	}
}

func (ev *Evaluator) foldAll(args []expr.Node, b *binding.Context) ([]expr.Node, error) {
	out := make([]expr.Node, len(args))
	for i, a := range args {
		folded, err := ev.Fold(a, b)
		if err != nil {
			return nil, err
		}
		out[i] = folded
	}
	return out, nil
}
