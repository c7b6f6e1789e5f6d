package binding

import (
	"iter"

	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/opterr"
	"github.com/zclconf/go-cty/cty"
)

// Evaluator is the slice of the constant evaluator the resolver needs:
// reducing a domain expression to a finite ordered sequence, and reducing
// a filter expression to a single value, both under a partial binding.
type Evaluator interface {
	Sequence(n expr.Node, b *Context) ([]cty.Value, error)
	Value(n expr.Node, b *Context) (cty.Value, error)
}

// Enumerate lazily yields one binding context per element of the
// cross-product of the clause domains, in nested declaration order.
// Bare filter clauses prune tuples as soon as their inputs are bound.
// The iterator stops at the first error; the error is yielded once with a
// nil context.
func Enumerate(clauses []expr.Clause, outer *Context, ev Evaluator) iter.Seq2[*Context, error] {
	if outer == nil {
		outer = NewContext()
	}
	return func(yield func(*Context, error) bool) {
		enumerate(clauses, outer, ev, yield)
	}
}

// enumerate recurses over the clause list. It returns false when the
// consumer stopped the iteration.
func enumerate(clauses []expr.Clause, b *Context, ev Evaluator, yield func(*Context, error) bool) bool {
	if len(clauses) == 0 {
		return yield(b, nil)
	}
	head, rest := clauses[0], clauses[1:]

	if head.Name == "" {
		// Bare filter: keep or drop the current tuple, never retry.
		v, err := ev.Value(head.Domain, b)
		if err != nil {
			yield(nil, err)
			return false
		}
		if v.Type() != cty.Bool {
			yield(nil, &opterr.DomainError{
				Reason: "filter expression did not evaluate to a boolean: " + expr.Sprint(head.Domain),
			})
			return false
		}
		if !v.True() {
			return true
		}
		return enumerate(rest, b, ev, yield)
	}

	// Domains may reference earlier-bound names, so the sequence is
	// evaluated here, once per outer binding.
	domain, err := ev.Sequence(head.Domain, b)
	if err != nil {
		yield(nil, err)
		return false
	}
	for _, v := range domain {
		if !enumerate(rest, b.Bind(head.Name, v), ev, yield) {
			return false
		}
	}
	return true
}
