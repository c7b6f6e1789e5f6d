// Package expand implements the wildcard expander.
//
// A wildcard token inside a VariableRef index takes its domain from the
// referenced family's registered index domain at that position, never
// from free generator names in scope. A wildcard inside a container
// lookup chain pairs positionally with the wildcards of the statement's
// variable references: the k-th lookup wildcard and the k-th variable
// wildcard share one role and iterate over the same concrete value at
// each step. Wildcards with no shared role expand as an independent
// cross-product. A wildcard whose domain cannot be uniquely determined
// (undeclared family, or a lookup wildcard with no variable wildcard to
// pair with) is AmbiguousWildcardError.
//
// Expansion is purely structural: it substitutes concrete values for the
// wildcard tokens and returns one tree per combination, in nested domain
// order. Evaluating the now-concrete lookup chains is the constant
// evaluator's job.
package expand

import (
	"fmt"

	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/opterr"
	"github.com/zclconf/go-cty/cty"
)

// Registry is the variable-family index-domain registry the expander
// consults; the model assembler implements it.
type Registry interface {
	Arity(family string) (int, bool)
	IndexDomain(family string, pos int) ([]cty.Value, bool)
}

// role is one expansion dimension: the family index position that
// defined it and the domain it iterates over.
type role struct {
	family string
	pos    int
	domain []cty.Value
}

// Expand instantiates every wildcard combination of a subtree. It
// returns (nil, false, nil) when the subtree holds no wildcard; otherwise
// one concrete tree per combination, in nested domain order.
func Expand(n expr.Node, reg Registry) ([]expr.Node, bool, error) {
	roles, err := collectRoles(n, reg)
	if err != nil {
		return nil, false, err
	}
	if len(roles) == 0 {
		if expr.ContainsWildcard(n) {
			return nil, false, &opterr.AmbiguousWildcardError{
				Detail: "wildcard in a container lookup has no variable reference wildcard to pair with in " + expr.Sprint(n),
			}
		}
		return nil, false, nil
	}

	// Validate lookup-chain wildcards against the collected roles.
	lookups := countLookupWildcards(n)
	if lookups > len(roles) {
		return nil, false, &opterr.AmbiguousWildcardError{
			Detail: fmt.Sprintf("%d lookup wildcards but only %d variable wildcard roles in %s", lookups, len(roles), expr.Sprint(n)),
		}
	}

	total := 1
	for _, r := range roles {
		total *= len(r.domain)
	}
	out := make([]expr.Node, 0, total)
	combo := make([]cty.Value, len(roles))
	var enumerate func(depth int)
	enumerate = func(depth int) {
		if depth == len(roles) {
			sub := &substituter{values: combo}
			out = append(out, sub.rewrite(n))
			return
		}
		for _, v := range roles[depth].domain {
			combo[depth] = v
			enumerate(depth + 1)
		}
	}
	enumerate(0)
	return out, true, nil
}

// collectRoles walks the subtree in evaluation order and opens one role
// per wildcard found in a VariableRef index list.
func collectRoles(n expr.Node, reg Registry) ([]role, error) {
	var roles []role
	var visitErr error
	expr.Walk(n, func(child expr.Node) bool {
		if visitErr != nil {
			return false
		}
		ref, ok := child.(*expr.VariableRef)
		if !ok {
			return true
		}
		arity, declared := reg.Arity(ref.Name)
		for pos, idx := range ref.Indices {
			if _, isWild := idx.(*expr.Wildcard); !isWild {
				continue
			}
			if !declared || pos >= arity {
				visitErr = &opterr.AmbiguousWildcardError{
					Detail: fmt.Sprintf("variable %q has no registered index domain for position %d", ref.Name, pos),
				}
				return false
			}
			domain, ok := reg.IndexDomain(ref.Name, pos)
			if !ok || len(domain) == 0 {
				visitErr = &opterr.AmbiguousWildcardError{
					Detail: fmt.Sprintf("variable %q has an empty index domain at position %d", ref.Name, pos),
				}
				return false
			}
			roles = append(roles, role{family: ref.Name, pos: pos, domain: domain})
		}
		return true
	})
	return roles, visitErr
}

// countLookupWildcards counts wildcard tokens appearing as lookup keys,
// excluding the ones inside VariableRef index lists.
func countLookupWildcards(n expr.Node) int {
	count := 0
	expr.Walk(n, func(child expr.Node) bool {
		if lk, ok := child.(*expr.Lookup); ok {
			if _, isWild := lk.Key.(*expr.Wildcard); isWild {
				count++
			}
		}
		return true
	})
	return count
}

// substituter rebuilds a tree with each wildcard occurrence replaced by
// the combination value of its role. Both counters advance in the same
// deterministic walk order used during collection, which is what pairs
// the k-th lookup wildcard with the k-th variable wildcard.
type substituter struct {
	values     []cty.Value
	varNext    int
	lookupNext int
}

func (s *substituter) rewrite(n expr.Node) expr.Node {
	switch e := n.(type) {
	case *expr.VariableRef:
		indices := make([]expr.Node, len(e.Indices))
		for i, idx := range e.Indices {
			if _, isWild := idx.(*expr.Wildcard); isWild {
				indices[i] = &expr.Literal{Val: s.values[s.varNext]}
				s.varNext++
				continue
			}
			indices[i] = s.rewrite(idx)
		}
		return &expr.VariableRef{Name: e.Name, Indices: indices}

	case *expr.Lookup:
		container := s.rewrite(e.Container)
		if _, isWild := e.Key.(*expr.Wildcard); isWild {
			key := &expr.Literal{Val: s.values[s.lookupNext]}
			s.lookupNext++
			return &expr.Lookup{Container: container, Key: key}
		}
		return &expr.Lookup{Container: container, Key: s.rewrite(e.Key)}

	case *expr.BinaryOp:
		return &expr.BinaryOp{Op: e.Op, Left: s.rewrite(e.Left), Right: s.rewrite(e.Right)}
	case *expr.Comparison:
		return &expr.Comparison{Op: e.Op, Left: s.rewrite(e.Left), Right: s.rewrite(e.Right)}
	case *expr.Sum:
		return &expr.Sum{Args: s.rewriteAll(e.Args)}
	case *expr.GeneratorSum:
		clauses := make([]expr.Clause, len(e.Clauses))
		for i, c := range e.Clauses {
			clauses[i] = expr.Clause{Name: c.Name, Domain: s.rewrite(c.Domain)}
		}
		return &expr.GeneratorSum{Body: s.rewrite(e.Body), Clauses: clauses}
	case *expr.PatternSet:
		return &expr.PatternSet{Pattern: s.rewrite(e.Pattern)}
	case *expr.Abs:
		return &expr.Abs{Expr: s.rewrite(e.Expr)}
	case *expr.Max:
		return &expr.Max{Args: s.rewriteAll(e.Args)}
	case *expr.Min:
		return &expr.Min{Args: s.rewriteAll(e.Args)}
	case *expr.And:
		return &expr.And{Args: s.rewriteAll(e.Args)}
	case *expr.Or:
		return &expr.Or{Args: s.rewriteAll(e.Args)}
	case *expr.IfThenElse:
		return &expr.IfThenElse{Cond: s.rewrite(e.Cond), Then: s.rewrite(e.Then), Else: s.rewrite(e.Else)}
	case *expr.PiecewiseLinear:
		return &expr.PiecewiseLinear{Expr: s.rewrite(e.Expr), Breakpoints: e.Breakpoints, Slopes: e.Slopes, Intercepts: e.Intercepts}
	case *expr.Tuple:
		return &expr.Tuple{Elems: s.rewriteAll(e.Elems)}
	case *expr.Range:
		return &expr.Range{Lo: s.rewrite(e.Lo), Hi: s.rewrite(e.Hi)}
	}
	return n
}

func (s *substituter) rewriteAll(args []expr.Node) []expr.Node {
	out := make([]expr.Node, len(args))
	for i, a := range args {
		out[i] = s.rewrite(a)
	}
	return out
}
