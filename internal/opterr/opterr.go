// Package opterr defines the typed error taxonomy surfaced by the
// compiler. Every error is raised at the point of compiling the offending
// expression or declaration, never retried, and never downgraded to a
// default value. Callers match with errors.As.
package opterr

import "fmt"

// DomainError indicates a generator's domain expression could not be
// reduced to a finite ordered sequence.
type DomainError struct {
	Clause string
	Reason string
}

func (e *DomainError) Error() string {
	if e.Clause == "" {
		return fmt.Sprintf("generator domain: %s", e.Reason)
	}
	return fmt.Sprintf("generator %q: domain %s", e.Clause, e.Reason)
}

// UnboundSymbolError indicates a bare name was used where a bound
// generator name was required, but the binding context has no entry for
// it. This must never degrade into treating the name itself as a value.
type UnboundSymbolError struct {
	Name string
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("unbound symbol %q: no generator binds this name in the current context", e.Name)
}

// KeyNotFoundError indicates a container lookup resolved to a key that
// the addressed container does not hold.
type KeyNotFoundError struct {
	Key       string
	Container string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in %s", e.Key, e.Container)
}

// AmbiguousWildcardError indicates a wildcard's domain could not be
// uniquely determined, typically because the referenced variable family
// has no registered index domain, or a lookup-chain wildcard has no
// variable-reference wildcard to pair with.
type AmbiguousWildcardError struct {
	Detail string
}

func (e *AmbiguousWildcardError) Error() string {
	return "ambiguous wildcard: " + e.Detail
}

// NonLinearError indicates an unsupported nonlinear combination reached
// the polynomial builder (for example a product of two variable-bearing
// subtrees, or division by a variable).
type NonLinearError struct {
	Detail string
}

func (e *NonLinearError) Error() string {
	return "non-linear expression: " + e.Detail
}

// UnboundedLinearizationError indicates an operator rewrite needed a
// big-M constant but an operand's range is unbounded, making exact
// linearization impossible.
type UnboundedLinearizationError struct {
	Op     string
	Detail string
}

func (e *UnboundedLinearizationError) Error() string {
	return fmt.Sprintf("cannot linearize %s: %s", e.Op, e.Detail)
}

// ModelError indicates a model-assembly invariant violation: variable
// redefinition over an overlapping index domain, bounds illegal for the
// variable kind, a duplicate objective on the declarative path, or a
// sanitized-name collision between distinct raw names.
type ModelError struct {
	Detail string
}

func (e *ModelError) Error() string {
	return "model: " + e.Detail
}
