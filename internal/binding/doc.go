// Package binding implements the generator and binding resolver.
//
// A generator list is a sequence of clauses: (name, domain) pairs plus
// bare filter expressions. Enumerate walks the cross-product of the
// domains in nested declaration order, yielding one Context per element.
// Domains may depend on earlier-bound names and are re-evaluated once per
// relevant outer binding; filters are evaluated against the binding so
// far and failing tuples are skipped.
//
// The enumeration is lazy: Enumerate returns an iterator, never a
// materialized product, so filters short-circuit and memory stays bounded
// by the working set. The yielded order is the deterministic order used
// everywhere downstream, including constraint naming and LP emission.
//
// Contexts are scoped to one enumeration step and looked up by exact
// name only. The package evaluates domain and filter expressions through
// the Evaluator interface so that it stays independent of the constant
// evaluator's implementation.
package binding
