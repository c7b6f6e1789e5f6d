// Package expr defines the expression tree handed to the compiler by the
// surface front end.
//
// # Core Concepts
//
// Every node is an immutable tagged variant implementing the Node interface.
// The tree is purely structural: it carries no bindings, no constant data,
// and no model state. All of that arrives as explicit parameters during
// compilation, which keeps the compiler re-entrant and testable in isolation.
//
// A few variants deserve a note:
//
//   - Wildcard is a placeholder token, not a value. It is only legal inside a
//     VariableRef index list or inside a Lookup chain; the expander replaces
//     it with every value of the referenced dimension's registered domain.
//
//   - Lookup represents one step of a nested container lookup
//     (params.foods["bread"].calories is a three-deep Lookup chain). The
//     front end translates both bracket indexing and the dot shorthand into
//     the same Lookup node, so the evaluator sees a single form.
//
//   - PatternSet wraps a single wildcarded operand of Max/Min/And/Or. It
//     means "apply the operator across the expanded instance list", which is
//     deliberately distinct from Sum ("add the instances together").
package expr
