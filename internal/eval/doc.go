// Package eval implements the constant evaluator.
//
// Given an expression node, a binding context, and the external
// constant-data table ("params"), the evaluator decides whether a subtree
// is fully constant and, if so, reduces it to a concrete cty.Value. A
// subtree that references a decision variable is left for the polynomial
// builder; Fold performs exactly that partial reduction, replacing every
// constant subtree with a literal while preserving variable references
// and wildcard tokens.
//
// Resolution order for a bare SymbolicKey in value position: the binding
// context first (exact name match), then the top level of the params
// table. A miss in both is UnboundSymbolError; the evaluator never falls
// back to treating the symbol's own name as a value. Inside a VariableRef
// index list the params fallback is disabled entirely: an index symbol is
// a generator name or nothing.
//
// Keys inside a container lookup resolve through the binding context
// first, then as literal string keys; string-typed and symbolic-typed
// keys with the same text address the same entry. A resolved key missing
// from the addressed container is KeyNotFoundError.
//
// The params table and binding context are explicit parameters on every
// call. There is no ambient evaluation state anywhere in the package.
package eval
