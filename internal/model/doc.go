// Package model implements the model assembler: the registry of typed
// decision-variable instances, linear constraints, and the single
// objective that together form the compiled optimization model.
//
// # Core Concepts
//
//   - Instance: one concrete decision variable, identified by its family
//     name and index tuple. Two references with the same identity are the
//     same variable. The registry preserves insertion order, which is the
//     deterministic emission order.
//
//   - Family: the declaration-level view of a variable. A family carries
//     the kind, the bounds, and the registered per-position index
//     domains that the wildcard expander consults.
//
//   - Constraint: (name, left polynomial, operator, right polynomial),
//     with the name unique after sanitization.
//
// The assembler enforces the global invariants: binary variables carry no
// explicit bounds, integer variables carry only integral bounds,
// redeclaring a family over an overlapping index domain is an error while
// a disjoint domain is additive, and the objective exists at most once.
// The declarative path (SetObjective) treats a second objective as fatal;
// the imperative path (ReplaceObjective) warns and replaces. A failed
// declaration commits nothing: every operation validates completely
// before touching the registries, and the compiler additionally wraps
// multi-entity rewrites in Snapshot/Restore.
//
// Emission names follow the external format's rules: a variable instance
// is family(idx1,idx2,...) with index values joined verbatim, and only
// the characters inside each index position are sanitized. Sanitization
// is reported as an informational log notice, never an error; the
// pre-sanitization name is retained for diagnostics.
package model
