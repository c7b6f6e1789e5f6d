// Package poly implements the canonical linear form and the builder that
// folds concrete expression trees into it.
//
// A Polynomial is an ordered map from variable-instance identity to a
// real coefficient, plus one constant term. Insertion order is preserved
// so that downstream emission is deterministic. The builder accepts only
// trees whose wildcards and generator sums have already been expanded to
// Literal and VariableRef leaves; any nonlinear combination it cannot
// reduce (variable times variable, division by a variable, an operator
// node the linearization engine should have rewritten) fails with
// NonLinearError.
package poly
