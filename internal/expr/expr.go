package expr

import "github.com/zclconf/go-cty/cty"

// Node is the interface implemented by every expression tree variant.
// Nodes are immutable once constructed.
type Node interface {
	node()
}

// BinOp identifies an arithmetic operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
)

// String returns the operator's surface spelling.
func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

// CmpOp identifies a comparison operator.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLe
	CmpGe
	CmpLt
	CmpGt
)

// String returns the operator's surface spelling.
func (op CmpOp) String() string {
	switch op {
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpLe:
		return "<="
	case CmpGe:
		return ">="
	case CmpLt:
		return "<"
	case CmpGt:
		return ">"
	}
	return "?"
}

// VariableRef references a decision-variable family with a (possibly
// wildcarded, possibly still symbolic) index list. Indices are expression
// leaves: Literal, SymbolicKey, Wildcard, or a Lookup resolving to a value.
type VariableRef struct {
	Name    string
	Indices []Node
}

// Literal is a concrete constant value: a number, a string, or a bool.
type Literal struct {
	Val cty.Value
}

// Number is a convenience constructor for a numeric Literal.
func Number(f float64) *Literal {
	return &Literal{Val: cty.NumberFloatVal(f)}
}

// String is a convenience constructor for a string Literal.
func String(s string) *Literal {
	return &Literal{Val: cty.StringVal(s)}
}

// SymbolicKey is a bare name: a bound generator reference, a top-level
// constant-data name, or a key inside a container lookup.
type SymbolicKey struct {
	Name string
}

// Wildcard is the placeholder token meaning "every value of this
// dimension's domain". It is a marker, never a value.
type Wildcard struct{}

// Lookup is one step of a nested container lookup: Container[Key].
// The dot shorthand container.key translates to the same node.
type Lookup struct {
	Container Node
	Key       Node
}

// BinaryOp applies an arithmetic operator to two subtrees.
type BinaryOp struct {
	Op    BinOp
	Left  Node
	Right Node
}

// Comparison relates two subtrees; it only appears at the top of a
// constraint expression.
type Comparison struct {
	Op    CmpOp
	Left  Node
	Right Node
}

// Sum is an explicit n-ary addition.
type Sum struct {
	Args []Node
}

// Clause is one element of a generator list: either a bound name with a
// domain expression, or (when Name is empty) a bare filter expression that
// must evaluate to a boolean under the partial binding.
type Clause struct {
	Name   string
	Domain Node
}

// GeneratorSum sums Body over the cross-product of its generator clauses,
// in nested declaration order.
type GeneratorSum struct {
	Body    Node
	Clauses []Clause
}

// PatternSet wraps a single wildcarded operand of Max, Min, And, or Or.
// The operator applies across the expanded instance list, element by
// element; this is not a summation.
type PatternSet struct {
	Pattern Node
}

// Abs is the absolute value of a subtree.
type Abs struct {
	Expr Node
}

// Max is the maximum over two or more operands (or one PatternSet).
type Max struct {
	Args []Node
}

// Min is the minimum over two or more operands (or one PatternSet).
type Min struct {
	Args []Node
}

// And is a logical conjunction over binary-valued operands.
type And struct {
	Args []Node
}

// Or is a logical disjunction over binary-valued operands.
type Or struct {
	Args []Node
}

// IfThenElse selects Then or Else depending on a binary-valued condition.
type IfThenElse struct {
	Cond Node
	Then Node
	Else Node
}

// PiecewiseLinear is the upper envelope of a set of affine pieces applied
// to Expr: piece j contributes Slopes[j]*Expr + Intercepts[j]. Breakpoints
// are the ascending abscissae separating adjacent pieces; there is exactly
// one fewer breakpoint than pieces.
type PiecewiseLinear struct {
	Expr        Node
	Breakpoints []float64
	Slopes      []float64
	Intercepts  []float64
}

// Tuple is an ordered literal sequence, used for explicit generator
// domains and index-domain declarations.
type Tuple struct {
	Elems []Node
}

// Range is the inclusive integer interval [Lo, Hi], used as a generator
// or index domain.
type Range struct {
	Lo Node
	Hi Node
}

func (*VariableRef) node()     {}
func (*Literal) node()         {}
func (*SymbolicKey) node()     {}
func (*Wildcard) node()        {}
func (*Lookup) node()          {}
func (*BinaryOp) node()        {}
func (*Comparison) node()      {}
func (*Sum) node()             {}
func (*GeneratorSum) node()    {}
func (*PatternSet) node()      {}
func (*Abs) node()             {}
func (*Max) node()             {}
func (*Min) node()             {}
func (*And) node()             {}
func (*Or) node()              {}
func (*IfThenElse) node()      {}
func (*PiecewiseLinear) node() {}
func (*Tuple) node()           {}
func (*Range) node()           {}
