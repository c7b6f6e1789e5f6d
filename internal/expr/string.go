package expr

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Sprint renders a node as a compact single-line string for diagnostics.
// The output resembles the surface syntax but is not guaranteed to
// re-parse; it exists for error messages and logs only.
func Sprint(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch e := n.(type) {
	case *VariableRef:
		b.WriteString(e.Name)
		for _, idx := range e.Indices {
			b.WriteByte('[')
			writeNode(b, idx)
			b.WriteByte(']')
		}
	case *Literal:
		writeValue(b, e.Val)
	case *SymbolicKey:
		b.WriteString(e.Name)
	case *Wildcard:
		b.WriteByte('*')
	case *Lookup:
		writeNode(b, e.Container)
		b.WriteByte('[')
		writeNode(b, e.Key)
		b.WriteByte(']')
	case *BinaryOp:
		b.WriteByte('(')
		writeNode(b, e.Left)
		b.WriteByte(' ')
		b.WriteString(e.Op.String())
		b.WriteByte(' ')
		writeNode(b, e.Right)
		b.WriteByte(')')
	case *Comparison:
		writeNode(b, e.Left)
		b.WriteByte(' ')
		b.WriteString(e.Op.String())
		b.WriteByte(' ')
		writeNode(b, e.Right)
	case *Sum:
		writeCall(b, "sum", e.Args)
	case *GeneratorSum:
		b.WriteString("sum(for ")
		for i, c := range e.Clauses {
			if i > 0 {
				b.WriteString(", ")
			}
			if c.Name != "" {
				b.WriteString(c.Name)
				b.WriteString(" in ")
			}
			writeNode(b, c.Domain)
		}
		b.WriteString(" : ")
		writeNode(b, e.Body)
		b.WriteByte(')')
	case *PatternSet:
		writeNode(b, e.Pattern)
	case *Abs:
		writeCall(b, "abs", []Node{e.Expr})
	case *Max:
		writeCall(b, "max", e.Args)
	case *Min:
		writeCall(b, "min", e.Args)
	case *And:
		writeCall(b, "all", e.Args)
	case *Or:
		writeCall(b, "any", e.Args)
	case *IfThenElse:
		writeCall(b, "if", []Node{e.Cond, e.Then, e.Else})
	case *PiecewiseLinear:
		b.WriteString("piecewise(")
		writeNode(b, e.Expr)
		fmt.Fprintf(b, ", %v, %v, %v)", e.Breakpoints, e.Slopes, e.Intercepts)
	case *Tuple:
		b.WriteByte('[')
		for i, el := range e.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, el)
		}
		b.WriteByte(']')
	case *Range:
		b.WriteString("range(")
		writeNode(b, e.Lo)
		b.WriteString(", ")
		writeNode(b, e.Hi)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}

func writeCall(b *strings.Builder, name string, args []Node) {
	b.WriteString(name)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeNode(b, a)
	}
	b.WriteByte(')')
}

func writeValue(b *strings.Builder, v cty.Value) {
	switch {
	case v.Type() == cty.String:
		fmt.Fprintf(b, "%q", v.AsString())
	case v.Type() == cty.Number:
		bf := v.AsBigFloat()
		b.WriteString(bf.Text('g', -1))
	case v.Type() == cty.Bool:
		fmt.Fprintf(b, "%v", v.True())
	default:
		b.WriteString(v.GoString())
	}
}

// ContainsVariable reports whether the subtree references any decision
// variable. A subtree without one is a candidate for constant folding.
func ContainsVariable(n Node) bool {
	found := false
	Walk(n, func(child Node) bool {
		if _, ok := child.(*VariableRef); ok {
			found = true
			return false
		}
		return !found
	})
	return found
}

// ContainsWildcard reports whether the subtree holds a wildcard token.
func ContainsWildcard(n Node) bool {
	found := false
	Walk(n, func(child Node) bool {
		if _, ok := child.(*Wildcard); ok {
			found = true
			return false
		}
		return !found
	})
	return found
}

// Walk visits n and its children in depth-first, left-to-right order,
// calling fn for each node. If fn returns false the node's children are
// skipped. The visit order is deterministic; the expander relies on it to
// pair wildcard occurrences with their roles.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch e := n.(type) {
	case *VariableRef:
		for _, idx := range e.Indices {
			Walk(idx, fn)
		}
	case *Lookup:
		Walk(e.Container, fn)
		Walk(e.Key, fn)
	case *BinaryOp:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *Comparison:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *Sum:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *GeneratorSum:
		for _, c := range e.Clauses {
			Walk(c.Domain, fn)
		}
		Walk(e.Body, fn)
	case *PatternSet:
		Walk(e.Pattern, fn)
	case *Abs:
		Walk(e.Expr, fn)
	case *Max:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *Min:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *And:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *Or:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *IfThenElse:
		Walk(e.Cond, fn)
		Walk(e.Then, fn)
		Walk(e.Else, fn)
	case *PiecewiseLinear:
		Walk(e.Expr, fn)
	case *Tuple:
		for _, el := range e.Elems {
			Walk(el, fn)
		}
	case *Range:
		Walk(e.Lo, fn)
		Walk(e.Hi, fn)
	}
}
