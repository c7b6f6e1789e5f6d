package frontend

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/optlang/internal/expr"
	"github.com/zclconf/go-cty/cty"
)

// translator rewrites hclsyntax expression ASTs into the compiler's
// expression tree. It works purely at the syntax level: nothing is
// evaluated here, so variable references, generator names, and wildcard
// tokens survive as structure for the compiler to resolve.
type translator struct {
	// families is the set of declared variable family names; a name in
	// this set translates to a VariableRef, anything else to a
	// symbolic name or container lookup.
	families map[string]bool
}

// wildcardToken is the surface spelling of the wildcard index, as in
// x["*"]. The splat form x[*] is accepted as the same token.
const wildcardToken = "*"

func (tr *translator) translate(e hcl.Expression) (expr.Node, hcl.Diagnostics) {
	switch ex := e.(type) {
	case *hclsyntax.LiteralValueExpr:
		return &expr.Literal{Val: ex.Val}, nil

	case *hclsyntax.TemplateExpr:
		// Quoted strings parse as single-part templates.
		if len(ex.Parts) == 1 {
			if lit, ok := ex.Parts[0].(*hclsyntax.LiteralValueExpr); ok {
				return &expr.Literal{Val: lit.Val}, nil
			}
		}
		return nil, errorf(ex.Range(), "Unsupported template", "String interpolation is not part of the modeling language.")

	case *hclsyntax.ScopeTraversalExpr:
		return tr.traversal(ex.Traversal, ex.Range())

	case *hclsyntax.RelativeTraversalExpr:
		source, diags := tr.translate(ex.Source)
		if diags.HasErrors() {
			return nil, diags
		}
		return tr.applySteps(source, ex.Traversal, ex.Range())

	case *hclsyntax.IndexExpr:
		coll, diags := tr.translate(ex.Collection)
		if diags.HasErrors() {
			return nil, diags
		}
		key, keyDiags := tr.translate(ex.Key)
		diags = append(diags, keyDiags...)
		if diags.HasErrors() {
			return nil, diags
		}
		return tr.applyKey(coll, asWildcard(key)), nil

	case *hclsyntax.SplatExpr:
		source, diags := tr.translate(ex.Source)
		if diags.HasErrors() {
			return nil, diags
		}
		anchor := tr.applyKey(source, &expr.Wildcard{})
		return tr.translateSplatEach(ex.Each, anchor)

	case *hclsyntax.ParenthesesExpr:
		return tr.translate(ex.Expression)

	case *hclsyntax.UnaryOpExpr:
		operand, diags := tr.translate(ex.Val)
		if diags.HasErrors() {
			return nil, diags
		}
		switch ex.Op {
		case hclsyntax.OpNegate:
			return &expr.BinaryOp{Op: expr.OpSub, Left: expr.Number(0), Right: operand}, nil
		case hclsyntax.OpLogicalNot:
			return &expr.BinaryOp{Op: expr.OpSub, Left: expr.Number(1), Right: operand}, nil
		}
		return nil, errorf(ex.Range(), "Unsupported operator", "This unary operator is not part of the modeling language.")

	case *hclsyntax.BinaryOpExpr:
		return tr.binaryOp(ex)

	case *hclsyntax.ConditionalExpr:
		cond, diags := tr.translate(ex.Condition)
		t, tDiags := tr.translate(ex.TrueResult)
		f, fDiags := tr.translate(ex.FalseResult)
		diags = append(diags, tDiags...)
		diags = append(diags, fDiags...)
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr.IfThenElse{Cond: cond, Then: t, Else: f}, nil

	case *hclsyntax.FunctionCallExpr:
		return tr.functionCall(ex)

	case *hclsyntax.TupleConsExpr:
		elems := make([]expr.Node, len(ex.Exprs))
		var diags hcl.Diagnostics
		for i, el := range ex.Exprs {
			node, elDiags := tr.translate(el)
			diags = append(diags, elDiags...)
			elems[i] = node
		}
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr.Tuple{Elems: elems}, nil
	}

	return nil, errorf(e.Range(), "Unsupported expression", fmt.Sprintf("Expression form %T is not part of the modeling language.", e))
}

// traversal translates a variable or lookup chain written as a static
// traversal, e.g. x[1], params.foods["bread"].calories.
func (tr *translator) traversal(t hcl.Traversal, rng hcl.Range) (expr.Node, hcl.Diagnostics) {
	root := t.RootName()
	steps := t[1:]

	// params.foo is an explicit spelling of the constant-data root foo.
	if root == "params" && len(steps) > 0 {
		switch s := steps[0].(type) {
		case hcl.TraverseAttr:
			root = s.Name
		case hcl.TraverseIndex:
			if s.Key.Type() == cty.String {
				root = s.Key.AsString()
			}
		}
		steps = steps[1:]
	}

	var base expr.Node
	if tr.families[root] {
		base = &expr.VariableRef{Name: root}
	} else {
		base = &expr.SymbolicKey{Name: root}
	}
	return tr.applySteps(base, steps, rng)
}

// applySteps folds traversal steps onto a base node, extending a
// VariableRef's index list or a Lookup chain as appropriate.
func (tr *translator) applySteps(base expr.Node, steps hcl.Traversal, rng hcl.Range) (expr.Node, hcl.Diagnostics) {
	node := base
	for _, step := range steps {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			node = tr.applyKey(node, &expr.SymbolicKey{Name: s.Name})
		case hcl.TraverseIndex:
			node = tr.applyKey(node, asWildcard(&expr.Literal{Val: s.Key}))
		default:
			return nil, errorf(rng, "Unsupported reference", "This reference form is not part of the modeling language.")
		}
	}
	return node, nil
}

// applyKey attaches one index or lookup key to a node. Keys attach to a
// VariableRef as index positions and to anything else as lookup steps.
func (tr *translator) applyKey(node expr.Node, key expr.Node) expr.Node {
	if ref, ok := node.(*expr.VariableRef); ok {
		indices := append(append([]expr.Node(nil), ref.Indices...), key)
		return &expr.VariableRef{Name: ref.Name, Indices: indices}
	}
	return &expr.Lookup{Container: node, Key: key}
}

// translateSplatEach continues a lookup chain after a splat: in
// foods[*].calories the Each expression navigates from the wildcarded
// anchor.
func (tr *translator) translateSplatEach(each hclsyntax.Expression, anchor expr.Node) (expr.Node, hcl.Diagnostics) {
	switch ex := each.(type) {
	case *hclsyntax.AnonSymbolExpr:
		return anchor, nil
	case *hclsyntax.RelativeTraversalExpr:
		source, diags := tr.translateSplatEach(ex.Source, anchor)
		if diags.HasErrors() {
			return nil, diags
		}
		return tr.applySteps(source, ex.Traversal, ex.Range())
	case *hclsyntax.IndexExpr:
		source, diags := tr.translateSplatEach(ex.Collection, anchor)
		if diags.HasErrors() {
			return nil, diags
		}
		key, keyDiags := tr.translate(ex.Key)
		diags = append(diags, keyDiags...)
		if diags.HasErrors() {
			return nil, diags
		}
		return tr.applyKey(source, asWildcard(key)), nil
	}
	return nil, errorf(each.Range(), "Unsupported splat", "Only index and attribute navigation may follow a [*] splat.")
}

func (tr *translator) binaryOp(ex *hclsyntax.BinaryOpExpr) (expr.Node, hcl.Diagnostics) {
	left, diags := tr.translate(ex.LHS)
	right, rDiags := tr.translate(ex.RHS)
	diags = append(diags, rDiags...)
	if diags.HasErrors() {
		return nil, diags
	}
	switch ex.Op {
	case hclsyntax.OpAdd:
		return &expr.BinaryOp{Op: expr.OpAdd, Left: left, Right: right}, nil
	case hclsyntax.OpSubtract:
		return &expr.BinaryOp{Op: expr.OpSub, Left: left, Right: right}, nil
	case hclsyntax.OpMultiply:
		return &expr.BinaryOp{Op: expr.OpMul, Left: left, Right: right}, nil
	case hclsyntax.OpDivide:
		return &expr.BinaryOp{Op: expr.OpDiv, Left: left, Right: right}, nil
	case hclsyntax.OpEqual:
		return &expr.Comparison{Op: expr.CmpEq, Left: left, Right: right}, nil
	case hclsyntax.OpNotEqual:
		return &expr.Comparison{Op: expr.CmpNe, Left: left, Right: right}, nil
	case hclsyntax.OpLessThanOrEqual:
		return &expr.Comparison{Op: expr.CmpLe, Left: left, Right: right}, nil
	case hclsyntax.OpGreaterThanOrEqual:
		return &expr.Comparison{Op: expr.CmpGe, Left: left, Right: right}, nil
	case hclsyntax.OpLessThan:
		return &expr.Comparison{Op: expr.CmpLt, Left: left, Right: right}, nil
	case hclsyntax.OpGreaterThan:
		return &expr.Comparison{Op: expr.CmpGt, Left: left, Right: right}, nil
	case hclsyntax.OpLogicalAnd:
		return &expr.And{Args: []expr.Node{left, right}}, nil
	case hclsyntax.OpLogicalOr:
		return &expr.Or{Args: []expr.Node{left, right}}, nil
	}
	return nil, errorf(ex.Range(), "Unsupported operator", "This operator is not part of the modeling language.")
}

func (tr *translator) functionCall(ex *hclsyntax.FunctionCallExpr) (expr.Node, hcl.Diagnostics) {
	switch ex.Name {
	case "sum":
		if len(ex.Args) == 1 {
			if forEx, ok := ex.Args[0].(*hclsyntax.ForExpr); ok {
				return tr.generatorSum(forEx)
			}
		}
		args, diags := tr.translateAll(ex.Args)
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr.Sum{Args: args}, nil

	case "abs":
		if len(ex.Args) != 1 {
			return nil, errorf(ex.Range(), "Wrong argument count", "abs takes exactly one argument.")
		}
		arg, diags := tr.translate(ex.Args[0])
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr.Abs{Expr: arg}, nil

	case "max", "min", "all", "any":
		args, diags := tr.translateAll(ex.Args)
		if diags.HasErrors() {
			return nil, diags
		}
		if len(args) == 0 {
			return nil, errorf(ex.Range(), "Wrong argument count", ex.Name+" needs at least one argument.")
		}
		// A wildcarded argument denotes the operator across the
		// expanded instance set, never the sum of the instances.
		for i, a := range args {
			if expr.ContainsWildcard(a) {
				args[i] = &expr.PatternSet{Pattern: a}
			}
		}
		switch ex.Name {
		case "max":
			return &expr.Max{Args: args}, nil
		case "min":
			return &expr.Min{Args: args}, nil
		case "all":
			return &expr.And{Args: args}, nil
		default:
			return &expr.Or{Args: args}, nil
		}

	case "if":
		if len(ex.Args) != 3 {
			return nil, errorf(ex.Range(), "Wrong argument count", "if takes a condition, a then value, and an else value.")
		}
		args, diags := tr.translateAll(ex.Args)
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr.IfThenElse{Cond: args[0], Then: args[1], Else: args[2]}, nil

	case "range":
		if len(ex.Args) != 2 {
			return nil, errorf(ex.Range(), "Wrong argument count", "range takes a lower and an upper endpoint.")
		}
		args, diags := tr.translateAll(ex.Args)
		if diags.HasErrors() {
			return nil, diags
		}
		return &expr.Range{Lo: args[0], Hi: args[1]}, nil

	case "piecewise":
		return tr.piecewise(ex)
	}
	return nil, errorf(ex.Range(), "Unknown function", fmt.Sprintf("There is no function named %q in the modeling language.", ex.Name))
}

// generatorSum translates sum([for name in domain : body]) into a
// GeneratorSum, carrying the for expression's condition as a filter.
func (tr *translator) generatorSum(forEx *hclsyntax.ForExpr) (expr.Node, hcl.Diagnostics) {
	if forEx.KeyVar != "" {
		return nil, errorf(forEx.Range(), "Unsupported generator", "Generators bind a single name per dimension; key/value iteration is not supported.")
	}
	domain, diags := tr.translate(forEx.CollExpr)
	if diags.HasErrors() {
		return nil, diags
	}
	clauses := []expr.Clause{{Name: forEx.ValVar, Domain: domain}}
	if forEx.CondExpr != nil {
		filter, fDiags := tr.translate(forEx.CondExpr)
		if fDiags.HasErrors() {
			return nil, fDiags
		}
		clauses = append(clauses, expr.Clause{Domain: filter})
	}

	// Nested for expressions compose into one clause list so that inner
	// domains may reference outer bindings.
	if inner, ok := forEx.ValExpr.(*hclsyntax.ForExpr); ok {
		nested, nDiags := tr.generatorSum(inner)
		if nDiags.HasErrors() {
			return nil, nDiags
		}
		gs := nested.(*expr.GeneratorSum)
		return &expr.GeneratorSum{Body: gs.Body, Clauses: append(clauses, gs.Clauses...)}, nil
	}

	body, bDiags := tr.translate(forEx.ValExpr)
	if bDiags.HasErrors() {
		return nil, bDiags
	}
	return &expr.GeneratorSum{Body: body, Clauses: clauses}, nil
}

// piecewise translates piecewise(e, breakpoints, slopes, intercepts)
// with constant number lists for the last three arguments.
func (tr *translator) piecewise(ex *hclsyntax.FunctionCallExpr) (expr.Node, hcl.Diagnostics) {
	if len(ex.Args) != 4 {
		return nil, errorf(ex.Range(), "Wrong argument count", "piecewise takes an expression, breakpoints, slopes, and intercepts.")
	}
	arg, diags := tr.translate(ex.Args[0])
	if diags.HasErrors() {
		return nil, diags
	}
	lists := make([][]float64, 3)
	for i, listArg := range ex.Args[1:] {
		v, evalDiags := listArg.Value(nil)
		if evalDiags.HasErrors() {
			return nil, evalDiags
		}
		if !v.Type().IsTupleType() && !v.Type().IsListType() {
			return nil, errorf(listArg.Range(), "Invalid piecewise data", "Breakpoints, slopes, and intercepts must be constant number lists.")
		}
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			if el.Type() != cty.Number {
				return nil, errorf(listArg.Range(), "Invalid piecewise data", "Breakpoints, slopes, and intercepts must be constant number lists.")
			}
			f, _ := el.AsBigFloat().Float64()
			lists[i] = append(lists[i], f)
		}
	}
	return &expr.PiecewiseLinear{
		Expr:        arg,
		Breakpoints: lists[0],
		Slopes:      lists[1],
		Intercepts:  lists[2],
	}, nil
}

func (tr *translator) translateAll(args []hclsyntax.Expression) ([]expr.Node, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	out := make([]expr.Node, len(args))
	for i, a := range args {
		node, aDiags := tr.translate(a)
		diags = append(diags, aDiags...)
		out[i] = node
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return out, nil
}

// asWildcard maps the "*" string literal key to the wildcard token.
func asWildcard(key expr.Node) expr.Node {
	if lit, ok := key.(*expr.Literal); ok {
		if lit.Val.Type() == cty.String && lit.Val.AsString() == wildcardToken {
			return &expr.Wildcard{}
		}
	}
	return key
}

func errorf(rng hcl.Range, summary, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{&hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}}
}
