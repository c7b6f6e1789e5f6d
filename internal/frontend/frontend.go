// Package frontend captures the surface syntax of the modeling language.
//
// Model definitions are HCL files holding variable, params, constraint,
// and objective blocks. The front end's whole contract with the compiler
// is structural: it produces expression trees, generator clause lists,
// and a constant-data table, and the compiler resolves everything else
// through explicit binding contexts. No expression that can mention a
// decision variable is ever evaluated here.
package frontend

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/optlang/internal/ctxlog"
	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/fsutil"
	"github.com/vk/optlang/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// VariableDecl is one variable block, translated but not yet compiled.
type VariableDecl struct {
	Name      string
	Index     []expr.Node
	Kind      model.Kind
	Bounds    model.Bounds
	DeclRange hcl.Range
}

// ConstraintDecl is one constraint block.
type ConstraintDecl struct {
	Name      string
	Clauses   []expr.Clause
	Expr      expr.Node
	DeclRange hcl.Range
}

// ObjectiveDecl is one objective block. Multiple blocks are preserved so
// the compiler's declarative duplicate-objective check can fire.
type ObjectiveDecl struct {
	Direction model.Direction
	Expr      expr.Node
	DeclRange hcl.Range
}

// Definition is a parsed workspace: every declaration from every loaded
// file, in file order then declaration order, plus the merged params
// table from params blocks.
type Definition struct {
	Variables   []VariableDecl
	Constraints []ConstraintDecl
	Objectives  []ObjectiveDecl
	Params      map[string]cty.Value
}

// hclModelFile is the decode target for one model file.
type hclModelFile struct {
	Variables   []*hclVariableBlock   `hcl:"variable,block"`
	Params      []*hclParamsBlock     `hcl:"params,block"`
	Constraints []*hclConstraintBlock `hcl:"constraint,block"`
	Objectives  []*hclObjectiveBlock  `hcl:"objective,block"`
}

type hclVariableBlock struct {
	Name     string         `hcl:"name,label"`
	Index    hcl.Expression `hcl:"index,optional"`
	Kind     *string        `hcl:"kind,optional"`
	MinBound hcl.Expression `hcl:"min_bound,optional"`
	MaxBound hcl.Expression `hcl:"max_bound,optional"`
}

type hclParamsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type hclConstraintBlock struct {
	Name   string         `hcl:"name,label"`
	Forall hcl.Expression `hcl:"forall,optional"`
	Where  hcl.Expression `hcl:"where,optional"`
	Expr   hcl.Expression `hcl:"expr"`
}

type hclObjectiveBlock struct {
	Direction string         `hcl:"direction"`
	Expr      hcl.Expression `hcl:"expr"`
}

// Load parses every model file under each path (a single file or a
// directory tree of .hcl files) into one Definition.
func Load(ctx context.Context, paths ...string) (*Definition, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()
	def := &Definition{Params: map[string]cty.Value{}}
	tr := &translator{families: map[string]bool{}}

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find model files in %s: %w", path, err)
		}
		files = append(files, found...)
	}
	sort.Strings(files)
	logger.Debug("Loading model files.", "count", len(files))

	// Family names must be known before expressions are translated, so
	// references can be told apart from constant lookups. Scan the
	// variable blocks of every file first.
	parsed := make([]*hclModelFile, len(files))
	for i, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}
		var mf hclModelFile
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &mf); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}
		parsed[i] = &mf
		for _, vb := range mf.Variables {
			tr.families[vb.Name] = true
		}
	}

	for i, mf := range parsed {
		if err := def.addFile(mf, tr); err != nil {
			return nil, fmt.Errorf("%s: %w", files[i], err)
		}
	}
	logger.Debug("Model definition loaded.",
		"variables", len(def.Variables),
		"constraints", len(def.Constraints),
		"objectives", len(def.Objectives),
	)
	return def, nil
}

// LoadSource parses a single in-memory model file; tests use it to avoid
// the filesystem.
func LoadSource(filename string, src []byte) (*Definition, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	var mf hclModelFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &mf); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}
	tr := &translator{families: map[string]bool{}}
	for _, vb := range mf.Variables {
		tr.families[vb.Name] = true
	}
	def := &Definition{Params: map[string]cty.Value{}}
	if err := def.addFile(&mf, tr); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return def, nil
}

func (def *Definition) addFile(mf *hclModelFile, tr *translator) error {
	for _, vb := range mf.Variables {
		decl, err := translateVariable(vb, tr)
		if err != nil {
			return err
		}
		def.Variables = append(def.Variables, decl)
	}
	for _, pb := range mf.Params {
		attrs, diags := pb.Body.JustAttributes()
		if diags.HasErrors() {
			return fmt.Errorf("params block: %w", diags)
		}
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v, diags := attrs[name].Expr.Value(nil)
			if diags.HasErrors() {
				return fmt.Errorf("params.%s: %w", name, diags)
			}
			def.Params[name] = v
		}
	}
	for _, cb := range mf.Constraints {
		decl, err := translateConstraint(cb, tr)
		if err != nil {
			return err
		}
		def.Constraints = append(def.Constraints, decl)
	}
	for _, ob := range mf.Objectives {
		decl, err := translateObjective(ob, tr)
		if err != nil {
			return err
		}
		def.Objectives = append(def.Objectives, decl)
	}
	return nil
}

func translateVariable(vb *hclVariableBlock, tr *translator) (VariableDecl, error) {
	decl := VariableDecl{Name: vb.Name, Kind: model.Continuous}

	if vb.Kind != nil {
		kind, ok := model.ParseKind(*vb.Kind)
		if !ok {
			return decl, fmt.Errorf("variable %q: kind must be continuous, integer, or binary, got %q", vb.Name, *vb.Kind)
		}
		decl.Kind = kind
	}

	if present(vb.Index) {
		node, diags := tr.translate(vb.Index)
		if diags.HasErrors() {
			return decl, fmt.Errorf("variable %q index: %w", vb.Name, diags)
		}
		tuple, ok := node.(*expr.Tuple)
		if !ok {
			// A single domain expression declares a one-dimensional family.
			tuple = &expr.Tuple{Elems: []expr.Node{node}}
		}
		decl.Index = tuple.Elems
		decl.DeclRange = vb.Index.Range()
	}

	lower, err := boundValue(vb.MinBound, "min_bound", vb.Name)
	if err != nil {
		return decl, err
	}
	upper, err := boundValue(vb.MaxBound, "max_bound", vb.Name)
	if err != nil {
		return decl, err
	}
	decl.Bounds = model.Bounds{Lower: lower, Upper: upper}
	return decl, nil
}

func translateConstraint(cb *hclConstraintBlock, tr *translator) (ConstraintDecl, error) {
	decl := ConstraintDecl{Name: cb.Name}

	if present(cb.Forall) {
		obj, ok := cb.Forall.(*hclsyntax.ObjectConsExpr)
		if !ok {
			return decl, fmt.Errorf("constraint %q: forall must be an object of name = domain pairs", cb.Name)
		}
		for _, item := range obj.Items {
			name := hcl.ExprAsKeyword(item.KeyExpr)
			if name == "" {
				return decl, fmt.Errorf("constraint %q: forall keys must be bare generator names", cb.Name)
			}
			domain, diags := tr.translate(item.ValueExpr)
			if diags.HasErrors() {
				return decl, fmt.Errorf("constraint %q, generator %q: %w", cb.Name, name, diags)
			}
			decl.Clauses = append(decl.Clauses, expr.Clause{Name: name, Domain: domain})
		}
	}
	if present(cb.Where) {
		node, diags := tr.translate(cb.Where)
		if diags.HasErrors() {
			return decl, fmt.Errorf("constraint %q where: %w", cb.Name, diags)
		}
		filters, ok := node.(*expr.Tuple)
		if !ok {
			filters = &expr.Tuple{Elems: []expr.Node{node}}
		}
		for _, f := range filters.Elems {
			decl.Clauses = append(decl.Clauses, expr.Clause{Domain: f})
		}
	}

	body, diags := tr.translate(cb.Expr)
	if diags.HasErrors() {
		return decl, fmt.Errorf("constraint %q: %w", cb.Name, diags)
	}
	decl.Expr = body
	decl.DeclRange = cb.Expr.Range()
	return decl, nil
}

func translateObjective(ob *hclObjectiveBlock, tr *translator) (ObjectiveDecl, error) {
	decl := ObjectiveDecl{}
	switch ob.Direction {
	case "minimize":
		decl.Direction = model.Minimize
	case "maximize":
		decl.Direction = model.Maximize
	default:
		return decl, fmt.Errorf("objective: direction must be minimize or maximize, got %q", ob.Direction)
	}
	body, diags := tr.translate(ob.Expr)
	if diags.HasErrors() {
		return decl, fmt.Errorf("objective: %w", diags)
	}
	decl.Expr = body
	decl.DeclRange = ob.Expr.Range()
	return decl, nil
}

// boundValue evaluates a bound attribute: a number, or one of the
// infinity tokens inf, +inf, -inf, infinity.
func boundValue(e hcl.Expression, attr, varName string) (*float64, error) {
	if !present(e) {
		return nil, nil
	}
	v, diags := e.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("variable %q %s: %w", varName, attr, diags)
	}
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return &f, nil
	case cty.String:
		f, ok := model.ParseInfinity(v.AsString())
		if !ok {
			return nil, fmt.Errorf("variable %q %s: %q is not a number or an infinity token", varName, attr, v.AsString())
		}
		return &f, nil
	}
	return nil, fmt.Errorf("variable %q %s: expected a number or an infinity token", varName, attr)
}

// present reports whether an optional expression attribute was written.
func present(e hcl.Expression) bool {
	if e == nil {
		return false
	}
	_, isNull := e.(*hclsyntax.LiteralValueExpr)
	if isNull && e.(*hclsyntax.LiteralValueExpr).Val.IsNull() {
		return false
	}
	return true
}
