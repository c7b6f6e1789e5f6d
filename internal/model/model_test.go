package model_test

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/optlang/internal/model"
	"github.com/vk/optlang/internal/opterr"
	"github.com/vk/optlang/internal/poly"
	"github.com/zclconf/go-cty/cty"
)

func strs(ss ...string) []cty.Value {
	out := make([]cty.Value, len(ss))
	for i, s := range ss {
		out[i] = cty.StringVal(s)
	}
	return out
}

func ints(ns ...int64) []cty.Value {
	out := make([]cty.Value, len(ns))
	for i, n := range ns {
		out[i] = cty.NumberIntVal(n)
	}
	return out
}

func fp(f float64) *float64 { return &f }

func TestDeclareVariable_CrossProductOrder(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	domains := [][]cty.Value{strs("A", "B"), ints(1, 2)}
	require.NoError(t, m.DeclareVariable("x", domains, model.Continuous, model.Bounds{Lower: fp(0)}))

	var names []string
	for _, inst := range m.Instances() {
		names = append(names, inst.Name)
	}
	require.Equal(t, []string{"x(A,1)", "x(A,2)", "x(B,1)", "x(B,2)"}, names)

	key, ok := m.Instance("x", []string{"B", "2"})
	require.True(t, ok)
	inst, ok := m.Lookup(key)
	require.True(t, ok)
	require.Equal(t, 0.0, inst.Lower)
	require.True(t, math.IsInf(inst.Upper, 1))
}

func TestDeclareVariable_IdenticalRedeclarationRejected(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	domains := [][]cty.Value{ints(1, 2, 3, 4)}
	require.NoError(t, m.DeclareVariable("x", domains, model.Continuous, model.Bounds{}))

	err := m.DeclareVariable("x", domains, model.Continuous, model.Bounds{})
	require.Error(t, err)
	var modelErr *opterr.ModelError
	require.ErrorAs(t, err, &modelErr)
	require.Contains(t, err.Error(), "overlapping")

	// Nothing was committed by the failed redeclaration.
	require.Len(t, m.Instances(), 4)
	domain, ok := m.IndexDomain("x", 0)
	require.True(t, ok)
	require.Len(t, domain, 4)
}

func TestDeclareVariable_DisjointRedeclarationIsAdditive(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("x", [][]cty.Value{ints(1, 2, 3, 4)}, model.Continuous, model.Bounds{}))
	require.NoError(t, m.DeclareVariable("x", [][]cty.Value{ints(5, 6, 7, 8)}, model.Continuous, model.Bounds{}))

	require.Len(t, m.Instances(), 8)

	// The wildcard domain covers both declarations in declaration order.
	domain, ok := m.IndexDomain("x", 0)
	require.True(t, ok)
	require.Len(t, domain, 8)
	require.True(t, domain[0].RawEquals(cty.NumberIntVal(1)))
	require.True(t, domain[7].RawEquals(cty.NumberIntVal(8)))
}

func TestDeclareVariable_RedeclarationMustMatchShape(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("x", [][]cty.Value{ints(1, 2)}, model.Continuous, model.Bounds{}))

	err := m.DeclareVariable("x", [][]cty.Value{ints(3), ints(1)}, model.Continuous, model.Bounds{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "index positions")

	err = m.DeclareVariable("x", [][]cty.Value{ints(3)}, model.Integer, model.Bounds{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redeclared as integer")

	err = m.DeclareVariable("x", [][]cty.Value{ints(3)}, model.Continuous, model.Bounds{Lower: fp(0)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "different bounds")
}

func TestDeclareVariable_BinaryWithExplicitBoundsRejected(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	err := m.DeclareVariable("pick", nil, model.Binary, model.Bounds{Upper: fp(1)})
	require.Error(t, err)
	var modelErr *opterr.ModelError
	require.ErrorAs(t, err, &modelErr)

	require.NoError(t, m.DeclareVariable("pick", nil, model.Binary, model.Bounds{}))
	inst := m.Instances()[0]
	require.Equal(t, 0.0, inst.Lower)
	require.Equal(t, 1.0, inst.Upper)
}

func TestDeclareVariable_IntegerBoundsMustBeIntegral(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	err := m.DeclareVariable("n", nil, model.Integer, model.Bounds{Upper: fp(2.5)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "integral")
}

func TestDeclareVariable_InvertedBoundsRejected(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	err := m.DeclareVariable("x", nil, model.Continuous, model.Bounds{Lower: fp(5), Upper: fp(1)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds")
}

func TestSanitize_ChangeIsLoggedNotFatal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	m := model.New(logger)

	require.NoError(t, m.DeclareVariable("flow rate", [][]cty.Value{strs("a b")}, model.Continuous, model.Bounds{}))

	inst := m.Instances()[0]
	require.Equal(t, "flow_rate(a_b)", inst.Name)
	require.Equal(t, "flow rate(a b)", inst.RawName)
	require.Contains(t, buf.String(), "sanitized name for emission")
}

func TestSanitize_DigitLeadingNameGetsPrefix(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("2x", nil, model.Continuous, model.Bounds{}))
	require.Equal(t, "n2x", m.Instances()[0].Name)
}

func TestSanitize_CollisionBetweenDistinctRawNamesRejected(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("a b", nil, model.Continuous, model.Bounds{}))

	err := m.DeclareVariable("a_b", nil, model.Continuous, model.Bounds{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "collides")
}

func TestDeclareConstraint_DuplicateRejected(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	left := poly.Const(0)
	require.NoError(t, m.DeclareConstraint("cap", []string{"A"}, left, model.OpLe, poly.Const(1)))

	err := m.DeclareConstraint("cap", []string{"A"}, left, model.OpLe, poly.Const(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "declared twice")

	require.NoError(t, m.DeclareConstraint("cap", []string{"B"}, left, model.OpLe, poly.Const(1)))
	require.Len(t, m.Constraints(), 2)
}

func TestDeclareConstraint_MayShareNameWithVariable(t *testing.T) {
	t.Parallel()

	// LP rows and columns are distinct namespaces; a row named like an
	// existing scalar variable is legal, while row/row and column/column
	// collisions stay fatal.
	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("cap", nil, model.Continuous, model.Bounds{Lower: fp(0)}))

	require.NoError(t, m.DeclareConstraint("cap", nil, poly.Const(0), model.OpLe, poly.Const(1)))
	require.Error(t, m.DeclareConstraint("cap", nil, poly.Const(0), model.OpLe, poly.Const(1)))
	require.Error(t, m.DeclareVariable("cap", nil, model.Continuous, model.Bounds{Lower: fp(0)}))
}

func TestSetObjective_SecondDeclarationIsFatal(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.SetObjective(poly.Const(1), model.Minimize))

	err := m.SetObjective(poly.Const(2), model.Maximize)
	require.Error(t, err)
	var modelErr *opterr.ModelError
	require.ErrorAs(t, err, &modelErr)
}

func TestReplaceObjective_WarnsAndReplaces(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	m := model.New(logger)

	m.ReplaceObjective(poly.Const(1), model.Minimize)
	require.Empty(t, buf.String())

	m.ReplaceObjective(poly.Const(2), model.Maximize)
	require.Contains(t, buf.String(), "replacing previously set objective")

	obj, ok := m.Objective()
	require.True(t, ok)
	require.Equal(t, model.Maximize, obj.Direction)
	require.Equal(t, 2.0, obj.Expr.Constant)
}

func TestFreshAux_SeriesPerPrefix(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.Equal(t, "abs_1", m.FreshAux("abs"))
	require.Equal(t, "abs_2", m.FreshAux("abs"))
	require.Equal(t, "max_1", m.FreshAux("max"))
}

func TestSnapshotRestore_RewindsEverything(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("x", [][]cty.Value{ints(1, 2)}, model.Continuous, model.Bounds{}))
	snap := m.Snapshot()

	require.NoError(t, m.DeclareVariable("y", nil, model.Binary, model.Bounds{}))
	require.NoError(t, m.DeclareConstraint("row", nil, poly.Const(0), model.OpEq, poly.Const(0)))
	require.NoError(t, m.SetObjective(poly.Const(1), model.Minimize))
	m.FreshAux("abs")

	m.Restore(snap)

	require.Len(t, m.Instances(), 2)
	require.Empty(t, m.Constraints())
	_, hasObj := m.Objective()
	require.False(t, hasObj)
	require.Equal(t, "abs_1", m.FreshAux("abs"), "aux counters rewind with the snapshot")
	_, declared := m.Instance("y", nil)
	require.False(t, declared)

	// The restored model accepts the declarations again.
	require.NoError(t, m.DeclareVariable("y", nil, model.Binary, model.Bounds{}))
}
