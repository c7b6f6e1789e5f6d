package lpformat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/optlang/internal/lpformat"
	"github.com/vk/optlang/internal/model"
	"github.com/vk/optlang/internal/poly"
	"github.com/zclconf/go-cty/cty"
)

func fp(f float64) *float64 { return &f }

func render(t *testing.T, m *model.Model) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, lpformat.Write(&b, m))
	return b.String()
}

func TestWrite_FullModel(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	domain := [][]cty.Value{{cty.StringVal("bread"), cty.StringVal("milk")}}
	require.NoError(t, m.DeclareVariable("qty", domain, model.Continuous, model.Bounds{Lower: fp(0)}))
	require.NoError(t, m.DeclareVariable("batch", nil, model.Integer, model.Bounds{Lower: fp(0), Upper: fp(10)}))
	require.NoError(t, m.DeclareVariable("open", nil, model.Binary, model.Bounds{}))

	row := poly.New()
	row.AddTerm("qty(bread)", 1)
	row.AddTerm("qty(milk)", 1)
	require.NoError(t, m.DeclareConstraint("total", nil, row, model.OpGe, poly.Const(2)))

	mix := poly.New()
	mix.AddTerm("qty(bread)", 2)
	mix.AddTerm("batch", -1)
	mix.Constant = 1
	require.NoError(t, m.DeclareConstraint("mix", nil, mix, model.OpLe, poly.Const(5)))

	obj := poly.New()
	obj.AddTerm("qty(bread)", 100)
	obj.AddTerm("qty(milk)", 150)
	require.NoError(t, m.SetObjective(obj, model.Minimize))

	want := `Minimize
 obj: 100 qty(bread) + 150 qty(milk)
Subject To
 total: qty(bread) + qty(milk) >= 2
 mix: 2 qty(bread) - batch <= 4
Bounds
 0 <= batch <= 10
Generals
 batch
Binaries
 open
End
`
	require.Equal(t, want, render(t, m))
}

func TestWrite_ObjectiveConstantAndDirection(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("x", nil, model.Continuous, model.Bounds{Lower: fp(0)}))

	obj := poly.Const(7)
	obj.AddTerm("x", -1.5)
	require.NoError(t, m.SetObjective(obj, model.Maximize))

	out := render(t, m)
	require.Contains(t, out, "Maximize\n obj: - 1.5 x + 7\n")
}

func TestWrite_NoObjectiveEmitsEmptyMinimize(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	out := render(t, m)
	require.True(t, strings.HasPrefix(out, "Minimize\n obj:\n"), out)
	require.True(t, strings.HasSuffix(out, "End\n"))
}

func TestWrite_BoundLineVariants(t *testing.T) {
	t.Parallel()

	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("dflt", nil, model.Continuous, model.Bounds{Lower: fp(0)}))
	require.NoError(t, m.DeclareVariable("free", nil, model.Continuous, model.Bounds{}))
	require.NoError(t, m.DeclareVariable("capped", nil, model.Continuous, model.Bounds{Upper: fp(9)}))
	require.NoError(t, m.DeclareVariable("floor", nil, model.Continuous, model.Bounds{Lower: fp(-2)}))
	require.NoError(t, m.DeclareVariable("boxed", nil, model.Continuous, model.Bounds{Lower: fp(1), Upper: fp(2)}))

	out := render(t, m)
	require.NotContains(t, out, "dflt", "default zero-to-infinity bounds are omitted")
	require.Contains(t, out, " free free\n")
	require.Contains(t, out, " capped <= 9\n")
	require.Contains(t, out, " floor >= -2\n")
	require.Contains(t, out, " 1 <= boxed <= 2\n")
}

func TestWrite_IsDeterministic(t *testing.T) {
	t.Parallel()

	build := func() *model.Model {
		m := model.New(nil)
		domain := [][]cty.Value{{cty.StringVal("a"), cty.StringVal("b"), cty.StringVal("c")}}
		require.NoError(t, m.DeclareVariable("x", domain, model.Continuous, model.Bounds{Lower: fp(0)}))
		row := poly.New()
		for _, k := range []string{"x(c)", "x(a)", "x(b)"} {
			row.AddTerm(k, 1)
		}
		require.NoError(t, m.DeclareConstraint("r", nil, row, model.OpEq, poly.Const(1)))
		return m
	}

	first := render(t, build())
	for range 5 {
		require.Equal(t, first, render(t, build()))
	}
	// Term order follows first insertion, not name order.
	require.Contains(t, first, " r: x(c) + x(a) + x(b) = 1\n")
}
