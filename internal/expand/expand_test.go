package expand_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/optlang/internal/expand"
	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/model"
	"github.com/vk/optlang/internal/opterr"
	"github.com/zclconf/go-cty/cty"
)

// registry declares qty over (bread, milk) and route over (A,B)x(1,2).
func registry(t *testing.T) *model.Model {
	t.Helper()
	m := model.New(nil)
	require.NoError(t, m.DeclareVariable("qty",
		[][]cty.Value{{cty.StringVal("bread"), cty.StringVal("milk")}},
		model.Continuous, model.Bounds{}))
	require.NoError(t, m.DeclareVariable("route",
		[][]cty.Value{
			{cty.StringVal("A"), cty.StringVal("B")},
			{cty.NumberIntVal(1), cty.NumberIntVal(2)},
		},
		model.Continuous, model.Bounds{}))
	return m
}

func wild(name string, n int) *expr.VariableRef {
	indices := make([]expr.Node, n)
	for i := range indices {
		indices[i] = &expr.Wildcard{}
	}
	return &expr.VariableRef{Name: name, Indices: indices}
}

func TestExpand_SingleWildcardUsesFamilyDomain(t *testing.T) {
	t.Parallel()

	m := registry(t)
	instances, expanded, err := expand.Expand(wild("qty", 1), m)
	require.NoError(t, err)
	require.True(t, expanded)
	require.Len(t, instances, 2)

	first := instances[0].(*expr.VariableRef)
	require.Equal(t, "bread", first.Indices[0].(*expr.Literal).Val.AsString())
	second := instances[1].(*expr.VariableRef)
	require.Equal(t, "milk", second.Indices[0].(*expr.Literal).Val.AsString())
}

func TestExpand_IndependentWildcardsCrossProduct(t *testing.T) {
	t.Parallel()

	m := registry(t)
	instances, expanded, err := expand.Expand(wild("route", 2), m)
	require.NoError(t, err)
	require.True(t, expanded)
	require.Len(t, instances, 4)

	// Nested domain order: later positions iterate fastest.
	last := instances[3].(*expr.VariableRef)
	require.Equal(t, "B", last.Indices[0].(*expr.Literal).Val.AsString())
	require.True(t, last.Indices[1].(*expr.Literal).Val.RawEquals(cty.NumberIntVal(2)))
}

func TestExpand_LookupWildcardSharesVariableRole(t *testing.T) {
	t.Parallel()

	m := registry(t)
	// cost[*] * qty[*]: the lookup wildcard and the variable wildcard are
	// one role, iterating in lockstep over qty's index domain.
	n := &expr.BinaryOp{
		Op: expr.OpMul,
		Left: &expr.Lookup{
			Container: &expr.SymbolicKey{Name: "cost"},
			Key:       &expr.Wildcard{},
		},
		Right: wild("qty", 1),
	}

	instances, expanded, err := expand.Expand(n, m)
	require.NoError(t, err)
	require.True(t, expanded)
	require.Len(t, instances, 2)

	for i, want := range []string{"bread", "milk"} {
		bin := instances[i].(*expr.BinaryOp)
		key := bin.Left.(*expr.Lookup).Key.(*expr.Literal)
		idx := bin.Right.(*expr.VariableRef).Indices[0].(*expr.Literal)
		require.Equal(t, want, key.Val.AsString())
		require.Equal(t, want, idx.Val.AsString(), "lookup and variable wildcards must hold the same value per step")
	}
}

func TestExpand_LookupWildcardWithoutVariableRoleIsAmbiguous(t *testing.T) {
	t.Parallel()

	m := registry(t)
	n := &expr.Lookup{
		Container: &expr.SymbolicKey{Name: "cost"},
		Key:       &expr.Wildcard{},
	}

	_, _, err := expand.Expand(n, m)
	require.Error(t, err)
	var ambiguous *opterr.AmbiguousWildcardError
	require.ErrorAs(t, err, &ambiguous)
}

func TestExpand_ExcessLookupWildcardsAreAmbiguous(t *testing.T) {
	t.Parallel()

	m := registry(t)
	n := &expr.BinaryOp{
		Op: expr.OpMul,
		Left: &expr.Lookup{
			Container: &expr.Lookup{
				Container: &expr.SymbolicKey{Name: "cost"},
				Key:       &expr.Wildcard{},
			},
			Key: &expr.Wildcard{},
		},
		Right: wild("qty", 1),
	}

	_, _, err := expand.Expand(n, m)
	require.Error(t, err)
	var ambiguous *opterr.AmbiguousWildcardError
	require.ErrorAs(t, err, &ambiguous)
}

func TestExpand_UndeclaredFamilyIsAmbiguous(t *testing.T) {
	t.Parallel()

	m := registry(t)
	_, _, err := expand.Expand(wild("ghost", 1), m)
	require.Error(t, err)
	var ambiguous *opterr.AmbiguousWildcardError
	require.ErrorAs(t, err, &ambiguous)
}

func TestExpand_NoWildcardPassesThrough(t *testing.T) {
	t.Parallel()

	m := registry(t)
	n := &expr.VariableRef{Name: "qty", Indices: []expr.Node{expr.String("bread")}}

	instances, expanded, err := expand.Expand(n, m)
	require.NoError(t, err)
	require.False(t, expanded)
	require.Nil(t, instances)
}
