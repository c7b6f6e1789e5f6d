package frontend_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/optlang/internal/eval"
	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/frontend"
	"github.com/vk/optlang/internal/model"
)

func load(t *testing.T, src string) *frontend.Definition {
	t.Helper()
	def, err := frontend.LoadSource("test.hcl", []byte(src))
	require.NoError(t, err)
	return def
}

func TestLoadSource_VariableDeclarations(t *testing.T) {
	t.Parallel()

	def := load(t, `
		variable "qty" {
			index     = [["bread", "milk"]]
			min_bound = 0
		}

		variable "batch" {
			kind      = "integer"
			min_bound = 0
			max_bound = 10
		}

		variable "open" {
			kind = "binary"
		}

		variable "drift" {
			min_bound = "-inf"
			max_bound = "inf"
		}
	`)

	require.Len(t, def.Variables, 4)

	qty := def.Variables[0]
	require.Equal(t, "qty", qty.Name)
	require.Equal(t, model.Continuous, qty.Kind)
	require.Len(t, qty.Index, 1)
	domain, ok := qty.Index[0].(*expr.Tuple)
	require.True(t, ok)
	require.Len(t, domain.Elems, 2)
	require.NotNil(t, qty.Bounds.Lower)
	require.Equal(t, 0.0, *qty.Bounds.Lower)
	require.Nil(t, qty.Bounds.Upper)

	batch := def.Variables[1]
	require.Equal(t, model.Integer, batch.Kind)
	require.Nil(t, batch.Index)
	require.Equal(t, 10.0, *batch.Bounds.Upper)

	open := def.Variables[2]
	require.Equal(t, model.Binary, open.Kind)
	require.Nil(t, open.Bounds.Lower)
	require.Nil(t, open.Bounds.Upper)

	drift := def.Variables[3]
	require.True(t, math.IsInf(*drift.Bounds.Lower, -1))
	require.True(t, math.IsInf(*drift.Bounds.Upper, 1))
}

func TestLoadSource_InvalidKindRejected(t *testing.T) {
	t.Parallel()

	_, err := frontend.LoadSource("test.hcl", []byte(`
		variable "x" {
			kind = "boolean"
		}
	`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "kind must be")
}

func TestLoadSource_InvalidBoundTokenRejected(t *testing.T) {
	t.Parallel()

	_, err := frontend.LoadSource("test.hcl", []byte(`
		variable "x" {
			min_bound = "lots"
		}
	`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "infinity token")
}

func TestLoadSource_ParamsBlock(t *testing.T) {
	t.Parallel()

	def := load(t, `
		params {
			budget = 500
			cost   = { bread = 100, milk = 150 }
		}
	`)

	require.Len(t, def.Params, 2)
	f, err := eval.Float(def.Params["budget"])
	require.NoError(t, err)
	require.Equal(t, 500.0, f)
	require.True(t, def.Params["cost"].Type().IsObjectType())
}

func TestLoadSource_ForallOrderAndWhereFilters(t *testing.T) {
	t.Parallel()

	def := load(t, `
		variable "x" {
			index = [range(1, 3), range(1, 3)]
		}

		constraint "order" {
			forall = { i = range(1, 3), j = range(1, 3) }
			where  = [i < j]
			expr   = x[i] + x[j] <= 1
		}
	`)

	require.Len(t, def.Constraints, 1)
	decl := def.Constraints[0]
	require.Equal(t, "order", decl.Name)

	// Generator clauses keep declaration order; filters follow them.
	require.Len(t, decl.Clauses, 3)
	require.Equal(t, "i", decl.Clauses[0].Name)
	require.Equal(t, "j", decl.Clauses[1].Name)
	require.Empty(t, decl.Clauses[2].Name)
	_, isCmp := decl.Clauses[2].Domain.(*expr.Comparison)
	require.True(t, isCmp)

	cmp, ok := decl.Expr.(*expr.Comparison)
	require.True(t, ok)
	require.Equal(t, expr.CmpLe, cmp.Op)
}

func TestLoadSource_ForallMustBeObject(t *testing.T) {
	t.Parallel()

	_, err := frontend.LoadSource("test.hcl", []byte(`
		constraint "c" {
			forall = [1, 2]
			expr   = 1 <= 2
		}
	`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "forall must be an object")
}

func TestLoadSource_ObjectiveDirection(t *testing.T) {
	t.Parallel()

	def := load(t, `
		variable "x" {}

		objective {
			direction = "maximize"
			expr      = x
		}
	`)
	require.Len(t, def.Objectives, 1)
	require.Equal(t, model.Maximize, def.Objectives[0].Direction)
	_, isRef := def.Objectives[0].Expr.(*expr.VariableRef)
	require.True(t, isRef)

	_, err := frontend.LoadSource("test.hcl", []byte(`
		objective {
			direction = "upwards"
			expr      = 1
		}
	`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "minimize or maximize")
}

func TestLoadSource_MultipleObjectiveBlocksArePreserved(t *testing.T) {
	t.Parallel()

	// Duplicate objectives are the compiler's error to raise, not the
	// parser's; both declarations must survive loading.
	def := load(t, `
		objective {
			direction = "minimize"
			expr      = 1
		}
		objective {
			direction = "maximize"
			expr      = 2
		}
	`)
	require.Len(t, def.Objectives, 2)
}
