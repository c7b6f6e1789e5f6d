package model_output_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/optlang/internal/testutil"
)

func TestDietModel_CompilesToExpectedLP(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"diet.hcl": `
			variable "qty" {
				index     = [["bread", "milk", "eggs"]]
				min_bound = 0
			}

			params {
				cost   = { bread = 100, milk = 150, eggs = 80 }
				demand = 2
			}

			constraint "total" {
				expr = sum(qty["*"]) >= demand
			}

			constraint "cap" {
				forall = { item = ["bread", "milk", "eggs"] }
				expr   = qty[item] <= 10
			}

			objective {
				direction = "minimize"
				expr      = sum(qty["*"] * cost["*"])
			}
		`,
	}

	result := testutil.CompileModel(t, files, "")
	require.NoError(t, result.Err)

	testutil.AssertInstanceNames(t, result, "qty(bread)", "qty(milk)", "qty(eggs)")
	testutil.AssertLPLine(t, result, "obj: 100 qty(bread) + 150 qty(milk) + 80 qty(eggs)")
	testutil.AssertLPLine(t, result, "total: qty(bread) + qty(milk) + qty(eggs) >= 2")
	testutil.AssertLPLine(t, result, "cap(bread): qty(bread) <= 10")
	testutil.AssertLPLine(t, result, "cap(eggs): qty(eggs) <= 10")
	require.Contains(t, result.LP, "End\n")
}

func TestDietModel_ParamsFileOverridesBlocks(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"diet.hcl": `
			variable "qty" {
				index     = [["bread", "milk"]]
				min_bound = 0
			}

			params {
				cost = { bread = 1, milk = 1 }
			}

			objective {
				direction = "minimize"
				expr      = sum(qty["*"] * cost["*"])
			}
		`,
	}
	params := `{"cost": {"bread": 100, "milk": 150}}`

	result := testutil.CompileModel(t, files, params)
	require.NoError(t, result.Err)
	testutil.AssertLPLine(t, result, "obj: 100 qty(bread) + 150 qty(milk)")
}

func TestModel_SplitAcrossFilesCompilesVariablesFirst(t *testing.T) {
	t.Parallel()

	// The constraint file sorts before the variable file; the compiler
	// must still see the family declared before compiling the row.
	files := map[string]string{
		"a_rows.hcl": `
			constraint "total" {
				expr = sum(x["*"]) >= 1
			}
		`,
		"b_vars.hcl": `
			variable "x" {
				index     = [["p", "q"]]
				min_bound = 0
			}
		`,
	}

	result := testutil.CompileModel(t, files, "")
	require.NoError(t, result.Err)
	testutil.AssertLPLine(t, result, "total: x(p) + x(q) >= 1")
}
