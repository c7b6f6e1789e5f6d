package binding_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/optlang/internal/binding"
	"github.com/vk/optlang/internal/eval"
	"github.com/vk/optlang/internal/expr"
	"github.com/vk/optlang/internal/opterr"
	"github.com/zclconf/go-cty/cty"
)

// collect drains an enumeration into binding snapshots, stopping at the
// first error.
func collect(t *testing.T, clauses []expr.Clause, ev *eval.Evaluator) ([]map[string]string, error) {
	t.Helper()
	var out []map[string]string
	for b, err := range binding.Enumerate(clauses, binding.NewContext(), ev) {
		if err != nil {
			return out, err
		}
		snap := map[string]string{}
		for _, name := range b.Names() {
			v, _ := b.Lookup(name)
			snap[name] = eval.KeyText(v)
		}
		out = append(out, snap)
	}
	return out, nil
}

func TestEnumerate_NestedDeclarationOrder(t *testing.T) {
	t.Parallel()

	clauses := []expr.Clause{
		{Name: "i", Domain: &expr.Tuple{Elems: []expr.Node{expr.Number(1), expr.Number(2)}}},
		{Name: "j", Domain: &expr.Tuple{Elems: []expr.Node{expr.String("a"), expr.String("b")}}},
	}

	got, err := collect(t, clauses, eval.New(cty.NilVal))
	require.NoError(t, err)
	require.Equal(t, []map[string]string{
		{"i": "1", "j": "a"},
		{"i": "1", "j": "b"},
		{"i": "2", "j": "a"},
		{"i": "2", "j": "b"},
	}, got)
}

func TestEnumerate_LaterDomainSeesEarlierBinding(t *testing.T) {
	t.Parallel()

	// j ranges over 1..i, so the tuple count is triangular.
	clauses := []expr.Clause{
		{Name: "i", Domain: &expr.Range{Lo: expr.Number(1), Hi: expr.Number(3)}},
		{Name: "j", Domain: &expr.Range{Lo: expr.Number(1), Hi: &expr.SymbolicKey{Name: "i"}}},
	}

	got, err := collect(t, clauses, eval.New(cty.NilVal))
	require.NoError(t, err)
	require.Len(t, got, 6)
	require.Equal(t, map[string]string{"i": "3", "j": "2"}, got[4])
}

func TestEnumerate_FilterClausePrunesTuples(t *testing.T) {
	t.Parallel()

	clauses := []expr.Clause{
		{Name: "i", Domain: &expr.Range{Lo: expr.Number(1), Hi: expr.Number(4)}},
		{Domain: &expr.Comparison{
			Op:    expr.CmpNe,
			Left:  &expr.SymbolicKey{Name: "i"},
			Right: expr.Number(3),
		}},
	}

	got, err := collect(t, clauses, eval.New(cty.NilVal))
	require.NoError(t, err)
	require.Equal(t, []map[string]string{
		{"i": "1"}, {"i": "2"}, {"i": "4"},
	}, got)
}

func TestEnumerate_NonBooleanFilterIsDomainError(t *testing.T) {
	t.Parallel()

	clauses := []expr.Clause{
		{Name: "i", Domain: &expr.Range{Lo: expr.Number(1), Hi: expr.Number(2)}},
		{Domain: expr.Number(7)},
	}

	_, err := collect(t, clauses, eval.New(cty.NilVal))
	require.Error(t, err)
	var domainErr *opterr.DomainError
	require.ErrorAs(t, err, &domainErr)
}

func TestEnumerate_ScalarDomainIsDomainError(t *testing.T) {
	t.Parallel()

	clauses := []expr.Clause{
		{Name: "i", Domain: expr.Number(5)},
	}

	_, err := collect(t, clauses, eval.New(cty.NilVal))
	require.Error(t, err)
	var domainErr *opterr.DomainError
	require.ErrorAs(t, err, &domainErr)
}
