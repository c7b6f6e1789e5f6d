package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLPLine checks that the rendered LP output contains the given
// line, ignoring the leading indent. It abstracts the exact whitespace
// convention of the writer, making tests more resilient to formatting
// changes.
func AssertLPLine(t *testing.T, result *CompileResult, line string) {
	t.Helper()

	for _, got := range strings.Split(result.LP, "\n") {
		if strings.TrimSpace(got) == strings.TrimSpace(line) {
			return
		}
	}
	require.Failf(t, "missing LP line", "expected line %q in LP output:\n%s", line, result.LP)
}

// AssertInstanceNames checks that the compiled model registered exactly
// the given variable instance names, in registration order.
func AssertInstanceNames(t *testing.T, result *CompileResult, names ...string) {
	t.Helper()

	require.NotNil(t, result.Model)
	var got []string
	for _, inst := range result.Model.Instances() {
		got = append(got, inst.Name)
	}
	require.Equal(t, names, got)
}
