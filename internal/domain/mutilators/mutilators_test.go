package mutilators_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvariants.dev/pkg/cvariants/internal/adapter"
	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	"cvariants.dev/pkg/cvariants/internal/domain/mutilators"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

const deletionSeed = `int main() {
  int x = 0;
  int y = 1;
  x = y + 1;
  if (x != y) {
    return x;
  }
  return y;
}
`

var printer = adapter.NewSourcePrinter()

func discover(t *testing.T, src string) (*astkit.Registry, *m.File, *mutilators.Discovery) {
	t.Helper()

	file, err := adapter.NewTreeSitterCParser().Parse(context.Background(), "seed.c", adapter.PrepareSource([]byte(src)))
	require.NoError(t, err)

	file = astkit.Normalize(file)
	reg := astkit.NewRegistry()

	return reg, file, mutilators.Discover(reg, file)
}

func render(file *m.File) string {
	return string(printer.Print(nil, file))
}

func TestCorrupt_IsNotInvolution(t *testing.T) {
	for _, op := range []string{"<", ">", "<=", ">=", "==", "!="} {
		out, ok := mutilators.Corrupt(op)
		require.True(t, ok, op)
		assert.NotEqual(t, op, out)

		next, ok := mutilators.Corrupt(out)
		if ok && next == op {
			// "<" and "<=" (and ">" and ">=") swap into each other
			assert.Contains(t, []string{"<", ">", "<=", ">="}, op)
		}
	}

	eq, _ := mutilators.Corrupt("!=")
	assign, _ := mutilators.Corrupt(eq)
	assert.Equal(t, "=", assign)

	_, ok := mutilators.Corrupt(assign)
	assert.False(t, ok)
}

func TestDiscover_Sites(t *testing.T) {
	_, _, disc := discover(t, deletionSeed)

	require.Len(t, disc.Comparators, 1)
	assert.Equal(t, "!=", disc.Comparators[0].Aux)

	require.Len(t, disc.Deletions, 1)
	assert.Equal(t, 4, disc.Deletions[0].Coord.Line)

	var replacements []string
	for _, s := range disc.Misuses {
		replacements = append(replacements, s.Aux)
	}

	// x and y are each read three times
	assert.ElementsMatch(t, []string{"y", "x", "y", "x", "y", "x"}, replacements)
	assert.Equal(t, len(disc.Misuses), disc.Count(m.RuleVariableMisuse))
	assert.Equal(t, m.VarTypes{"x": "int", "y": "int"}, disc.Vars)
}

func TestDiscover_MisuseRespectsTypesAndScopes(t *testing.T) {
	src := `int main() {
  int a = 1;
  float f = 2;
  {
    int inner = a;
    a = inner;
  }
  return a;
}
`
	_, _, disc := discover(t, src)

	for _, s := range disc.Misuses {
		assert.NotEqual(t, "f", s.Aux, "float is never a candidate for an int read")
	}

	var inner int
	for _, s := range disc.Misuses {
		if s.Aux == "inner" {
			inner++
		}
	}

	// "a = inner" offers inner for a; "return a" is outside the inner scope
	assert.Equal(t, 1, inner)
}

func TestApply_AssignmentDeletion(t *testing.T) {
	reg, file, disc := discover(t, deletionSeed)

	id := disc.Deletions[0].ID
	out, entries := mutilators.Apply(reg, file, mutilators.Selection{Deletion: &id}, printer.Expr)

	assert.NotContains(t, render(out), "x = y + 1;")
	assert.Contains(t, render(file), "x = y + 1;")
	require.Len(t, entries, 1)
	assert.Equal(t, m.BugEntry{
		Kind:     m.BugAssignmentDeletion,
		Site:     "l4-c3",
		Original: "Assignment-x = y + 1",
		Injected: "AssignmentDeletion",
	}, entries[0])
}

func TestApply_ComparatorCorruption(t *testing.T) {
	reg, file, disc := discover(t, deletionSeed)

	sel := mutilators.Selection{Comparators: map[m.NodeID]struct{}{disc.Comparators[0].ID: {}}}
	out, entries := mutilators.Apply(reg, file, sel, printer.Expr)

	assert.Contains(t, render(out), "if (x == y)")
	require.Len(t, entries, 1)
	assert.Equal(t, m.BugComparatorCorruption, entries[0].Kind)
	assert.Equal(t, "BinaryOp-!=", entries[0].Original)
	assert.Equal(t, "BinaryOp-==", entries[0].Injected)
}

func TestApply_EqualityBecomesAssignment(t *testing.T) {
	reg, file, disc := discover(t, "int f(int a, int b) { if (a == b) return 1; return 0; }\n")

	sel := mutilators.Selection{Comparators: map[m.NodeID]struct{}{disc.Comparators[0].ID: {}}}
	out, entries := mutilators.Apply(reg, file, sel, printer.Expr)

	assert.Contains(t, render(out), "if (a = b)")
	require.Len(t, entries, 1)
	assert.Equal(t, "Assignment-=", entries[0].Injected)
}

func TestApply_VariableMisuse(t *testing.T) {
	reg, file, disc := discover(t, deletionSeed)

	var site *m.MutationSite

	for i, s := range disc.Misuses {
		if s.Coord.Line == 4 && s.Aux == "x" {
			site = &disc.Misuses[i]
		}
	}

	require.NotNil(t, site, "y in x = y + 1 can be replaced by x")

	sel := mutilators.Selection{Misuse: &mutilators.Misuse{Site: site.ID, Name: site.Aux}}
	out, entries := mutilators.Apply(reg, file, sel, printer.Expr)

	assert.Contains(t, render(out), "x = x + 1;")
	require.Len(t, entries, 1)
	assert.Equal(t, "VarMisuse-y", entries[0].Original)
	assert.Equal(t, "VarMisuse-x", entries[0].Injected)
}

func TestApply_DeletionSwallowsBugsInsideStatement(t *testing.T) {
	reg, file, disc := discover(t, deletionSeed)

	var site m.MutationSite

	for _, s := range disc.Misuses {
		if s.Coord.Line == 4 {
			site = s

			break
		}
	}

	id := disc.Deletions[0].ID
	sel := mutilators.Selection{
		Deletion: &id,
		Misuse:   &mutilators.Misuse{Site: site.ID, Name: site.Aux},
	}

	_, entries := mutilators.Apply(reg, file, sel, printer.Expr)

	require.Len(t, entries, 1)
	assert.Equal(t, m.BugAssignmentDeletion, entries[0].Kind)
}
