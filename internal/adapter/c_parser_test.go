package adapter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

const minimalSeed = "#include <stdio.h>\nint f(){ int a=1; int b=a+1; if(a<b) return a; else return b; }\n"

func parseSeed(t *testing.T, text string) (*m.File, m.PreparedSource) {
	t.Helper()

	prepared := PrepareSource([]byte(text))
	file, err := NewTreeSitterCParser().Parse(context.Background(), "seed.c", prepared)
	require.NoError(t, err)

	return file, prepared
}

func TestPrepareSource_SplitsIncludes(t *testing.T) {
	src := "#include \"util.h\"\n#include <stdio.h>\n  # include <stdlib.h>\nint main() { return 0; }\n"

	prepared := PrepareSource([]byte(src))

	assert.Equal(t, []string{"#include <stdio.h>", "# include <stdlib.h>"}, prepared.SystemIncludes)
	assert.Equal(t, []string{"#include \"util.h\""}, prepared.LocalIncludes)
	assert.Equal(t, []string{"#include <stdio.h>", "# include <stdlib.h>", "#include \"util.h\""}, prepared.Includes())

	lines := strings.Split(string(prepared.Text), "\n")
	assert.Equal(t, MarkerFunction, lines[0])
	assert.Equal(t, 1, prepared.LineOffset)
	assert.NotContains(t, string(prepared.Text), "#include")
	assert.Contains(t, string(prepared.Text), "int main() { return 0; }")
}

func TestTreeSitterCParser_Function(t *testing.T) {
	file, _ := parseSeed(t, minimalSeed)

	require.Len(t, file.Items, 1)

	fn := file.Func("f")
	require.NotNil(t, fn)
	assert.Equal(t, "int", fn.ReturnType)
	assert.Empty(t, fn.Params)
	require.Len(t, fn.Body.Items, 3)

	a, ok := fn.Body.Items[0].(*m.Decl)
	require.True(t, ok)
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, "int", a.Type)
	assert.Equal(t, &m.Literal{Coord: m.Coord{File: "seed.c", Line: 2, Column: 16}, Text: "1"}, a.Init)

	b, ok := fn.Body.Items[1].(*m.Decl)
	require.True(t, ok)
	assert.IsType(t, &m.BinaryOp{}, b.Init)

	ifStmt, ok := fn.Body.Items[2].(*m.If)
	require.True(t, ok)

	cond, ok := ifStmt.Cond.(*m.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "<", cond.Op)
	assert.Equal(t, m.Coord{File: "seed.c", Line: 2, Column: 34}, cond.Coord)
	assert.IsType(t, &m.Return{}, ifStmt.Then)
	assert.IsType(t, &m.Return{}, ifStmt.Else)
}

func TestTreeSitterCParser_CoordinatesFollowSeedLines(t *testing.T) {
	src := "#include <stdio.h>\nint main() {\n  int x;\n  x = 1;\n  return x;\n}\n"

	file, _ := parseSeed(t, src)

	fn := file.Func("main")
	require.NotNil(t, fn)
	assert.Equal(t, m.Coord{File: "seed.c", Line: 2, Column: 1}, fn.Coord)

	assign, ok := fn.Body.Items[1].(*m.ExprStmt)
	require.True(t, ok)
	assert.Equal(t, "l4-c3", assign.Coord.String())
}

func TestTreeSitterCParser_Constructs(t *testing.T) {
	src := `#include <stdio.h>
int g = 3;
int sum(int n, int *v) {
  int i, s = 0;
  int arr[10];
  for (i = 0; i < n; i++) s += v[i];
  while (s > 100) { s--; }
  do { ++s; } while (s < 0);
  switch (s) { case 1: s = 2; break; default: s = g > 0 ? g : -g; }
  printf("%d\n", s);
  return (s);
}
`
	file, _ := parseSeed(t, src)

	require.Len(t, file.Items, 2)

	g, ok := file.Items[0].(*m.Decl)
	require.True(t, ok)
	assert.Equal(t, "g", g.Name)

	fn := file.Func("sum")
	require.NotNil(t, fn)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "*", fn.Params[1].Pointer)

	items := fn.Body.Items
	require.Len(t, items, 9)

	assert.Equal(t, "i", items[0].(*m.Decl).Name)
	assert.Equal(t, "s", items[1].(*m.Decl).Name)
	assert.Equal(t, []string{"10"}, items[2].(*m.Decl).Dims)

	loop, ok := items[3].(*m.For)
	require.True(t, ok)
	require.Len(t, loop.Init, 1)
	assert.IsType(t, &m.ExprStmt{}, loop.Init[0])

	step, ok := loop.Step.(*m.UnaryOp)
	require.True(t, ok)
	assert.True(t, step.Postfix)
	assert.Equal(t, "++", step.Op)

	assert.IsType(t, &m.While{}, items[4])
	assert.IsType(t, &m.DoWhile{}, items[5])

	sw, ok := items[6].(*m.Switch)
	require.True(t, ok)

	cases := sw.Body.(*m.Compound).Items
	require.Len(t, cases, 2)
	assert.NotNil(t, cases[0].(*m.Case).Value)
	assert.Nil(t, cases[1].(*m.Case).Value)
	assert.Len(t, cases[0].(*m.Case).Body, 2)

	call := items[7].(*m.ExprStmt).X.(*m.Call)
	assert.Len(t, call.Args, 2)

	assert.IsType(t, &m.Ident{}, items[8].(*m.Return).X)
}

func TestTreeSitterCParser_SyntaxError(t *testing.T) {
	prepared := PrepareSource([]byte("int main() { int a = ; }\n"))

	_, err := NewTreeSitterCParser().Parse(context.Background(), "bad.c", prepared)
	require.ErrorIs(t, err, m.ErrParse)
}

func TestSourcePrinter_RoundTrip(t *testing.T) {
	file, prepared := parseSeed(t, minimalSeed)

	out := NewSourcePrinter().Print(prepared.Includes(), astkit.Normalize(file))

	want := `#include <stdio.h>

int f()
{
  int a = 1;
  int b = a + 1;
  if (a < b)
  {
    return a;
  }
  else
  {
    return b;
  }
}
`
	assert.Equal(t, want, string(out))
}

func TestSourcePrinter_Precedence(t *testing.T) {
	p := NewSourcePrinter()
	id := func(n string) m.Expr { return &m.Ident{Name: n} }

	tests := []struct {
		name string
		expr m.Expr
		want string
	}{
		{
			name: "left nested sum keeps no parens",
			expr: &m.BinaryOp{Op: "+", Left: &m.BinaryOp{Op: "+", Left: id("a"), Right: id("b")}, Right: id("c")},
			want: "a + b + c",
		},
		{
			name: "right nested difference needs parens",
			expr: &m.BinaryOp{Op: "-", Left: id("a"), Right: &m.BinaryOp{Op: "-", Left: id("b"), Right: id("c")}},
			want: "a - (b - c)",
		},
		{
			name: "negated comparison",
			expr: &m.UnaryOp{Op: "!", X: &m.BinaryOp{Op: "<", Left: id("a"), Right: id("b")}},
			want: "!(a < b)",
		},
		{
			name: "double minus",
			expr: &m.UnaryOp{Op: "-", X: &m.UnaryOp{Op: "-", X: id("x")}},
			want: "-(-x)",
		},
		{
			name: "postfix on member",
			expr: &m.UnaryOp{Op: "++", Postfix: true, X: &m.Member{X: id("p"), Field: "n", Arrow: true}},
			want: "p->n++",
		},
		{
			name: "assignment inside condition",
			expr: &m.BinaryOp{Op: "!=", Left: &m.Assignment{Op: "=", LHS: id("c"), RHS: &m.Call{Func: id("getchar")}}, Right: &m.Literal{Text: "-1"}},
			want: "(c = getchar()) != -1",
		},
		{
			name: "ternary",
			expr: &m.Ternary{Cond: &m.UnaryOp{Op: "!", X: id("a")}, Then: id("b"), Else: id("c")},
			want: "!a ? b : c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Expr(tt.expr))
		})
	}
}
