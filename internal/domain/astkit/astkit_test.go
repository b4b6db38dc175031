package astkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

func at(line, col int) m.Coord {
	return m.Coord{File: "seed.c", Line: line, Column: col}
}

func TestRegistry_StableIDs(t *testing.T) {
	r := NewRegistry()

	first := r.ID(at(3, 5), TagBinary)
	second := r.ID(at(4, 1), TagIf)

	assert.Equal(t, m.NodeID(0), first)
	assert.Equal(t, m.NodeID(1), second)
	assert.Equal(t, first, r.ID(at(3, 5), TagBinary))
	assert.NotEqual(t, first, r.ID(at(3, 5), TagTernary))
	assert.Equal(t, 3, r.Len())

	id, ok := r.Lookup(at(4, 1), TagIf)
	require.True(t, ok)
	assert.Equal(t, second, id)

	_, ok = r.Lookup(at(9, 9), TagIf)
	assert.False(t, ok)
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	r.ID(at(1, 1), TagDecl)
	r.ID(at(2, 1), TagDecl)

	r.Reset()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, m.NodeID(0), r.ID(at(2, 1), TagDecl))
}

func sampleFile() *m.File {
	// int f(int a) { int b = a; if (a < b) b++; for (;;) continue; return b; }
	return &m.File{Name: "seed.c", Items: []m.ExternalDecl{
		&m.FuncDef{
			Coord: at(1, 1), ReturnType: "int", Name: "f",
			Params: []*m.Decl{{Coord: at(1, 7), Type: "int", Name: "a"}},
			Body: &m.Compound{Coord: at(1, 14), Items: []m.Stmt{
				&m.Decl{Coord: at(2, 3), Type: "int", Name: "b", Init: &m.Ident{Coord: at(2, 11), Name: "a"}},
				&m.If{
					Coord: at(3, 3),
					Cond:  &m.BinaryOp{Coord: at(3, 9), Op: "<", Left: &m.Ident{Coord: at(3, 7), Name: "a"}, Right: &m.Ident{Coord: at(3, 11), Name: "b"}},
					Then:  &m.ExprStmt{Coord: at(3, 14), X: &m.UnaryOp{Coord: at(3, 14), Op: "++", Postfix: true, X: &m.Ident{Coord: at(3, 14), Name: "b"}}},
				},
				&m.For{Coord: at(4, 3), Body: &m.Continue{Coord: at(4, 12)}},
				&m.Return{Coord: at(5, 3), X: &m.Ident{Coord: at(5, 10), Name: "b"}},
			}},
		},
	}}
}

func TestNormalize_WrapsBranches(t *testing.T) {
	src := sampleFile()
	out := Normalize(src)

	body := out.Func("f").Body
	ifStmt, ok := body.Items[1].(*m.If)
	require.True(t, ok)

	then, ok := ifStmt.Then.(*m.Compound)
	require.True(t, ok)
	assert.True(t, then.Synthetic)
	assert.Equal(t, at(3, 14), then.Coord)

	loop, ok := body.Items[2].(*m.For)
	require.True(t, ok)
	_, ok = loop.Body.(*m.Compound)
	assert.True(t, ok)

	// the input is untouched
	_, ok = src.Func("f").Body.Items[1].(*m.If).Then.(*m.ExprStmt)
	assert.True(t, ok)
}

func TestRewriter_StmtHookSplicesAndRemoves(t *testing.T) {
	r := Rewriter{Stmt: func(s m.Stmt) []m.Stmt {
		switch s.(type) {
		case *m.Return:
			return nil
		case *m.Decl:
			return []m.Stmt{s, &m.Empty{Coord: s.Pos()}}
		}

		return []m.Stmt{s}
	}}

	out := r.File(sampleFile())
	items := out.Func("f").Body.Items

	require.Len(t, items, 4)
	assert.IsType(t, &m.Decl{}, items[0])
	assert.IsType(t, &m.Empty{}, items[1])
	assert.IsType(t, &m.If{}, items[2])
	assert.IsType(t, &m.For{}, items[3])
}

func TestRewriter_ExprHookIsPostOrder(t *testing.T) {
	var seen []string

	r := Rewriter{Expr: func(e m.Expr) m.Expr {
		if id, ok := e.(*m.Ident); ok {
			seen = append(seen, id.Name)
		}

		if b, ok := e.(*m.BinaryOp); ok {
			seen = append(seen, b.Op)
		}

		return e
	}}
	r.File(sampleFile())

	assert.Equal(t, []string{"a", "a", "b", "<", "b", "b"}, seen)
}

func TestInspectHelpers(t *testing.T) {
	file := sampleFile()
	fn := file.Func("f")

	assert.True(t, ContainsContinue(fn.Body.Items[2]))
	assert.False(t, ContainsContinue(fn.Body.Items[1]))

	call := &m.Call{Func: &m.Ident{Name: "g"}, Args: []m.Expr{
		&m.BinaryOp{Op: "+", Left: &m.Ident{Name: "x"}, Right: &m.Ident{Name: "y"}},
		&m.Ident{Name: "x"},
	}}
	assert.Equal(t, []string{"x", "y"}, Reads(call))
	assert.True(t, HasSideEffects(call))
	assert.False(t, HasSideEffects(call.Args[0]))
	assert.True(t, HasSideEffects(&m.UnaryOp{Op: "--", X: &m.Ident{Name: "x"}}))

	assert.Equal(t, m.VarTypes{"a": "int", "b": "int"}, CollectVars(file))

	names := AllNames(file)
	for _, n := range []string{"f", "a", "b"} {
		assert.Contains(t, names, n)
	}
}
