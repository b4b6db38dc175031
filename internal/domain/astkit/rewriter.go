package astkit

import (
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Rewriter rebuilds a tree bottom-up and never mutates its input. Each hook
// receives a node whose children were already rebuilt and returns the
// replacement; nil hooks keep the node as is.
//
// Single statements used as an if branch or a loop body are always wrapped
// into a synthetic Compound, so every rewritten tree has braced branches.
type Rewriter struct {
	// Expr is called for every expression.
	Expr func(e m.Expr) m.Expr
	// Stmt is called for every non-block statement that sits in a statement
	// list. Returning nil removes the statement; returning several splices
	// them in place.
	Stmt func(s m.Stmt) []m.Stmt
	// Block is called for every block after its items were rebuilt.
	Block func(b *m.Compound) *m.Compound
	// Func is called for every function definition.
	Func func(fd *m.FuncDef) *m.FuncDef
}

// Normalize returns a copy of file with every branch and loop body braced.
func Normalize(file *m.File) *m.File {
	return Rewriter{}.File(file)
}

// File rewrites a whole translation unit.
func (r Rewriter) File(file *m.File) *m.File {
	if file == nil {
		return nil
	}

	out := &m.File{Name: file.Name, Items: make([]m.ExternalDecl, 0, len(file.Items))}

	for _, item := range file.Items {
		switch it := item.(type) {
		case *m.FuncDef:
			out.Items = append(out.Items, r.funcDef(it))
		case *m.Decl:
			out.Items = append(out.Items, r.decl(it))
		case *m.RawDecl:
			cp := *it
			out.Items = append(out.Items, &cp)
		}
	}

	return out
}

func (r Rewriter) funcDef(fd *m.FuncDef) *m.FuncDef {
	out := *fd

	out.Params = make([]*m.Decl, 0, len(fd.Params))
	for _, p := range fd.Params {
		cp := *p
		out.Params = append(out.Params, &cp)
	}

	if fd.Body != nil {
		out.Body = r.compound(fd.Body)
	}

	if r.Func != nil {
		return r.Func(&out)
	}

	return &out
}

// Stmts rewrites a statement list, applying splicing.
func (r Rewriter) Stmts(list []m.Stmt) []m.Stmt {
	out := make([]m.Stmt, 0, len(list))

	for _, s := range list {
		out = append(out, r.stmt(s)...)
	}

	return out
}

func (r Rewriter) stmt(s m.Stmt) []m.Stmt {
	if s == nil {
		return nil
	}

	if b, ok := s.(*m.Compound); ok {
		return []m.Stmt{r.compound(b)}
	}

	rebuilt := r.rebuildStmt(s)
	if r.Stmt != nil {
		return r.Stmt(rebuilt)
	}

	return []m.Stmt{rebuilt}
}

func (r Rewriter) compound(b *m.Compound) *m.Compound {
	out := &m.Compound{Coord: b.Coord, Synthetic: b.Synthetic, Items: r.Stmts(b.Items)}
	if r.Block != nil {
		return r.Block(out)
	}

	return out
}

// body wraps a lone statement into a synthetic block before rewriting it.
func (r Rewriter) body(s m.Stmt) m.Stmt {
	if s == nil {
		return nil
	}

	if b, ok := s.(*m.Compound); ok {
		return r.compound(b)
	}

	return r.compound(&m.Compound{Coord: s.Pos(), Items: []m.Stmt{s}, Synthetic: true})
}

//nolint:cyclop // one case per statement kind
func (r Rewriter) rebuildStmt(s m.Stmt) m.Stmt {
	switch st := s.(type) {
	case *m.Compound:
		return r.compound(st)
	case *m.Decl:
		return r.decl(st)
	case *m.ExprStmt:
		return &m.ExprStmt{Coord: st.Coord, X: r.expr(st.X)}
	case *m.If:
		return &m.If{Coord: st.Coord, Cond: r.expr(st.Cond), Then: r.body(st.Then), Else: r.body(st.Else)}
	case *m.For:
		init := make([]m.Stmt, 0, len(st.Init))
		for _, is := range st.Init {
			init = append(init, r.rebuildStmt(is))
		}

		return &m.For{Coord: st.Coord, Init: init, Cond: r.expr(st.Cond), Step: r.expr(st.Step), Body: r.body(st.Body)}
	case *m.While:
		return &m.While{Coord: st.Coord, Cond: r.expr(st.Cond), Body: r.body(st.Body)}
	case *m.DoWhile:
		return &m.DoWhile{Coord: st.Coord, Body: r.body(st.Body), Cond: r.expr(st.Cond)}
	case *m.Switch:
		return &m.Switch{Coord: st.Coord, Cond: r.expr(st.Cond), Body: r.body(st.Body)}
	case *m.Case:
		return &m.Case{Coord: st.Coord, Value: r.expr(st.Value), Body: r.Stmts(st.Body)}
	case *m.Return:
		return &m.Return{Coord: st.Coord, X: r.expr(st.X)}
	case *m.Break:
		return &m.Break{Coord: st.Coord}
	case *m.Continue:
		return &m.Continue{Coord: st.Coord}
	case *m.Empty:
		return &m.Empty{Coord: st.Coord}
	case *m.RawStmt:
		return &m.RawStmt{Coord: st.Coord, Text: st.Text}
	default:
		return s
	}
}

func (r Rewriter) decl(d *m.Decl) *m.Decl {
	out := *d
	out.Dims = append([]string(nil), d.Dims...)
	out.Init = r.expr(d.Init)

	return &out
}

func (r Rewriter) exprs(list []m.Expr) []m.Expr {
	out := make([]m.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, r.expr(e))
	}

	return out
}

//nolint:cyclop // one case per expression kind
func (r Rewriter) expr(e m.Expr) m.Expr {
	if e == nil {
		return nil
	}

	var out m.Expr

	switch ex := e.(type) {
	case *m.Ident:
		out = &m.Ident{Coord: ex.Coord, Name: ex.Name}
	case *m.Literal:
		out = &m.Literal{Coord: ex.Coord, Text: ex.Text}
	case *m.BinaryOp:
		out = &m.BinaryOp{Coord: ex.Coord, Op: ex.Op, Left: r.expr(ex.Left), Right: r.expr(ex.Right)}
	case *m.UnaryOp:
		out = &m.UnaryOp{Coord: ex.Coord, Op: ex.Op, X: r.expr(ex.X), Postfix: ex.Postfix}
	case *m.Assignment:
		out = &m.Assignment{Coord: ex.Coord, Op: ex.Op, LHS: r.expr(ex.LHS), RHS: r.expr(ex.RHS)}
	case *m.Ternary:
		out = &m.Ternary{Coord: ex.Coord, Cond: r.expr(ex.Cond), Then: r.expr(ex.Then), Else: r.expr(ex.Else)}
	case *m.Call:
		out = &m.Call{Coord: ex.Coord, Func: r.expr(ex.Func), Args: r.exprs(ex.Args)}
	case *m.Index:
		out = &m.Index{Coord: ex.Coord, X: r.expr(ex.X), Index: r.expr(ex.Index)}
	case *m.Member:
		out = &m.Member{Coord: ex.Coord, X: r.expr(ex.X), Field: ex.Field, Arrow: ex.Arrow}
	case *m.Cast:
		out = &m.Cast{Coord: ex.Coord, Type: ex.Type, X: r.expr(ex.X)}
	case *m.Comma:
		out = &m.Comma{Coord: ex.Coord, Exprs: r.exprs(ex.Exprs)}
	case *m.RawExpr:
		out = &m.RawExpr{Coord: ex.Coord, Text: ex.Text}
	default:
		out = e
	}

	if r.Expr != nil {
		return r.Expr(out)
	}

	return out
}
