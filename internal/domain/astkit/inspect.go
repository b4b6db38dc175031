package astkit

import (
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Inspect traverses node in source order, calling fn for every node. When fn
// returns false the children of that node are skipped.
//
//nolint:cyclop,funlen // one case per node kind
func Inspect(node m.Node, fn func(m.Node) bool) {
	if isNil(node) || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *m.File:
		for _, item := range n.Items {
			Inspect(item, fn)
		}
	case *m.FuncDef:
		for _, p := range n.Params {
			Inspect(p, fn)
		}

		if n.Body != nil {
			Inspect(n.Body, fn)
		}
	case *m.Compound:
		for _, s := range n.Items {
			Inspect(s, fn)
		}
	case *m.Decl:
		inspectExpr(n.Init, fn)
	case *m.ExprStmt:
		inspectExpr(n.X, fn)
	case *m.If:
		inspectExpr(n.Cond, fn)
		Inspect(n.Then, fn)
		Inspect(n.Else, fn)
	case *m.For:
		for _, s := range n.Init {
			Inspect(s, fn)
		}

		inspectExpr(n.Cond, fn)
		inspectExpr(n.Step, fn)
		Inspect(n.Body, fn)
	case *m.While:
		inspectExpr(n.Cond, fn)
		Inspect(n.Body, fn)
	case *m.DoWhile:
		Inspect(n.Body, fn)
		inspectExpr(n.Cond, fn)
	case *m.Switch:
		inspectExpr(n.Cond, fn)
		Inspect(n.Body, fn)
	case *m.Case:
		inspectExpr(n.Value, fn)

		for _, s := range n.Body {
			Inspect(s, fn)
		}
	case *m.Return:
		inspectExpr(n.X, fn)
	case *m.BinaryOp:
		inspectExpr(n.Left, fn)
		inspectExpr(n.Right, fn)
	case *m.UnaryOp:
		inspectExpr(n.X, fn)
	case *m.Assignment:
		inspectExpr(n.LHS, fn)
		inspectExpr(n.RHS, fn)
	case *m.Ternary:
		inspectExpr(n.Cond, fn)
		inspectExpr(n.Then, fn)
		inspectExpr(n.Else, fn)
	case *m.Call:
		inspectExpr(n.Func, fn)

		for _, a := range n.Args {
			inspectExpr(a, fn)
		}
	case *m.Index:
		inspectExpr(n.X, fn)
		inspectExpr(n.Index, fn)
	case *m.Member:
		inspectExpr(n.X, fn)
	case *m.Cast:
		inspectExpr(n.X, fn)
	case *m.Comma:
		for _, e := range n.Exprs {
			inspectExpr(e, fn)
		}
	}
}

func inspectExpr(e m.Expr, fn func(m.Node) bool) {
	if e != nil {
		Inspect(e, fn)
	}
}

// isNil catches typed nil pointers stored in interfaces.
func isNil(node m.Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *m.File:
		return n == nil
	case *m.Compound:
		return n == nil
	case *m.FuncDef:
		return n == nil
	case *m.Decl:
		return n == nil
	default:
		return false
	}
}

// ContainsContinue reports whether a continue statement appears anywhere
// inside s, nested loops included.
func ContainsContinue(s m.Stmt) bool {
	found := false

	Inspect(s, func(n m.Node) bool {
		if _, ok := n.(*m.Continue); ok {
			found = true
		}

		return !found
	})

	return found
}

// Reads returns the names of the identifiers referenced by e, in order of
// appearance and without duplicates. Called function names and member
// fields are not included.
func Reads(e m.Expr) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
	)

	Inspect(e, func(n m.Node) bool {
		switch x := n.(type) {
		case *m.Call:
			if _, ok := x.Func.(*m.Ident); ok {
				for _, a := range x.Args {
					for _, name := range Reads(a) {
						if _, dup := seen[name]; !dup {
							seen[name] = struct{}{}
							out = append(out, name)
						}
					}
				}

				return false
			}
		case *m.Ident:
			if _, dup := seen[x.Name]; !dup {
				seen[x.Name] = struct{}{}
				out = append(out, x.Name)
			}
		}

		return true
	})

	return out
}

// HasSideEffects reports whether evaluating e may change program state:
// calls, assignments and increments. Raw expressions are treated as
// effectful since they are never looked into.
func HasSideEffects(e m.Expr) bool {
	effect := false

	Inspect(e, func(n m.Node) bool {
		switch x := n.(type) {
		case *m.Call, *m.Assignment, *m.RawExpr:
			effect = true
		case *m.UnaryOp:
			if x.IsIncDec() {
				effect = true
			}
		}

		return !effect
	})

	return effect
}

// AllNames returns every identifier spelled in the file: declared variables,
// parameters, functions and referenced names.
func AllNames(file *m.File) map[string]struct{} {
	names := make(map[string]struct{})

	Inspect(file, func(n m.Node) bool {
		switch x := n.(type) {
		case *m.FuncDef:
			names[x.Name] = struct{}{}
		case *m.Decl:
			if x.Name != "" {
				names[x.Name] = struct{}{}
			}
		case *m.Ident:
			names[x.Name] = struct{}{}
		}

		return true
	})

	return names
}

// CollectVars returns the base type of every simple variable declared in
// the file, parameters and globals included. When a name is declared more
// than once the first declaration wins.
func CollectVars(file *m.File) m.VarTypes {
	vars := make(m.VarTypes)

	Inspect(file, func(n m.Node) bool {
		if d, ok := n.(*m.Decl); ok && d.Simple() {
			if _, dup := vars[d.Name]; !dup {
				vars[d.Name] = d.Type
			}
		}

		return true
	})

	return vars
}
