package mutators

import (
	"slices"

	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// forToWhile rewrites "for (init; cond; step) body" into
// "init; while (cond) { body; step; }". A declaring init is kept local to
// the loop by wrapping both statements in a block. A body that redeclares a
// variable the step uses stays a nested block so the step still sees the
// loop's variable.
func forToWhile(f *m.For) []m.Stmt {
	cond := f.Cond
	if cond == nil {
		cond = &m.Literal{Coord: f.Coord, Text: "1"}
	}

	body := &m.Compound{Coord: f.Body.Pos()}
	if b, ok := f.Body.(*m.Compound); ok && !shadowsStep(b, f.Step) {
		body.Items = append(body.Items, b.Items...)
	} else {
		body.Items = append(body.Items, f.Body)
	}

	if f.Step != nil {
		body.Items = append(body.Items, &m.ExprStmt{Coord: f.Step.Pos(), X: f.Step})
	}

	loop := &m.While{Coord: f.Coord, Cond: cond, Body: body}

	declares := false

	for _, s := range f.Init {
		if _, ok := s.(*m.Decl); ok {
			declares = true
		}
	}

	if !declares {
		return append(append([]m.Stmt{}, f.Init...), loop)
	}

	items := append(append([]m.Stmt{}, f.Init...), loop)

	return []m.Stmt{&m.Compound{Coord: f.Coord, Items: items, Synthetic: true}}
}

func forWhileRewriter(reg *astkit.Registry, selected map[m.NodeID]struct{}) astkit.Rewriter {
	return astkit.Rewriter{Stmt: func(s m.Stmt) []m.Stmt {
		f, ok := s.(*m.For)
		if !ok || !picked(reg, selected, f.Coord, astkit.TagFor) {
			return []m.Stmt{s}
		}

		return forToWhile(f)
	}}
}

func shadowsStep(body *m.Compound, step m.Expr) bool {
	if step == nil {
		return false
	}

	reads := astkit.Reads(step)

	for _, s := range body.Items {
		if d, ok := s.(*m.Decl); ok && slices.Contains(reads, d.Name) {
			return true
		}
	}

	return false
}
