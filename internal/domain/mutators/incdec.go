package mutators

import (
	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

func incDecLabel(u *m.UnaryOp) string {
	if u.Postfix {
		return "p" + u.Op
	}

	return u.Op
}

func incDecRewriter(reg *astkit.Registry, selected map[m.NodeID]struct{}) astkit.Rewriter {
	return astkit.Rewriter{Expr: func(e m.Expr) m.Expr {
		u, ok := e.(*m.UnaryOp)
		if !ok || !u.IsIncDec() || !picked(reg, selected, u.Coord, astkit.TagIncDec) {
			return e
		}

		return &m.UnaryOp{Coord: u.Coord, Op: u.Op, X: u.X, Postfix: !u.Postfix}
	}}
}
