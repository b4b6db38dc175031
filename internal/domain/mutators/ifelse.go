package mutators

import (
	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// elseIfArm returns the if statement that continues an else-if chain, or nil.
func elseIfArm(s *m.If) *m.If {
	b, ok := s.Else.(*m.Compound)
	if !ok || !b.Synthetic || len(b.Items) != 1 {
		return nil
	}

	arm, _ := b.Items[0].(*m.If)

	return arm
}

// ifElseEligible accepts a plain if/else: the else part exists, is not the
// next arm of a chain, and s is not itself such an arm.
func ifElseEligible(s *m.If, isArm bool) bool {
	return s.Else != nil && !isArm && elseIfArm(s) == nil
}

func negate(cond m.Expr) m.Expr {
	return &m.UnaryOp{Coord: cond.Pos(), Op: "!", X: cond}
}

func ifElseRewriter(reg *astkit.Registry, selected map[m.NodeID]struct{}) astkit.Rewriter {
	return astkit.Rewriter{
		Expr: func(e m.Expr) m.Expr {
			t, ok := e.(*m.Ternary)
			if !ok || !picked(reg, selected, t.Coord, astkit.TagTernary) {
				return e
			}

			return &m.Ternary{Coord: t.Coord, Cond: negate(t.Cond), Then: t.Else, Else: t.Then}
		},
		Stmt: func(s m.Stmt) []m.Stmt {
			st, ok := s.(*m.If)
			if !ok || st.Else == nil || !picked(reg, selected, st.Coord, astkit.TagIf) {
				return []m.Stmt{s}
			}

			return []m.Stmt{&m.If{Coord: st.Coord, Cond: negate(st.Cond), Then: st.Else, Else: st.Then}}
		},
	}
}
