package mutators

import (
	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// comparatorSwap mirrors a comparison so that swapping its operands keeps
// the result. Applying it twice gives back the original operator.
var comparatorSwap = map[string]string{
	"<":  ">",
	">":  "<",
	"<=": ">=",
	">=": "<=",
	"==": "==",
	"!=": "!=",
}

// MirrorComparator returns the operator that, with swapped operands,
// computes the same comparison as op.
func MirrorComparator(op string) (string, bool) {
	mirrored, ok := comparatorSwap[op]

	return mirrored, ok
}

func comparatorRewriter(reg *astkit.Registry, selected map[m.NodeID]struct{}) astkit.Rewriter {
	return astkit.Rewriter{Expr: func(e m.Expr) m.Expr {
		b, ok := e.(*m.BinaryOp)
		if !ok {
			return e
		}

		mirrored, ok := comparatorSwap[b.Op]
		if !ok || !picked(reg, selected, b.Coord, astkit.TagBinary) {
			return e
		}

		return &m.BinaryOp{Coord: b.Coord, Op: mirrored, Left: b.Right, Right: b.Left}
	}}
}
