package mutilators

import (
	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// corruption replaces a comparator with a near miss. "==" becomes an
// assignment. Unlike the mutator table, applying it twice does not give the
// original back.
var corruption = map[string]string{
	"<":  "<=",
	">":  ">=",
	"<=": "<",
	">=": ">",
	"==": "=",
	"!=": "==",
}

// Corrupt returns the replacement operator for a comparator.
func Corrupt(op string) (string, bool) {
	out, ok := corruption[op]

	return out, ok
}

// Misuse picks one identifier occurrence and its replacement name.
type Misuse struct {
	Site m.NodeID
	Name string
}

// Selection tells one application pass which bugs to inject.
type Selection struct {
	Comparators map[m.NodeID]struct{}
	Misuse      *Misuse
	Deletion    *m.NodeID
}

// Describer renders an expression for ledger entries.
type Describer func(e m.Expr) string

// Apply injects the selected bugs into file and returns the new tree with
// one ledger entry per injected bug. The deletion runs first so that a
// misuse or corruption inside the deleted statement is neither injected nor
// recorded. file is never modified.
func Apply(reg *astkit.Registry, file *m.File, sel Selection, describe Describer) (*m.File, []m.BugEntry) {
	var entries []m.BugEntry

	deletion := astkit.Rewriter{
		Stmt: func(s m.Stmt) []m.Stmt {
			es, ok := s.(*m.ExprStmt)
			if !ok || sel.Deletion == nil {
				return []m.Stmt{s}
			}

			asg, ok := es.X.(*m.Assignment)
			if !ok {
				return []m.Stmt{s}
			}

			id, ok := reg.Lookup(es.Coord, astkit.TagAssign)
			if !ok || id != *sel.Deletion {
				return []m.Stmt{s}
			}

			entries = append(entries, entry(m.BugAssignmentDeletion, es.Coord, "Assignment-"+describe(asg), "AssignmentDeletion"))

			return nil
		},
	}

	injection := astkit.Rewriter{
		Expr: func(e m.Expr) m.Expr {
			switch x := e.(type) {
			case *m.BinaryOp:
				if len(sel.Comparators) == 0 {
					return e
				}

				repl, ok := corruption[x.Op]
				if !ok {
					return e
				}

				id, ok := reg.Lookup(x.Coord, astkit.TagBinary)
				if _, picked := sel.Comparators[id]; !ok || !picked {
					return e
				}

				if repl == "=" {
					entries = append(entries, entry(m.BugComparatorCorruption, x.Coord, "BinaryOp-"+x.Op, "Assignment-"+repl))

					return &m.Assignment{Coord: x.Coord, Op: repl, LHS: x.Left, RHS: x.Right}
				}

				entries = append(entries, entry(m.BugComparatorCorruption, x.Coord, "BinaryOp-"+x.Op, "BinaryOp-"+repl))

				return &m.BinaryOp{Coord: x.Coord, Op: repl, Left: x.Left, Right: x.Right}
			case *m.Ident:
				if sel.Misuse == nil {
					return e
				}

				id, ok := reg.Lookup(x.Coord, astkit.TagIdent)
				if !ok || id != sel.Misuse.Site {
					return e
				}

				entries = append(entries, entry(m.BugVariableMisuse, x.Coord, "VarMisuse-"+x.Name, "VarMisuse-"+sel.Misuse.Name))

				return &m.Ident{Coord: x.Coord, Name: sel.Misuse.Name}
			}

			return e
		},
	}

	return injection.File(deletion.File(file)), entries
}

func entry(kind m.BugKind, at m.Coord, original, injected string) m.BugEntry {
	return m.BugEntry{Kind: kind, Site: at.String(), Original: original, Injected: injected}
}
