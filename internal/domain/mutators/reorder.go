package mutators

import (
	"fmt"

	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	"cvariants.dev/pkg/cvariants/internal/domain/toposort"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// leadingDecls returns the contiguous declarations at the top of a block.
// Array declarations end the run since their sizes are kept verbatim.
func leadingDecls(b *m.Compound) []*m.Decl {
	var run []*m.Decl

	for _, s := range b.Items {
		d, ok := s.(*m.Decl)
		if !ok || len(d.Dims) > 0 {
			break
		}

		run = append(run, d)
	}

	return run
}

// DeclEdges computes the precedence edges between the declarations of one
// run, as index pairs into run:
//   - a declaration whose initializer reads an earlier name follows it;
//   - a declaration whose initializer reads a name declared later in the run
//     refers to an outer variable and stays before that later declaration;
//   - an initializer with side effects keeps its position relative to every
//     other initializer that reads variables.
func DeclEdges(run []*m.Decl) [][2]int {
	var edges [][2]int

	pos := make(map[string]int, len(run))
	for i, d := range run {
		if _, dup := pos[d.Name]; !dup {
			pos[d.Name] = i
		}
	}

	effect := make([]bool, len(run))
	reads := make([][]string, len(run))

	for i, d := range run {
		if d.Init == nil {
			continue
		}

		reads[i] = astkit.Reads(d.Init)
		effect[i] = astkit.HasSideEffects(d.Init)

		for _, name := range reads[i] {
			j, ok := pos[name]

			switch {
			case !ok || j == i:
			case j < i:
				edges = append(edges, [2]int{j, i})
			default:
				edges = append(edges, [2]int{i, j})
			}
		}
	}

	for i := range run {
		if !effect[i] {
			continue
		}

		for j := range run {
			if j == i || (!effect[j] && len(reads[j]) == 0) {
				continue
			}

			if i < j {
				edges = append(edges, [2]int{i, j})
			} else if !effect[j] {
				edges = append(edges, [2]int{j, i})
			}
		}
	}

	return edges
}

// BuildScopeBlock collects the leading declaration run of b and every valid
// order of it. Blocks with fewer than two declarations get a single order.
func BuildScopeBlock(reg *astkit.Registry, id m.NodeID, b *m.Compound, maxOrders int) (*m.ScopeBlock, error) {
	run := leadingDecls(b)

	block := &m.ScopeBlock{
		ID:    id,
		Coord: b.Coord,
		Decls: make([]m.NodeID, len(run)),
		Names: make(map[m.NodeID]string, len(run)),
	}

	for i, d := range run {
		block.Decls[i] = reg.ID(d.Coord, astkit.TagDecl)
		block.Names[block.Decls[i]] = d.Name
	}

	if len(run) < 2 {
		block.Orders = [][]m.NodeID{block.Decls}

		return block, nil
	}

	for _, e := range DeclEdges(run) {
		block.Edges = append(block.Edges, [2]m.NodeID{block.Decls[e[0]], block.Decls[e[1]]})
	}

	res, err := toposort.AllOrders(block.Decls, block.Edges, maxOrders)
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", b.Coord, err)
	}

	block.Orders = res.Orders
	block.Truncated = res.Truncated

	return block, nil
}

// reorderRun rebuilds items with the leading declarations placed in order.
// Declarations of the run that order does not mention keep their relative
// position after the ordered ones.
func reorderRun(reg *astkit.Registry, items []m.Stmt, order []m.NodeID) []m.Stmt {
	runLen := 0
	byID := make(map[m.NodeID]*m.Decl)

	var rest []m.Stmt

	for _, s := range items {
		d, ok := s.(*m.Decl)
		if !ok || len(d.Dims) > 0 {
			break
		}

		runLen++

		id, known := reg.Lookup(d.Coord, astkit.TagDecl)
		if known {
			byID[id] = d
		} else {
			rest = append(rest, d)
		}
	}

	out := make([]m.Stmt, 0, len(items))

	for _, id := range order {
		if d, ok := byID[id]; ok {
			out = append(out, d)
			delete(byID, id)
		}
	}

	for _, s := range items[:runLen] {
		d, _ := s.(*m.Decl)
		if id, known := reg.Lookup(d.Coord, astkit.TagDecl); known {
			if _, left := byID[id]; left {
				out = append(out, d)
			}
		}
	}

	out = append(out, rest...)

	return append(out, items[runLen:]...)
}

func reorderRewriter(reg *astkit.Registry, orders map[m.NodeID][]m.NodeID) astkit.Rewriter {
	return astkit.Rewriter{Block: func(b *m.Compound) *m.Compound {
		id, ok := reg.Lookup(b.Coord, astkit.TagBlock)
		if !ok {
			return b
		}

		order, ok := orders[id]
		if !ok {
			return b
		}

		return &m.Compound{Coord: b.Coord, Synthetic: b.Synthetic, Items: reorderRun(reg, b.Items, order)}
	}}
}
