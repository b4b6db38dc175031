// Package toposort enumerates every linear extension of a precedence graph.
package toposort

import (
	"fmt"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Result holds the orders found and whether enumeration stopped at the
// limit before exhausting the graph.
type Result struct {
	Orders    [][]m.NodeID
	Truncated bool
}

type graph struct {
	nodes    []m.NodeID
	index    map[m.NodeID]int
	succ     [][]int
	inDegree []int
	placed   []bool
	order    []int
	limit    int
	out      [][]m.NodeID
	stopped  bool
}

// AllOrders returns every order of nodes that respects edges, where an edge
// [x, y] means x must come before y. Candidates are always tried in the
// order nodes were given, so when the input order is itself valid it is
// returned first.
//
// limit bounds the number of orders collected; 0 means no bound. Edges that
// mention unknown nodes are ignored. A cyclic graph yields m.ErrCycle and no
// orders.
func AllOrders(nodes []m.NodeID, edges [][2]m.NodeID, limit int) (Result, error) {
	g := &graph{
		nodes:    nodes,
		index:    make(map[m.NodeID]int, len(nodes)),
		succ:     make([][]int, len(nodes)),
		inDegree: make([]int, len(nodes)),
		placed:   make([]bool, len(nodes)),
		order:    make([]int, 0, len(nodes)),
		limit:    limit,
	}

	for i, n := range nodes {
		g.index[n] = i
	}

	seen := make(map[[2]int]struct{}, len(edges))

	for _, e := range edges {
		from, okFrom := g.index[e[0]]
		to, okTo := g.index[e[1]]

		if !okFrom || !okTo {
			continue
		}

		if from == to {
			return Result{}, fmt.Errorf("%w: node %d precedes itself", m.ErrCycle, e[0])
		}

		key := [2]int{from, to}
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		g.succ[from] = append(g.succ[from], to)
		g.inDegree[to]++
	}

	g.visit()

	if len(g.out) == 0 && len(nodes) > 0 {
		return Result{}, fmt.Errorf("%w: %d nodes", m.ErrCycle, len(nodes))
	}

	return Result{Orders: g.out, Truncated: g.stopped}, nil
}

func (g *graph) visit() {
	if g.stopped {
		return
	}

	if len(g.order) == len(g.nodes) {
		if g.limit > 0 && len(g.out) == g.limit {
			g.stopped = true

			return
		}

		done := make([]m.NodeID, len(g.order))
		for i, idx := range g.order {
			done[i] = g.nodes[idx]
		}

		g.out = append(g.out, done)

		return
	}

	for i := range g.nodes {
		if g.placed[i] || g.inDegree[i] != 0 {
			continue
		}

		g.placed[i] = true
		g.order = append(g.order, i)

		for _, s := range g.succ[i] {
			g.inDegree[s]--
		}

		g.visit()

		for _, s := range g.succ[i] {
			g.inDegree[s]++
		}

		g.order = g.order[:len(g.order)-1]
		g.placed[i] = false

		if g.stopped {
			return
		}
	}
}

// Valid reports whether order places every node exactly once and respects
// every edge between nodes it contains.
func Valid(order []m.NodeID, edges [][2]m.NodeID) bool {
	pos := make(map[m.NodeID]int, len(order))
	for i, n := range order {
		if _, dup := pos[n]; dup {
			return false
		}

		pos[n] = i
	}

	for _, e := range edges {
		from, okFrom := pos[e[0]]
		to, okTo := pos[e[1]]

		if okFrom && okTo && from >= to {
			return false
		}
	}

	return true
}
