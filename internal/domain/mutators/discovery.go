// Package mutators implements the semantics-preserving rewrite rules. Each
// rule has a discovery half, run once on the canonical tree, and an
// application half, run on a fresh copy for every variant.
package mutators

import (
	"errors"
	"log/slog"

	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Options tunes discovery.
type Options struct {
	// Entry is the function that receives the dummy variable.
	Entry string
	// MaxOrders caps the declaration orders kept per block; 0 means no cap.
	MaxOrders int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Entry: "main", MaxOrders: 40320}
}

// Discovery is everything the discovery pass learned about one seed.
type Discovery struct {
	// Sites lists the eligible sites of every binary rule in traversal order.
	Sites map[m.Rule][]m.MutationSite
	// Blocks lists the blocks offering more than one declaration order.
	Blocks []*m.ScopeBlock
	// Excluded counts blocks dropped from reordering because of a cycle.
	Excluded int
	// Names holds every identifier spelled in the program.
	Names map[string]struct{}
	// Vars maps declared variables to their type.
	Vars m.VarTypes
	// DummyName is the fresh name for the dummy variable, empty when the
	// entry function has no body.
	DummyName string
}

// Count returns the number of sites found for rule. Declaration reordering
// counts reorderable blocks and the dummy variable counts 0 or 1.
func (d *Discovery) Count(rule m.Rule) int {
	switch rule {
	case m.RuleReorderDecls:
		return len(d.Blocks)
	case m.RuleDummyVariable:
		if d.DummyName != "" {
			return 1
		}

		return 0
	default:
		return len(d.Sites[rule])
	}
}

// Reorderings returns the number of declaration orders across all blocks,
// saturating at the maximum uint64.
func (d *Discovery) Reorderings() uint64 {
	total := uint64(1)

	for _, b := range d.Blocks {
		n := uint64(len(b.Orders))
		if total > ^uint64(0)/n {
			return ^uint64(0)
		}

		total *= n
	}

	return total
}

type discoverer struct {
	reg   *astkit.Registry
	opts  Options
	out   *Discovery
	depth int
	arms  map[*m.If]bool
}

// Discover walks a normalized canonical tree and records every eligible
// site. The registry must have been reset for this seed.
func Discover(reg *astkit.Registry, file *m.File, opts Options) *Discovery {
	d := &discoverer{
		reg:  reg,
		opts: opts,
		out: &Discovery{
			Sites: make(map[m.Rule][]m.MutationSite),
			Names: astkit.AllNames(file),
			Vars:  astkit.CollectVars(file),
		},
		arms: make(map[*m.If]bool),
	}

	for _, item := range file.Items {
		switch it := item.(type) {
		case *m.FuncDef:
			if it.Body != nil {
				d.block(it.Body)
			}

			if it.Name == opts.Entry && it.Body != nil {
				d.out.DummyName = FreshName(d.out.Names)
			}
		case *m.Decl:
			d.operand(it.Init)
		}
	}

	return d.out
}

func (d *discoverer) add(rule m.Rule, tag string, coord m.Coord, aux string) {
	d.out.Sites[rule] = append(d.out.Sites[rule], m.MutationSite{
		Rule:  rule,
		ID:    d.reg.ID(coord, tag),
		Coord: coord,
		Aux:   aux,
	})
}

func (d *discoverer) block(b *m.Compound) {
	d.scopeBlock(b)

	for _, s := range b.Items {
		d.stmt(s)
	}
}

func (d *discoverer) scopeBlock(b *m.Compound) {
	id := d.reg.ID(b.Coord, astkit.TagBlock)

	block, err := BuildScopeBlock(d.reg, id, b, d.opts.MaxOrders)
	if err != nil {
		if errors.Is(err, m.ErrCycle) {
			d.out.Excluded++
			slog.Warn("declaration block excluded from reordering", "block", b.Coord.String(), "error", err)
		}

		return
	}

	if block.Truncated {
		slog.Warn("declaration orders truncated", "block", b.Coord.String(), "orders", len(block.Orders))
	}

	if block.Reorderable() {
		d.out.Blocks = append(d.out.Blocks, block)
	}
}

//nolint:cyclop // one case per statement kind
func (d *discoverer) stmt(s m.Stmt) {
	switch st := s.(type) {
	case *m.Compound:
		d.block(st)
	case *m.Decl:
		d.operand(st.Init)
	case *m.ExprStmt:
		d.expr(st.X)
	case *m.If:
		if ifElseEligible(st, d.arms[st]) {
			d.add(m.RuleIfElseSwap, astkit.TagIf, st.Coord, "if")
		}

		if arm := elseIfArm(st); arm != nil {
			d.arms[arm] = true
		}

		d.operand(st.Cond)
		d.stmt(st.Then)
		d.stmt(st.Else)
	case *m.For:
		for _, init := range st.Init {
			d.stmt(init)
		}

		d.operand(st.Cond)

		d.stmt(st.Body)

		if !astkit.ContainsContinue(st.Body) {
			d.add(m.RuleForToWhile, astkit.TagFor, st.Coord, "")
		}

		d.expr(st.Step)
	case *m.While:
		d.operand(st.Cond)
		d.stmt(st.Body)
	case *m.DoWhile:
		d.stmt(st.Body)
		d.operand(st.Cond)
	case *m.Switch:
		d.operand(st.Cond)
		d.stmt(st.Body)
	case *m.Case:
		for _, c := range st.Body {
			d.stmt(c)
		}
	case *m.Return:
		d.operand(st.X)
	}
}

// operand visits e in a context where its value is used. Increments found
// below it are never incdec sites, so returns, call arguments, initializers
// and conditions are excluded along with assignment and binary operands.
func (d *discoverer) operand(e m.Expr) {
	d.depth++
	d.expr(e)
	d.depth--
}

//nolint:cyclop // one case per expression kind
func (d *discoverer) expr(e m.Expr) {
	switch ex := e.(type) {
	case *m.BinaryOp:
		d.operand(ex.Left)
		d.operand(ex.Right)

		if _, ok := comparatorSwap[ex.Op]; ok {
			d.add(m.RuleComparatorSwap, astkit.TagBinary, ex.Coord, ex.Op)
		}
	case *m.Assignment:
		d.operand(ex.RHS)
		d.operand(ex.LHS)
	case *m.UnaryOp:
		if ex.IsIncDec() && d.depth == 0 {
			d.add(m.RuleIncDecSwap, astkit.TagIncDec, ex.Coord, incDecLabel(ex))
		}

		d.operand(ex.X)
	case *m.Ternary:
		d.add(m.RuleIfElseSwap, astkit.TagTernary, ex.Coord, "ternary")
		d.operand(ex.Cond)
		d.operand(ex.Then)
		d.operand(ex.Else)
	case *m.Call:
		for _, a := range ex.Args {
			d.operand(a)
		}
	case *m.Index:
		d.operand(ex.X)
		d.operand(ex.Index)
	case *m.Member:
		d.operand(ex.X)
	case *m.Cast:
		d.operand(ex.X)
	case *m.Comma:
		for _, x := range ex.Exprs {
			d.expr(x)
		}
	}
}
