package mutators

import (
	"fmt"

	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Selection tells one application pass what to rewrite.
type Selection struct {
	// Sites holds the ids of the selected sites of a binary rule.
	Sites map[m.NodeID]struct{}
	// Orders maps a block id to the declaration order to use.
	Orders map[m.NodeID][]m.NodeID
	// DummyName is the variable to insert; empty inserts nothing.
	DummyName string
}

// Empty reports whether the selection changes nothing.
func (s Selection) Empty() bool {
	return len(s.Sites) == 0 && len(s.Orders) == 0 && s.DummyName == ""
}

// Apply rewrites file for one rule. file is never modified; the result is
// a new tree even when nothing was selected.
func Apply(reg *astkit.Registry, file *m.File, rule m.Rule, sel Selection, opts Options) (*m.File, error) {
	var r astkit.Rewriter

	switch rule {
	case m.RuleComparatorSwap:
		r = comparatorRewriter(reg, sel.Sites)
	case m.RuleIfElseSwap:
		r = ifElseRewriter(reg, sel.Sites)
	case m.RuleIncDecSwap:
		r = incDecRewriter(reg, sel.Sites)
	case m.RuleForToWhile:
		r = forWhileRewriter(reg, sel.Sites)
	case m.RuleReorderDecls:
		r = reorderRewriter(reg, sel.Orders)
	case m.RuleDummyVariable:
		if sel.DummyName != "" {
			r = dummyRewriter(opts.Entry, sel.DummyName)
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a preserving rule", m.ErrUnknownRule, rule)
	}

	return r.File(file), nil
}

func picked(reg *astkit.Registry, selected map[m.NodeID]struct{}, coord m.Coord, tag string) bool {
	if len(selected) == 0 {
		return false
	}

	id, ok := reg.Lookup(coord, tag)
	if !ok {
		return false
	}

	_, ok = selected[id]

	return ok
}
