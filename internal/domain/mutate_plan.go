package domain

import (
	"fmt"
	"log/slog"
	"slices"

	"cvariants.dev/pkg/cvariants/internal/domain/mutators"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// MutatePlan turns one mutator discovery into choice dimensions and maps
// points of the resulting space back to per-rule selections.
type MutatePlan struct {
	// Rules is the order in which the rules are applied.
	Rules []m.Rule
	// Dims lists the dimensions in naming order.
	Dims []m.ChoiceDimension

	discovery *mutators.Discovery
	blocks    map[m.NodeID]*m.ScopeBlock
}

func binaryRule(rule m.Rule) bool {
	switch rule {
	case m.RuleComparatorSwap, m.RuleIfElseSwap, m.RuleIncDecSwap, m.RuleForToWhile:
		return true
	default:
		return false
	}
}

// NewMutatePlan builds the dimensions of the active rules. Dimensions follow
// the fixed naming order whatever the order of rules.
func NewMutatePlan(d *mutators.Discovery, rules []m.Rule) (*MutatePlan, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rule selected", m.ErrConfig)
	}

	for _, r := range rules {
		if !slices.Contains(m.MutatorRules, r) {
			return nil, fmt.Errorf("%w: %s is not a preserving rule", m.ErrUnknownRule, r)
		}
	}

	p := &MutatePlan{
		Rules:     rules,
		discovery: d,
		blocks:    make(map[m.NodeID]*m.ScopeBlock, len(d.Blocks)),
	}

	for _, rule := range m.MutatorRules {
		if !slices.Contains(rules, rule) {
			continue
		}

		switch {
		case binaryRule(rule):
			width := d.Count(rule)
			if width > MaxBinaryWidth {
				slog.Warn("too many sites, extra sites are never rewritten", "rule", rule, "sites", width, "kept", MaxBinaryWidth)

				width = MaxBinaryWidth
			}

			p.Dims = append(p.Dims, m.ChoiceDimension{Rule: rule, Encoding: m.EncodingBinary, Width: width, Size: uint64(1) << width})
		case rule == m.RuleDummyVariable:
			size := uint64(1)
			if d.DummyName != "" {
				size = 2
			}

			p.Dims = append(p.Dims, m.ChoiceDimension{Rule: rule, Encoding: m.EncodingPresence, Size: size})
		case rule == m.RuleReorderDecls:
			if len(d.Blocks) == 0 {
				p.Dims = append(p.Dims, m.ChoiceDimension{Rule: rule, Block: -1, Encoding: m.EncodingOrder, Size: 1})

				continue
			}

			for _, b := range d.Blocks {
				p.blocks[b.ID] = b
				p.Dims = append(p.Dims, m.ChoiceDimension{Rule: rule, Block: b.ID, Encoding: m.EncodingOrder, Size: uint64(len(b.Orders))})
			}
		}
	}

	return p, nil
}

// Selections maps a point to the selection of every active rule.
func (p *MutatePlan) Selections(point []uint64) (map[m.Rule]mutators.Selection, error) {
	if len(point) != len(p.Dims) {
		return nil, fmt.Errorf("%w: point has %d values for %d dimensions", m.ErrRewrite, len(point), len(p.Dims))
	}

	out := make(map[m.Rule]mutators.Selection, len(p.Rules))

	for i, dim := range p.Dims {
		v := point[i]
		if v >= dim.Size {
			return nil, fmt.Errorf("%w: value %d out of range for %s", m.ErrRewrite, v, dim.Rule)
		}

		sel := out[dim.Rule]

		switch dim.Encoding {
		case m.EncodingBinary:
			sites := p.discovery.Sites[dim.Rule]
			for bit := range dim.Width {
				if v>>(dim.Width-1-bit)&1 == 0 {
					continue
				}

				if sel.Sites == nil {
					sel.Sites = make(map[m.NodeID]struct{})
				}

				sel.Sites[sites[bit].ID] = struct{}{}
			}
		case m.EncodingPresence:
			if v == 1 {
				sel.DummyName = p.discovery.DummyName
			}
		case m.EncodingOrder:
			if v == 0 {
				break
			}

			if sel.Orders == nil {
				sel.Orders = make(map[m.NodeID][]m.NodeID)
			}

			sel.Orders[dim.Block] = p.blocks[dim.Block].Orders[v]
		}

		out[dim.Rule] = sel
	}

	return out, nil
}
