package domain

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"slices"

	"cvariants.dev/pkg/cvariants/internal/domain/mutilators"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// MutilateOptions controls how the bug dimensions are built.
type MutilateOptions struct {
	// NumMut is the number of comparators corrupted together, or the number
	// of sites sampled per rule in single mode.
	NumMut int
	// Single samples NumMut individual sites per rule instead of
	// enumerating every combination.
	Single bool
}

// pickAxis is one bug dimension: value 0 injects nothing, value v > 0
// injects the sites of the (v-1)-th pick.
type pickAxis struct {
	rule  m.Rule
	sites []m.MutationSite
	// size is the number of sites injected together when picks is nil.
	size int
	// picks lists explicit site index sets; nil means every combination of
	// size sites in lexicographic order.
	picks [][]int
	count uint64
}

func (a *pickAxis) pick(v uint64) []int {
	if a.picks != nil {
		return a.picks[v-1]
	}

	return unrankCombination(len(a.sites), a.size, v-1)
}

// MutilatePlan turns one mutilator discovery into choice dimensions and maps
// points back to bug selections.
type MutilatePlan struct {
	Dims []m.ChoiceDimension

	axes []*pickAxis
}

// NewMutilatePlan builds the dimensions of the active rules in naming order.
// rng is only used in single mode.
func NewMutilatePlan(d *mutilators.Discovery, rules []m.Rule, opts MutilateOptions, rng *rand.Rand) (*MutilatePlan, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rule selected", m.ErrConfig)
	}

	if opts.NumMut < 1 {
		return nil, fmt.Errorf("%w: num_mut must be at least 1, got %d", m.ErrConfig, opts.NumMut)
	}

	for _, r := range rules {
		if !slices.Contains(m.MutilatorRules, r) {
			return nil, fmt.Errorf("%w: %s is not a bug injection rule", m.ErrUnknownRule, r)
		}
	}

	if slices.Contains(rules, m.RuleVariableMisuse) && opts.NumMut > 1 && !opts.Single {
		return nil, fmt.Errorf("%w: variable misuse supports a single site per variant, got num_mut %d", m.ErrConfig, opts.NumMut)
	}

	p := &MutilatePlan{}

	for _, rule := range m.MutilatorRules {
		if !slices.Contains(rules, rule) {
			continue
		}

		var sites []m.MutationSite

		switch rule {
		case m.RuleComparatorCorruption:
			sites = d.Comparators
		case m.RuleVariableMisuse:
			sites = d.Misuses
		case m.RuleAssignmentDeletion:
			sites = d.Deletions
		}

		axis, err := newPickAxis(rule, sites, opts, rng)
		if err != nil {
			return nil, err
		}

		p.axes = append(p.axes, axis)
		p.Dims = append(p.Dims, m.ChoiceDimension{Rule: rule, Encoding: m.EncodingPick, Size: axis.count + 1})
	}

	return p, nil
}

func newPickAxis(rule m.Rule, sites []m.MutationSite, opts MutilateOptions, rng *rand.Rand) (*pickAxis, error) {
	k := len(sites)
	n := min(opts.NumMut, k)
	axis := &pickAxis{rule: rule, sites: sites, size: 1}

	if k == 0 {
		return axis, nil
	}

	if opts.Single {
		idx := rng.Perm(k)[:n]
		slices.Sort(idx)

		axis.picks = make([][]int, n)
		for i, site := range idx {
			axis.picks[i] = []int{site}
		}

		axis.count = uint64(n)

		return axis, nil
	}

	if rule == m.RuleComparatorCorruption {
		axis.size = n
	}

	count := new(big.Int).Binomial(int64(k), int64(axis.size))
	if !count.IsUint64() || count.Uint64() == ^uint64(0) {
		return nil, fmt.Errorf("%w: C(%d, %d) comparator combinations", m.ErrSpaceTooLarge, k, axis.size)
	}

	axis.count = count.Uint64()

	return axis, nil
}

// unrankCombination returns the rank-th r-subset of {0..n-1} in
// lexicographic order.
func unrankCombination(n, r int, rank uint64) []int {
	out := make([]int, 0, r)
	next := 0

	for len(out) < r {
		for c := next; c < n; c++ {
			below := new(big.Int).Binomial(int64(n-c-1), int64(r-len(out)-1)).Uint64()
			if rank < below {
				out = append(out, c)
				next = c + 1

				break
			}

			rank -= below
		}
	}

	return out
}

// Selection maps a point to the bugs to inject.
func (p *MutilatePlan) Selection(point []uint64) (mutilators.Selection, error) {
	var sel mutilators.Selection

	if len(point) != len(p.axes) {
		return sel, fmt.Errorf("%w: point has %d values for %d dimensions", m.ErrRewrite, len(point), len(p.axes))
	}

	for i, axis := range p.axes {
		v := point[i]
		if v == 0 {
			continue
		}

		if v > axis.count {
			return sel, fmt.Errorf("%w: value %d out of range for %s", m.ErrRewrite, v, axis.rule)
		}

		picked := axis.pick(v)

		switch axis.rule {
		case m.RuleComparatorCorruption:
			sel.Comparators = make(map[m.NodeID]struct{}, len(picked))
			for _, idx := range picked {
				sel.Comparators[axis.sites[idx].ID] = struct{}{}
			}
		case m.RuleVariableMisuse:
			site := axis.sites[picked[0]]
			sel.Misuse = &mutilators.Misuse{Site: site.ID, Name: site.Aux}
		case m.RuleAssignmentDeletion:
			id := axis.sites[picked[0]].ID
			sel.Deletion = &id
		}
	}

	return sel, nil
}
