// Package model defines the data structures shared by the variant generators.
package model

import (
	"errors"
	"fmt"
)

// NodeID identifies an AST position within one processing session.
type NodeID int

// Rule names one rewrite family. The string form is what users type on the
// command line and what is written into manifests.
type Rule string

// Semantics-preserving rules, listed in naming order.
const (
	RuleComparatorSwap Rule = "comparator-swap"
	RuleIfElseSwap     Rule = "if-else-swap"
	RuleIncDecSwap     Rule = "incdec-swap"
	RuleDummyVariable  Rule = "dummy-variable"
	RuleReorderDecls   Rule = "reorder-decls"
	RuleForToWhile     Rule = "for-to-while"
)

// Semantics-breaking rules, listed in naming order.
const (
	RuleComparatorCorruption Rule = "comparator-corruption"
	RuleVariableMisuse       Rule = "variable-misuse"
	RuleAssignmentDeletion   Rule = "assignment-deletion"
)

// MutatorRules is the fixed naming order of the semantics-preserving rules.
var MutatorRules = []Rule{
	RuleComparatorSwap,
	RuleIfElseSwap,
	RuleIncDecSwap,
	RuleDummyVariable,
	RuleReorderDecls,
	RuleForToWhile,
}

// MutilatorRules is the fixed naming order of the semantics-breaking rules.
var MutilatorRules = []Rule{
	RuleComparatorCorruption,
	RuleVariableMisuse,
	RuleAssignmentDeletion,
}

// ParseRule resolves a user supplied rule name. Short aliases are accepted
// for rules whose alias is unambiguous across both tools.
func ParseRule(name string) (Rule, error) {
	aliases := map[string]Rule{
		"if": RuleIfElseSwap, "if-else": RuleIfElseSwap,
		"io": RuleIncDecSwap, "incr-ops": RuleIncDecSwap,
		"dv": RuleDummyVariable, "dummy-var": RuleDummyVariable,
		"rd": RuleReorderDecls, "reord-decls": RuleReorderDecls,
		"fw": RuleForToWhile, "for-2-while": RuleForToWhile,
		"vm": RuleVariableMisuse, "var-mu": RuleVariableMisuse,
		"ad": RuleAssignmentDeletion, "asg-del": RuleAssignmentDeletion,
	}

	if r, ok := aliases[name]; ok {
		return r, nil
	}

	for _, r := range append(append([]Rule{}, MutatorRules...), MutilatorRules...) {
		if string(r) == name {
			return r, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownRule, name)
}

// Sentinel errors.
var (
	ErrUnknownRule   = errors.New("unknown rule")
	ErrParse         = errors.New("parse failure")
	ErrRewrite       = errors.New("rewrite failure")
	ErrEmit          = errors.New("emit failure")
	ErrCycle         = errors.New("dependency cycle")
	ErrSpaceTooLarge = errors.New("variant space too large to enumerate")
	ErrConfig        = errors.New("invalid configuration")
)

// MutationSite is one discovered rewrite opportunity. Aux carries rule
// specific data: the operator found, or the replacement variable name.
type MutationSite struct {
	Rule  Rule
	ID    NodeID
	Coord Coord
	Aux   string
}

// ScopeBlock is one lexical block whose leading declaration run can be
// reordered. Decls is the original order; Edges holds [from, to] pairs
// meaning from must precede to; Orders holds every valid order (Orders[0]
// is the original one).
type ScopeBlock struct {
	ID        NodeID
	Coord     Coord
	Decls     []NodeID
	Names     map[NodeID]string
	Edges     [][2]NodeID
	Orders    [][]NodeID
	Truncated bool
}

// Reorderable reports whether the block offers more than one order.
func (b *ScopeBlock) Reorderable() bool {
	return len(b.Orders) > 1
}

// Encoding describes how a dimension's values are rendered and interpreted.
type Encoding int

const (
	// EncodingBinary values are bit vectors over Width per-site choices.
	EncodingBinary Encoding = iota
	// EncodingOrder values index a block's list of declaration orders.
	EncodingOrder
	// EncodingPresence values are 0 (absent) or 1 (present).
	EncodingPresence
	// EncodingPick values index a list whose element 0 means "not applied".
	EncodingPick
)

// ChoiceDimension is one independent axis of variation. Value 0 is always
// the "no change" choice.
type ChoiceDimension struct {
	Rule     Rule
	Block    NodeID
	Encoding Encoding
	Width    int
	Size     uint64
}

// VariantDescriptor is one point of the (possibly sampled) product space.
type VariantDescriptor struct {
	Name  string
	Point []uint64
}

// IsReference reports whether every dimension is at its no-change value.
func (v VariantDescriptor) IsReference() bool {
	for _, value := range v.Point {
		if value != 0 {
			return false
		}
	}

	return true
}

// BugKind labels one bug ledger entry.
type BugKind string

// Bug kinds written into ledgers.
const (
	BugComparatorCorruption BugKind = "comparator corruption"
	BugVariableMisuse       BugKind = "variable misuse"
	BugAssignmentDeletion   BugKind = "assignment deletion"
)

// BugEntry records one injected bug.
type BugEntry struct {
	Kind     BugKind `yaml:"kind"`
	Site     string  `yaml:"site"`
	Original string  `yaml:"original"`
	Injected string  `yaml:"injected"`
}

// BugLedger lists the bugs injected into one variant.
type BugLedger struct {
	Reference string     `yaml:"reference"`
	Variant   string     `yaml:"variant"`
	Entries   []BugEntry `yaml:"entries"`
}

// UnknownVar is the sentinel used in correspondence maps for a variable
// present on one side only.
const UnknownVar = "UnkVar"

// VarTypes maps declared variable names to their base type.
type VarTypes map[string]string

// VarPair ties a variable of the variant to one of the reference.
type VarPair struct {
	Variant   string `yaml:"variant"`
	Reference string `yaml:"reference"`
}

// VarMap is the variable correspondence between a variant and the reference.
type VarMap struct {
	Reference string    `yaml:"reference"`
	Variant   string    `yaml:"variant"`
	Pairs     []VarPair `yaml:"pairs"`
}
