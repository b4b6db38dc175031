package domain

import (
	"slices"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// CorrespondenceMap pairs the variables of a variant with those of the
// reference. A name declared on both sides with the same type maps to
// itself; anything else maps to the UnkVar sentinel on the missing side.
// Pairs are sorted by variant name, reference-only pairs last.
func CorrespondenceMap(reference, variant string, refVars, variantVars m.VarTypes) m.VarMap {
	vm := m.VarMap{Reference: reference, Variant: variant}

	for _, name := range sortedNames(variantVars) {
		refType, ok := refVars[name]
		if ok && refType == variantVars[name] {
			vm.Pairs = append(vm.Pairs, m.VarPair{Variant: name, Reference: name})

			continue
		}

		vm.Pairs = append(vm.Pairs, m.VarPair{Variant: name, Reference: m.UnknownVar})
	}

	for _, name := range sortedNames(refVars) {
		varType, ok := variantVars[name]
		if ok && varType == refVars[name] {
			continue
		}

		vm.Pairs = append(vm.Pairs, m.VarPair{Variant: m.UnknownVar, Reference: name})
	}

	return vm
}

func sortedNames(vars m.VarTypes) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
