package adapter

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders the changes from the reference program to a variant.
func UnifiedDiff(referenceName string, reference []byte, variantName string, variant []byte) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(reference)),
		B:        difflib.SplitLines(string(variant)),
		FromFile: referenceName,
		ToFile:   variantName,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s against %s: %w", variantName, referenceName, err)
	}

	return diff, nil
}
