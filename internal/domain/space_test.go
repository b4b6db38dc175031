package domain

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

func names(t *testing.T, s *Space) []string {
	t.Helper()

	var out []string

	require.NoError(t, s.Each(func(v m.VariantDescriptor) error {
		out = append(out, v.Name)

		return nil
	}))

	return out
}

func TestNewSpace_ExhaustiveProduct(t *testing.T) {
	dims := []m.ChoiceDimension{
		{Rule: m.RuleComparatorSwap, Encoding: m.EncodingBinary, Width: 2, Size: 4},
		{Rule: m.RuleDummyVariable, Encoding: m.EncodingPresence, Size: 2},
	}

	s, err := NewSpace(dims, SamplePolicy{Exhaustive: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"00-0", "00-1", "01-0", "01-1",
		"10-0", "10-1", "11-0", "11-1",
	}, names(t, s))

	assert.Equal(t, "00-0", s.Reference().Name)
	assert.True(t, s.Reference().IsReference())

	size, ok := s.Size()
	assert.True(t, ok)
	assert.Equal(t, uint64(8), size)
}

func TestNewSpace_ZeroWidthAndSingleValueDims(t *testing.T) {
	dims := []m.ChoiceDimension{
		{Rule: m.RuleComparatorSwap, Encoding: m.EncodingBinary, Width: 0, Size: 1},
		{Rule: m.RuleReorderDecls, Block: -1, Encoding: m.EncodingOrder, Size: 1},
	}

	s, err := NewSpace(dims, SamplePolicy{Exhaustive: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"0-0"}, names(t, s))
}

func TestNewSpace_ExhaustiveOverflow(t *testing.T) {
	dims := []m.ChoiceDimension{
		{Rule: m.RuleComparatorSwap, Encoding: m.EncodingBinary, Width: 62, Size: 1 << 62},
		{Rule: m.RuleIncDecSwap, Encoding: m.EncodingBinary, Width: 62, Size: 1 << 62},
	}

	_, err := NewSpace(dims, SamplePolicy{Exhaustive: true}, nil)
	require.ErrorIs(t, err, m.ErrSpaceTooLarge)
}

func TestNewSpace_SampledKeepsReference(t *testing.T) {
	dims := []m.ChoiceDimension{
		{Rule: m.RuleComparatorSwap, Encoding: m.EncodingBinary, Width: 6, Size: 64},
		{Rule: m.RuleIncDecSwap, Encoding: m.EncodingBinary, Width: 5, Size: 32},
	}

	s, err := NewSpace(dims, SamplePolicy{}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	got := names(t, s)
	require.NotEmpty(t, got)
	assert.Equal(t, "000000-00000", got[0])

	// ceil(0.1 * 64) = 7 values and ceil(0.1 * 32) = 4 values
	assert.Equal(t, uint64(7), s.Axes[0].Len())
	assert.Equal(t, uint64(4), s.Axes[1].Len())
	assert.Len(t, got, 28)

	full, _ := s.FullSize()
	assert.Equal(t, uint64(64*32), full)
}

func TestNewSpace_SameSeedSameSample(t *testing.T) {
	dims := []m.ChoiceDimension{{Rule: m.RuleComparatorSwap, Encoding: m.EncodingBinary, Width: 10, Size: 1024}}

	a, err := NewSpace(dims, SamplePolicy{Percentage: 0.05}, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)

	b, err := NewSpace(dims, SamplePolicy{Percentage: 0.05}, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)

	assert.Equal(t, a.Axes[0].Values, b.Axes[0].Values)
}

func TestSampleAxis(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	tests := []struct {
		name string
		size uint64
		p    float64
		want int
	}{
		{"single value", 1, 0.1, 1},
		{"tiny dimension keeps one change", 3, 0.1, 2},
		{"ten percent", 100, 0.1, 10},
		{"whole population", 5, 1, 5},
		{"sparse draw", 1 << 40, 0.01, maxAxisSample + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleAxis(tt.size, tt.p, rng)

			assert.Len(t, got, tt.want)
			assert.Equal(t, uint64(0), got[0])
			assert.True(t, slices.IsSorted(got))
			assert.Len(t, slices.Compact(slices.Clone(got)), len(got))
			assert.Less(t, got[len(got)-1], tt.size)
		})
	}
}

func TestFraction(t *testing.T) {
	assert.InDelta(t, 0.1, Fraction(99999, 0), 1e-9)
	assert.InDelta(t, 0.01, Fraction(100000, 0), 1e-9)
	assert.InDelta(t, 0.25, Fraction(100000, 0.25), 1e-9)
	assert.InDelta(t, 1.0, Fraction(10, 3), 1e-9)
}

func TestAxisLabel(t *testing.T) {
	tests := []struct {
		name string
		dim  m.ChoiceDimension
		v    uint64
		want string
	}{
		{"binary padded", m.ChoiceDimension{Encoding: m.EncodingBinary, Width: 4, Size: 16}, 5, "0101"},
		{"binary zero width", m.ChoiceDimension{Encoding: m.EncodingBinary, Width: 0, Size: 1}, 0, "0"},
		{"order", m.ChoiceDimension{Encoding: m.EncodingOrder, Size: 6}, 5, "101"},
		{"order single", m.ChoiceDimension{Encoding: m.EncodingOrder, Size: 1}, 0, "0"},
		{"presence", m.ChoiceDimension{Encoding: m.EncodingPresence, Size: 2}, 1, "1"},
		{"pick", m.ChoiceDimension{Encoding: m.EncodingPick, Size: 12}, 3, "03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Axis{Dim: tt.dim}.Label(tt.v))
		})
	}
}

func TestSpaceEach_StopsOnError(t *testing.T) {
	dims := []m.ChoiceDimension{{Rule: m.RuleDummyVariable, Encoding: m.EncodingPresence, Size: 2}}

	s, err := NewSpace(dims, SamplePolicy{Exhaustive: true}, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0

	err = s.Each(func(m.VariantDescriptor) error {
		calls++

		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
