package domain

import (
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// MaxBinaryWidth is the largest number of per-site choices a binary
// dimension may hold; its size 2^width must fit in uint64 arithmetic.
const MaxBinaryWidth = 62

// maxAxisSample caps the values kept per dimension when sampling, so a wide
// binary dimension cannot allocate billions of points.
const maxAxisSample = 1 << 12

// Axis is one dimension together with the values taken from it.
type Axis struct {
	Dim m.ChoiceDimension
	// Values lists the kept values in ascending order, Values[0] == 0.
	// nil keeps every value of the dimension.
	Values []uint64
}

// Len returns the number of values kept.
func (a Axis) Len() uint64 {
	if a.Values == nil {
		return a.Dim.Size
	}

	return uint64(len(a.Values))
}

// Value returns the i-th kept value.
func (a Axis) Value(i uint64) uint64 {
	if a.Values == nil {
		return i
	}

	return a.Values[i]
}

// Label renders value v the way it appears in variant names.
func (a Axis) Label(v uint64) string {
	d := a.Dim

	switch d.Encoding {
	case m.EncodingBinary:
		if d.Width == 0 {
			return "0"
		}

		s := strconv.FormatUint(v, 2)

		return strings.Repeat("0", d.Width-len(s)) + s
	case m.EncodingOrder:
		width := bits.Len64(d.Size)
		s := strconv.FormatUint(v, 2)

		return strings.Repeat("0", max(width-len(s), 0)) + s
	case m.EncodingPick:
		width := len(strconv.FormatUint(d.Size, 10))

		return fmt.Sprintf("%0*d", width, v)
	default:
		return strconv.FormatUint(v, 10)
	}
}

// Space is the product of its axes. The first axis varies slowest.
type Space struct {
	Axes []Axis
}

// product multiplies sizes, reporting false on overflow.
func product(sizes []uint64) (uint64, bool) {
	total := uint64(1)

	for _, s := range sizes {
		hi, lo := bits.Mul64(total, s)
		if hi != 0 {
			return math.MaxUint64, false
		}

		total = lo
	}

	return total, true
}

// FullSize returns the size of the unsampled product, saturating.
func (s *Space) FullSize() (uint64, bool) {
	sizes := make([]uint64, len(s.Axes))
	for i, a := range s.Axes {
		sizes[i] = a.Dim.Size
	}

	return product(sizes)
}

// Size returns the number of points kept, saturating.
func (s *Space) Size() (uint64, bool) {
	sizes := make([]uint64, len(s.Axes))
	for i, a := range s.Axes {
		sizes[i] = a.Len()
	}

	return product(sizes)
}

// Name builds the variant name of point.
func (s *Space) Name(point []uint64) string {
	labels := make([]string, len(s.Axes))
	for i, a := range s.Axes {
		labels[i] = a.Label(point[i])
	}

	return strings.Join(labels, "-")
}

// Reference returns the all-zero point, which is always kept.
func (s *Space) Reference() m.VariantDescriptor {
	point := make([]uint64, len(s.Axes))

	return m.VariantDescriptor{Name: s.Name(point), Point: point}
}

// Each calls fn for every kept point in odometer order, starting with the
// reference. It stops at the first error fn returns.
func (s *Space) Each(fn func(m.VariantDescriptor) error) error {
	idx := make([]uint64, len(s.Axes))

	for _, a := range s.Axes {
		if a.Len() == 0 {
			return nil
		}
	}

	for {
		point := make([]uint64, len(s.Axes))
		for i, a := range s.Axes {
			point[i] = a.Value(idx[i])
		}

		if err := fn(m.VariantDescriptor{Name: s.Name(point), Point: point}); err != nil {
			return err
		}

		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < s.Axes[i].Len() {
				break
			}

			idx[i] = 0
		}

		if i < 0 {
			return nil
		}
	}
}

// SamplePolicy selects between exhaustive enumeration and per-axis sampling.
type SamplePolicy struct {
	Exhaustive bool
	// Percentage overrides the automatic fraction when in (0, 1].
	Percentage float64
}

// Fraction returns the share of each dimension to keep: the override when
// given, else 0.1 for spaces under 100000 points and 0.01 beyond.
func Fraction(total uint64, override float64) float64 {
	if override > 0 {
		return min(override, 1)
	}

	if total < 100000 {
		return 0.1
	}

	return 0.01
}

// NewSpace builds the space over dims. In sampled mode every dimension is
// sampled on its own and the product is taken of the reduced dimensions.
// This is not a uniform sample of the joint space: points combining rare
// values of several dimensions are under-represented. Downstream datasets
// rely on that distribution, so it is kept as is.
func NewSpace(dims []m.ChoiceDimension, policy SamplePolicy, rng *rand.Rand) (*Space, error) {
	s := &Space{Axes: make([]Axis, len(dims))}
	for i, d := range dims {
		s.Axes[i] = Axis{Dim: d}
	}

	total, ok := s.FullSize()
	if policy.Exhaustive {
		if !ok {
			return nil, fmt.Errorf("%w: more than %d points", m.ErrSpaceTooLarge, uint64(math.MaxUint64))
		}

		return s, nil
	}

	p := Fraction(total, policy.Percentage)

	for i := range s.Axes {
		s.Axes[i].Values = SampleAxis(s.Axes[i].Dim.Size, p, rng)
	}

	return s, nil
}

// SampleAxis keeps value 0 plus max(ceil(p*size)-1, 1) distinct values drawn
// from [1, size). When the request reaches the population every value is
// kept. The result is sorted.
func SampleAxis(size uint64, p float64, rng *rand.Rand) []uint64 {
	if size <= 1 {
		return []uint64{0}
	}

	want := uint64(1)
	if target := math.Ceil(p * float64(size)); target-1 > 1 {
		want = uint64(target) - 1
	}

	population := size - 1
	if want >= population {
		all := make([]uint64, size)
		for i := range all {
			all[i] = uint64(i)
		}

		return all
	}

	if want > maxAxisSample {
		slog.Warn("dimension sample capped", "size", size, "requested", want, "kept", maxAxisSample)

		want = maxAxisSample
	}

	picked := make(map[uint64]struct{}, want)
	out := make([]uint64, 0, want+1)
	out = append(out, 0)

	// sparse draws for large populations, partial shuffle otherwise
	if population > 4*want {
		for uint64(len(picked)) < want {
			v := 1 + rng.Uint64N(population)
			if _, dup := picked[v]; dup {
				continue
			}

			picked[v] = struct{}{}
			out = append(out, v)
		}
	} else {
		pool := make([]uint64, population)
		for i := range pool {
			pool[i] = uint64(i) + 1
		}

		for i := uint64(0); i < want; i++ {
			j := i + rng.Uint64N(population-i)
			pool[i], pool[j] = pool[j], pool[i]
		}

		out = append(out, pool[:want]...)
	}

	slices.Sort(out)

	return out
}
