package sketch

import (
	"fmt"
	"github.com/Borislavv/go-count-sketch/pkg/hasher"
	"github.com/rs/zerolog/log"
	"math"
	"slices"
)

// medianStackRows is the depth up to which estimates sort on the stack.
const medianStackRows = 16

// CountSketch estimates signed item frequencies over a stream.
type CountSketch struct {
	epsilon float64
	gamma   float64
	depth   int
	width   int
	matrix  *matrix
	family  *family
	domain  hasher.DomainFunc
}

// New builds a sketch for error bound epsilon and failure probability gamma, both in (0, 1].
// depth = ceil(ln(4/gamma)) and width = ceil(1/epsilon^2), each at least 1.
func New(epsilon, gamma float64, opts ...Option) (*CountSketch, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	depth, width, err := Dimensions(epsilon, gamma, o.maxCounters)
	if err != nil {
		return nil, err
	}

	s := &CountSketch{
		epsilon: epsilon,
		gamma:   gamma,
		depth:   depth,
		width:   width,
		matrix:  newMatrix(depth, width),
		family:  newFamily(depth, width, o.source, o.strong),
		domain:  o.domain,
	}

	log.Debug().
		Float64("epsilon", epsilon).
		Float64("gamma", gamma).
		Int("depth", depth).
		Int("width", width).
		Msg("[sketch] allocated")

	return s, nil
}

// Dimensions validates epsilon and gamma and returns the grid geometry New would allocate.
func Dimensions(epsilon, gamma float64, maxCounters int) (depth, width int, err error) {
	// negated form so NaN is rejected too
	if !(epsilon > 0 && epsilon <= 1) {
		return 0, 0, fmt.Errorf("epsilon=%v must be in (0, 1]: %w", epsilon, InvalidParameterError)
	}
	if !(gamma > 0 && gamma <= 1) {
		return 0, 0, fmt.Errorf("gamma=%v must be in (0, 1]: %w", gamma, InvalidParameterError)
	}

	d := math.Max(1, math.Ceil(math.Log(4/gamma)))
	w := math.Max(1, math.Ceil(1/(epsilon*epsilon)))

	if d*w > float64(maxCounters) {
		return 0, 0, fmt.Errorf("%.0fx%.0f counters exceed limit %d: %w", d, w, maxCounters, ResourceExhaustedError)
	}

	return int(d), int(w), nil
}

// Add counts one occurrence of key.
func (s *CountSketch) Add(key string) {
	s.UpdateDomain(s.domain(key), 1)
}

// AddInt counts one occurrence of item.
func (s *CountSketch) AddInt(item int64) {
	s.UpdateDomain(uint64(item), 1)
}

// UpdateString adds weight (possibly negative) to key.
func (s *CountSketch) UpdateString(key string, weight int64) {
	s.UpdateDomain(s.domain(key), weight)
}

// UpdateInt adds weight to item. Integers are used as domain values directly.
func (s *CountSketch) UpdateInt(item int64, weight int64) {
	s.UpdateDomain(uint64(item), weight)
}

// UpdateDomain adds weight to a value already reduced to the integer domain.
func (s *CountSketch) UpdateDomain(value uint64, weight int64) {
	for row := 0; row < s.depth; row++ {
		s.matrix.increment(row, s.family.bucket(value, row), s.family.sign(value, row)*weight)
	}
}

// EstimateString returns the estimated frequency of key.
func (s *CountSketch) EstimateString(key string) float64 {
	return s.EstimateDomain(s.domain(key))
}

// EstimateInt returns the estimated frequency of item.
func (s *CountSketch) EstimateInt(item int64) float64 {
	return s.EstimateDomain(uint64(item))
}

// EstimateDomain returns the median of the sign-corrected row readings for value.
func (s *CountSketch) EstimateDomain(value uint64) float64 {
	var stack [medianStackRows]int64

	values := stack[:0]
	if s.depth > medianStackRows {
		values = make([]int64, 0, s.depth)
	}
	for row := 0; row < s.depth; row++ {
		values = append(values, s.family.sign(value, row)*s.matrix.read(row, s.family.bucket(value, row)))
	}

	return float64(median(values))
}

// median sorts values in place and returns the element at len/2,
// the upper-middle one when the length is even.
func median(values []int64) int64 {
	slices.Sort(values)
	return values[len(values)/2]
}

func (s *CountSketch) Epsilon() float64 { return s.epsilon }

func (s *CountSketch) Gamma() float64 { return s.gamma }

// Depth is the number of hash rows.
func (s *CountSketch) Depth() int { return s.depth }

// Width is the number of buckets per row.
func (s *CountSketch) Width() int { return s.width }

// Counters is depth*width.
func (s *CountSketch) Counters() int { return s.depth * s.width }

// Bytes is the memory held by the counter grid.
func (s *CountSketch) Bytes() int64 { return int64(s.Counters()) * 8 }

// Domain maps key the same way the string front-ends do.
func (s *CountSketch) Domain(key string) uint64 { return s.domain(key) }
