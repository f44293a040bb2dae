package feature

import (
	"fmt"
	"math"
	"sort"
)

// Vector is a sparse feature vector: weights keyed by vocabulary index,
// stored in ascending index order. The zero value is an empty vector.
type Vector struct {
	indices []int
	values  []float64
}

// NewVector creates a vector from parallel index/value slices.
// Indices must be non-negative and strictly increasing.
func NewVector(indices []int, values []float64) (Vector, error) {
	if len(indices) != len(values) {
		return Vector{}, fmt.Errorf("vector: %d indices but %d values", len(indices), len(values))
	}
	for i, idx := range indices {
		if idx < 0 {
			return Vector{}, fmt.Errorf("vector: negative index %d", idx)
		}
		if i > 0 && idx <= indices[i-1] {
			return Vector{}, fmt.Errorf("vector: indices not strictly increasing at position %d", i)
		}
	}
	return Vector{
		indices: append([]int(nil), indices...),
		values:  append([]float64(nil), values...),
	}, nil
}

// FromCounts builds an L2-normalized vector from per-index weights.
// Returns the empty vector when every weight is zero.
func FromCounts(weights map[int]float64) Vector {
	if len(weights) == 0 {
		return Vector{}
	}
	indices := make([]int, 0, len(weights))
	for idx := range weights {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var sq float64
	for i, idx := range indices {
		values[i] = weights[idx]
		sq += values[i] * values[i]
	}
	if sq == 0 {
		return Vector{}
	}
	norm := math.Sqrt(sq)
	for i := range values {
		values[i] /= norm
	}
	return Vector{indices: indices, values: values}
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int { return len(v.indices) }

// At returns the weight at index idx, or 0 if absent.
func (v Vector) At(idx int) float64 {
	i := sort.SearchInts(v.indices, idx)
	if i < len(v.indices) && v.indices[i] == idx {
		return v.values[i]
	}
	return 0
}

// Each calls fn for every non-zero entry in ascending index order.
func (v Vector) Each(fn func(idx int, weight float64)) {
	for i, idx := range v.indices {
		fn(idx, v.values[i])
	}
}

// Indices returns a copy of the non-zero indices.
func (v Vector) Indices() []int { return append([]int(nil), v.indices...) }

// Values returns a copy of the non-zero weights.
func (v Vector) Values() []float64 { return append([]float64(nil), v.values...) }

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sq float64
	for _, w := range v.values {
		sq += w * w
	}
	return math.Sqrt(sq)
}

// Equal reports whether both vectors hold bit-identical entries.
func (v Vector) Equal(o Vector) bool {
	if len(v.indices) != len(o.indices) {
		return false
	}
	for i := range v.indices {
		if v.indices[i] != o.indices[i] ||
			math.Float64bits(v.values[i]) != math.Float64bits(o.values[i]) {
			return false
		}
	}
	return true
}
