package feature

import (
	"math"
	"testing"
)

func TestNewVector_Validation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		values  []float64
		wantErr bool
	}{
		{"empty", nil, nil, false},
		{"sorted", []int{0, 3, 7}, []float64{0.1, 0.2, 0.3}, false},
		{"length mismatch", []int{0, 1}, []float64{0.1}, true},
		{"negative", []int{-1}, []float64{0.1}, true},
		{"unsorted", []int{3, 1}, []float64{0.1, 0.2}, true},
		{"duplicate", []int{2, 2}, []float64{0.1, 0.2}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewVector(tc.indices, tc.values)
			if (err != nil) != tc.wantErr {
				t.Errorf("NewVector() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFromCounts_Normalizes(t *testing.T) {
	v := FromCounts(map[int]float64{4: 3, 1: 4})

	if v.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", v.Len())
	}
	if got := v.Indices(); got[0] != 1 || got[1] != 4 {
		t.Errorf("expected ascending indices [1 4], got %v", got)
	}
	if math.Abs(v.At(1)-0.8) > 1e-12 || math.Abs(v.At(4)-0.6) > 1e-12 {
		t.Errorf("unexpected weights: %v", v.Values())
	}
	if math.Abs(v.Norm()-1) > 1e-12 {
		t.Errorf("expected unit norm, got %f", v.Norm())
	}
	if v.At(2) != 0 {
		t.Errorf("expected 0 for absent index, got %f", v.At(2))
	}
}

func TestFromCounts_Empty(t *testing.T) {
	if v := FromCounts(nil); v.Len() != 0 {
		t.Errorf("expected empty vector, got %d entries", v.Len())
	}
	if v := FromCounts(map[int]float64{3: 0}); v.Len() != 0 {
		t.Errorf("expected empty vector for zero weights, got %d entries", v.Len())
	}
}

func TestEqual(t *testing.T) {
	a, _ := NewVector([]int{1, 2}, []float64{0.5, 0.5})
	b, _ := NewVector([]int{1, 2}, []float64{0.5, 0.5})
	c, _ := NewVector([]int{1, 3}, []float64{0.5, 0.5})

	if !a.Equal(b) {
		t.Error("expected equal vectors")
	}
	if a.Equal(c) {
		t.Error("expected different vectors")
	}
	if !(Vector{}).Equal(Vector{}) {
		t.Error("expected empty vectors to be equal")
	}
}
