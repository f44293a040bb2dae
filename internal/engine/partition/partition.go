// Package partition splits labeled reports into train and test subsets.
package partition

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
)

// Split shuffles the dataset deterministically by seed and cuts it so that the
// last round(testFraction*n) rows form the test set. Both subsets are always
// non-empty.
func Split(ds report.Dataset, testFraction float64, seed int64) (train, test report.Dataset, err error) {
	if len(ds) < 2 {
		return nil, nil, fmt.Errorf("split %d rows: %w", len(ds), domain.ErrInsufficientData)
	}
	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, fmt.Errorf("split: test fraction %v outside (0,1): %w", testFraction, domain.ErrInvalidConfig)
	}

	order := Permutation(len(ds), seed)

	n := len(ds)
	k := int(math.Round(testFraction * float64(n)))
	k = max(1, min(k, n-1))
	cut := n - k

	train = make(report.Dataset, 0, cut)
	for _, i := range order[:cut] {
		train = append(train, ds[i])
	}
	test = make(report.Dataset, 0, k)
	for _, i := range order[cut:] {
		test = append(test, ds[i])
	}
	return train, test, nil
}

// Permutation returns the row order for a dataset of size n. Rows are ranked by
// xxhash64 of (seed, row), which keeps the order stable across Go releases.
func Permutation(n int, seed int64) []int {
	type ranked struct {
		key uint64
		row int
	}
	keys := make([]ranked, n)
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	for i := range keys {
		binary.LittleEndian.PutUint64(buf[8:], uint64(i))
		keys[i] = ranked{key: xxhash.Sum64(buf[:]), row: i}
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].key != keys[b].key {
			return keys[a].key < keys[b].key
		}
		return keys[a].row < keys[b].row
	})

	order := make([]int, n)
	for i, k := range keys {
		order[i] = k.row
	}
	return order
}
