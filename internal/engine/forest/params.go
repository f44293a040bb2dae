package forest

import (
	"fmt"
	"math"
	"runtime"

	"github.com/kailas-cloud/reportscore/internal/domain"
)

// Params are the hyperparameters of a forest.
type Params struct {
	TreeCount int
	Seed      int64
	// MaxDepth limits tree depth; 0 grows trees until leaves are pure.
	MaxDepth int
	// MinSamplesSplit is the smallest node that may be split (default 2).
	MinSamplesSplit int
	// MaxFeatures is the number of candidate features drawn per split;
	// 0 means ceil(sqrt(feature count)).
	MaxFeatures int
	// Parallelism bounds concurrent tree builds; 0 means GOMAXPROCS.
	// It never changes the trained model.
	Parallelism int
}

// DefaultParams mirrors the settings the historical pipeline trained with.
func DefaultParams() Params {
	return Params{
		TreeCount:       100,
		Seed:            42,
		MinSamplesSplit: 2,
	}
}

// Validate checks parameter ranges.
func (p Params) Validate() error {
	if p.TreeCount < 1 {
		return fmt.Errorf("tree count must be positive, got %d: %w", p.TreeCount, domain.ErrInvalidConfig)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("max depth must be >= 0, got %d: %w", p.MaxDepth, domain.ErrInvalidConfig)
	}
	if p.MinSamplesSplit != 0 && p.MinSamplesSplit < 2 {
		return fmt.Errorf("min samples split must be >= 2, got %d: %w", p.MinSamplesSplit, domain.ErrInvalidConfig)
	}
	if p.MaxFeatures < 0 {
		return fmt.Errorf("max features must be >= 0, got %d: %w", p.MaxFeatures, domain.ErrInvalidConfig)
	}
	if p.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0, got %d: %w", p.Parallelism, domain.ErrInvalidConfig)
	}
	return nil
}

// resolve fills zero values that depend on the training data.
func (p Params) resolve(numFeatures int) Params {
	if p.MinSamplesSplit == 0 {
		p.MinSamplesSplit = 2
	}
	if p.MaxFeatures == 0 {
		p.MaxFeatures = max(1, int(math.Ceil(math.Sqrt(float64(numFeatures)))))
	}
	if p.Parallelism == 0 {
		p.Parallelism = runtime.GOMAXPROCS(0)
	}
	return p
}
