// Package forest implements a bagged ensemble of CART decision trees over
// sparse TF-IDF vectors. Training is deterministic for a given seed: each tree
// draws from its own random stream, so build order and parallelism never
// affect the result.
package forest

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/feature"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
)

// Model is a trained forest. It is immutable and safe for concurrent use.
type Model struct {
	params      Params
	numFeatures int
	trees       []Tree
}

// Train fits a forest on labeled feature vectors.
func Train(features []feature.Vector, labels []report.Label, params Params) (*Model, error) {
	if len(features) == 0 {
		return nil, domain.ErrEmptyTrainingSet
	}
	if len(labels) != len(features) {
		return nil, fmt.Errorf("%d feature vectors but %d labels: %w",
			len(features), len(labels), domain.ErrLabelMismatch)
	}
	for i, l := range labels {
		if !l.IsValid() {
			return nil, domain.NewLabelError(i, int(l))
		}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	numFeatures := 0
	for _, fv := range features {
		if n := fv.Len(); n > 0 {
			numFeatures = max(numFeatures, fv.Indices()[n-1]+1)
		}
	}
	resolved := params.resolve(numFeatures)

	trees := make([]Tree, resolved.TreeCount)
	var g errgroup.Group
	g.SetLimit(resolved.Parallelism)
	for i := range trees {
		g.Go(func() error {
			t, err := buildTree(features, labels, resolved, numFeatures, i)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Model{params: params, numFeatures: numFeatures, trees: trees}, nil
}

// Restore rebuilds a model from persisted parts.
func Restore(params Params, numFeatures int, trees []Tree) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if numFeatures < 0 {
		return nil, fmt.Errorf("negative feature count %d", numFeatures)
	}
	if len(trees) != params.TreeCount {
		return nil, fmt.Errorf("tree count %d does not match params %d", len(trees), params.TreeCount)
	}
	for i, t := range trees {
		if _, err := NewTree(t.nodes, numFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &Model{params: params, numFeatures: numFeatures, trees: slices.Clone(trees)}, nil
}

// Params returns the hyperparameters the model was trained with.
func (m *Model) Params() Params { return m.params }

// NumFeatures returns the feature-space width seen during training.
func (m *Model) NumFeatures() int { return m.numFeatures }

// Trees returns the trees of the ensemble.
func (m *Model) Trees() []Tree { return slices.Clone(m.trees) }

// Votes returns how many trees vote genuine, out of the total.
func (m *Model) Votes(fv feature.Vector) (genuine, total int) {
	for _, t := range m.trees {
		if t.predict(fv) == report.Genuine {
			genuine++
		}
	}
	return genuine, len(m.trees)
}

// PredictProba returns the fraction of trees voting genuine.
func (m *Model) PredictProba(fv feature.Vector) float64 {
	genuine, total := m.Votes(fv)
	return float64(genuine) / float64(total)
}

// Predict classifies a vector by majority vote. Confidence is the share of
// trees agreeing with the result; a tied vote resolves to fraud.
func (m *Model) Predict(fv feature.Vector) report.Prediction {
	genuine, total := m.Votes(fv)
	fraud := total - genuine
	if genuine > fraud {
		return report.Prediction{Label: report.Genuine, Confidence: float64(genuine) / float64(total)}
	}
	return report.Prediction{Label: report.Fraud, Confidence: float64(fraud) / float64(total)}
}

type builder struct {
	features []feature.Vector
	labels   []report.Label
	params   Params
	rng      *rand.Rand
	nodes    []Node
}

func buildTree(features []feature.Vector, labels []report.Label, params Params, numFeatures, index int) (Tree, error) {
	rng := rand.New(rand.NewPCG(uint64(params.Seed), uint64(index)))
	n := len(features)
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.IntN(n)
	}
	b := &builder{features: features, labels: labels, params: params, rng: rng}
	b.grow(sample, 0)
	return NewTree(b.nodes, numFeatures)
}

// grow appends the subtree for rows in pre-order and returns its root index.
func (b *builder) grow(rows []int, depth int) int {
	genuine := 0
	for _, r := range rows {
		if b.labels[r] == report.Genuine {
			genuine++
		}
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Genuine: genuine, Total: len(rows)})

	if genuine == 0 || genuine == len(rows) ||
		len(rows) < b.params.MinSamplesSplit ||
		(b.params.MaxDepth > 0 && depth >= b.params.MaxDepth) {
		return idx
	}
	s, ok := b.bestSplit(rows, genuine)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.features[r].At(s.feature) <= s.threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx].Feature = s.feature
	b.nodes[idx].Threshold = s.threshold
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

type split struct {
	feature   int
	threshold float64
	impurity  float64
}

// bestSplit draws candidate features in random order and keeps the split with
// the lowest weighted Gini impurity. It evaluates at least MaxFeatures
// non-constant features and keeps looking past that until some split
// improves on the parent.
func (b *builder) bestSplit(rows []int, genuine int) (split, bool) {
	seen := make(map[int]struct{})
	for _, r := range rows {
		b.features[r].Each(func(i int, _ float64) { seen[i] = struct{}{} })
	}
	candidates := make([]int, 0, len(seen))
	for i := range seen {
		candidates = append(candidates, i)
	}
	slices.Sort(candidates)
	b.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	parent := gini(genuine, len(rows))
	best := split{impurity: parent}
	found := false
	evaluated := 0
	for _, f := range candidates {
		if evaluated >= b.params.MaxFeatures && found {
			break
		}
		s, ok := b.splitOn(rows, f)
		if !ok {
			continue
		}
		evaluated++
		if s.impurity < best.impurity-1e-12 {
			best = s
			found = true
		}
	}
	return best, found
}

type point struct {
	value   float64
	genuine bool
}

// splitOn finds the best threshold for one feature. It reports false when the
// feature is constant across rows.
func (b *builder) splitOn(rows []int, f int) (split, bool) {
	points := make([]point, len(rows))
	totalGenuine := 0
	for i, r := range rows {
		g := b.labels[r] == report.Genuine
		points[i] = point{value: b.features[r].At(f), genuine: g}
		if g {
			totalGenuine++
		}
	}
	slices.SortFunc(points, func(a, c point) int {
		switch {
		case a.value < c.value:
			return -1
		case a.value > c.value:
			return 1
		}
		return 0
	})
	if points[0].value == points[len(points)-1].value {
		return split{}, false
	}

	n := len(points)
	best := split{feature: f, impurity: 2}
	leftGenuine := 0
	for i := 0; i < n-1; i++ {
		if points[i].genuine {
			leftGenuine++
		}
		if points[i].value == points[i+1].value {
			continue
		}
		nl, nr := i+1, n-i-1
		imp := (float64(nl)*gini(leftGenuine, nl) + float64(nr)*gini(totalGenuine-leftGenuine, nr)) / float64(n)
		if imp < best.impurity {
			best.impurity = imp
			best.threshold = (points[i].value + points[i+1].value) / 2
		}
	}
	return best, true
}

func gini(genuine, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(genuine) / float64(total)
	return 2 * p * (1 - p)
}
