package artifact

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/reportscore/internal/engine/evaluate"
	"github.com/kailas-cloud/reportscore/internal/engine/forest"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
)

type bundleDTO struct {
	Meta       metaDTO       `json:"meta"`
	Vocabulary vocabularyDTO `json:"vocabulary"`
	Model      modelDTO      `json:"model"`
}

type metaDTO struct {
	ModelID          string          `json:"model_id"`
	CreatedAt        time.Time       `json:"created_at"`
	TokenizerVersion int             `json:"tokenizer_version"`
	TrainRows        int             `json:"train_rows"`
	TestRows         int             `json:"test_rows"`
	Evaluation       evaluate.Report `json:"evaluation"`
}

type vocabularyDTO struct {
	Documents int       `json:"documents"`
	Terms     []termDTO `json:"terms"`
}

type termDTO struct {
	Text  string  `json:"t"`
	Index int     `json:"i"`
	IDF   float64 `json:"w"`
}

type modelDTO struct {
	TreeCount       int         `json:"tree_count"`
	Seed            int64       `json:"seed"`
	MaxDepth        int         `json:"max_depth"`
	MinSamplesSplit int         `json:"min_samples_split"`
	MaxFeatures     int         `json:"max_features"`
	NumFeatures     int         `json:"num_features"`
	Trees           [][]nodeDTO `json:"trees"`
}

// nodeDTO keeps keys short; trees dominate the artifact size.
type nodeDTO struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Genuine   int     `json:"g"`
	Total     int     `json:"n"`
}

func bundleToDTO(b Bundle) bundleDTO {
	terms := b.Vocabulary.Terms()
	vocab := vocabularyDTO{Documents: b.Vocabulary.Documents(), Terms: make([]termDTO, len(terms))}
	for i, t := range terms {
		vocab.Terms[i] = termDTO{Text: t.Text, Index: t.Index, IDF: t.IDF}
	}

	p := b.Model.Params()
	model := modelDTO{
		TreeCount:       p.TreeCount,
		Seed:            p.Seed,
		MaxDepth:        p.MaxDepth,
		MinSamplesSplit: p.MinSamplesSplit,
		MaxFeatures:     p.MaxFeatures,
		NumFeatures:     b.Model.NumFeatures(),
	}
	for _, tree := range b.Model.Trees() {
		nodes := tree.Nodes()
		rows := make([]nodeDTO, len(nodes))
		for i, n := range nodes {
			rows[i] = nodeDTO{
				Feature:   n.Feature,
				Threshold: n.Threshold,
				Left:      n.Left,
				Right:     n.Right,
				Genuine:   n.Genuine,
				Total:     n.Total,
			}
		}
		model.Trees = append(model.Trees, rows)
	}

	return bundleDTO{
		Meta: metaDTO{
			ModelID:          b.Meta.ModelID,
			CreatedAt:        b.Meta.CreatedAt.UTC(),
			TokenizerVersion: tfidf.TokenizerVersion,
			TrainRows:        b.Meta.TrainRows,
			TestRows:         b.Meta.TestRows,
			Evaluation:       b.Meta.Evaluation,
		},
		Vocabulary: vocab,
		Model:      model,
	}
}

func bundleFromDTO(d bundleDTO) (Bundle, error) {
	terms := make([]tfidf.Term, len(d.Vocabulary.Terms))
	for i, t := range d.Vocabulary.Terms {
		terms[i] = tfidf.Term{Text: t.Text, Index: t.Index, IDF: t.IDF}
	}
	vocab, err := tfidf.Restore(terms, d.Vocabulary.Documents)
	if err != nil {
		return Bundle{}, fmt.Errorf("vocabulary: %w", err)
	}

	trees := make([]forest.Tree, len(d.Model.Trees))
	for i, rows := range d.Model.Trees {
		nodes := make([]forest.Node, len(rows))
		for j, r := range rows {
			nodes[j] = forest.Node{
				Feature:   r.Feature,
				Threshold: r.Threshold,
				Left:      r.Left,
				Right:     r.Right,
				Genuine:   r.Genuine,
				Total:     r.Total,
			}
		}
		tree, err := forest.NewTree(nodes, d.Model.NumFeatures)
		if err != nil {
			return Bundle{}, fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = tree
	}
	params := forest.Params{
		TreeCount:       d.Model.TreeCount,
		Seed:            d.Model.Seed,
		MaxDepth:        d.Model.MaxDepth,
		MinSamplesSplit: d.Model.MinSamplesSplit,
		MaxFeatures:     d.Model.MaxFeatures,
	}
	model, err := forest.Restore(params, d.Model.NumFeatures, trees)
	if err != nil {
		return Bundle{}, fmt.Errorf("model: %w", err)
	}
	if model.NumFeatures() > vocab.Len() {
		return Bundle{}, fmt.Errorf("model uses %d features, vocabulary has %d", model.NumFeatures(), vocab.Len())
	}

	return Bundle{
		Vocabulary: vocab,
		Model:      model,
		Meta: Metadata{
			ModelID:          d.Meta.ModelID,
			CreatedAt:        d.Meta.CreatedAt,
			TokenizerVersion: d.Meta.TokenizerVersion,
			TrainRows:        d.Meta.TrainRows,
			TestRows:         d.Meta.TestRows,
			Evaluation:       d.Meta.Evaluation,
		},
	}, nil
}
