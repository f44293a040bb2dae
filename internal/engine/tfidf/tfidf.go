// Package tfidf turns report text into L2-normalized TF-IDF feature vectors.
package tfidf

import (
	"fmt"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/feature"
)

// Fit builds a vocabulary over the corpus. Terms are indexed in lexicographic
// order and weighted with smoothed idf: ln((1+N)/(1+df)) + 1.
func Fit(corpus []string) (*Vocabulary, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("fit vocabulary: %w", domain.ErrEmptyCorpus)
	}

	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	return newVocabulary(df, len(corpus)), nil
}

// Transform encodes text against the vocabulary. Terms unseen during fit
// contribute nothing; text with no known terms yields the empty vector.
func Transform(text string, v *Vocabulary) feature.Vector {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if idx, ok := v.index[tok]; ok {
			counts[idx]++
		}
	}
	for idx, tf := range counts {
		counts[idx] = tf * v.idf[idx]
	}
	return feature.FromCounts(counts)
}

// TransformAll encodes every text in order.
func TransformAll(texts []string, v *Vocabulary) []feature.Vector {
	out := make([]feature.Vector, len(texts))
	for i, t := range texts {
		out[i] = Transform(t, v)
	}
	return out
}
