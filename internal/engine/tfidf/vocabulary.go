package tfidf

import (
	"fmt"
	"math"
	"sort"
)

// Term is the exported view of one vocabulary entry.
type Term struct {
	Text  string
	Index int
	IDF   float64
}

// Vocabulary maps normalized terms to a contiguous index and an idf weight.
// It is immutable once built and safe for concurrent use.
type Vocabulary struct {
	index     map[string]int
	terms     []string
	idf       []float64
	documents int
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Documents returns the size of the corpus the vocabulary was fitted on.
func (v *Vocabulary) Documents() int { return v.documents }

// Lookup returns the index and idf weight of a term.
func (v *Vocabulary) Lookup(term string) (int, float64, bool) {
	idx, ok := v.index[term]
	if !ok {
		return 0, 0, false
	}
	return idx, v.idf[idx], true
}

// Term returns the term at the given index.
func (v *Vocabulary) Term(idx int) string {
	if idx < 0 || idx >= len(v.terms) {
		return ""
	}
	return v.terms[idx]
}

// Terms returns all entries ordered by index.
func (v *Vocabulary) Terms() []Term {
	out := make([]Term, len(v.terms))
	for i, t := range v.terms {
		out[i] = Term{Text: t, Index: i, IDF: v.idf[i]}
	}
	return out
}

// Restore rebuilds a vocabulary from persisted entries. Indices must be unique
// and cover [0, len(terms)) exactly; weights must be finite and positive.
func Restore(terms []Term, documents int) (*Vocabulary, error) {
	if documents <= 0 {
		return nil, fmt.Errorf("restore vocabulary: invalid document count %d", documents)
	}
	v := &Vocabulary{
		index:     make(map[string]int, len(terms)),
		terms:     make([]string, len(terms)),
		idf:       make([]float64, len(terms)),
		documents: documents,
	}
	seen := make([]bool, len(terms))
	for _, t := range terms {
		if t.Index < 0 || t.Index >= len(terms) {
			return nil, fmt.Errorf("restore vocabulary: term %q index %d out of range", t.Text, t.Index)
		}
		if seen[t.Index] {
			return nil, fmt.Errorf("restore vocabulary: duplicate index %d", t.Index)
		}
		if _, dup := v.index[t.Text]; dup || t.Text == "" {
			return nil, fmt.Errorf("restore vocabulary: invalid or duplicate term %q", t.Text)
		}
		if math.IsNaN(t.IDF) || math.IsInf(t.IDF, 0) || t.IDF <= 0 {
			return nil, fmt.Errorf("restore vocabulary: term %q has invalid idf %v", t.Text, t.IDF)
		}
		seen[t.Index] = true
		v.index[t.Text] = t.Index
		v.terms[t.Index] = t.Text
		v.idf[t.Index] = t.IDF
	}
	return v, nil
}

func newVocabulary(df map[string]int, documents int) *Vocabulary {
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vocabulary{
		index:     make(map[string]int, len(terms)),
		terms:     terms,
		idf:       make([]float64, len(terms)),
		documents: documents,
	}
	n := float64(documents)
	for i, t := range terms {
		v.index[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}
