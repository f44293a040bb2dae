// Package artifact persists trained (vocabulary, model) pairs as a single
// versioned, checksummed and compressed blob.
package artifact

import (
	"time"

	"github.com/kailas-cloud/reportscore/internal/engine/evaluate"
	"github.com/kailas-cloud/reportscore/internal/engine/forest"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
)

// Metadata describes how and when a bundle was produced.
type Metadata struct {
	ModelID          string
	CreatedAt        time.Time
	TokenizerVersion int
	TrainRows        int
	TestRows         int
	Evaluation       evaluate.Report
}

// Bundle is everything inference needs: the fitted vocabulary and the model
// trained on vectors from it.
type Bundle struct {
	Vocabulary *tfidf.Vocabulary
	Model      *forest.Model
	Meta       Metadata
}
