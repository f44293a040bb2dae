// Package evaluate scores predictions against held-out labels.
package evaluate

import (
	"fmt"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/feature"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
)

// Predictor classifies a single feature vector.
type Predictor interface {
	Predict(fv feature.Vector) report.Prediction
}

// Report summarizes classifier quality on a labeled set. Genuine is the
// positive class.
type Report struct {
	Samples        int     `json:"samples"`
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalseNegatives int     `json:"false_negatives"`
	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// Accuracy returns the fraction of rows the predictor labels correctly, or 0
// for empty input.
func Accuracy(p Predictor, features []feature.Vector, labels []report.Label) (float64, error) {
	r, err := Evaluate(p, features, labels)
	if err != nil {
		return 0, err
	}
	return r.Accuracy, nil
}

// Evaluate runs the predictor over a labeled set and summarizes the outcome.
func Evaluate(p Predictor, features []feature.Vector, labels []report.Label) (Report, error) {
	if len(features) != len(labels) {
		return Report{}, fmt.Errorf("%d feature vectors for %d labels: %w",
			len(features), len(labels), domain.ErrLabelMismatch)
	}
	predicted := make([]report.Label, len(features))
	for i, fv := range features {
		predicted[i] = p.Predict(fv).Label
	}
	return Confusion(predicted, labels)
}

// Confusion builds the confusion matrix and derived ratios. Ratios with a zero
// denominator are 0.
func Confusion(predicted, actual []report.Label) (Report, error) {
	if len(predicted) != len(actual) {
		return Report{}, fmt.Errorf("%d predictions for %d labels: %w",
			len(predicted), len(actual), domain.ErrLabelMismatch)
	}
	r := Report{Samples: len(actual)}
	for i, want := range actual {
		if !want.IsValid() {
			return Report{}, domain.NewLabelError(i, int(want))
		}
		got := predicted[i]
		switch {
		case got == report.Genuine && want == report.Genuine:
			r.TruePositives++
		case got == report.Genuine:
			r.FalsePositives++
		case want == report.Fraud:
			r.TrueNegatives++
		default:
			r.FalseNegatives++
		}
	}
	r.Accuracy = ratio(r.TruePositives+r.TrueNegatives, r.Samples)
	r.Precision = ratio(r.TruePositives, r.TruePositives+r.FalsePositives)
	r.Recall = ratio(r.TruePositives, r.TruePositives+r.FalseNegatives)
	if r.Precision+r.Recall > 0 {
		r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
	}
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
