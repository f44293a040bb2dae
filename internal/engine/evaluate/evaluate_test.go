package evaluate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/feature"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
)

const (
	g = report.Genuine
	f = report.Fraud
)

// thresholdPredictor labels a vector genuine when it has weight on feature 0.
type thresholdPredictor struct{}

func (thresholdPredictor) Predict(fv feature.Vector) report.Prediction {
	if fv.At(0) > 0 {
		return report.Prediction{Label: g, Confidence: 1}
	}
	return report.Prediction{Label: f, Confidence: 1}
}

func vectors(hasFeature ...bool) []feature.Vector {
	out := make([]feature.Vector, len(hasFeature))
	for i, h := range hasFeature {
		if h {
			out[i] = feature.FromCounts(map[int]float64{0: 1})
		} else {
			out[i] = feature.FromCounts(map[int]float64{1: 1})
		}
	}
	return out
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		features []feature.Vector
		labels   []report.Label
		want     float64
	}{
		{"empty", nil, nil, 0},
		{"all correct", vectors(true, false, true), []report.Label{g, f, g}, 1},
		{"all wrong", vectors(false), []report.Label{g}, 0},
		{"half", vectors(true, true, false, false), []report.Label{g, f, f, g}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(thresholdPredictor{}, tt.features, tt.labels)
			if err != nil {
				t.Fatalf("Accuracy: %v", err)
			}
			if got != tt.want {
				t.Errorf("Accuracy = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Accuracy %v outside [0,1]", got)
			}
		})
	}
}

func TestConfusion(t *testing.T) {
	predicted := []report.Label{g, g, g, f, f, f}
	actual := []report.Label{g, g, f, f, f, g}

	got, err := Confusion(predicted, actual)
	if err != nil {
		t.Fatalf("Confusion: %v", err)
	}
	want := Report{
		Samples:        6,
		TruePositives:  2,
		FalsePositives: 1,
		TrueNegatives:  2,
		FalseNegatives: 1,
		Accuracy:       4.0 / 6,
		Precision:      2.0 / 3,
		Recall:         2.0 / 3,
		F1:             2.0 / 3,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestConfusion_NoPositives(t *testing.T) {
	got, err := Confusion([]report.Label{f, f}, []report.Label{f, f})
	if err != nil {
		t.Fatal(err)
	}
	if got.Precision != 0 || got.Recall != 0 || got.F1 != 0 || got.Accuracy != 1 {
		t.Errorf("unexpected report %+v", got)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	if _, err := Evaluate(thresholdPredictor{}, vectors(true), nil); !errors.Is(err, domain.ErrLabelMismatch) {
		t.Errorf("length mismatch: got %v", err)
	}
	if _, err := Confusion([]report.Label{g}, nil); !errors.Is(err, domain.ErrLabelMismatch) {
		t.Errorf("confusion length mismatch: got %v", err)
	}
	_, err := Evaluate(thresholdPredictor{}, vectors(true, true), []report.Label{g, report.Label(3)})
	var le *domain.LabelError
	if !errors.As(err, &le) || le.Row != 1 {
		t.Errorf("invalid label: got %v", err)
	}
}
