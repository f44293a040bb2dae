package reportscore

import (
	"time"

	"github.com/kailas-cloud/reportscore/internal/domain/report"
	"github.com/kailas-cloud/reportscore/internal/engine/evaluate"
	"github.com/kailas-cloud/reportscore/internal/usecase/training"
)

// Label is the authenticity class of a report.
type Label string

// Label values.
const (
	LabelFraud   Label = "fraud"
	LabelGenuine Label = "genuine"
)

func labelFrom(l report.Label) Label {
	if l == report.Genuine {
		return LabelGenuine
	}
	return LabelFraud
}

func (l Label) domain() (report.Label, error) {
	return report.ParseLabel(string(l))
}

// Example is one labeled report for training.
type Example struct {
	Text  string
	Label Label
}

// Verdict is the classifier output for one report.
type Verdict struct {
	Label Label
	// Confidence is the share of trees voting for Label, in [0.5, 1].
	Confidence float64
	ModelID    string
}

// Evaluation holds held-out metrics. Genuine is the positive class.
type Evaluation struct {
	Samples   int
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

func evaluationFrom(r evaluate.Report) Evaluation {
	return Evaluation{
		Samples:   r.Samples,
		Accuracy:  r.Accuracy,
		Precision: r.Precision,
		Recall:    r.Recall,
		F1:        r.F1,
	}
}

// TrainConfig controls partitioning and the forest. Zero MaxDepth,
// MaxFeatures and Parallelism mean unlimited, sqrt(vocabulary) and GOMAXPROCS.
type TrainConfig struct {
	TestFraction    float64
	Seed            int64
	TreeCount       int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Parallelism     int
}

// DefaultTrainConfig holds out 20% with seed 42 and grows 100 trees.
func DefaultTrainConfig() TrainConfig {
	c := training.DefaultConfig()
	return TrainConfig{
		TestFraction:    c.TestFraction,
		Seed:            c.Seed,
		TreeCount:       c.TreeCount,
		MinSamplesSplit: c.MinSamplesSplit,
	}
}

func (c TrainConfig) internal() training.Config {
	return training.Config{
		TestFraction:    c.TestFraction,
		Seed:            c.Seed,
		TreeCount:       c.TreeCount,
		MaxDepth:        c.MaxDepth,
		MinSamplesSplit: c.MinSamplesSplit,
		MaxFeatures:     c.MaxFeatures,
		Parallelism:     c.Parallelism,
	}
}

// TrainResult summarizes a finished retrain.
type TrainResult struct {
	ModelID        string
	CreatedAt      time.Time
	Accuracy       float64
	Evaluation     Evaluation
	TrainRows      int
	TestRows       int
	VocabularySize int
}

// ModelInfo describes the loaded classifier.
type ModelInfo struct {
	ModelID          string
	CreatedAt        time.Time
	TokenizerVersion int
	VocabularySize   int
	TreeCount        int
	TrainRows        int
	TestRows         int
	Evaluation       Evaluation
}

