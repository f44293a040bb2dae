package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Scoring and training metrics.
var (
	ScoreTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "score_total",
			Help:      "Reports scored, by verdict",
		},
		[]string{"label"},
	)

	ScoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "score_duration_seconds",
			Help:      "Time to vectorize and classify one report",
			Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
	)

	ClassifierAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "classifier_available",
			Help:      "1 when a trained classifier is loaded",
		},
	)

	TrainingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "training_runs_total",
			Help:      "Training runs, by outcome",
		},
		[]string{"status"}, // "success" / "error"
	)

	TrainingAccuracy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "training_accuracy",
			Help:      "Held-out accuracy of the last successful training run",
		},
	)

	TrainingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "training_duration_seconds",
			Help:      "Duration of training runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)
)

var registerOnce sync.Once

// RegisterClassifierMetrics registers scoring and training metrics with the
// default registry. Safe to call more than once.
func RegisterClassifierMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ScoreTotal,
			ScoreDuration,
			ClassifierAvailable,
			TrainingRunsTotal,
			TrainingAccuracy,
			TrainingDuration,
		)
	})
}
