// Package training runs the offline pipeline: partition, vectorize, train and
// evaluate.
package training

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
	"github.com/kailas-cloud/reportscore/internal/engine/evaluate"
	"github.com/kailas-cloud/reportscore/internal/engine/forest"
	"github.com/kailas-cloud/reportscore/internal/engine/partition"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
	"github.com/kailas-cloud/reportscore/internal/metrics"
	"github.com/kailas-cloud/reportscore/internal/repository/artifact"
)

// Config holds partition and forest settings for one run.
type Config struct {
	TestFraction    float64
	Seed            int64
	TreeCount       int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Parallelism     int
}

// DefaultConfig matches the historical pipeline: 20% held out, seed 42,
// 100 trees.
func DefaultConfig() Config {
	p := forest.DefaultParams()
	return Config{
		TestFraction:    0.2,
		Seed:            p.Seed,
		TreeCount:       p.TreeCount,
		MinSamplesSplit: p.MinSamplesSplit,
	}
}

func (c Config) params() forest.Params {
	return forest.Params{
		TreeCount:       c.TreeCount,
		Seed:            c.Seed,
		MaxDepth:        c.MaxDepth,
		MinSamplesSplit: c.MinSamplesSplit,
		MaxFeatures:     c.MaxFeatures,
		Parallelism:     c.Parallelism,
	}
}

// Result is the output of a successful run.
type Result struct {
	Model      *forest.Model
	Vocabulary *tfidf.Vocabulary
	Accuracy   float64
	Evaluation evaluate.Report
	ModelID    string
	CreatedAt  time.Time
	TrainRows  int
	TestRows   int
}

// Bundle packages the result for the artifact store.
func (r Result) Bundle() artifact.Bundle {
	return artifact.Bundle{
		Vocabulary: r.Vocabulary,
		Model:      r.Model,
		Meta: artifact.Metadata{
			ModelID:          r.ModelID,
			CreatedAt:        r.CreatedAt,
			TokenizerVersion: tfidf.TokenizerVersion,
			TrainRows:        r.TrainRows,
			TestRows:         r.TestRows,
			Evaluation:       r.Evaluation,
		},
	}
}

// Service runs training pipelines.
type Service struct {
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a training service.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, now: time.Now, newID: uuid.NewString}
}

// WithClock overrides the time source used for CreatedAt.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Retrain fits a vocabulary on the training split only, trains a forest on it
// and scores the held-out split. Failures come back as *domain.StageError.
func (s *Service) Retrain(ctx context.Context, ds report.Dataset, cfg Config) (Result, error) {
	start := time.Now()
	res, err := s.retrain(ctx, ds, cfg)
	elapsed := time.Since(start)

	metrics.TrainingDuration.Observe(elapsed.Seconds())
	if err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Training failed", zap.Int("rows", len(ds)), zap.Duration("duration", elapsed), zap.Error(err))
		return Result{}, err
	}
	metrics.TrainingRunsTotal.WithLabelValues("success").Inc()
	metrics.TrainingAccuracy.Set(res.Accuracy)
	s.logger.Info("Training finished",
		zap.String("model_id", res.ModelID),
		zap.Int("train_rows", res.TrainRows),
		zap.Int("test_rows", res.TestRows),
		zap.Int("vocabulary", res.Vocabulary.Len()),
		zap.Float64("accuracy", res.Accuracy),
		zap.Float64("f1", res.Evaluation.F1),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

func (s *Service) retrain(ctx context.Context, ds report.Dataset, cfg Config) (Result, error) {
	if err := ds.Validate(); err != nil {
		return Result{}, stageErr(domain.StagePartition, err)
	}
	params := cfg.params()
	if err := params.Validate(); err != nil {
		return Result{}, stageErr(domain.StageTrain, err)
	}

	stage := time.Now()
	train, test, err := partition.Split(ds, cfg.TestFraction, cfg.Seed)
	if err != nil {
		return Result{}, stageErr(domain.StagePartition, err)
	}
	s.logger.Debug("Partitioned dataset",
		zap.Int("train_rows", len(train)), zap.Int("test_rows", len(test)), zap.Duration("duration", time.Since(stage)))
	if err := ctx.Err(); err != nil {
		return Result{}, stageErr(domain.StagePartition, err)
	}

	stage = time.Now()
	vocab, err := tfidf.Fit(train.Texts())
	if err != nil {
		return Result{}, stageErr(domain.StageVectorize, err)
	}
	trainFeatures := tfidf.TransformAll(train.Texts(), vocab)
	testFeatures := tfidf.TransformAll(test.Texts(), vocab)
	s.logger.Debug("Vectorized corpus",
		zap.Int("vocabulary", vocab.Len()), zap.Duration("duration", time.Since(stage)))
	if err := ctx.Err(); err != nil {
		return Result{}, stageErr(domain.StageVectorize, err)
	}

	stage = time.Now()
	model, err := forest.Train(trainFeatures, train.Labels(), params)
	if err != nil {
		return Result{}, stageErr(domain.StageTrain, err)
	}
	s.logger.Debug("Trained forest",
		zap.Int("trees", params.TreeCount), zap.Duration("duration", time.Since(stage)))
	if err := ctx.Err(); err != nil {
		return Result{}, stageErr(domain.StageTrain, err)
	}

	summary, err := evaluate.Evaluate(model, testFeatures, test.Labels())
	if err != nil {
		return Result{}, stageErr(domain.StageEvaluate, err)
	}

	return Result{
		Model:      model,
		Vocabulary: vocab,
		Accuracy:   summary.Accuracy,
		Evaluation: summary,
		ModelID:    s.newID(),
		CreatedAt:  s.now().UTC(),
		TrainRows:  len(train),
		TestRows:   len(test),
	}, nil
}

func stageErr(stage string, err error) error {
	return &domain.StageError{Stage: stage, Err: err}
}
