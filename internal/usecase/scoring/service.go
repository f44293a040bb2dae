// Package scoring serves predictions from the loaded (vocabulary, model) pair.
package scoring

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
	"github.com/kailas-cloud/reportscore/internal/logger"
	"github.com/kailas-cloud/reportscore/internal/metrics"
	"github.com/kailas-cloud/reportscore/internal/repository/artifact"
)

// Verdict is a scored report.
type Verdict struct {
	report.Prediction
	ModelID string
}

// ModelInfo describes the loaded classifier.
type ModelInfo struct {
	Meta           artifact.Metadata
	VocabularySize int
	TreeCount      int
}

// Service classifies report text. The loaded bundle is swapped atomically,
// so Score never blocks on a reload.
type Service struct {
	current  atomic.Pointer[artifact.Bundle]
	recorder VerdictRecorder
	logger   *zap.Logger
}

// New creates a Service with no classifier loaded.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// WithRecorder enables verdict counting.
func (s *Service) WithRecorder(r VerdictRecorder) *Service {
	s.recorder = r
	return s
}

// Load reads the artifact and publishes it. On failure the previously loaded
// classifier, if any, stays in place.
func (s *Service) Load(ctx context.Context, loader ArtifactLoader) error {
	b, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load classifier: %w", err)
	}
	s.Publish(b)
	return nil
}

// Publish makes a bundle the active classifier.
func (s *Service) Publish(b artifact.Bundle) {
	s.current.Store(&b)
	metrics.ClassifierAvailable.Set(1)
	s.logger.Info("Classifier published",
		zap.String("model_id", b.Meta.ModelID),
		zap.Int("vocabulary", b.Vocabulary.Len()),
		zap.Int("trees", b.Model.Params().TreeCount),
		zap.Float64("accuracy", b.Meta.Evaluation.Accuracy),
	)
}

// Available reports whether a classifier is loaded.
func (s *Service) Available() bool {
	return s.current.Load() != nil
}

// Score classifies one report. Verdicts annotate the report; the caller
// decides what to do with them.
func (s *Service) Score(ctx context.Context, text string) (Verdict, error) {
	b := s.current.Load()
	if b == nil {
		return Verdict{}, domain.ErrClassifierUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return Verdict{}, fmt.Errorf("empty report text: %w", domain.ErrInvalidInput)
	}

	start := time.Now()
	p := b.Model.Predict(tfidf.Transform(text, b.Vocabulary))
	metrics.ScoreDuration.Observe(time.Since(start).Seconds())
	metrics.ScoreTotal.WithLabelValues(p.Label.String()).Inc()

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, p.Label); err != nil {
			logger.FromContext(ctx).Warn("Verdict not recorded", zap.Error(err))
		}
	}
	return Verdict{Prediction: p, ModelID: b.Meta.ModelID}, nil
}

// ModelInfo returns metadata of the loaded classifier.
func (s *Service) ModelInfo() (ModelInfo, error) {
	b := s.current.Load()
	if b == nil {
		return ModelInfo{}, domain.ErrClassifierUnavailable
	}
	return ModelInfo{
		Meta:           b.Meta,
		VocabularySize: b.Vocabulary.Len(),
		TreeCount:      len(b.Model.Trees()),
	}, nil
}
