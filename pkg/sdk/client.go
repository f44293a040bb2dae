package reportscore

import (
	"context"
	"errors"
	"fmt"
	"time"

	retry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/app"
	"github.com/kailas-cloud/reportscore/internal/db"
	dbRedis "github.com/kailas-cloud/reportscore/internal/db/redis"
	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
	"github.com/kailas-cloud/reportscore/internal/repository/artifact"
	healthuc "github.com/kailas-cloud/reportscore/internal/usecase/health"
	scoringuc "github.com/kailas-cloud/reportscore/internal/usecase/scoring"
	"github.com/kailas-cloud/reportscore/internal/usecase/training"
)

const (
	driverFile  = "file"
	driverRedis = "redis"

	defaultReadinessTimeout = 10 * time.Second
)

// Internal interfaces, swapped for mocks in tests.
type scoringUseCase interface {
	Score(ctx context.Context, text string) (scoringuc.Verdict, error)
	ModelInfo() (scoringuc.ModelInfo, error)
	Load(ctx context.Context, loader scoringuc.ArtifactLoader) error
	Publish(b artifact.Bundle)
}

type trainingUseCase interface {
	Retrain(ctx context.Context, ds report.Dataset, cfg training.Config) (training.Result, error)
}

// Client is the reportscore SDK entry point.
type Client struct {
	store       db.Store
	artifacts   app.ArtifactStore
	scoringSvc  scoringUseCase
	trainingSvc trainingUseCase
	healthSvc   healthUseCase
	saveBackoff func() retry.Backoff
	obs         *observer
}

// New creates a Client and loads the current artifact if one exists. A
// missing or corrupt artifact is not an error: Score returns
// ErrClassifierUnavailable until Retrain or Reload succeeds, and Retrain
// overwrites a corrupt artifact.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, errors.New("reportscore: artifact location required (use WithFileArtifact or WithRedisArtifact)")
	}

	store, artifacts, err := createArtifactStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	c := wireClient(store, artifacts, obs)
	if err := c.Reload(ctx); err != nil {
		if !errors.Is(err, domain.ErrArtifactNotFound) && !errors.Is(err, domain.ErrArtifactCorrupt) {
			c.Close()
			return nil, err
		}
		obs.degraded(err)
	}
	return c, nil
}

func createArtifactStore(ctx context.Context, cfg *clientConfig) (db.Store, app.ArtifactStore, error) {
	switch cfg.driver {
	case driverFile:
		if cfg.path == "" {
			return nil, nil, errors.New("reportscore: artifact path required")
		}
		return nil, artifact.NewFileStore(cfg.path), nil
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("reportscore: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("reportscore: database not ready: %w", err)
		}
		return s, artifact.NewRedisStore(s, cfg.key), nil
	default:
		return nil, nil, fmt.Errorf("reportscore: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, artifacts app.ArtifactStore, obs *observer) *Client {
	scoringSvc := scoringuc.New(nil)
	return &Client{
		store:       store,
		artifacts:   artifacts,
		scoringSvc:  scoringSvc,
		trainingSvc: training.New(nil),
		healthSvc:   healthuc.New(artifacts, scoringSvc),
		obs:         obs,
	}
}

func closeStore(s db.Store) {
	if s != nil {
		s.Close()
	}
}

// Close releases all resources.
func (c *Client) Close() {
	closeStore(c.store)
}

// Score classifies one report.
func (c *Client) Score(ctx context.Context, text string) (v Verdict, err error) {
	start := time.Now()
	defer func() { c.obs.observe("score", start, err, "label", string(v.Label)) }()

	out, err := c.scoringSvc.Score(ctx, text)
	if err != nil {
		return Verdict{}, fmt.Errorf("score: %w", err)
	}
	v = Verdict{
		Label:      labelFrom(out.Label),
		Confidence: out.Confidence,
		ModelID:    out.ModelID,
	}
	c.obs.verdict(v.Label)
	return v, nil
}

// Retrain trains a new model on examples, saves it and makes it the active
// classifier. On error the previous classifier stays active.
func (c *Client) Retrain(ctx context.Context, examples []Example, cfg TrainConfig) (res TrainResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrain", start, err, "rows", len(examples), "model_id", res.ModelID) }()

	ds := make(report.Dataset, len(examples))
	for i, ex := range examples {
		l, err := ex.Label.domain()
		if err != nil {
			return TrainResult{}, fmt.Errorf("retrain: example %d: %w", i, err)
		}
		ds[i] = report.Example{Text: ex.Text, Label: l}
	}

	out, err := c.trainingSvc.Retrain(ctx, ds, cfg.internal())
	if err != nil {
		return TrainResult{}, fmt.Errorf("retrain: %w", err)
	}

	bundle := out.Bundle()
	var backoff retry.Backoff
	if c.saveBackoff != nil {
		backoff = c.saveBackoff()
	}
	if err := app.SaveWithRetry(ctx, c.artifacts, bundle, backoff, zap.NewNop()); err != nil {
		return TrainResult{}, fmt.Errorf("retrain: save artifact: %w", err)
	}
	c.scoringSvc.Publish(bundle)

	return TrainResult{
		ModelID:        out.ModelID,
		CreatedAt:      out.CreatedAt,
		Accuracy:       out.Accuracy,
		Evaluation:     evaluationFrom(out.Evaluation),
		TrainRows:      out.TrainRows,
		TestRows:       out.TestRows,
		VocabularySize: out.Vocabulary.Len(),
	}, nil
}

// Reload reads the artifact again, e.g. after another process retrained.
// On error the current classifier stays active.
func (c *Client) Reload(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reload", start, err) }()

	if err = c.scoringSvc.Load(ctx, c.artifacts); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// Model describes the active classifier.
func (c *Client) Model() (ModelInfo, error) {
	info, err := c.scoringSvc.ModelInfo()
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{
		ModelID:          info.Meta.ModelID,
		CreatedAt:        info.Meta.CreatedAt,
		TokenizerVersion: info.Meta.TokenizerVersion,
		VocabularySize:   info.VocabularySize,
		TreeCount:        info.TreeCount,
		TrainRows:        info.Meta.TrainRows,
		TestRows:         info.Meta.TestRows,
		Evaluation:       evaluationFrom(info.Meta.Evaluation),
	}, nil
}
