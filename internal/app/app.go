// Package app builds the components shared by the API server and the training
// job from a loaded config.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/config"
	"github.com/kailas-cloud/reportscore/internal/db"
	dbRedis "github.com/kailas-cloud/reportscore/internal/db/redis"
	"github.com/kailas-cloud/reportscore/internal/repository/artifact"
	"github.com/kailas-cloud/reportscore/internal/repository/corpus"
	"github.com/kailas-cloud/reportscore/internal/usecase/training"
)

// ArtifactStore is what the binaries need from an artifact backend.
type ArtifactStore interface {
	Save(ctx context.Context, b artifact.Bundle) error
	Load(ctx context.Context) (artifact.Bundle, error)
	Ping(ctx context.Context) error
}

// OpenDatabase connects to Redis and waits until it answers. It returns a nil
// store when no configured component needs Redis.
func OpenDatabase(ctx context.Context, cfg config.Config, logger *zap.Logger) (db.Store, error) {
	if !cfg.NeedsDatabase() {
		return nil, nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
	return store, nil
}

// NewArtifactStore selects the artifact backend by driver. store must be
// non-nil for the redis driver.
func NewArtifactStore(cfg config.ArtifactConfig, store db.Store) (ArtifactStore, error) {
	switch cfg.Driver {
	case config.ArtifactDriverFile, "":
		return artifact.NewFileStore(cfg.Path), nil
	case config.ArtifactDriverRedis:
		if store == nil {
			return nil, fmt.Errorf("artifact driver %q requires a database", cfg.Driver)
		}
		return artifact.NewRedisStore(store, cfg.Key), nil
	default:
		return nil, fmt.Errorf("unknown artifact driver %q", cfg.Driver)
	}
}

// NewCorpusLoader returns a loader for the configured corpus file.
func NewCorpusLoader(cfg config.CorpusConfig) (*corpus.FileLoader, error) {
	format, err := corpus.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return corpus.NewFileLoader(cfg.Path, format), nil
}

// TrainingConfig maps the training section onto the pipeline config.
func TrainingConfig(cfg config.TrainingConfig) training.Config {
	return training.Config{
		TestFraction:    cfg.TestFraction,
		Seed:            cfg.Seed,
		TreeCount:       cfg.TreeCount,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		MaxFeatures:     cfg.MaxFeatures,
		Parallelism:     cfg.Parallelism,
	}
}
