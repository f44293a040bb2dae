package app

import (
	"context"
	"errors"
	"time"

	retry "github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/repository/artifact"
)

// Saver persists an artifact.
type Saver interface {
	Save(ctx context.Context, b artifact.Bundle) error
}

// DefaultSaveBackoff retries up to five times on a Fibonacci schedule
// starting at one second.
func DefaultSaveBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewFibonacci(1*time.Second))
}

// SaveWithRetry writes b, retrying only write failures. A nil backoff uses
// DefaultSaveBackoff. Encoding and validation errors are returned at once.
func SaveWithRetry(ctx context.Context, s Saver, b artifact.Bundle, backoff retry.Backoff, logger *zap.Logger) error {
	if backoff == nil {
		backoff = DefaultSaveBackoff()
	}
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.Save(ctx, b)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrArtifactWrite) && ctx.Err() == nil {
			logger.Warn("Artifact write failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}
