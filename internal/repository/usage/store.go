// Package usage keeps daily and monthly verdict counters in Redis.
package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/reportscore/internal/db"
	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
	domusage "github.com/kailas-cloud/reportscore/internal/domain/usage"
)

// store is the consumer interface for counter operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store implements verdict counters on top of INCRBY + EXPIRE NX.
type Store struct {
	store    store
	dailyTTL time.Duration
	monthTTL time.Duration
}

// New creates a counter store.
// dailyTTL is the TTL for daily keys (recommended: 48h).
// monthTTL is the TTL for monthly keys (recommended: 62 days).
func New(s store, dailyTTL, monthTTL time.Duration) *Store {
	return &Store{
		store:    s,
		dailyTTL: dailyTTL,
		monthTTL: monthTTL,
	}
}

// Incr counts one verdict in both the daily and the monthly bucket of at.
func (s *Store) Incr(ctx context.Context, label report.Label, at time.Time) error {
	for _, key := range []string{
		Key(label, domusage.PeriodDay, at),
		Key(label, domusage.PeriodMonth, at),
	} {
		if err := s.incrBy(ctx, key, 1); err != nil {
			return err
		}
	}
	return nil
}

// Counts returns genuine and fraud verdicts for the bucket containing at.
func (s *Store) Counts(ctx context.Context, period domusage.Period, at time.Time) (genuine, fraud int64, err error) {
	genuine, err = s.get(ctx, Key(report.Genuine, period, at))
	if err != nil {
		return 0, 0, err
	}
	fraud, err = s.get(ctx, Key(report.Fraud, period, at))
	if err != nil {
		return 0, 0, err
	}
	return genuine, fraud, nil
}

// Key builds the counter key, e.g. reportscore:verdicts:fraud:daily:2026-03-14.
func Key(label report.Label, period domusage.Period, at time.Time) string {
	at = at.UTC()
	if period == domusage.PeriodMonth {
		return domain.KeyPrefix + "verdicts:" + label.String() + ":monthly:" + at.Format("2006-01")
	}
	return domain.KeyPrefix + "verdicts:" + label.String() + ":daily:" + at.Format("2006-01-02")
}

func (s *Store) incrBy(ctx context.Context, key string, val int64) error {
	if err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", key, err)
	}
	// TTL is set once per bucket, not reset on every increment.
	if err := s.store.Expire(ctx, key, s.ttlForKey(key), true); err != nil {
		return fmt.Errorf("usage EXPIRE %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}
	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

func (s *Store) ttlForKey(key string) time.Duration {
	if strings.Contains(key, ":daily:") {
		return s.dailyTTL
	}
	return s.monthTTL
}
