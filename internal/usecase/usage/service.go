package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/reportscore/internal/domain/report"
	domusage "github.com/kailas-cloud/reportscore/internal/domain/usage"
)

// Service records scoring verdicts and reports them per period.
type Service struct {
	store VerdictStore
	now   func() time.Time
}

// New creates a Service. store can be nil, in which case nothing is recorded
// and reports are empty.
func New(store VerdictStore) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record counts one verdict.
func (s *Service) Record(ctx context.Context, label report.Label) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Incr(ctx, label, s.now()); err != nil {
		return fmt.Errorf("record verdict: %w", err)
	}
	return nil
}

// GetReport builds a verdict report for the current period.
func (s *Service) GetReport(ctx context.Context, period domusage.Period) (domusage.Report, error) {
	now := s.now().UTC()
	var startT, endT time.Time
	switch period {
	case domusage.PeriodMonth:
		startT = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		endT = startT.AddDate(0, 1, 0)
	default:
		period = domusage.PeriodDay
		startT = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		endT = startT.AddDate(0, 0, 1)
	}

	var genuine, fraud int64
	if s.store != nil {
		var err error
		genuine, fraud, err = s.store.Counts(ctx, period, now)
		if err != nil {
			return domusage.Report{}, fmt.Errorf("usage report: %w", err)
		}
	}
	return domusage.NewReport(period, startT.UnixMilli(), endT.UnixMilli(), genuine, fraud), nil
}
