package usage

import (
	"context"
	"time"

	"github.com/kailas-cloud/reportscore/internal/domain/report"
	domusage "github.com/kailas-cloud/reportscore/internal/domain/usage"
)

// VerdictStore persists verdict counters per period bucket.
type VerdictStore interface {
	Incr(ctx context.Context, label report.Label, at time.Time) error
	Counts(ctx context.Context, period domusage.Period, at time.Time) (genuine, fraud int64, err error)
}
