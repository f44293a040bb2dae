package usage

import (
	"fmt"

	"github.com/kailas-cloud/reportscore/internal/domain"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name; empty selects PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q: %w", s, domain.ErrInvalidInput)
}

// Report counts scoring verdicts over one period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	genuine     int64
	fraud       int64
}

// NewReport creates a verdict report.
func NewReport(period Period, start, end, genuine, fraud int64) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		genuine:     genuine,
		fraud:       fraud,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Genuine returns the number of reports scored genuine.
func (r *Report) Genuine() int64 { return r.genuine }

// Fraud returns the number of reports scored fraudulent.
func (r *Report) Fraud() int64 { return r.fraud }

// Total returns all verdicts in the period.
func (r *Report) Total() int64 { return r.genuine + r.fraud }

// FraudRate returns the fraud share of verdicts, or 0 when there were none.
func (r *Report) FraudRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.fraud) / float64(r.Total())
}
