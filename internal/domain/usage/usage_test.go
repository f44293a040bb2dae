package usage

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/reportscore/internal/domain"
)

func TestNewReport(t *testing.T) {
	r := NewReport(PeriodMonth, 1700000000, 1702600000, 30, 10)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 {
		t.Errorf("PeriodStart() = %d", r.PeriodStart())
	}
	if r.PeriodEnd() != 1702600000 {
		t.Errorf("PeriodEnd() = %d", r.PeriodEnd())
	}
	if r.Total() != 40 {
		t.Errorf("Total() = %d", r.Total())
	}
	if r.FraudRate() != 0.25 {
		t.Errorf("FraudRate() = %v", r.FraudRate())
	}
}

func TestReport_EmptyFraudRate(t *testing.T) {
	r := NewReport(PeriodDay, 0, 0, 0, 0)
	if r.FraudRate() != 0 {
		t.Errorf("FraudRate() = %v, want 0", r.FraudRate())
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
		err  bool
	}{
		{"", PeriodDay, false},
		{"day", PeriodDay, false},
		{"month", PeriodMonth, false},
		{"year", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.err {
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("ParsePeriod(%q) error = %v, want ErrInvalidInput", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePeriod(%q) = %q, %v", tt.in, got, err)
		}
	}
}
