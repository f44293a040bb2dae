package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/reportscore/internal/domain"
)

// Label is the authenticity class of a report.
type Label int

// Label values match the historical corpus encoding.
const (
	Fraud   Label = 0
	Genuine Label = 1
)

// IsValid checks if the label is one of the two supported classes.
func (l Label) IsValid() bool {
	return l == Fraud || l == Genuine
}

func (l Label) String() string {
	switch l {
	case Fraud:
		return "fraud"
	case Genuine:
		return "genuine"
	default:
		return "label(" + strconv.Itoa(int(l)) + ")"
	}
}

// ParseLabel accepts "0", "1", "fraud" and "genuine" (case-insensitive).
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "fraud":
		return Fraud, nil
	case "1", "genuine":
		return Genuine, nil
	}
	return 0, fmt.Errorf("parse label %q: %w", s, domain.ErrLabelMismatch)
}
