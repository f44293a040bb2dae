package report

import "github.com/kailas-cloud/reportscore/internal/domain"

// Example is one labeled historical report.
type Example struct {
	Text  string
	Label Label
}

// Dataset is an ordered sequence of labeled reports.
type Dataset []Example

// Texts returns the report texts in dataset order.
func (d Dataset) Texts() []string {
	out := make([]string, len(d))
	for i, ex := range d {
		out[i] = ex.Text
	}
	return out
}

// Labels returns the labels in dataset order.
func (d Dataset) Labels() []Label {
	out := make([]Label, len(d))
	for i, ex := range d {
		out[i] = ex.Label
	}
	return out
}

// Validate reports the first row whose label is not fraud or genuine.
func (d Dataset) Validate() error {
	for i, ex := range d {
		if !ex.Label.IsValid() {
			return domain.NewLabelError(i, int(ex.Label))
		}
	}
	return nil
}
