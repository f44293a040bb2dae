package report

// Prediction is the classifier verdict for one report.
type Prediction struct {
	Label Label
	// Confidence is the share of trees voting for Label, in [0.5, 1].
	Confidence float64
}
