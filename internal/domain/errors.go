package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus signals that a vectorizer was fitted on no documents.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrInsufficientData signals a dataset too small to partition.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrEmptyTrainingSet signals that a classifier was trained on no rows.
	ErrEmptyTrainingSet = errors.New("empty training set")
	// ErrLabelMismatch signals a label outside {fraud, genuine} or misaligned labels.
	ErrLabelMismatch = errors.New("label mismatch")
	// ErrInvalidConfig signals out-of-range training parameters.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidInput signals a malformed scoring request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrArtifactWrite signals an I/O failure while persisting an artifact.
	ErrArtifactWrite = errors.New("artifact write failed")
	// ErrArtifactCorrupt signals an unreadable or version-mismatched artifact.
	ErrArtifactCorrupt = errors.New("artifact corrupt")
	// ErrArtifactNotFound signals a missing artifact.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrClassifierUnavailable signals that no model is loaded for inference.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)

// Training stages reported by StageError.
const (
	StagePartition = "partition"
	StageVectorize = "vectorize"
	StageTrain     = "train"
	StageEvaluate  = "evaluate"
)

// StageError tags a pipeline failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *StageError) Unwrap() error { return e.Err }

// LabelError wraps ErrLabelMismatch with the offending row.
type LabelError struct {
	Row   int
	Value int
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("%s: row %d has label %d", ErrLabelMismatch.Error(), e.Row, e.Value)
}

func (e *LabelError) Unwrap() error { return ErrLabelMismatch }

// NewLabelError creates a label mismatch error for a row.
func NewLabelError(row, value int) error {
	return &LabelError{Row: row, Value: value}
}
