package reportscore

import "github.com/kailas-cloud/reportscore/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyCorpus           = domain.ErrEmptyCorpus
	ErrInsufficientData      = domain.ErrInsufficientData
	ErrEmptyTrainingSet      = domain.ErrEmptyTrainingSet
	ErrLabelMismatch         = domain.ErrLabelMismatch
	ErrInvalidConfig         = domain.ErrInvalidConfig
	ErrInvalidInput          = domain.ErrInvalidInput
	ErrArtifactWrite         = domain.ErrArtifactWrite
	ErrArtifactCorrupt       = domain.ErrArtifactCorrupt
	ErrArtifactNotFound      = domain.ErrArtifactNotFound
	ErrClassifierUnavailable = domain.ErrClassifierUnavailable
)

// StageError reports which training stage failed. Use errors.As() to check.
type StageError = domain.StageError
