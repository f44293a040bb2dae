package scoring

import (
	"context"

	"github.com/kailas-cloud/reportscore/internal/domain/report"
	"github.com/kailas-cloud/reportscore/internal/repository/artifact"
)

// ArtifactLoader reads the current artifact.
type ArtifactLoader interface {
	Load(ctx context.Context) (artifact.Bundle, error)
}

// VerdictRecorder counts verdicts for usage reporting.
type VerdictRecorder interface {
	Record(ctx context.Context, label report.Label) error
}
