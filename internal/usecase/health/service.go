package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a failing dependency while scoring still works.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot score reports.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as Report.Checks keys.
const (
	ComponentArtifacts  = "artifact_store"
	ComponentClassifier = "classifier"
	ComponentDatabase   = "database"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	artifacts  Pinger
	classifier ClassifierStatus
	db         Pinger
}

// New creates a Service.
func New(artifacts Pinger, classifier ClassifierStatus) *Service {
	return &Service{artifacts: artifacts, classifier: classifier}
}

// WithDatabase adds a Redis check for components other than the artifact
// store, such as usage counters.
func (s *Service) WithDatabase(db Pinger) *Service {
	s.db = db
	return s
}

// Check runs health checks against all components. A missing classifier makes
// the service unhealthy; any other failure degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentArtifacts] = ping(ctx, s.artifacts)
	if s.db != nil {
		checks[ComponentDatabase] = ping(ctx, s.db)
	}
	if s.classifier != nil && s.classifier.Available() {
		checks[ComponentClassifier] = CheckOK
	} else {
		checks[ComponentClassifier] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentClassifier] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if p == nil {
		return CheckError
	}
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
