package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportscore/internal/domain"
	domusage "github.com/kailas-cloud/reportscore/internal/domain/usage"
	"github.com/kailas-cloud/reportscore/internal/metrics"
	healthuc "github.com/kailas-cloud/reportscore/internal/usecase/health"
	scoringuc "github.com/kailas-cloud/reportscore/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/reportscore/internal/usecase/usage"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrorCode is the machine-readable code in error responses.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeUnauthorized          ErrorCode = "unauthorized"
	CodeValidationFailed      ErrorCode = "validation_failed"
	CodePayloadTooLarge       ErrorCode = "payload_too_large"
	CodeClassifierUnavailable ErrorCode = "classifier_unavailable"
	CodeArtifactNotFound      ErrorCode = "artifact_not_found"
	CodeArtifactCorrupt       ErrorCode = "artifact_corrupt"
	CodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ScoreRequest is the body of POST /score.
type ScoreRequest struct {
	Text string `json:"text"`
}

// ScoreResponse is the body returned by POST /score.
type ScoreResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	ModelID    string  `json:"model_id"`
}

// EvaluationResponse mirrors the held-out metrics stored with the model.
type EvaluationResponse struct {
	Samples   int     `json:"samples"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// ModelResponse is the body returned by GET /model.
type ModelResponse struct {
	ModelID          string             `json:"model_id"`
	CreatedAt        time.Time          `json:"created_at"`
	TokenizerVersion int                `json:"tokenizer_version"`
	VocabularySize   int                `json:"vocabulary_size"`
	TreeCount        int                `json:"tree_count"`
	TrainRows        int                `json:"train_rows"`
	TestRows         int                `json:"test_rows"`
	Evaluation       EvaluationResponse `json:"evaluation"`
}

// UsageResponse is the body returned by GET /usage.
type UsageResponse struct {
	Period        string    `json:"period"`
	PeriodStartAt time.Time `json:"period_start_at"`
	PeriodEndAt   time.Time `json:"period_end_at"`
	Genuine       int64     `json:"genuine"`
	Fraud         int64     `json:"fraud"`
	Total         int64     `json:"total"`
	FraudRate     float64   `json:"fraud_rate"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the scoring service over HTTP.
type Server struct {
	scoring       *scoringuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	scoring *scoringuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		scoring:      scoring,
		usage:        usage,
		health:       health,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrClassifierUnavailable,
			http.StatusServiceUnavailable, CodeClassifierUnavailable),
		sentinelHandler(domain.ErrArtifactNotFound, http.StatusServiceUnavailable, CodeArtifactNotFound),
		sentinelHandler(domain.ErrArtifactCorrupt, http.StatusServiceUnavailable, CodeArtifactCorrupt),
	}
	return s
}

// WithMaxBodyBytes overrides the request body limit. Non-positive values keep
// the default.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/score", s.Score)
	r.Get("/model", s.GetModel)
	r.Get("/usage", s.GetUsage)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Score handles POST /score.
func (s *Server) Score(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid JSON body")
		return
	}

	v, err := s.scoring.Score(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ScoreResponse{
		Label:      v.Label.String(),
		Confidence: v.Confidence,
		ModelID:    v.ModelID,
	})
}

// GetModel handles GET /model.
func (s *Server) GetModel(w http.ResponseWriter, _ *http.Request) {
	info, err := s.scoring.ModelInfo()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ev := info.Meta.Evaluation
	writeJSON(w, http.StatusOK, ModelResponse{
		ModelID:          info.Meta.ModelID,
		CreatedAt:        info.Meta.CreatedAt.UTC(),
		TokenizerVersion: info.Meta.TokenizerVersion,
		VocabularySize:   info.VocabularySize,
		TreeCount:        info.TreeCount,
		TrainRows:        info.Meta.TrainRows,
		TestRows:         info.Meta.TestRows,
		Evaluation: EvaluationResponse{
			Samples:   ev.Samples,
			Accuracy:  ev.Accuracy,
			Precision: ev.Precision,
			Recall:    ev.Recall,
			F1:        ev.F1,
		},
	})
}

// GetUsage handles GET /usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	report, err := s.usage.GetReport(r.Context(), period)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UsageResponse{
		Period:        string(report.Period()),
		PeriodStartAt: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEndAt:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Genuine:       report.Genuine(),
		Fraud:         report.Fraud(),
		Total:         report.Total(),
		FraudRate:     report.FraudRate(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrClassifierUnavailable,
		domain.ErrArtifactNotFound,
		domain.ErrArtifactCorrupt,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler creates an errorHandler that matches a sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
