package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
	domusage "github.com/kailas-cloud/reportscore/internal/domain/usage"
	"github.com/kailas-cloud/reportscore/internal/engine/evaluate"
	"github.com/kailas-cloud/reportscore/internal/engine/forest"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
	"github.com/kailas-cloud/reportscore/internal/repository/artifact"
	healthuc "github.com/kailas-cloud/reportscore/internal/usecase/health"
	scoringuc "github.com/kailas-cloud/reportscore/internal/usecase/scoring"
	usageuc "github.com/kailas-cloud/reportscore/internal/usecase/usage"
)

// --- Mocks ---

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockVerdicts struct {
	genuine, fraud int64
	err            error
}

func (m *mockVerdicts) Incr(_ context.Context, l report.Label, _ time.Time) error {
	if l == report.Genuine {
		m.genuine++
	} else {
		m.fraud++
	}
	return nil
}

func (m *mockVerdicts) Counts(_ context.Context, _ domusage.Period, _ time.Time) (int64, int64, error) {
	return m.genuine, m.fraud, m.err
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testBundle(t *testing.T) artifact.Bundle {
	t.Helper()
	ds := report.Dataset{
		{Text: "free meal scam reported", Label: report.Fraud},
		{Text: "free prize scam send money", Label: report.Fraud},
		{Text: "assault reported at the station", Label: report.Genuine},
		{Text: "robbery reported at the market", Label: report.Genuine},
	}
	vocab, err := tfidf.Fit(ds.Texts())
	if err != nil {
		t.Fatal(err)
	}
	model, err := forest.Train(tfidf.TransformAll(ds.Texts(), vocab), ds.Labels(), forest.Params{TreeCount: 15, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	return artifact.Bundle{
		Vocabulary: vocab,
		Model:      model,
		Meta: artifact.Metadata{
			ModelID:          "model-1",
			CreatedAt:        testNow,
			TokenizerVersion: tfidf.TokenizerVersion,
			TrainRows:        4,
			TestRows:         1,
			Evaluation:       evaluate.Report{Samples: 1, Accuracy: 1, Precision: 1, Recall: 1, F1: 1},
		},
	}
}

type fixture struct {
	router   http.Handler
	scoring  *scoringuc.Service
	verdicts *mockVerdicts
}

func newFixture(t *testing.T, loaded bool) *fixture {
	t.Helper()
	verdicts := &mockVerdicts{}
	usage := usageuc.New(verdicts).WithClock(func() time.Time { return testNow })
	scoring := scoringuc.New(nil).WithRecorder(usage)
	if loaded {
		scoring.Publish(testBundle(t))
	}
	health := healthuc.New(&mockPinger{}, scoring)

	r := chi.NewRouter()
	NewServer(scoring, usage, health, nil).WithMaxBodyBytes(256).Register(r)
	return &fixture{router: r, scoring: scoring, verdicts: verdicts}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Tests ---

func TestScore_OK(t *testing.T) {
	f := newFixture(t, true)

	rr := f.do(t, http.MethodPost, "/score", `{"text":"free meal scam"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	resp := decode[ScoreResponse](t, rr)
	if resp.Label != "fraud" {
		t.Errorf("label = %q, want fraud", resp.Label)
	}
	if resp.Confidence < 0.5 || resp.Confidence > 1 {
		t.Errorf("confidence = %v", resp.Confidence)
	}
	if resp.ModelID != "model-1" {
		t.Errorf("model_id = %q", resp.ModelID)
	}
	if f.verdicts.fraud != 1 {
		t.Errorf("recorded fraud verdicts = %d, want 1", f.verdicts.fraud)
	}
}

func TestScore_Errors(t *testing.T) {
	tests := []struct {
		name     string
		loaded   bool
		body     string
		wantCode int
		wantErr  ErrorCode
	}{
		{"unavailable", false, `{"text":"free meal"}`, http.StatusServiceUnavailable, CodeClassifierUnavailable},
		{"blank text", true, `{"text":"   "}`, http.StatusBadRequest, CodeValidationFailed},
		{"missing text", true, `{}`, http.StatusBadRequest, CodeValidationFailed},
		{"invalid json", true, `{"text":`, http.StatusBadRequest, CodeBadRequest},
		{"too large", true, `{"text":"` + strings.Repeat("a", 512) + `"}`,
			http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.loaded)
			rr := f.do(t, http.MethodPost, "/score", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			if got := decode[ErrorResponse](t, rr); got.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", got.Code, tt.wantErr)
			}
		})
	}
}

func TestGetModel(t *testing.T) {
	f := newFixture(t, true)

	rr := f.do(t, http.MethodGet, "/model", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decode[ModelResponse](t, rr)
	if resp.ModelID != "model-1" || resp.TreeCount != 15 {
		t.Errorf("unexpected model %+v", resp)
	}
	if resp.VocabularySize == 0 {
		t.Error("vocabulary_size = 0")
	}
	if !resp.CreatedAt.Equal(testNow) {
		t.Errorf("created_at = %v", resp.CreatedAt)
	}
	if resp.TokenizerVersion != tfidf.TokenizerVersion {
		t.Errorf("tokenizer_version = %d", resp.TokenizerVersion)
	}
	if resp.Evaluation.Accuracy != 1 || resp.Evaluation.Samples != 1 {
		t.Errorf("evaluation = %+v", resp.Evaluation)
	}
}

func TestGetModel_Unavailable(t *testing.T) {
	f := newFixture(t, false)
	rr := f.do(t, http.MethodGet, "/model", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestGetUsage(t *testing.T) {
	f := newFixture(t, true)
	f.verdicts.genuine, f.verdicts.fraud = 3, 1

	tests := []struct {
		query      string
		wantPeriod string
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{"", "day", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"?period=month", "month", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.wantPeriod, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, "/usage"+tt.query, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d", rr.Code)
			}
			resp := decode[UsageResponse](t, rr)
			if resp.Period != tt.wantPeriod {
				t.Errorf("period = %q", resp.Period)
			}
			if !resp.PeriodStartAt.Equal(tt.wantStart) || !resp.PeriodEndAt.Equal(tt.wantEnd) {
				t.Errorf("window = [%v, %v)", resp.PeriodStartAt, resp.PeriodEndAt)
			}
			if resp.Genuine != 3 || resp.Fraud != 1 || resp.Total != 4 || resp.FraudRate != 0.25 {
				t.Errorf("counts = %+v", resp)
			}
		})
	}
}

func TestGetUsage_Errors(t *testing.T) {
	f := newFixture(t, true)

	rr := f.do(t, http.MethodGet, "/usage?period=year", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid period: status = %d, want 400", rr.Code)
	}

	f.verdicts.err = errors.New("redis down")
	rr = f.do(t, http.MethodGet, "/usage", "")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("store error: status = %d, want 500", rr.Code)
	}
	if got := decode[ErrorResponse](t, rr); got.Message != "internal error" {
		t.Errorf("message = %q, internals must not leak", got.Message)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		loaded     bool
		wantCode   int
		wantStatus string
	}{
		{"healthy", true, http.StatusOK, "ok"},
		{"no classifier", false, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.loaded)
			rr := f.do(t, http.MethodGet, "/health", "")
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			resp := decode[HealthResponse](t, rr)
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Checks[healthuc.ComponentArtifacts] != "ok" {
				t.Errorf("checks = %v", resp.Checks)
			}
		})
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	scoring := scoringuc.New(nil)
	scoring.Publish(testBundle(t))
	health := healthuc.New(&mockPinger{err: errors.New("disk gone")}, scoring)

	r := chi.NewRouter()
	NewServer(scoring, usageuc.New(nil), health, nil).Register(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Errorf("degraded must still serve: status = %d", rr.Code)
	}
	if resp := decode[HealthResponse](t, rr); resp.Status != "degraded" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t, true)
	rr := f.do(t, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestSafeDomainMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrClassifierUnavailable, "classifier unavailable"},
		{errors.Join(errors.New("secret path /var/x"), domain.ErrArtifactCorrupt), "artifact corrupt"},
		{errors.New("boom"), "internal error"},
	}
	for _, tt := range tests {
		if got := safeDomainMessage(tt.err); got != tt.want {
			t.Errorf("safeDomainMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
