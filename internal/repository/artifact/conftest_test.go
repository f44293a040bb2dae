package artifact

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/reportscore/internal/db"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
	"github.com/kailas-cloud/reportscore/internal/engine/evaluate"
	"github.com/kailas-cloud/reportscore/internal/engine/forest"
	"github.com/kailas-cloud/reportscore/internal/engine/tfidf"
)

func testBundle(t *testing.T) Bundle {
	t.Helper()
	ds := report.Dataset{
		{Text: "Armed robbery reported near the central station", Label: report.Genuine},
		{Text: "Free meal scam, send money to claim", Label: report.Fraud},
		{Text: "Assault reported at the bus station", Label: report.Genuine},
		{Text: "Win a free prize now, click the link", Label: report.Fraud},
		{Text: "Car break-in reported on main street", Label: report.Genuine},
		{Text: "Send gift cards to claim your free reward", Label: report.Fraud},
	}
	vocab, err := tfidf.Fit(ds.Texts())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	model, err := forest.Train(tfidf.TransformAll(ds.Texts(), vocab), ds.Labels(), forest.Params{TreeCount: 7, Seed: 11})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return Bundle{
		Vocabulary: vocab,
		Model:      model,
		Meta: Metadata{
			ModelID:          "5f0c7a52-8a3e-4d55-9a4e-0d7b0c1f2a11",
			CreatedAt:        time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			TokenizerVersion: tfidf.TokenizerVersion,
			TrainRows:        6,
			TestRows:         2,
			Evaluation:       evaluate.Report{Samples: 2, TruePositives: 1, TrueNegatives: 1, Accuracy: 1},
		},
	}
}

// mockKV implements the kv consumer interface for tests.
type mockKV struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func (m *mockKV) Ping(_ context.Context) error { return nil }
