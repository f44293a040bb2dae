package corpus

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
)

func TestFileLoader_CSV(t *testing.T) {
	ds, err := NewFileLoader(filepath.Join("testdata", "reports.csv"), FormatAuto).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantLabels := []report.Label{report.Genuine, report.Fraud, report.Genuine, report.Fraud}
	if diff := cmp.Diff(wantLabels, ds.Labels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if ds[0].Text != "Armed robbery reported near the central station, two suspects fled" {
		t.Errorf("quoted text not preserved: %q", ds[0].Text)
	}
}

func TestFileLoader_JSONL(t *testing.T) {
	ds, err := NewFileLoader(filepath.Join("testdata", "reports.jsonl"), FormatAuto).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := report.Dataset{
		{Text: "Armed robbery reported near the central station", Label: report.Genuine},
		{Text: "Free meal at the pier, send your card number", Label: report.Fraud},
		{Text: "Power outage reported on 5th avenue", Label: report.Genuine},
	}
	if diff := cmp.Diff(want, ds); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestFileLoader_Missing(t *testing.T) {
	if _, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.csv"), FormatCSV).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    report.Dataset
		wantErr error
	}{
		{
			name:  "reordered columns with extras",
			input: "id,label,report_text\n7,genuine,Fire on Elm St\n8,0,Send cash now\n",
			want: report.Dataset{
				{Text: "Fire on Elm St", Label: report.Genuine},
				{Text: "Send cash now", Label: report.Fraud},
			},
		},
		{
			name:  "byte order mark",
			input: "\ufeffreport_text,label\nflooded underpass,1\n",
			want:  report.Dataset{{Text: "flooded underpass", Label: report.Genuine}},
		},
		{name: "empty input", input: "", wantErr: domain.ErrEmptyCorpus},
		{name: "header only", input: "report_text,label\n", wantErr: domain.ErrEmptyCorpus},
		{name: "bad label", input: "report_text,label\nsomething,2\n", wantErr: domain.ErrLabelMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(context.Background(), strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadCSV: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("dataset mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("text,label\nx,1\n"))
	if err == nil || !strings.Contains(err.Error(), "report_text") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestReadJSONL_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad json", "{not json}\n"},
		{"missing label", `{"text": "x"}` + "\n"},
		{"bad label", `{"text": "x", "label": 5}` + "\n"},
		{"empty", "\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSONL(context.Background(), strings.NewReader(tt.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRead_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReadCSV(ctx, strings.NewReader("report_text,label\nx,1\n")); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadCSV error = %v, want context.Canceled", err)
	}
	if _, err := ReadJSONL(ctx, strings.NewReader(`{"text":"x","label":1}`)); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadJSONL error = %v, want context.Canceled", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatAuto, true},
		{"CSV", FormatCSV, true},
		{"jsonl", FormatJSONL, true},
		{"ndjson", FormatJSONL, true},
		{"parquet", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
