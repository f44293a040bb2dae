// Package corpus loads labeled incident reports for training.
package corpus

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/reportscore/internal/domain"
	"github.com/kailas-cloud/reportscore/internal/domain/report"
)

// Format is a corpus file encoding.
type Format string

const (
	FormatAuto  Format = ""
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

const (
	textColumn  = "report_text"
	labelColumn = "label"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 << 20

// ParseFormat validates a format name. An empty name means detect from the
// file extension.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatCSV, FormatJSONL:
		return f, nil
	case "json", "ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unknown corpus format %q: %w", s, domain.ErrInvalidConfig)
}

// FileLoader reads a corpus file from disk.
type FileLoader struct {
	path   string
	format Format
}

// NewFileLoader creates a loader. FormatAuto picks the format by extension.
func NewFileLoader(path string, format Format) *FileLoader {
	return &FileLoader{path: path, format: format}
}

// Load reads every row. An empty corpus is an error.
func (l *FileLoader) Load(ctx context.Context) (report.Dataset, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	format := l.format
	if format == FormatAuto {
		format = detect(l.path)
	}

	var ds report.Dataset
	switch format {
	case FormatJSONL:
		ds, err = ReadJSONL(ctx, f)
	default:
		ds, err = ReadCSV(ctx, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return ds, nil
}

func detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	}
	return FormatCSV
}

// ReadCSV parses a CSV corpus whose header names report_text and label
// columns. Other columns are ignored.
func ReadCSV(ctx context.Context, r io.Reader) (report.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrEmptyCorpus
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	textIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case textColumn:
			textIdx = i
		case labelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("CSV header must contain %q and %q columns", textColumn, labelColumn)
	}

	var ds report.Dataset
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", row, err)
		}
		if textIdx >= len(rec) || labelIdx >= len(rec) {
			return nil, fmt.Errorf("CSV row %d has %d fields", row, len(rec))
		}
		label, err := report.ParseLabel(rec[labelIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		ds = append(ds, report.Example{Text: rec[textIdx], Label: label})
	}
	if len(ds) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	return ds, nil
}

type jsonlRecord struct {
	Text  string          `json:"text"`
	Label json.RawMessage `json:"label"`
}

// ReadJSONL parses one {"text": ..., "label": ...} object per line. Labels
// may be numbers or strings. Blank lines are skipped.
func ReadJSONL(ctx context.Context, r io.Reader) (report.Dataset, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var ds report.Dataset
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var rec jsonlRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec.Label) == 0 {
			return nil, fmt.Errorf("line %d: missing label: %w", line, domain.ErrLabelMismatch)
		}
		value := string(rec.Label)
		if unq, err := strconv.Unquote(value); err == nil {
			value = unq
		}
		label, err := report.ParseLabel(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ds = append(ds, report.Example{Text: rec.Text, Label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan JSONL: %w", err)
	}
	if len(ds) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	return ds, nil
}
