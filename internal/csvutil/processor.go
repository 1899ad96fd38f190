package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
	// RequiredFields must all appear in the header row.
	RequiredFields []string
}

// Row is one CSV record addressed by header name.
type Row struct {
	index  map[string]int
	values []string
}

// Get returns the value of field, or "" when the record has no such column.
func (r Row) Get(field string) string {
	i, ok := r.index[field]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// Map returns the record keyed by header name.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.index))
	for field := range r.index {
		out[field] = r.Get(field)
	}
	return out
}

// ProcessCSV reads a CSV file whose first row is a header and parses every
// following record into type T. It returns the header and the parsed items.
func ProcessCSV[T any](filename string, parser func(Row) (T, error), opts ProcessorOptions) ([]string, []T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	if fi, err := csvFile.Stat(); err != nil || fi.Size() == 0 {
		return nil, nil, fmt.Errorf("CSV file is empty or cannot be read")
	}

	reader := csv.NewReader(csvFile)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, nil, fmt.Errorf("duplicate column %q in header", name)
		}
		index[name] = i
	}
	for _, field := range opts.RequiredFields {
		if _, ok := index[field]; !ok {
			return nil, nil, fmt.Errorf("required column %q not found in header", field)
		}
	}

	var items []T
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			slog.Warn("Error reading record", "line", line, "error", err)
			continue
		}

		item, err := parser(Row{index: index, values: record})
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "line", line, "error", err)
				continue
			}
			return nil, nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}
		items = append(items, item)
	}

	return header, items, nil
}

// WriteCSV writes a header and records to filename, creating parent directories.
func WriteCSV(filename string, header []string, records [][]string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	return f.Close()
}
