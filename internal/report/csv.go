package report

import (
	"encoding/csv"
	"time"

	"sjsage522/refurbworker/pkg/errors"
)

// utf8BOM lets spreadsheet applications detect the encoding of the CSV file
const utf8BOM = "\ufeff"

// CSVSink writes the table as UTF-8 CSV with a byte-order mark and a header row
type CSVSink struct {
	Dir string
}

// Name implements Sink
func (s *CSVSink) Name() string { return "csv" }

// Write implements Sink
func (s *CSVSink) Write(t *Table, generatedAt time.Time) (string, error) {
	path := FileName(s.Dir, generatedAt, "csv")
	f, err := createOutput(s.Name(), path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return "", errors.NewOutput(s.Name(), "write BOM", err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(t.Records()); err != nil {
		return "", errors.NewOutput(s.Name(), "write rows", err)
	}
	return path, nil
}
