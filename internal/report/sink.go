package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sjsage522/refurbworker/config"
	"sjsage522/refurbworker/pkg/errors"
)

// Sink renders a Table somewhere and returns where it went
type Sink interface {
	// Name identifies the sink in logs
	Name() string

	// Write renders t, stamped with generatedAt, and returns the output path
	Write(t *Table, generatedAt time.Time) (string, error)
}

// FileName returns dir/apple_refurb_<YYYYMMDD_HHMMSS>.<ext>
func FileName(dir string, generatedAt time.Time, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("apple_refurb_%s.%s", generatedAt.Format("20060102_150405"), ext))
}

// NewSinks builds the sinks for the given format names ("csv", "markdown", "xlsx")
func NewSinks(formats []string, dir, sourceURL string) ([]Sink, error) {
	var sinks []Sink
	for _, format := range formats {
		switch format {
		case config.FormatCSV:
			sinks = append(sinks, &CSVSink{Dir: dir})
		case config.FormatMarkdown:
			sinks = append(sinks, &MarkdownSink{Dir: dir, SourceURL: sourceURL})
		case config.FormatExcel:
			sinks = append(sinks, &ExcelSink{Dir: dir})
		default:
			return nil, errors.NewConfiguration(fmt.Sprintf("unknown output format %q", format), nil)
		}
	}
	return sinks, nil
}

// createOutput creates (or truncates) path, making intermediate directories
func createOutput(sink, path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewOutput(sink, "create output dir", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewOutput(sink, fmt.Sprintf("create file %q", path), err)
	}
	return f, nil
}
