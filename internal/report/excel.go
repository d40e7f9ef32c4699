package report

import (
	"os"
	"path/filepath"
	"time"

	"sjsage522/refurbworker/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the Excel sink writes to
const SheetName = "refurb"

// ExcelSink writes the table to an .xlsx workbook with numeric prices
type ExcelSink struct {
	Dir string
}

// Name implements Sink
func (s *ExcelSink) Name() string { return "xlsx" }

// Write implements Sink
func (s *ExcelSink) Write(t *Table, generatedAt time.Time) (string, error) {
	path := FileName(s.Dir, generatedAt, "xlsx")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.NewOutput(s.Name(), "create output dir", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return "", errors.NewOutput(s.Name(), "rename sheet", err)
	}

	header := make([]interface{}, 0, len(t.Header()))
	for _, h := range t.Header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return "", errors.NewOutput(s.Name(), "write header", err)
	}

	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", errors.NewOutput(s.Name(), "cell name", err)
		}
		values := []interface{}{
			row.Model, row.ScreenSize, row.Chip, row.CPUCores, row.GPUCores, row.Color,
			row.Memory, row.Storage, row.ReleaseYear, row.Price, row.Title, row.URL,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return "", errors.NewOutput(s.Name(), "write row", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", errors.NewOutput(s.Name(), "save workbook", err)
	}
	return path, nil
}
