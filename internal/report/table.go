package report

import (
	"sort"

	"sjsage522/refurbworker/internal/crawler"
)

// Row is a product with its position in the price-sorted table
type Row struct {
	Index int `json:"index"`
	crawler.Product
}

// Table is the price-sorted report of one run. It is not modified after Aggregate returns.
type Table struct {
	rows []Row
}

// Aggregate completes each record with title-derived fields, sorts by price and indexes rows.
// Detail-page values always win over title values.
func Aggregate(records []crawler.Product) *Table {
	if len(records) == 0 {
		return &Table{}
	}

	rows := make([]Row, len(records))
	for i, record := range records {
		record.FillFrom(crawler.ExtractTitleFields(record.Title))
		rows[i] = Row{Product: record}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Price < rows[j].Price
	})
	for i := range rows {
		rows[i].Index = i
	}

	return &Table{rows: rows}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in price order
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Header returns the canonical column names
func (t *Table) Header() []string {
	header := make([]string, len(crawler.Columns))
	copy(header, crawler.Columns)
	return header
}

// Records returns the header followed by every row's cells in column order
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.rows)+1)
	records = append(records, t.Header())
	for _, row := range t.rows {
		records = append(records, row.Values())
	}
	return records
}
