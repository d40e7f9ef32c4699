package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sjsage522/refurbworker/internal/crawler"
	"sjsage522/refurbworker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var generatedAt = time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)

func sampleTable() *Table {
	return Aggregate([]crawler.Product{
		{
			Title:   "翻新 14 英寸 MacBook Pro Apple M3 Pro 芯片 (配备 11 核中央处理器和 14 核图形处理器) - 深空黑色",
			URL:     "https://www.apple.com.cn/shop/product/FRX53CH/A",
			Price:   12499,
			Memory:  "18GB",
			Storage: "512GB",
		},
		{
			Title: "翻新 Mac mini Apple M2 芯片 | 教育",
			URL:   "https://www.apple.com.cn/shop/product/FMXK3CH/A",
			Price: 3599,
		},
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "apple_refurb_20240305_140709.csv"), FileName("out", generatedAt, "csv"))
}

func TestNewSinks(t *testing.T) {
	sinks, err := NewSinks([]string{"csv", "markdown", "xlsx"}, "out", "https://example.com")
	require.NoError(t, err)
	require.Len(t, sinks, 3)
	assert.Equal(t, "csv", sinks[0].Name())
	assert.Equal(t, "markdown", sinks[1].Name())
	assert.Equal(t, "xlsx", sinks[2].Name())

	_, err = NewSinks([]string{"pdf"}, "out", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestCSVSink(t *testing.T) {
	dir := t.TempDir()
	sink := &CSVSink{Dir: dir}

	path, err := sink.Write(sampleTable(), generatedAt)
	require.NoError(t, err)
	assert.Equal(t, FileName(dir, generatedAt, "csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), utf8BOM))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), utf8BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, crawler.Columns, records[0])
	assert.Equal(t, "Mac mini", records[1][0])
	assert.Equal(t, "3599", records[1][9])
	assert.Equal(t, "MacBook Pro", records[2][0])
	assert.Equal(t, "12499", records[2][9])
}

func TestCSVSink_EmptyTable(t *testing.T) {
	dir := t.TempDir()
	path, err := (&CSVSink{Dir: dir}).Write(Aggregate(nil), generatedAt)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM+strings.Join(crawler.Columns, ",")+"\n", string(data))
}

func TestCSVSink_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	path, err := (&CSVSink{Dir: dir}).Write(sampleTable(), generatedAt)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestMarkdownSink(t *testing.T) {
	dir := t.TempDir()
	sink := &MarkdownSink{Dir: dir, SourceURL: "https://www.apple.com.cn/shop/refurbished/mac"}

	path, err := sink.Write(sampleTable(), generatedAt)
	require.NoError(t, err)
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, "2024-03-05 14:07:09")
	assert.Contains(t, doc, "https://www.apple.com.cn/shop/refurbished/mac")
	assert.Contains(t, doc, "| model | screen_size |")
	assert.NotContains(t, doc, "| url |")
	assert.NotContains(t, doc, "FRX53CH")
	assert.Contains(t, doc, `教育`)
	assert.Contains(t, doc, `M2 芯片 \| 教育`)
	assert.Contains(t, doc, "RMB 3,599 - RMB 12,499")
	assert.Contains(t, doc, "**Mac mini**: 1 个")
	assert.Less(t, strings.Index(doc, "| Mac mini |"), strings.Index(doc, "| MacBook Pro |"))
}

func TestMarkdownSink_EmptyTable(t *testing.T) {
	doc := (&MarkdownSink{}).Render(Aggregate(nil), generatedAt)
	assert.Contains(t, doc, "**总计**: 0 个商品")
	assert.NotContains(t, doc, "价格范围")
}

func TestExcelSink(t *testing.T) {
	dir := t.TempDir()
	path, err := (&ExcelSink{Dir: dir}).Write(sampleTable(), generatedAt)
	require.NoError(t, err)
	assert.Equal(t, FileName(dir, generatedAt, "xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, crawler.Columns, rows[0])
	assert.Equal(t, "Mac mini", rows[1][0])
	assert.Equal(t, "3599", rows[1][9])
	assert.Equal(t, "12499", rows[2][9])
	assert.Equal(t, "https://www.apple.com.cn/shop/product/FRX53CH/A", rows[2][11])
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12499, "12,499"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.price))
	}
}
