package report

import (
	"fmt"
	"strings"
	"time"

	"sjsage522/refurbworker/pkg/errors"
)

// MarkdownSink writes a human-readable report: the table without URLs plus statistics
type MarkdownSink struct {
	Dir       string
	SourceURL string
}

// Name implements Sink
func (s *MarkdownSink) Name() string { return "markdown" }

// Write implements Sink
func (s *MarkdownSink) Write(t *Table, generatedAt time.Time) (string, error) {
	path := FileName(s.Dir, generatedAt, "md")
	f, err := createOutput(s.Name(), path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.WriteString(s.Render(t, generatedAt)); err != nil {
		return "", errors.NewOutput(s.Name(), "write report", err)
	}
	return path, nil
}

// Render returns the markdown document for t
func (s *MarkdownSink) Render(t *Table, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Apple 官翻 Mac 完整价格表\n\n")
	fmt.Fprintf(&b, "**更新时间**: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))
	if s.SourceURL != "" {
		fmt.Fprintf(&b, "**数据来源**: %s\n\n", s.SourceURL)
	}
	b.WriteString("**说明**: 所有价格均从商品详情页直接提取\n\n---\n\n")

	// every column except the trailing url
	header := t.Header()
	header = header[:len(header)-1]
	writeMarkdownRow(&b, header)
	separators := make([]string, len(header))
	for i := range separators {
		separators[i] = "---"
	}
	writeMarkdownRow(&b, separators)
	for _, row := range t.rows {
		values := row.Values()
		writeMarkdownRow(&b, values[:len(values)-1])
	}

	summary := t.Summary()
	b.WriteString("\n---\n\n## 统计信息\n\n")
	fmt.Fprintf(&b, "- **总计**: %d 个商品\n", summary.Overall.Count)
	if summary.Overall.Count > 0 {
		fmt.Fprintf(&b, "- **价格范围**: RMB %s - RMB %s\n", FormatPrice(summary.Overall.Min), FormatPrice(summary.Overall.Max))
		fmt.Fprintf(&b, "- **平均价格**: RMB %s\n", FormatPrice(int(summary.Overall.Mean+0.5)))
	}

	if len(summary.ByModel) > 0 {
		b.WriteString("\n### 按机型统计\n\n")
		for _, m := range summary.ByModel {
			fmt.Fprintf(&b, "- **%s**: %d 个 | 价格: RMB %s - %s | 平均: RMB %s\n",
				m.Model, m.Count, FormatPrice(m.Min), FormatPrice(m.Max), FormatPrice(int(m.Mean+0.5)))
		}
	}

	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(cell, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// FormatPrice renders an integer with thousands separators: 12499 -> "12,499"
func FormatPrice(price int) string {
	sign := ""
	if price < 0 {
		sign = "-"
		price = -price
	}
	digits := fmt.Sprintf("%d", price)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}
