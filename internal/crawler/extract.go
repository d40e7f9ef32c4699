package crawler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sjsage522/refurbworker/helpers"
	"sjsage522/refurbworker/pkg/errors"
)

// sp matches optional whitespace, including the no-break spaces Apple pages use
const sp = `[\s\p{Zs}]*`

// rule reads one field from text. First match wins within a rule; rules are independent.
type rule[T any] struct {
	field    string
	required bool
	match    func(text string) (string, bool)
	assign   func(out *T, value string) error
}

// keyword maps any of several title substrings to a canonical value
type keyword struct {
	value    string
	keywords []string
}

// Computer models come before display keywords so "Studio Display" never beats "Mac Studio"
var modelKeywords = []keyword{
	{value: "MacBook Air", keywords: []string{"MacBook Air"}},
	{value: "MacBook Pro", keywords: []string{"MacBook Pro"}},
	{value: "Mac mini", keywords: []string{"Mac mini"}},
	{value: "Mac Studio", keywords: []string{"Mac Studio"}},
	{value: "Mac Pro", keywords: []string{"Mac Pro"}},
	{value: "iMac", keywords: []string{"iMac"}},
	{value: "显示屏", keywords: []string{"显示屏", "Display"}},
}

// 玫瑰金色 precedes 金色, which is its substring
var colorPalette = []string{
	"深空灰色", "深空黑色", "银色", "星光色", "午夜色", "天蓝色", "玫瑰金色", "金色",
}

var detailRules = []rule[DetailFields]{
	{
		field:    "price",
		required: true,
		match: firstSubmatch(func(m []string) string { return m[1] },
			regexp.MustCompile(`或`+sp+`RMB`+sp+`([\d,]+)`),
			regexp.MustCompile(`RMB`+sp+`([\d,]+)`),
		),
		assign: func(out *DetailFields, value string) error {
			price, err := strconv.Atoi(strings.ReplaceAll(value, ",", ""))
			if err != nil || price <= 0 {
				return errors.NewExtraction("price", fmt.Sprintf("unparseable price %q", value))
			}
			out.Price = price
			return nil
		},
	},
	{
		field: "memory",
		match: firstSubmatch(func(m []string) string { return m[1] + "GB" },
			regexp.MustCompile(`(\d+)`+sp+`GB`+sp+`统一内存`),
		),
		assign: func(out *DetailFields, value string) error { out.Memory = value; return nil },
	},
	{
		field: "storage",
		match: firstSubmatch(func(m []string) string { return m[1] + m[2] },
			regexp.MustCompile(`(\d+)`+sp+`(GB|TB)`+sp+`固态硬盘`),
		),
		assign: func(out *DetailFields, value string) error { out.Storage = value; return nil },
	},
	{
		field: "release_year",
		match: firstSubmatch(func(m []string) string { return m[1] },
			regexp.MustCompile(`最初发布于`+sp+`(\d{4})`+sp+`年`),
		),
		assign: func(out *DetailFields, value string) error { out.ReleaseYear = value; return nil },
	},
}

var titleRules = []rule[TitleFields]{
	{
		field:  "model",
		match:  firstKeyword(modelKeywords),
		assign: func(out *TitleFields, value string) error { out.Model = value; return nil },
	},
	{
		field: "screen_size",
		match: firstSubmatch(func(m []string) string { return m[1] + "英寸" },
			regexp.MustCompile(`(\d+(?:\.\d+)?)`+sp+`英寸`),
		),
		assign: func(out *TitleFields, value string) error { out.ScreenSize = value; return nil },
	},
	{
		field: "chip",
		match: firstSubmatch(func(m []string) string { return helpers.CollapseSpace(m[1]) },
			regexp.MustCompile(`Apple[\s\p{Zs}]+(M\d+(?:[\s\p{Zs}]+(?:Pro|Max|Ultra))?)`),
		),
		assign: func(out *TitleFields, value string) error { out.Chip = value; return nil },
	},
	{
		field: "cpu_cores",
		match: firstSubmatch(func(m []string) string { return m[1] + "核" },
			regexp.MustCompile(`(\d+)`+sp+`核中央处理器`),
		),
		assign: func(out *TitleFields, value string) error { out.CPUCores = value; return nil },
	},
	{
		field: "gpu_cores",
		match: firstSubmatch(func(m []string) string { return m[1] + "核" },
			regexp.MustCompile(`(\d+)`+sp+`核图形处理器`),
		),
		assign: func(out *TitleFields, value string) error { out.GPUCores = value; return nil },
	},
	{
		field:  "color",
		match:  firstKeyword(paletteKeywords(colorPalette)),
		assign: func(out *TitleFields, value string) error { out.Color = value; return nil },
	},
}

// ExtractDetailFields reads price, memory, storage and release year from detail page text.
// A missing or unparseable price is an extraction error; other fields default to "".
func ExtractDetailFields(text string) (DetailFields, error) {
	var out DetailFields
	if err := applyRules(detailRules, text, &out); err != nil {
		return DetailFields{}, err
	}
	return out, nil
}

// ExtractTitleFields reads model, screen size, chip, core counts and color from a title
func ExtractTitleFields(title string) TitleFields {
	var out TitleFields
	// title rules are all optional and never fail
	_ = applyRules(titleRules, title, &out)
	return out
}

func applyRules[T any](rules []rule[T], text string, out *T) error {
	for _, r := range rules {
		value, ok := r.match(text)
		if !ok {
			if r.required {
				return errors.NewExtraction(r.field, r.field+" not found")
			}
			continue
		}
		if err := r.assign(out, value); err != nil && r.required {
			return err
		}
	}
	return nil
}

// firstSubmatch tries patterns in order and formats the first match
func firstSubmatch(format func(m []string) string, patterns ...*regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		for _, pattern := range patterns {
			if m := pattern.FindStringSubmatch(text); m != nil {
				return format(m), true
			}
		}
		return "", false
	}
}

// firstKeyword returns the value of the first table entry with a keyword contained in text
func firstKeyword(table []keyword) func(string) (string, bool) {
	return func(text string) (string, bool) {
		for _, entry := range table {
			for _, kw := range entry.keywords {
				if strings.Contains(text, kw) {
					return entry.value, true
				}
			}
		}
		return "", false
	}
}

func paletteKeywords(palette []string) []keyword {
	table := make([]keyword, len(palette))
	for i, color := range palette {
		table[i] = keyword{value: color, keywords: []string{color}}
	}
	return table
}
