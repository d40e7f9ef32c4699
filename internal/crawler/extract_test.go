package crawler

import (
	"testing"

	"sjsage522/refurbworker/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDetailFields(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected DetailFields
	}{
		{
			name:     "price after trade-in marker",
			text:     "月供低至 RMB 833 或 RMB 9,999 现在购买",
			expected: DetailFields{Price: 9999},
		},
		{
			name:     "bare price fallback",
			text:     "价格 RMB 12,499 含增值税",
			expected: DetailFields{Price: 12499},
		},
		{
			name: "full configuration",
			text: "或 RMB 7,199 16 GB 统一内存 512 GB 固态硬盘 最初发布于 2023 年 10 月",
			expected: DetailFields{
				Price:       7199,
				Memory:      "16GB",
				Storage:     "512GB",
				ReleaseYear: "2023",
			},
		},
		{
			name:     "terabyte storage and no-break spaces",
			text:     "或\u00a0RMB\u00a023,999 64GB统一内存 2\u00a0TB 固态硬盘",
			expected: DetailFields{Price: 23999, Memory: "64GB", Storage: "2TB"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := ExtractDetailFields(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, fields)
		})
	}
}

func TestExtractDetailFieldsRejectsMissingPrice(t *testing.T) {
	testCases := []string{
		"16 GB 统一内存 512 GB 固态硬盘",
		"或 RMB ,",
		"RMB 0",
		"RMB 99999999999999999999999",
	}

	for _, text := range testCases {
		_, err := ExtractDetailFields(text)
		require.Error(t, err, text)
		assert.True(t, errors.IsType(err, errors.ErrorTypeExtraction), text)
	}
}

func TestExtractTitleFields(t *testing.T) {
	testCases := []struct {
		title    string
		expected TitleFields
	}{
		{
			title: "翻新 MacBook Air 13 英寸机型搭载 Apple M2 芯片 8 核中央处理器 10 核图形处理器 深空灰色",
			expected: TitleFields{
				Model:      "MacBook Air",
				ScreenSize: "13英寸",
				Chip:       "M2",
				CPUCores:   "8核",
				GPUCores:   "10核",
				Color:      "深空灰色",
			},
		},
		{
			title: "翻新 14.2 英寸 MacBook Pro Apple M3 Max 芯片 (配备 16 核中央处理器和 40 核图形处理器) - 深空黑色",
			expected: TitleFields{
				Model:      "MacBook Pro",
				ScreenSize: "14.2英寸",
				Chip:       "M3 Max",
				CPUCores:   "16核",
				GPUCores:   "40核",
				Color:      "深空黑色",
			},
		},
		{
			title:    "翻新 Mac Studio Apple M2 Ultra 芯片",
			expected: TitleFields{Model: "Mac Studio", Chip: "M2 Ultra"},
		},
		{
			title:    "翻新 Studio Display - 标准玻璃",
			expected: TitleFields{Model: "显示屏"},
		},
		{
			title:    "翻新 24 英寸 iMac 玫瑰金色",
			expected: TitleFields{Model: "iMac", ScreenSize: "24英寸", Color: "玫瑰金色"},
		},
		{
			title:    "翻新 配件",
			expected: TitleFields{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractTitleFields(tc.title))
		})
	}
}

func TestExtractionIsPure(t *testing.T) {
	text := "或 RMB 9,999 16 GB 统一内存"
	first, err1 := ExtractDetailFields(text)
	second, err2 := ExtractDetailFields(text)
	assert.Equal(t, first, second)
	assert.Equal(t, err1, err2)

	title := "翻新 Mac mini Apple M2 Pro 芯片 银色"
	assert.Equal(t, ExtractTitleFields(title), ExtractTitleFields(title))
}
