package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbsoluteURL(t *testing.T) {
	testCases := []struct {
		origin, link, expected string
	}{
		{"https://www.apple.com.cn", "/shop/product/G1AB2CH/a?fnode=abc", "https://www.apple.com.cn/shop/product/G1AB2CH/a"},
		{"https://www.apple.com.cn/", "shop/product/G1AB2CH/a", "https://www.apple.com.cn/shop/product/G1AB2CH/a"},
		{"https://www.apple.com.cn", "https://www.apple.com.cn/shop/product/X/a?x=1&y=2", "https://www.apple.com.cn/shop/product/X/a"},
		{"https://www.apple.com.cn", "  /shop/product/X/a  ", "https://www.apple.com.cn/shop/product/X/a"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, AbsoluteURL(tc.origin, tc.link))
	}
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "翻新 MacBook Air 13 英寸", CollapseSpace("\n  翻新 MacBook\tAir  13 英寸 \n"))
	assert.Equal(t, "", CollapseSpace("   "))
}
