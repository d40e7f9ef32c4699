package config

import (
	"testing"
	"time"

	"sjsage522/refurbworker/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://www.apple.com.cn/shop/refurbished/mac", config.ListingURL)
	assert.Equal(t, "https://www.apple.com.cn", config.SiteOrigin)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
	assert.Equal(t, 3, config.ListingRetries)
	assert.Equal(t, 2, config.DetailRetries)
	assert.Equal(t, time.Second, config.RetryDelay)
	assert.Equal(t, 10, config.Concurrency)
	assert.Equal(t, 500*time.Millisecond, config.PacingDelay)
	assert.Equal(t, 10, config.ProgressEvery)
	assert.Equal(t, []string{FormatCSV}, config.OutputFormats)
	assert.Empty(t, config.MemcacheAddr)
	assert.Empty(t, config.RedisAddr)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("LISTING_URL", "http://127.0.0.1:8080/shop/refurbished/mac")
	t.Setenv("CONCURRENCY", "4")
	t.Setenv("PACING_DELAY", "0")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("OUTPUT_FORMATS", "CSV, markdown ,xlsx")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_STREAM_COUNT", "3")

	config = LoadConfig()
	assert.Equal(t, "http://127.0.0.1:8080", config.SiteOrigin)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, time.Duration(0), config.PacingDelay)
	assert.Equal(t, 5*time.Second, config.RequestTimeout)
	assert.Equal(t, []string{FormatCSV, FormatMarkdown, FormatExcel}, config.OutputFormats)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 3, config.RedisStreamCount)
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative listing url", func(c *Config) { c.ListingURL = "/shop/refurbished/mac" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"zero detail retries", func(c *Config) { c.DetailRetries = 0 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"unknown format", func(c *Config) { c.OutputFormats = []string{"pdf"} }},
		{"bad stream count", func(c *Config) {
			c.RedisAddr = "localhost:6379"
			c.RedisStreamCount = 0
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := LoadConfig()
			tc.mutate(config)
			err := config.Validate()
			assert.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
		})
	}
}
