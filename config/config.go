package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/refurbworker/pkg/errors"
)

// Output formats understood by the report sinks
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatExcel    = "xlsx"
)

// Config represents the application configuration
type Config struct {
	// Listing page and the origin used to absolutise relative product links
	ListingURL string
	SiteOrigin string

	// Fetch configuration
	RequestTimeout time.Duration
	ListingRetries int
	DetailRetries  int
	RetryDelay     time.Duration

	// Detail pipeline configuration
	Concurrency   int
	PacingDelay   time.Duration
	ProgressEvery int

	// Report output
	OutputDir     string
	OutputFormats []string

	// Memcache configuration (empty address disables the rate-limit guard)
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Redis configuration (empty address disables publishing)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	listingURL := getEnv("LISTING_URL", "https://www.apple.com.cn/shop/refurbished/mac")

	return &Config{
		ListingURL:           listingURL,
		SiteOrigin:           getEnv("SITE_ORIGIN", originOf(listingURL)),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ListingRetries:       getEnvInt("LISTING_RETRIES", 3),
		DetailRetries:        getEnvInt("DETAIL_RETRIES", 2),
		RetryDelay:           getEnvDuration("RETRY_DELAY", time.Second),
		Concurrency:          getEnvInt("CONCURRENCY", 10),
		PacingDelay:          getEnvDuration("PACING_DELAY", 500*time.Millisecond),
		ProgressEvery:        getEnvInt("PROGRESS_EVERY", 10),
		OutputDir:            getEnv("OUTPUT_DIR", "."),
		OutputFormats:        splitList(getEnv("OUTPUT_FORMATS", FormatCSV)),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RateLimitBlock:       getEnvDuration("RATE_LIMIT_BLOCK", 5*time.Minute),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "refurb"),
		RedisStreamCount:     getEnvInt("REDIS_STREAM_COUNT", 1),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),
		Environment:          getEnv("REFURB_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.ListingURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.NewConfiguration(fmt.Sprintf("invalid LISTING_URL %q", c.ListingURL), err)
	}
	if c.SiteOrigin == "" {
		return errors.NewConfiguration("SITE_ORIGIN must not be empty", nil)
	}
	if c.Concurrency < 1 {
		return errors.NewConfiguration(fmt.Sprintf("CONCURRENCY must be >= 1, got %d", c.Concurrency), nil)
	}
	if c.ListingRetries < 1 || c.DetailRetries < 1 {
		return errors.NewConfiguration("retry budgets must be >= 1", nil)
	}
	if c.RequestTimeout <= 0 {
		return errors.NewConfiguration("REQUEST_TIMEOUT must be positive", nil)
	}
	if c.ProgressEvery < 1 {
		return errors.NewConfiguration("PROGRESS_EVERY must be >= 1", nil)
	}
	for _, f := range c.OutputFormats {
		switch f {
		case FormatCSV, FormatMarkdown, FormatExcel:
		default:
			return errors.NewConfiguration(fmt.Sprintf("unknown output format %q", f), nil)
		}
	}
	if c.RedisAddr != "" && c.RedisStreamCount < 1 {
		return errors.NewConfiguration("REDIS_STREAM_COUNT must be >= 1", nil)
	}
	return nil
}

// originOf returns scheme://host of a URL, or "" when it cannot be parsed
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("750ms") or plain seconds ("30")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
