package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sjsage522/refurbworker/logger"
	"sjsage522/refurbworker/pkg/errors"
	"sjsage522/refurbworker/services/cache"

	"golang.org/x/net/html/charset"
)

// Browser-like header profile sent with every request
var defaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "zh-CN,zh;q=0.9,en;q=0.8",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
}

const rateLimitKeyPrefix = "refurb_rate_limited:"

// Fetcher performs GET requests with the fixed header profile and a retry policy.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	cacheSvc  cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// NewFetcher creates a fetcher whose requests are bounded by timeout. cacheSvc may be nil;
// when set, rate-limit replies block the host for blockTime.
func NewFetcher(timeout time.Duration, cacheSvc cache.CacheService, blockTime time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
		log:       logger.ForFetcher(),
	}
}

// Fetch returns the body of rawURL as UTF-8 text, retrying transport failures per policy.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, policy RetryPolicy) (string, error) {
	var body string
	err := policy.Do(ctx, func(attempt int) error {
		var err error
		body, err = f.fetchOnce(ctx, rawURL)
		if err != nil && attempt < policy.MaxAttempts {
			f.log.Debug().Err(err).Str("url", rawURL).Int("attempt", attempt).Msg("fetch attempt failed")
		}
		return err
	})
	if err != nil {
		f.log.Error().Err(err).Str("url", rawURL).Int("attempts", policy.MaxAttempts).Msg("failed to fetch page")
		return "", err
	}
	return body, nil
}

// fetchOnce sends a single request with the fixed headers and decodes the body to UTF-8
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (string, error) {
	host := hostOf(rawURL)

	// Check if the host is rate limited
	if f.cacheSvc != nil {
		if _, err := f.cacheSvc.Get(rateLimitKeyPrefix + host); err == nil {
			return "", errors.NewRateLimit(host, f.blockTime)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.NewParsing(host, "failed to create request", err)
	}
	for key, value := range defaultHeaders {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.NewNetwork(host, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 430 {
		f.blockHost(host)
		return "", errors.NewNetwork(host, fmt.Sprintf("rate limited; retry after %s", resp.Header.Get("Retry-After")), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewNetwork(host, fmt.Sprintf("fetch %s unexpected status code: %d", rawURL, resp.StatusCode), nil)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewNetwork(host, "failed to read response body", err)
	}

	return decodeUTF8(bodyBytes, resp.Header.Get("Content-Type"))
}

func (f *Fetcher) blockHost(host string) {
	if f.cacheSvc == nil || f.blockTime <= 0 {
		return
	}
	seconds := []byte(fmt.Sprintf("%d", f.blockTime/time.Second))
	if err := f.cacheSvc.Set(rateLimitKeyPrefix+host, seconds, f.blockTime); err != nil {
		f.log.Warn().Err(err).Str("host", host).Msg("failed to store rate limit block")
		return
	}
	f.log.Warn().Str("host", host).Dur("block", f.blockTime).Msg("host rate limited, blocking further requests")
}

// decodeUTF8 converts body to UTF-8 based on the Content-Type header and the body itself
func decodeUTF8(body []byte, contentType string) (string, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return string(body), nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return "", errors.NewParsing(name, "failed to read converted UTF-8 body", err)
	}
	return buf.String(), nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
