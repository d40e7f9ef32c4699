package crawler

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"sjsage522/refurbworker/helpers"
	"sjsage522/refurbworker/logger"
	"sjsage522/refurbworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives the running completed/total count. It is called from the
// goroutine that finished the task and must not block.
type ProgressFunc func(done, total int)

// PipelineOptions configures the detail pipeline
type PipelineOptions struct {
	Concurrency   int
	Retry         helpers.RetryPolicy
	PacingDelay   time.Duration
	ProgressEvery int
	OnProgress    ProgressFunc
}

// EnrichStats counts what happened to a batch of candidates
type EnrichStats struct {
	Submitted     int
	Accepted      int
	FetchFailed   int
	ExtractFailed int
}

// Pipeline fetches detail pages for candidates under bounded concurrency
type Pipeline struct {
	fetcher PageFetcher
	opts    PipelineOptions
	log     *logger.Logger
}

type outcome struct {
	product Product
	err     error
}

// NewPipeline creates a pipeline; non-positive Concurrency and ProgressEvery fall back to 10
func NewPipeline(fetcher PageFetcher, opts PipelineOptions) *Pipeline {
	if opts.Concurrency < 1 {
		opts.Concurrency = 10
	}
	if opts.ProgressEvery < 1 {
		opts.ProgressEvery = 10
	}
	return &Pipeline{
		fetcher: fetcher,
		opts:    opts,
		log:     logger.ForPipeline(),
	}
}

// Enrich fetches and extracts every candidate and returns the accepted products in
// completion order. Candidates whose page cannot be fetched or has no price are dropped.
func (p *Pipeline) Enrich(ctx context.Context, candidates []CandidateRecord) ([]Product, EnrichStats) {
	total := len(candidates)
	stats := EnrichStats{Submitted: total}
	if total == 0 {
		return nil, stats
	}

	p.log.Info().Int("total", total).Int("concurrency", p.opts.Concurrency).Msg("fetching detail pages")

	results := make(chan outcome, total)
	var completed atomic.Int64

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)

	for _, c := range candidates {
		if ctx.Err() != nil {
			p.log.Warn().Msg("run cancelled, not scheduling remaining candidates")
			break
		}
		g.Go(func() error {
			product, err := p.enrichOne(ctx, c)
			results <- outcome{product: product, err: err}
			p.progress(int(completed.Add(1)), total)
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	var products []Product
	for r := range results {
		switch {
		case r.err == nil:
			products = append(products, r.product)
		case errors.IsType(r.err, errors.ErrorTypeExtraction), errors.IsType(r.err, errors.ErrorTypeParsing):
			stats.ExtractFailed++
		default:
			stats.FetchFailed++
		}
	}
	stats.Accepted = len(products)

	p.log.Info().
		Int("accepted", stats.Accepted).
		Int("submitted", stats.Submitted).
		Int("fetch_failed", stats.FetchFailed).
		Int("extract_failed", stats.ExtractFailed).
		Msg("detail pages done")

	return products, stats
}

// enrichOne owns c for its whole lifetime and returns a finished copy
func (p *Pipeline) enrichOne(ctx context.Context, c CandidateRecord) (Product, error) {
	body, err := p.fetcher.Fetch(ctx, c.URL, p.opts.Retry)
	if err != nil {
		p.log.Warn().Err(err).Str("url", c.URL).Msg("dropping product: detail page unavailable")
		return Product{}, err
	}

	p.pace(ctx)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		perr := errors.NewParsing(c.URL, "failed to parse detail HTML", err)
		p.log.Warn().Err(perr).Msg("dropping product")
		return Product{}, perr
	}

	detail, err := ExtractDetailFields(doc.Text())
	if err != nil {
		p.log.Warn().Err(err).Str("url", c.URL).Msg("dropping product: no price found")
		return Product{}, err
	}

	return NewProduct(c, detail), nil
}

func (p *Pipeline) pace(ctx context.Context) {
	if p.opts.PacingDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.opts.PacingDelay):
	}
}

func (p *Pipeline) progress(done, total int) {
	if done%p.opts.ProgressEvery != 0 && done != total {
		return
	}
	p.log.Info().Int("done", done).Int("total", total).Msg("progress")
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(done, total)
	}
}
