package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/refurbworker/config"
	"sjsage522/refurbworker/helpers"
	"sjsage522/refurbworker/internal/crawler"
	"sjsage522/refurbworker/internal/report"
	"sjsage522/refurbworker/logger"
	"sjsage522/refurbworker/pkg/errors"
	"sjsage522/refurbworker/services/publisher"

	"github.com/google/uuid"
)

// Outcome describes how a run ended when it did not fail
type Outcome string

const (
	// OutcomeCompleted means at least one product was priced and reported
	OutcomeCompleted Outcome = "completed"
	// OutcomeNoProducts means the listing page had no refurbished products
	OutcomeNoProducts Outcome = "no_products"
)

// RunResult is everything one run produced
type RunResult struct {
	RunID      string
	Outcome    Outcome
	Discovered int
	Stats      crawler.EnrichStats
	Table      *report.Table
	Outputs    []string
	Published  int
	StartedAt  time.Time
	Duration   time.Duration
}

// Worker runs the listing → detail → report flow once per Run call
type Worker struct {
	cfg        *config.Config
	fetcher    crawler.PageFetcher
	discoverer *crawler.Discoverer
	pipeline   *crawler.Pipeline
	sinks      []report.Sink
	publisher  publisher.Publisher
	log        *logger.Logger
}

// NewWorker creates a new worker. pub may be nil to disable publishing.
func NewWorker(
	cfg *config.Config,
	fetcher crawler.PageFetcher,
	sinks []report.Sink,
	pub publisher.Publisher,
	onProgress crawler.ProgressFunc,
) *Worker {
	return &Worker{
		cfg:        cfg,
		fetcher:    fetcher,
		discoverer: crawler.NewDiscoverer(cfg.SiteOrigin),
		pipeline: crawler.NewPipeline(fetcher, crawler.PipelineOptions{
			Concurrency:   cfg.Concurrency,
			Retry:         helpers.RetryPolicy{MaxAttempts: cfg.DetailRetries, Backoff: cfg.RetryDelay},
			PacingDelay:   cfg.PacingDelay,
			ProgressEvery: cfg.ProgressEvery,
			OnProgress:    onProgress,
		}),
		sinks:     sinks,
		publisher: pub,
		log:       logger.ForWorker(),
	}
}

// Run performs one monitoring pass. An empty listing is not an error; a listing that cannot
// be fetched or a batch where every product was dropped is a total_failure error.
func (w *Worker) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: start,
		Table:     report.Aggregate(nil),
	}
	log := w.log.WithField("run_id", result.RunID)
	defer func() { result.Duration = time.Since(start) }()

	log.Info().Str("url", w.cfg.ListingURL).Msg("fetching listing page")
	html, err := w.fetcher.Fetch(ctx, w.cfg.ListingURL, helpers.RetryPolicy{
		MaxAttempts: w.cfg.ListingRetries,
		Backoff:     w.cfg.RetryDelay,
	})
	if err != nil {
		return result, errors.NewTotalFailure("listing", "listing page unavailable", err)
	}

	candidates, err := w.discoverer.Discover(html)
	if err != nil {
		return result, errors.NewTotalFailure("listing", "listing page unreadable", err)
	}
	result.Discovered = len(candidates)

	if len(candidates) == 0 {
		log.Warn().Msg("no refurbished products on the listing page")
		result.Outcome = OutcomeNoProducts
		return result, nil
	}
	log.Info().Int("candidates", len(candidates)).Msg("discovered products")

	products, stats := w.pipeline.Enrich(ctx, candidates)
	result.Stats = stats
	if len(products) == 0 {
		return result, errors.NewTotalFailure("detail", "no product page yielded a price", ctx.Err())
	}

	result.Table = report.Aggregate(products)
	result.Outcome = OutcomeCompleted
	result.Outputs = w.writeOutputs(log, result.Table, start)
	result.Published = w.publish(ctx, log, result)

	summary := result.Table.Summary()
	log.Info().
		Int("rows", result.Table.Len()).
		Int("min_price", summary.Overall.Min).
		Int("max_price", summary.Overall.Max).
		Strs("outputs", result.Outputs).
		Dur("elapsed", time.Since(start)).
		Msg("run finished")

	return result, nil
}

// writeOutputs runs every sink; a failing sink is logged and skipped
func (w *Worker) writeOutputs(log *logger.Logger, table *report.Table, generatedAt time.Time) []string {
	var outputs []string
	for _, sink := range w.sinks {
		path, err := sink.Write(table, generatedAt)
		if err != nil {
			log.Error().Err(err).Str("sink", sink.Name()).Msg("failed to write report")
			continue
		}
		log.Info().Str("sink", sink.Name()).Str("path", path).Msg("report written")
		outputs = append(outputs, path)
	}
	return outputs
}

// publishedRow is the message body sent for every table row
type publishedRow struct {
	RunID string `json:"run_id"`
	report.Row
}

// publish sends each row to the publisher and trims the streams. It returns the number of
// rows delivered.
func (w *Worker) publish(ctx context.Context, log *logger.Logger, result *RunResult) int {
	if w.publisher == nil {
		return 0
	}

	published := 0
	for _, row := range result.Table.Rows() {
		data, err := json.Marshal(publishedRow{RunID: result.RunID, Row: row})
		if err != nil {
			log.Error().Err(err).Str("url", row.URL).Msg("failed to encode row")
			continue
		}
		if err := w.publisher.Publish(ctx, result.RunID, data); err != nil {
			log.Error().Err(err).Str("url", row.URL).Msg("failed to publish row")
			continue
		}
		published++
	}

	if err := w.publisher.TrimStreams(ctx); err != nil {
		log.Error().Err(err).Msg("failed to trim streams")
	}

	log.Debug().Int("published", published).Msg("rows published")
	return published
}
