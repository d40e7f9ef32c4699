package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"sjsage522/refurbworker/config"
	"sjsage522/refurbworker/helpers"
	"sjsage522/refurbworker/internal/report"
	"sjsage522/refurbworker/logger"
	"sjsage522/refurbworker/services/cache"
	"sjsage522/refurbworker/services/publisher"
	"sjsage522/refurbworker/services/worker"

	"github.com/joho/godotenv"
)

// previewRows is how many of the cheapest rows are printed after a run
const previewRows = 10

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("listing_url", cfg.ListingURL).
		Int("concurrency", cfg.Concurrency).
		Strs("formats", cfg.OutputFormats).
		Msg("Starting application")

	// Cancel the run on interrupt; in-flight fetches abort and pending products are skipped
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	sinks, err := report.NewSinks(cfg.OutputFormats, cfg.OutputDir, cfg.ListingURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create report sinks")
	}

	fetcher := helpers.NewFetcher(cfg.RequestTimeout, services.Cache, cfg.RateLimitBlock)
	w := worker.NewWorker(cfg, fetcher, sinks, services.Publisher, nil)

	result, err := w.Run(ctx)
	if err != nil {
		log.Error().Err(err).Str("run_id", result.RunID).Msg("Run failed")
		services.Cleanup()
		os.Exit(1)
	}

	if result.Outcome == worker.OutcomeNoProducts {
		log.Info().Str("run_id", result.RunID).Msg("Nothing to report")
		return
	}

	printPreview(os.Stdout, result)
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
		s.Publisher = nil
	}
}

// initializeServices connects to memcached and Redis when their addresses are configured
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr, cfg.RequestTimeout)
		if err := cacheService.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to memcache at %s: %w", cfg.MemcacheAddr, err)
		}
		services.Cache = cacheService
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(publisher.RedisOptions{
			Addr:            cfg.RedisAddr,
			DB:              cfg.RedisDB,
			StreamPrefix:    cfg.RedisStream,
			StreamCount:     cfg.RedisStreamCount,
			StreamMaxLength: cfg.RedisStreamMaxLength,
		})
		if err := redisPublisher.Ping(ctx); err != nil {
			redisPublisher.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		services.Publisher = redisPublisher
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}

// printPreview writes the cheapest rows and the per-model statistics as aligned text
func printPreview(out io.Writer, result *worker.RunResult) {
	rows := result.Table.Rows()
	summary := result.Table.Summary()

	fmt.Fprintf(out, "\n%d products (%d discovered, %d fetch failures, %d without price)\n\n",
		result.Table.Len(), result.Discovered, result.Stats.FetchFailed, result.Stats.ExtractFailed)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tmodel\tchip\tmemory\tstorage\tprice\t")
	for i, row := range rows {
		if i == previewRows {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Index, row.Model, row.Chip, row.Memory, row.Storage, report.FormatPrice(row.Price))
	}
	tw.Flush()

	if len(summary.ByModel) > 0 {
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "model\tcount\tmin\tmax\tmean")
		for _, m := range summary.ByModel {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
				m.Model, m.Count, report.FormatPrice(m.Min), report.FormatPrice(m.Max), report.FormatPrice(int(m.Mean+0.5)))
		}
		tw.Flush()
	}

	for _, path := range result.Outputs {
		fmt.Fprintf(out, "\nsaved %s", path)
	}
	fmt.Fprintln(out)
}
