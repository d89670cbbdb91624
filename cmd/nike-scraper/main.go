package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rnavarro/nike-catalog-scraper/internal/browser"
	"github.com/rnavarro/nike-catalog-scraper/internal/config"
	"github.com/rnavarro/nike-catalog-scraper/internal/database"
	"github.com/rnavarro/nike-catalog-scraper/internal/events"
	"github.com/rnavarro/nike-catalog-scraper/internal/scraper"
)

func main() {
	var (
		headless   = flag.Bool("headless", true, "Run browser in headless mode")
		listing    = flag.String("listing", "", "Listing URL to harvest (overrides LISTING_URL)")
		out        = flag.String("out", "", "Catalog CSV path (overrides OUTPUT_CSV)")
		ranked     = flag.String("top20", "", "Leaderboard CSV path (overrides TOP20_CSV)")
		checkpoint = flag.String("checkpoint", "", "Checkpoint CSV path (overrides CHECKPOINT_CSV)")
		dbURL      = flag.String("db", "", "Postgres URL for run persistence (overrides DATABASE_URL)")
		redisAddr  = flag.String("redis", "", "Redis address for run events (overrides REDIS_ADDR)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, *headless, *listing, *out, *ranked, *checkpoint, *dbURL, *redisAddr)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("Starting catalog scraper", "listing", cfg.Harvest.ListingURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	var store scraper.CatalogStore
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to prepare schema", "error", err)
			os.Exit(1)
		}
		store = db
	}

	var publisher scraper.EventPublisher
	if cfg.Events.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		pub := events.NewPublisher(client, cfg.Events.Stream)
		defer pub.Close()
		publisher = pub
	}

	b, err := browser.New(browser.OptionsFromConfig(cfg.Browser))
	if err != nil {
		logger.Error("Failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	sess, err := b.NewSession()
	if err != nil {
		logger.Error("Failed to open page", "error", err)
		os.Exit(1)
	}
	defer sess.Close()

	started := time.Now()
	run, err := scraper.NewService(sess, cfg, store, publisher).Run(ctx)
	if err != nil {
		logger.Error("Scrape failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Scrape finished",
		"run_id", run.ID,
		"elapsed", time.Since(started).Round(time.Second),
		"collected", run.Collected,
		"enriched", run.Enriched,
		"catalog", run.CatalogPath,
		"leaderboard", run.RankedPath)
}

func applyFlags(cfg *config.Config, headless bool, listing, out, ranked, checkpoint, dbURL, redisAddr string) {
	cfg.Browser.Headless = headless
	if listing != "" {
		cfg.Harvest.ListingURL = listing
	}
	if out != "" {
		cfg.Output.CatalogPath = out
	}
	if ranked != "" {
		cfg.Output.RankedPath = ranked
	}
	if checkpoint != "" {
		cfg.Output.CheckpointPath = checkpoint
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisAddr != "" {
		cfg.Events.RedisAddr = redisAddr
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Level == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
