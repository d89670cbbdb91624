package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/rnavarro/nike-catalog-scraper/internal/api"
	"github.com/rnavarro/nike-catalog-scraper/internal/browser"
	"github.com/rnavarro/nike-catalog-scraper/internal/config"
	"github.com/rnavarro/nike-catalog-scraper/internal/database"
	"github.com/rnavarro/nike-catalog-scraper/internal/events"
	"github.com/rnavarro/nike-catalog-scraper/internal/models"
	"github.com/rnavarro/nike-catalog-scraper/internal/scraper"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database connection (optional)
	var store scraper.CatalogStore
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		store = db
	}

	// Redis publisher (optional)
	var publisher scraper.EventPublisher
	if cfg.Events.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		pub := events.NewPublisher(redisClient, cfg.Events.Stream)
		defer pub.Close()
		publisher = pub
	}

	// Browser setup, shared by all runs
	b, err := browser.New(browser.OptionsFromConfig(cfg.Browser))
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	// Each run gets a fresh page so leftover state from a failed run cannot
	// leak into the next one.
	runner := func(ctx context.Context) (*models.RunSummary, error) {
		sess, err := b.NewSession()
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		defer sess.Close()

		return scraper.NewService(sess, cfg, store, publisher).Run(ctx)
	}

	manager := api.NewRunManager(ctx, runner)
	router := api.NewRouter(api.NewHandlers(manager))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
