package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rnavarro/nike-catalog-scraper/internal/analytics"
	"github.com/rnavarro/nike-catalog-scraper/internal/config"
	"github.com/rnavarro/nike-catalog-scraper/internal/export"
	"github.com/rnavarro/nike-catalog-scraper/internal/models"
	"github.com/rnavarro/nike-catalog-scraper/internal/ratelimit"
)

// CatalogStore persists completed runs. The pipeline treats persistence as
// optional; a nil store disables it.
type CatalogStore interface {
	SaveRun(ctx context.Context, run *models.RunSummary, items []*models.Item) error
}

// EventPublisher announces completed runs to downstream consumers.
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, run *models.RunSummary) error
}

// Service runs the full pipeline: harvest, partition, enrich, export,
// report. Store and events are side channels; their failures are logged and
// never fail the run.
type Service struct {
	sess   Session
	cfg    *config.Config
	store  CatalogStore
	events EventPublisher
	logger *slog.Logger
}

func NewService(sess Session, cfg *config.Config, store CatalogStore, events EventPublisher) *Service {
	return &Service{
		sess:   sess,
		cfg:    cfg,
		store:  store,
		events: events,
		logger: slog.Default().With("component", "pipeline"),
	}
}

// Run executes one complete scrape and returns its summary. Only a missing
// listing page or snapshot is fatal; everything downstream degrades to a
// partial result.
func (s *Service) Run(ctx context.Context) (*models.RunSummary, error) {
	run := &models.RunSummary{
		ID:          uuid.New().String(),
		StartedAt:   time.Now(),
		CatalogPath: s.cfg.Output.CatalogPath,
		RankedPath:  s.cfg.Output.RankedPath,
	}

	s.logger.Info("run started", "run_id", run.ID, "listing", s.cfg.Harvest.ListingURL)

	if err := s.sess.Navigate(ctx, s.cfg.Harvest.ListingURL); err != nil {
		return nil, fmt.Errorf("open listing page: %w", err)
	}
	s.dismissCookieBanner()

	pageLimiter := ratelimit.NewJitterLimiter(s.cfg.Harvest.PageDelayMin, s.cfg.Harvest.PageDelayMax)
	harvest, err := NewHarvester(s.sess, s.cfg.Harvest, pageLimiter).Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("harvest: %w", err)
	}

	run.TotalReported = harvest.TotalResources
	run.Collected = len(harvest.Items)

	parts := PartitionItems(harvest.Items)
	input := parts.EnrichmentInput()
	run.Untagged = len(parts.Untagged)
	run.Tagged = len(parts.Tagged)
	run.Discounted = len(parts.Valid)

	s.logger.Info("harvest partitioned",
		"collected", run.Collected,
		"untagged", run.Untagged,
		"tagged", run.Tagged,
		"discounted", run.Discounted,
		"to_enrich", len(input))

	itemLimiter := ratelimit.NewJitterLimiter(s.cfg.Enrich.ItemDelayMin, s.cfg.Enrich.ItemDelayMax)
	checkpoint := func(items []*models.Item) error {
		return export.WriteCatalog(s.cfg.Output.CheckpointPath, items)
	}

	completed, err := NewEnricher(s.sess, s.cfg.Enrich, itemLimiter, checkpoint).EnrichAll(ctx, input)
	run.Enriched = len(completed)
	if err != nil {
		s.logger.Warn("enrichment interrupted, exporting partial result",
			"completed", len(completed),
			"error", err)
	}

	if err := export.WriteCatalog(s.cfg.Output.CatalogPath, completed); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}
	if err := export.RemoveCheckpoint(s.cfg.Output.CheckpointPath); err != nil {
		s.logger.Warn("checkpoint cleanup failed", "error", err)
	}

	s.reportTopPriced(completed)

	ranked := analytics.RankByRating(completed, analytics.DefaultMinReviews, analytics.DefaultTopRated)
	if err := export.WriteRanked(s.cfg.Output.RankedPath, ranked); err != nil {
		return nil, fmt.Errorf("write leaderboard: %w", err)
	}

	run.CompletedAt = time.Now()

	if s.store != nil {
		if err := s.store.SaveRun(ctx, run, completed); err != nil {
			s.logger.Warn("persisting run failed", "run_id", run.ID, "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishRunCompleted(ctx, run); err != nil {
			s.logger.Warn("publishing run event failed", "run_id", run.ID, "error", err)
		}
	}

	s.logger.Info("run completed",
		"run_id", run.ID,
		"duration", run.Duration().Round(time.Second),
		"collected", run.Collected,
		"enriched", run.Enriched,
		"leaderboard", len(ranked))

	return run, nil
}

// dismissCookieBanner clicks the consent button if one is shown. Absence is
// the normal case on repeat visits.
func (s *Service) dismissCookieBanner() {
	const script = `() => {
		const btn = document.querySelector('button[data-testid="dialog-accept-button"]')
			|| Array.from(document.querySelectorAll('button')).find(b => /accept/i.test(b.textContent));
		if (btn) { btn.click(); return true; }
		return false;
	}`

	clicked, err := s.sess.Evaluate(script)
	if err != nil {
		return
	}
	if accepted, ok := clicked.(bool); ok && accepted {
		s.logger.Debug("cookie banner dismissed")
	}
}

// reportTopPriced logs the highest-priced discounted items as a run report.
func (s *Service) reportTopPriced(items []*models.Item) {
	top := analytics.TopByDiscountPrice(items, analytics.DefaultTopPriced)
	for i, item := range top {
		s.logger.Info("top discounted item",
			"position", i+1,
			"name", item.Name,
			"discount_price", item.DiscountPrice,
			"style_code", item.StyleCode)
	}
}
