package scraper

import (
	"context"
	"log/slog"

	"github.com/rnavarro/nike-catalog-scraper/internal/config"
	"github.com/rnavarro/nike-catalog-scraper/internal/models"
	"github.com/rnavarro/nike-catalog-scraper/internal/ratelimit"
)

// CheckpointFunc persists the accumulated enriched set so a killed run can
// be recovered from the last checkpoint.
type CheckpointFunc func(items []*models.Item) error

// Enricher visits each qualifying item's detail page and fills the fields
// the listing doesn't carry. Every failure is item-local: the item keeps
// whatever fields it already had and processing continues.
type Enricher struct {
	sess       Session
	cfg        config.EnrichConfig
	limiter    ratelimit.Limiter
	checkpoint CheckpointFunc
	extractors []extractor
	logger     *slog.Logger
}

func NewEnricher(sess Session, cfg config.EnrichConfig, limiter ratelimit.Limiter, checkpoint CheckpointFunc) *Enricher {
	return &Enricher{
		sess:       sess,
		cfg:        cfg,
		limiter:    limiter,
		checkpoint: checkpoint,
		extractors: defaultExtractors(cfg, limiter),
		logger:     slog.Default().With("component", "enricher"),
	}
}

// EnrichAll processes items strictly in order, checkpointing after every
// Nth completed item. The returned slice holds every item processed before
// a cancellation, so partial progress survives.
func (e *Enricher) EnrichAll(ctx context.Context, items []*models.Item) ([]*models.Item, error) {
	completed := make([]*models.Item, 0, len(items))

	for _, item := range items {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}

		e.enrichOne(ctx, item)
		completed = append(completed, item)

		e.logger.Info("item processed",
			"progress", len(completed),
			"of", len(items),
			"style_code", item.StyleCode,
			"fields", fieldSummary(item))

		if e.checkpoint != nil && len(completed)%e.cfg.CheckpointEvery == 0 {
			if err := e.checkpoint(completed); err != nil {
				e.logger.Warn("checkpoint write failed", "error", err)
			} else {
				e.logger.Info("checkpoint saved", "items", len(completed))
			}
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return completed, err
		}
	}

	return completed, nil
}

func (e *Enricher) enrichOne(ctx context.Context, item *models.Item) {
	if item.URL == "" {
		item.Incomplete = true
		return
	}

	if err := e.sess.Navigate(ctx, item.URL); err != nil {
		item.Incomplete = true
		e.logger.Warn("detail page unreachable",
			"style_code", item.StyleCode,
			"url", item.URL,
			"error", err)
		return
	}

	if err := e.limiter.Pause(ctx, e.cfg.SettleDelay); err != nil {
		item.Incomplete = true
		return
	}

	state := &pageState{sess: e.sess}
	if raw, ok := embeddedState(e.sess); ok {
		state.embedded = []byte(raw)
	}

	for _, ex := range e.extractors {
		before := fieldSummary(item)
		ex.extract(ctx, state, item)
		if after := fieldSummary(item); after != before {
			e.logger.Debug("fields extracted",
				"strategy", ex.name(),
				"style_code", item.StyleCode,
				"fields", after)
		}
	}
}

// fieldSummary compresses enrichment completeness into a D/S/R triple for
// progress logs.
func fieldSummary(item *models.Item) string {
	mark := func(value string, set byte) byte {
		if value != "" {
			return set
		}
		return '-'
	}

	return string([]byte{
		mark(item.Description, 'D'),
		mark(item.Sizes, 'S'),
		mark(item.Rating, 'R'),
	})
}
