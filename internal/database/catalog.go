package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS catalog_runs (
		id UUID PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		total_reported INT NOT NULL,
		collected INT NOT NULL,
		untagged INT NOT NULL,
		tagged INT NOT NULL,
		discounted INT NOT NULL,
		enriched INT NOT NULL,
		catalog_path TEXT NOT NULL,
		ranked_path TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS catalog_items (
		style_code TEXT PRIMARY KEY,
		run_id UUID NOT NULL REFERENCES catalog_runs(id),
		url TEXT NOT NULL,
		image_url TEXT NOT NULL,
		tagging TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		original_price TEXT NOT NULL,
		discount_price TEXT NOT NULL,
		sizes_available TEXT NOT NULL,
		vouchers TEXT NOT NULL,
		available_colors TEXT NOT NULL,
		color_shown TEXT NOT NULL,
		rating_score TEXT NOT NULL,
		review_count TEXT NOT NULL,
		incomplete BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// EnsureSchema creates the run and item tables if they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun persists a run summary and its items in one transaction. Items
// are upserted; a style code seen in an earlier run is overwritten with the
// latest observation.
func (db *DB) SaveRun(ctx context.Context, run *models.RunSummary, items []*models.Item) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO catalog_runs (
				id, started_at, completed_at, total_reported, collected,
				untagged, tagged, discounted, enriched, catalog_path, ranked_path
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			run.ID, run.StartedAt, run.CompletedAt, run.TotalReported, run.Collected,
			run.Untagged, run.Tagged, run.Discounted, run.Enriched,
			run.CatalogPath, run.RankedPath,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for _, item := range items {
			_, err := tx.Exec(ctx, `
				INSERT INTO catalog_items (
					style_code, run_id, url, image_url, tagging, name, description,
					original_price, discount_price, sizes_available, vouchers,
					available_colors, color_shown, rating_score, review_count, incomplete
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
				ON CONFLICT (style_code) DO UPDATE SET
					run_id = EXCLUDED.run_id,
					url = EXCLUDED.url,
					image_url = EXCLUDED.image_url,
					tagging = EXCLUDED.tagging,
					name = EXCLUDED.name,
					description = EXCLUDED.description,
					original_price = EXCLUDED.original_price,
					discount_price = EXCLUDED.discount_price,
					sizes_available = EXCLUDED.sizes_available,
					vouchers = EXCLUDED.vouchers,
					available_colors = EXCLUDED.available_colors,
					color_shown = EXCLUDED.color_shown,
					rating_score = EXCLUDED.rating_score,
					review_count = EXCLUDED.review_count,
					incomplete = EXCLUDED.incomplete,
					updated_at = CURRENT_TIMESTAMP`,
				item.StyleCode, run.ID, item.URL, item.ImageURL, item.Tagging,
				item.Name, item.Description, item.OriginalPrice, item.DiscountPrice,
				item.Sizes, item.Vouchers, item.ColorCount, item.ColorShown,
				item.Rating, item.ReviewCount, item.Incomplete,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", item.StyleCode, err)
			}
		}

		return nil
	})
}
