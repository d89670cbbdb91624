package scraper

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rnavarro/nike-catalog-scraper/internal/config"
	"github.com/rnavarro/nike-catalog-scraper/internal/models"
	"github.com/rnavarro/nike-catalog-scraper/internal/parser"
	"github.com/rnavarro/nike-catalog-scraper/internal/ratelimit"
)

// pageState is the shared view of the current detail page: the live session
// plus the embedded state payload, read once per page.
type pageState struct {
	sess     Session
	embedded []byte
}

func (p *pageState) detail() (*models.DetailSnapshot, bool) {
	if p.embedded == nil {
		return nil, false
	}

	var snapshot models.DetailSnapshot
	if err := json.Unmarshal(p.embedded, &snapshot); err != nil {
		return nil, false
	}

	return &snapshot, true
}

// extractor is one strategy in the enrichment fallback chain. Each fills
// only the fields still empty when its turn comes, and every read inside it
// is guarded: a miss leaves the field empty, never aborts the item.
type extractor interface {
	name() string
	extract(ctx context.Context, page *pageState, item *models.Item)
}

// defaultExtractors is the fixed fallback order: structured JSON, the legacy
// structured shape, DOM selectors, then the lazy-loaded review widgets.
func defaultExtractors(cfg config.EnrichConfig, limiter ratelimit.Limiter) []extractor {
	return []extractor{
		selectedProductExtractor{},
		legacyStateExtractor{},
		domExtractor{},
		reviewExtractor{settle: cfg.ReviewSettle, limiter: limiter},
	}
}

// selectedProductExtractor reads the modern detail-page shape under
// props.pageProps.selectedProduct.
type selectedProductExtractor struct{}

func (selectedProductExtractor) name() string { return "selected_product" }

func (selectedProductExtractor) extract(_ context.Context, page *pageState, item *models.Item) {
	snapshot, ok := page.detail()
	if !ok {
		return
	}

	sp := snapshot.Props.PageProps.SelectedProduct
	if sp == nil {
		return
	}

	if item.Description == "" {
		desc := firstNonEmpty(
			sp.ProductInfo.ProductDescription,
			sp.ProductInfo.ReasonToBuy,
			sp.ProductInfo.Subtitle,
		)
		if desc != "" {
			item.Description = parser.CleanDescription(desc)
		}
	}

	if item.Sizes == "" && len(sp.Sizes) > 0 {
		var available []string
		for _, size := range sp.Sizes {
			if size.Status != "ACTIVE" && size.Status != "LOW" {
				continue
			}
			label := size.LocalizedLabel
			if label == "" {
				label = size.Label
			}
			if label == "" {
				continue
			}
			prefix := size.LocalizedLabelPrefix
			if prefix == "" {
				prefix = sp.LocalizedLabelPrefix
			}
			if prefix != "" {
				label = prefix + " " + label
			}
			available = append(available, label)
		}
		if len(available) > 0 {
			item.Sizes = strings.Join(available, ", ")
		}
	}
}

// legacyStateExtractor reads the older detail-page shape, a product object
// under initialState whose key casing varies between deployments.
type legacyStateExtractor struct{}

func (legacyStateExtractor) name() string { return "legacy_state" }

func (legacyStateExtractor) extract(_ context.Context, page *pageState, item *models.Item) {
	if item.Description != "" && item.Sizes != "" {
		return
	}

	snapshot, ok := page.detail()
	if !ok {
		return
	}

	state := snapshot.Props.PageProps.InitialState
	for _, key := range []string{"product", "Product"} {
		raw, ok := state[key]
		if !ok {
			continue
		}

		var product models.LegacyProduct
		if err := json.Unmarshal(raw, &product); err != nil {
			continue
		}

		if item.Description == "" {
			desc := firstNonEmpty(product.DescriptionPreview, product.Description)
			if desc != "" {
				item.Description = strings.TrimSpace(desc)
			}
		}

		if item.Sizes == "" && len(product.Skus) > 0 {
			var sizes []string
			for _, sku := range product.Skus {
				// A sku with no available field counts as available.
				if sku.Available != nil && !*sku.Available {
					continue
				}
				size := firstNonEmpty(sku.LocalizedSize, sku.NikeSize)
				if size != "" {
					sizes = append(sizes, size)
				}
			}
			if len(sizes) > 0 {
				item.Sizes = strings.Join(sizes, ", ")
			}
		}

		break
	}
}

// domExtractor fills fields the structured shapes missed from rendered
// elements.
type domExtractor struct{}

func (domExtractor) name() string { return "dom" }

func (domExtractor) extract(_ context.Context, page *pageState, item *models.Item) {
	if item.Description == "" {
		desc, ok := page.sess.Text(`[data-testid="product-description"]`)
		if !ok || desc == "" {
			desc, _ = page.sess.Text(`.description-preview__content, .description-preview p`)
		}
		item.Description = desc
	}

	if item.Sizes == "" {
		var sizes []string
		for _, label := range page.sess.Texts(`[data-testid="size-grid"] label, fieldset label`) {
			if trimmed := strings.TrimSpace(label); trimmed != "" {
				sizes = append(sizes, trimmed)
			}
		}
		if len(sizes) > 0 {
			item.Sizes = strings.Join(sizes, ", ")
		}
	}

	if item.Vouchers == "" {
		if voucher, ok := page.sess.Text(`.promo-message, [data-testid="promo-message"]`); ok {
			item.Vouchers = voucher
		}
	}
}

// reviewExtractor scrolls partway down to trigger the lazy-loaded review
// widget, then reads rating and review count from its metadata, with text
// fallbacks for older widget markup.
type reviewExtractor struct {
	settle  time.Duration
	limiter ratelimit.Limiter
}

func (reviewExtractor) name() string { return "reviews" }

func (r reviewExtractor) extract(ctx context.Context, page *pageState, item *models.Item) {
	scrollTo(page.sess, 0.8)
	if err := r.limiter.Pause(ctx, r.settle); err != nil {
		return
	}

	if item.Rating == "" {
		if value, ok := page.sess.Attr(`meta[itemprop="ratingValue"]`, "content"); ok {
			item.Rating = strings.TrimSpace(value)
		}
	}

	if item.ReviewCount == "" {
		if value, ok := page.sess.Attr(`meta[itemprop="reviewCount"]`, "content"); ok {
			item.ReviewCount = strings.TrimSpace(value)
		}
	}

	if item.Rating == "" {
		if html, ok := page.sess.HTML(`[data-testid="reviews-summary"]`); ok {
			if rating, found := parser.StarRating(html); found {
				item.Rating = rating
			}
		}
	}

	if item.ReviewCount == "" {
		if text, ok := page.sess.Text(`text=/Reviews \(\d+\)/`); ok {
			if count, found := parser.ReviewCount(text); found {
				item.ReviewCount = count
			}
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
