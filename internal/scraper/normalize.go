package scraper

import (
	"fmt"
	"strings"

	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

// NormalizeGroup flattens one product grouping into an Item, using the first
// (default displayed) colorway as representative. Groups with no variants
// produce no item.
func NormalizeGroup(group *models.RawListingGroup) *models.Item {
	if len(group.Products) == 0 {
		return nil
	}

	p := group.Products[0]

	voucher := ""
	if p.Promotions != nil && len(p.Promotions.Visibilities) > 0 {
		voucher = strings.TrimSpace(p.Promotions.Visibilities[0].Title)
	}

	// A current price only counts as a discount when it undercuts the
	// initial price and is non-zero.
	discount := ""
	if p.Prices.CurrentPrice < p.Prices.InitialPrice && p.Prices.CurrentPrice > 0 {
		discount = models.FormatPrice(p.Prices.CurrentPrice)
	}

	image := p.ColorwayImages.PortraitURL
	if image == "" {
		image = p.ColorwayImages.SquarishURL
	}

	return &models.Item{
		URL:           p.PdpURL.URL,
		ImageURL:      image,
		Tagging:       strings.TrimSpace(p.BadgeLabel),
		Name:          p.Copy.Title,
		OriginalPrice: models.FormatPrice(p.Prices.InitialPrice),
		DiscountPrice: discount,
		Vouchers:      voucher,
		ColorCount:    colorSummary(len(group.Products)),
		ColorShown:    p.DisplayColors.ColorDescription,
		StyleCode:     p.ProductCode,
	}
}

func colorSummary(count int) string {
	if count == 1 {
		return "1 Colour"
	}
	return fmt.Sprintf("%d Colours", count)
}
