package scraper

import "github.com/rnavarro/nike-catalog-scraper/internal/models"

// Partition groups harvested items by tagging and discount eligibility.
type Partition struct {
	Untagged []*models.Item
	Tagged   []*models.Item
	Valid    []*models.Item
}

// PartitionItems classifies the harvested set. Valid is the subset of Tagged
// that also carries a discount price.
func PartitionItems(items []*models.Item) Partition {
	var p Partition
	for _, item := range items {
		if !item.IsTagged() {
			p.Untagged = append(p.Untagged, item)
			continue
		}
		p.Tagged = append(p.Tagged, item)
		if item.HasDiscount() {
			p.Valid = append(p.Valid, item)
		}
	}
	return p
}

// EnrichmentInput returns the items that proceed to detail-page enrichment.
// When no item carries both a tag and a discount it falls back to the tagged
// set, never the full untagged set, so the enricher always has something
// plausible to work on.
func (p Partition) EnrichmentInput() []*models.Item {
	if len(p.Valid) > 0 {
		return p.Valid
	}
	return p.Tagged
}
