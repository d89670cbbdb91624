package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

func TestPartitionItems(t *testing.T) {
	items := []*models.Item{
		{StyleCode: "A", Tagging: "Best Seller", DiscountPrice: "₱800"},
		{StyleCode: "B", Tagging: "Just In"},
		{StyleCode: "C"},
		{StyleCode: "D", DiscountPrice: "₱500"},
	}

	p := PartitionItems(items)

	assert.Len(t, p.Untagged, 2)
	assert.Len(t, p.Tagged, 2)
	assert.Len(t, p.Valid, 1)
	assert.Equal(t, "A", p.Valid[0].StyleCode)

	// A discounted but untagged item stays out of every qualified bucket.
	assert.Equal(t, "C", p.Untagged[0].StyleCode)
	assert.Equal(t, "D", p.Untagged[1].StyleCode)
}

func TestEnrichmentInputPrefersValid(t *testing.T) {
	p := Partition{
		Tagged: []*models.Item{{StyleCode: "A"}, {StyleCode: "B"}},
		Valid:  []*models.Item{{StyleCode: "A"}},
	}

	input := p.EnrichmentInput()
	assert.Len(t, input, 1)
	assert.Equal(t, "A", input[0].StyleCode)
}

func TestEnrichmentInputFallsBackToTagged(t *testing.T) {
	p := Partition{
		Untagged: []*models.Item{{StyleCode: "X"}},
		Tagged:   []*models.Item{{StyleCode: "A"}, {StyleCode: "B"}},
	}

	input := p.EnrichmentInput()
	assert.Len(t, input, 2)
}

func TestEnrichmentInputEmpty(t *testing.T) {
	p := Partition{Untagged: []*models.Item{{StyleCode: "X"}}}
	assert.Empty(t, p.EnrichmentInput())
}
