package analytics

import (
	"sort"
	"strconv"

	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

const (
	// DefaultMinReviews is the review-count floor for the rating leaderboard.
	DefaultMinReviews = 150
	// DefaultTopRated caps the rating leaderboard length.
	DefaultTopRated = 20
	// DefaultTopPriced caps the discount-price report length.
	DefaultTopPriced = 10
)

// RankedItem pairs an item with its dense rank on the rating leaderboard.
type RankedItem struct {
	Rank int
	Item *models.Item
}

// TopByDiscountPrice returns the n most expensive discounted items. Items
// without a parseable discount price are excluded.
func TopByDiscountPrice(items []*models.Item, n int) []*models.Item {
	priced := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if models.ParsePrice(item.DiscountPrice) > 0 {
			priced = append(priced, item)
		}
	}

	sort.SliceStable(priced, func(i, j int) bool {
		return models.ParsePrice(priced[i].DiscountPrice) > models.ParsePrice(priced[j].DiscountPrice)
	})

	if len(priced) > n {
		priced = priced[:n]
	}
	return priced
}

// RankByRating builds the rating leaderboard: items with strictly more than
// minReviews reviews, ordered by rating then review count, dense-ranked so
// exact ties share a rank and the next distinct pair gets rank+1.
func RankByRating(items []*models.Item, minReviews float64, n int) []RankedItem {
	type scored struct {
		item    *models.Item
		rating  float64
		reviews float64
	}

	eligible := make([]scored, 0, len(items))
	for _, item := range items {
		reviews := parseNumber(item.ReviewCount)
		if reviews <= minReviews {
			continue
		}
		eligible = append(eligible, scored{
			item:    item,
			rating:  parseNumber(item.Rating),
			reviews: reviews,
		})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].rating != eligible[j].rating {
			return eligible[i].rating > eligible[j].rating
		}
		return eligible[i].reviews > eligible[j].reviews
	})

	if len(eligible) > n {
		eligible = eligible[:n]
	}

	ranked := make([]RankedItem, 0, len(eligible))
	rank := 0
	var prevRating, prevReviews float64
	for i, s := range eligible {
		if i == 0 || s.rating != prevRating || s.reviews != prevReviews {
			rank++
		}
		prevRating, prevReviews = s.rating, s.reviews
		ranked = append(ranked, RankedItem{Rank: rank, Item: s.item})
	}

	return ranked
}

func parseNumber(value string) float64 {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return n
}
