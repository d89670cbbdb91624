package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`\s+`)
	starsPattern   = regexp.MustCompile(`([\d.]+)\s*stars?`)
	reviewsPattern = regexp.MustCompile(`Reviews\s*\((\d+)\)`)
)

// CleanDescription strips markup from a product-copy fragment and collapses
// runs of whitespace into single spaces. Tags become spaces so adjacent
// paragraphs don't run together.
func CleanDescription(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// StarRating extracts the decimal preceding "stars" from a reviews-summary
// fragment such as `<span>4.7 stars</span>`.
func StarRating(fragment string) (string, bool) {
	matches := starsPattern.FindStringSubmatch(fragmentText(fragment))
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// ReviewCount extracts N from a "Reviews (N)" fragment.
func ReviewCount(fragment string) (string, bool) {
	matches := reviewsPattern.FindStringSubmatch(fragmentText(fragment))
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

// fragmentText reduces an HTML fragment to its visible text. Plain text
// passes through unchanged.
func fragmentText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	return doc.Text()
}
