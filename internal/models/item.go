package models

// Item is the canonical per-product record carried through the pipeline.
// StyleCode is the unique key; a second record with the same code is dropped
// during harvesting, never merged.
type Item struct {
	URL           string `json:"product_url"`
	ImageURL      string `json:"product_image_url"`
	Tagging       string `json:"product_tagging"`
	Name          string `json:"product_name"`
	Description   string `json:"product_description"`
	OriginalPrice string `json:"original_price"`
	DiscountPrice string `json:"discount_price"`
	Sizes         string `json:"sizes_available"`
	Vouchers      string `json:"vouchers"`
	ColorCount    string `json:"available_colors"`
	ColorShown    string `json:"color_shown"`
	StyleCode     string `json:"style_code"`
	Rating        string `json:"rating_score"`
	ReviewCount   string `json:"review_count"`

	// Incomplete marks items whose detail page could not be visited. The
	// listing fields are still valid; only the enrichment pass was skipped.
	Incomplete bool `json:"incomplete,omitempty"`
}

// HasDiscount reports whether a strictly-lower current price was observed
// for this item during normalization.
func (i *Item) HasDiscount() bool {
	return i.DiscountPrice != ""
}

// IsTagged reports whether the listing carried a badge label. An empty
// tagging is a first-class value, not an error.
func (i *Item) IsTagged() bool {
	return i.Tagging != ""
}
