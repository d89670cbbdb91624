package models

import "encoding/json"

// DetailSnapshot mirrors the embedded state on a product detail page. Newer
// pages carry selectedProduct; older ones only a product object under
// initialState, whose key casing varies.
type DetailSnapshot struct {
	Props struct {
		PageProps DetailPageProps `json:"pageProps"`
	} `json:"props"`
}

type DetailPageProps struct {
	SelectedProduct *SelectedProduct           `json:"selectedProduct"`
	InitialState    map[string]json.RawMessage `json:"initialState"`
}

type SelectedProduct struct {
	ProductInfo struct {
		ProductDescription string `json:"productDescription"`
		ReasonToBuy        string `json:"reasonToBuy"`
		Subtitle           string `json:"subtitle"`
	} `json:"productInfo"`
	LocalizedLabelPrefix string       `json:"localizedLabelPrefix"`
	Sizes                []DetailSize `json:"sizes"`
}

type DetailSize struct {
	Status               string `json:"status"`
	Label                string `json:"label"`
	LocalizedLabel       string `json:"localizedLabel"`
	LocalizedLabelPrefix string `json:"localizedLabelPrefix"`
}

// LegacyProduct is the older detail-page shape. A sku with no available
// field counts as available.
type LegacyProduct struct {
	DescriptionPreview string      `json:"descriptionPreview"`
	Description        string      `json:"description"`
	Skus               []LegacySku `json:"skus"`
}

type LegacySku struct {
	LocalizedSize string `json:"localizedSize"`
	NikeSize      string `json:"nikeSize"`
	Available     *bool  `json:"available"`
}
