package models

// ListingSnapshot mirrors the server-rendered application state embedded in
// the listing page markup. Only the subtree the harvester needs is mapped.
type ListingSnapshot struct {
	Props struct {
		PageProps struct {
			InitialState struct {
				Wall Wall `json:"Wall"`
			} `json:"initialState"`
		} `json:"pageProps"`
	} `json:"props"`
}

type Wall struct {
	PageData         PageData          `json:"pageData"`
	ProductGroupings []RawListingGroup `json:"productGroupings"`
}

type PageData struct {
	TotalResources int `json:"totalResources"`
	TotalPages     int `json:"totalPages"`
}

// PageResponse is the body shape of one paginated product-wall API page.
type PageResponse struct {
	ProductGroupings []RawListingGroup `json:"productGroupings"`
}

// RawListingGroup is one product family with 1..N colorway variants. Only
// the first (default displayed) variant is materialized into an Item.
type RawListingGroup struct {
	Products []RawProduct `json:"products"`
}

type RawProduct struct {
	BadgeLabel  string `json:"badgeLabel"`
	ProductCode string `json:"productCode"`
	Copy        struct {
		Title string `json:"title"`
	} `json:"copy"`
	Prices struct {
		InitialPrice float64 `json:"initialPrice"`
		CurrentPrice float64 `json:"currentPrice"`
	} `json:"prices"`
	DisplayColors struct {
		ColorDescription string `json:"colorDescription"`
	} `json:"displayColors"`
	PdpURL struct {
		URL string `json:"url"`
	} `json:"pdpUrl"`
	ColorwayImages struct {
		PortraitURL string `json:"portraitURL"`
		SquarishURL string `json:"squarishURL"`
	} `json:"colorwayImages"`
	Promotions *Promotions `json:"promotions"`
}

type Promotions struct {
	Visibilities []PromotionVisibility `json:"visibilities"`
}

type PromotionVisibility struct {
	Title string `json:"title"`
}
