package models

import "time"

// RunSummary captures the outcome of one full pipeline run. The shortfall
// between TotalReported and Collected is the only visible trace of an
// error-budget exhaustion during harvesting.
type RunSummary struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
	TotalReported int       `json:"total_reported"`
	Collected     int       `json:"collected"`
	Untagged      int       `json:"untagged"`
	Tagged        int       `json:"tagged"`
	Discounted    int       `json:"discounted"`
	Enriched      int       `json:"enriched"`
	CatalogPath   string    `json:"catalog_path"`
	RankedPath    string    `json:"ranked_path"`
}

func (r *RunSummary) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
