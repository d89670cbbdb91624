package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rnavarro/nike-catalog-scraper/internal/config"
	"github.com/rnavarro/nike-catalog-scraper/internal/models"
	"github.com/rnavarro/nike-catalog-scraper/internal/ratelimit"
)

// HarvestSession is the mutable state of one harvest: the deduplicated
// accumulation, the pagination cursor and the consecutive-error counter. It
// is owned exclusively by the Harvester that created it.
type HarvestSession struct {
	Items             []*models.Item
	Anchor            int
	TotalResources    int
	TotalPages        int
	ConsecutiveErrors int

	seen map[string]struct{}
}

func NewHarvestSession() *HarvestSession {
	return &HarvestSession{seen: make(map[string]struct{})}
}

// Add normalizes and accumulates a batch of groupings, dropping records
// whose style code was already seen. Returns the number of new items.
func (s *HarvestSession) Add(groups []models.RawListingGroup) int {
	added := 0
	for i := range groups {
		item := NormalizeGroup(&groups[i])
		if item == nil || item.StyleCode == "" {
			continue
		}
		if _, dup := s.seen[item.StyleCode]; dup {
			continue
		}
		s.seen[item.StyleCode] = struct{}{}
		s.Items = append(s.Items, item)
		added++
	}
	return added
}

// Harvester drives the listing collection: the embedded snapshot first, then
// the paginated product-wall API until exhaustion or the error budget is
// spent.
type Harvester struct {
	sess    Session
	cfg     config.HarvestConfig
	limiter ratelimit.Limiter
	logger  *slog.Logger
}

func NewHarvester(sess Session, cfg config.HarvestConfig, limiter ratelimit.Limiter) *Harvester {
	return &Harvester{
		sess:    sess,
		cfg:     cfg,
		limiter: limiter,
		logger:  slog.Default().With("component", "harvester"),
	}
}

// Collect runs the harvest to completion and returns the session state. A
// missing snapshot aborts the run; everything past that point degrades to a
// partial result, visible only as a shorter-than-reported item list.
func (h *Harvester) Collect(ctx context.Context) (*HarvestSession, error) {
	state := NewHarvestSession()

	raw, ok := embeddedState(h.sess)
	if !ok {
		return nil, ErrSnapshotMissing
	}

	var snapshot models.ListingSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("decode listing snapshot: %w", err)
	}

	wall := snapshot.Props.PageProps.InitialState.Wall
	state.TotalResources = wall.PageData.TotalResources
	state.TotalPages = wall.PageData.TotalPages

	added := state.Add(wall.ProductGroupings)
	h.logger.Info("initial snapshot parsed",
		"added", added,
		"total_reported", state.TotalResources,
		"pages", state.TotalPages)

	// Scroll once so the session picks up the cookies the API expects.
	scrollTo(h.sess, 1.0)
	if err := h.limiter.Pause(ctx, h.cfg.WarmupSettle); err != nil {
		return state, err
	}

	state.Anchor = h.cfg.PageSize

	for state.Anchor < state.TotalResources && state.ConsecutiveErrors < h.cfg.MaxErrors {
		resp, err := h.sess.Get(ctx, h.pageURL(state.Anchor), h.headers())
		if err != nil {
			if ctx.Err() != nil {
				return state, ctx.Err()
			}
			state.ConsecutiveErrors++
			h.logger.Warn("page fetch failed",
				"anchor", state.Anchor,
				"attempt", state.ConsecutiveErrors,
				"error", err)
			if perr := h.limiter.Pause(ctx, h.cfg.ErrorBackoff); perr != nil {
				return state, perr
			}
			continue
		}

		switch {
		case resp.OK():
			var page models.PageResponse
			if err := json.Unmarshal(resp.Body, &page); err != nil {
				state.ConsecutiveErrors++
				h.logger.Warn("unparseable page body",
					"anchor", state.Anchor,
					"attempt", state.ConsecutiveErrors,
					"error", err)
				if perr := h.limiter.Pause(ctx, h.cfg.ErrorBackoff); perr != nil {
					return state, perr
				}
				continue
			}

			if len(page.ProductGroupings) == 0 {
				h.logger.Info("no more products", "anchor", state.Anchor)
				return state, nil
			}

			added := state.Add(page.ProductGroupings)
			state.Anchor += h.cfg.PageSize
			state.ConsecutiveErrors = 0
			h.logger.Info("page collected",
				"added", added,
				"collected", len(state.Items),
				"total_reported", state.TotalResources)

			if err := h.limiter.Wait(ctx); err != nil {
				return state, err
			}

		case resp.Status == http.StatusTooManyRequests:
			state.ConsecutiveErrors++
			h.logger.Warn("rate limited, cooling down",
				"anchor", state.Anchor,
				"attempt", state.ConsecutiveErrors)
			if err := h.limiter.Pause(ctx, h.cfg.RateLimitCooldown); err != nil {
				return state, err
			}

		default:
			state.ConsecutiveErrors++
			h.logger.Warn("api error",
				"status", resp.Status,
				"anchor", state.Anchor,
				"attempt", state.ConsecutiveErrors)
			// Every 3rd consecutive error the cookies are assumed stale and
			// the whole session is re-warmed instead of backing off.
			if state.ConsecutiveErrors%3 == 0 {
				if err := h.refreshSession(ctx); err != nil {
					return state, err
				}
			} else if err := h.limiter.Pause(ctx, h.cfg.ErrorBackoff); err != nil {
				return state, err
			}
		}
	}

	if state.ConsecutiveErrors >= h.cfg.MaxErrors {
		h.logger.Warn("error budget exhausted, returning partial result",
			"collected", len(state.Items),
			"total_reported", state.TotalResources)
	}

	return state, nil
}

func (h *Harvester) pageURL(anchor int) string {
	return fmt.Sprintf("%s?path=%s&queryType=PRODUCTS&anchor=%d&count=%d",
		h.cfg.APIBase, url.QueryEscape(h.cfg.ListingPath), anchor, h.cfg.PageSize)
}

func (h *Harvester) headers() map[string]string {
	return map[string]string{
		"origin":             h.cfg.Origin,
		"referer":            h.cfg.Referer,
		"accept":             "application/json",
		"nike-api-caller-id": h.cfg.CallerID,
	}
}

// refreshSession re-navigates to the listing root and re-warms it by
// scrolling, acquiring fresh cookies before the next retry. Errors are
// returned only for context cancellation; a failed navigation just leaves
// the stale session in place for the next attempt.
func (h *Harvester) refreshSession(ctx context.Context) error {
	h.logger.Info("refreshing session for new cookies")

	if err := h.sess.Navigate(ctx, h.cfg.ListingURL); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h.logger.Warn("session refresh navigation failed", "error", err)
		return h.limiter.Pause(ctx, h.cfg.ErrorBackoff)
	}

	if err := h.limiter.Pause(ctx, h.cfg.RefreshSettle); err != nil {
		return err
	}

	scrollTo(h.sess, 1.0)
	return h.limiter.Pause(ctx, h.cfg.WarmupSettle)
}
