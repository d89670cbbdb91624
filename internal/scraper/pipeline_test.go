package scraper

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnavarro/nike-catalog-scraper/internal/config"
	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

type fakeStore struct {
	runs  []*models.RunSummary
	items [][]*models.Item
	err   error
}

func (s *fakeStore) SaveRun(_ context.Context, run *models.RunSummary, items []*models.Item) error {
	if s.err != nil {
		return s.err
	}
	s.runs = append(s.runs, run)
	s.items = append(s.items, items)
	return nil
}

type fakePublisher struct {
	published []*models.RunSummary
	err       error
}

func (p *fakePublisher) PublishRunCompleted(_ context.Context, run *models.RunSummary) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, run)
	return nil
}

// catalogScenario scripts a full run: 50 families in the snapshot, 30 of
// them tagged, 20 of those discounted, every discounted family with a
// working detail page.
func catalogScenario(t *testing.T) *fakeSession {
	t.Helper()

	sess := newFakeSession()

	gs := make([]models.RawListingGroup, 0, 50)
	for i := 0; i < 50; i++ {
		p := rawProduct(fmt.Sprintf("SKU-%03d", i))
		p.PdpURL.URL = fmt.Sprintf("detail-%03d", i)
		if i < 30 {
			p.BadgeLabel = "Best Seller"
		}
		if i < 20 {
			p.Prices.CurrentPrice = 4000 + float64(i)*10
		}
		gs = append(gs, models.RawListingGroup{Products: []models.RawProduct{p}})

		sp := &models.SelectedProduct{
			LocalizedLabelPrefix: "US",
			Sizes:                []models.DetailSize{{Status: "ACTIVE", Label: "9", LocalizedLabel: "9"}},
		}
		sp.ProductInfo.ProductDescription = fmt.Sprintf("Product %d description.", i)
		sess.pages[p.PdpURL.URL] = &fakePage{nextData: detailJSON(t, sp, nil)}
	}

	sess.pages["listing"] = &fakePage{nextData: listingJSON(t, 50, 1, gs)}
	return sess
}

func pipelineConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	return &config.Config{
		Harvest: config.HarvestConfig{
			ListingURL:  "listing",
			APIBase:     "https://api.test/product_wall",
			ListingPath: "/ph/w",
			PageSize:    50,
			MaxErrors:   15,
		},
		Enrich: config.EnrichConfig{CheckpointEvery: 25},
		Output: config.OutputConfig{
			CatalogPath:    filepath.Join(dir, "catalog.csv"),
			RankedPath:     filepath.Join(dir, "ranked.csv"),
			CheckpointPath: filepath.Join(dir, "checkpoint.csv"),
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\xEF\xBB\xBF"))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestServiceRun(t *testing.T) {
	sess := catalogScenario(t)
	cfg := pipelineConfig(t)
	store := &fakeStore{}
	events := &fakePublisher{}

	run, err := NewService(sess, cfg, store, events).Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 50, run.TotalReported)
	assert.Equal(t, 50, run.Collected)
	assert.Equal(t, 20, run.Untagged)
	assert.Equal(t, 30, run.Tagged)
	assert.Equal(t, 20, run.Discounted)
	assert.Equal(t, 20, run.Enriched)

	// Only the discounted tagged subset is visited.
	assert.Len(t, sess.navigations, 21)
	assert.Equal(t, "listing", sess.navigations[0])

	catalog := readCSV(t, cfg.Output.CatalogPath)
	require.Len(t, catalog, 21)
	assert.Equal(t, "Product 0 description.", catalog[1][4])
	assert.Equal(t, "US 9", catalog[1][7])

	// Nothing carried review counts, so the leaderboard is header only.
	ranked := readCSV(t, cfg.Output.RankedPath)
	require.Len(t, ranked, 1)

	// A completed run leaves no checkpoint behind.
	_, statErr := os.Stat(cfg.Output.CheckpointPath)
	assert.True(t, os.IsNotExist(statErr))

	require.Len(t, store.runs, 1)
	assert.Equal(t, run.ID, store.runs[0].ID)
	assert.Len(t, store.items[0], 20)
	require.Len(t, events.published, 1)
	assert.Equal(t, run.ID, events.published[0].ID)
}

func TestServiceRunWithoutSideChannels(t *testing.T) {
	sess := catalogScenario(t)
	cfg := pipelineConfig(t)

	run, err := NewService(sess, cfg, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, run.Enriched)
}

func TestServiceRunSurvivesSideChannelFailures(t *testing.T) {
	sess := catalogScenario(t)
	cfg := pipelineConfig(t)
	store := &fakeStore{err: errors.New("db down")}
	events := &fakePublisher{err: errors.New("redis down")}

	run, err := NewService(sess, cfg, store, events).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, run.Enriched)
}

func TestServiceRunListingUnreachable(t *testing.T) {
	sess := newFakeSession()
	sess.navErrs["listing"] = errors.New("net::ERR_NAME_NOT_RESOLVED")
	cfg := pipelineConfig(t)

	_, err := NewService(sess, cfg, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open listing page")
}

func TestServiceRunSnapshotMissing(t *testing.T) {
	sess := newFakeSession()
	sess.pages["listing"] = &fakePage{}
	cfg := pipelineConfig(t)

	_, err := NewService(sess, cfg, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotMissing)
}
