package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

func newTestServer(t *testing.T, runner RunnerFunc) (*httptest.Server, *RunManager) {
	t.Helper()

	manager := NewRunManager(context.Background(), runner)
	server := httptest.NewServer(NewRouter(NewHandlers(manager)))
	t.Cleanup(server.Close)
	return server, manager
}

func decodeRun(t *testing.T, resp *http.Response) *Run {
	t.Helper()

	defer resp.Body.Close()
	var run Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	return &run
}

func waitForFinish(t *testing.T, manager *RunManager, id string) *Run {
	t.Helper()

	var run *Run
	require.Eventually(t, func() bool {
		run = manager.Get(id)
		return run != nil && run.Status != StatusRunning
	}, 2*time.Second, 10*time.Millisecond)
	return run
}

func TestStartRun(t *testing.T) {
	runner := func(ctx context.Context) (*models.RunSummary, error) {
		return &models.RunSummary{ID: "summary-1", Enriched: 42}, nil
	}
	server, manager := newTestServer(t, runner)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	run := decodeRun(t, resp)
	assert.NotEmpty(t, run.ID)

	finished := waitForFinish(t, manager, run.ID)
	assert.Equal(t, StatusCompleted, finished.Status)
	require.NotNil(t, finished.Summary)
	assert.Equal(t, 42, finished.Summary.Enriched)
}

func TestStartRunRejectsConcurrent(t *testing.T) {
	release := make(chan struct{})
	runner := func(ctx context.Context) (*models.RunSummary, error) {
		<-release
		return &models.RunSummary{}, nil
	}
	server, manager := newTestServer(t, runner)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	first := decodeRun(t, resp)

	resp, err = http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(release)
	waitForFinish(t, manager, first.ID)

	// A finished run frees the slot.
	resp, err = http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestGetRunFailure(t *testing.T) {
	runner := func(ctx context.Context) (*models.RunSummary, error) {
		return nil, errors.New("listing unreachable")
	}
	server, manager := newTestServer(t, runner)

	resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
	require.NoError(t, err)
	run := decodeRun(t, resp)

	finished := waitForFinish(t, manager, run.ID)
	assert.Equal(t, StatusFailed, finished.Status)
	assert.Equal(t, "listing unreachable", finished.Error)

	resp, err = http.Get(server.URL + "/api/v1/runs/" + run.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeRun(t, resp)
	assert.Equal(t, StatusFailed, fetched.Status)
}

func TestGetRunNotFound(t *testing.T) {
	server, _ := newTestServer(t, func(ctx context.Context) (*models.RunSummary, error) {
		return &models.RunSummary{}, nil
	})

	resp, err := http.Get(server.URL + "/api/v1/runs/does-not-exist")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListRunsAndStats(t *testing.T) {
	runner := func(ctx context.Context) (*models.RunSummary, error) {
		return &models.RunSummary{Enriched: 7}, nil
	}
	server, manager := newTestServer(t, runner)

	for i := 0; i < 2; i++ {
		resp, err := http.Post(server.URL+"/api/v1/runs", "application/json", nil)
		require.NoError(t, err)
		run := decodeRun(t, resp)
		waitForFinish(t, manager, run.ID)
	}

	resp, err := http.Get(server.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	var runs []Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	assert.Len(t, runs, 2)

	resp, err = http.Get(server.URL + "/api/v1/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	require.NotNil(t, stats.LastRun)
	assert.Equal(t, 7, stats.LastRun.Enriched)
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t, func(ctx context.Context) (*models.RunSummary, error) {
		return &models.RunSummary{}, nil
	})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
