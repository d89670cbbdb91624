package api

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rnavarro/nike-catalog-scraper/internal/models"
)

// ErrRunInProgress is returned when a run is requested while another is
// still active. The manager serializes runs because they share one browser
// session.
var ErrRunInProgress = errors.New("a scrape run is already in progress")

// RunnerFunc executes one full pipeline run.
type RunnerFunc func(ctx context.Context) (*models.RunSummary, error)

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is the API-visible record of one triggered scrape.
type Run struct {
	ID         string             `json:"id"`
	Status     RunStatus          `json:"status"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Summary    *models.RunSummary `json:"summary,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// RunManager tracks triggered runs and enforces one active run at a time.
// Runs execute on the base context, not the request context, so a client
// disconnect does not abort a scrape.
type RunManager struct {
	mu      sync.Mutex
	runs    map[string]*Run
	active  bool
	runner  RunnerFunc
	baseCtx context.Context
	logger  *slog.Logger
}

func NewRunManager(baseCtx context.Context, runner RunnerFunc) *RunManager {
	return &RunManager{
		runs:    make(map[string]*Run),
		runner:  runner,
		baseCtx: baseCtx,
		logger:  slog.Default().With("component", "run-manager"),
	}
}

// Start triggers a new run in the background.
func (m *RunManager) Start() (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return nil, ErrRunInProgress
	}

	run := &Run{
		ID:        uuid.New().String(),
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	m.runs[run.ID] = run
	m.active = true

	go m.execute(run.ID)

	return run.snapshot(), nil
}

func (m *RunManager) execute(id string) {
	summary, err := m.runner(m.baseCtx)

	m.mu.Lock()
	defer m.mu.Unlock()

	run := m.runs[id]
	now := time.Now()
	run.FinishedAt = &now
	m.active = false

	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		m.logger.Error("run failed", "run_id", id, "error", err)
		return
	}

	run.Status = StatusCompleted
	run.Summary = summary
	m.logger.Info("run finished", "run_id", id, "enriched", summary.Enriched)
}

// Get returns the run with the given ID, or nil.
func (m *RunManager) Get(id string) *Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return nil
	}
	return run.snapshot()
}

// List returns all runs, newest first.
func (m *RunManager) List() []*Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, run.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// Stats summarizes the manager's history.
type Stats struct {
	Total     int                `json:"total"`
	Running   int                `json:"running"`
	Completed int                `json:"completed"`
	Failed    int                `json:"failed"`
	LastRun   *models.RunSummary `json:"last_run,omitempty"`
}

func (m *RunManager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats Stats
	var lastFinished time.Time
	for _, run := range m.runs {
		stats.Total++
		switch run.Status {
		case StatusRunning:
			stats.Running++
		case StatusCompleted:
			stats.Completed++
			if run.FinishedAt != nil && run.FinishedAt.After(lastFinished) {
				lastFinished = *run.FinishedAt
				stats.LastRun = run.Summary
			}
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats
}

// snapshot copies the run so callers never see fields mutate mid-read.
func (r *Run) snapshot() *Run {
	copied := *r
	return &copied
}
