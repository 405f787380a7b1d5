package pipeline

import (
	"time"

	"github.com/fortuna/fastbreak/internal/analysis"
	"github.com/fortuna/fastbreak/internal/dataset"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run models one scrape-and-analyze invocation for status reporting.
type Run struct {
	ID              string     `json:"run_id"`
	StartYear       int        `json:"start_year"`
	EndYear         int        `json:"end_year"`
	Status          RunStatus  `json:"status"`
	Message         string     `json:"message,omitempty"`
	ProgressCurrent int        `json:"progress_current"`
	ProgressTotal   int        `json:"progress_total"`
	SeasonFailures  int        `json:"season_failures"`
	LastError       string     `json:"last_error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Copy returns a shallow copy to prevent external mutation.
func (r *Run) Copy() *Run {
	if r == nil {
		return nil
	}
	cpy := *r
	return &cpy
}

// Result holds everything one run produced.
type Result struct {
	StartYear   int                        `json:"start_year"`
	EndYear     int                        `json:"end_year"`
	Players     []dataset.PlayerRecord     `json:"players"`
	Teams       []dataset.TeamSeasonRecord `json:"teams"`
	Trends      *analysis.TrendFit         `json:"trends,omitempty"`
	Failures    []dataset.SeasonFailure    `json:"failures,omitempty"`
	CompletedAt time.Time                  `json:"completed_at"`
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnRunStart(startYear, endYear int)
	OnSeasonDone(year int, dataset string, rows int, err error)
	OnProgress(message string, current, total int)
	OnRunComplete(result *Result)
	OnRunError(err error)
}

// StatusSummary is returned to API callers.
type StatusSummary struct {
	ActiveRun *Run   `json:"active_run,omitempty"`
	History   []*Run `json:"recent_runs,omitempty"`
}
