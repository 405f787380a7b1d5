// Package pipeline orchestrates one full pass over the year range: build
// every season's tables, assemble the master datasets, clean them, and
// fit the team trend model.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/analysis"
	"github.com/fortuna/fastbreak/internal/dataset"
)

// Runner executes runs, reporting progress via the Reporter if provided.
type Runner struct {
	assembler     *dataset.Assembler
	cleaner       *dataset.Cleaner
	referenceTeam string
	log           zerolog.Logger
}

// NewRunner constructs a runner. referenceTeam names the regression's
// baseline category.
func NewRunner(assembler *dataset.Assembler, cleaner *dataset.Cleaner, referenceTeam string, log zerolog.Logger) *Runner {
	return &Runner{
		assembler:     assembler,
		cleaner:       cleaner,
		referenceTeam: referenceTeam,
		log:           log,
	}
}

// Run executes one pass over the inclusive year range. Per-season fetch
// failures are isolated and reported, never fatal; a failed trend fit
// leaves Result.Trends nil but keeps the cleaned datasets. The returned
// error is reserved for cancellation and invalid input.
func (r *Runner) Run(ctx context.Context, startYear, endYear int, reporter Reporter) (*Result, error) {
	if reporter != nil {
		reporter.OnRunStart(startYear, endYear)
	}

	// Two datasets per season.
	total := 2 * (endYear - startYear + 1)
	done := 0

	progress := func(year int, ds string, rows int, err error) {
		done++
		if reporter == nil {
			return
		}
		reporter.OnSeasonDone(year, ds, rows, err)
		if err != nil {
			reporter.OnProgress(fmt.Sprintf("season %d %s failed: %v", year, ds, err), done, total)
			return
		}
		reporter.OnProgress(fmt.Sprintf("season %d %s: %d rows", year, ds, rows), done, total)
	}

	playersRaw, teamsRaw, failures, err := r.assembler.Assemble(ctx, startYear, endYear, progress)
	if err != nil {
		if reporter != nil {
			reporter.OnRunError(err)
		}
		return nil, err
	}

	players, teams := r.cleaner.Clean(playersRaw, teamsRaw)

	result := &Result{
		StartYear:   startYear,
		EndYear:     endYear,
		Players:     players,
		Teams:       teams,
		Failures:    failures,
		CompletedAt: time.Now().UTC(),
	}

	fit, err := analysis.FitTeamTrends(teams, r.referenceTeam)
	if err != nil {
		r.log.Warn().Err(err).Msg("trend fit skipped")
		if reporter != nil {
			reporter.OnProgress(fmt.Sprintf("trend fit skipped: %v", err), total, total)
		}
	} else {
		result.Trends = fit
	}

	r.log.Info().
		Int("players", len(players)).
		Int("teams", len(teams)).
		Int("season_failures", len(failures)).
		Bool("trends", result.Trends != nil).
		Msg("run complete")

	if reporter != nil {
		reporter.OnRunComplete(result)
	}
	return result, nil
}
