package dataset

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fortuna/fastbreak/internal/table"
)

// Dataset names used in season failure reports and progress events.
const (
	DatasetPlayers = "players"
	DatasetTeams   = "teams"
)

// SeasonSource builds a single season's table for one dataset.
type SeasonSource interface {
	BuildYear(ctx context.Context, year int) (*table.Table, error)
}

// SeasonFailure records one season's failed ingestion. Failures are
// isolated per unit of work: they never corrupt or block other seasons.
type SeasonFailure struct {
	Year    int    `json:"year"`
	Dataset string `json:"dataset"`
	Err     string `json:"error"`
}

// Progress receives per-season completion callbacks during assembly.
// err is nil on success.
type Progress func(year int, dataset string, rows int, err error)

// Assembler fans the per-season builds out over a bounded worker group
// and concatenates the results, in year order, into the two master
// tables. Seasons are independent, so the fan-out changes scheduling,
// not semantics.
type Assembler struct {
	players     SeasonSource
	teams       SeasonSource
	concurrency int
	log         zerolog.Logger
}

// NewAssembler wires an assembler over the two season sources.
func NewAssembler(players, teams SeasonSource, concurrency int, log zerolog.Logger) *Assembler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Assembler{players: players, teams: teams, concurrency: concurrency, log: log}
}

// Assemble builds both datasets for the inclusive year range. The only
// fatal error is context cancellation; per-season failures are returned
// alongside whatever assembled successfully.
func (a *Assembler) Assemble(ctx context.Context, startYear, endYear int, progress Progress) (*table.Table, *table.Table, []SeasonFailure, error) {
	if startYear > endYear {
		return nil, nil, nil, fmt.Errorf("invalid year range %d-%d", startYear, endYear)
	}

	years := endYear - startYear + 1
	playerTables := make([]*table.Table, years)
	teamTables := make([]*table.Table, years)

	var mu sync.Mutex
	var failures []SeasonFailure

	// record serializes failure collection and progress callbacks; the
	// builders run concurrently but reporting stays ordered per event.
	record := func(year int, dataset string, tbl *table.Table, err error) {
		rows := 0
		if tbl != nil {
			rows = tbl.Len()
		}
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failures = append(failures, SeasonFailure{Year: year, Dataset: dataset, Err: err.Error()})
		}
		if progress != nil {
			progress(year, dataset, rows, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for year := startYear; year <= endYear; year++ {
		idx := year - startYear
		year := year

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tbl, err := a.players.BuildYear(gctx, year)
			if err != nil {
				a.log.Warn().Int("year", year).Err(err).Msg("player season failed")
				record(year, DatasetPlayers, nil, err)
				return nil
			}
			playerTables[idx] = tbl
			record(year, DatasetPlayers, tbl, nil)
			return nil
		})

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tbl, err := a.teams.BuildYear(gctx, year)
			if err != nil {
				a.log.Warn().Int("year", year).Err(err).Msg("team season failed")
				record(year, DatasetTeams, nil, err)
				return nil
			}
			teamTables[idx] = tbl
			record(year, DatasetTeams, tbl, nil)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, failures, err
	}

	return table.Concat(playerTables...), table.Concat(teamTables...), failures, nil
}
