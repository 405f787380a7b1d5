// Package players builds one season's player table from the two source
// tables (totals and advanced) and reconciles them into a single table.
package players

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/table"
)

// joinKey is the composite key shared by the totals and advanced tables.
// A traded player appears once per team plus an aggregate row, all with
// identical keys across the two tables; the join keeps the first match.
var joinKey = []string{"Player", "Rk", "Pos", "Age", "Tm", "G", "MP"}

// pageRankColumn is a presentation artifact of the source page, dropped
// after the join.
const pageRankColumn = "Rk"

// Fetcher retrieves one parsed HTML table.
type Fetcher interface {
	Table(ctx context.Context, url, selector string) (*table.Table, error)
}

// Builder assembles per-season player tables.
type Builder struct {
	fetcher     Fetcher
	totalsURL   string // printf pattern, %d = season year
	advancedURL string // printf pattern, %d = season year
	totalsSel   string
	advancedSel string
	log         zerolog.Logger
}

// NewBuilder wires a player season builder. The URL arguments are printf
// patterns whose %d is the season year.
func NewBuilder(fetcher Fetcher, totalsURL, totalsSel, advancedURL, advancedSel string, log zerolog.Logger) *Builder {
	return &Builder{
		fetcher:     fetcher,
		totalsURL:   totalsURL,
		advancedURL: advancedURL,
		totalsSel:   totalsSel,
		advancedSel: advancedSel,
		log:         log,
	}
}

// BuildYear is BuildSeason under the name the dataset assembler expects.
func (b *Builder) BuildYear(ctx context.Context, year int) (*table.Table, error) {
	return b.BuildSeason(ctx, year)
}

// BuildSeason fetches the totals and advanced tables for one season,
// prunes all-empty columns, joins them on the composite key (first match
// wins), prepends the season year, and drops the page-rank column.
//
// Seasons are independent: a failure here aborts this season only.
func (b *Builder) BuildSeason(ctx context.Context, year int) (*table.Table, error) {
	totals, err := b.fetcher.Table(ctx, fmt.Sprintf(b.totalsURL, year), b.totalsSel)
	if err != nil {
		return nil, fmt.Errorf("player totals %d: %w", year, err)
	}
	advanced, err := b.fetcher.Table(ctx, fmt.Sprintf(b.advancedURL, year), b.advancedSel)
	if err != nil {
		return nil, fmt.Errorf("player advanced %d: %w", year, err)
	}

	totals.DropEmptyColumns()
	advanced.DropEmptyColumns()

	joined, err := totals.JoinFirstMatch(advanced, joinKey...)
	if err != nil {
		return nil, fmt.Errorf("join player tables %d: %w", year, err)
	}

	joined.PrependColumn("Year", strconv.Itoa(year))
	joined.DropColumn(pageRankColumn)

	b.log.Debug().Int("year", year).
		Int("totals_rows", totals.Len()).
		Int("advanced_rows", advanced.Len()).
		Int("joined_rows", joined.Len()).
		Msg("player season built")
	return joined, nil
}
