// Package teams builds one season's team table from the four-factors
// source, whose pages index seasons newest-first and embed the column
// header as the first literal data row.
package teams

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/table"
)

// pageYearBase anchors the newest-first page indexing: page 1 is the 2019
// season, page 20 the 2000 season.
const pageYearBase = 2020

// YearForPage maps a source page index to a season year.
func YearForPage(pageIndex int) int { return pageYearBase - pageIndex }

// PageForYear maps a season year to the source page index.
func PageForYear(year int) int { return pageYearBase - year }

// Source column names as they appear in the embedded header row.
const (
	srcTeam   = "Team"
	srcWins   = "Win"
	srcLosses = "Loss"
	srcEFGPct = "Team EFg%"
	srcFTRate = "Team FT Rate"
	srcTOVPct = "Team TOV%"
	srcORBPct = "Team ORB%"
)

// FourFactorsRename maps the source four-factors names to the canonical
// abbreviations used by the player dataset's schema.
var FourFactorsRename = map[string]string{
	srcEFGPct: "eFG%",
	srcFTRate: "FT%",
	srcTOVPct: "TOV%",
	srcORBPct: "ORB%",
	srcWins:   "W",
	srcLosses: "L",
}

// Fetcher retrieves one parsed HTML table.
type Fetcher interface {
	Table(ctx context.Context, url, selector string) (*table.Table, error)
}

// Builder assembles per-season team tables.
type Builder struct {
	fetcher  Fetcher
	pageURL  string // printf pattern, %d = page index
	selector string
	log      zerolog.Logger
}

// NewBuilder wires a team season builder. pageURL is a printf pattern
// whose %d is the newest-first page index.
func NewBuilder(fetcher Fetcher, pageURL, selector string, log zerolog.Logger) *Builder {
	return &Builder{fetcher: fetcher, pageURL: pageURL, selector: selector, log: log}
}

// BuildYear builds the team table for a season year.
func (b *Builder) BuildYear(ctx context.Context, year int) (*table.Table, error) {
	return b.BuildSeason(ctx, PageForYear(year))
}

// BuildSeason fetches the team page, recovers the embedded header,
// projects down to the dataset's eight columns, renames the four factors
// to canonical abbreviations, derives W/L% and rank, and prepends the
// season year.
func (b *Builder) BuildSeason(ctx context.Context, pageIndex int) (*table.Table, error) {
	year := YearForPage(pageIndex)

	raw, err := b.fetcher.Table(ctx, fmt.Sprintf(b.pageURL, pageIndex), b.selector)
	if err != nil {
		return nil, fmt.Errorf("team page %d (season %d): %w", pageIndex, year, err)
	}

	tbl, err := recoverHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("team page %d (season %d): %w", pageIndex, year, err)
	}

	tbl.PrependColumn("Year", strconv.Itoa(year))

	tbl, err = tbl.Select("Year", srcTeam, srcEFGPct, srcFTRate, srcTOVPct, srcORBPct, srcWins, srcLosses)
	if err != nil {
		return nil, fmt.Errorf("team page %d (season %d): %w", pageIndex, year, err)
	}
	if err := tbl.Rename(FourFactorsRename); err != nil {
		return nil, fmt.Errorf("team page %d (season %d): %w", pageIndex, year, err)
	}

	deriveWinLossPct(tbl)
	rankByWinLossPct(tbl)

	b.log.Debug().Int("year", year).Int("rows", tbl.Len()).Msg("team season built")
	return tbl, nil
}

// recoverHeader applies the first data row as the table's column names and
// discards it. The source embeds headers as a literal row rather than as
// true <thead> headers.
func recoverHeader(raw *table.Table) (*table.Table, error) {
	if raw.Len() == 0 {
		return nil, fmt.Errorf("empty table, no header row to recover")
	}

	headerRow := raw.Rows[0]
	names := make([]string, len(raw.Columns))
	for i, col := range raw.Columns {
		name := headerRow[col]
		if name == "" {
			name = col
		}
		names[i] = name
	}

	out := table.New(names...)
	for _, row := range raw.Rows[1:] {
		mapped := make(table.Row, len(names))
		for i, col := range raw.Columns {
			mapped[names[i]] = row[col]
		}
		out.Append(mapped)
	}
	return out, nil
}

// deriveWinLossPct appends W/L% = W/(W+L). A team with zero recorded
// games, or unparseable win/loss cells, gets a missing value rather than
// an error.
func deriveWinLossPct(tbl *table.Table) {
	tbl.Columns = append(tbl.Columns, "W/L%")
	for _, row := range tbl.Rows {
		wins, errW := strconv.Atoi(row["W"])
		losses, errL := strconv.Atoi(row["L"])
		if errW != nil || errL != nil || wins+losses == 0 {
			row["W/L%"] = ""
			continue
		}
		ratio := float64(wins) / float64(wins+losses)
		row["W/L%"] = strconv.FormatFloat(ratio, 'f', -1, 64)
	}
}

// rankByWinLossPct sorts rows by W/L% descending and assigns rank 1..N.
// Equal ratios tie-break by team name ascending so ranking is fully
// deterministic; rows with a missing ratio sort last.
func rankByWinLossPct(tbl *table.Table) {
	sort.SliceStable(tbl.Rows, func(i, j int) bool {
		ri, okI := parseRatio(tbl.Rows[i]["W/L%"])
		rj, okJ := parseRatio(tbl.Rows[j]["W/L%"])
		switch {
		case okI && !okJ:
			return true
		case !okI && okJ:
			return false
		case ri != rj:
			return ri > rj
		default:
			return tbl.Rows[i]["Team"] < tbl.Rows[j]["Team"]
		}
	})

	tbl.Columns = append(tbl.Columns, "Rk")
	for i, row := range tbl.Rows {
		row["Rk"] = strconv.Itoa(i + 1)
	}
}

func parseRatio(cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
