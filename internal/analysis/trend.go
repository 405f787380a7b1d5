// Package analysis fits the team performance trend model: W/L% as a
// linear function of year and team with a year×team interaction, so each
// team gets its own slope over time.
package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/fortuna/fastbreak/internal/dataset"
)

// TeamTrend is one team's absolute rate of change of W/L% per year.
type TeamTrend struct {
	Team  string  `json:"team"`
	Slope float64 `json:"slope"`
}

// TrendFit is the fitted interaction model. The reference team is the
// category absorbed into the intercept: its trend is the plain year
// coefficient, and every other team's trend is that baseline plus the
// team's interaction coefficient.
type TrendFit struct {
	ReferenceTeam string      `json:"reference_team"`
	Intercept     float64     `json:"intercept"`
	BaseSlope     float64     `json:"base_slope"`
	Trends        []TeamTrend `json:"trends"`
}

// FitTeamTrends fits the model over all rows with a present W/L%. The
// caller names the reference team explicitly; it must occur in the data.
// Trends come back sorted by slope descending, reference team included.
func FitTeamTrends(records []dataset.TeamSeasonRecord, referenceTeam string) (*TrendFit, error) {
	var sample []dataset.TeamSeasonRecord
	minYear := 0
	teamSet := make(map[string]bool)
	for _, rec := range records {
		if !rec.WinLossPct.Valid {
			continue
		}
		if minYear == 0 || rec.Year < minYear {
			minYear = rec.Year
		}
		teamSet[rec.Team] = true
		sample = append(sample, rec)
	}
	if len(sample) == 0 {
		return nil, fmt.Errorf("no rows with a present win/loss ratio")
	}
	if !teamSet[referenceTeam] {
		return nil, fmt.Errorf("reference team %q not present in the data", referenceTeam)
	}

	// Non-reference teams in sorted order define the dummy layout.
	var others []string
	for team := range teamSet {
		if team != referenceTeam {
			others = append(others, team)
		}
	}
	sort.Strings(others)

	// Columns: intercept, year, then a level dummy and a year interaction
	// per non-reference team. Years are centered on the earliest season to
	// keep the system well conditioned.
	cols := 2 + 2*len(others)
	if len(sample) < cols {
		return nil, fmt.Errorf("underdetermined fit: %d rows for %d coefficients", len(sample), cols)
	}

	colOf := make(map[string]int, len(others))
	for i, team := range others {
		colOf[team] = 2 + 2*i
	}

	x := mat.NewDense(len(sample), cols, nil)
	y := mat.NewDense(len(sample), 1, nil)
	for i, rec := range sample {
		t := float64(rec.Year - minYear)
		x.Set(i, 0, 1)
		x.Set(i, 1, t)
		if j, ok := colOf[rec.Team]; ok {
			x.Set(i, j, 1)
			x.Set(i, j+1, t)
		}
		y.Set(i, 0, rec.WinLossPct.Float64)
	}

	var beta mat.Dense
	if err := beta.Solve(x, y); err != nil {
		return nil, fmt.Errorf("least squares solve: %w", err)
	}

	fit := &TrendFit{
		ReferenceTeam: referenceTeam,
		Intercept:     beta.At(0, 0),
		BaseSlope:     beta.At(1, 0),
	}

	fit.Trends = append(fit.Trends, TeamTrend{Team: referenceTeam, Slope: fit.BaseSlope})
	for _, team := range others {
		fit.Trends = append(fit.Trends, TeamTrend{
			Team:  team,
			Slope: fit.BaseSlope + beta.At(colOf[team]+1, 0),
		})
	}
	sort.Slice(fit.Trends, func(i, j int) bool {
		if fit.Trends[i].Slope != fit.Trends[j].Slope {
			return fit.Trends[i].Slope > fit.Trends[j].Slope
		}
		return fit.Trends[i].Team < fit.Trends[j].Team
	})
	return fit, nil
}
