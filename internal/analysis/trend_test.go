package analysis

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/fastbreak/internal/dataset"
)

// lines generates exactly-linear season records so the least-squares fit
// must recover the per-team slopes to machine precision.
func lines(slopes map[string][2]float64, startYear, seasons int) []dataset.TeamSeasonRecord {
	var recs []dataset.TeamSeasonRecord
	for team, line := range slopes {
		intercept, slope := line[0], line[1]
		for i := 0; i < seasons; i++ {
			recs = append(recs, dataset.TeamSeasonRecord{
				Year: startYear + i,
				Team: team,
				WinLossPct: sql.NullFloat64{
					Float64: intercept + slope*float64(i),
					Valid:   true,
				},
			})
		}
	}
	return recs
}

func TestFitTeamTrendsRecoversExactLines(t *testing.T) {
	recs := lines(map[string][2]float64{
		"ATL": {0.500, 0.000},
		"GSW": {0.400, 0.020},
		"PHI": {0.600, -0.015},
	}, 2000, 10)

	fit, err := FitTeamTrends(recs, "ATL")
	require.NoError(t, err)

	assert.Equal(t, "ATL", fit.ReferenceTeam)
	assert.InDelta(t, 0.500, fit.Intercept, 1e-9)
	assert.InDelta(t, 0.000, fit.BaseSlope, 1e-9)

	bySlope := make(map[string]float64, len(fit.Trends))
	for _, tr := range fit.Trends {
		bySlope[tr.Team] = tr.Slope
	}
	assert.InDelta(t, 0.020, bySlope["GSW"], 1e-9)
	assert.InDelta(t, 0.000, bySlope["ATL"], 1e-9)
	assert.InDelta(t, -0.015, bySlope["PHI"], 1e-9)

	// Sorted by slope descending.
	assert.Equal(t, "GSW", fit.Trends[0].Team)
	assert.Equal(t, "PHI", fit.Trends[len(fit.Trends)-1].Team)
}

func TestFitTeamTrendsSkipsMissingRatios(t *testing.T) {
	recs := lines(map[string][2]float64{
		"ATL": {0.500, 0.010},
		"BOS": {0.450, 0.005},
	}, 2000, 8)
	// An expansion-team row with no recorded games must not distort the fit.
	recs = append(recs, dataset.TeamSeasonRecord{Year: 2003, Team: "ATL"})

	fit, err := FitTeamTrends(recs, "ATL")
	require.NoError(t, err)
	assert.InDelta(t, 0.010, fit.BaseSlope, 1e-9)
}

func TestFitTeamTrendsReferenceTeamAbsent(t *testing.T) {
	recs := lines(map[string][2]float64{"BOS": {0.5, 0.01}}, 2000, 5)

	_, err := FitTeamTrends(recs, "ATL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ATL")
}

func TestFitTeamTrendsEmptySample(t *testing.T) {
	recs := []dataset.TeamSeasonRecord{
		{Year: 2000, Team: "ATL"}, // missing ratio only
	}

	_, err := FitTeamTrends(recs, "ATL")
	assert.Error(t, err)
}

func TestFitTeamTrendsUnderdetermined(t *testing.T) {
	recs := lines(map[string][2]float64{
		"ATL": {0.5, 0.01},
		"BOS": {0.4, 0.02},
	}, 2000, 1) // one season: 2 rows for 4 coefficients

	_, err := FitTeamTrends(recs, "ATL")
	assert.Error(t, err)
}
