package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.StartYear)
	assert.Equal(t, 2019, cfg.EndYear)
	assert.Equal(t, 2*time.Second, cfg.FetchInterval)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.False(t, cfg.RenderedFetch)
	assert.Equal(t, "ATL", cfg.ReferenceTeam)
	assert.Equal(t, map[string]string{"TOT": "TOR"}, cfg.TeamAliases)
	assert.Contains(t, cfg.PlayerTotalsURL, "%d")
	assert.Contains(t, cfg.TeamPageURL, "%d")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("START_YEAR", "2010")
	t.Setenv("END_YEAR", "2012")
	t.Setenv("FETCH_INTERVAL", "500ms")
	t.Setenv("REFERENCE_TEAM", "BOS")
	t.Setenv("TEAM_ALIASES", "TOT=TOR, CHO=CHA")

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 2010, cfg.StartYear)
	assert.Equal(t, 2012, cfg.EndYear)
	assert.Equal(t, 500*time.Millisecond, cfg.FetchInterval)
	assert.Equal(t, "BOS", cfg.ReferenceTeam)
	assert.Equal(t, map[string]string{"TOT": "TOR", "CHO": "CHA"}, cfg.TeamAliases)
}

func TestLoadRejectsInvertedYearRange(t *testing.T) {
	t.Setenv("START_YEAR", "2015")
	t.Setenv("END_YEAR", "2010")

	_, err := Load(zerolog.Nop())
	assert.Error(t, err)
}

func TestParseAliases(t *testing.T) {
	assert.Equal(t, map[string]string{"TOT": "TOR"}, parseAliases("TOT=TOR"))
	assert.Equal(t, map[string]string{"A": "B", "C": "D"}, parseAliases("A=B,C=D"))
	assert.Empty(t, parseAliases(""))
	assert.Empty(t, parseAliases("garbage"))
	assert.Equal(t, map[string]string{"A": "B"}, parseAliases(" A = B , =X, Y= "))
}
