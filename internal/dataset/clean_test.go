package dataset

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/fastbreak/internal/table"
)

func playerStatRow(base table.Row) table.Row {
	row := table.Row{}
	for _, col := range PlayerStats {
		row[col.Name] = "0"
	}
	for k, v := range base {
		row[k] = v
	}
	return row
}

func rawPlayers(rows ...table.Row) *table.Table {
	cols := append([]string{"Year", "Player", "Pos", "Age", "Tm"}, PlayerStatColumns()...)
	t := table.New(cols...)
	for _, row := range rows {
		t.Append(playerStatRow(row))
	}
	return t
}

func rawTeams(rows ...table.Row) *table.Table {
	t := table.New("Year", "Team", "eFG%", "FT%", "TOV%", "ORB%", "W", "L", "W/L%", "Rk")
	for _, row := range rows {
		t.Append(row)
	}
	return t
}

func TestCleanStripsNameDecoration(t *testing.T) {
	c := NewCleaner(nil, zerolog.Nop())
	players := rawPlayers(
		table.Row{"Year": "2016", "Player": "Stephen Curry*", "Pos": "PG", "Age": "27", "Tm": "GSW", "PTS": "2375"},
		table.Row{"Year": "2016", "Player": "Kevin Durant", "Pos": "SF", "Age": "27", "Tm": "OKC", "PTS": "2029"},
	)

	recs, _ := c.Clean(players, rawTeams())
	require.Len(t, recs, 2)
	assert.Equal(t, "Stephen Curry", recs[0].Player)
	assert.Equal(t, "Kevin Durant", recs[1].Player)
}

func TestCleanRemovesSentinelHeaderRows(t *testing.T) {
	c := NewCleaner(nil, zerolog.Nop())
	sentinel := playerStatRow(table.Row{"Year": "2016", "Player": "Player", "Pos": "Pos", "Age": "Age", "Tm": "Tm"})
	for _, col := range PlayerStats {
		sentinel[col.Name] = col.Name
	}
	players := rawPlayers()
	players.Append(sentinel)
	players.Append(playerStatRow(table.Row{"Year": "2016", "Player": "Kevin Durant", "Pos": "SF", "Age": "27", "Tm": "OKC"}))

	recs, _ := c.Clean(players, rawTeams())
	require.Len(t, recs, 1)
	assert.Equal(t, "Kevin Durant", recs[0].Player)
}

func TestCleanAppliesTeamAliases(t *testing.T) {
	c := NewCleaner(map[string]string{"TOT": "TOR", "CHO": "CHA"}, zerolog.Nop())
	players := rawPlayers(
		table.Row{"Year": "2016", "Player": "Traded Player", "Pos": "C", "Age": "30", "Tm": "TOT"},
	)
	teams := rawTeams(
		table.Row{"Year": "2016", "Team": "CHO", "W": "48", "L": "34", "W/L%": "0.585", "Rk": "5",
			"eFG%": "0.51", "FT%": "0.26", "TOV%": "13.1", "ORB%": "22.6"},
	)

	playerRecs, teamRecs := c.Clean(players, teams)
	require.Len(t, playerRecs, 1)
	require.Len(t, teamRecs, 1)
	assert.Equal(t, "TOR", playerRecs[0].Team)
	assert.Equal(t, "CHA", teamRecs[0].Team)
}

func TestCleanDefaultAliasTable(t *testing.T) {
	c := NewCleaner(nil, zerolog.Nop())
	players := rawPlayers(
		table.Row{"Year": "2016", "Player": "Traded Player", "Pos": "C", "Age": "30", "Tm": "TOT"},
	)

	recs, _ := c.Clean(players, rawTeams())
	require.Len(t, recs, 1)
	assert.Equal(t, "TOR", recs[0].Team)
}

func TestCleanCoercesByDeclaredKind(t *testing.T) {
	c := NewCleaner(nil, zerolog.Nop())
	players := rawPlayers(
		table.Row{
			"Year": "2016", "Player": "Edge Case", "Pos": "PG", "Age": " 27 ", "Tm": "GSW",
			"PTS": "123.5", // fractional cell in an integer column
			"G":   "abc",   // unparseable
			"PER": "31.5",
			"FG%": "", // blank
		},
	)

	recs, _ := c.Clean(players, rawTeams())
	require.Len(t, recs, 1)
	rec := recs[0]

	require.True(t, rec.Age.Valid, "whitespace is trimmed before coercion")
	assert.EqualValues(t, 27, rec.Age.Int64)

	assert.False(t, rec.Stats["PTS"].Valid, "fractional value in a whole-number column is missing")
	assert.False(t, rec.Stats["G"].Valid)
	assert.False(t, rec.Stats["FG%"].Valid)

	require.True(t, rec.Stats["PER"].Valid)
	assert.Equal(t, 31.5, rec.Stats["PER"].Float64)
}

func TestCleanTeamsTyped(t *testing.T) {
	c := NewCleaner(nil, zerolog.Nop())
	teams := rawTeams(
		table.Row{"Year": "2016", "Team": "GSW", "W": "73", "L": "9", "W/L%": "0.8902439024390244",
			"Rk": "1", "eFG%": "0.550", "FT%": "0.250", "TOV%": "13.0", "ORB%": "24.1"},
		table.Row{"Year": "2016", "Team": "ZRO", "W": "0", "L": "0", "W/L%": "",
			"Rk": "30", "eFG%": "0.500", "FT%": "0.250", "TOV%": "14.0", "ORB%": "24.0"},
	)

	_, recs := c.Clean(rawPlayers(), teams)
	require.Len(t, recs, 2)

	gsw := recs[0]
	assert.Equal(t, 2016, gsw.Year)
	assert.EqualValues(t, 73, gsw.Wins.Int64)
	assert.Equal(t, 1, gsw.Rank)
	require.True(t, gsw.WinLossPct.Valid)
	assert.InDelta(t, 73.0/82.0, gsw.WinLossPct.Float64, 1e-12)

	assert.False(t, recs[1].WinLossPct.Valid, "a 0-0 record carries a missing ratio")
}

func TestNormalizePlayersIsIdempotent(t *testing.T) {
	c := NewCleaner(nil, zerolog.Nop())
	players := rawPlayers(
		table.Row{"Year": "2016", "Player": " Stephen Curry* ", "Pos": "PG", "Age": "27", "Tm": "TOT"},
	)

	c.NormalizePlayers(players)
	first := players.Rows[0]["Player"]
	firstTeam := players.Rows[0]["Tm"]

	c.NormalizePlayers(players)
	assert.Equal(t, first, players.Rows[0]["Player"])
	assert.Equal(t, firstTeam, players.Rows[0]["Tm"])
	assert.Equal(t, "Stephen Curry", first)
	assert.Equal(t, "TOR", firstTeam)
}
