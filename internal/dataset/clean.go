package dataset

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fortuna/fastbreak/internal/table"
)

// nameDecoration is the marker character the player source appends to
// some names. It was applied inconsistently across seasons, so it carries
// no signal and is stripped, not interpreted.
const nameDecoration = "*"

// Cleaner applies the ordered cleaning rules to the raw master tables and
// produces typed records. The alias table rewrites non-standard team
// codes to canonical abbreviations and is supplied by configuration; the
// known default maps TOT to TOR.
type Cleaner struct {
	aliases map[string]string
	log     zerolog.Logger
}

// NewCleaner builds a cleaner with the given team-code alias table.
func NewCleaner(aliases map[string]string, log zerolog.Logger) *Cleaner {
	if aliases == nil {
		aliases = map[string]string{"TOT": "TOR"}
	}
	return &Cleaner{aliases: aliases, log: log}
}

// Clean normalizes both raw tables in place and converts them to typed
// records. The rules run in a fixed order: sentinel header rows out,
// blanks to missing, team aliases corrected, name decorations stripped,
// then the declared schema applied with coerce-to-missing.
func (c *Cleaner) Clean(playersRaw, teamsRaw *table.Table) ([]PlayerRecord, []TeamSeasonRecord) {
	c.NormalizePlayers(playersRaw)
	c.NormalizeTeams(teamsRaw)

	players := c.typedPlayers(playersRaw)
	teams := c.typedTeams(teamsRaw)

	c.log.Info().
		Int("players", len(players)).
		Int("teams", len(teams)).
		Msg("datasets cleaned")
	return players, teams
}

// NormalizePlayers applies the table-level player rules in place. Running
// it on already-clean data is a no-op.
func (c *Cleaner) NormalizePlayers(t *table.Table) {
	// The year column is pipeline-added and holds real values even in a
	// leaked header row.
	t.RemoveSentinelRows("Year")
	normalizeBlanks(t)
	c.applyAliases(t, "Tm")
	if t.HasColumn("Player") {
		for _, row := range t.Rows {
			row["Player"] = strings.TrimSuffix(row["Player"], nameDecoration)
		}
	}
}

// NormalizeTeams applies the table-level team rules in place.
func (c *Cleaner) NormalizeTeams(t *table.Table) {
	t.RemoveSentinelRows("Year")
	normalizeBlanks(t)
	c.applyAliases(t, "Team")
}

// normalizeBlanks trims cell whitespace so every blank value becomes the
// explicit missing marker. Later rules rely on blanks being normalized.
func normalizeBlanks(t *table.Table) {
	for _, row := range t.Rows {
		for _, col := range t.Columns {
			row[col] = strings.TrimSpace(row[col])
		}
	}
}

func (c *Cleaner) applyAliases(t *table.Table, column string) {
	if !t.HasColumn(column) {
		return
	}
	for _, row := range t.Rows {
		if canonical, ok := c.aliases[row[column]]; ok {
			row[column] = canonical
		}
	}
}

func (c *Cleaner) typedPlayers(t *table.Table) []PlayerRecord {
	records := make([]PlayerRecord, 0, t.Len())
	for _, row := range t.Rows {
		rec := PlayerRecord{
			Player: row["Player"],
			Pos:    row["Pos"],
			Team:   row["Tm"],
			Age:    coerceInt(row["Age"]),
			Stats:  make(map[string]sql.NullFloat64, len(PlayerStats)),
		}
		if year, err := strconv.Atoi(row["Year"]); err == nil {
			rec.Year = year
		}
		for _, col := range PlayerStats {
			rec.Stats[col.Name] = coerceStat(row[col.Name], col.Kind)
		}
		records = append(records, rec)
	}
	return records
}

func (c *Cleaner) typedTeams(t *table.Table) []TeamSeasonRecord {
	records := make([]TeamSeasonRecord, 0, t.Len())
	for _, row := range t.Rows {
		rec := TeamSeasonRecord{
			Team:       row["Team"],
			EFGPct:     coerceFloat(row["eFG%"]),
			FTRate:     coerceFloat(row["FT%"]),
			TOVPct:     coerceFloat(row["TOV%"]),
			ORBPct:     coerceFloat(row["ORB%"]),
			Wins:       coerceInt(row["W"]),
			Losses:     coerceInt(row["L"]),
			WinLossPct: coerceFloat(row["W/L%"]),
		}
		if year, err := strconv.Atoi(row["Year"]); err == nil {
			rec.Year = year
		}
		if rank, err := strconv.Atoi(row["Rk"]); err == nil {
			rec.Rank = rank
		}
		records = append(records, rec)
	}
	return records
}

// coerceStat applies the declared kind: integer columns must parse as
// whole numbers, decimal columns as floats. Failures become missing.
func coerceStat(cell string, kind Kind) sql.NullFloat64 {
	if kind == Int {
		n := coerceInt(cell)
		if !n.Valid {
			return sql.NullFloat64{}
		}
		return sql.NullFloat64{Float64: float64(n.Int64), Valid: true}
	}
	return coerceFloat(cell)
}

func coerceInt(cell string) sql.NullInt64 {
	if cell == "" {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func coerceFloat(cell string) sql.NullFloat64 {
	if cell == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
