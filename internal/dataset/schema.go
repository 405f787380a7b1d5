// Package dataset assembles the per-season tables into the two master
// datasets and cleans them into uniformly typed records.
package dataset

import "database/sql"

// Kind declares how a column's cells are typed during cleaning.
type Kind int

const (
	Text Kind = iota
	Int
	Float
)

// Column is one declared column of a dataset schema.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the ordered, typed column layout of a dataset. Cells that
// fail coercion under their declared kind become missing values; a
// coercion failure never aborts the run.
type Schema []Column

// PlayerIdentity are the leading non-stat columns of the player dataset.
var PlayerIdentity = Schema{
	{"Year", Int},
	{"Player", Text},
	{"Pos", Text},
	{"Age", Int},
	{"Tm", Text},
}

// PlayerStats declares the numeric statistic columns: the totals block
// followed by the advanced block. Counting stats are whole numbers,
// rates and percentages decimals.
var PlayerStats = Schema{
	// Totals.
	{"G", Int}, {"GS", Int}, {"MP", Int},
	{"FG", Int}, {"FGA", Int}, {"FG%", Float},
	{"3P", Int}, {"3PA", Int}, {"3P%", Float},
	{"2P", Int}, {"2PA", Int}, {"2P%", Float},
	{"eFG%", Float},
	{"FT", Int}, {"FTA", Int}, {"FT%", Float},
	{"ORB", Int}, {"DRB", Int}, {"TRB", Int},
	{"AST", Int}, {"STL", Int}, {"BLK", Int},
	{"TOV", Int}, {"PF", Int}, {"PTS", Int},
	// Advanced.
	{"PER", Float}, {"TS%", Float}, {"3PAr", Float}, {"FTr", Float},
	{"ORB%", Float}, {"DRB%", Float}, {"TRB%", Float},
	{"AST%", Float}, {"STL%", Float}, {"BLK%", Float},
	{"TOV%", Float}, {"USG%", Float},
	{"OWS", Float}, {"DWS", Float}, {"WS", Float}, {"WS/48", Float},
	{"OBPM", Float}, {"DBPM", Float}, {"BPM", Float}, {"VORP", Float},
}

// TeamSchema is the typed layout of the team dataset.
var TeamSchema = Schema{
	{"Year", Int},
	{"Team", Text},
	{"eFG%", Float},
	{"FT%", Float},
	{"TOV%", Float},
	{"ORB%", Float},
	{"W", Int},
	{"L", Int},
	{"W/L%", Float},
	{"Rk", Int},
}

// PlayerStatColumns returns the stat column names in schema order.
func PlayerStatColumns() []string {
	names := make([]string, len(PlayerStats))
	for i, col := range PlayerStats {
		names[i] = col.Name
	}
	return names
}

// PlayerRecord is one player's statistics for one season on one team.
// Identity is not unique by name alone: a traded player keeps one row per
// team plus an aggregate row. Stats are keyed by canonical column name;
// declared-integer stats are parsed as whole numbers before being stored,
// so a fractional cell in an integer column becomes missing.
type PlayerRecord struct {
	Year   int                        `json:"year"`
	Player string                     `json:"player"`
	Pos    string                     `json:"pos"`
	Age    sql.NullInt64              `json:"age"`
	Team   string                     `json:"team"`
	Stats  map[string]sql.NullFloat64 `json:"stats"`
}

// TeamSeasonRecord is one team's aggregate statistics for one season.
type TeamSeasonRecord struct {
	Year       int             `json:"year"`
	Team       string          `json:"team"`
	EFGPct     sql.NullFloat64 `json:"efg_pct"`
	FTRate     sql.NullFloat64 `json:"ft_rate"`
	TOVPct     sql.NullFloat64 `json:"tov_pct"`
	ORBPct     sql.NullFloat64 `json:"orb_pct"`
	Wins       sql.NullInt64   `json:"wins"`
	Losses     sql.NullInt64   `json:"losses"`
	WinLossPct sql.NullFloat64 `json:"win_loss_pct"`
	Rank       int             `json:"rank"`
}
