// Package export writes the cleaned datasets and the fitted trends to
// plain delimited files, preserving the typed schema: missing values stay
// empty cells, never zero.
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/fortuna/fastbreak/internal/analysis"
	"github.com/fortuna/fastbreak/internal/dataset"
)

// File names written under the output directory.
const (
	PlayersFile = "players.csv"
	TeamsFile   = "teams.csv"
	TrendsFile  = "trends.csv"
)

// WriteAll writes the three CSV files to dir, creating it if needed.
// A nil fit skips the trends file.
func WriteAll(dir string, players []dataset.PlayerRecord, teams []dataset.TeamSeasonRecord, fit *analysis.TrendFit) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeFrame(filepath.Join(dir, PlayersFile), PlayersFrame(players)); err != nil {
		return err
	}
	if err := writeFrame(filepath.Join(dir, TeamsFile), TeamsFrame(teams)); err != nil {
		return err
	}
	if fit != nil {
		if err := writeFrame(filepath.Join(dir, TrendsFile), TrendsFrame(fit)); err != nil {
			return err
		}
	}
	return nil
}

// PlayersFrame renders the player dataset as a DataFrame with identity
// columns followed by the stat columns in schema order.
func PlayersFrame(records []dataset.PlayerRecord) dataframe.DataFrame {
	stats := dataset.PlayerStatColumns()
	header := append([]string{"Year", "Player", "Pos", "Age", "Tm"}, stats...)

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			strconv.Itoa(rec.Year),
			rec.Player,
			rec.Pos,
			formatNullInt(rec.Age),
			rec.Team,
		)
		for _, col := range stats {
			row = append(row, formatNullFloat(rec.Stats[col]))
		}
		rows = append(rows, row)
	}
	return loadStrings(rows)
}

// TeamsFrame renders the team dataset as a DataFrame in schema order.
func TeamsFrame(records []dataset.TeamSeasonRecord) dataframe.DataFrame {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, []string{"Year", "Team", "eFG%", "FT%", "TOV%", "ORB%", "W", "L", "W/L%", "Rk"})
	for _, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(rec.Year),
			rec.Team,
			formatNullFloat(rec.EFGPct),
			formatNullFloat(rec.FTRate),
			formatNullFloat(rec.TOVPct),
			formatNullFloat(rec.ORBPct),
			formatNullInt(rec.Wins),
			formatNullInt(rec.Losses),
			formatNullFloat(rec.WinLossPct),
			strconv.Itoa(rec.Rank),
		})
	}
	return loadStrings(rows)
}

// TrendsFrame renders the fitted per-team trends, reference team first
// column so the baseline convention is visible in the output.
func TrendsFrame(fit *analysis.TrendFit) dataframe.DataFrame {
	rows := make([][]string, 0, len(fit.Trends)+1)
	rows = append(rows, []string{"Team", "Slope", "ReferenceTeam"})
	for _, trend := range fit.Trends {
		rows = append(rows, []string{
			trend.Team,
			strconv.FormatFloat(trend.Slope, 'f', -1, 64),
			fit.ReferenceTeam,
		})
	}
	return loadStrings(rows)
}

// loadStrings builds a string-typed frame; the CSV is the typed boundary,
// so no re-detection of types on the way out.
func loadStrings(rows [][]string) dataframe.DataFrame {
	return dataframe.LoadRecords(rows,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
}

func writeFrame(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("build frame for %s: %w", path, df.Err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatNullInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func formatNullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
