package pipeline

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/fastbreak/internal/dataset"
	"github.com/fortuna/fastbreak/internal/table"
)

// fakePlayerSource returns a minimal player season table.
type fakePlayerSource struct{}

func (fakePlayerSource) BuildYear(ctx context.Context, year int) (*table.Table, error) {
	t := table.New("Year", "Player", "Pos", "Age", "Tm", "PTS")
	t.Append(table.Row{
		"Year": strconv.Itoa(year), "Player": "Player One", "Pos": "PG",
		"Age": "27", "Tm": "ATL", "PTS": "1500",
	})
	return t, nil
}

// fakeTeamSource returns two teams per season with exactly linear W/L%.
type fakeTeamSource struct {
	// block, when non-nil, delays every build until the channel closes.
	block chan struct{}
}

func (f *fakeTeamSource) BuildYear(ctx context.Context, year int) (*table.Table, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	t := table.New("Year", "Team", "eFG%", "FT%", "TOV%", "ORB%", "W", "L", "W/L%", "Rk")
	base := float64(year - 2000)
	t.Append(table.Row{
		"Year": strconv.Itoa(year), "Team": "ATL", "W": "41", "L": "41",
		"W/L%": strconv.FormatFloat(0.40+0.01*base, 'f', -1, 64), "Rk": "2",
	})
	t.Append(table.Row{
		"Year": strconv.Itoa(year), "Team": "GSW", "W": "50", "L": "32",
		"W/L%": strconv.FormatFloat(0.50+0.02*base, 'f', -1, 64), "Rk": "1",
	})
	return t, nil
}

// recordingReporter captures every callback for assertion.
type recordingReporter struct {
	mu        sync.Mutex
	started   bool
	seasons   int
	progress  int
	completed *Result
	runErr    error
}

func (r *recordingReporter) OnRunStart(startYear, endYear int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
}

func (r *recordingReporter) OnSeasonDone(year int, dataset string, rows int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seasons++
}

func (r *recordingReporter) OnProgress(message string, current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress++
}

func (r *recordingReporter) OnRunComplete(result *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = result
}

func (r *recordingReporter) OnRunError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runErr = err
}

func newTestRunner(teams dataset.SeasonSource, refTeam string) *Runner {
	log := zerolog.Nop()
	assembler := dataset.NewAssembler(fakePlayerSource{}, teams, 2, log)
	cleaner := dataset.NewCleaner(nil, log)
	return NewRunner(assembler, cleaner, refTeam, log)
}

func TestRunnerRun(t *testing.T) {
	r := newTestRunner(&fakeTeamSource{}, "ATL")
	rep := &recordingReporter{}

	result, err := r.Run(context.Background(), 2000, 2005, rep)
	require.NoError(t, err)

	assert.Equal(t, 2000, result.StartYear)
	assert.Equal(t, 2005, result.EndYear)
	assert.Len(t, result.Players, 6)
	assert.Len(t, result.Teams, 12)
	assert.Empty(t, result.Failures)

	require.NotNil(t, result.Trends)
	assert.Equal(t, "ATL", result.Trends.ReferenceTeam)
	assert.InDelta(t, 0.01, result.Trends.BaseSlope, 1e-9)
	assert.Equal(t, "GSW", result.Trends.Trends[0].Team)

	assert.True(t, rep.started)
	assert.Equal(t, 12, rep.seasons, "one season event per year per dataset")
	assert.Equal(t, 12, rep.progress)
	assert.NotNil(t, rep.completed)
	assert.Nil(t, rep.runErr)
}

func TestRunnerFailedTrendFitIsNotFatal(t *testing.T) {
	// The reference team never occurs in the data, so the fit is skipped.
	r := newTestRunner(&fakeTeamSource{}, "ZZZ")

	result, err := r.Run(context.Background(), 2000, 2005, nil)
	require.NoError(t, err)
	assert.Nil(t, result.Trends)
	assert.NotEmpty(t, result.Teams, "cleaned datasets survive a skipped fit")
}

func TestRunnerCancelReportsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(&fakeTeamSource{}, "ATL")
	rep := &recordingReporter{}

	_, err := r.Run(ctx, 2000, 2005, rep)
	require.Error(t, err)
	assert.ErrorIs(t, rep.runErr, context.Canceled)
	assert.Nil(t, rep.completed)
}
