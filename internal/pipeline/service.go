package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Service coordinates run execution and status reporting for the API
// layer. One run may be active at a time; completed runs are kept in a
// bounded in-memory history, and the latest successful result is held for
// the dataset endpoints.
type Service struct {
	runner       *Runner
	broadcast    Reporter // optional fan-out, e.g. the websocket hub
	historyLimit int
	log          zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	active  *Run
	history []*Run
	result  *Result

	wg sync.WaitGroup
}

// NewService constructs a Service. broadcast may be nil.
func NewService(runner *Runner, broadcast Reporter, log zerolog.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		runner:       runner,
		broadcast:    broadcast,
		historyLimit: 10,
		ctx:          ctx,
		cancel:       cancel,
		log:          log,
	}
}

// Start launches a run in the background. It fails if a run is active.
// The run is detached from the caller's context; it survives the HTTP
// request that triggered it and stops only on service shutdown.
func (s *Service) Start(startYear, endYear int) (*Run, error) {
	if startYear > endYear {
		return nil, fmt.Errorf("invalid year range %d-%d", startYear, endYear)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return nil, fmt.Errorf("run %s is already active", s.active.ID)
	}

	run := &Run{
		ID:        fmt.Sprintf("run-%s", time.Now().UTC().Format("20060102-150405")),
		StartYear: startYear,
		EndYear:   endYear,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.active = run

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.runner.Run(s.ctx, startYear, endYear, s); err != nil {
			s.log.Error().Err(err).Str("run_id", run.ID).Msg("run failed")
		}
	}()

	return run.Copy(), nil
}

// Shutdown cancels any active run and waits for it to wind down.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Status returns the active run and recent history.
func (s *Service) Status() *StatusSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &StatusSummary{ActiveRun: s.active.Copy()}
	for _, run := range s.history {
		summary.History = append(summary.History, run.Copy())
	}
	return summary
}

// Result returns the latest completed result, or nil before the first
// successful run.
func (s *Service) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Reporter implementation: the service tracks run state and forwards each
// event to the broadcast reporter.

func (s *Service) OnRunStart(startYear, endYear int) {
	s.mu.Lock()
	if s.active != nil {
		s.active.ProgressTotal = 2 * (endYear - startYear + 1)
	}
	s.mu.Unlock()

	if s.broadcast != nil {
		s.broadcast.OnRunStart(startYear, endYear)
	}
}

func (s *Service) OnSeasonDone(year int, dataset string, rows int, err error) {
	s.mu.Lock()
	if s.active != nil && err != nil {
		s.active.SeasonFailures++
		s.active.LastError = err.Error()
	}
	s.mu.Unlock()

	if s.broadcast != nil {
		s.broadcast.OnSeasonDone(year, dataset, rows, err)
	}
}

func (s *Service) OnProgress(message string, current, total int) {
	s.mu.Lock()
	if s.active != nil {
		s.active.Message = message
		s.active.ProgressCurrent = current
		s.active.ProgressTotal = total
	}
	s.mu.Unlock()

	if s.broadcast != nil {
		s.broadcast.OnProgress(message, current, total)
	}
}

func (s *Service) OnRunComplete(result *Result) {
	s.mu.Lock()
	if s.active != nil {
		now := time.Now().UTC()
		s.active.Status = RunStatusCompleted
		s.active.Message = fmt.Sprintf("%d player rows, %d team rows", len(result.Players), len(result.Teams))
		s.active.CompletedAt = &now
		s.pushHistory(s.active)
		s.active = nil
	}
	s.result = result
	s.mu.Unlock()

	if s.broadcast != nil {
		s.broadcast.OnRunComplete(result)
	}
}

func (s *Service) OnRunError(err error) {
	s.mu.Lock()
	if s.active != nil {
		now := time.Now().UTC()
		s.active.Status = RunStatusFailed
		s.active.LastError = err.Error()
		s.active.CompletedAt = &now
		s.pushHistory(s.active)
		s.active = nil
	}
	s.mu.Unlock()

	if s.broadcast != nil {
		s.broadcast.OnRunError(err)
	}
}

// pushHistory prepends a finished run, trimming to the limit. Callers
// hold s.mu.
func (s *Service) pushHistory(run *Run) {
	s.history = append([]*Run{run}, s.history...)
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}
}
