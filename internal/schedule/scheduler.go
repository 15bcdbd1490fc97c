// Package schedule drives periodic collection per collector family. Manual
// triggers and periodic runs share one per-family run lock, so a family never
// collects twice concurrently.
package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/collect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/globaltime"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

var (
	ErrAlreadyRunning = errors.New("scheduler already running for this family")
	ErrNotRunning     = errors.New("scheduler not running for this family")
)

// RunFunc executes one collection sweep for a family. It reports the number
// of newly persisted articles and a preview of them for callers that relay
// the sweep's outcome.
type RunFunc func(ctx context.Context, family collect.Family) (int, []news.Article, error)

// Status is a family's scheduling state snapshot.
type Status struct {
	Family          collect.Family `json:"family"`
	Running         bool           `json:"running"`
	IntervalSeconds int            `json:"interval_seconds,omitempty"`
	LastRunAt       *time.Time     `json:"last_run_at,omitempty"`
	NewCountSession int            `json:"new_count_session"`
	ErrorFlag       bool           `json:"error_flag"`
}

type familyState struct {
	runMu sync.Mutex // serializes manual and periodic runs

	running  bool
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}

	lastRunAt       *time.Time
	newCountSession int
	errorFlag       bool
}

// Manager owns one scheduling loop per family.
type Manager struct {
	mu       sync.Mutex
	families map[collect.Family]*familyState
	run      RunFunc
	logger   zerolog.Logger
}

func NewManager(run RunFunc, logger zerolog.Logger) *Manager {
	return &Manager{
		families: map[collect.Family]*familyState{
			collect.FamilyAPI:  {},
			collect.FamilyFeed: {},
		},
		run:    run,
		logger: logger,
	}
}

func (m *Manager) state(family collect.Family) *familyState {
	state, exists := m.families[family]
	if !exists {
		state = &familyState{}
		m.families[family] = state
	}
	return state
}

// Start launches the periodic loop for the family. The first sweep runs
// immediately; the session counter starts from zero.
func (m *Manager) Start(ctx context.Context, family collect.Family, interval time.Duration) error {
	m.mu.Lock()
	state := m.state(family)
	if state.running {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	state.running = true
	state.interval = interval
	state.newCountSession = 0
	state.errorFlag = false
	state.stop = make(chan struct{})
	state.done = make(chan struct{})
	stop, done := state.stop, state.done
	m.mu.Unlock()

	m.logger.Info().Str("family", string(family)).Dur("interval", interval).Msg("scheduler started")

	go m.loop(ctx, family, state, interval, stop, done)
	return nil
}

func (m *Manager) loop(ctx context.Context, family collect.Family, state *familyState, interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0) // first sweep immediately
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		m.execute(ctx, family, state)

		timer.Reset(interval)
	}
}

// execute runs one sweep under the family run lock and folds the outcome
// into the family state. The error flag clears as the sweep begins, so a
// status query during a long sweep never reports a stale failure.
func (m *Manager) execute(ctx context.Context, family collect.Family, state *familyState) (int, []news.Article, error) {
	state.runMu.Lock()
	defer state.runMu.Unlock()

	m.mu.Lock()
	state.errorFlag = false
	m.mu.Unlock()

	newCount, newArticles, err := m.run(ctx, family)
	ranAt := globaltime.UTC()

	m.mu.Lock()
	state.lastRunAt = &ranAt
	state.newCountSession += newCount
	state.errorFlag = err != nil
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn().Err(err).Str("family", string(family)).Msg("collection sweep finished with errors")
	}
	return newCount, newArticles, err
}

// Stop halts the periodic loop and waits for an in-flight sweep to finish.
func (m *Manager) Stop(family collect.Family) error {
	m.mu.Lock()
	state := m.state(family)
	if !state.running {
		m.mu.Unlock()
		return ErrNotRunning
	}
	stop, done := state.stop, state.done
	state.running = false
	m.mu.Unlock()

	close(stop)
	<-done

	m.logger.Info().Str("family", string(family)).Msg("scheduler stopped")
	return nil
}

// RunOnce triggers a single manual sweep and reports the count and preview
// of newly persisted articles. It shares the run lock with the periodic
// loop, so a manual trigger during a periodic sweep waits its turn.
func (m *Manager) RunOnce(ctx context.Context, family collect.Family) (int, []news.Article, error) {
	m.mu.Lock()
	state := m.state(family)
	m.mu.Unlock()

	return m.execute(ctx, family, state)
}

// StatusOf reports the family's current scheduling state.
func (m *Manager) StatusOf(family collect.Family) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.state(family)
	status := Status{
		Family:          family,
		Running:         state.running,
		LastRunAt:       state.lastRunAt,
		NewCountSession: state.newCountSession,
		ErrorFlag:       state.errorFlag,
	}
	if state.running {
		status.IntervalSeconds = int(state.interval / time.Second)
	}
	return status
}

// StatusAll reports both families, API first.
func (m *Manager) StatusAll() []Status {
	return []Status{
		m.StatusOf(collect.FamilyAPI),
		m.StatusOf(collect.FamilyFeed),
	}
}

// StopAll halts every running loop; used during shutdown.
func (m *Manager) StopAll() {
	for _, family := range []collect.Family{collect.FamilyAPI, collect.FamilyFeed} {
		if err := m.Stop(family); err != nil && !errors.Is(err, ErrNotRunning) {
			m.logger.Warn().Err(err).Str("family", string(family)).Msg("scheduler stop failed")
		}
	}
}
