package app

import (
	"context"
	"log"
	"sync"
	"time"

	"tesnim/internal/credentials"
	"tesnim/internal/domain"
)

// TimerAPI is the backend surface the timer store calls.
type TimerAPI interface {
	TimerSettings(ctx context.Context) (*domain.TimerSettings, error)
	SaveTimerSettings(ctx context.Context, s domain.TimerSettings) error
	SaveTimerSession(ctx context.Context, s domain.FocusSession) error
	TimerStats(ctx context.Context) (*domain.TimerStats, error)
}

// TimerSession is the running period.
type TimerSession struct {
	Cycle
	Phase         Phase
	Active        bool
	StartTime     time.Time
	TimeRemaining int
}

type timerSlice struct {
	Settings domain.TimerSettings `json:"timerSettings"`
	Cycle    Cycle                `json:"currentSession"`
}

// TimerStore runs the pomodoro timer. The countdown is a goroutine owned by
// the store; at most one is effective at a time.
type TimerStore struct {
	api      TimerAPI
	creds    *credentials.Store
	now      func() time.Time
	interval time.Duration

	mu       sync.Mutex
	settings domain.TimerSettings
	stats    domain.TimerStats
	cycle    Cycle
	active   bool
	started  time.Time
	left     int
	err      string
	closed   bool

	tickerID uint64
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewTimerStore creates a stopped timer with default settings.
func NewTimerStore(api TimerAPI, creds *credentials.Store) *TimerStore {
	s := domain.DefaultTimerSettings()
	return &TimerStore{
		api:      api,
		creds:    creds,
		now:      time.Now,
		interval: time.Second,
		settings: s,
		left:     s.FocusTime,
	}
}

// SetClock replaces the time source.
func (s *TimerStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetTickInterval replaces the one-second countdown step.
func (s *TimerStore) SetTickInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.interval = d
	}
}

// Restore loads the persisted settings and cycle position.
func (s *TimerStore) Restore(ctx context.Context) error {
	var slice timerSlice
	ok, err := s.creds.LoadSlice(ctx, domain.KeyTimerSlice, &slice)
	if err != nil || !ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slice.Settings.FocusTime > 0 {
		s.settings = slice.Settings.Normalized()
	}
	s.cycle = slice.Cycle
	s.left = s.cycle.Duration(s.settings)
	return nil
}

func (s *TimerStore) persist(ctx context.Context) {
	s.mu.Lock()
	slice := timerSlice{Settings: s.settings, Cycle: s.cycle}
	s.mu.Unlock()
	if err := s.creds.SaveSlice(ctx, domain.KeyTimerSlice, slice); err != nil {
		log.Printf("[timer] persist: %v", err)
	}
}

// Session returns the running period.
func (s *TimerStore) Session() TimerSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TimerSession{
		Cycle:         s.cycle,
		Phase:         s.cycle.Phase(s.settings.LongBreakInterval),
		Active:        s.active,
		StartTime:     s.started,
		TimeRemaining: s.left,
	}
}

// Settings returns the current settings.
func (s *TimerStore) Settings() domain.TimerSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Stats returns the last known stats.
func (s *TimerStore) Stats() domain.TimerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Error returns the last error message.
func (s *TimerStore) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Start runs the countdown. Ticks stop when ctx is cancelled.
func (s *TimerStore) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.left <= 0 {
		s.left = s.cycle.Duration(s.settings)
	}
	if s.started.IsZero() {
		s.started = s.now()
	}
	s.active = true
	s.startTickerLocked(ctx)
}

// Pause stops the countdown and keeps the remaining time.
func (s *TimerStore) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTickerLocked()
	s.active = false
}

// Reset stops the countdown and restores the full phase length.
func (s *TimerStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTickerLocked()
	s.active = false
	s.started = time.Time{}
	s.left = s.cycle.Duration(s.settings)
}

// Tick advances an active timer by one second and completes the period
// when it reaches zero. It reports whether a period completed.
func (s *TimerStore) Tick(ctx context.Context) bool {
	s.mu.Lock()
	id := s.tickerID
	s.mu.Unlock()
	return s.tick(ctx, id)
}

func (s *TimerStore) tick(ctx context.Context, id uint64) bool {
	s.mu.Lock()
	if id != s.tickerID || !s.active || s.closed {
		s.mu.Unlock()
		return false
	}
	if s.left > 0 {
		s.left--
	}
	finished := s.left == 0
	s.mu.Unlock()

	if finished {
		s.CompleteSession(ctx)
	}
	return finished
}

// CompleteSession ends the running period and moves to the next phase. A
// finished focus period is saved to the backend.
func (s *TimerStore) CompleteSession(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTickerLocked()
	wasBreak := s.cycle.IsBreak
	focus := s.settings.FocusTime
	s.cycle = s.cycle.Complete()
	s.left = s.cycle.Duration(s.settings)
	s.started = time.Time{}
	if wasBreak {
		s.active = s.settings.AutoStartPomodoros
	} else {
		s.active = s.settings.AutoStartBreaks
	}
	if s.active {
		s.started = s.now()
		s.startTickerLocked(ctx)
	}
	at := s.now()
	s.mu.Unlock()

	s.persist(ctx)
	if !wasBreak {
		s.SaveSession(ctx, domain.FocusSession{Duration: focus, Timestamp: at.UTC(), Completed: true})
	}
}

// startTickerLocked launches the countdown goroutine for ctx. The caller
// holds s.mu.
func (s *TimerStore) startTickerLocked(ctx context.Context) {
	if s.cancel != nil || s.closed {
		return
	}
	s.tickerID++
	id := s.tickerID
	tctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	interval := s.interval

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-tctx.Done():
				return
			case <-t.C:
				// Completion runs on the parent context: stopping this
				// ticker cancels tctx.
				if s.tick(ctx, id) {
					return
				}
			}
		}
	}()
}

func (s *TimerStore) stopTickerLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.tickerID++
}

// Close stops the countdown and waits for it to exit.
func (s *TimerStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopTickerLocked()
	s.active = false
	s.mu.Unlock()
	s.wg.Wait()
}

// UpdateSettings merges patch locally first, then saves the result. A
// failed save is logged and the local change kept.
func (s *TimerStore) UpdateSettings(ctx context.Context, patch domain.TimerSettingsPatch) domain.TimerSettings {
	s.mu.Lock()
	s.settings = patch.Apply(s.settings).Normalized()
	if !s.active && s.started.IsZero() {
		s.left = s.cycle.Duration(s.settings)
	}
	settings := s.settings
	s.mu.Unlock()

	s.persist(ctx)
	if err := s.api.SaveTimerSettings(ctx, settings); err != nil {
		log.Printf("[timer] save settings: %v", err)
	}
	return settings
}

// FetchSettings loads the settings stored on the backend.
func (s *TimerStore) FetchSettings(ctx context.Context) error {
	settings, err := s.api.TimerSettings(ctx)
	if err != nil {
		log.Printf("[timer] fetch settings: %v", err)
		s.mu.Lock()
		s.err = message(err, "Failed to fetch timer settings")
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.err = ""
	if settings != nil && settings.FocusTime > 0 {
		s.settings = settings.Normalized()
		if !s.active && s.started.IsZero() {
			s.left = s.cycle.Duration(s.settings)
		}
	}
	s.mu.Unlock()
	s.persist(ctx)
	return nil
}

// SaveSession records a focus period and refreshes the stats. Failures are
// logged and do not disturb the timer.
func (s *TimerStore) SaveSession(ctx context.Context, fs domain.FocusSession) {
	if err := s.api.SaveTimerSession(ctx, fs); err != nil {
		log.Printf("[timer] save session: %v", err)
		s.mu.Lock()
		s.err = message(err, "Failed to save session")
		s.mu.Unlock()
		return
	}
	s.FetchStats(ctx)
}

// FetchStats refreshes the stats, keeping the cached ones on failure.
func (s *TimerStore) FetchStats(ctx context.Context) domain.TimerStats {
	stats, err := s.api.TimerStats(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("[timer] fetch stats: %v", err)
		return s.stats
	}
	s.stats = *stats
	return s.stats
}
