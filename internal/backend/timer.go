package backend

import (
	"context"
	"errors"
	"time"

	"tesnim/internal/domain"
)

const dayLayout = "2006-01-02"

// TimerService stores timer settings and finished focus sessions.
type TimerService struct {
	repo domain.TimerRepository
	now  func() time.Time
}

// NewTimerService creates a new timer service.
func NewTimerService(repo domain.TimerRepository) *TimerService {
	return &TimerService{repo: repo, now: time.Now}
}

// SetClock replaces the time source.
func (s *TimerService) SetClock(now func() time.Time) { s.now = now }

// Settings returns the owner's settings, or the defaults if none were saved.
func (s *TimerService) Settings(ctx context.Context, owner string) (*domain.TimerSettings, error) {
	st, err := s.repo.GetSettings(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		def := domain.DefaultTimerSettings()
		return &def, nil
	}
	return st, err
}

// SaveSettings validates and replaces the owner's settings.
func (s *TimerService) SaveSettings(ctx context.Context, owner string, st domain.TimerSettings) (*domain.TimerSettings, error) {
	switch {
	case st.FocusTime <= 0:
		return nil, errValidation("focusTime", "Focus time must be positive")
	case st.ShortBreakTime <= 0:
		return nil, errValidation("shortBreakTime", "Short break time must be positive")
	case st.LongBreakTime <= 0:
		return nil, errValidation("longBreakTime", "Long break time must be positive")
	case st.LongBreakInterval <= 0:
		return nil, errValidation("longBreakInterval", "Long break interval must be positive")
	case st.SoundVolume < 0 || st.SoundVolume > 1:
		return nil, errValidation("soundVolume", "Sound volume must be between 0 and 1")
	}
	if err := s.repo.SaveSettings(ctx, owner, st); err != nil {
		return nil, err
	}
	return &st, nil
}

// AddSession records a focus session. A missing timestamp means now.
func (s *TimerService) AddSession(ctx context.Context, owner string, fs domain.FocusSession) error {
	if fs.Duration <= 0 {
		return errValidation("duration", "Duration must be positive")
	}
	if fs.Timestamp.IsZero() {
		fs.Timestamp = s.now().UTC()
	}
	return s.repo.AddSession(ctx, owner, fs)
}

// Stats aggregates the owner's completed sessions.
func (s *TimerService) Stats(ctx context.Context, owner string) (*domain.TimerStats, error) {
	sessions, err := s.repo.ListSessions(ctx, owner)
	if err != nil {
		return nil, err
	}
	stats := timerStats(sessions, s.now())
	return &stats, nil
}

func timerStats(sessions []domain.FocusSession, now time.Time) domain.TimerStats {
	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)
	week := startOfWeek(now)

	var st domain.TimerStats
	days := make(map[string]bool)
	for _, fs := range sessions {
		if !fs.Completed {
			continue
		}
		day := startOfDay(fs.Timestamp.In(now.Location()))
		days[day.Format(dayLayout)] = true
		switch {
		case day.Equal(today):
			st.FocusTimeToday += fs.Duration
			st.CompletedSessionsToday++
		case day.Equal(yesterday):
			st.FocusTimeYesterday += fs.Duration
		}
		if !day.Before(week) && !day.After(today) {
			st.FocusTimeThisWeek += fs.Duration
			st.CompletedSessionsThisWeek++
		}
	}

	// The streak may end yesterday when nothing was finished yet today.
	day := today
	if !days[day.Format(dayLayout)] {
		day = yesterday
	}
	for days[day.Format(dayLayout)] {
		st.Streak++
		day = day.AddDate(0, 0, -1)
	}
	return st
}
