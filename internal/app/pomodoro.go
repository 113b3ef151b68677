package app

import "tesnim/internal/domain"

// Phase is the part of the pomodoro cycle the timer is in.
type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "shortBreak"
	PhaseLongBreak  Phase = "longBreak"
)

// Cycle is the position in the pomodoro cycle: whether a break is running
// and how many focus periods have been completed.
type Cycle struct {
	IsBreak      bool `json:"isBreak"`
	SessionCount int  `json:"sessionCount"`
}

// Phase derives the running phase. A break after every interval-th focus
// period is long.
func (c Cycle) Phase(interval int) Phase {
	if !c.IsBreak {
		return PhaseFocus
	}
	if interval > 0 && c.SessionCount > 0 && c.SessionCount%interval == 0 {
		return PhaseLongBreak
	}
	return PhaseShortBreak
}

// Complete returns the cycle after the current period ends.
func (c Cycle) Complete() Cycle {
	if c.IsBreak {
		return Cycle{IsBreak: false, SessionCount: c.SessionCount}
	}
	return Cycle{IsBreak: true, SessionCount: c.SessionCount + 1}
}

// Duration returns the length in seconds of the running phase.
func (c Cycle) Duration(s domain.TimerSettings) int {
	switch c.Phase(s.LongBreakInterval) {
	case PhaseLongBreak:
		return s.LongBreakTime
	case PhaseShortBreak:
		return s.ShortBreakTime
	}
	return s.FocusTime
}
