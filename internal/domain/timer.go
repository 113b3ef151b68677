package domain

import "time"

// TimerSettings configure the pomodoro cycle. Durations are in seconds.
type TimerSettings struct {
	FocusTime          int     `json:"focusTime"`
	ShortBreakTime     int     `json:"shortBreakTime"`
	LongBreakTime      int     `json:"longBreakTime"`
	LongBreakInterval  int     `json:"longBreakInterval"`
	AutoStartBreaks    bool    `json:"autoStartBreaks"`
	AutoStartPomodoros bool    `json:"autoStartPomodoros"`
	SoundEnabled       bool    `json:"soundEnabled"`
	SoundVolume        float64 `json:"soundVolume"`
}

// DefaultTimerSettings returns the settings a new user starts with.
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		FocusTime:          25 * 60,
		ShortBreakTime:     5 * 60,
		LongBreakTime:      15 * 60,
		LongBreakInterval:  4,
		AutoStartBreaks:    false,
		AutoStartPomodoros: false,
		SoundEnabled:       true,
		SoundVolume:        0.7,
	}
}

// Normalized returns s with a long break interval of at least one.
func (s TimerSettings) Normalized() TimerSettings {
	if s.LongBreakInterval <= 0 {
		s.LongBreakInterval = 1
	}
	return s
}

// TimerSettingsPatch carries only the settings being changed.
type TimerSettingsPatch struct {
	FocusTime          *int     `json:"focusTime,omitempty"`
	ShortBreakTime     *int     `json:"shortBreakTime,omitempty"`
	LongBreakTime      *int     `json:"longBreakTime,omitempty"`
	LongBreakInterval  *int     `json:"longBreakInterval,omitempty"`
	AutoStartBreaks    *bool    `json:"autoStartBreaks,omitempty"`
	AutoStartPomodoros *bool    `json:"autoStartPomodoros,omitempty"`
	SoundEnabled       *bool    `json:"soundEnabled,omitempty"`
	SoundVolume        *float64 `json:"soundVolume,omitempty"`
}

// Apply returns s with every set field of p copied over.
func (p TimerSettingsPatch) Apply(s TimerSettings) TimerSettings {
	if p.FocusTime != nil {
		s.FocusTime = *p.FocusTime
	}
	if p.ShortBreakTime != nil {
		s.ShortBreakTime = *p.ShortBreakTime
	}
	if p.LongBreakTime != nil {
		s.LongBreakTime = *p.LongBreakTime
	}
	if p.LongBreakInterval != nil {
		s.LongBreakInterval = *p.LongBreakInterval
	}
	if p.AutoStartBreaks != nil {
		s.AutoStartBreaks = *p.AutoStartBreaks
	}
	if p.AutoStartPomodoros != nil {
		s.AutoStartPomodoros = *p.AutoStartPomodoros
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.SoundVolume != nil {
		s.SoundVolume = *p.SoundVolume
	}
	return s
}

// TimerStats aggregate completed focus time, in seconds.
type TimerStats struct {
	FocusTimeToday            int `json:"focusTimeToday"`
	FocusTimeYesterday        int `json:"focusTimeYesterday"`
	FocusTimeThisWeek         int `json:"focusTimeThisWeek"`
	CompletedSessionsToday    int `json:"completedSessionsToday"`
	CompletedSessionsThisWeek int `json:"completedSessionsThisWeek"`
	Streak                    int `json:"streak"`
}

// FocusSession records one finished focus period.
type FocusSession struct {
	Duration  int       `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
	Completed bool      `json:"completed"`
}
