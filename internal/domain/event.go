package domain

import "time"

// Event is a calendar entry.
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	Location       string    `json:"location,omitempty"`
	Color          string    `json:"color,omitempty"`
	IsAllDay       bool      `json:"isAllDay"`
	IsRecurring    bool      `json:"isRecurring"`
	RecurrenceRule string    `json:"recurrenceRule,omitempty"`
}

// EntityID implements Entity.
func (e Event) EntityID() string { return e.ID }

// EventInput is the body of an event creation.
type EventInput struct {
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	Location       string    `json:"location,omitempty"`
	Color          string    `json:"color,omitempty"`
	IsAllDay       bool      `json:"isAllDay"`
	IsRecurring    bool      `json:"isRecurring"`
	RecurrenceRule string    `json:"recurrenceRule,omitempty"`
}

// EventPatch carries only the event fields being changed.
type EventPatch struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	StartTime      *time.Time `json:"startTime,omitempty"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	Location       *string    `json:"location,omitempty"`
	Color          *string    `json:"color,omitempty"`
	IsAllDay       *bool      `json:"isAllDay,omitempty"`
	IsRecurring    *bool      `json:"isRecurring,omitempty"`
	RecurrenceRule *string    `json:"recurrenceRule,omitempty"`
}

// EventRange bounds an event listing; zero times are left open.
type EventRange struct {
	Start time.Time
	End   time.Time
}

// CalendarView is the granularity the calendar is displayed at.
type CalendarView string

const (
	ViewDay   CalendarView = "day"
	ViewWeek  CalendarView = "week"
	ViewMonth CalendarView = "month"
)

// Valid reports whether v is a known view.
func (v CalendarView) Valid() bool {
	return v == ViewDay || v == ViewWeek || v == ViewMonth
}
