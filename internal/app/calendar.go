package app

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"tesnim/internal/credentials"
	"tesnim/internal/domain"
)

// EventAPI is the backend surface the calendar store calls.
type EventAPI interface {
	ListEvents(ctx context.Context, r domain.EventRange) ([]domain.Event, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, id string, patch domain.EventPatch, into *domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
	SyncGoogleCalendar(ctx context.Context) ([]domain.Event, error)
}

type calendarSlice struct {
	Events       []domain.Event      `json:"events"`
	SelectedDate time.Time           `json:"selectedDate"`
	View         domain.CalendarView `json:"view"`
}

// CalendarStore keeps events plus the selected date and view.
type CalendarStore struct {
	api   EventAPI
	creds *credentials.Store
	col   collection[domain.Event]

	mu       sync.Mutex
	selected time.Time
	view     domain.CalendarView
}

// NewCalendarStore creates an empty store in week view on today.
func NewCalendarStore(api EventAPI, creds *credentials.Store) *CalendarStore {
	return &CalendarStore{api: api, creds: creds, selected: time.Now(), view: domain.ViewWeek}
}

// Restore loads cached events, the selected date and the view.
func (s *CalendarStore) Restore(ctx context.Context) error {
	var slice calendarSlice
	ok, err := s.creds.LoadSlice(ctx, domain.KeyCalendar, &slice)
	if err != nil || !ok {
		return err
	}
	s.col.load(slice.Events)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slice.SelectedDate.IsZero() {
		s.selected = slice.SelectedDate
	}
	if slice.View.Valid() {
		s.view = slice.View
	}
	return nil
}

func (s *CalendarStore) persist(ctx context.Context) {
	s.mu.Lock()
	slice := calendarSlice{SelectedDate: s.selected, View: s.view}
	s.mu.Unlock()
	slice.Events = s.col.snapshot()
	if err := s.creds.SaveSlice(ctx, domain.KeyCalendar, slice); err != nil {
		log.Printf("[calendar] persist: %v", err)
	}
}

// Close detaches the store; responses arriving afterwards are dropped.
func (s *CalendarStore) Close() { s.col.close() }

// Events returns every event.
func (s *CalendarStore) Events() []domain.Event { return s.col.snapshot() }

// Loading reports whether a call is in flight.
func (s *CalendarStore) Loading() bool { return s.col.loading() }

// Error returns the last error message.
func (s *CalendarStore) Error() string { return s.col.lastError() }

// SelectedDate returns the date the views are centred on.
func (s *CalendarStore) SelectedDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// View returns the display granularity.
func (s *CalendarStore) View() domain.CalendarView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// FetchEvents replaces the events with the backend's for r.
func (s *CalendarStore) FetchEvents(ctx context.Context, r domain.EventRange) ([]domain.Event, error) {
	gen := s.col.begin(true)
	events, err := s.api.ListEvents(ctx, r)
	if err != nil {
		s.col.failFetch(gen, err, "Failed to fetch events")
		return nil, err
	}
	if s.col.replaceAll(gen, events) {
		s.persist(ctx)
	}
	return events, nil
}

// CreateEvent validates in, stores it and appends the result.
func (s *CalendarStore) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if !in.EndTime.IsZero() && in.EndTime.Before(in.StartTime) {
		return nil, ErrInvalidRange
	}

	s.col.begin(false)
	e, err := s.api.CreateEvent(ctx, in)
	if err != nil {
		s.col.fail(err, "Failed to create event")
		return nil, err
	}
	s.col.add(*e)
	s.persist(ctx)
	return e, nil
}

// UpdateEvent applies patch and merges the response into the local event.
func (s *CalendarStore) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}

	merged, _ := s.col.get(id)
	start, end := merged.StartTime, merged.EndTime
	if patch.StartTime != nil {
		start = *patch.StartTime
	}
	if patch.EndTime != nil {
		end = *patch.EndTime
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, ErrInvalidRange
	}

	s.col.begin(false)
	if err := s.api.UpdateEvent(ctx, id, patch, &merged); err != nil {
		s.col.fail(err, "Failed to update event")
		return nil, err
	}
	if s.col.set(merged) {
		s.persist(ctx)
	}
	return &merged, nil
}

// DeleteEvent removes an event.
func (s *CalendarStore) DeleteEvent(ctx context.Context, id string) error {
	s.col.begin(false)
	if err := s.api.DeleteEvent(ctx, id); err != nil {
		s.col.fail(err, "Failed to delete event")
		return err
	}
	s.col.remove(id)
	s.persist(ctx)
	return nil
}

// SyncGoogleCalendar imports external events and replaces the collection.
func (s *CalendarStore) SyncGoogleCalendar(ctx context.Context) ([]domain.Event, error) {
	gen := s.col.begin(true)
	events, err := s.api.SyncGoogleCalendar(ctx)
	if err != nil {
		s.col.failFetch(gen, err, "Failed to sync with Google Calendar")
		return nil, err
	}
	if s.col.replaceAll(gen, events) {
		s.persist(ctx)
	}
	return events, nil
}

// SetSelectedDate moves the views to d.
func (s *CalendarStore) SetSelectedDate(ctx context.Context, d time.Time) {
	s.mu.Lock()
	s.selected = d
	s.mu.Unlock()
	s.persist(ctx)
}

// SetView changes the display granularity.
func (s *CalendarStore) SetView(ctx context.Context, v domain.CalendarView) error {
	if !v.Valid() {
		return ErrInvalidView
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	s.persist(ctx)
	return nil
}

// EventsForDate returns the events starting on d's calendar day.
func (s *CalendarStore) EventsForDate(d time.Time) []domain.Event {
	from := startOfDay(d)
	return eventsBetween(s.col.snapshot(), from, from.AddDate(0, 0, 1))
}

// EventsForCurrentWeek returns the events of the Sunday to Saturday week
// holding the selected date.
func (s *CalendarStore) EventsForCurrentWeek() []domain.Event {
	from := startOfDay(s.SelectedDate())
	from = from.AddDate(0, 0, -int(from.Weekday()))
	return eventsBetween(s.col.snapshot(), from, from.AddDate(0, 0, 7))
}

// EventsForCurrentMonth returns the events of the selected date's month.
func (s *CalendarStore) EventsForCurrentMonth() []domain.Event {
	sel := s.SelectedDate()
	from := time.Date(sel.Year(), sel.Month(), 1, 0, 0, 0, 0, sel.Location())
	return eventsBetween(s.col.snapshot(), from, from.AddDate(0, 1, 0))
}

// UpcomingEvents returns the events starting after now, soonest first.
func (s *CalendarStore) UpcomingEvents(now time.Time) []domain.Event {
	var out []domain.Event
	for _, e := range s.col.snapshot() {
		if e.StartTime.After(now) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out
}

// eventsBetween keeps events starting in [from, to), sorted by start.
func eventsBetween(events []domain.Event, from, to time.Time) []domain.Event {
	var out []domain.Event
	for _, e := range events {
		start := e.StartTime.In(from.Location())
		if !start.Before(from) && start.Before(to) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out
}

func sortByStart(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
}
