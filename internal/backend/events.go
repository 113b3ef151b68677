package backend

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"tesnim/internal/domain"
)

// CalendarSource lists the events of an external calendar for owner.
type CalendarSource func(ctx context.Context, owner string) ([]domain.Event, error)

// EventService manages calendar events.
type EventService struct {
	repo   domain.ResourceRepository[domain.Event]
	source CalendarSource
}

// NewEventService creates a new event service without an external calendar.
func NewEventService(repo domain.ResourceRepository[domain.Event]) *EventService {
	return &EventService{repo: repo}
}

// SetCalendarSource configures the calendar imported by Sync.
func (s *EventService) SetCalendarSource(src CalendarSource) { s.source = src }

// List returns the owner's events starting within r, ordered by start.
// Zero bounds are open.
func (s *EventService) List(ctx context.Context, owner string, r domain.EventRange) ([]domain.Event, error) {
	events, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if !r.Start.IsZero() && e.StartTime.Before(r.Start) {
			continue
		}
		if !r.End.IsZero() && !e.StartTime.Before(r.End) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// Create validates and stores a new event.
func (s *EventService) Create(ctx context.Context, owner string, in domain.EventInput) (*domain.Event, error) {
	e := domain.Event{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		Location:       in.Location,
		Color:          in.Color,
		IsAllDay:       in.IsAllDay,
		IsRecurring:    in.IsRecurring,
		RecurrenceRule: in.RecurrenceRule,
	}
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, owner, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update merges the JSON patch into the stored event.
func (s *EventService) Update(ctx context.Context, owner, id string, patch []byte) (*domain.Event, error) {
	cur, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, notFoundAs(err, "Event")
	}
	e, err := mergeJSON(cur, patch)
	if err != nil {
		return nil, err
	}
	e.ID = cur.ID
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, owner, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, owner, id string) error {
	return notFoundAs(s.repo.Delete(ctx, owner, id), "Event")
}

// Sync imports the external calendar, replacing events with the same id,
// and returns every event of the owner.
func (s *EventService) Sync(ctx context.Context, owner string) ([]domain.Event, error) {
	if s.source == nil {
		log.Printf("[events] sync requested by %s but no external calendar is configured", owner)
		return s.List(ctx, owner, domain.EventRange{})
	}
	imported, err := s.source(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, e := range imported {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := s.repo.Put(ctx, owner, e); err != nil {
			return nil, err
		}
	}
	return s.List(ctx, owner, domain.EventRange{})
}

func validateEvent(e domain.Event) error {
	if e.Title == "" {
		return errValidation("title", "Title is required")
	}
	if e.StartTime.IsZero() {
		return errValidation("startTime", "Start time is required")
	}
	if !e.EndTime.IsZero() && e.EndTime.Before(e.StartTime) {
		return errValidation("endTime", "End time must not be before start time")
	}
	return nil
}
