package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"tesnim/internal/domain"
)

func event(id string, start time.Time) domain.Event {
	return domain.Event{ID: id, Title: id, StartTime: start, EndTime: start.Add(time.Hour)}
}

func eventIDs(events []domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestCalendarViews(t *testing.T) {
	// testNow is Wednesday 2026-03-04; its week runs Sunday 1st to Saturday 7th.
	events := []domain.Event{
		event("next-week", time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)),
		event("saturday", time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC)),
		event("today-late", time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)),
		event("today-early", time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)),
		event("sunday", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		event("february", time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)),
	}
	api := &mockEventAPI{
		listFn: func(ctx context.Context, r domain.EventRange) ([]domain.Event, error) { return events, nil },
	}
	creds, _ := newCreds()
	s := NewCalendarStore(api, creds)
	s.SetSelectedDate(context.Background(), testNow)
	if _, err := s.FetchEvents(context.Background(), domain.EventRange{}); err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}

	tests := []struct {
		name string
		got  []domain.Event
		want []string
	}{
		{"date", s.EventsForDate(testNow), []string{"today-early", "today-late"}},
		{"week", s.EventsForCurrentWeek(), []string{"sunday", "today-early", "today-late", "saturday"}},
		{"month", s.EventsForCurrentMonth(), []string{"sunday", "today-early", "today-late", "saturday", "next-week"}},
		{"upcoming", s.UpcomingEvents(testNow), []string{"today-late", "saturday", "next-week"}},
	}
	for _, tc := range tests {
		if got := eventIDs(tc.got); !equalIDs(got, tc.want) {
			t.Errorf("%s: got %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestCalendarCreateValidation(t *testing.T) {
	creds, _ := newCreds()
	s := NewCalendarStore(&mockEventAPI{}, creds)

	_, err := s.CreateEvent(context.Background(), domain.EventInput{Title: ""})
	if !errors.Is(err, ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}
	_, err = s.CreateEvent(context.Background(), domain.EventInput{
		Title:     "Backwards",
		StartTime: testNow,
		EndTime:   testNow.Add(-time.Hour),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	if len(s.Events()) != 0 {
		t.Error("expected nothing stored")
	}
}

func TestCalendarUpdateRejectsInvertedMergedRange(t *testing.T) {
	api := &mockEventAPI{
		listFn: func(ctx context.Context, r domain.EventRange) ([]domain.Event, error) {
			return []domain.Event{event("a", testNow)}, nil
		},
		updateFn: func(ctx context.Context, id string, patch domain.EventPatch, into *domain.Event) error {
			t.Fatal("backend must not be called")
			return nil
		},
	}
	creds, _ := newCreds()
	s := NewCalendarStore(api, creds)
	_, _ = s.FetchEvents(context.Background(), domain.EventRange{})

	end := testNow.Add(-time.Minute)
	if _, err := s.UpdateEvent(context.Background(), "a", domain.EventPatch{EndTime: &end}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCalendarPersistsAcrossRestore(t *testing.T) {
	creds, _ := newCreds()
	s := NewCalendarStore(&mockEventAPI{}, creds)

	if _, err := s.CreateEvent(context.Background(), domain.EventInput{
		Title:     "Standup",
		StartTime: testNow,
		EndTime:   testNow.Add(15 * time.Minute),
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if err := s.SetView(context.Background(), domain.ViewMonth); err != nil {
		t.Fatalf("SetView: %v", err)
	}
	if err := s.SetView(context.Background(), "year"); !errors.Is(err, ErrInvalidView) {
		t.Errorf("expected ErrInvalidView, got %v", err)
	}
	s.SetSelectedDate(context.Background(), testNow)

	restored := NewCalendarStore(&mockEventAPI{}, creds)
	if err := restored.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(restored.Events()) != 1 || restored.Events()[0].Title != "Standup" {
		t.Errorf("expected cached event, got %+v", restored.Events())
	}
	if restored.View() != domain.ViewMonth {
		t.Errorf("expected month view, got %q", restored.View())
	}
	if !restored.SelectedDate().Equal(testNow) {
		t.Errorf("expected selected date %v, got %v", testNow, restored.SelectedDate())
	}
}

func TestCalendarSyncFailureKeepsEvents(t *testing.T) {
	api := &mockEventAPI{
		listFn: func(ctx context.Context, r domain.EventRange) ([]domain.Event, error) {
			return []domain.Event{event("a", testNow)}, nil
		},
		syncFn: func(ctx context.Context) ([]domain.Event, error) {
			return nil, domain.NewAPIError(502, "sync_failed", "", "Google Calendar is not connected")
		},
	}
	creds, _ := newCreds()
	s := NewCalendarStore(api, creds)
	_, _ = s.FetchEvents(context.Background(), domain.EventRange{})

	if _, err := s.SyncGoogleCalendar(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(s.Events()) != 1 {
		t.Errorf("expected events kept, got %+v", s.Events())
	}
	if s.Error() != "Google Calendar is not connected" {
		t.Errorf("unexpected error %q", s.Error())
	}
}

func TestCalendarDelete(t *testing.T) {
	api := &mockEventAPI{
		listFn: func(ctx context.Context, r domain.EventRange) ([]domain.Event, error) {
			return []domain.Event{event("a", testNow), event("b", testNow)}, nil
		},
	}
	creds, _ := newCreds()
	s := NewCalendarStore(api, creds)
	_, _ = s.FetchEvents(context.Background(), domain.EventRange{})

	if err := s.DeleteEvent(context.Background(), "a"); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if got := eventIDs(s.Events()); !equalIDs(got, []string{"b"}) {
		t.Errorf("got %v", got)
	}
}
