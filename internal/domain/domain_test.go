package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"tesnim/internal/domain"
)

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		p    domain.TaskPriority
		want int
	}{
		{domain.PriorityHigh, 1},
		{domain.PriorityMedium, 2},
		{domain.PriorityLow, 3},
		{"", 4},
	}
	for _, tc := range tests {
		if got := domain.PriorityRank(tc.p); got != tc.want {
			t.Errorf("PriorityRank(%q) = %d; want %d", tc.p, got, tc.want)
		}
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if (domain.Session{}).Expired(now) {
		t.Error("session without expiry should not be expired")
	}
	s := domain.Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Error("future expiry reported as expired")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Error("expiry instant should count as expired")
	}
}

func TestTodoFilterMatch(t *testing.T) {
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	todo := domain.Todo{ID: "1", Text: "x", Status: "pending", Priority: "high", DueDate: &due, Tags: []string{"work"}}

	tests := []struct {
		name   string
		filter domain.TodoFilter
		want   bool
	}{
		{"empty", domain.TodoFilter{}, true},
		{"status", domain.TodoFilter{Status: "pending"}, true},
		{"wrong status", domain.TodoFilter{Status: "done"}, false},
		{"tag", domain.TodoFilter{Tag: "work"}, true},
		{"missing tag", domain.TodoFilter{Tag: "home"}, false},
		{"due date", domain.TodoFilter{DueDate: "2026-03-02"}, true},
		{"other due date", domain.TodoFilter{DueDate: "2026-03-03"}, false},
		{"combined", domain.TodoFilter{Priority: "high", Tag: "work"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Match(todo); got != tc.want {
				t.Errorf("Match() = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestTimerSettingsPatchApply(t *testing.T) {
	focus := 50 * 60
	off := false
	got := domain.TimerSettingsPatch{FocusTime: &focus, SoundEnabled: &off}.Apply(domain.DefaultTimerSettings())

	if got.FocusTime != focus {
		t.Errorf("FocusTime = %d; want %d", got.FocusTime, focus)
	}
	if got.SoundEnabled {
		t.Error("SoundEnabled should be false")
	}
	if got.ShortBreakTime != 5*60 || got.LongBreakInterval != 4 || got.SoundVolume != 0.7 {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	err := fmt.Errorf("get /todos/x: %w", domain.NewAPIError(http.StatusNotFound, domain.CodeNotFound, "", "todo not found"))

	if !domain.IsNotFound(err) {
		t.Error("IsNotFound should see through wrapping")
	}
	if domain.IsUnauthorized(err) {
		t.Error("404 reported as unauthorized")
	}
	if domain.IsNotFound(errors.New("plain")) {
		t.Error("plain error reported as not found")
	}
	if got := (&domain.APIError{StatusCode: 502}).Error(); got != "api: status 502" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCloneSharesNoMemory(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	todo := domain.Todo{ID: "a", Tags: []string{"a", "b"}, DueDate: &due}
	c := todo.Clone()
	c.Tags[0] = "z"
	*c.DueDate = due.Add(time.Hour)
	if todo.Tags[0] != "a" || !todo.DueDate.Equal(due) {
		t.Errorf("todo clone aliased original: %+v", todo)
	}

	task := domain.Task{ID: "a", DueDate: &due}
	tc := task.Clone()
	*tc.DueDate = due.Add(time.Hour)
	if !task.DueDate.Equal(due) {
		t.Errorf("task clone aliased original: %v", task.DueDate)
	}
	if (domain.Todo{}).Clone().Tags != nil {
		t.Error("expected nil tags to stay nil")
	}
}

func TestTimerSettingsNormalized(t *testing.T) {
	for _, in := range []int{-3, 0} {
		s := domain.TimerSettings{LongBreakInterval: in}.Normalized()
		if s.LongBreakInterval != 1 {
			t.Errorf("interval %d: got %d, want 1", in, s.LongBreakInterval)
		}
	}
	if got := domain.DefaultTimerSettings().Normalized().LongBreakInterval; got != 4 {
		t.Errorf("expected 4 kept, got %d", got)
	}
}
