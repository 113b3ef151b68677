package backend

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"tesnim/internal/domain"
)

// TaskService manages the tasks of each user.
type TaskService struct {
	repo domain.ResourceRepository[domain.Task]
	now  func() time.Time
}

// NewTaskService creates a new task service.
func NewTaskService(repo domain.ResourceRepository[domain.Task]) *TaskService {
	return &TaskService{repo: repo, now: time.Now}
}

// SetClock replaces the time source.
func (s *TaskService) SetClock(now func() time.Time) { s.now = now }

// List returns the owner's tasks together with the completion stats.
func (s *TaskService) List(ctx context.Context, owner string) (*domain.TaskList, error) {
	tasks, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	stats := taskStats(tasks, s.now())
	return &domain.TaskList{Tasks: tasks, Stats: &stats}, nil
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, owner string, in domain.TaskInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, errValidation("title", "Title is required")
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, errValidation("priority", "Priority must be low, medium or high")
	}

	now := s.now().UTC()
	t := domain.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Completed:   in.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, owner, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update merges the JSON patch into the stored task.
func (s *TaskService) Update(ctx context.Context, owner, id string, patch []byte) (*domain.Task, error) {
	cur, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, notFoundAs(err, "Task")
	}
	t, err := mergeJSON(cur, patch)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(t.Title) == "" {
		return nil, errValidation("title", "Title is required")
	}
	if !t.Priority.Valid() {
		return nil, errValidation("priority", "Priority must be low, medium or high")
	}

	t.ID, t.CreatedAt = cur.ID, cur.CreatedAt
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Put(ctx, owner, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	return notFoundAs(s.repo.Delete(ctx, owner, id), "Task")
}

// Stats counts the owner's completed tasks by the day they were last updated.
func (s *TaskService) Stats(ctx context.Context, owner string) (*domain.TaskStats, error) {
	tasks, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	stats := taskStats(tasks, s.now())
	return &stats, nil
}

func taskStats(tasks []domain.Task, now time.Time) domain.TaskStats {
	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)
	week := startOfWeek(now)

	var st domain.TaskStats
	for _, t := range tasks {
		if !t.Completed {
			continue
		}
		at := t.UpdatedAt.In(now.Location())
		if !at.Before(today) {
			st.CompletedToday++
		} else if !at.Before(yesterday) {
			st.CompletedYesterday++
		}
		if !at.Before(week) {
			st.CompletedThisWeek++
		}
	}
	return st
}
