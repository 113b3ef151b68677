package backend

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"tesnim/internal/domain"
)

// Todo statuses the backend assigns on its own.
const (
	TodoPending   = "pending"
	TodoCompleted = "completed"
)

// TodoService manages the todo list of each user.
type TodoService struct {
	repo domain.ResourceRepository[domain.Todo]
	now  func() time.Time
}

// NewTodoService creates a new todo service.
func NewTodoService(repo domain.ResourceRepository[domain.Todo]) *TodoService {
	return &TodoService{repo: repo, now: time.Now}
}

// SetClock replaces the time source.
func (s *TodoService) SetClock(now func() time.Time) { s.now = now }

// List returns the owner's todos matching f.
func (s *TodoService) List(ctx context.Context, owner string, f domain.TodoFilter) ([]domain.Todo, error) {
	todos, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Get returns one todo.
func (s *TodoService) Get(ctx context.Context, owner, id string) (*domain.Todo, error) {
	t, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, notFoundAs(err, "Todo")
	}
	return &t, nil
}

// Create validates and stores a new todo.
func (s *TodoService) Create(ctx context.Context, owner string, in domain.TodoInput) (*domain.Todo, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, errValidation("text", "Text is required")
	}
	status := in.Status
	if status == "" {
		status = TodoPending
	}
	now := s.now().UTC()
	t := domain.Todo{
		ID:        uuid.NewString(),
		Text:      text,
		Status:    status,
		Completed: status == TodoCompleted,
		Priority:  in.Priority,
		DueDate:   in.DueDate,
		Tags:      append([]string(nil), in.Tags...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, owner, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update merges the JSON patch into the stored todo. Toggling completed
// moves a pending todo to completed and back.
func (s *TodoService) Update(ctx context.Context, owner, id string, patch []byte) (*domain.Todo, error) {
	cur, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, notFoundAs(err, "Todo")
	}
	t, err := mergeJSON(cur, patch)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(t.Text) == "" {
		return nil, errValidation("text", "Text is required")
	}
	if t.Completed != cur.Completed && t.Status == cur.Status {
		switch {
		case t.Completed && t.Status != TodoCompleted:
			t.Status = TodoCompleted
		case !t.Completed && t.Status == TodoCompleted:
			t.Status = TodoPending
		}
	}

	t.ID, t.CreatedAt = cur.ID, cur.CreatedAt
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Put(ctx, owner, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes a todo.
func (s *TodoService) Delete(ctx context.Context, owner, id string) error {
	return notFoundAs(s.repo.Delete(ctx, owner, id), "Todo")
}
