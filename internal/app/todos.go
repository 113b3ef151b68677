package app

import (
	"context"
	"strings"

	"tesnim/internal/domain"
)

// TodoAPI is the backend surface the todo store calls.
type TodoAPI interface {
	ListTodos(ctx context.Context, f domain.TodoFilter) ([]domain.Todo, error)
	TodosByStatus(ctx context.Context, status string) ([]domain.Todo, error)
	TodosByPriority(ctx context.Context, priority string) ([]domain.Todo, error)
	TodosByTag(ctx context.Context, tag string) ([]domain.Todo, error)
	TodosByDueDate(ctx context.Context, day string) ([]domain.Todo, error)
	GetTodo(ctx context.Context, id string) (*domain.Todo, error)
	CreateTodo(ctx context.Context, in domain.TodoInput) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch, into *domain.Todo) error
	DeleteTodo(ctx context.Context, id string) error
}

// TodoStore keeps the todo list. It is not persisted locally.
type TodoStore struct {
	api TodoAPI
	col collection[domain.Todo]
}

// NewTodoStore creates an empty store.
func NewTodoStore(api TodoAPI) *TodoStore {
	return &TodoStore{api: api}
}

// Close detaches the store; responses arriving afterwards are dropped.
func (s *TodoStore) Close() { s.col.close() }

// Todos returns the current list.
func (s *TodoStore) Todos() []domain.Todo { return s.col.snapshot() }

// Loading reports whether a call is in flight.
func (s *TodoStore) Loading() bool { return s.col.loading() }

// Error returns the last error message.
func (s *TodoStore) Error() string { return s.col.lastError() }

func (s *TodoStore) fetch(ctx context.Context, call func(context.Context) ([]domain.Todo, error)) ([]domain.Todo, error) {
	gen := s.col.begin(true)
	todos, err := call(ctx)
	if err != nil {
		s.col.failFetch(gen, err, "Failed to fetch todos")
		return nil, err
	}
	s.col.replaceAll(gen, todos)
	return todos, nil
}

// FetchTodos replaces the list with the todos matching f.
func (s *TodoStore) FetchTodos(ctx context.Context, f domain.TodoFilter) ([]domain.Todo, error) {
	return s.fetch(ctx, func(ctx context.Context) ([]domain.Todo, error) { return s.api.ListTodos(ctx, f) })
}

// FetchByStatus replaces the list with the todos in status.
func (s *TodoStore) FetchByStatus(ctx context.Context, status string) ([]domain.Todo, error) {
	return s.fetch(ctx, func(ctx context.Context) ([]domain.Todo, error) { return s.api.TodosByStatus(ctx, status) })
}

// FetchByPriority replaces the list with the todos of priority.
func (s *TodoStore) FetchByPriority(ctx context.Context, priority string) ([]domain.Todo, error) {
	return s.fetch(ctx, func(ctx context.Context) ([]domain.Todo, error) { return s.api.TodosByPriority(ctx, priority) })
}

// FetchByTag replaces the list with the todos carrying tag.
func (s *TodoStore) FetchByTag(ctx context.Context, tag string) ([]domain.Todo, error) {
	return s.fetch(ctx, func(ctx context.Context) ([]domain.Todo, error) { return s.api.TodosByTag(ctx, tag) })
}

// FetchByDueDate replaces the list with the todos due on day (YYYY-MM-DD).
func (s *TodoStore) FetchByDueDate(ctx context.Context, day string) ([]domain.Todo, error) {
	return s.fetch(ctx, func(ctx context.Context) ([]domain.Todo, error) { return s.api.TodosByDueDate(ctx, day) })
}

// GetTodo loads one todo and refreshes it locally if present.
func (s *TodoStore) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	s.col.begin(false)
	t, err := s.api.GetTodo(ctx, id)
	if err != nil {
		s.col.fail(err, "Failed to fetch todo")
		return nil, err
	}
	s.col.set(*t)
	return t, nil
}

// CreateTodo validates in, stores it and appends the result.
func (s *TodoStore) CreateTodo(ctx context.Context, in domain.TodoInput) (*domain.Todo, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return nil, ErrTextRequired
	}
	s.col.begin(false)
	t, err := s.api.CreateTodo(ctx, in)
	if err != nil {
		s.col.fail(err, "Failed to add todo")
		return nil, err
	}
	s.col.add(*t)
	return t, nil
}

// UpdateTodo applies patch and merges the response into the local todo.
func (s *TodoStore) UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return nil, ErrTextRequired
	}
	// The response is decoded over a private copy so published snapshots
	// never observe a partial merge.
	cur, _ := s.col.get(id)
	merged := cur.Clone()
	s.col.begin(false)
	if err := s.api.UpdateTodo(ctx, id, patch, &merged); err != nil {
		s.col.fail(err, "Failed to update todo")
		return nil, err
	}
	s.col.set(merged)
	return &merged, nil
}

// ToggleTodo flips the completed flag of a local todo.
func (s *TodoStore) ToggleTodo(ctx context.Context, id string) (*domain.Todo, error) {
	cur, ok := s.col.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	done := !cur.Completed
	return s.UpdateTodo(ctx, id, domain.TodoPatch{Completed: &done})
}

// DeleteTodo removes a todo. A backend failure, including an unknown id,
// leaves the list unchanged.
func (s *TodoStore) DeleteTodo(ctx context.Context, id string) error {
	s.col.begin(false)
	if err := s.api.DeleteTodo(ctx, id); err != nil {
		s.col.fail(err, "Failed to delete todo")
		return err
	}
	s.col.remove(id)
	return nil
}
