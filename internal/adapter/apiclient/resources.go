package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"tesnim/internal/domain"
)

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// --- Tasks ---

// ListTasks returns every task with the current completion stats.
func (c *Client) ListTasks(ctx context.Context) (*domain.TaskList, error) {
	var out domain.TaskList
	if err := c.Do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask stores a new task and returns it as the server saw it.
func (c *Client) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	var out domain.Task
	if err := c.Do(ctx, http.MethodPost, "/tasks", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask sends patch and decodes the response over into, so fields the
// server omits keep their current value.
func (c *Client) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch, into *domain.Task) error {
	return c.Do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), patch, into)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// TaskStats returns the completion counters.
func (c *Client) TaskStats(ctx context.Context) (*domain.TaskStats, error) {
	var out domain.TaskStats
	if err := c.Do(ctx, http.MethodGet, "/tasks/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Events ---

// ListEvents returns events, optionally bounded by r.
func (c *Client) ListEvents(ctx context.Context, r domain.EventRange) ([]domain.Event, error) {
	q := url.Values{}
	if !r.Start.IsZero() {
		q.Set("startDate", r.Start.Format(time.RFC3339))
	}
	if !r.End.IsZero() {
		q.Set("endDate", r.End.Format(time.RFC3339))
	}
	var out []domain.Event
	if err := c.Do(ctx, http.MethodGet, withQuery("/events", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEvent stores a new event.
func (c *Client) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	var out domain.Event
	if err := c.Do(ctx, http.MethodPost, "/events", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateEvent sends patch and decodes the response over into.
func (c *Client) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch, into *domain.Event) error {
	return c.Do(ctx, http.MethodPut, "/events/"+url.PathEscape(id), patch, into)
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil)
}

// SyncGoogleCalendar asks the backend to import external events and
// returns the resulting full list.
func (c *Client) SyncGoogleCalendar(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	if err := c.Do(ctx, http.MethodPost, "/events/sync-google", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Todos ---

func todoQuery(f domain.TodoFilter) url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if f.DueDate != "" {
		q.Set("dueDate", f.DueDate)
	}
	return q
}

func (c *Client) listTodos(ctx context.Context, path string) ([]domain.Todo, error) {
	var out []domain.Todo
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTodos returns todos matching f.
func (c *Client) ListTodos(ctx context.Context, f domain.TodoFilter) ([]domain.Todo, error) {
	return c.listTodos(ctx, withQuery("/todos", todoQuery(f)))
}

// TodosByStatus returns todos with the given status.
func (c *Client) TodosByStatus(ctx context.Context, status string) ([]domain.Todo, error) {
	return c.listTodos(ctx, "/todos/status/"+url.PathEscape(status))
}

// TodosByPriority returns todos with the given priority.
func (c *Client) TodosByPriority(ctx context.Context, priority string) ([]domain.Todo, error) {
	return c.listTodos(ctx, "/todos/priority/"+url.PathEscape(priority))
}

// TodosByTag returns todos carrying tag.
func (c *Client) TodosByTag(ctx context.Context, tag string) ([]domain.Todo, error) {
	return c.listTodos(ctx, "/todos/tag/"+url.PathEscape(tag))
}

// TodosByDueDate returns todos due on day (YYYY-MM-DD).
func (c *Client) TodosByDueDate(ctx context.Context, day string) ([]domain.Todo, error) {
	return c.listTodos(ctx, withQuery("/todos/due-date", url.Values{"dueDate": {day}}))
}

// GetTodo returns one todo.
func (c *Client) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	var out domain.Todo
	if err := c.Do(ctx, http.MethodGet, "/todos/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTodo stores a new todo.
func (c *Client) CreateTodo(ctx context.Context, in domain.TodoInput) (*domain.Todo, error) {
	var out domain.Todo
	if err := c.Do(ctx, http.MethodPost, "/todos", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTodo sends patch and decodes the response over into.
func (c *Client) UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch, into *domain.Todo) error {
	return c.Do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), patch, into)
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil)
}

// --- Timer ---

// TimerSettings returns the stored settings.
func (c *Client) TimerSettings(ctx context.Context) (*domain.TimerSettings, error) {
	var out domain.TimerSettings
	if err := c.Do(ctx, http.MethodGet, "/users/timer-settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveTimerSettings replaces the stored settings.
func (c *Client) SaveTimerSettings(ctx context.Context, s domain.TimerSettings) error {
	body := struct {
		Settings domain.TimerSettings `json:"settings"`
	}{s}
	return c.Do(ctx, http.MethodPut, "/users/timer-settings", body, nil)
}

// SaveTimerSession records a finished focus session.
func (c *Client) SaveTimerSession(ctx context.Context, s domain.FocusSession) error {
	return c.Do(ctx, http.MethodPost, "/timer/sessions", s, nil)
}

// TimerStats returns focus statistics.
func (c *Client) TimerStats(ctx context.Context) (*domain.TimerStats, error) {
	var out domain.TimerStats
	if err := c.Do(ctx, http.MethodGet, "/timer/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
