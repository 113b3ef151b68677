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

// TaskAPI is the backend surface the task store calls.
type TaskAPI interface {
	ListTasks(ctx context.Context) (*domain.TaskList, error)
	CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch, into *domain.Task) error
	DeleteTask(ctx context.Context, id string) error
	TaskStats(ctx context.Context) (*domain.TaskStats, error)
}

type taskSlice struct {
	Filter domain.TaskFilter `json:"filter"`
}

// TaskStore keeps the task list, its stats and the active filter.
type TaskStore struct {
	api   TaskAPI
	creds *credentials.Store
	now   func() time.Time
	col   collection[domain.Task]

	mu     sync.Mutex
	stats  domain.TaskStats
	filter domain.TaskFilter
}

// NewTaskStore creates an empty store showing all tasks.
func NewTaskStore(api TaskAPI, creds *credentials.Store) *TaskStore {
	return &TaskStore{api: api, creds: creds, now: time.Now, filter: domain.FilterAll}
}

// SetClock replaces the time source used by derived views.
func (s *TaskStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Restore loads the persisted filter.
func (s *TaskStore) Restore(ctx context.Context) error {
	var slice taskSlice
	ok, err := s.creds.LoadSlice(ctx, domain.KeyTasksSlice, &slice)
	if err != nil || !ok || !slice.Filter.Valid() {
		return err
	}
	s.mu.Lock()
	s.filter = slice.Filter
	s.mu.Unlock()
	return nil
}

// Close detaches the store; responses arriving afterwards are dropped.
func (s *TaskStore) Close() { s.col.close() }

// Tasks returns every task.
func (s *TaskStore) Tasks() []domain.Task { return s.col.snapshot() }

// Loading reports whether a call is in flight.
func (s *TaskStore) Loading() bool { return s.col.loading() }

// Error returns the last error message.
func (s *TaskStore) Error() string { return s.col.lastError() }

// Stats returns the last known completion stats.
func (s *TaskStore) Stats() domain.TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Filter returns the active filter.
func (s *TaskStore) Filter() domain.TaskFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// FetchTasks replaces the list with the backend's.
func (s *TaskStore) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	gen := s.col.begin(true)
	list, err := s.api.ListTasks(ctx)
	if err != nil {
		s.col.failFetch(gen, err, "Failed to fetch tasks")
		return nil, err
	}
	if s.col.replaceAll(gen, list.Tasks) {
		s.mu.Lock()
		if list.Stats != nil {
			s.stats = *list.Stats
		} else {
			s.stats = domain.TaskStats{}
		}
		s.mu.Unlock()
	}
	return list.Tasks, nil
}

// CreateTask validates in, stores it and appends the result.
func (s *TaskStore) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	s.col.begin(false)
	t, err := s.api.CreateTask(ctx, in)
	if err != nil {
		s.col.fail(err, "Failed to create task")
		return nil, err
	}
	s.col.add(*t)
	return t, nil
}

// UpdateTask applies patch and merges the response into the local task. A
// change to Completed also refreshes the stats.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	// The response is decoded over a private copy so published snapshots
	// never observe a partial merge.
	cur, _ := s.col.get(id)
	merged := cur.Clone()
	s.col.begin(false)
	if err := s.api.UpdateTask(ctx, id, patch, &merged); err != nil {
		s.col.fail(err, "Failed to update task")
		return nil, err
	}
	s.col.set(merged)

	if patch.Completed != nil {
		s.FetchTaskStats(ctx)
	}
	return &merged, nil
}

// DeleteTask removes a task.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	s.col.begin(false)
	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.col.fail(err, "Failed to delete task")
		return err
	}
	s.col.remove(id)
	return nil
}

// FetchTaskStats refreshes the stats. On failure the cached stats are kept
// and returned.
func (s *TaskStore) FetchTaskStats(ctx context.Context) domain.TaskStats {
	stats, err := s.api.TaskStats(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("[tasks] fetch stats: %v", err)
		return s.stats
	}
	s.stats = *stats
	return s.stats
}

// SetFilter changes and persists the active filter.
func (s *TaskStore) SetFilter(ctx context.Context, f domain.TaskFilter) error {
	if !f.Valid() {
		return ErrInvalidFilter
	}
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
	return s.creds.SaveSlice(ctx, domain.KeyTasksSlice, taskSlice{Filter: f})
}

// FilteredTasks returns the tasks matching the active filter, computed now.
func (s *TaskStore) FilteredTasks() []domain.Task {
	s.mu.Lock()
	f, now := s.filter, s.now()
	s.mu.Unlock()
	return FilterTasks(s.col.snapshot(), f, now)
}

// SortedTasks returns every task in display order.
func (s *TaskStore) SortedTasks() []domain.Task {
	s.mu.Lock()
	now := s.now()
	s.mu.Unlock()
	return SortTasks(s.col.snapshot(), now)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FilterTasks returns the tasks of list that match f at now. Day-based
// filters compare calendar days in now's location.
func FilterTasks(list []domain.Task, f domain.TaskFilter, now time.Time) []domain.Task {
	today := startOfDay(now)
	out := make([]domain.Task, 0, len(list))
	for _, t := range list {
		var keep bool
		switch f {
		case domain.FilterToday:
			keep = t.DueDate != nil && startOfDay(t.DueDate.In(now.Location())).Equal(today)
		case domain.FilterUpcoming:
			keep = t.DueDate != nil && startOfDay(t.DueDate.In(now.Location())).After(today)
		case domain.FilterCompleted:
			keep = t.Completed
		case domain.FilterOverdue:
			keep = !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
		case domain.FilterHigh:
			keep = !t.Completed && t.Priority == domain.PriorityHigh
		default:
			keep = true
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks orders tasks for display: open before completed, overdue
// first, then by priority, then by earliest due date with undated last.
func SortTasks(list []domain.Task, now time.Time) []domain.Task {
	out := append([]domain.Task(nil), list...)
	overdue := func(t domain.Task) bool { return t.DueDate != nil && t.DueDate.Before(now) }

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if oa, ob := overdue(a), overdue(b); oa != ob {
			return oa
		}
		if ra, rb := domain.PriorityRank(a.Priority), domain.PriorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		switch {
		case a.DueDate != nil && b.DueDate != nil:
			return a.DueDate.Before(*b.DueDate)
		case a.DueDate != nil:
			return true
		}
		return false
	})
	return out
}
