package domain

import "time"

// TaskPriority ranks a task; see PriorityRank for ordering.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PriorityRank orders priorities high before medium before low.
func PriorityRank(p TaskPriority) int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Task is a unit of work with an optional due date.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Completed   bool         `json:"completed"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// EntityID implements Entity.
func (t Task) EntityID() string { return t.ID }

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// TaskInput is the body of a task creation.
type TaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	Completed   bool         `json:"completed"`
}

// TaskPatch carries only the task fields being changed.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	Completed   *bool         `json:"completed,omitempty"`
}

// TaskFilter selects a derived view of the task list.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterToday     TaskFilter = "today"
	FilterUpcoming  TaskFilter = "upcoming"
	FilterCompleted TaskFilter = "completed"
	FilterOverdue   TaskFilter = "overdue"
	FilterHigh      TaskFilter = "high"
)

// Valid reports whether f is a known filter.
func (f TaskFilter) Valid() bool {
	switch f {
	case FilterAll, FilterToday, FilterUpcoming, FilterCompleted, FilterOverdue, FilterHigh:
		return true
	}
	return false
}

// TaskStats are completion counters computed by the backend.
type TaskStats struct {
	CompletedToday     int `json:"completedToday"`
	CompletedYesterday int `json:"completedYesterday"`
	CompletedThisWeek  int `json:"completedThisWeek"`
}

// TaskList is the body of GET /tasks.
type TaskList struct {
	Tasks []Task     `json:"tasks"`
	Stats *TaskStats `json:"stats,omitempty"`
}
