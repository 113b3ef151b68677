package domain

import "time"

// Todo is a lightweight checklist item, separate from Task.
type Todo struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Status    string     `json:"status,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// EntityID implements Entity.
func (t Todo) EntityID() string { return t.ID }

// Clone returns a copy that shares no memory with t.
func (t Todo) Clone() Todo {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.Tags != nil {
		t.Tags = append([]string(nil), t.Tags...)
	}
	return t
}

// HasTag reports whether tag is attached to the todo.
func (t Todo) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// TodoInput is the body of a todo creation.
type TodoInput struct {
	Text     string     `json:"text"`
	Status   string     `json:"status,omitempty"`
	Priority string     `json:"priority,omitempty"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
}

// TodoPatch carries only the todo fields being changed.
type TodoPatch struct {
	Text      *string    `json:"text,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
	Status    *string    `json:"status,omitempty"`
	Priority  *string    `json:"priority,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
}

// TodoFilter narrows a todo listing. Empty fields are ignored.
type TodoFilter struct {
	Status   string
	Priority string
	Tag      string
	DueDate  string
}

// Match reports whether t satisfies every set field of f.
func (f TodoFilter) Match(t Todo) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	if f.DueDate != "" {
		if t.DueDate == nil || t.DueDate.Format("2006-01-02") != f.DueDate {
			return false
		}
	}
	return true
}
