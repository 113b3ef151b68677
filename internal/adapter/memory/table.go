package memory

import (
	"context"
	"sync"

	"tesnim/internal/domain"
)

var _ domain.ResourceRepository[domain.Task] = (*Table[domain.Task])(nil)

// Table is an owner-scoped collection of entities kept in insertion order.
type Table[T domain.Entity] struct {
	mu   sync.Mutex
	rows map[string][]T
}

// NewTable creates an empty table.
func NewTable[T domain.Entity]() *Table[T] {
	return &Table[T]{rows: make(map[string][]T)}
}

// List returns a copy of the owner's rows.
func (t *Table[T]) List(_ context.Context, owner string) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]T, len(t.rows[owner]))
	copy(out, t.rows[owner])
	return out, nil
}

// Get returns one row.
func (t *Table[T]) Get(_ context.Context, owner, id string) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, v := range t.rows[owner] {
		if v.EntityID() == id {
			return v, nil
		}
	}
	var zero T
	return zero, domain.ErrNotFound
}

// Put inserts v, or replaces the row with the same id.
func (t *Table[T]) Put(_ context.Context, owner string, v T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.rows[owner]
	for i := range rows {
		if rows[i].EntityID() == v.EntityID() {
			rows[i] = v
			return nil
		}
	}
	t.rows[owner] = append(rows, v)
	return nil
}

// Delete removes one row.
func (t *Table[T]) Delete(_ context.Context, owner, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.rows[owner]
	for i := range rows {
		if rows[i].EntityID() == id {
			t.rows[owner] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
