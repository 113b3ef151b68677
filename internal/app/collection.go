package app

import (
	"sync"

	"tesnim/internal/domain"
)

// collection is the shared state behind every domain store: the entities,
// a loading flag and the last error. Fetch responses are tagged with a
// generation so a slow, older fetch cannot overwrite a newer one.
type collection[T domain.Entity] struct {
	mu      sync.Mutex
	items   []T
	pending int
	err     string
	gen     uint64
	closed  bool
}

func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T]) loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

func (c *collection[T]) lastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.items {
		if v.EntityID() == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// begin marks a call in flight and returns the generation it belongs to.
func (c *collection[T]) begin(fetch bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fetch {
		c.gen++
	}
	c.pending++
	c.err = ""
	return c.gen
}

func (c *collection[T]) done() {
	if c.pending > 0 {
		c.pending--
	}
}

// fail records err unless the store was closed. The collection is left as is.
func (c *collection[T]) fail(err error, fallback string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done()
	if c.closed {
		return
	}
	c.err = message(err, fallback)
}

// replaceAll installs a fetch result if gen is still the newest fetch.
func (c *collection[T]) replaceAll(gen uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done()
	if c.closed || gen != c.gen {
		return false
	}
	c.items = append([]T(nil), items...)
	return true
}

// failFetch records a fetch error unless a newer fetch superseded it.
func (c *collection[T]) failFetch(gen uint64, err error, fallback string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done()
	if c.closed || gen != c.gen {
		return
	}
	c.err = message(err, fallback)
}

func (c *collection[T]) add(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done()
	if c.closed {
		return
	}
	c.items = append(c.items, v)
}

// set replaces the entity with v's id; absent ids are ignored.
func (c *collection[T]) set(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done()
	if c.closed {
		return false
	}
	for i := range c.items {
		if c.items[i].EntityID() == v.EntityID() {
			c.items[i] = v
			return true
		}
	}
	return false
}

func (c *collection[T]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done()
	if c.closed {
		return
	}
	for i := range c.items {
		if c.items[i].EntityID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// load installs items without a network call, e.g. from the local cache.
func (c *collection[T]) load(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
}

func (c *collection[T]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
