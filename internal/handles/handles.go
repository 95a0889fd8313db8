// Package handles maps uint32 handles to host-owned values, so a value can be
// referred to from a wasm guest by number.
package handles

import (
	"sync"
)

// Table is a thread-safe handle table for values of type T. Handles start at
// 1; 0 is never issued.
type Table[T any] struct {
	mu       sync.RWMutex
	values   map[uint32]T
	nextID   uint32
	onRemove func(T)
}

// NewTable creates a table. onRemove, if not nil, runs for every value
// released through Drop or Close.
func NewTable[T any](onRemove func(T)) *Table[T] {
	return &Table[T]{
		values:   make(map[uint32]T),
		onRemove: onRemove,
	}
}

// Add stores v and returns its handle.
func (t *Table[T]) Add(v T) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		t.nextID++
		if t.nextID == 0 {
			continue
		}
		if _, used := t.values[t.nextID]; !used {
			break
		}
	}
	t.values[t.nextID] = v
	return t.nextID
}

// Get returns the value behind h.
func (t *Table[T]) Get(h uint32) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[h]
	return v, ok
}

// Remove takes the value behind h out of the table without running onRemove;
// the caller owns it afterwards.
func (t *Table[T]) Remove(h uint32) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[h]
	if ok {
		delete(t.values, h)
	}
	return v, ok
}

// Drop removes h and runs onRemove on its value. It reports whether h was
// present.
func (t *Table[T]) Drop(h uint32) bool {
	v, ok := t.Remove(h)
	if ok && t.onRemove != nil {
		t.onRemove(v)
	}
	return ok
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Close empties the table, running onRemove on every value.
func (t *Table[T]) Close() {
	t.mu.Lock()
	values := t.values
	t.values = make(map[uint32]T)
	t.mu.Unlock()

	if t.onRemove == nil {
		return
	}
	for _, v := range values {
		t.onRemove(v)
	}
}
