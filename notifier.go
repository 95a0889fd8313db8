package setwaker

import (
	"github.com/foxxorcat/setwaker/internal/guard"
	"github.com/foxxorcat/setwaker/internal/slot"
)

// state is shared by a Notifier, its clones and every handle derived from
// them. It lives as long as any of them is reachable.
type state[K comparable] struct {
	mu      guard.Mutex
	pending map[K]struct{}
	outer   slot.Slot
}

// wake records key and fires the outer waker, if one is stored. The outer
// waker runs after the lock is released so it may call back into the
// Notifier.
func (s *state[K]) wake(key K) {
	var outer slot.Waker
	s.mu.Do(func() {
		s.pending[key] = struct{}{}
		outer = s.outer.Take()
	})
	if outer != nil {
		outer.Wake()
	}
}

func (s *state[K]) drain(dst []K) []K {
	s.mu.Do(func() {
		if dst == nil && len(s.pending) > 0 {
			dst = make([]K, 0, len(s.pending))
		}
		for key := range s.pending {
			dst = append(dst, key)
		}
		clear(s.pending)
	})
	return dst
}

// Notifier is the owner side of a keyed wakeup set.
type Notifier[K comparable] struct {
	s *state[K]
}

// Stats counts outer notifications of a Notifier.
type Stats struct {
	// Registers is the number of non-nil Register calls.
	Registers uint64
	// Fires is the number of times a registered outer waker was woken.
	Fires uint64
}

// New returns a Notifier with an empty pending set and no outer waker.
func New[K comparable](opts ...Option) *Notifier[K] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &state[K]{pending: make(map[K]struct{}, o.capacity)}
	s.mu.Init(o.locker)
	return &Notifier[K]{s: s}
}

// Register stores a clone of w as the outer waker, discarding any waker
// stored before. The next wake of any key fires it once; wakes after that
// only record keys until Register is called again. Register(nil) disarms the
// Notifier.
func (n *Notifier[K]) Register(w Waker) {
	var outer slot.Waker
	if w != nil {
		outer = w.Clone()
	}
	n.s.mu.Do(func() {
		n.s.outer.Store(outer)
	})
}

// WithKey returns a handle that marks key pending when woken.
func (n *Notifier[K]) WithKey(key K) Waker {
	return newKeyWaker(n.s, key)
}

// DrainKeys returns every key woken since the previous drain and empties the
// pending set in the same step. The order of the returned keys is
// unspecified; the result is nil when nothing is pending.
func (n *Notifier[K]) DrainKeys() []K {
	return n.s.drain(nil)
}

// DrainInto is DrainKeys appending into dst, so an owner can reuse one buffer
// across cycles.
func (n *Notifier[K]) DrainInto(dst []K) []K {
	return n.s.drain(dst)
}

// Pending returns the number of keys waiting to be drained.
func (n *Notifier[K]) Pending() (count int) {
	n.s.mu.Do(func() {
		count = len(n.s.pending)
	})
	return count
}

// Armed reports whether an outer waker is registered and has not fired yet.
func (n *Notifier[K]) Armed() (armed bool) {
	n.s.mu.Do(func() {
		armed = n.s.outer.Armed()
	})
	return armed
}

// Poisoned reports whether a panic escaped one of the Notifier's critical
// sections. Every other operation on a poisoned Notifier panics with
// ErrPoisoned.
func (n *Notifier[K]) Poisoned() bool {
	return n.s.mu.Poisoned()
}

// Clone returns a Notifier sharing this one's pending set and outer waker.
func (n *Notifier[K]) Clone() *Notifier[K] {
	return &Notifier[K]{s: n.s}
}

// Stats returns the outer notification counters.
func (n *Notifier[K]) Stats() (st Stats) {
	n.s.mu.Do(func() {
		st.Registers, st.Fires = n.s.outer.Stats()
	})
	return st
}
