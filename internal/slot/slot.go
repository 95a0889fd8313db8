// Package slot implements the single-slot outer notification: storing a
// waker replaces the previous one, and firing hands the stored waker out
// exactly once.
package slot

// Waker is anything that can be woken.
type Waker interface {
	Wake()
}

// Slot holds at most one Waker. It is not safe for concurrent use; owners
// serialize access under their own lock and call Wake on the taken waker
// after releasing it.
type Slot struct {
	w Waker
	// stores counts Store calls, fires counts successful Take calls.
	stores uint64
	fires  uint64
}

// Store replaces the stored waker with w. Storing nil disarms the slot.
func (s *Slot) Store(w Waker) {
	s.w = w
	if w != nil {
		s.stores++
	}
}

// Take empties the slot and returns what it held, or nil if it was empty.
func (s *Slot) Take() Waker {
	w := s.w
	if w == nil {
		return nil
	}
	s.w = nil
	s.fires++
	return w
}

// Armed reports whether a waker is stored.
func (s *Slot) Armed() bool {
	return s.w != nil
}

// Stats returns how many wakers were stored and how many were handed out.
func (s *Slot) Stats() (stores, fires uint64) {
	return s.stores, s.fires
}
