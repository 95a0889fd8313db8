package setwaker

import "sync/atomic"

// Waker is a suspension handle: the capability set a runtime needs to wake
// whatever is parked on it.
//
// Wake consumes the handle; Clone, WakeByRef and Wake on a consumed or
// dropped handle panic with ErrReleased. Drop releases the handle without
// waking and may be called more than once.
type Waker interface {
	// Clone returns an equivalent handle that is released independently.
	Clone() Waker
	// Wake wakes and consumes the handle.
	Wake()
	// WakeByRef wakes without consuming the handle.
	WakeByRef()
	// Drop releases the handle without waking.
	Drop()
}

// WakerFunc adapts a plain function to a Waker. Clone returns the same
// function and Drop does nothing, so a WakerFunc can be woken any number of
// times.
type WakerFunc func()

func (f WakerFunc) Clone() Waker { return f }
func (f WakerFunc) Wake()        { f() }
func (f WakerFunc) WakeByRef()   { f() }
func (f WakerFunc) Drop()        {}

// keyWaker is the handle returned by Notifier.WithKey. A nil state pointer
// marks it released.
type keyWaker[K comparable] struct {
	s   atomic.Pointer[state[K]]
	key K
}

func newKeyWaker[K comparable](s *state[K], key K) *keyWaker[K] {
	w := &keyWaker[K]{key: key}
	w.s.Store(s)
	return w
}

func (w *keyWaker[K]) Clone() Waker {
	return newKeyWaker(w.load(), w.key)
}

func (w *keyWaker[K]) Wake() {
	s := w.s.Swap(nil)
	if s == nil {
		panic(ErrReleased)
	}
	s.wake(w.key)
}

func (w *keyWaker[K]) WakeByRef() {
	w.load().wake(w.key)
}

func (w *keyWaker[K]) Drop() {
	w.s.Store(nil)
}

func (w *keyWaker[K]) load() *state[K] {
	s := w.s.Load()
	if s == nil {
		panic(ErrReleased)
	}
	return s
}
