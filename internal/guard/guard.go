// Package guard provides a lock that refuses to be used again once a panic
// has escaped one of its critical sections.
package guard

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoisoned is the panic value of every Do call made after an earlier
// critical section panicked.
var ErrPoisoned = errors.New("guard: lock poisoned by a panic inside a critical section")

// Mutex serializes critical sections over any sync.Locker.
// The zero value is ready to use and locks with a sync.Mutex.
type Mutex struct {
	once sync.Once
	l    sync.Locker

	// poisoned is only read and written while l is held.
	poisoned bool
}

// Init sets the underlying locker of a zero-value Mutex; a nil l selects a
// sync.Mutex. It must be called before the first Do and has no effect
// afterwards.
func (m *Mutex) Init(l sync.Locker) {
	m.init(l)
}

func (m *Mutex) init(l sync.Locker) {
	m.once.Do(func() {
		if l == nil {
			l = &sync.Mutex{}
		}
		m.l = l
	})
}

// Do runs fn while holding the lock.
// If fn panics the Mutex is poisoned, the lock is released and the panic
// continues. Once poisoned, Do panics with ErrPoisoned without running fn.
func (m *Mutex) Do(fn func()) {
	m.init(nil)
	m.l.Lock()
	if m.poisoned {
		m.l.Unlock()
		panic(ErrPoisoned)
	}
	done := false
	defer func() {
		if !done {
			m.poisoned = true
		}
		m.l.Unlock()
	}()
	fn()
	done = true
}

// Poisoned reports whether a critical section has panicked.
func (m *Mutex) Poisoned() bool {
	m.init(nil)
	m.l.Lock()
	defer m.l.Unlock()
	return m.poisoned
}

// SpinLock is a busy-waiting sync.Locker for deployments where parking a
// goroutine costs more than the critical sections it guards.
type SpinLock struct {
	state atomic.Int32
}

// Lock spins until the lock is acquired, yielding the processor between
// attempts.
func (s *SpinLock) Lock() {
	for !s.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// TryLock acquires the lock if it is free.
func (s *SpinLock) TryLock() bool {
	return s.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlocking an unlocked SpinLock panics.
func (s *SpinLock) Unlock() {
	if !s.state.CompareAndSwap(1, 0) {
		panic("guard: unlock of unlocked SpinLock")
	}
}
