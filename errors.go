package setwaker

import (
	"errors"

	"github.com/foxxorcat/setwaker/internal/guard"
)

var (
	// ErrReleased is the panic value of Clone, Wake and WakeByRef on a handle
	// that was already consumed by Wake or released by Drop.
	ErrReleased = errors.New("setwaker: use of released waker")

	// ErrPoisoned is the panic value of every operation on a Notifier whose
	// shared state was left inconsistent by a panic in a critical section,
	// typically an unhashable key behind an interface-typed K.
	ErrPoisoned = guard.ErrPoisoned
)
