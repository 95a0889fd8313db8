package setwaker

import (
	"sync"

	"github.com/foxxorcat/setwaker/internal/guard"
)

type options struct {
	locker   sync.Locker
	capacity int
}

// Option configures a Notifier.
type Option func(*options)

// WithLocker protects the shared state with l instead of a sync.Mutex.
func WithLocker(l sync.Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// WithSpinLock protects the shared state with a spin lock. Critical sections
// are a map insert or swap, so spinning is cheaper than parking when wakes
// are frequent and short.
func WithSpinLock() Option {
	return WithLocker(&guard.SpinLock{})
}

// WithCapacity pre-sizes the pending set for n distinct keys.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
