package setwaker

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps one reusable handle per recently used key, so an owner that
// hands the same keys out every cycle does not allocate a handle per key per
// cycle.
type Cache[K comparable] struct {
	n      *Notifier[K]
	wakers *lru.Cache[K, Waker]
}

// NewCache returns a Cache of at most size handles for keys of n.
func NewCache[K comparable](n *Notifier[K], size int) (*Cache[K], error) {
	wakers, err := lru.New[K, Waker](size)
	if err != nil {
		return nil, fmt.Errorf("setwaker: create handle cache: %w", err)
	}
	return &Cache[K]{n: n, wakers: wakers}, nil
}

// Waker returns the cached handle for key, creating it on a miss.
//
// Cached handles are never consumed: Wake behaves like WakeByRef, Clone
// returns the same handle and Drop does nothing. A handle evicted from the
// cache stays valid for anyone still holding it.
func (c *Cache[K]) Waker(key K) Waker {
	if w, ok := c.wakers.Get(key); ok {
		return w
	}
	// a concurrent miss on the same key may have added it first
	w := Waker(&sharedWaker[K]{s: c.n.s, key: key})
	if prev, ok, _ := c.wakers.PeekOrAdd(key, w); ok {
		return prev
	}
	return w
}

// Len returns the number of cached handles.
func (c *Cache[K]) Len() int {
	return c.wakers.Len()
}

// Remove forgets the cached handle for key.
func (c *Cache[K]) Remove(key K) {
	c.wakers.Remove(key)
}

// Purge forgets every cached handle.
func (c *Cache[K]) Purge() {
	c.wakers.Purge()
}

type sharedWaker[K comparable] struct {
	s   *state[K]
	key K
}

func (w *sharedWaker[K]) Clone() Waker { return w }
func (w *sharedWaker[K]) Wake()        { w.s.wake(w.key) }
func (w *sharedWaker[K]) WakeByRef()   { w.s.wake(w.key) }
func (w *sharedWaker[K]) Drop()        {}
