package setwaker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheReusesHandles(t *testing.T) {
	n := New[string]()
	c, err := NewCache(n, 2)
	require.NoError(t, err)

	a := c.Waker("a")
	require.Same(t, a, c.Waker("a"))
	require.Same(t, a, a.Clone())
	require.Equal(t, 1, c.Len())

	// cached handles survive Wake and Drop
	a.Wake()
	a.Drop()
	a.Wake()
	require.Equal(t, []string{"a"}, n.DrainKeys())
}

func TestCacheEviction(t *testing.T) {
	n := New[int]()
	c, err := NewCache(n, 2)
	require.NoError(t, err)

	first := c.Waker(1)
	c.Waker(2)
	c.Waker(3)
	require.Equal(t, 2, c.Len())

	// evicted handles keep working for their holders
	first.WakeByRef()
	require.Equal(t, []int{1}, n.DrainKeys())
	require.NotSame(t, first, c.Waker(1))

	c.Remove(1)
	require.Equal(t, 1, c.Len())
	c.Purge()
	require.Zero(t, c.Len())
}

func TestCacheFiresOuter(t *testing.T) {
	n := New[int]()
	c, err := NewCache(n, 4)
	require.NoError(t, err)

	var fires int
	n.Register(WakerFunc(func() { fires++ }))
	c.Waker(1).Wake()
	c.Waker(1).Wake()
	require.Equal(t, 1, fires)
	require.Equal(t, 1, n.Pending())
}

func TestNewCacheInvalidSize(t *testing.T) {
	_, err := NewCache(New[int](), 0)
	require.Error(t, err)
}

func TestCacheConcurrentMissSharesHandle(t *testing.T) {
	n := New[int]()
	c, err := NewCache(n, 8)
	require.NoError(t, err)

	const goroutines = 32
	got := make([]Waker, goroutines)
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got[i] = c.Waker(7)
		}()
	}
	close(start)
	wg.Wait()

	for _, w := range got {
		require.Same(t, got[0], w)
	}
	require.Equal(t, 1, c.Len())
}
