package handles

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var removed []string
	tbl := NewTable(func(s string) { removed = append(removed, s) })

	a := tbl.Add("a")
	b := tbl.Add("b")
	require.NotZero(t, a)
	require.NotEqual(t, a, b)
	require.Equal(t, 2, tbl.Len())

	v, ok := tbl.Get(a)
	require.True(t, ok)
	require.Equal(t, "a", v)

	v, ok = tbl.Remove(a)
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.Empty(t, removed, "Remove hands the value to the caller")

	_, ok = tbl.Get(a)
	require.False(t, ok)
	require.False(t, tbl.Drop(a))

	require.True(t, tbl.Drop(b))
	require.Equal(t, []string{"b"}, removed)
}

func TestTableClose(t *testing.T) {
	var removed []int
	tbl := NewTable(func(v int) { removed = append(removed, v) })
	for i := 0; i < 3; i++ {
		tbl.Add(i)
	}
	require.Equal(t, 3, tbl.Len())

	tbl.Close()
	require.Zero(t, tbl.Len())
	require.ElementsMatch(t, []int{0, 1, 2}, removed)
}

func TestTableConcurrentAdd(t *testing.T) {
	tbl := NewTable[int](nil)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint32]bool)
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := tbl.Add(i)
				mu.Lock()
				assert.False(t, seen[h], "handle %d issued twice", h)
				seen[h] = true
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 3200, tbl.Len())
	tbl.Close()
}
