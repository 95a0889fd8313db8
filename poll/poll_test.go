package poll

import (
	"context"
	"testing"
	"time"

	"github.com/foxxorcat/setwaker"
	"github.com/stretchr/testify/require"
)

func TestPollableLifecycle(t *testing.T) {
	closed := 0
	p := NewPollable(func() { closed++ })
	require.False(t, p.IsReady())

	p.SetReady()
	p.SetReady()
	require.True(t, p.IsReady())
	p.Block()

	p.Reset()
	require.False(t, p.IsReady())
	p.Reset()
	require.False(t, p.IsReady())

	p.Close()
	p.Close()
	require.Equal(t, 1, closed)

	require.True(t, NewReadyPollable().IsReady())
	NewReadyPollable().Close()
}

func TestPollableAsOuterWaker(t *testing.T) {
	n := setwaker.New[string]()
	p := NewPollable(nil)
	n.Register(p)

	go func() {
		time.Sleep(10 * time.Millisecond)
		n.WithKey("x").Wake()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.BlockContext(ctx))
	require.Equal(t, []string{"x"}, n.DrainKeys())

	// the clone registered is the pollable itself
	require.Same(t, p, p.Clone())
	p.Drop()
	p.Reset()
	p.WakeByRef()
	require.True(t, p.IsReady())
}

func TestBlockContext(t *testing.T) {
	p := NewPollable(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, p.BlockContext(ctx), context.DeadlineExceeded)

	// ready wins over a finished context
	p.SetReady()
	require.NoError(t, p.BlockContext(ctx))
}

func TestPoll(t *testing.T) {
	ctx := context.Background()
	a, b, c := NewPollable(nil), NewPollable(nil), NewPollable(nil)

	a.SetReady()
	c.SetReady()
	ready, err := Poll(ctx, a, b, c)
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, ready)

	a.Reset()
	c.Reset()
	go func() {
		time.Sleep(10 * time.Millisecond)
		b.SetReady()
	}()
	ready, err = Poll(ctx, a, b, c)
	require.NoError(t, err)
	require.Equal(t, []int{1}, ready)
}

func TestPollContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ready, err := Poll(ctx, NewPollable(nil))
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, ready)

	require.Panics(t, func() { _, _ = Poll(context.Background()) })
}
