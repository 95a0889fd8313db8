package keys_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/foxxorcat/setwaker"
	"github.com/foxxorcat/setwaker/poll"
	"github.com/foxxorcat/setwaker/wasihost"
	"github.com/foxxorcat/setwaker/wasihost/keys"
)

const moduleName = "setwaker:keys/notifier@0.1.0"

func instantiate(t *testing.T, opts ...wasihost.ModuleOption) (*wasihost.Host, api.Module) {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	t.Cleanup(func() { r.Close(ctx) })

	h := wasihost.NewHost(append(opts, keys.Module("0.1.0"))...)
	t.Cleanup(h.Close)
	require.NoError(t, h.Instantiate(ctx, r))

	mod := r.Module(moduleName)
	require.NotNil(t, mod)
	return h, mod
}

func call(t *testing.T, mod api.Module, name string, params ...uint64) []uint64 {
	t.Helper()
	fn := mod.ExportedFunction(name)
	require.NotNil(t, fn, "function %s not exported", name)
	results, err := fn.Call(context.Background(), params...)
	require.NoError(t, err)
	return results
}

func TestGuestWakers(t *testing.T) {
	h, mod := instantiate(t)

	h1 := call(t, mod, "with-key", 1)[0]
	h2 := call(t, mod, "with-key", 2)[0]
	h3 := call(t, mod, "with-key", 1)[0]
	require.Equal(t, 3, h.Wakers().Len())

	call(t, mod, "[method]waker.wake", h1)
	call(t, mod, "[method]waker.wake", h3)
	call(t, mod, "[method]waker.wake-by-ref", h2)

	require.Equal(t, []uint64{2}, call(t, mod, "pending"))
	require.ElementsMatch(t, []uint32{1, 2}, h.Notifier().DrainKeys())
	require.Equal(t, []uint64{0}, call(t, mod, "pending"))

	// wake consumed h1 and h3; h2 is still live
	require.Equal(t, 1, h.Wakers().Len())
	call(t, mod, "[resource-drop]waker", h2)
	require.Zero(t, h.Wakers().Len())
}

func TestGuestClone(t *testing.T) {
	h, mod := instantiate(t)

	orig := call(t, mod, "with-key", 9)[0]
	clone := call(t, mod, "[method]waker.clone", orig)[0]
	require.NotEqual(t, orig, clone)

	call(t, mod, "[resource-drop]waker", orig)
	call(t, mod, "[method]waker.wake", clone)
	require.Equal(t, []uint32{9}, h.Notifier().DrainKeys())
}

func TestGuestWakeFiresOuter(t *testing.T) {
	n := setwaker.New[uint32]()
	h, mod := instantiate(t, wasihost.WithNotifier(n))
	require.Same(t, n, h.Notifier())

	ready := poll.NewPollable(nil)
	n.Register(ready)

	w := call(t, mod, "with-key", 5)[0]
	call(t, mod, "[method]waker.wake-by-ref", w)
	require.True(t, ready.IsReady())
	require.Equal(t, []uint32{5}, n.DrainKeys())
}

func TestGuestUnknownHandleTraps(t *testing.T) {
	_, mod := instantiate(t)
	ctx := context.Background()

	w := call(t, mod, "with-key", 1)[0]
	call(t, mod, "[method]waker.wake", w)

	for _, name := range []string{"[method]waker.wake", "[method]waker.wake-by-ref", "[method]waker.clone"} {
		_, err := mod.ExportedFunction(name).Call(ctx, w)
		require.ErrorContains(t, err, "unknown waker handle", name)
	}

	// dropping an unknown handle is not a trap
	call(t, mod, "[resource-drop]waker", w)
}

func TestHostClose(t *testing.T) {
	h, mod := instantiate(t)
	call(t, mod, "with-key", 1)
	call(t, mod, "with-key", 2)
	h.Close()
	require.Zero(t, h.Wakers().Len())
}

func TestUnknownVersion(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer r.Close(ctx)

	h := wasihost.NewHost(keys.Module("9.9"))
	require.NoError(t, h.Instantiate(ctx, r))
	require.Nil(t, r.Module(moduleName))
}
