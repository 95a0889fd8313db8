package v0_1

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/foxxorcat/setwaker/wasihost"
)

// --- setwaker:keys/notifier@0.1.0 implementation ---

type keysNotifier struct{}

func NewNotifier() wasihost.Implementation {
	return &keysNotifier{}
}

func (i *keysNotifier) Name() string       { return "setwaker:keys/notifier" }
func (i *keysNotifier) Versions() []string { return []string{"0.1.0"} }

func (i *keysNotifier) Instantiate(_ context.Context, h *wasihost.Host, builder wazero.HostModuleBuilder) error {
	handler := newNotifierImpl(h.Notifier(), h.Wakers())
	builder.NewFunctionBuilder().WithFunc(handler.WithKey).Export("with-key")
	builder.NewFunctionBuilder().WithFunc(handler.Pending).Export("pending")

	// waker 资源的方法与析构函数
	builder.NewFunctionBuilder().WithFunc(handler.Clone).Export("[method]waker.clone")
	builder.NewFunctionBuilder().WithFunc(handler.Wake).Export("[method]waker.wake")
	builder.NewFunctionBuilder().WithFunc(handler.WakeByRef).Export("[method]waker.wake-by-ref")
	builder.NewFunctionBuilder().WithFunc(handler.DropWaker).Export("[resource-drop]waker")
	return nil
}
