// Package wasihost 通过 wazero host 模块把 setwaker.Notifier 暴露给 WebAssembly guest。
// guest 以 uint32 资源的形式持有 key 句柄并唤醒它们；Go 一侧注册外层 waker 并取出 key。
package wasihost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	"github.com/foxxorcat/setwaker"
	"github.com/foxxorcat/setwaker/internal/handles"
)

// Implementation 是所有 host 模块必须实现的接口。
type Implementation interface {
	// Name 返回模块的名称，例如 "setwaker:keys/notifier"。
	Name() string
	// Versions 返回此实现兼容的版本列表，例如 ["0.1.0"]。
	Versions() []string
	// Instantiate 将模块的函数导出到 wazero 运行时。
	Instantiate(context.Context, *Host, wazero.HostModuleBuilder) error
}

// Host 是所有 host 模块实现的容器，持有它们共享的 Notifier 和 waker 句柄表。
type Host struct {
	notifier *setwaker.Notifier[uint32]
	wakers   *handles.Table[setwaker.Waker]

	implementations []Implementation
}

// ModuleOption 是用于配置 Host 的选项函数。
type ModuleOption func(*Host)

// WithNotifier 让 Host 使用一个已有的 Notifier，而不是新建一个。
func WithNotifier(n *setwaker.Notifier[uint32]) ModuleOption {
	return func(h *Host) {
		if n != nil {
			h.notifier = n
		}
	}
}

// NewHost 创建一个新的 Host 实例，并应用所有提供的模块选项。
func NewHost(opts ...ModuleOption) *Host {
	h := &Host{
		notifier: setwaker.New[uint32](),
		wakers: handles.NewTable(func(w setwaker.Waker) {
			w.Drop()
		}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) AddImplementation(impl Implementation) {
	h.implementations = append(h.implementations, impl)
}

// Instantiate 将所有已配置的模块实例化到 wazero 运行时，模块名为 name@version。
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) error {
	for _, impl := range h.implementations {
		for _, version := range impl.Versions() {
			moduleName := impl.Name() + "@" + version
			builder := r.NewHostModuleBuilder(moduleName)
			if err := impl.Instantiate(ctx, h, builder); err != nil {
				return fmt.Errorf("wasihost: build %s: %w", moduleName, err)
			}
			if _, err := builder.Instantiate(ctx); err != nil {
				return fmt.Errorf("wasihost: instantiate %s: %w", moduleName, err)
			}
		}
	}
	return nil
}

// Notifier 返回 guest 的 waker 所指向的 Notifier。
func (h *Host) Notifier() *setwaker.Notifier[uint32] {
	return h.notifier
}

// Wakers 返回 guest 持有的 waker 句柄表。
func (h *Host) Wakers() *handles.Table[setwaker.Waker] {
	return h.wakers
}

// Close 释放 guest 仍然持有的所有 waker。已经记录的 key 不受影响。
func (h *Host) Close() {
	h.wakers.Close()
}
