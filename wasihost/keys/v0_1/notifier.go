package v0_1

import (
	"context"
	"fmt"

	"github.com/foxxorcat/setwaker"
	"github.com/foxxorcat/setwaker/internal/handles"
)

// Waker 是 guest 侧 waker 资源的句柄。
type Waker = uint32

// notifierImpl 结构体持有 setwaker:keys/notifier 的具体实现逻辑。
type notifierImpl struct {
	n      *setwaker.Notifier[uint32]
	wakers *handles.Table[setwaker.Waker]
}

func newNotifierImpl(n *setwaker.Notifier[uint32], wakers *handles.Table[setwaker.Waker]) *notifierImpl {
	return &notifierImpl{n: n, wakers: wakers}
}

// WithKey 实现 with-key 函数，为 key 创建一个新的 waker 资源。
func (i *notifierImpl) WithKey(_ context.Context, key uint32) Waker {
	return i.wakers.Add(i.n.WithKey(key))
}

// Pending 实现 pending 函数，返回等待被 drain 的 key 数量。
func (i *notifierImpl) Pending(_ context.Context) uint32 {
	return uint32(i.n.Pending())
}

// Clone 实现 [method]waker.clone 方法。
func (i *notifierImpl) Clone(_ context.Context, this Waker) Waker {
	return i.wakers.Add(i.get(this).Clone())
}

// Wake 实现 [method]waker.wake 方法。它会消耗掉句柄。
func (i *notifierImpl) Wake(_ context.Context, this Waker) {
	w, ok := i.wakers.Remove(this)
	if !ok {
		panic(fmt.Sprintf("unknown waker handle %d", this))
	}
	w.Wake()
}

// WakeByRef 实现 [method]waker.wake-by-ref 方法，句柄在调用后仍然有效。
func (i *notifierImpl) WakeByRef(_ context.Context, this Waker) {
	i.get(this).WakeByRef()
}

// DropWaker 是 waker 资源的析构函数。未知的句柄被忽略。
func (i *notifierImpl) DropWaker(_ context.Context, this Waker) {
	i.wakers.Drop(this)
}

// get 查找句柄，无效的句柄会 trap。
func (i *notifierImpl) get(this Waker) setwaker.Waker {
	w, ok := i.wakers.Get(this)
	if !ok {
		panic(fmt.Sprintf("unknown waker handle %d", this))
	}
	return w
}
