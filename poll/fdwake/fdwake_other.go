//go:build !unix

package fdwake

import (
	"sync"
	"time"
)

// Waker 在 x/sys/unix 不可用的平台上退化为容量为 1 的 channel。
// Fd 总是返回 -1。
type Waker struct {
	ch        chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New 创建 Waker。
func New() (*Waker, error) {
	return &Waker{ch: make(chan struct{}, 1), done: make(chan struct{})}, nil
}

// Fd 返回 -1：此平台上没有可供 poll 的描述符。
func (w *Waker) Fd() int { return -1 }

// Wake 触发 Waker；下一次 Wait 之前的多次唤醒会合并。
func (w *Waker) Wake() {
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// Wait 阻塞直到被唤醒或超时。负的 timeout 表示永久等待。
func (w *Waker) Wait(timeout time.Duration) (bool, error) {
	select {
	case <-w.done:
		return false, ErrClosed
	default:
	}
	var expired <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case <-w.ch:
		return true, nil
	case <-w.done:
		return false, ErrClosed
	case <-expired:
		return false, nil
	}
}

// Close 将 Waker 标记为已关闭，并唤醒所有阻塞的 Wait。
func (w *Waker) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}
