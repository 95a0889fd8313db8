// Package fdwake 提供一个通过文件描述符发出信号的外层 waker，
// 供使用 poll、epoll 或 kqueue 而不是 Go channel 多路复用的事件循环使用。
package fdwake

import (
	"errors"

	"github.com/foxxorcat/setwaker"
)

// ErrClosed 在对已关闭的 Waker 调用 Wait 时返回。
var ErrClosed = errors.New("fdwake: closed")

var _ setwaker.Waker = (*Waker)(nil)

// Clone 返回 Waker 本身；所有克隆共享同一个描述符。
func (w *Waker) Clone() setwaker.Waker { return w }

// WakeByRef 等同于 Wake。
func (w *Waker) WakeByRef() { w.Wake() }

// Drop 什么也不做；描述符由 Close 释放。
func (w *Waker) Drop() {}
