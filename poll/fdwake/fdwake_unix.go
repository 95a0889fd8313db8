//go:build unix

package fdwake

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// Waker 是一个非阻塞的自管道（self-pipe）。Wake 使读端可读；
// 下一次 Wait 之前的任意多次唤醒合并为一次可读事件。
type Waker struct {
	mu      sync.RWMutex
	r, w    int
	closed  bool
	closing atomic.Bool
}

// New 创建管道。
func New() (*Waker, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, fmt.Errorf("fdwake: pipe: %w", err)
	}
	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return nil, fmt.Errorf("fdwake: set nonblock: %w", err)
		}
	}
	return &Waker{r: fds[0], w: fds[1]}, nil
}

// Fd 返回可加入外部 poller 的读端，关闭后返回 -1。
func (w *Waker) Fd() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return -1
	}
	return w.r
}

// Wake 使读端可读。管道已满说明已有未消费的唤醒，因此 EAGAIN 不算错误。
// 对已关闭的 Waker 调用 Wake 什么也不做。
func (w *Waker) Wake() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	for {
		_, err := unix.Write(w.w, []byte{1})
		if err == unix.EINTR {
			continue
		}
		if err != nil && err != unix.EAGAIN {
			panic(fmt.Sprintf("fdwake: write: %v", err))
		}
		return
	}
}

// Wait 阻塞直到 Waker 被唤醒或超时，然后消费所有未处理的唤醒。
// 负的 timeout 表示永久等待；不足一毫秒的部分向上取整。
// 返回值表示是否消费到了唤醒。
func (w *Waker) Wait(timeout time.Duration) (bool, error) {
	if w.closing.Load() {
		return false, ErrClosed
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false, ErrClosed
	}

	fds := []unix.PollFd{{Fd: int32(w.r), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, pollTimeout(timeout))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("fdwake: poll: %w", err)
		}
		if n == 0 {
			return false, nil
		}
		break
	}
	return w.drain()
}

// pollTimeout 把 timeout 换算成 unix.Poll 的毫秒数。
func pollTimeout(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}

// drain 清空管道。调用时必须持有 mu 的读锁。
func (w *Waker) drain() (bool, error) {
	var buf [64]byte
	woken := false
	for {
		n, err := unix.Read(w.r, buf[:])
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return woken, nil
		case err != nil:
			return woken, fmt.Errorf("fdwake: read: %w", err)
		case n == 0:
			return woken, nil
		}
		woken = true
		if n < len(buf) {
			return woken, nil
		}
	}
}

// Close 关闭管道的两端。Close 时仍阻塞在 Wait 中的调用都会被唤醒，
// 并在描述符关闭之前返回。
func (w *Waker) Close() error {
	if w.closing.Swap(true) {
		return nil
	}
	// 每个 Wait 只消费一个字节，持续写入直到所有读者退出。
	for !w.mu.TryLock() {
		w.Wake()
		runtime.Gosched()
	}
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	e1 := unix.Close(w.r)
	e2 := unix.Close(w.w)
	if e1 != nil {
		return e1
	}
	return e2
}
