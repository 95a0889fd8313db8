// Package poll 提供基于 channel 的就绪信号，可用作外层 waker。
package poll

import (
	"context"
	"reflect"
	"sync"

	"github.com/foxxorcat/setwaker"
)

// Pollable 是一个基于 channel 的就绪信号。channel 被关闭即代表“就绪”。
// 它同时实现了 setwaker.Waker，可以直接作为 Notifier 的外层 waker 注册。
// 这个实现是线程安全的。
type Pollable struct {
	mu        sync.Mutex
	readyChan chan struct{}
	cancel    func()
	closeOnce sync.Once
}

var _ setwaker.Waker = (*Pollable)(nil)

// NewPollable 创建一个尚未就绪的 Pollable。cancel 会在 Close 时被调用一次，可以为 nil。
func NewPollable(cancel func()) *Pollable {
	return &Pollable{
		readyChan: make(chan struct{}),
		cancel:    cancel,
	}
}

// NewReadyPollable 创建一个已经处于“就绪”状态的 Pollable。
func NewReadyPollable() *Pollable {
	ch := make(chan struct{})
	close(ch)
	return &Pollable{readyChan: ch}
}

// IsReady 以非阻塞方式检查 Pollable 是否就绪。
func (p *Pollable) IsReady() bool {
	select {
	case <-p.Channel():
		return true
	default:
		return false
	}
}

// Block 阻塞直到 Pollable 就绪。
func (p *Pollable) Block() {
	<-p.Channel()
}

// BlockContext 阻塞直到 Pollable 就绪或 ctx 结束。
// 两者同时满足时优先报告就绪，返回 nil。
func (p *Pollable) BlockContext(ctx context.Context) error {
	ch := p.Channel()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		select {
		case <-ch:
			return nil
		default:
		}
		return ctx.Err()
	}
}

// SetReady 将 Pollable 状态设置为就绪。这个操作是幂等的。
func (p *Pollable) SetReady() {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.readyChan:
		// 已经就绪
	default:
		close(p.readyChan)
	}
}

// Reset 将 Pollable 重置为“未就绪”状态，使其可以被再次使用。
// 如果已经处于“未就绪”状态，它不会做任何事情。
func (p *Pollable) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.readyChan:
		p.readyChan = make(chan struct{})
	default:
	}
}

// Channel 返回当前的内部 channel。
// 警告：返回的 channel 可能会在 Reset 调用后失效，主要用于 select 语句。
func (p *Pollable) Channel() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readyChan
}

// Close 调用与此 pollable 关联的取消函数（如果存在），只会调用一次。
func (p *Pollable) Close() {
	p.closeOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
	})
}

// Clone 返回自身：所有克隆共享同一个就绪状态。
func (p *Pollable) Clone() setwaker.Waker { return p }

// Wake 等价于 SetReady。
func (p *Pollable) Wake() { p.SetReady() }

// WakeByRef 等价于 SetReady。
func (p *Pollable) WakeByRef() { p.SetReady() }

// Drop 不做任何事情，Pollable 的生命周期由持有者管理。
func (p *Pollable) Drop() {}

// Poll 返回 ps 中已经就绪的下标。如果没有任何一个就绪，则阻塞直到第一个就绪
// 或 ctx 结束。输入为空时 panic，与 wasi:io/poll 的 trap 语义一致。
func Poll(ctx context.Context, ps ...*Pollable) ([]int, error) {
	if len(ps) == 0 {
		panic("poll input list cannot be empty")
	}

	// 1. 非阻塞检查
	var ready []int
	cases := make([]reflect.SelectCase, 0, len(ps)+1)
	for i, p := range ps {
		ch := p.Channel()
		select {
		case <-ch:
			ready = append(ready, i)
		default:
		}
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(ch),
		})
	}
	if len(ready) > 0 {
		return ready, nil
	}

	// 2. 阻塞等待第一个就绪的事件，最后一个 case 是 ctx
	cases = append(cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(ctx.Done()),
	})
	chosen, _, _ := reflect.Select(cases)
	if chosen == len(ps) {
		return nil, ctx.Err()
	}
	return []int{chosen}, nil
}
