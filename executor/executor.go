// Package executor is a small outer scheduler built on setwaker: it keeps a
// set of tasks, sleeps on one Pollable, and re-polls only the tasks whose
// wakers fired.
package executor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/foxxorcat/setwaker"
	"github.com/foxxorcat/setwaker/poll"
)

// Task is polled with a waker for itself. It returns true when finished.
// A task that returns false must arrange for w to be woken when it can make
// progress, otherwise it is never polled again.
type Task func(w setwaker.Waker) bool

const defaultCacheSize = 1024

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(l *log.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConcurrency polls up to n woken tasks of one batch in parallel.
func WithConcurrency(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithCacheSize bounds the number of cached per-task wakers.
func WithCacheSize(n int) Option {
	return func(e *Executor) {
		e.cacheSize = n
	}
}

// Executor runs tasks until they finish.
type Executor struct {
	n      *setwaker.Notifier[uint64]
	wakers *setwaker.Cache[uint64]
	ready  *poll.Pollable

	mu     sync.Mutex
	tasks  map[uint64]Task
	nextID uint64

	concurrency int
	cacheSize   int
	logger      *log.Logger
}

// New creates an Executor.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{
		n:           setwaker.New[uint64](),
		ready:       poll.NewPollable(nil),
		tasks:       make(map[uint64]Task),
		concurrency: 1,
		cacheSize:   defaultCacheSize,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	wakers, err := setwaker.NewCache(e.n, e.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	e.wakers = wakers
	return e, nil
}

// Spawn adds t and schedules its first poll. It is safe to call from any
// goroutine, including from inside a running task.
func (e *Executor) Spawn(t Task) uint64 {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.tasks[id] = t
	e.mu.Unlock()

	e.wakers.Waker(id).Wake()
	return id
}

// Len returns the number of unfinished tasks.
func (e *Executor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// Run polls woken tasks until none are left, then returns nil. It returns
// ctx.Err() if ctx ends first. Run must not be called concurrently with
// itself.
func (e *Executor) Run(ctx context.Context) error {
	var keys []uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.Len() == 0 {
			return nil
		}

		// register before draining: a wake landing after the drain fires ready
		e.ready.Reset()
		e.n.Register(e.ready)
		keys = e.n.DrainInto(keys[:0])
		if len(keys) == 0 {
			if err := e.ready.BlockContext(ctx); err != nil {
				return err
			}
			continue
		}
		e.runBatch(keys)
	}
}

func (e *Executor) runBatch(ids []uint64) {
	if e.concurrency <= 1 || len(ids) == 1 {
		for _, id := range ids {
			e.poll(id)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			e.poll(id)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Executor) poll(id uint64) {
	e.mu.Lock()
	t, ok := e.tasks[id]
	e.mu.Unlock()
	if !ok {
		// woken after it finished
		return
	}
	if !e.call(id, t) {
		return
	}
	e.mu.Lock()
	delete(e.tasks, id)
	e.mu.Unlock()
	e.wakers.Remove(id)
}

func (e *Executor) call(id uint64, t Task) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("executor: task %d panicked: %v", id, r)
			done = true
		}
	}()
	return t(e.wakers.Waker(id))
}
