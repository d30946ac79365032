package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrPoolClosed = errors.New("worker pool is shutting down")

type task func()

// Pool runs CPU-bound work on a fixed set of goroutines so request handlers
// are never tied up by decoding or encoding.
type Pool struct {
	workers int
	ch      chan task
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.ch = make(chan task, n)
		}
	}
}

func NewPool(opts ...Option) *Pool {
	p := &Pool{
		workers: runtime.NumCPU(),
		ch:      make(chan task, 64),
	}
	for _, o := range opts {
		o(p)
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				log.WithField("worker_id", workerID).Debug("media worker started")
				for t := range p.ch {
					t()
				}
				log.WithField("worker_id", workerID).Debug("media worker stopped")
			}(i + 1)
		}
	})
}

// Workers returns the number of goroutines serving the pool.
func (p *Pool) Workers() int { return p.workers }

func (p *Pool) enqueue(ctx context.Context, t task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.ch <- t:
		return nil
	default:
	}
	log.Warn("media worker queue full, applying backpressure")
	select {
	case p.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting work and waits for queued tasks to finish.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		log.Warn("worker pool shutdown interrupted by context")
	case <-done:
		log.Info("worker pool drained")
	}
}

// Future delivers the result of a submitted task.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Await blocks until the task completes or ctx is done. A cancelled wait does
// not stop the task; it still runs to completion.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit queues fn on the pool. ctx only bounds the wait for a free queue slot.
func Submit[T any](ctx context.Context, p *Pool, fn func() (T, error)) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}
	err := p.enqueue(ctx, func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("media task panicked: %v", r)
			}
		}()
		f.val, f.err = fn()
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Run submits fn and waits for its result.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	f, err := Submit(ctx, p, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.Await(ctx)
}
