package worker

import (
	"context"
	"sync"
)

// Task is one unit of pool work. It should return promptly once ctx is done.
type Task[T any] func(ctx context.Context) T

// Pool runs tasks on a fixed set of goroutines and streams their outputs.
// Cancelling the parent context stops each goroutine after its current task.
type Pool[T any] struct {
	size  int
	tasks chan Task[T]
	out   chan T

	busy    sync.WaitGroup
	ctx     context.Context
	stop    context.CancelFunc
	outDone sync.Once
}

// NewPool sizes the pool; anything below one runs tasks serially.
func NewPool[T any](ctx context.Context, size int) *Pool[T] {
	size = max(size, 1)
	ctx, stop := context.WithCancel(ctx)
	return &Pool[T]{
		size:  size,
		tasks: make(chan Task[T], size*2),
		out:   make(chan T, size*2),
		ctx:   ctx,
		stop:  stop,
	}
}

// Start launches the goroutines.
func (p *Pool[T]) Start() {
	p.busy.Add(p.size)
	for range p.size {
		go p.run()
	}
}

func (p *Pool[T]) run() {
	defer p.busy.Done()
	for {
		var task Task[T]
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			task = t
		}

		v := task(p.ctx)
		select {
		case p.out <- v:
		case <-p.ctx.Done():
			return
		}
	}
}

// Submit queues a task and blocks while the queue is full. It reports false
// once the pool is stopped.
func (p *Pool[T]) Submit(task Task[T]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Results streams outputs in completion order. It is closed after Close once
// the running tasks finish, or on Shutdown.
func (p *Pool[T]) Results() <-chan T { return p.out }

// Close ends submission. Submit must not be called afterwards.
func (p *Pool[T]) Close() {
	close(p.tasks)
	go func() {
		p.busy.Wait()
		p.closeOut()
	}()
}

// Wait closes the pool and gathers every output.
func (p *Pool[T]) Wait() []T {
	p.Close()
	var all []T
	for v := range p.out {
		all = append(all, v)
	}
	return all
}

// Shutdown cancels running tasks and waits for the goroutines to exit.
func (p *Pool[T]) Shutdown() {
	p.stop()
	p.busy.Wait()
	p.closeOut()
}

func (p *Pool[T]) closeOut() {
	p.outDone.Do(func() { close(p.out) })
}
