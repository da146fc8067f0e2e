package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// sleepTask returns id after d, or the context error.
func sleepTask(id int, d time.Duration) Task[error] {
	return func(ctx context.Context) error {
		select {
		case <-time.After(d):
			if id < 0 {
				return errors.New("negative id")
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func feed[T any](p *Pool[T], tasks ...Task[T]) {
	go func() {
		for _, t := range tasks {
			p.Submit(t)
		}
		p.Close()
	}()
}

func TestNewPool_Size(t *testing.T) {
	for in, want := range map[int]int{5: 5, 0: 1, -3: 1} {
		if got := NewPool[int](context.Background(), in).size; got != want {
			t.Errorf("NewPool(%d).size = %d, want %d", in, got, want)
		}
	}
}

func TestPool_Wait(t *testing.T) {
	p := NewPool[int](context.Background(), 3)
	p.Start()
	for i := range 10 {
		p.Submit(func(context.Context) int { return i * i })
	}

	sum := 0
	got := p.Wait()
	for _, v := range got {
		sum += v
	}
	if len(got) != 10 || sum != 285 {
		t.Errorf("got %d outputs summing to %d, want 10 and 285", len(got), sum)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const size = 4
	p := NewPool[struct{}](context.Background(), size)
	p.Start()

	var running, peak, done atomic.Int32
	tasks := make([]Task[struct{}], 60)
	for i := range tasks {
		tasks[i] = func(context.Context) struct{} {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
			return struct{}{}
		}
	}
	feed(p, tasks...)
	for range p.Results() {
	}

	if done.Load() != int32(len(tasks)) {
		t.Errorf("finished %d of %d tasks", done.Load(), len(tasks))
	}
	if peak.Load() > size {
		t.Errorf("peak concurrency %d above pool size %d", peak.Load(), size)
	}
}

func TestPool_TaskErrors(t *testing.T) {
	p := NewPool[error](context.Background(), 2)
	p.Start()
	feed(p, sleepTask(1, 0), sleepTask(-1, 0), sleepTask(2, time.Millisecond))

	failed, total := 0, 0
	for err := range p.Results() {
		total++
		if err != nil {
			failed++
		}
	}
	if total != 3 || failed != 1 {
		t.Errorf("total %d failed %d, want 3 and 1", total, failed)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := NewPool[error](context.Background(), 2)
	p.Start()
	p.Shutdown()

	accepted := make(chan bool, 1)
	go func() { accepted <- p.Submit(sleepTask(1, 0)) }()

	select {
	case ok := <-accepted:
		if ok {
			t.Error("Submit accepted a task after Shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after Shutdown")
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool[error](ctx, 1)
	p.Start()

	started := make(chan struct{})
	p.Submit(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	cancel()

	if p.Submit(sleepTask(2, 0)) {
		t.Error("Submit accepted a task after the parent was cancelled")
	}

	drained := make(chan struct{})
	go func() {
		p.Close()
		for range p.Results() {
		}
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("results never closed after cancel")
	}
}

func TestPool_ShutdownInterruptsTasks(t *testing.T) {
	p := NewPool[error](context.Background(), 2)
	p.Start()

	started := make(chan struct{})
	p.Submit(func(ctx context.Context) error {
		close(started)
		return sleepTask(1, time.Minute)(ctx)
	})
	<-started

	stopped := make(chan struct{})
	go func() {
		p.Shutdown()
		for range p.Results() {
		}
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not interrupt the running task")
	}
}
