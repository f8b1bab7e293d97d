package ffi

import (
	"context"
	"sync"
)

// PollFunc adapts a plain function to Task.
type PollFunc[T any] func(cx *Context) (T, bool)

// Poll calls fn(cx).
func (fn PollFunc[T]) Poll(cx *Context) (T, bool) { return fn(cx) }

type readyTask[T any] struct {
	value T
}

func (t readyTask[T]) Poll(*Context) (T, bool) { return t.value, true }

// ReadyTask returns a Task that completes immediately with v.
func ReadyTask[T any](v T) Task[T] { return readyTask[T]{value: v} }

type mapTask[A, B any] struct {
	inner Task[A]
	fn    func(A) B
}

func (t *mapTask[A, B]) Poll(cx *Context) (B, bool) {
	v, ok := t.inner.Poll(cx)
	if !ok {
		var zero B
		return zero, false
	}
	return t.fn(v), true
}

func (t *mapTask[A, B]) Drop() {
	if d, ok := t.inner.(Dropper); ok {
		d.Drop()
	}
}

// MapTask returns a Task that completes with fn applied to inner's value.
func MapTask[A, B any](inner Task[A], fn func(A) B) Task[B] {
	return &mapTask[A, B]{inner: inner, fn: fn}
}

// goTask runs fn on its own goroutine, started on the first poll.
type goTask[T any] struct {
	fn     func(ctx context.Context) T
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	started  bool
	done     bool
	value    T
	panicked any
	waker    *Waker
}

// GoTask returns a Task that runs fn on a new goroutine and completes with
// its result. Dropping the task before completion cancels ctx. A panic in
// fn is re-raised by the poll that observes completion.
func GoTask[T any](fn func(ctx context.Context) T) Task[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &goTask[T]{fn: fn, ctx: ctx, cancel: cancel}
}

func (t *goTask[T]) Poll(cx *Context) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		if t.panicked != nil {
			panic(t.panicked)
		}
		return t.value, true
	}

	if t.waker != nil {
		t.waker.Drop()
	}
	w := cx.Waker().Clone()
	t.waker = &w

	if !t.started {
		t.started = true
		go t.run()
	}

	var zero T
	return zero, false
}

func (t *goTask[T]) run() {
	var (
		value    T
		panicked any
	)
	func() {
		defer func() { panicked = recover() }()
		value = t.fn(t.ctx)
	}()

	t.mu.Lock()
	t.value, t.panicked, t.done = value, panicked, true
	w := t.waker
	t.waker = nil
	t.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}

func (t *goTask[T]) Drop() {
	t.cancel()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.waker != nil {
		t.waker.Drop()
		t.waker = nil
	}
}
