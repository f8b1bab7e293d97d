package ffi

import (
	"context"
	"unsafe"
)

// Poll is the outcome of polling a Future once.
type Poll[T any] struct {
	Ready bool
	Value T
}

// PollReady returns a ready Poll holding v.
func PollReady[T any](v T) Poll[T] { return Poll[T]{Ready: true, Value: v} }

// PollPending returns a pending Poll.
func PollPending[T any]() Poll[T] { return Poll[T]{} }

// Future is a suspendable computation handed across the boundary.
//
// The poller drives it by calling PollOnce with a Context. A pending
// result means the task has arranged to wake the context's waker once
// progress is possible. After a ready result the future must not be
// polled again. Drop releases the task at any point, including before
// completion.
//
// A scoped future borrows state from the creator's stack frame and may
// only be driven to completion within the call it was passed to.
type Future[T any] struct {
	Task   Managed
	PollFn func(task unsafe.Pointer, cx *Context) Poll[T]
	Scoped bool
}

// Task is the Go side of a Future.
type Task[T any] interface {
	Poll(cx *Context) (T, bool)
}

func pollTask[T any](ptr unsafe.Pointer, cx *Context) Poll[T] {
	v, ok := (*(*Task[T])(ptr)).Poll(cx)
	return Poll[T]{Ready: ok, Value: v}
}

// NewFuture boxes task as a portable Future. A task that implements
// Dropper is dropped together with the future.
func NewFuture[T any](task Task[T]) Future[T] {
	return Future[T]{Task: ManagedFrom(task), PollFn: pollTask[T]}
}

// NewScopedFuture boxes task as a scoped Future. Hosts refuse to spawn
// scoped futures.
func NewScopedFuture[T any](task Task[T]) Future[T] {
	f := NewFuture(task)
	f.Scoped = true
	return f
}

// ReadyFuture returns a Future that completes on the first poll.
func ReadyFuture[T any](v T) Future[T] {
	return NewFuture[T](ReadyTask(v))
}

// PollOnce polls f with cx.
func (f *Future[T]) PollOnce(cx *Context) Poll[T] {
	return f.PollFn(f.Task.Pointer, cx)
}

// Drop releases the task.
func (f *Future[T]) Drop() {
	f.Task.Drop()
}

// Drive polls f until it completes or ctx is done, then releases it.
// Each pending result parks the calling goroutine until the waker fires.
func Drive[T any](ctx context.Context, f *Future[T]) (T, error) {
	defer f.Drop()

	wake := make(chan struct{}, 1)
	w := WakerFunc(func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	cx := NewContext(&w)

	for {
		if p := f.PollOnce(cx); p.Ready {
			return p.Value, nil
		}
		select {
		case <-wake:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
