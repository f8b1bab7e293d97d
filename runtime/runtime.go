// Package runtime runs plugin work on the host's executor.
//
// Spawn hands a task to the host and returns a JoinHandle for its result.
// BlockOn drives a task to completion on the calling goroutine through the
// host, which is the only way to drive a task that borrows the caller's
// stack.
package runtime

import (
	"context"
	"fmt"

	"github.com/AtriKawaii/atri-go/domain/errors"
	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
)

// JoinHandle is the pending result of a spawned task.
type JoinHandle[T any] struct {
	fut  ffi.Future[ffi.Result[ffi.Managed]]
	done bool
}

// Spawn submits task to the host executor.
func Spawn[T any](task ffi.Task[T]) *JoinHandle[T] {
	fut := ffi.NewFuture(ffi.MapTask(task, ffi.ManagedFrom[T]))
	m := loader.Manager()
	return &JoinHandle[T]{fut: loader.Table().PluginManagerSpawn(m.ManagerPtr, fut)}
}

// Go submits fn to the host executor. fn runs on its own goroutine; ctx
// is cancelled if the task is abandoned.
func Go[T any](fn func(ctx context.Context) T) *JoinHandle[T] {
	return Spawn(ffi.GoTask(fn))
}

// Wait blocks until the task completes or ctx is done. A task that
// panicked or was refused by the host yields a *errors.JoinError.
func (h *JoinHandle[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	if h.done {
		return zero, &errors.JoinError{Task: "spawn", Err: fmt.Errorf("result already taken")}
	}
	h.done = true

	res, err := ffi.Drive(ctx, &h.fut)
	if err != nil {
		return zero, err
	}

	boxed, err := res.Unpack()
	if err != nil {
		return zero, &errors.JoinError{Task: "spawn", Err: err}
	}
	return ffi.Into[T](&boxed), nil
}

// Abandon releases the handle without waiting. The task keeps running on
// the host.
func (h *JoinHandle[T]) Abandon() {
	if !h.done {
		h.done = true
		h.fut.Drop()
	}
}

// BlockOn drives task to completion through the host and returns its
// value. The task may borrow the caller's stack.
func BlockOn[T any](task ffi.Task[T]) T {
	fut := ffi.NewScopedFuture(ffi.MapTask(task, ffi.ManagedFrom[T]))
	m := loader.Manager()
	boxed := loader.Table().PluginManagerBlockOn(m.ManagerPtr, fut)
	return ffi.Into[T](&boxed)
}

// Await drives a host future on the calling goroutine.
func Await[T any](ctx context.Context, fut ffi.Future[T]) (T, error) {
	return ffi.Drive(ctx, &fut)
}
