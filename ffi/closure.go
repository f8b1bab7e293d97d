package ffi

import "unsafe"

// Fn is a callback handed across the boundary: a boxed closure plus the
// function that invokes it. A scoped Fn borrows the creator's stack frame
// and must be dropped before the call it was passed to returns.
type Fn[A, R any] struct {
	Closure  Managed
	InvokeFn func(closure unsafe.Pointer, arg A) R
	Scoped   bool
}

func invokeClosure[A, R any](ptr unsafe.Pointer, arg A) R {
	return (*(*func(A) R)(ptr))(arg)
}

// NewFn boxes fn as a portable callback.
func NewFn[A, R any](fn func(A) R) Fn[A, R] {
	return Fn[A, R]{Closure: ManagedFrom(fn), InvokeFn: invokeClosure[A, R]}
}

// NewScopedFn boxes fn as a scoped callback.
func NewScopedFn[A, R any](fn func(A) R) Fn[A, R] {
	f := NewFn(fn)
	f.Scoped = true
	return f
}

// Invoke calls the closure with arg.
func (f Fn[A, R]) Invoke(arg A) R {
	return f.InvokeFn(f.Closure.Pointer, arg)
}

// Drop releases the closure.
func (f *Fn[A, R]) Drop() {
	f.Closure.Drop()
}
