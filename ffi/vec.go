package ffi

import "unsafe"

// Vec is an owned growable buffer of T.
type Vec[T any] struct {
	Ptr *T
	Len int
	Cap int
}

// VecFrom transfers s into a Vec without copying. Length and capacity are
// preserved. The caller gives up s.
func VecFrom[T any](s []T) Vec[T] {
	return Vec[T]{Ptr: unsafe.SliceData(s), Len: len(s), Cap: cap(s)}
}

// Into converts v back into a slice over the same storage.
func (v Vec[T]) Into() []T {
	if v.Ptr == nil {
		return nil
	}
	return unsafe.Slice(v.Ptr, v.Cap)[:v.Len:v.Cap]
}

// Slice is a borrowed view of Len elements.
type Slice[T any] struct {
	Ptr *T
	Len int
}

// SliceFrom borrows s.
func SliceFrom[T any](s []T) Slice[T] {
	return Slice[T]{Ptr: unsafe.SliceData(s), Len: len(s)}
}

// Borrow returns the view as a slice aliasing the owner's storage.
func (s Slice[T]) Borrow() []T {
	if s.Ptr == nil {
		return nil
	}
	return unsafe.Slice(s.Ptr, s.Len)
}
