package ffi

import "unsafe"

// FuncPointer returns the opaque word backing the func value fn.
// A nil func yields a nil pointer.
func FuncPointer[F any](fn F) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&fn))
}

// FuncFrom reinterprets p as a func value of type F.
// p must have been produced by FuncPointer from a func of exactly type F.
func FuncFrom[F any](p unsafe.Pointer) F {
	return *(*F)(unsafe.Pointer(&p))
}

// Lookup resolves a numeric function id to the function registered under
// it, or nil when the id is unknown.
type Lookup func(id uint16) unsafe.Pointer

// Handle is an opaque host object such as a client, group or friend.
type Handle = unsafe.Pointer

// PHandle is a pointer to a Handle owned by the host. It is valid for as
// long as the object it was obtained from.
type PHandle = *Handle
