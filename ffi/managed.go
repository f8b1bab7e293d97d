package ffi

import (
	"unsafe"

	"github.com/AtriKawaii/atri-go/internal/abi"
)

// Dropper is implemented by boxed values that hold resources beyond their
// memory. Drop runs exactly once, when the owning Managed is destroyed.
type Dropper interface {
	Drop()
}

// Managed is an opaque owned value: a pointer to its storage and the
// function that destroys it. The holder must destroy it exactly once,
// either by calling Drop or by moving it out with Into.
type Managed struct {
	Pointer    unsafe.Pointer
	Destructor func(unsafe.Pointer)
}

func noopDestructor(unsafe.Pointer) {}

// ManagedFrom boxes value on the heap and takes ownership of the box.
func ManagedFrom[T any](value T) Managed {
	box := new(T)
	*box = value
	return ManagedFromPointer(box)
}

// sizedBox gives a zero-size value storage of its own. Go may hand every
// zero-size allocation the same address, and the ledger is keyed by address.
type sizedBox[T any] struct {
	value T
	_     byte
}

// ManagedFromPointer takes ownership of an existing box. A nil box yields
// the null Managed. Zero-size values are moved into a box with a distinct
// address, so the result does not alias box.
func ManagedFromPointer[T any](box *T) Managed {
	if box == nil {
		return NullManaged()
	}
	if unsafe.Sizeof(*box) == 0 {
		box = &new(sizedBox[T]).value
	}
	ptr := unsafe.Pointer(box)
	abi.Pin(ptr, int(unsafe.Sizeof(*box)))
	return Managed{Pointer: ptr, Destructor: dropBox[T]}
}

// ManagedStatic wraps a reference that outlives the process. Destroying
// the result does nothing.
func ManagedStatic[T any](ref *T) Managed {
	return Managed{Pointer: unsafe.Pointer(ref), Destructor: noopDestructor}
}

// NullManaged returns a Managed that holds nothing.
func NullManaged() Managed {
	return Managed{Destructor: noopDestructor}
}

func dropBox[T any](ptr unsafe.Pointer) {
	if !abi.Unpin(ptr) {
		return
	}
	box := (*T)(ptr)
	if d, ok := any(box).(Dropper); ok {
		d.Drop()
	} else if d, ok := any(*box).(Dropper); ok {
		d.Drop()
	}
	var zero T
	*box = zero
}

// IsNull reports whether m holds no value.
func (m Managed) IsNull() bool { return m.Pointer == nil }

// Drop destroys the value and leaves m null.
func (m *Managed) Drop() {
	ptr, destroy := m.Pointer, m.Destructor
	*m = NullManaged()
	if destroy != nil {
		destroy(ptr)
	}
}

// Into moves the value out of m without running its destructor and
// leaves m null. The null Managed yields the zero value.
// T must be the type m was created from.
func Into[T any](m *Managed) T {
	ptr := m.Pointer
	*m = NullManaged()
	if ptr == nil {
		var zero T
		return zero
	}
	abi.Unpin(ptr)
	return *(*T)(ptr)
}

// As borrows the boxed value. T must be the type m was created from.
func As[T any](m Managed) *T {
	return (*T)(m.Pointer)
}
