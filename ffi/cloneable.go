package ffi

import "unsafe"

// Cloneable is implemented by values that know how to deep-copy themselves.
type Cloneable[T any] interface {
	Clone() T
}

// ManagedCloneable is a Managed value that can also be duplicated through
// its bound clone function. Clones are independent: destroying one leaves
// the others intact.
type ManagedCloneable struct {
	Value  Managed
	Cloner func(unsafe.Pointer) ManagedCloneable
}

// CloneableFrom boxes value and binds clone as its duplication function.
func CloneableFrom[T any](value T, clone func(T) T) ManagedCloneable {
	var cloner func(unsafe.Pointer) ManagedCloneable
	cloner = func(ptr unsafe.Pointer) ManagedCloneable {
		return ManagedCloneable{Value: ManagedFrom(clone(*(*T)(ptr))), Cloner: cloner}
	}
	return ManagedCloneable{Value: ManagedFrom(value), Cloner: cloner}
}

// CloneableOf boxes a value that implements Cloneable.
func CloneableOf[T Cloneable[T]](value T) ManagedCloneable {
	return CloneableFrom(value, func(v T) T { return v.Clone() })
}

// CloneableCopy boxes a value whose plain copy is a valid clone.
func CloneableCopy[T any](value T) ManagedCloneable {
	return CloneableFrom(value, func(v T) T { return v })
}

// NullCloneable returns a cloneable that holds nothing. Its clones are
// also null.
func NullCloneable() ManagedCloneable {
	return ManagedCloneable{Value: NullManaged(), Cloner: cloneNull}
}

func cloneNull(unsafe.Pointer) ManagedCloneable { return NullCloneable() }

// Pointer returns the storage of the held value.
func (c ManagedCloneable) Pointer() unsafe.Pointer { return c.Value.Pointer }

// IsNull reports whether c holds no value.
func (c ManagedCloneable) IsNull() bool { return c.Value.IsNull() }

// Clone produces an independent duplicate.
func (c ManagedCloneable) Clone() ManagedCloneable {
	if c.Cloner == nil || c.Value.IsNull() {
		return NullCloneable()
	}
	return c.Cloner(c.Value.Pointer)
}

// Duplicate clones c and returns the clone as a plain Managed.
func (c ManagedCloneable) Duplicate() Managed {
	return c.Clone().Value
}

// Drop destroys the held value and leaves c null.
func (c *ManagedCloneable) Drop() {
	c.Value.Drop()
	c.Cloner = cloneNull
}

// IntoValue moves the held value out of c. T must be the boxed type.
func IntoValue[T any](c *ManagedCloneable) T {
	v := Into[T](&c.Value)
	c.Cloner = cloneNull
	return v
}
