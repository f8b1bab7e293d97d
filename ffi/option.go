package ffi

// Option is a value that may be absent. Value is only meaningful when
// IsSome is true.
type Option[T any] struct {
	IsSome bool
	value  T
}

// Some wraps v.
func Some[T any](v T) Option[T] {
	return Option[T]{IsSome: true, value: v}
}

// None returns the absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// OptionFrom wraps *v, or returns None when v is nil.
func OptionFrom[T any](v *T) Option[T] {
	if v == nil {
		return None[T]()
	}
	return Some(*v)
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	if !o.IsSome {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (o Option[T]) Ptr() *T {
	if !o.IsSome {
		return nil
	}
	v := o.value
	return &v
}
