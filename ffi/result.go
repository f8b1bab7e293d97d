package ffi

// Result is either a value or an error message. Value is only meaningful
// when IsOk is true, Err only when it is false.
type Result[T any] struct {
	IsOk  bool
	value T
	Err   String
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{IsOk: true, value: v}
}

// Failure wraps an error message.
func Failure[T any](msg string) Result[T] {
	return Result[T]{Err: StringFrom(msg)}
}

// FailureFrom wraps err's message.
func FailureFrom[T any](err error) Result[T] {
	return Failure[T](err.Error())
}

// Unpack returns the value, or a *ResultError carrying the message.
func (r Result[T]) Unpack() (T, error) {
	if !r.IsOk {
		var zero T
		return zero, &ResultError{Message: r.Err.Into()}
	}
	return r.value, nil
}

// ResultError is the error recovered from a failed Result.
type ResultError struct {
	Message string
}

func (e *ResultError) Error() string { return e.Message }
