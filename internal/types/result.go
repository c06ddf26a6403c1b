package types

// Result is a tagged outcome of a fallible read. It keeps "failed" and
// "succeeded with an empty value" impossible to conflate.
type Result[T any] struct {
	value T
	err   error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the success value; meaningful only when IsOk.
func (r Result[T]) Value() T {
	return r.value
}

func (r Result[T]) Err() error {
	return r.err
}

// Unpack returns the result in the conventional (value, error) shape.
func (r Result[T]) Unpack() (T, error) {
	return r.value, r.err
}
