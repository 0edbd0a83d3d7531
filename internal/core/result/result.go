// Package result provides Result, a success-or-failure value returned by
// repository operations instead of a bare (value, error) pair.
//
// A Result never carries both a value and an error. The zero Result is a
// success holding the zero value of T.
package result

import "fmt"

// Unit is the payload of operations that only acknowledge completion.
type Unit struct{}

// Result is either Success(value) or Failure(cause).
type Result[T any] struct {
	value T
	err   error
}

// Success wraps a successful payload.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps a failure cause. A nil cause is replaced so that a failure
// is always distinguishable from success.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = fmt.Errorf("unspecified failure")
	}
	return Result[T]{err: err}
}

// Ack returns a successful Unit result.
func Ack() Result[Unit] {
	return Success(Unit{})
}

// Of converts a conventional (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }

func (r Result[T]) IsFailure() bool { return r.err != nil }

// Get unpacks the result into the usual Go pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// Value returns the payload, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure cause, or nil on success.
func (r Result[T]) Err() error { return r.err }

// OnSuccess runs fn with the payload when the result is a success.
func (r Result[T]) OnSuccess(fn func(T)) Result[T] {
	if r.err == nil {
		fn(r.value)
	}
	return r
}

// OnFailure runs fn with the cause when the result is a failure.
func (r Result[T]) OnFailure(fn func(error)) Result[T] {
	if r.err != nil {
		fn(r.err)
	}
	return r
}

// Map transforms a successful payload, propagating failures unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}
	return Success(fn(r.value))
}

func (r Result[T]) String() string {
	if r.err != nil {
		return fmt.Sprintf("Failure(%v)", r.err)
	}
	return fmt.Sprintf("Success(%v)", r.value)
}
