// Package result provides Result, a two-case value holding either a success
// payload or a failure payload.
//
// Results are immutable. No function in this package panics or returns a Go
// error: failure is always carried as data in the Failure case. Combinators
// that change the payload type are package-level functions because Go
// methods cannot declare their own type parameters.
//
//	r := result.Map(result.Success[int, string](5), func(x int) int { return x * 2 })
//	v, _ := r.Get() // 10
package result

import "fmt"

// Result is either Success(T) or Failure(E). The zero value is a Failure
// carrying the zero E.
type Result[T, E any] struct {
	value T
	err   E
	ok    bool
}

// Success wraps a value in the Success case.
func Success[T, E any](value T) Result[T, E] {
	return Result[T, E]{value: value, ok: true}
}

// Failure wraps an error value in the Failure case.
func Failure[T, E any](err E) Result[T, E] {
	return Result[T, E]{err: err}
}

// FromError builds a Result from a conventional (value, error) pair.
func FromError[T any](value T, err error) Result[T, error] {
	if err != nil {
		return Failure[T](err)
	}
	return Success[T, error](value)
}

// IsSuccess reports whether r holds a value.
func (r Result[T, E]) IsSuccess() bool { return r.ok }

// IsFailure reports whether r holds an error.
func (r Result[T, E]) IsFailure() bool { return !r.ok }

// Value returns the success payload, or the zero T on failure.
func (r Result[T, E]) Value() T { return r.value }

// Err returns the failure payload, or the zero E on success.
func (r Result[T, E]) Err() E { return r.err }

// Get returns the payload and true on success.
func (r Result[T, E]) Get() (T, bool) { return r.value, r.ok }

// Tap runs fn with the success payload. The result is returned unchanged.
func (r Result[T, E]) Tap(fn func(T)) Result[T, E] {
	if r.ok {
		fn(r.value)
	}
	return r
}

// TapError runs fn with the failure payload. The result is returned unchanged.
func (r Result[T, E]) TapError(fn func(E)) Result[T, E] {
	if !r.ok {
		fn(r.err)
	}
	return r
}

// OrElse unwraps the success payload or returns fallback.
func (r Result[T, E]) OrElse(fallback T) T {
	if r.ok {
		return r.value
	}
	return fallback
}

// OrElseGet unwraps the success payload or derives a fallback from the error.
func (r Result[T, E]) OrElseGet(fn func(E) T) T {
	if r.ok {
		return r.value
	}
	return fn(r.err)
}

// Where turns a Success whose payload fails predicate into Failure(errIfFalse).
// Existing failures pass through untouched.
func (r Result[T, E]) Where(predicate func(T) bool, errIfFalse E) Result[T, E] {
	if r.ok && !predicate(r.value) {
		return Failure[T](errIfFalse)
	}
	return r
}

// String renders the active case, e.g. "Success(5)" or "Failure(boom)".
func (r Result[T, E]) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%v)", r.value)
	}
	return fmt.Sprintf("Failure(%v)", r.err)
}
