// Package option provides Option, a value that is either present (Some) or
// absent (None).
package option

import (
	"fmt"

	"github.com/zoobzio/lineage/result"
)

// Option is either Some(T) or None. The zero value is None.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, ok: true}
}

// None returns the absent case.
func None[T any]() Option[T] {
	return Option[T]{}
}

// FromPtr is Some(*p) for a non-nil p, None otherwise.
func FromPtr[T any](p *T) Option[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// FromResult keeps a success payload and drops the failure.
func FromResult[T, E any](r result.Result[T, E]) Option[T] {
	if v, ok := r.Get(); ok {
		return Some(v)
	}
	return None[T]()
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.ok }

// IsNone reports whether the value is absent.
func (o Option[T]) IsNone() bool { return !o.ok }

// Value returns the payload, or the zero T when absent.
func (o Option[T]) Value() T { return o.value }

// Get returns the payload and whether it was present.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// Tap runs fn with the payload when present and returns o unchanged.
func (o Option[T]) Tap(fn func(T)) Option[T] {
	if o.ok {
		fn(o.value)
	}
	return o
}

// TapNone runs fn when the value is absent and returns o unchanged.
func (o Option[T]) TapNone(fn func()) Option[T] {
	if !o.ok {
		fn()
	}
	return o
}

// OrElse unwraps the payload or returns fallback.
func (o Option[T]) OrElse(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}

// OrElseGet unwraps the payload or computes a fallback.
func (o Option[T]) OrElseGet(fn func() T) T {
	if o.ok {
		return o.value
	}
	return fn()
}

// Where drops a present value that fails predicate.
func (o Option[T]) Where(predicate func(T) bool) Option[T] {
	if o.ok && !predicate(o.value) {
		return None[T]()
	}
	return o
}

// String renders "Some(v)" or "None".
func (o Option[T]) String() string {
	if o.ok {
		return fmt.Sprintf("Some(%v)", o.value)
	}
	return "None"
}

// Map applies fn to a present value.
func Map[T, U any](o Option[T], fn func(T) U) Option[U] {
	if !o.ok {
		return None[U]()
	}
	return Some(fn(o.value))
}

// Bind feeds a present value into fn. None short-circuits.
func Bind[T, U any](o Option[T], fn func(T) Option[U]) Option[U] {
	if !o.ok {
		return None[U]()
	}
	return fn(o.value)
}

// Match consumes o, calling onSome or onNone.
func Match[T, U any](o Option[T], onSome func(T) U, onNone func() U) U {
	if o.ok {
		return onSome(o.value)
	}
	return onNone()
}

// Combine zips two options; either being None yields None.
func Combine[A, B any](a Option[A], b Option[B]) Option[result.Pair[A, B]] {
	if !a.ok || !b.ok {
		return None[result.Pair[A, B]]()
	}
	return Some(result.Pair[A, B]{First: a.value, Second: b.value})
}

// Combine3 zips three options.
func Combine3[A, B, C any](a Option[A], b Option[B], c Option[C]) Option[result.Triple[A, B, C]] {
	if !a.ok || !b.ok || !c.ok {
		return None[result.Triple[A, B, C]]()
	}
	return Some(result.Triple[A, B, C]{First: a.value, Second: b.value, Third: c.value})
}

// Pipe threads o through each transform, stopping at the first None.
func Pipe[T any](o Option[T], transforms ...func(T) Option[T]) Option[T] {
	for _, fn := range transforms {
		if !o.ok {
			return o
		}
		o = fn(o.value)
	}
	return o
}

// ToResult converts None into Failure(errIfNone).
func ToResult[T, E any](o Option[T], errIfNone E) result.Result[T, E] {
	if o.ok {
		return result.Success[T, E](o.value)
	}
	return result.Failure[T](errIfNone)
}
