package result

// Map applies fn to the success payload. Failures pass through unchanged.
func Map[T, U, E any](r Result[T, E], fn func(T) U) Result[U, E] {
	if !r.ok {
		return Failure[U](r.err)
	}
	return Success[U, E](fn(r.value))
}

// MapError applies fn to the failure payload. Successes pass through unchanged.
func MapError[T, E, F any](r Result[T, E], fn func(E) F) Result[T, F] {
	if r.ok {
		return Success[T, F](r.value)
	}
	return Failure[T](fn(r.err))
}

// Bind feeds the success payload into fn and returns its result.
// A failure short-circuits and is returned as is.
func Bind[T, U, E any](r Result[T, E], fn func(T) Result[U, E]) Result[U, E] {
	if !r.ok {
		return Failure[U](r.err)
	}
	return fn(r.value)
}

// SelectMany is Bind followed by a projection over both payloads.
func SelectMany[T, U, V, E any](r Result[T, E], bind func(T) Result[U, E], project func(T, U) V) Result[V, E] {
	return Bind(r, func(t T) Result[V, E] {
		return Map(bind(t), func(u U) V { return project(t, u) })
	})
}

// Match consumes r, calling onSuccess or onFailure.
func Match[T, E, U any](r Result[T, E], onSuccess func(T) U, onFailure func(E) U) U {
	if r.ok {
		return onSuccess(r.value)
	}
	return onFailure(r.err)
}

// Pair holds two values.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple holds three values.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Combine zips two results. The first failure, left to right, wins.
func Combine[A, B, E any](a Result[A, E], b Result[B, E]) Result[Pair[A, B], E] {
	if !a.ok {
		return Failure[Pair[A, B]](a.err)
	}
	if !b.ok {
		return Failure[Pair[A, B]](b.err)
	}
	return Success[Pair[A, B], E](Pair[A, B]{First: a.value, Second: b.value})
}

// Combine3 zips three results. The first failure, left to right, wins.
func Combine3[A, B, C, E any](a Result[A, E], b Result[B, E], c Result[C, E]) Result[Triple[A, B, C], E] {
	ab := Combine(a, b)
	if !ab.ok {
		return Failure[Triple[A, B, C]](ab.err)
	}
	if !c.ok {
		return Failure[Triple[A, B, C]](c.err)
	}
	return Success[Triple[A, B, C], E](Triple[A, B, C]{First: a.value, Second: b.value, Third: c.value})
}

// Pipe threads r through each transform in order, stopping at the first failure.
func Pipe[T, E any](r Result[T, E], transforms ...func(T) Result[T, E]) Result[T, E] {
	for _, fn := range transforms {
		if !r.ok {
			return r
		}
		r = fn(r.value)
	}
	return r
}

// Flatten removes one level of nesting.
func Flatten[T, E any](r Result[Result[T, E], E]) Result[T, E] {
	if !r.ok {
		return Failure[T](r.err)
	}
	return r.value
}

// Collect turns a slice of results into a result of a slice, failing on the
// first failure.
func Collect[T, E any](rs []Result[T, E]) Result[[]T, E] {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		if !r.ok {
			return Failure[[]T](r.err)
		}
		out = append(out, r.value)
	}
	return Success[[]T, E](out)
}
