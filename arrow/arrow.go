// Package arrow provides composable, context-aware computations.
//
// A [Step] is a function from an input to an output that may block on I/O and
// may fail with a fault (a returned error). Steps are plain function values;
// composition builds new closures and never mutates existing steps.
//
// Steps whose output is a [result.Result] or an [option.Option] form the
// Kleisli flavours of the calculus. [ThenResult] and [ThenOption] compose them
// so that a Failure or None short-circuits the rest of the chain as data,
// while a returned error unwinds the chain as a fault.
//
// Composition is strictly sequential: stage i+1 starts only after stage i
// has produced its output, because that output is stage i+1's input. The only
// concurrent combinator is [Parallel], which must be used explicitly.
package arrow

import "context"

// Step is an arrow from A to B.
type Step[A, B any] func(ctx context.Context, in A) (B, error)

// Run executes the step.
func (s Step[A, B]) Run(ctx context.Context, in A) (B, error) {
	return s(ctx, in)
}

// Tap calls observe with every successful output and passes it on unchanged.
func (s Step[A, B]) Tap(observe func(B)) Step[A, B] {
	return func(ctx context.Context, in A) (B, error) {
		out, err := s(ctx, in)
		if err != nil {
			return out, err
		}
		observe(out)
		return out, nil
	}
}

// Identity returns its input unchanged.
func Identity[A any]() Step[A, A] {
	return func(_ context.Context, in A) (A, error) {
		return in, nil
	}
}

// Lift wraps a pure function.
func Lift[A, B any](fn func(A) B) Step[A, B] {
	return func(_ context.Context, in A) (B, error) {
		return fn(in), nil
	}
}

// LiftAsync wraps a context-aware function that may block or fail.
func LiftAsync[A, B any](fn func(context.Context, A) (B, error)) Step[A, B] {
	return fn
}

// Then runs f and feeds its output into g.
func Then[A, B, C any](f Step[A, B], g Step[B, C]) Step[A, C] {
	return func(ctx context.Context, in A) (C, error) {
		mid, err := f(ctx, in)
		if err != nil {
			var zero C
			return zero, err
		}
		return g(ctx, mid)
	}
}

// Map post-composes a pure transform.
func Map[A, B, C any](s Step[A, B], fn func(B) C) Step[A, C] {
	return Then(s, Lift(fn))
}

// Compose chains endo-steps left to right. With no steps it is Identity.
func Compose[A any](steps ...Step[A, A]) Step[A, A] {
	return func(ctx context.Context, in A) (A, error) {
		cur := in
		for _, s := range steps {
			next, err := s(ctx, cur)
			if err != nil {
				return next, err
			}
			cur = next
		}
		return cur, nil
	}
}

// Repeat composes s with itself n times. n <= 0 yields Identity.
func Repeat[A any](n int, s Step[A, A]) Step[A, A] {
	steps := make([]Step[A, A], 0, max(n, 0))
	for i := 0; i < n; i++ {
		steps = append(steps, s)
	}
	return Compose(steps...)
}

// ComposeWith fixes the right-hand side of Then. The returned combinator
// appends g to whatever arrow it is given.
func ComposeWith[A, B, C any](g Step[B, C]) func(Step[A, B]) Step[A, C] {
	return func(f Step[A, B]) Step[A, C] {
		return Then(f, g)
	}
}

// PartialCompose fixes the left-hand side of Then. The returned combinator
// prepends f to whatever arrow it is given.
func PartialCompose[A, B, C any](f Step[A, B]) func(Step[B, C]) Step[A, C] {
	return func(g Step[B, C]) Step[A, C] {
		return Then(f, g)
	}
}
