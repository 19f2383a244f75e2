package arrow

import (
	"context"

	"github.com/zoobzio/lineage/option"
	"github.com/zoobzio/lineage/result"
)

// Success ignores its input and yields Success(value).
func Success[A, B, E any](value B) Step[A, result.Result[B, E]] {
	return func(context.Context, A) (result.Result[B, E], error) {
		return result.Success[B, E](value), nil
	}
}

// Failure ignores its input and yields Failure(err).
func Failure[A, B, E any](err E) Step[A, result.Result[B, E]] {
	return func(context.Context, A) (result.Result[B, E], error) {
		return result.Failure[B](err), nil
	}
}

// Some ignores its input and yields Some(value).
func Some[A, B any](value B) Step[A, option.Option[B]] {
	return func(context.Context, A) (option.Option[B], error) {
		return option.Some(value), nil
	}
}

// None ignores its input and yields None.
func None[A, B any]() Step[A, option.Option[B]] {
	return func(context.Context, A) (option.Option[B], error) {
		return option.None[B](), nil
	}
}

// Pure is the unit of the Result-flavoured calculus.
func Pure[A, E any]() Step[A, result.Result[A, E]] {
	return func(_ context.Context, in A) (result.Result[A, E], error) {
		return result.Success[A, E](in), nil
	}
}

// ThenResult is Kleisli composition over Result. A Failure from f skips g and
// is returned unmodified.
func ThenResult[A, B, C, E any](f Step[A, result.Result[B, E]], g Step[B, result.Result[C, E]]) Step[A, result.Result[C, E]] {
	return func(ctx context.Context, in A) (result.Result[C, E], error) {
		mid, err := f(ctx, in)
		if err != nil {
			return result.Result[C, E]{}, err
		}
		v, ok := mid.Get()
		if !ok {
			return result.Failure[C](mid.Err()), nil
		}
		return g(ctx, v)
	}
}

// MapResult transforms the success payload of a Result step.
func MapResult[A, B, C, E any](s Step[A, result.Result[B, E]], fn func(B) C) Step[A, result.Result[C, E]] {
	return Map(s, func(r result.Result[B, E]) result.Result[C, E] {
		return result.Map(r, fn)
	})
}

// TapResult observes the success payload of a Result step.
func TapResult[A, B, E any](s Step[A, result.Result[B, E]], observe func(B)) Step[A, result.Result[B, E]] {
	return s.Tap(func(r result.Result[B, E]) { r.Tap(observe) })
}

// TapResultError observes the failure payload of a Result step.
func TapResultError[A, B, E any](s Step[A, result.Result[B, E]], observe func(E)) Step[A, result.Result[B, E]] {
	return s.Tap(func(r result.Result[B, E]) { r.TapError(observe) })
}

// ThenOption is Kleisli composition over Option. None from f skips g.
func ThenOption[A, B, C any](f Step[A, option.Option[B]], g Step[B, option.Option[C]]) Step[A, option.Option[C]] {
	return func(ctx context.Context, in A) (option.Option[C], error) {
		mid, err := f(ctx, in)
		if err != nil {
			return option.None[C](), err
		}
		v, ok := mid.Get()
		if !ok {
			return option.None[C](), nil
		}
		return g(ctx, v)
	}
}

// MapOption transforms the payload of an Option step.
func MapOption[A, B, C any](s Step[A, option.Option[B]], fn func(B) C) Step[A, option.Option[C]] {
	return Map(s, func(o option.Option[B]) option.Option[C] {
		return option.Map(o, fn)
	})
}

// TapOption observes the payload of an Option step.
func TapOption[A, B any](s Step[A, option.Option[B]], observe func(B)) Step[A, option.Option[B]] {
	return s.Tap(func(o option.Option[B]) { o.Tap(observe) })
}

// Recover replaces a Failure with the output of fallback applied to the error.
func Recover[A, B, E any](s Step[A, result.Result[B, E]], fallback func(E) B) Step[A, B] {
	return Map(s, func(r result.Result[B, E]) B {
		return r.OrElseGet(fallback)
	})
}
