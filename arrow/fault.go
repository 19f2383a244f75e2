package arrow

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/zoobzio/lineage/result"
)

// Fault is a panic recovered at an arrow boundary.
type Fault struct {
	Value any
	Stack []byte
}

func (f *Fault) Error() string {
	return fmt.Sprintf("arrow fault: %v", f.Value)
}

// Unwrap exposes a panicked error value to errors.Is / errors.As.
func (f *Fault) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}

// Catch converts every fault raised by s, returned error or panic, into a
// Failure. The caught step never returns an error.
func Catch[A, B any](s Step[A, B]) Step[A, result.Result[B, error]] {
	return func(ctx context.Context, in A) (r result.Result[B, error], err error) {
		defer func() {
			if v := recover(); v != nil {
				r = result.Failure[B](error(&Fault{Value: v, Stack: debug.Stack()}))
				err = nil
			}
		}()
		out, runErr := s(ctx, in)
		if runErr != nil {
			return result.Failure[B](runErr), nil
		}
		return result.Success[B, error](out), nil
	}
}

// TryLift wraps a fallible function, capturing its error or panic as a Failure.
func TryLift[A, B any](fn func(A) (B, error)) Step[A, result.Result[B, error]] {
	return Catch(Step[A, B](func(_ context.Context, in A) (B, error) {
		return fn(in)
	}))
}

// TryLiftAsync is TryLift for context-aware functions.
func TryLiftAsync[A, B any](fn func(context.Context, A) (B, error)) Step[A, result.Result[B, error]] {
	return Catch(Step[A, B](fn))
}

// Unwrap turns a Result-producing step back into a plain one, raising the
// failure payload as a fault.
func Unwrap[A, B any](s Step[A, result.Result[B, error]]) Step[A, B] {
	return func(ctx context.Context, in A) (B, error) {
		r, err := s(ctx, in)
		if err != nil {
			var zero B
			return zero, err
		}
		if r.IsFailure() {
			var zero B
			return zero, r.Err()
		}
		return r.Value(), nil
	}
}
