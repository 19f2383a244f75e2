package arrow

import (
	"context"

	"github.com/zoobzio/pipz"
)

// processor adapts an endo-step to pipz.Chainable so pipz connectors
// (Retry, Backoff, Timeout, Sequence...) can wrap it.
type processor[T any] struct {
	identity pipz.Identity
	step     Step[T, T]
}

// Processor exposes s as a pipz.Chainable named name.
func Processor[T any](name, description string, s Step[T, T]) pipz.Chainable[T] {
	return &processor[T]{
		identity: pipz.NewIdentity(name, description),
		step:     s,
	}
}

// Process implements pipz.Chainable.
func (p *processor[T]) Process(ctx context.Context, in T) (T, error) {
	return p.step(ctx, in)
}

// Identity implements pipz.Chainable.
func (p *processor[T]) Identity() pipz.Identity {
	return p.identity
}

// Schema implements pipz.Chainable.
func (p *processor[T]) Schema() pipz.Node {
	return pipz.Node{Identity: p.identity, Type: "arrow"}
}

// Close implements pipz.Chainable.
func (p *processor[T]) Close() error {
	return nil
}

// FromChainable turns any pipz processor or connector back into a Step.
func FromChainable[T any](c pipz.Chainable[T]) Step[T, T] {
	return c.Process
}
