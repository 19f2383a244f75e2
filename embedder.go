package lineage

import (
	"context"
	"errors"
	"sync"
)

// Embedder turns text into a vector for the branch's vector store.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)

	// Dimensions is the length of vectors produced by Embed.
	Dimensions() int
}

// ErrNoEmbedder is returned when no embedder can be resolved.
var ErrNoEmbedder = errors.New("no embedder configured")

var (
	globalEmbedder   Embedder
	globalEmbedderMu sync.RWMutex
)

// SetEmbedder sets the global fallback embedder.
func SetEmbedder(e Embedder) {
	globalEmbedderMu.Lock()
	defer globalEmbedderMu.Unlock()
	globalEmbedder = e
}

// GetEmbedder returns the global embedder, if set.
func GetEmbedder() Embedder {
	globalEmbedderMu.RLock()
	defer globalEmbedderMu.RUnlock()
	return globalEmbedder
}

type embedderKey struct{}

// WithEmbedder returns a context carrying e.
func WithEmbedder(ctx context.Context, e Embedder) context.Context {
	return context.WithValue(ctx, embedderKey{}, e)
}

// EmbedderFromContext retrieves an embedder from context.
func EmbedderFromContext(ctx context.Context) (Embedder, bool) {
	e, ok := ctx.Value(embedderKey{}).(Embedder)
	return e, ok
}

// ResolveEmbedder picks, in order: explicit, context, global.
func ResolveEmbedder(ctx context.Context, explicit Embedder) (Embedder, error) {
	if explicit != nil {
		return explicit, nil
	}
	if e, ok := EmbedderFromContext(ctx); ok && e != nil {
		return e, nil
	}
	if e := GetEmbedder(); e != nil {
		return e, nil
	}
	return nil, ErrNoEmbedder
}
