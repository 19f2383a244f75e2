package lineage

import (
	"context"
	"errors"
	"sync"

	"github.com/zoobzio/zyn"
)

// Provider is a chat-completion backend. It has the same shape as
// zyn.Provider, so any zyn provider can drive the reasoning arrows.
type Provider interface {
	Call(ctx context.Context, messages []zyn.Message, temperature float32) (*zyn.ProviderResponse, error)
	Name() string
}

// ErrNoProvider is returned when no model or provider can be resolved.
var ErrNoProvider = errors.New("no provider configured: set via arrow, context, or global")

type providerKey struct{}

var (
	globalProvider   Provider
	globalProviderMu sync.RWMutex
)

// SetProvider sets the global fallback provider.
func SetProvider(p Provider) {
	globalProviderMu.Lock()
	defer globalProviderMu.Unlock()
	globalProvider = p
}

// GetProvider returns the global provider, if set.
func GetProvider() Provider {
	globalProviderMu.RLock()
	defer globalProviderMu.RUnlock()
	return globalProvider
}

// WithProvider adds a provider to the context.
func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// ProviderFromContext retrieves the provider from context, if present.
func ProviderFromContext(ctx context.Context) (Provider, bool) {
	p, ok := ctx.Value(providerKey{}).(Provider)
	return p, ok
}

// ResolveProvider picks, in order: explicit, context, global.
func ResolveProvider(ctx context.Context, explicit Provider) (Provider, error) {
	if explicit != nil {
		return explicit, nil
	}
	if p, ok := ProviderFromContext(ctx); ok && p != nil {
		return p, nil
	}
	if p := GetProvider(); p != nil {
		return p, nil
	}
	return nil, ErrNoProvider
}

// ResolveModel picks the model an arrow talks to: an explicit Model wins,
// otherwise the resolved provider is wrapped in a ProviderModel sampling at
// temperature.
func ResolveModel(ctx context.Context, model Model, provider Provider, temperature float32) (Model, error) {
	if model != nil {
		return model, nil
	}
	p, err := ResolveProvider(ctx, provider)
	if err != nil {
		return nil, err
	}
	return NewProviderModel(p).WithTemperature(temperature), nil
}
