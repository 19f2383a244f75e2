package lineage

import (
	"context"
	"errors"
	"testing"
)

func TestSetGetProvider(t *testing.T) {
	SetProvider(nil)
	defer SetProvider(nil)

	if p := GetProvider(); p != nil {
		t.Error("expected nil provider")
	}

	SetProvider(newMockProvider("global"))
	p := GetProvider()
	if p == nil {
		t.Fatal("expected provider to be set")
	}
	if p.Name() != "global" {
		t.Errorf("expected name %q, got %q", "global", p.Name())
	}
}

func TestProviderFromContext(t *testing.T) {
	if _, ok := ProviderFromContext(context.Background()); ok {
		t.Error("expected no provider in context")
	}

	ctx := WithProvider(context.Background(), newMockProvider("context"))
	p, ok := ProviderFromContext(ctx)
	if !ok {
		t.Fatal("expected provider in context")
	}
	if p.Name() != "context" {
		t.Errorf("expected name %q, got %q", "context", p.Name())
	}
}

func TestResolveProvider(t *testing.T) {
	defer SetProvider(nil)

	explicit := newMockProvider("explicit")
	fromCtx := newMockProvider("context")
	global := newMockProvider("global")

	tests := []struct {
		name     string
		explicit Provider
		ctx      Provider
		global   Provider
		want     string
	}{
		{"explicit wins", explicit, fromCtx, global, "explicit"},
		{"context over global", nil, fromCtx, global, "context"},
		{"global fallback", nil, nil, global, "global"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetProvider(tt.global)
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = WithProvider(ctx, tt.ctx)
			}
			p, err := ResolveProvider(ctx, tt.explicit)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, p.Name())
			}
		})
	}

	t.Run("none", func(t *testing.T) {
		SetProvider(nil)
		if _, err := ResolveProvider(context.Background(), nil); !errors.Is(err, ErrNoProvider) {
			t.Errorf("expected ErrNoProvider, got %v", err)
		}
	})
}

func TestResolveModel(t *testing.T) {
	SetProvider(nil)
	defer SetProvider(nil)
	ctx := context.Background()

	t.Run("explicit model", func(t *testing.T) {
		m := newMockModel()
		got, err := ResolveModel(ctx, m, newMockProvider("ignored"), 0.1)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got != Model(m) {
			t.Error("expected the explicit model")
		}
	})

	t.Run("provider wrapped with temperature", func(t *testing.T) {
		p := newMockProvider("p", "ok")
		got, err := ResolveModel(ctx, nil, p, 0.3)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if _, err := got.Generate(ctx, "q", nil); err != nil {
			t.Fatalf("generate: %v", err)
		}
		if p.temps[0] != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", p.temps[0])
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		if _, err := ResolveModel(ctx, nil, nil, 0); !errors.Is(err, ErrNoProvider) {
			t.Errorf("expected ErrNoProvider, got %v", err)
		}
	})
}
