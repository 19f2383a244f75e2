package lineage

import (
	"context"
	"errors"
	"testing"
)

func TestResolveEmbedder(t *testing.T) {
	SetEmbedder(nil)
	defer SetEmbedder(nil)

	explicit := newMockEmbedder(2)
	fromCtx := newMockEmbedder(3)
	global := newMockEmbedder(4)

	tests := []struct {
		name     string
		explicit Embedder
		ctx      Embedder
		global   Embedder
		want     int
	}{
		{"explicit wins", explicit, fromCtx, global, 2},
		{"context over global", nil, fromCtx, global, 3},
		{"global fallback", nil, nil, global, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetEmbedder(tt.global)
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = WithEmbedder(ctx, tt.ctx)
			}
			e, err := ResolveEmbedder(ctx, tt.explicit)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if e.Dimensions() != tt.want {
				t.Errorf("expected embedder with %d dims, got %d", tt.want, e.Dimensions())
			}
		})
	}

	t.Run("none", func(t *testing.T) {
		SetEmbedder(nil)
		if _, err := ResolveEmbedder(context.Background(), nil); !errors.Is(err, ErrNoEmbedder) {
			t.Errorf("expected ErrNoEmbedder, got %v", err)
		}
	})
}

func TestEmbedderFromContext(t *testing.T) {
	if _, ok := EmbedderFromContext(context.Background()); ok {
		t.Error("expected no embedder in context")
	}
	e := newMockEmbedder(8)
	got, ok := EmbedderFromContext(WithEmbedder(context.Background(), e))
	if !ok || got != Embedder(e) {
		t.Error("expected embedder from context")
	}
	if GetEmbedder() != nil {
		t.Error("context embedder leaked into global")
	}
}
