package lineage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCritiqueArrowReviewsLatestText(t *testing.T) {
	tests := []struct {
		name   string
		in     Branch
		target string
	}{
		{"after draft", NewBranch("main").WithReasoning(Draft("my draft"), "p"), "my draft"},
		{"after critique", NewBranch("main").WithReasoning(Draft("d"), "p").WithReasoning(Critique("earlier review"), "p"), "earlier review"},
		{"after final spec", NewBranch("main").WithReasoning(FinalSpec("accepted"), "p"), "accepted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newMockModel()
			out, err := NewCritiqueArrow("t", "q").WithModel(model).Process(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("critique: %v", err)
			}
			if out.Len() != tt.in.Len()+1 {
				t.Fatalf("expected one new event, got %d", out.Len()-tt.in.Len())
			}
			if out.LastReasoning().Value() != Critique("critique 1") {
				t.Errorf("expected Critique(critique 1), got %#v", out.LastReasoning().Value())
			}
			if !strings.Contains(model.lastPrompt(), "Draft:\n"+tt.target+"\n") {
				t.Errorf("expected %q under review, got %q", tt.target, model.lastPrompt())
			}
		})
	}
}

func TestCritiqueArrowNeedsReasoning(t *testing.T) {
	model := newMockModel()
	in := NewBranch("main").WithIngestEvent("src", []string{"a"})

	out, err := NewCritiqueArrow("t", "q").WithModel(model).Process(context.Background(), in)
	if !errors.Is(err, ErrNoReasoning) {
		t.Fatalf("expected ErrNoReasoning, got %v", err)
	}
	if out.Len() != in.Len() {
		t.Error("expected the input branch back on failure")
	}
	if model.callCount() != 0 {
		t.Error("expected no model call")
	}
}

func TestCritiqueArrowModelFailure(t *testing.T) {
	boom := errors.New("boom")
	provider := newMockProvider("p")
	provider.err = boom

	_, err := NewCritiqueArrow("t", "q").
		WithProvider(provider).
		WithTemperature(0.4).
		WithTools(NewToolRegistry()).
		Process(context.Background(), NewBranch("main").WithReasoning(Draft("d"), "p"))
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if provider.temps[0] != 0.4 {
		t.Errorf("expected temperature 0.4, got %v", provider.temps[0])
	}
}
