package lineage

import (
	"context"

	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// RefinementLoop runs the Draft, Critique, Improve cycle: one DraftArrow
// (which reuses an existing draft for the same topic and query), then n
// rounds of CritiqueArrow followed by ImproveArrow.
//
// On a fresh branch the result holds exactly one Draft followed by n
// Critique/Draft pairs. The loop never stops early and never retries; wrap it
// with Retry, Backoff or Timeout for resilience.
type RefinementLoop struct {
	identity pipz.Identity
	rounds   int
	draft    *DraftArrow
	critique *CritiqueArrow
	improve  *ImproveArrow
}

// NewRefinementLoop creates a loop of n refinement rounds. Negative n is
// treated as zero.
//
// Example:
//
//	loop := lineage.NewRefinementLoop("billing", "Why did the invoice fail?", 2).
//	    WithProvider(provider)
//	b, err := loop.Process(ctx, lineage.NewBranch("session-42"))
func NewRefinementLoop(topic, query string, n int) *RefinementLoop {
	if n < 0 {
		n = 0
	}
	return &RefinementLoop{
		identity: pipz.NewIdentity("refine", "Draft, critique and improve refinement loop"),
		rounds:   n,
		draft:    NewDraftArrow(topic, query),
		critique: NewCritiqueArrow(topic, query),
		improve:  NewImproveArrow(topic, query),
	}
}

// WithModel sets the model used by every stage.
func (l *RefinementLoop) WithModel(m Model) *RefinementLoop {
	l.draft.WithModel(m)
	l.critique.WithModel(m)
	l.improve.WithModel(m)
	return l
}

// WithProvider sets the provider used by every stage.
func (l *RefinementLoop) WithProvider(p Provider) *RefinementLoop {
	l.draft.WithProvider(p)
	l.critique.WithProvider(p)
	l.improve.WithProvider(p)
	return l
}

// WithTemperature sets the sampling temperature of every stage.
func (l *RefinementLoop) WithTemperature(temp float32) *RefinementLoop {
	l.draft.WithTemperature(temp)
	l.critique.WithTemperature(temp)
	l.improve.WithTemperature(temp)
	return l
}

// WithTools exposes tools to every stage.
func (l *RefinementLoop) WithTools(tools *ToolRegistry) *RefinementLoop {
	l.draft.WithTools(tools)
	l.critique.WithTools(tools)
	l.improve.WithTools(tools)
	return l
}

// WithRetrievalK sets how many documents the draft stage retrieves.
func (l *RefinementLoop) WithRetrievalK(k int) *RefinementLoop {
	l.draft.WithRetrievalK(k)
	return l
}

// WithEmbedder sets the embedder used by the draft stage.
func (l *RefinementLoop) WithEmbedder(e Embedder) *RefinementLoop {
	l.draft.WithEmbedder(e)
	return l
}

// Rounds returns the number of critique/improve rounds.
func (l *RefinementLoop) Rounds() int {
	return l.rounds
}

// Arrow composes the loop from its stages.
func (l *RefinementLoop) Arrow() arrow.Step[Branch, Branch] {
	round := arrow.Then(l.critique.Arrow(), l.improve.Arrow())
	return arrow.Then(l.draft.Arrow(), arrow.Repeat(l.rounds, round))
}

// Process implements pipz.Chainable[Branch].
func (l *RefinementLoop) Process(ctx context.Context, b Branch) (Branch, error) {
	return l.Arrow()(ctx, b)
}

// Identity implements pipz.Chainable[Branch].
func (l *RefinementLoop) Identity() pipz.Identity {
	return l.identity
}

// Schema implements pipz.Chainable[Branch].
func (l *RefinementLoop) Schema() pipz.Node {
	return pipz.Node{Identity: l.identity, Type: "refine"}
}

// Close implements pipz.Chainable[Branch].
func (l *RefinementLoop) Close() error {
	return nil
}

var _ pipz.Chainable[Branch] = (*RefinementLoop)(nil)
