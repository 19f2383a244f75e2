package lineage

import (
	"context"
	"fmt"

	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
	"github.com/zoobzio/lineage/option"
)

// ImproveArrow rewrites the latest draft to address the latest critique and
// appends the result as a new Draft, which closes the refinement cycle.
// Both a draft and a critique must exist, otherwise the arrow faults with
// ErrNoReasoning.
type ImproveArrow struct {
	reasoner
}

// NewImproveArrow creates an improve arrow for topic and query.
func NewImproveArrow(topic, query string) *ImproveArrow {
	return &ImproveArrow{
		reasoner: newReasoner("improve", "Improve reasoning arrow", topic, query),
	}
}

// WithModel sets the model, bypassing provider resolution.
func (i *ImproveArrow) WithModel(m Model) *ImproveArrow {
	i.model = m
	return i
}

// WithProvider sets the provider for this arrow.
func (i *ImproveArrow) WithProvider(p Provider) *ImproveArrow {
	i.provider = p
	return i
}

// WithTemperature sets the sampling temperature.
func (i *ImproveArrow) WithTemperature(temp float32) *ImproveArrow {
	i.temperature = temp
	return i
}

// WithTools exposes tools to the model.
func (i *ImproveArrow) WithTools(tools *ToolRegistry) *ImproveArrow {
	i.tools = tools
	return i
}

// Process implements pipz.Chainable[Branch].
func (i *ImproveArrow) Process(ctx context.Context, b Branch) (Branch, error) {
	return runStage(ctx, i.identity.Name(), i.stepType, b, func(ctx context.Context) (Branch, error) {
		pair, ok := option.Combine(b.LastOfKind(KindDraft), b.LastOfKind(KindCritique)).Get()
		if !ok {
			return b, fmt.Errorf("improve: need a draft and a critique: %w", ErrNoReasoning)
		}
		draft, critique := pair.First, pair.Second

		prompt := fmt.Sprintf(ImprovePrompt, i.topic, i.query, draft.State.Text(), critique.State.Text())
		gen, err := i.generate(ctx, b, prompt)
		if err != nil {
			return b, fmt.Errorf("improve: %w", err)
		}
		return i.record(ctx, b, Draft(gen.Text), prompt, gen), nil
	})
}

// Arrow returns the arrow as a composable step.
func (i *ImproveArrow) Arrow() arrow.Step[Branch, Branch] {
	return i.Process
}

var _ pipz.Chainable[Branch] = (*ImproveArrow)(nil)
