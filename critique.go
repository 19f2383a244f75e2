package lineage

import (
	"context"
	"fmt"

	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// CritiqueArrow reviews the latest reasoning text on the branch, whatever its
// kind, and appends a Critique reasoning step. A branch with no reasoning yet
// is a fault wrapping ErrNoReasoning.
type CritiqueArrow struct {
	reasoner
}

// NewCritiqueArrow creates a critique arrow for topic and query.
func NewCritiqueArrow(topic, query string) *CritiqueArrow {
	return &CritiqueArrow{
		reasoner: newReasoner("critique", "Critique reasoning arrow", topic, query),
	}
}

// WithModel sets the model, bypassing provider resolution.
func (c *CritiqueArrow) WithModel(m Model) *CritiqueArrow {
	c.model = m
	return c
}

// WithProvider sets the provider for this arrow.
func (c *CritiqueArrow) WithProvider(p Provider) *CritiqueArrow {
	c.provider = p
	return c
}

// WithTemperature sets the sampling temperature.
func (c *CritiqueArrow) WithTemperature(temp float32) *CritiqueArrow {
	c.temperature = temp
	return c
}

// WithTools exposes tools to the model.
func (c *CritiqueArrow) WithTools(tools *ToolRegistry) *CritiqueArrow {
	c.tools = tools
	return c
}

// Process implements pipz.Chainable[Branch].
func (c *CritiqueArrow) Process(ctx context.Context, b Branch) (Branch, error) {
	return runStage(ctx, c.identity.Name(), c.stepType, b, func(ctx context.Context) (Branch, error) {
		latest, ok := b.LastReasoning().Get()
		if !ok {
			return b, fmt.Errorf("critique: %w", ErrNoReasoning)
		}

		prompt := fmt.Sprintf(CritiquePrompt, c.topic, c.query, latest.Text())
		gen, err := c.generate(ctx, b, prompt)
		if err != nil {
			return b, fmt.Errorf("critique: %w", err)
		}
		return c.record(ctx, b, Critique(gen.Text), prompt, gen), nil
	})
}

// Arrow returns the arrow as a composable step.
func (c *CritiqueArrow) Arrow() arrow.Step[Branch, Branch] {
	return c.Process
}

var _ pipz.Chainable[Branch] = (*CritiqueArrow)(nil)
