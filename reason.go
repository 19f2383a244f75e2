package lineage

import (
	"context"
	"errors"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// ErrNoReasoning is the fault raised by arrows that need earlier reasoning
// on the branch when there is none.
var ErrNoReasoning = errors.New("branch has no reasoning to build on")

// reasoner holds what every reasoning arrow shares: what it reasons about and
// how it reaches a model.
type reasoner struct {
	identity    pipz.Identity
	stepType    string
	topic       string
	query       string
	model       Model
	provider    Provider
	temperature float32
	tools       *ToolRegistry
}

func newReasoner(stepType, description, topic, query string) reasoner {
	return reasoner{
		identity:    pipz.NewIdentity(stepType, description),
		stepType:    stepType,
		topic:       topic,
		query:       query,
		temperature: DefaultTemperature,
	}
}

// generate resolves the model and runs prompt through it.
func (r *reasoner) generate(ctx context.Context, b Branch, prompt string) (Generation, error) {
	model, err := ResolveModel(ctx, r.model, r.provider, r.temperature)
	if err != nil {
		return Generation{}, err
	}

	capitan.Emit(ctx, ModelCalled,
		FieldBranch.Field(b.Name()),
		FieldStepType.Field(r.stepType),
		FieldTopic.Field(r.topic),
		FieldQuery.Field(r.query),
		FieldTemperature.Field(r.temperature),
	)
	return model.Generate(ctx, prompt, r.tools)
}

// record appends state as a reasoning step about the arrow's topic and query.
func (r *reasoner) record(ctx context.Context, b Branch, state ReasoningState, prompt string, gen Generation) Branch {
	step := NewReasoningStep(state, prompt, gen.ToolCalls...).About(r.topic, r.query)
	return appendEvent(ctx, b, step)
}

// Identity implements pipz.Chainable[Branch].
func (r *reasoner) Identity() pipz.Identity {
	return r.identity
}

// Schema implements pipz.Chainable[Branch].
func (r *reasoner) Schema() pipz.Node {
	return pipz.Node{Identity: r.identity, Type: r.stepType}
}

// Close implements pipz.Chainable[Branch].
func (r *reasoner) Close() error {
	return nil
}
