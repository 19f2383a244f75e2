package lineage

import (
	"context"
	"fmt"
	"sync"
)

// ReplayModel answers prompts from the reasoning steps of a recorded branch.
//
// Each recorded step is keyed by its exact prompt. A prompt seen several
// times is answered with its recordings in their original order. Once a
// prompt has no recording left, the fallback model is asked; with no fallback
// the call fails with ErrReplayDivergence.
//
// Running the same pipeline against a ReplayModel of its own output, from the
// same starting branch, reproduces every reasoning text without a model call.
type ReplayModel struct {
	mu       sync.Mutex
	recorded map[string][]Generation
	fallback Model
}

// NewReplayModel indexes the reasoning steps of recorded. fallback may be nil.
func NewReplayModel(recorded Branch, fallback Model) *ReplayModel {
	m := &ReplayModel{
		recorded: make(map[string][]Generation),
		fallback: fallback,
	}
	for _, step := range recorded.ReasoningSteps() {
		m.recorded[step.Prompt] = append(m.recorded[step.Prompt], Generation{
			Text:      step.State.Text(),
			ToolCalls: step.ToolCalls,
		})
	}
	return m
}

// Generate implements Model. Recorded tool calls are returned as they were;
// tools are never invoked during replay.
func (m *ReplayModel) Generate(ctx context.Context, prompt string, tools *ToolRegistry) (Generation, error) {
	m.mu.Lock()
	queue := m.recorded[prompt]
	if len(queue) > 0 {
		gen := queue[0]
		m.recorded[prompt] = queue[1:]
		m.mu.Unlock()
		return gen, nil
	}
	m.mu.Unlock()

	if m.fallback == nil {
		return Generation{}, fmt.Errorf("%w: no recorded output for prompt", ErrReplayDivergence)
	}
	return m.fallback.Generate(ctx, prompt, tools)
}

// Remaining returns how many recorded outputs have not been replayed.
func (m *ReplayModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.recorded {
		n += len(q)
	}
	return n
}

var _ Model = (*ReplayModel)(nil)
