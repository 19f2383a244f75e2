package lineage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zoobzio/zyn"
)

// Generation is one model answer plus the tool calls made while producing it.
type Generation struct {
	Text      string
	ToolCalls []ToolCall
}

// Model is the language-model collaborator used by the reasoning arrows.
// tools may be nil.
type Model interface {
	Generate(ctx context.Context, prompt string, tools *ToolRegistry) (Generation, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string, tools *ToolRegistry) (Generation, error)

// Generate implements Model.
func (f ModelFunc) Generate(ctx context.Context, prompt string, tools *ToolRegistry) (Generation, error) {
	return f(ctx, prompt, tools)
}

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// ErrToolRoundsExhausted is returned when a model keeps replying with tool
// calls after its tool rounds and a final no-tools turn are spent.
var ErrToolRoundsExhausted = errors.New("tool rounds exhausted")

// finalTurnPrompt asks for an answer once no tool rounds are left.
const finalTurnPrompt = "No more tool calls are allowed. Answer now using the results you have, without CALL lines."

// toolCallPattern matches a line of the form "CALL <tool>: <input>".
var toolCallPattern = regexp.MustCompile(`(?m)^\s*CALL\s+([A-Za-z0-9_\-\.]+):\s*(.*)$`)

// ProviderModel drives a Provider as a Model.
//
// When a non-empty registry is passed to Generate, the system message lists
// the tools and explains the call syntax. Each reply containing CALL lines
// has those tools run and their outputs sent back, for at most maxRounds
// rounds; the first reply without CALL lines is the answer. Once the rounds
// are spent, CALL lines are stripped from the reply. A reply with nothing
// else in it gets one final turn asking for an answer without tools.
type ProviderModel struct {
	provider    Provider
	system      string
	temperature float32
	maxRounds   int
}

// NewProviderModel wraps p with the package defaults.
func NewProviderModel(p Provider) *ProviderModel {
	return &ProviderModel{
		provider:    p,
		system:      DefaultSystemPrompt,
		temperature: DefaultTemperature,
		maxRounds:   DefaultMaxToolRounds,
	}
}

// WithSystemPrompt replaces the system message.
func (m *ProviderModel) WithSystemPrompt(system string) *ProviderModel {
	m.system = system
	return m
}

// WithTemperature sets the sampling temperature.
func (m *ProviderModel) WithTemperature(temp float32) *ProviderModel {
	m.temperature = temp
	return m
}

// WithMaxToolRounds caps the number of tool round trips per generation.
func (m *ProviderModel) WithMaxToolRounds(n int) *ProviderModel {
	m.maxRounds = n
	return m
}

// Generate implements Model.
func (m *ProviderModel) Generate(ctx context.Context, prompt string, tools *ToolRegistry) (Generation, error) {
	system := m.system
	if tools.Len() > 0 {
		system += "\n\nYou may use these tools:\n" + tools.Describe() +
			"\nTo use a tool, reply with one line per call in the form\nCALL <tool>: <input>\n" +
			"and nothing else. Tool results will be sent back to you."
	}

	messages := []zyn.Message{
		{Role: roleSystem, Content: system},
		{Role: roleUser, Content: prompt},
	}

	var calls []ToolCall
	final := false
	for round := 0; ; round++ {
		resp, err := m.provider.Call(ctx, messages, m.temperature)
		if err != nil {
			return Generation{}, fmt.Errorf("%s: %w", m.provider.Name(), err)
		}
		text := strings.TrimSpace(resp.Content)

		if tools.Len() == 0 {
			return Generation{Text: text, ToolCalls: calls}, nil
		}
		requested := toolCallPattern.FindAllStringSubmatch(text, -1)
		if len(requested) == 0 {
			return Generation{Text: text, ToolCalls: calls}, nil
		}

		if final || round >= m.maxRounds {
			if rest := strings.TrimSpace(toolCallPattern.ReplaceAllString(text, "")); rest != "" {
				return Generation{Text: rest, ToolCalls: calls}, nil
			}
			if final {
				return Generation{}, fmt.Errorf("%s: %w after %d rounds", m.provider.Name(), ErrToolRoundsExhausted, m.maxRounds)
			}
			final = true
			messages = append(messages,
				zyn.Message{Role: roleAssistant, Content: text},
				zyn.Message{Role: roleUser, Content: finalTurnPrompt},
			)
			continue
		}

		var results strings.Builder
		for _, req := range requested {
			call := tools.Invoke(ctx, req[1], strings.TrimSpace(req[2]))
			calls = append(calls, call)
			label := "RESULT"
			if call.Failed {
				label = "ERROR"
			}
			fmt.Fprintf(&results, "%s %s: %s\n", label, call.Name, call.Output)
		}
		messages = append(messages,
			zyn.Message{Role: roleAssistant, Content: text},
			zyn.Message{Role: roleUser, Content: results.String()},
		)
	}
}

var _ Model = (*ProviderModel)(nil)
