package lineage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tmc/langchaingo/tools"
	"github.com/zoobzio/capitan"

	"github.com/zoobzio/lineage/option"
	"github.com/zoobzio/lineage/result"
)

// ErrToolNotFound is reported when a model asks for a tool the registry does
// not hold.
var ErrToolNotFound = errors.New("tool not found")

// Tool is an external capability a model may invoke by name.
//
// Invoke reports expected failures (bad input, nothing found) as a Failure
// carrying a message for the model. It never returns a Go error: whatever the
// tool does, the outcome is recorded and the conversation continues.
type Tool interface {
	Name() string
	Description() string
	// Schema optionally describes the expected input.
	Schema() option.Option[string]
	Invoke(ctx context.Context, input string) result.Result[string, string]
}

// FuncTool is a Tool backed by a function.
type FuncTool struct {
	name        string
	description string
	schema      option.Option[string]
	fn          func(context.Context, string) result.Result[string, string]
}

// NewFuncTool creates a tool from fn.
func NewFuncTool(name, description string, fn func(context.Context, string) result.Result[string, string]) *FuncTool {
	return &FuncTool{name: name, description: description, fn: fn}
}

// WithSchema attaches an input description.
func (t *FuncTool) WithSchema(schema string) *FuncTool {
	t.schema = option.Some(schema)
	return t
}

func (t *FuncTool) Name() string                  { return t.name }
func (t *FuncTool) Description() string           { return t.description }
func (t *FuncTool) Schema() option.Option[string] { return t.schema }

// Invoke implements Tool.
func (t *FuncTool) Invoke(ctx context.Context, input string) result.Result[string, string] {
	return t.fn(ctx, input)
}

// langChainTool adapts a langchaingo tool. Its errors become Failures.
type langChainTool struct {
	inner tools.Tool
}

// FromLangChain exposes a langchaingo tool through the Tool interface.
func FromLangChain(t tools.Tool) Tool {
	return langChainTool{inner: t}
}

func (t langChainTool) Name() string                  { return t.inner.Name() }
func (t langChainTool) Description() string           { return t.inner.Description() }
func (t langChainTool) Schema() option.Option[string] { return option.None[string]() }

func (t langChainTool) Invoke(ctx context.Context, input string) result.Result[string, string] {
	out, err := t.inner.Call(ctx, input)
	if err != nil {
		return result.Failure[string](err.Error())
	}
	return result.Success[string, string](out)
}

// ToolRegistry is an immutable, case-insensitive set of tools. With returns
// a new registry, so a registry handed to an arrow never changes underneath it.
// The zero value and a nil *ToolRegistry are both empty.
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry builds a registry from ts. Later tools replace earlier ones
// with the same name.
func NewToolRegistry(ts ...Tool) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		r.tools[strings.ToLower(t.Name())] = t
	}
	return r
}

// With returns a registry holding r's tools plus ts.
func (r *ToolRegistry) With(ts ...Tool) *ToolRegistry {
	next := &ToolRegistry{tools: make(map[string]Tool, r.Len()+len(ts))}
	if r != nil {
		for k, t := range r.tools {
			next.tools[k] = t
		}
	}
	for _, t := range ts {
		next.tools[strings.ToLower(t.Name())] = t
	}
	return next
}

// Get looks a tool up ignoring case.
func (r *ToolRegistry) Get(name string) option.Option[Tool] {
	if r == nil {
		return option.None[Tool]()
	}
	t, ok := r.tools[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return option.None[Tool]()
	}
	return option.Some(t)
}

// Names returns the registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name())
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tools)
}

// Describe renders one line per tool for inclusion in a system prompt.
func (r *ToolRegistry) Describe() string {
	var sb strings.Builder
	for _, name := range r.Names() {
		t := r.Get(name).Value()
		fmt.Fprintf(&sb, "- %s: %s", t.Name(), t.Description())
		if schema, ok := t.Schema().Get(); ok {
			fmt.Fprintf(&sb, " (input: %s)", schema)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Invoke runs the named tool and returns the record of the call. A missing
// tool yields a failed ToolCall whose output wraps ErrToolNotFound.
func (r *ToolRegistry) Invoke(ctx context.Context, name, input string) ToolCall {
	call := ToolCall{Name: name, Arguments: input}

	tool, ok := r.Get(name).Get()
	if !ok {
		call.Failed = true
		call.Output = fmt.Errorf("%w: %s", ErrToolNotFound, name).Error()
		capitan.Emit(ctx, ToolInvoked,
			FieldToolName.Field(name),
			FieldToolStatus.Field("missing"),
		)
		return call
	}

	call.Name = tool.Name()
	out := tool.Invoke(ctx, input)
	call.Output = result.Match(out,
		func(s string) string { return s },
		func(e string) string { return e },
	)
	call.Failed = out.IsFailure()

	status := "ok"
	if call.Failed {
		status = "failed"
	}
	capitan.Emit(ctx, ToolInvoked,
		FieldToolName.Field(call.Name),
		FieldToolStatus.Field(status),
	)
	return call
}
