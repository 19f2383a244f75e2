package lineage

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Event type tags used as the snapshot discriminator.
const (
	EventTypeReasoning = "reasoning"
	EventTypeIngest    = "ingest"
)

// PipelineEvent is an immutable fact recorded on a branch.
//
// Every implementation carries a freshly generated unique id and the UTC time
// it was created. Custom event types must keep that discipline and register a
// decoder with RegisterEventType so snapshots can restore them.
type PipelineEvent interface {
	EventID() string
	EventTime() time.Time
	EventType() string
}

// ToolCall records one tool invocation made while producing a reasoning step.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Output    string `json:"output"`
	Failed    bool   `json:"failed,omitempty"`
}

// ReasoningStep records one Draft, Critique or FinalSpec produced by a model.
// Kind always mirrors State.Kind().
type ReasoningStep struct {
	ID        string
	Kind      ReasoningKind
	State     ReasoningState
	Timestamp time.Time
	Prompt    string
	Topic     string
	Query     string
	ToolCalls []ToolCall
}

// NewReasoningStep wraps state into a step with a fresh id and timestamp.
func NewReasoningStep(state ReasoningState, prompt string, toolCalls ...ToolCall) ReasoningStep {
	var calls []ToolCall
	if len(toolCalls) > 0 {
		calls = slices.Clone(toolCalls)
	}
	return ReasoningStep{
		ID:        newEventID(),
		Kind:      state.Kind(),
		State:     state,
		Timestamp: now(),
		Prompt:    prompt,
		ToolCalls: calls,
	}
}

// About tags the step with the topic and query it answers.
func (s ReasoningStep) About(topic, query string) ReasoningStep {
	s.Topic = topic
	s.Query = query
	return s
}

// clone copies the step so the result shares no slices with s.
func (s ReasoningStep) clone() ReasoningStep {
	s.ToolCalls = slices.Clone(s.ToolCalls)
	return s
}

func (s ReasoningStep) EventID() string      { return s.ID }
func (s ReasoningStep) EventTime() time.Time { return s.Timestamp }
func (s ReasoningStep) EventType() string    { return EventTypeReasoning }

// IngestBatch records which identifiers were absorbed from which source.
type IngestBatch struct {
	ID        string
	Source    string
	IDs       []string
	Timestamp time.Time
}

// NewIngestBatch builds a batch with a fresh id and timestamp.
func NewIngestBatch(source string, ids []string) IngestBatch {
	return IngestBatch{
		ID:        newEventID(),
		Source:    source,
		IDs:       slices.Clone(ids),
		Timestamp: now(),
	}
}

// clone copies the batch so the result shares no slices with b.
func (b IngestBatch) clone() IngestBatch {
	b.IDs = slices.Clone(b.IDs)
	return b
}

func (b IngestBatch) EventID() string      { return b.ID }
func (b IngestBatch) EventTime() time.Time { return b.Timestamp }
func (b IngestBatch) EventType() string    { return EventTypeIngest }

// detach returns a copy of e that shares no mutable state with it. Custom
// event types are returned as they are.
func detach(e PipelineEvent) PipelineEvent {
	switch ev := e.(type) {
	case ReasoningStep:
		return ev.clone()
	case *ReasoningStep:
		if ev == nil {
			return e
		}
		c := ev.clone()
		return &c
	case IngestBatch:
		return ev.clone()
	case *IngestBatch:
		if ev == nil {
			return e
		}
		c := ev.clone()
		return &c
	}
	return e
}

func newEventID() string {
	return uuid.New().String()
}

// now is UTC wall-clock time without a monotonic reading, so timestamps
// survive a JSON round trip unchanged.
func now() time.Time {
	return time.Now().UTC()
}

var (
	_ PipelineEvent = ReasoningStep{}
	_ PipelineEvent = IngestBatch{}
)
