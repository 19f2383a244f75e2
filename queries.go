package lineage

import (
	"time"

	"github.com/zoobzio/lineage/option"
)

// Queries derive "current state" from the event sequence. Nothing here is
// cached: a branch has no state besides its events.

// LastReasoning returns the state of the most recent reasoning step of any kind.
func (b Branch) LastReasoning() option.Option[ReasoningState] {
	events := b.view()
	for i := len(events) - 1; i >= 0; i-- {
		if step, ok := events[i].(ReasoningStep); ok {
			return option.Some(step.State)
		}
	}
	return option.None[ReasoningState]()
}

// LastOfKind returns the most recent reasoning step of kind.
func (b Branch) LastOfKind(kind ReasoningKind) option.Option[ReasoningStep] {
	events := b.view()
	for i := len(events) - 1; i >= 0; i-- {
		if step, ok := events[i].(ReasoningStep); ok && step.Kind == kind {
			return option.Some(step.clone())
		}
	}
	return option.None[ReasoningStep]()
}

// FindDraft returns the most recent draft produced for topic and query.
func (b Branch) FindDraft(topic, query string) option.Option[ReasoningStep] {
	events := b.view()
	for i := len(events) - 1; i >= 0; i-- {
		step, ok := events[i].(ReasoningStep)
		if ok && step.Kind == KindDraft && step.Topic == topic && step.Query == query {
			return option.Some(step.clone())
		}
	}
	return option.None[ReasoningStep]()
}

// ReasoningSteps returns every reasoning step in append order.
func (b Branch) ReasoningSteps() []ReasoningStep {
	var steps []ReasoningStep
	for _, e := range b.view() {
		if step, ok := e.(ReasoningStep); ok {
			steps = append(steps, step.clone())
		}
	}
	return steps
}

// StepsOfKind returns every reasoning step of kind in append order.
func (b Branch) StepsOfKind(kind ReasoningKind) []ReasoningStep {
	var steps []ReasoningStep
	for _, e := range b.view() {
		if step, ok := e.(ReasoningStep); ok && step.Kind == kind {
			steps = append(steps, step.clone())
		}
	}
	return steps
}

// Drafts returns all drafts in append order.
func (b Branch) Drafts() []Draft {
	var drafts []Draft
	for _, step := range b.StepsOfKind(KindDraft) {
		drafts = append(drafts, Draft(step.State.Text()))
	}
	return drafts
}

// Critiques returns all critiques in append order.
func (b Branch) Critiques() []Critique {
	var critiques []Critique
	for _, step := range b.StepsOfKind(KindCritique) {
		critiques = append(critiques, Critique(step.State.Text()))
	}
	return critiques
}

// IngestBatches returns every ingest event in append order.
func (b Branch) IngestBatches() []IngestBatch {
	var batches []IngestBatch
	for _, e := range b.view() {
		if batch, ok := e.(IngestBatch); ok {
			batches = append(batches, batch.clone())
		}
	}
	return batches
}

// IngestedCount is the total number of identifiers absorbed across all
// ingest events. Identifiers ingested twice are counted twice.
func (b Branch) IngestedCount() int {
	total := 0
	for _, e := range b.view() {
		if batch, ok := e.(IngestBatch); ok {
			total += len(batch.IDs)
		}
	}
	return total
}

// EventsBetween returns the events whose timestamp falls in [from, to].
func (b Branch) EventsBetween(from, to time.Time) []PipelineEvent {
	var out []PipelineEvent
	for _, e := range b.view() {
		ts := e.EventTime()
		if ts.Before(from) || ts.After(to) {
			continue
		}
		out = append(out, detach(e))
	}
	return out
}

// ToolCalls flattens the recorded tool invocations of every reasoning step.
func (b Branch) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, step := range b.ReasoningSteps() {
		calls = append(calls, step.ToolCalls...)
	}
	return calls
}

// Event looks up an event by id.
func (b Branch) Event(id string) option.Option[PipelineEvent] {
	for _, e := range b.view() {
		if e.EventID() == id {
			return option.Some(detach(e))
		}
	}
	return option.None[PipelineEvent]()
}
