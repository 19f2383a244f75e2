package lineage

import "sync"

// DataSource identifies where a branch's input material comes from.
type DataSource struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// Branch is an event-sourced line of pipeline execution.
//
// A Branch is an immutable value. WithEvent and its helpers return a new
// Branch one event longer; the receiver keeps its original events forever.
// Every notion of "current state" is a query over the event sequence, so
// there is nothing to keep in sync.
//
// # Concurrency
//
// Branch values are safe to share and read from any number of goroutines.
// Two goroutines deriving from the same Branch each get an independent
// result: neither sees the other's events unless the caller merges them.
//
// # Sharing
//
// Derived branches share the backing array of their parent. The first branch
// to extend a given prefix appends in place; any later branch extending the
// same prefix copies it first. Appends are therefore amortised O(1) along a
// single chain and never visible to siblings.
type Branch struct {
	name   string
	store  VectorStore
	source DataSource
	log    *eventLog
	n      int
}

type eventLog struct {
	mu    sync.Mutex
	items []PipelineEvent
}

// BranchOption configures a branch at construction or restore time.
type BranchOption func(*Branch)

// WithVectorStore attaches the external store reference.
func WithVectorStore(store VectorStore) BranchOption {
	return func(b *Branch) {
		b.store = store
	}
}

// WithDataSource attaches the external source reference.
func WithDataSource(source DataSource) BranchOption {
	return func(b *Branch) {
		b.source = source
	}
}

// NewBranch creates an empty branch.
func NewBranch(name string, opts ...BranchOption) Branch {
	b := Branch{name: name}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Name returns the branch name.
func (b Branch) Name() string { return b.name }

// Store returns the vector store reference, which may be nil.
func (b Branch) Store() VectorStore { return b.store }

// Source returns the data source reference.
func (b Branch) Source() DataSource { return b.source }

// Len returns the number of events.
func (b Branch) Len() int { return b.n }

// Events returns a copy of the event sequence in append order.
func (b Branch) Events() []PipelineEvent {
	events := b.view()
	if events == nil {
		return nil
	}
	out := make([]PipelineEvent, len(events))
	for i, e := range events {
		out[i] = detach(e)
	}
	return out
}

// view is the shared, read-only event prefix owned by b.
func (b Branch) view() []PipelineEvent {
	if b.log == nil {
		return nil
	}
	b.log.mu.Lock()
	defer b.log.mu.Unlock()
	return b.log.items[:b.n:b.n]
}

// WithEvent returns a new branch with e appended. The branch keeps its own
// copy of e's slices.
func (b Branch) WithEvent(e PipelineEvent) Branch {
	e = detach(e)
	next := b
	next.n = b.n + 1

	if b.log != nil {
		b.log.mu.Lock()
		if len(b.log.items) == b.n {
			b.log.items = append(b.log.items, e)
			b.log.mu.Unlock()
			return next
		}
		prefix := b.log.items[:b.n:b.n]
		b.log.mu.Unlock()

		items := make([]PipelineEvent, b.n, 2*b.n+1)
		copy(items, prefix)
		next.log = &eventLog{items: append(items, e)}
		return next
	}

	next.log = &eventLog{items: []PipelineEvent{e}}
	return next
}

// WithReasoning appends a fresh ReasoningStep carrying state.
func (b Branch) WithReasoning(state ReasoningState, prompt string, toolCalls ...ToolCall) Branch {
	return b.WithEvent(NewReasoningStep(state, prompt, toolCalls...))
}

// WithIngestEvent appends a fresh IngestBatch.
func (b Branch) WithIngestEvent(source string, ids []string) Branch {
	return b.WithEvent(NewIngestBatch(source, ids))
}

// Fork starts an independent line of history under a new name. The fork
// keeps the events so far; a nil store keeps the current store reference.
// Nothing appended to the fork is ever visible on b.
func (b Branch) Fork(name string, store VectorStore) Branch {
	fork := b
	fork.name = name
	if store != nil {
		fork.store = store
	}
	return fork
}

// WithStore returns b pointing at a different vector store.
func (b Branch) WithStore(store VectorStore) Branch {
	b.store = store
	return b
}
