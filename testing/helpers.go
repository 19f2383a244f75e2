// Package lineagetest provides test utilities for lineage.
package lineagetest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/zoobzio/zyn"

	"github.com/zoobzio/lineage"
)

// MockProvider implements lineage.Provider with scripted replies. Replies are
// returned in order; the last one repeats once the script runs out.
type MockProvider struct {
	name    string
	replies []string
	err     error

	mu           sync.Mutex
	calls        [][]zyn.Message
	temperatures []float32
}

// NewMockProvider creates a provider replying with replies in order.
func NewMockProvider(replies ...string) *MockProvider {
	if len(replies) == 0 {
		replies = []string{"mock response"}
	}
	return &MockProvider{name: "mock", replies: replies}
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.err = err
	return m
}

// Call implements lineage.Provider.
func (m *MockProvider) Call(_ context.Context, messages []zyn.Message, temperature float32) (*zyn.ProviderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]zyn.Message(nil), messages...))
	m.temperatures = append(m.temperatures, temperature)
	if m.err != nil {
		return nil, m.err
	}

	reply := m.replies[min(len(m.calls), len(m.replies))-1]
	return &zyn.ProviderResponse{
		Content: reply,
		Usage:   zyn.TokenUsage{Prompt: 10, Completion: 5, Total: 15},
	}, nil
}

// Name implements lineage.Provider.
func (m *MockProvider) Name() string { return m.name }

// Calls returns the messages of every call so far.
func (m *MockProvider) Calls() [][]zyn.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]zyn.Message(nil), m.calls...)
}

// Temperatures returns the temperature of every call so far.
func (m *MockProvider) Temperatures() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float32(nil), m.temperatures...)
}

// MockModel implements lineage.Model. Each reply is "<stage> <n>", where
// stage is read from the prompt (draft, critique or improve) and n counts the
// calls for that stage, so tests can assert exactly which call produced which
// text.
type MockModel struct {
	mu      sync.Mutex
	prompts []string
	counts  map[string]int
	failAt  int
	err     error
}

// NewMockModel creates a model that never fails.
func NewMockModel() *MockModel {
	return &MockModel{counts: make(map[string]int)}
}

// FailOn makes the n-th call (1-based) fail with err.
func (m *MockModel) FailOn(n int, err error) *MockModel {
	m.failAt = n
	m.err = err
	return m
}

// Generate implements lineage.Model.
func (m *MockModel) Generate(_ context.Context, prompt string, _ *lineage.ToolRegistry) (lineage.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if m.failAt > 0 && len(m.prompts) == m.failAt {
		return lineage.Generation{}, m.err
	}

	stage := StageOf(prompt)
	m.counts[stage]++
	return lineage.Generation{Text: fmt.Sprintf("%s %d", stage, m.counts[stage])}, nil
}

// Prompts returns every prompt received so far.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// StageOf classifies a prompt built from the default templates.
func StageOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "Rewrite the draft"):
		return "improve"
	case strings.Contains(prompt, "Critique this draft"):
		return "critique"
	case strings.Contains(prompt, "Write a first draft"):
		return "draft"
	default:
		return "unknown"
	}
}

// HashEmbedder is a deterministic lineage.Embedder. Each vector counts the
// letters of the text folded into Dims buckets, so texts sharing words land
// close together.
type HashEmbedder struct {
	Dims int
	Err  error

	mu    sync.Mutex
	texts []string
}

// NewHashEmbedder creates an embedder producing vectors of dims entries.
func NewHashEmbedder(dims int) *HashEmbedder {
	return &HashEmbedder{Dims: dims}
}

// Embed implements lineage.Embedder.
func (h *HashEmbedder) Embed(_ context.Context, text string) (lineage.Vector, error) {
	h.mu.Lock()
	h.texts = append(h.texts, text)
	h.mu.Unlock()
	if h.Err != nil {
		return nil, h.Err
	}

	v := make(lineage.Vector, h.Dims)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[int(r-'a')%h.Dims]++
		}
	}
	return v, nil
}

// Dimensions implements lineage.Embedder.
func (h *HashEmbedder) Dimensions() int { return h.Dims }

// Texts returns every text embedded so far.
func (h *HashEmbedder) Texts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.texts...)
}

// MockVectorStore wraps a MemoryVectorStore with call recording and error
// injection.
type MockVectorStore struct {
	*lineage.MemoryVectorStore
	AddErr    error
	SearchErr error

	mu       sync.Mutex
	searches int
}

// NewMockVectorStore creates an empty mock store.
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{MemoryVectorStore: lineage.NewMemoryVectorStore()}
}

// Add implements lineage.VectorStore.
func (m *MockVectorStore) Add(ctx context.Context, docs ...lineage.Document) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	return m.MemoryVectorStore.Add(ctx, docs...)
}

// SimilaritySearch implements lineage.VectorStore.
func (m *MockVectorStore) SimilaritySearch(ctx context.Context, query lineage.Vector, k int) ([]lineage.Document, error) {
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.MemoryVectorStore.SimilaritySearch(ctx, query, k)
}

// Searches returns how many searches were made.
func (m *MockVectorStore) Searches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches
}

// MockSnapshotStore wraps a MemorySnapshotStore with error injection.
type MockSnapshotStore struct {
	*lineage.MemorySnapshotStore
	SaveErr error
	LoadErr error
}

// NewMockSnapshotStore creates an empty mock store.
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{MemorySnapshotStore: lineage.NewMemorySnapshotStore()}
}

// Save implements lineage.SnapshotStore.
func (m *MockSnapshotStore) Save(ctx context.Context, key string, s lineage.Snapshot) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	return m.MemorySnapshotStore.Save(ctx, key, s)
}

// Load implements lineage.SnapshotStore.
func (m *MockSnapshotStore) Load(ctx context.Context, key string) (lineage.Snapshot, error) {
	if m.LoadErr != nil {
		return lineage.Snapshot{}, m.LoadErr
	}
	return m.MemorySnapshotStore.Load(ctx, key)
}

var (
	_ lineage.Provider      = (*MockProvider)(nil)
	_ lineage.Model         = (*MockModel)(nil)
	_ lineage.Embedder      = (*HashEmbedder)(nil)
	_ lineage.VectorStore   = (*MockVectorStore)(nil)
	_ lineage.SnapshotStore = (*MockSnapshotStore)(nil)
)

// NewTestBranch creates an empty branch backed by a fresh MockVectorStore.
func NewTestBranch(t *testing.T, name string) lineage.Branch {
	t.Helper()
	return lineage.NewBranch(name, lineage.WithVectorStore(NewMockVectorStore()))
}

// RequireKinds asserts the branch's reasoning steps have exactly kinds, in order.
func RequireKinds(t *testing.T, b lineage.Branch, kinds ...lineage.ReasoningKind) {
	t.Helper()
	steps := b.ReasoningSteps()
	if len(steps) != len(kinds) {
		t.Fatalf("expected %d reasoning steps, got %d", len(kinds), len(steps))
	}
	for i, step := range steps {
		if step.Kind != kinds[i] {
			t.Fatalf("reasoning step %d: expected kind %q, got %q", i, kinds[i], step.Kind)
		}
	}
}

// RequireLastReasoning asserts the latest reasoning state equals want.
func RequireLastReasoning(t *testing.T, b lineage.Branch, want lineage.ReasoningState) {
	t.Helper()
	got, ok := b.LastReasoning().Get()
	if !ok {
		t.Fatalf("expected last reasoning %v, branch has none", want)
	}
	if got != want {
		t.Fatalf("expected last reasoning %#v, got %#v", want, got)
	}
}

// RequireSameEvents asserts two branches hold the same event sequence.
func RequireSameEvents(t *testing.T, got, want lineage.Branch) {
	t.Helper()
	g, w := got.Events(), want.Events()
	if len(g) != len(w) {
		t.Fatalf("expected %d events, got %d", len(w), len(g))
	}
	for i := range w {
		if g[i].EventID() != w[i].EventID() ||
			g[i].EventType() != w[i].EventType() ||
			!g[i].EventTime().Equal(w[i].EventTime()) {
			t.Fatalf("event %d: expected %s/%s at %v, got %s/%s at %v", i,
				w[i].EventType(), w[i].EventID(), w[i].EventTime(),
				g[i].EventType(), g[i].EventID(), g[i].EventTime())
		}
	}
}
