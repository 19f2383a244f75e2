package lineage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zoobzio/zyn"
)

// mockProvider implements Provider with scripted replies. The last reply
// repeats once the script is exhausted.
type mockProvider struct {
	name    string
	replies []string
	err     error

	mu    sync.Mutex
	calls [][]zyn.Message
	temps []float32
}

func newMockProvider(name string, replies ...string) *mockProvider {
	if len(replies) == 0 {
		replies = []string{"mock response"}
	}
	return &mockProvider{name: name, replies: replies}
}

func (m *mockProvider) Call(_ context.Context, messages []zyn.Message, temperature float32) (*zyn.ProviderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]zyn.Message(nil), messages...))
	m.temps = append(m.temps, temperature)
	if m.err != nil {
		return nil, m.err
	}
	reply := m.replies[min(len(m.calls), len(m.replies))-1]
	return &zyn.ProviderResponse{
		Content: reply,
		Usage: zyn.TokenUsage{
			Prompt:     10,
			Completion: 5,
			Total:      15,
		},
	}, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockProvider) lastCall() []zyn.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// mockModel implements Model. Replies are "<stage> <n>", stage being read
// from the prompt template and n counting calls for that stage.
type mockModel struct {
	mu      sync.Mutex
	prompts []string
	counts  map[string]int
	failAt  int
	err     error
	tools   []*ToolRegistry
}

func newMockModel() *mockModel {
	return &mockModel{counts: make(map[string]int)}
}

func (m *mockModel) Generate(_ context.Context, prompt string, tools *ToolRegistry) (Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.tools = append(m.tools, tools)
	if m.failAt > 0 && len(m.prompts) == m.failAt {
		return Generation{}, m.err
	}
	stage := stageOf(prompt)
	m.counts[stage]++
	return Generation{Text: fmt.Sprintf("%s %d", stage, m.counts[stage])}, nil
}

func (m *mockModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func stageOf(prompt string) string {
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

// mockEmbedder maps text to letter counts folded into dims buckets.
type mockEmbedder struct {
	dims int
	err  error

	mu    sync.Mutex
	texts []string
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (Vector, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	v := make(Vector, m.dims)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[int(r-'a')%m.dims]++
		}
	}
	return v, nil
}

func (m *mockEmbedder) Dimensions() int {
	return m.dims
}

// failingStore is a VectorStore whose every call fails.
type failingStore struct {
	err error
}

func (f failingStore) Add(context.Context, ...Document) error {
	return f.err
}

func (f failingStore) SimilaritySearch(context.Context, Vector, int) ([]Document, error) {
	return nil, f.err
}

// failingSnapshotStore is a SnapshotStore whose every call fails.
type failingSnapshotStore struct {
	err error
}

func (f failingSnapshotStore) Save(context.Context, string, Snapshot) error {
	return f.err
}

func (f failingSnapshotStore) Load(context.Context, string) (Snapshot, error) {
	return Snapshot{}, f.err
}

func (f failingSnapshotStore) Delete(context.Context, string) error {
	return f.err
}
