package lineage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/zoobzio/zyn"
)

// Ollama serves an OpenAI-compatible API under /v1; these defaults point at
// an Ollama instance on the container host.
const (
	DefaultOllamaHost   = "http://host.docker.internal:11434"
	DefaultOllamaModel  = "llama3"
	DefaultOllamaAPIKey = "ollama"
)

// OpenAI embedding models and their dimensions.
const (
	ModelTextEmbedding3Small = "text-embedding-3-small"
	ModelTextEmbedding3Large = "text-embedding-3-large"
	Dimensions3Small         = 1536
	Dimensions3Large         = 3072
)

// OpenAIOption configures the OpenAI-compatible client behind a provider or
// embedder.
type OpenAIOption func(*openai.ClientConfig)

// WithBaseURL points the client at a compatible server.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openai.ClientConfig) {
		c.BaseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(c *openai.ClientConfig) {
		c.HTTPClient = client
	}
}

func newOpenAIClient(apiKey string, opts []OpenAIOption) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(&cfg)
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIProvider is a Provider for any OpenAI-compatible chat endpoint.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates a provider for model.
func NewOpenAIProvider(apiKey, model string, opts ...OpenAIOption) *OpenAIProvider {
	return &OpenAIProvider{
		client: newOpenAIClient(apiKey, opts),
		model:  model,
		name:   "openai",
	}
}

// NewOllamaProvider creates a provider for an Ollama server. Empty arguments
// fall back to DefaultOllamaHost and DefaultOllamaModel.
func NewOllamaProvider(host, model string, opts ...OpenAIOption) *OpenAIProvider {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	opts = append([]OpenAIOption{WithBaseURL(strings.TrimRight(host, "/") + "/v1")}, opts...)
	p := NewOpenAIProvider(DefaultOllamaAPIKey, model, opts...)
	p.name = "ollama"
	return p
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return p.name }

// Call implements Provider.
func (p *OpenAIProvider) Call(ctx context.Context, messages []zyn.Message, temperature float32) (*zyn.ProviderResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &zyn.ProviderResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: zyn.TokenUsage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		},
	}, nil
}

// OpenAIEmbedder is an Embedder for any OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an embedder for model producing vectors of the
// given dimensions.
func NewOpenAIEmbedder(apiKey, model string, dimensions int, opts ...OpenAIOption) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     newOpenAIClient(apiKey, opts),
		model:      model,
		dimensions: dimensions,
	}
}

// NewOllamaEmbedder creates an embedder served by Ollama.
func NewOllamaEmbedder(host, model string, dimensions int, opts ...OpenAIOption) *OpenAIEmbedder {
	if host == "" {
		host = DefaultOllamaHost
	}
	opts = append([]OpenAIOption{WithBaseURL(strings.TrimRight(host, "/") + "/v1")}, opts...)
	return NewOpenAIEmbedder(DefaultOllamaAPIKey, model, dimensions, opts...)
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding returned no data")
	}
	return Vector(resp.Data[0].Embedding), nil
}

// Dimensions implements Embedder.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

var (
	_ Provider = (*OpenAIProvider)(nil)
	_ Embedder = (*OpenAIEmbedder)(nil)
)
