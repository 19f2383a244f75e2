package lineage

// Default configuration for lineage arrows.
// These can be overridden per-arrow using builder methods.
var (
	// DefaultTemperature is used for every model call unless an arrow overrides it.
	// Matches the sampling temperature local Ollama agents are usually run with.
	DefaultTemperature float32 = 0.7

	// DefaultRetrievalK is how many documents the draft arrow pulls from the
	// branch's vector store as supporting context.
	DefaultRetrievalK = 4

	// DefaultSystemPrompt frames every model call made through ProviderModel.
	DefaultSystemPrompt = "You are a careful technical writer. Answer precisely and keep the response self-contained."

	// DefaultMaxToolRounds caps how many times a single generation may hand
	// control to registered tools before the reply is accepted as final.
	DefaultMaxToolRounds = 3

	// DefaultChunkSize and DefaultChunkOverlap configure the ingest splitter.
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 80
)

// Prompt templates for the refinement arrows. Each is passed to fmt.Sprintf.
var (
	// DraftPrompt receives topic, query and retrieved context.
	DraftPrompt = `Topic: %s
Query: %s

Context:
%s

Write a first draft that answers the query using the context where it is relevant.`

	// CritiquePrompt receives topic, query and the text under review.
	CritiquePrompt = `Topic: %s
Query: %s

Draft:
%s

Critique this draft. List concrete weaknesses: missing information, errors, unclear wording and unsupported claims.`

	// ImprovePrompt receives topic, query, the latest draft and the latest critique.
	ImprovePrompt = `Topic: %s
Query: %s

Draft:
%s

Critique:
%s

Rewrite the draft so that it addresses every point in the critique. Return only the improved draft.`
)
