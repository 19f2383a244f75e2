package lineage

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// DraftArrow writes the first answer to a query.
//
// If the branch already holds a draft for the same topic and query, that draft
// is reused and the branch is returned unchanged. Otherwise the arrow
// retrieves up to k supporting documents from the branch's vector store,
// prompts the model and appends a Draft reasoning step.
type DraftArrow struct {
	reasoner
	k        int
	embedder Embedder
}

// NewDraftArrow creates a draft arrow for topic and query.
//
// Example:
//
//	b, err := lineage.NewDraftArrow("storage", "How are snapshots stored?").
//	    WithProvider(provider).
//	    Process(ctx, branch)
func NewDraftArrow(topic, query string) *DraftArrow {
	return &DraftArrow{
		reasoner: newReasoner("draft", "Draft reasoning arrow", topic, query),
		k:        DefaultRetrievalK,
	}
}

// WithModel sets the model, bypassing provider resolution.
func (d *DraftArrow) WithModel(m Model) *DraftArrow {
	d.model = m
	return d
}

// WithProvider sets the provider for this arrow.
func (d *DraftArrow) WithProvider(p Provider) *DraftArrow {
	d.provider = p
	return d
}

// WithTemperature sets the sampling temperature.
func (d *DraftArrow) WithTemperature(temp float32) *DraftArrow {
	d.temperature = temp
	return d
}

// WithTools exposes tools to the model.
func (d *DraftArrow) WithTools(tools *ToolRegistry) *DraftArrow {
	d.tools = tools
	return d
}

// WithRetrievalK sets how many documents to retrieve. Zero disables retrieval.
func (d *DraftArrow) WithRetrievalK(k int) *DraftArrow {
	d.k = k
	return d
}

// WithEmbedder sets the embedder used for the retrieval query.
func (d *DraftArrow) WithEmbedder(e Embedder) *DraftArrow {
	d.embedder = e
	return d
}

// Process implements pipz.Chainable[Branch].
func (d *DraftArrow) Process(ctx context.Context, b Branch) (Branch, error) {
	return runStage(ctx, d.identity.Name(), d.stepType, b, func(ctx context.Context) (Branch, error) {
		if existing, ok := b.FindDraft(d.topic, d.query).Get(); ok {
			capitan.Emit(ctx, DraftReused,
				FieldBranch.Field(b.Name()),
				FieldTopic.Field(d.topic),
				FieldQuery.Field(d.query),
				FieldEventID.Field(existing.ID),
			)
			return b, nil
		}

		supporting, err := d.retrieve(ctx, b)
		if err != nil {
			return b, fmt.Errorf("draft: %w", err)
		}

		prompt := fmt.Sprintf(DraftPrompt, d.topic, d.query, supporting)
		gen, err := d.generate(ctx, b, prompt)
		if err != nil {
			return b, fmt.Errorf("draft: %w", err)
		}
		return d.record(ctx, b, Draft(gen.Text), prompt, gen), nil
	})
}

// Arrow returns the arrow as a composable step.
func (d *DraftArrow) Arrow() arrow.Step[Branch, Branch] {
	return d.Process
}

// retrieve renders the documents most similar to the query. A branch without
// a store drafts without context.
func (d *DraftArrow) retrieve(ctx context.Context, b Branch) (string, error) {
	store := b.Store()
	if store == nil || d.k <= 0 {
		return "(none)", nil
	}

	embedder, err := ResolveEmbedder(ctx, d.embedder)
	if err != nil {
		return "", err
	}
	query, err := embedder.Embed(ctx, d.topic+"\n"+d.query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}
	docs, err := store.SimilaritySearch(ctx, query, d.k)
	if err != nil {
		return "", fmt.Errorf("similarity search: %w", err)
	}

	capitan.Emit(ctx, ContextRetrieved,
		FieldBranch.Field(b.Name()),
		FieldQuery.Field(d.query),
		FieldContextDocs.Field(len(docs)),
	)

	if len(docs) == 0 {
		return "(none)", nil
	}
	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "[%d] %s\n%s\n\n", i+1, doc.Source, doc.Content)
	}
	return strings.TrimSpace(sb.String()), nil
}

var _ pipz.Chainable[Branch] = (*DraftArrow)(nil)
