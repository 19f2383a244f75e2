package lineage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// Ingest absorbs documents into the branch's vector store and records the
// chunk identifiers as an IngestBatch.
//
// Each text is split into overlapping chunks, every chunk is embedded, and
// all chunks are added in one call. Chunk ids are derived from the source and
// the chunk position and content, so ingesting the same material twice
// replaces rather than duplicates it in the store.
type Ingest struct {
	identity pipz.Identity
	source   string
	texts    []string
	size     int
	overlap  int
	embedder Embedder
}

// NewIngest creates an ingest arrow for texts from source.
func NewIngest(source string, texts ...string) *Ingest {
	return &Ingest{
		identity: pipz.NewIdentity("ingest", "Document ingest arrow"),
		source:   source,
		texts:    texts,
		size:     DefaultChunkSize,
		overlap:  DefaultChunkOverlap,
	}
}

// WithChunkSize sets the splitter's chunk size in characters.
func (i *Ingest) WithChunkSize(size int) *Ingest {
	i.size = size
	return i
}

// WithChunkOverlap sets how many characters consecutive chunks share.
func (i *Ingest) WithChunkOverlap(overlap int) *Ingest {
	i.overlap = overlap
	return i
}

// WithEmbedder sets the embedder for this arrow.
func (i *Ingest) WithEmbedder(e Embedder) *Ingest {
	i.embedder = e
	return i
}

// Process implements pipz.Chainable[Branch].
func (i *Ingest) Process(ctx context.Context, b Branch) (Branch, error) {
	return runStage(ctx, i.identity.Name(), "ingest", b, func(ctx context.Context) (Branch, error) {
		store := b.Store()
		if store == nil {
			return b, fmt.Errorf("ingest: %w", ErrNoVectorStore)
		}
		embedder, err := ResolveEmbedder(ctx, i.embedder)
		if err != nil {
			return b, fmt.Errorf("ingest: %w", err)
		}

		splitter := textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(i.size),
			textsplitter.WithChunkOverlap(i.overlap),
		)

		var docs []Document
		for di, text := range i.texts {
			chunks, err := splitter.SplitText(text)
			if err != nil {
				return b, fmt.Errorf("ingest: failed to split document %d: %w", di, err)
			}
			for ci, chunk := range chunks {
				if strings.TrimSpace(chunk) == "" {
					continue
				}
				vec, err := embedder.Embed(ctx, chunk)
				if err != nil {
					return b, fmt.Errorf("ingest: failed to embed chunk %d of document %d: %w", ci, di, err)
				}
				docs = append(docs, Document{
					ID:        chunkID(i.source, di, ci, chunk),
					Source:    i.source,
					Content:   chunk,
					Embedding: vec,
				})
			}
		}

		if len(docs) > 0 {
			if err := store.Add(ctx, docs...); err != nil {
				return b, fmt.Errorf("ingest: %w", err)
			}
		}

		ids := make([]string, len(docs))
		for n, d := range docs {
			ids[n] = d.ID
		}

		capitan.Emit(ctx, IngestCompleted,
			FieldBranch.Field(b.Name()),
			FieldSource.Field(i.source),
			FieldChunkCount.Field(len(docs)),
		)
		return appendEvent(ctx, b, NewIngestBatch(i.source, ids)), nil
	})
}

// Arrow returns the ingest arrow as a composable step.
func (i *Ingest) Arrow() arrow.Step[Branch, Branch] {
	return i.Process
}

// Identity implements pipz.Chainable[Branch].
func (i *Ingest) Identity() pipz.Identity {
	return i.identity
}

// Schema implements pipz.Chainable[Branch].
func (i *Ingest) Schema() pipz.Node {
	return pipz.Node{Identity: i.identity, Type: "ingest"}
}

// Close implements pipz.Chainable[Branch].
func (i *Ingest) Close() error {
	return nil
}

func chunkID(source string, doc, chunk int, content string) string {
	name := fmt.Sprintf("%s#%d.%d:%s", source, doc, chunk, content)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

var _ pipz.Chainable[Branch] = (*Ingest)(nil)
