package lineage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrNoVectorStore is returned by arrows that need retrieval or ingest on a
// branch that carries no store reference.
var ErrNoVectorStore = errors.New("branch has no vector store")

// Document is a chunk of source material with its embedding.
type Document struct {
	ID        string
	Source    string
	Content   string
	Embedding Vector
	// Score is the similarity to the query. Only set on search results.
	Score float32
}

// VectorStore holds embedded documents for similarity retrieval.
type VectorStore interface {
	// Add stores documents. Documents whose ID already exists are replaced.
	Add(ctx context.Context, docs ...Document) error

	// SimilaritySearch returns up to k documents ranked most similar first.
	SimilaritySearch(ctx context.Context, query Vector, k int) ([]Document, error)
}

// MemoryVectorStore is an in-process VectorStore ranked by cosine similarity.
// Safe for concurrent use.
type MemoryVectorStore struct {
	mu    sync.RWMutex
	docs  []Document
	index map[string]int
}

// NewMemoryVectorStore creates an empty store.
func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{index: make(map[string]int)}
}

// Add implements VectorStore.
func (s *MemoryVectorStore) Add(_ context.Context, docs ...Document) error {
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document from %q has no id", d.Source)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		d.Embedding = slices.Clone(d.Embedding)
		d.Score = 0
		if i, ok := s.index[d.ID]; ok {
			s.docs[i] = d
			continue
		}
		s.index[d.ID] = len(s.docs)
		s.docs = append(s.docs, d)
	}
	return nil
}

// SimilaritySearch implements VectorStore. Ties keep insertion order.
func (s *MemoryVectorStore) SimilaritySearch(_ context.Context, query Vector, k int) ([]Document, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	ranked := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		if len(d.Embedding) != len(query) {
			continue
		}
		d.Score = Cosine(query, d.Embedding)
		ranked = append(ranked, d)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(ranked, func(a, b Document) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// Len returns the number of stored documents.
func (s *MemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

var _ VectorStore = (*MemoryVectorStore)(nil)
