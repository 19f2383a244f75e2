package lineage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// branchRow is one captured snapshot.
type branchRow struct {
	Key        string    `db:"key" type:"text" constraints:"primarykey"`
	Name       string    `db:"name" type:"text" constraints:"notnull"`
	EventCount int       `db:"event_count" type:"integer" constraints:"notnull"`
	CapturedAt time.Time `db:"captured_at" type:"timestamp" constraints:"notnull"`
}

// eventRow is one event of a captured snapshot. Timestamp is kept as RFC 3339
// text because timestamp columns only hold microseconds.
type eventRow struct {
	ID        string `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	BranchKey string `db:"branch_key" type:"text" constraints:"notnull" references:"branches(key)"`
	Seq       int    `db:"seq" type:"integer" constraints:"notnull"`
	EventID   string `db:"event_id" type:"text" constraints:"notnull"`
	Type      string `db:"type" type:"text" constraints:"notnull"`
	Timestamp string `db:"timestamp" type:"text" constraints:"notnull"`
	Payload   string `db:"payload" type:"jsonb" constraints:"notnull"`
}

// SoySnapshotStore implements SnapshotStore on PostgreSQL using soy.
type SoySnapshotStore struct {
	branches *soy.Soy[branchRow]
	events   *soy.Soy[eventRow]
	db       *sqlx.DB
}

// NewSoySnapshotStore creates a snapshot store over the branches and
// branch_events tables.
func NewSoySnapshotStore(db *sqlx.DB) (*SoySnapshotStore, error) {
	renderer := postgres.New()

	branches, err := soy.New[branchRow](db, "branches", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize branches table: %w", err)
	}
	events, err := soy.New[eventRow](db, "branch_events", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize branch_events table: %w", err)
	}

	return &SoySnapshotStore{branches: branches, events: events, db: db}, nil
}

// Save implements SnapshotStore. An earlier snapshot under key is replaced in
// the same transaction, so readers see either the old snapshot or the new one.
func (s *SoySnapshotStore) Save(ctx context.Context, key string, snap Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteTx(ctx, tx, key); err != nil {
		return err
	}

	_, err = s.branches.Insert().ExecTx(ctx, tx, &branchRow{
		Key:        key,
		Name:       snap.Name,
		EventCount: len(snap.Events),
		CapturedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert branch: %w", err)
	}

	for i, rec := range snap.Events {
		payload := string(rec.Payload)
		if payload == "" {
			payload = "null"
		}
		_, err := s.events.Insert().ExecTx(ctx, tx, &eventRow{
			BranchKey: key,
			Seq:       i,
			EventID:   rec.ID,
			Type:      rec.Type,
			Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
			Payload:   payload,
		})
		if err != nil {
			return fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot %s: %w", key, err)
	}
	return nil
}

// Load implements SnapshotStore. The branch row and its events are read from
// one repeatable-read transaction.
func (s *SoySnapshotStore) Load(ctx context.Context, key string) (Snapshot, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	branch, err := s.branches.Select().
		Where("key", "=", "key").
		ExecTx(ctx, tx, map[string]any{"key": key})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
		}
		return Snapshot{}, fmt.Errorf("failed to get branch: %w", err)
	}

	rows, err := s.events.Query().
		Where("branch_key", "=", "branch_key").
		OrderBy("seq", "asc").
		ExecTx(ctx, tx, map[string]any{"branch_key": key})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get events: %w", err)
	}
	if len(rows) != branch.EventCount {
		return Snapshot{}, fmt.Errorf("%w: %s has %d events, expected %d",
			ErrReplayDivergence, key, len(rows), branch.EventCount)
	}

	snap := Snapshot{Name: branch.Name, Events: make([]EventRecord, 0, len(rows))}
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339Nano, row.Timestamp)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: event %s timestamp: %v", ErrReplayDivergence, row.EventID, err)
		}
		snap.Events = append(snap.Events, EventRecord{
			Type:      row.Type,
			ID:        row.EventID,
			Timestamp: ts.UTC(),
			Payload:   json.RawMessage(row.Payload),
		})
	}
	return snap, nil
}

// Delete implements SnapshotStore.
func (s *SoySnapshotStore) Delete(ctx context.Context, key string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteTx(ctx, tx, key); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of %s: %w", key, err)
	}
	return nil
}

func (s *SoySnapshotStore) deleteTx(ctx context.Context, tx *sqlx.Tx, key string) error {
	_, err := s.events.Remove().
		Where("branch_key", "=", "branch_key").
		ExecTx(ctx, tx, map[string]any{"branch_key": key})
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	_, err = s.branches.Remove().
		Where("key", "=", "key").
		ExecTx(ctx, tx, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SoySnapshotStore) Close() error {
	return s.db.Close()
}

// documentRow is one embedded chunk.
type documentRow struct {
	ID        string `db:"id" type:"text" constraints:"primarykey"`
	Source    string `db:"source" type:"text" constraints:"notnull"`
	Content   string `db:"content" type:"text" constraints:"notnull"`
	Embedding Vector `db:"embedding" type:"vector(1536)"`
}

// SoyVectorStore implements VectorStore on PostgreSQL with pgvector.
type SoyVectorStore struct {
	documents *soy.Soy[documentRow]
	db        *sqlx.DB
}

// NewSoyVectorStore creates a vector store over the documents table.
func NewSoyVectorStore(db *sqlx.DB) (*SoyVectorStore, error) {
	documents, err := soy.New[documentRow](db, "documents", postgres.New())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize documents table: %w", err)
	}
	return &SoyVectorStore{documents: documents, db: db}, nil
}

// Add implements VectorStore.
func (s *SoyVectorStore) Add(ctx context.Context, docs ...Document) error {
	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("document from %q has no id", d.Source)
		}
		_, err := s.documents.Remove().
			Where("id", "=", "id").
			Exec(ctx, map[string]any{"id": d.ID})
		if err != nil {
			return fmt.Errorf("failed to replace document %s: %w", d.ID, err)
		}
		_, err = s.documents.Insert().Exec(ctx, &documentRow{
			ID:        d.ID,
			Source:    d.Source,
			Content:   d.Content,
			Embedding: d.Embedding,
		})
		if err != nil {
			return fmt.Errorf("failed to insert document %s: %w", d.ID, err)
		}
	}
	return nil
}

// SimilaritySearch implements VectorStore. Rows are ordered by pgvector cosine
// distance, so they are in descending Score order.
func (s *SoyVectorStore) SimilaritySearch(ctx context.Context, query Vector, k int) ([]Document, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.documents.Query().
		WhereNotNull("embedding").
		OrderByExpr("embedding", "<=>", "query_embedding", "asc").
		Limit(k).
		Exec(ctx, map[string]any{"query_embedding": query})
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{
			ID:        row.ID,
			Source:    row.Source,
			Content:   row.Content,
			Embedding: row.Embedding,
			Score:     Cosine(query, row.Embedding),
		})
	}
	return docs, nil
}

// Close closes the underlying database connection.
func (s *SoyVectorStore) Close() error {
	return s.db.Close()
}

var (
	_ SnapshotStore = (*SoySnapshotStore)(nil)
	_ VectorStore   = (*SoyVectorStore)(nil)
)
