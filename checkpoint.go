package lineage

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// Checkpoint captures the branch into a SnapshotStore and passes it on
// unchanged. Later, Resume can reconstruct the branch from the same key.
type Checkpoint struct {
	identity pipz.Identity
	key      string
	store    SnapshotStore
}

// NewCheckpoint creates a checkpoint saving under key.
//
// Example:
//
//	pipeline := arrow.Compose(
//	    lineage.NewDraftArrow(topic, query).Arrow(),
//	    lineage.NewCheckpoint("after-draft", store).Arrow(),
//	    lineage.NewCritiqueArrow(topic, query).Arrow(),
//	)
func NewCheckpoint(key string, store SnapshotStore) *Checkpoint {
	return &Checkpoint{
		identity: pipz.NewIdentity(key, "Branch snapshot checkpoint"),
		key:      key,
		store:    store,
	}
}

// Process implements pipz.Chainable[Branch].
func (c *Checkpoint) Process(ctx context.Context, b Branch) (Branch, error) {
	return runStage(ctx, c.key, "checkpoint", b, func(ctx context.Context) (Branch, error) {
		snap, err := Capture(b)
		if err != nil {
			return b, fmt.Errorf("checkpoint: %w", err)
		}
		if err := c.store.Save(ctx, c.key, snap); err != nil {
			return b, fmt.Errorf("checkpoint: failed to save %s: %w", c.key, err)
		}

		capitan.Emit(ctx, SnapshotCaptured,
			FieldBranch.Field(b.Name()),
			FieldStepName.Field(c.key),
			FieldEventCount.Field(len(snap.Events)),
		)
		return b, nil
	})
}

// Arrow returns the checkpoint as a composable step.
func (c *Checkpoint) Arrow() arrow.Step[Branch, Branch] {
	return c.Process
}

// Identity implements pipz.Chainable[Branch].
func (c *Checkpoint) Identity() pipz.Identity {
	return c.identity
}

// Schema implements pipz.Chainable[Branch].
func (c *Checkpoint) Schema() pipz.Node {
	return pipz.Node{Identity: c.identity, Type: "checkpoint"}
}

// Close implements pipz.Chainable[Branch].
func (c *Checkpoint) Close() error {
	return nil
}

// Fork continues the pipeline on an independent branch. The fork carries the
// history so far; nothing appended after it is visible on the original.
type Fork struct {
	identity pipz.Identity
	name     string
	store    VectorStore
}

// NewFork creates a fork arrow producing a branch called name. A nil store
// keeps the current store reference.
func NewFork(name string, store VectorStore) *Fork {
	return &Fork{
		identity: pipz.NewIdentity(name, "Branch fork"),
		name:     name,
		store:    store,
	}
}

// Process implements pipz.Chainable[Branch].
func (f *Fork) Process(ctx context.Context, b Branch) (Branch, error) {
	fork := b.Fork(f.name, f.store)
	capitan.Emit(ctx, BranchForked,
		FieldBranch.Field(fork.Name()),
		FieldParent.Field(b.Name()),
		FieldEventCount.Field(fork.Len()),
	)
	return fork, nil
}

// Arrow returns the fork as a composable step.
func (f *Fork) Arrow() arrow.Step[Branch, Branch] {
	return f.Process
}

// Identity implements pipz.Chainable[Branch].
func (f *Fork) Identity() pipz.Identity {
	return f.identity
}

// Schema implements pipz.Chainable[Branch].
func (f *Fork) Schema() pipz.Node {
	return pipz.Node{Identity: f.identity, Type: "fork"}
}

// Close implements pipz.Chainable[Branch].
func (f *Fork) Close() error {
	return nil
}

var (
	_ pipz.Chainable[Branch] = (*Checkpoint)(nil)
	_ pipz.Chainable[Branch] = (*Fork)(nil)
)
