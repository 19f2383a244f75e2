package lineage

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// Resume abandons the incoming branch and continues from a saved snapshot.
// The restored branch keeps the incoming branch's store and source references,
// since neither is part of a snapshot.
type Resume struct {
	identity pipz.Identity
	key      string
	store    SnapshotStore
}

// NewResume creates an arrow that restores the snapshot saved under key.
//
// Example:
//
//	b, err := pipeline.Process(ctx, branch)
//	if err != nil {
//	    b, err = lineage.NewResume("after-draft", store).Process(ctx, branch)
//	}
func NewResume(key string, store SnapshotStore) *Resume {
	return &Resume{
		identity: pipz.NewIdentity(key, "Branch snapshot resume"),
		key:      key,
		store:    store,
	}
}

// Process implements pipz.Chainable[Branch].
func (r *Resume) Process(ctx context.Context, b Branch) (Branch, error) {
	return runStage(ctx, r.key, "resume", b, func(ctx context.Context) (Branch, error) {
		snap, err := r.store.Load(ctx, r.key)
		if err != nil {
			return b, fmt.Errorf("resume: failed to load %s: %w", r.key, err)
		}
		restored, err := Restore(snap, WithVectorStore(b.Store()), WithDataSource(b.Source()))
		if err != nil {
			return b, fmt.Errorf("resume: %w", err)
		}

		capitan.Emit(ctx, SnapshotRestored,
			FieldBranch.Field(restored.Name()),
			FieldParent.Field(b.Name()),
			FieldStepName.Field(r.key),
			FieldEventCount.Field(restored.Len()),
		)
		return restored, nil
	})
}

// Arrow returns the resume step as a composable step.
func (r *Resume) Arrow() arrow.Step[Branch, Branch] {
	return r.Process
}

// Identity implements pipz.Chainable[Branch].
func (r *Resume) Identity() pipz.Identity {
	return r.identity
}

// Schema implements pipz.Chainable[Branch].
func (r *Resume) Schema() pipz.Node {
	return pipz.Node{Identity: r.identity, Type: "resume"}
}

// Close implements pipz.Chainable[Branch].
func (r *Resume) Close() error {
	return nil
}

var _ pipz.Chainable[Branch] = (*Resume)(nil)
