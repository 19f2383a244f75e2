package lineage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	capitantesting "github.com/zoobzio/capitan/testing"
)

func TestCheckpointSavesAndPassesThrough(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySnapshotStore()
	b := NewBranch("main").
		WithIngestEvent("src", []string{"1"}).
		WithReasoning(Draft("a"), "p")

	out, err := NewCheckpoint("after-draft", store).Process(ctx, b)
	if err != nil {
		t.Fatalf("checkpoint: %v", err)
	}
	if out.Len() != b.Len() {
		t.Errorf("expected checkpoint to append nothing, got %d events", out.Len())
	}

	snap, err := store.Load(ctx, "after-draft")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Events) != 2 {
		t.Errorf("expected 2 recorded events, got %d", len(snap.Events))
	}
}

func TestCheckpointSaveFailure(t *testing.T) {
	boom := errors.New("disk full")
	b := NewBranch("main").WithReasoning(Draft("a"), "p")

	out, err := NewCheckpoint("k", failingSnapshotStore{err: boom}).Process(context.Background(), b)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
	if out.Len() != b.Len() {
		t.Error("expected the input branch back on failure")
	}
}

func TestResumeRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	vectors := NewMemoryVectorStore()

	saved := NewBranch("main").WithReasoning(Draft("saved"), "p")
	if _, err := NewCheckpoint("k", snaps).Process(ctx, saved); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}

	// The incoming branch has moved on; resume discards its later events.
	current := saved.WithReasoning(Critique("lost"), "p").WithStore(vectors)

	restored, err := NewResume("k", snaps).Process(ctx, current)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if restored.Len() != 1 {
		t.Fatalf("expected 1 event, got %d", restored.Len())
	}
	if restored.LastReasoning().Value() != Draft("saved") {
		t.Errorf("expected Draft(saved), got %#v", restored.LastReasoning().Value())
	}
	if restored.Store() != vectors {
		t.Error("expected the incoming store reference to be kept")
	}
	requireSameEvents(t, restored, saved)
}

func TestResumeMissingSnapshot(t *testing.T) {
	b := NewBranch("main").WithReasoning(Draft("a"), "p")

	out, err := NewResume("missing", NewMemorySnapshotStore()).Process(context.Background(), b)
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if out.Len() != 1 {
		t.Error("expected the input branch back on failure")
	}
}

func TestResumeDivergentSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySnapshotStore()
	_ = store.Save(ctx, "bad", Snapshot{Name: "main", Events: []EventRecord{{Type: "mystery", ID: "x"}}})

	_, err := NewResume("bad", store).Process(ctx, NewBranch("main"))
	if !errors.Is(err, ErrReplayDivergence) {
		t.Errorf("expected ErrReplayDivergence, got %v", err)
	}
}

func TestForkArrow(t *testing.T) {
	capture := capitantesting.NewEventCapture()
	listener := capitan.Hook(BranchForked, capture.Handler())
	defer listener.Close()

	store := NewMemoryVectorStore()
	base := NewBranch("main").WithReasoning(Draft("a"), "p")

	fork, err := NewFork("experiment", store).Process(context.Background(), base)
	if err != nil {
		t.Fatalf("fork: %v", err)
	}
	if fork.Name() != "experiment" || fork.Store() != store || fork.Len() != 1 {
		t.Errorf("unexpected fork %q with %d events", fork.Name(), fork.Len())
	}

	if !capture.WaitForCount(1, time.Second) {
		t.Fatal("expected BranchForked event")
	}
	events := capture.Events()
	if got := getStringField(events[0], FieldBranch.Name()); got != "experiment" {
		t.Errorf("expected branch experiment, got %q", got)
	}
	if got := getStringField(events[0], FieldParent.Name()); got != "main" {
		t.Errorf("expected parent main, got %q", got)
	}
}

func TestBranchArrowSchemas(t *testing.T) {
	store := NewMemorySnapshotStore()

	tests := []struct {
		name     string
		identity string
		typ      string
		schema   func() (string, string)
		closeFn  func() error
	}{
		{
			name: "checkpoint", identity: "k", typ: "checkpoint",
			schema:  func() (string, string) { s := NewCheckpoint("k", store).Schema(); return s.Identity.Name(), s.Type },
			closeFn: NewCheckpoint("k", store).Close,
		},
		{
			name: "resume", identity: "k", typ: "resume",
			schema:  func() (string, string) { s := NewResume("k", store).Schema(); return s.Identity.Name(), s.Type },
			closeFn: NewResume("k", store).Close,
		},
		{
			name: "fork", identity: "alt", typ: "fork",
			schema:  func() (string, string) { s := NewFork("alt", nil).Schema(); return s.Identity.Name(), s.Type },
			closeFn: NewFork("alt", nil).Close,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, typ := tt.schema()
			if name != tt.identity {
				t.Errorf("expected identity %q, got %q", tt.identity, name)
			}
			if typ != tt.typ {
				t.Errorf("expected type %q, got %q", tt.typ, typ)
			}
			if err := tt.closeFn(); err != nil {
				t.Errorf("close: %v", err)
			}
		})
	}
}
