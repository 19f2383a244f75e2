// Package lineage composes AI pipeline steps over an immutable, event-sourced
// execution log.
//
// Every stage of a pipeline consumes a [Branch] and returns a new Branch with
// the events it produced appended. The input branch is never modified, so any
// earlier branch value stays a complete, valid record of the pipeline up to
// that point. A branch can be captured into a [Snapshot], persisted, and
// restored into an identical event sequence.
//
// # Core Types
//
//   - [Branch] - Immutable, append-only sequence of [PipelineEvent] values
//   - [ReasoningStep] - Event carrying a [Draft], [Critique] or [FinalSpec]
//   - [IngestBatch] - Event recording which chunk ids were absorbed from a source
//
// There is no "current state" field. [Branch.LastReasoning], [Branch.Drafts],
// [Branch.IngestedCount] and the other queries are computed from the events.
//
// # Composition
//
// Arrows are plain functions, see package arrow. The result and option
// packages hold the data-level failure types. Every arrow in this package also
// implements pipz.Chainable[Branch], so it can be used with pipz connectors.
//
// # Reasoning Arrows
//
//   - [NewDraftArrow] - Retrieve context, draft an answer (reuses an existing draft)
//   - [NewCritiqueArrow] - Critique the latest reasoning text
//   - [NewImproveArrow] - Rewrite the latest draft against the latest critique
//   - [NewRefinementLoop] - Draft once, then n rounds of critique and improve
//
// # Branch Arrows
//
//   - [NewIngest] - Chunk, embed and store documents
//   - [NewCheckpoint] - Save a snapshot and continue
//   - [NewResume] - Continue from a saved snapshot
//   - [NewFork] - Continue on an independent branch
//
// # Resilience
//
// No arrow retries or times out on its own. Compose [Retry], [Backoff],
// [Timeout] or [Fallback] around a stage explicitly.
//
// # Provider & Embedder
//
// Model and embedding access uses a resolution hierarchy:
//
//  1. Explicit parameter (.WithModel(m), .WithProvider(p), .WithEmbedder(e))
//  2. Context value (lineage.WithProvider(ctx, p))
//  3. Global default (lineage.SetProvider(p))
//
// [NewOllamaProvider] and [NewOllamaEmbedder] talk to a local Ollama server
// through its OpenAI-compatible API:
//
//	lineage.SetProvider(lineage.NewOllamaProvider("", ""))
//
// # Observability
//
// Lineage emits capitan signals throughout execution (StepStarted,
// StepCompleted, StepFailed, EventAppended, DraftReused, ToolInvoked and
// more). [NewLogObserver] and [NewMetricsObserver] turn them into zap logs and
// Prometheus metrics; [Traced] wraps a stage in an OpenTelemetry span.
package lineage
