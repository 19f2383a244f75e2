package lineage

import "github.com/zoobzio/capitan"

// Signal definitions for branch and reasoning events.
// Signals follow the pattern: lineage.<entity>.<event>.
var (
	// Branch lifecycle signals.
	BranchForked = newSignal(
		"lineage.branch.forked",
		"Independent branch derived from an existing line of history",
	)
	EventAppended = newSignal(
		"lineage.event.appended",
		"Pipeline event appended to a branch",
	)

	// Stage execution signals.
	StepStarted = newSignal(
		"lineage.step.started",
		"Branch stage began execution",
	)
	StepCompleted = newSignal(
		"lineage.step.completed",
		"Branch stage finished successfully",
	)
	StepFailed = newSignal(
		"lineage.step.failed",
		"Branch stage raised a fault",
	)

	// Reasoning signals.
	DraftReused = newSignal(
		"lineage.draft.reused",
		"Existing draft for topic and query reused without calling the model",
	)
	ContextRetrieved = newSignal(
		"lineage.context.retrieved",
		"Supporting documents retrieved from the branch's vector store",
	)
	ModelCalled = newSignal(
		"lineage.model.called",
		"Reasoning arrow sent a prompt to its model",
	)
	ToolInvoked = newSignal(
		"lineage.tool.invoked",
		"Registered tool executed on behalf of the model",
	)

	// Persistence signals.
	SnapshotCaptured = newSignal(
		"lineage.snapshot.captured",
		"Branch captured into a persisted snapshot",
	)
	SnapshotRestored = newSignal(
		"lineage.snapshot.restored",
		"Branch reconstructed from a persisted snapshot",
	)
	IngestCompleted = newSignal(
		"lineage.ingest.completed",
		"Documents chunked, embedded and added to the vector store",
	)
)

// namedSignal pairs a signal with its name so observers can label events.
type namedSignal struct {
	name   string
	signal capitan.Signal
}

// allSignals lists every lineage signal in declaration order.
var allSignals []namedSignal

func newSignal(name, description string) capitan.Signal {
	sig := capitan.NewSignal(name, description)
	allSignals = append(allSignals, namedSignal{name: name, signal: sig})
	return sig
}

// Field keys for lineage event data.
var (
	// Branch metadata.
	FieldBranch     = capitan.NewStringKey("branch")
	FieldParent     = capitan.NewStringKey("parent_branch")
	FieldEventType  = capitan.NewStringKey("event_type")
	FieldEventID    = capitan.NewStringKey("event_id")
	FieldEventCount = capitan.NewIntKey("event_count")

	// Stage metadata.
	FieldStepName     = capitan.NewStringKey("step_name")
	FieldStepType     = capitan.NewStringKey("step_type") // draft, critique, improve, ingest, checkpoint
	FieldStepDuration = capitan.NewDurationKey("step_duration")
	FieldTemperature  = capitan.NewFloat32Key("temperature")

	// Reasoning metadata.
	FieldTopic       = capitan.NewStringKey("topic")
	FieldQuery       = capitan.NewStringKey("query")
	FieldContextDocs = capitan.NewIntKey("context_docs")

	// Tool metadata.
	FieldToolName   = capitan.NewStringKey("tool_name")
	FieldToolStatus = capitan.NewStringKey("tool_status") // ok, failed, missing

	// Ingest metadata.
	FieldSource     = capitan.NewStringKey("source")
	FieldChunkCount = capitan.NewIntKey("chunk_count")

	// Error information.
	FieldError = capitan.NewErrorKey("error")
)
