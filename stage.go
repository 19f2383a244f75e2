package lineage

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// Stage wraps a branch arrow with step lifecycle signals: StepStarted before
// it runs, then StepCompleted or StepFailed. On failure the input branch is
// returned alongside the error.
func Stage(name, stepType string, step arrow.Step[Branch, Branch]) arrow.Step[Branch, Branch] {
	return func(ctx context.Context, b Branch) (Branch, error) {
		return runStage(ctx, name, stepType, b, func(ctx context.Context) (Branch, error) {
			return step(ctx, b)
		})
	}
}

// StageProcessor is Stage exposed as a pipz processor.
func StageProcessor(name, stepType string, step arrow.Step[Branch, Branch]) pipz.Chainable[Branch] {
	return arrow.Processor(name, stepType+" stage", Stage(name, stepType, step))
}

func runStage(ctx context.Context, name, stepType string, b Branch, fn func(context.Context) (Branch, error)) (Branch, error) {
	start := time.Now()

	capitan.Emit(ctx, StepStarted,
		FieldBranch.Field(b.Name()),
		FieldStepName.Field(name),
		FieldStepType.Field(stepType),
		FieldEventCount.Field(b.Len()),
	)

	out, err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		capitan.Error(ctx, StepFailed,
			FieldBranch.Field(b.Name()),
			FieldStepName.Field(name),
			FieldStepType.Field(stepType),
			FieldStepDuration.Field(duration),
			FieldError.Field(err),
		)
		return b, err
	}

	capitan.Emit(ctx, StepCompleted,
		FieldBranch.Field(out.Name()),
		FieldStepName.Field(name),
		FieldStepType.Field(stepType),
		FieldStepDuration.Field(duration),
		FieldEventCount.Field(out.Len()),
	)
	return out, nil
}

// appendEvent is WithEvent plus an EventAppended signal.
func appendEvent(ctx context.Context, b Branch, e PipelineEvent) Branch {
	next := b.WithEvent(e)
	capitan.Emit(ctx, EventAppended,
		FieldBranch.Field(next.Name()),
		FieldEventType.Field(e.EventType()),
		FieldEventID.Field(e.EventID()),
		FieldEventCount.Field(next.Len()),
	)
	return next
}
