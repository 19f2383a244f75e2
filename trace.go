package lineage

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoobzio/lineage/arrow"
)

// Traced runs step inside a span called name. The span records the branch
// name and its event count before and after; a fault is recorded on the span
// and returned unchanged.
func Traced(tracer trace.Tracer, name string, step arrow.Step[Branch, Branch]) arrow.Step[Branch, Branch] {
	return func(ctx context.Context, b Branch) (Branch, error) {
		ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
			attribute.String("lineage.branch", b.Name()),
			attribute.Int("lineage.events.before", b.Len()),
		))
		defer span.End()

		out, err := step(ctx, b)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return out, err
		}
		span.SetAttributes(attribute.Int("lineage.events.after", out.Len()))
		return out, nil
	}
}
