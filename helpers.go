package lineage

import (
	"time"

	"github.com/zoobzio/pipz"

	"github.com/zoobzio/lineage/arrow"
)

// Resilience is always composed by the caller: no arrow in this package
// retries or times out on its own. Because a failed stage hands back its
// unchanged input branch, re-running it never duplicates events.

// Retry re-runs step up to attempts times until it succeeds.
//
// Example:
//
//	loop := lineage.NewRefinementLoop(topic, query, 3).WithProvider(p)
//	resilient := lineage.Retry(loop.Arrow(), 3)
func Retry(step arrow.Step[Branch, Branch], attempts int) arrow.Step[Branch, Branch] {
	return arrow.FromChainable[Branch](pipz.NewRetry(
		pipz.NewIdentity("retry", "Retry branch stage"),
		arrow.Processor("retried", "Branch stage under retry", step),
		attempts,
	))
}

// Backoff is Retry with an exponentially growing delay between attempts,
// starting at delay.
func Backoff(step arrow.Step[Branch, Branch], attempts int, delay time.Duration) arrow.Step[Branch, Branch] {
	return arrow.FromChainable[Branch](pipz.NewBackoff(
		pipz.NewIdentity("backoff", "Retry branch stage with backoff"),
		arrow.Processor("backed-off", "Branch stage under backoff", step),
		attempts,
		delay,
	))
}

// Timeout cancels step's context after d and fails with the timeout error.
// The step must honour context cancellation for the deadline to bite.
func Timeout(step arrow.Step[Branch, Branch], d time.Duration) arrow.Step[Branch, Branch] {
	return arrow.FromChainable[Branch](pipz.NewTimeout(
		pipz.NewIdentity("timeout", "Branch stage deadline"),
		arrow.Processor("timed", "Branch stage under deadline", step),
		d,
	))
}

// Fallback runs primary and, if it fails, runs secondary on the same input.
func Fallback(primary, secondary arrow.Step[Branch, Branch]) arrow.Step[Branch, Branch] {
	return arrow.FromChainable[Branch](pipz.NewFallback(
		pipz.NewIdentity("fallback", "Branch stage with fallback"),
		arrow.Processor("primary", "Primary branch stage", primary),
		arrow.Processor("secondary", "Fallback branch stage", secondary),
	))
}

// Sequence chains pipz processors over a branch, for callers assembling
// pipelines with pipz rather than the arrow combinators.
//
// Example:
//
//	pipeline := lineage.Sequence("answer",
//	    lineage.NewDraftArrow(topic, query),
//	    lineage.NewCheckpoint("drafted", store),
//	    lineage.NewCritiqueArrow(topic, query),
//	)
func Sequence(name string, processors ...pipz.Chainable[Branch]) *pipz.Sequence[Branch] {
	return pipz.NewSequence(pipz.NewIdentity(name, "Branch pipeline"), processors...)
}
