package async

import "errors"

// Namespace prefixes every sentinel error defined by this package, matching
// the convention the teacher library uses for its own sentinel errors.
const Namespace = "async"

var (
	// ErrNotProgressBearing is the value Frame.Progress and Task.Progress
	// panic with when invoked on a task that was constructed without a
	// progress type.
	ErrNotProgressBearing = errors.New(Namespace + ": task does not carry a progress channel")

	// ErrSchedulerClosed is returned by Frame.Sleep when the process-wide
	// scheduler has already been shut down (scheduler.Scheduler.Add returns
	// the zero Token in that case).
	ErrSchedulerClosed = errors.New(Namespace + ": scheduler is shut down")

	// ErrFutureClosed is returned by AwaitFuture when the channel it was
	// waiting on is closed without ever delivering a Result.
	ErrFutureClosed = errors.New(Namespace + ": future channel closed without a result")
)
