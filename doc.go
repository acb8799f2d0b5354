// Package async provides a coroutine-flavored asynchronous execution engine:
// straight-line procedures that hop between named execution contexts, suspend
// for a timed duration, observe a propagating cancellation token, and
// optionally stream progress samples back to the caller.
//
// Core types
//   - Task[T, P]: the handle returned by every asynchronous procedure. It is
//     awaitable from another procedure's Frame, joinable via Get, and
//     cancellable via Cancel.
//   - Frame[T, P]: passed into every Procedure; exposes the await-points
//     (ResumeBackground, ResumeForeground, Sleep, Token, Progress) as ordinary
//     method calls on the procedure's dedicated goroutine. Await and
//     AwaitFuture are free functions, not methods, since they cross into a
//     second, independent pair of type parameters that a method cannot
//     introduce on its own.
//   - CancellationToken: a read-only, propagating view onto a task's
//     cancellation flag.
//
// Type aliases
//
// Four aliases cover the (value, progress) combinations a procedure can
// declare:
//
//	Action                          = Task[struct{}, NoProgress]
//	ActionWithProgress[P]           = Task[struct{}, P]
//	Operation[T]                    = Task[T, NoProgress]
//	OperationWithProgress[T, P]     = Task[T, P]
//
// Executors
//
// Three process-wide entry points, "bg", "job", and "fg", are set once via
// SetBackgroundEntry, SetJobEntry, and SetForegroundEntry. Unset, they default
// to a detached goroutine per dispatch ("bg", "job") and inline execution
// ("fg"). The workerpool package provides bounded alternatives.
//
// Scheduler
//
// Timed delays are served by a single process-wide scheduler (the scheduler
// subpackage) holding one internal timer goroutine. Cancelling a task that is
// currently asleep dequeues its pending wake-up; the timer never fires it.
//
// Error handling
//
// A panic inside a Procedure is recovered at the frame boundary and surfaced
// as the error returned from Get, rather than crashing the host process.
package async
