package async

import (
	"context"
	"sync"
	"time"

	"github.com/ygrebnov/async/scheduler"
)

// Frame is the handle passed into every Procedure. Its methods are the
// procedure's await-points: each one may block the procedure's dedicated
// goroutine (SPEC_FULL.md §2 calls this goroutine "the frame"), which is Go's
// closest analogue to a suspended coroutine - the goroutine parks instead of
// the call stack being torn down and rebuilt by a compiler-synthesized state
// machine.
type Frame[T, P any] struct {
	ctx   context.Context
	owner *asyncState[T]
	token CancellationToken
	gate  propagationGate

	progress    *progressState[P]
	hasProgress bool
}

// Context returns the context the owning task was started with.
func (f *Frame[T, P]) Context() context.Context { return f.ctx }

// Token returns the cancellation token for this procedure's own task. Poll
// IsCanceled() at convenient checkpoints; nothing forces an unwind.
func (f *Frame[T, P]) Token() CancellationToken { return f.token }

// EnablePropagation controls whether cancelling this task also cancels
// whatever inner task it is currently awaiting. Propagation defaults to
// enabled.
func (f *Frame[T, P]) EnablePropagation(enabled bool) (previous bool) {
	return f.gate.EnablePropagation(enabled)
}

// Progress returns the producer-side handle for reporting progress samples.
// It panics with ErrNotProgressBearing if the task was started without a
// progress type (via Run/RunAction rather than RunWithProgress).
func (f *Frame[T, P]) Progress() ProgressController[P] {
	if !f.hasProgress {
		panic(ErrNotProgressBearing)
	}
	return ProgressController[P]{state: f.progress}
}

// Sleep suspends the procedure for at least d, unless the task is cancelled
// first, in which case Sleep returns context.Canceled immediately and the
// pending timer job never fires. If the frame's own context is done first,
// Sleep returns ctx.Err(). Grounded on BJobScheduler::add_job /
// BJobScheduler::remove_job in original_source/BJobScheduler.h.
func (f *Frame[T, P]) Sleep(d time.Duration) error {
	if f.token.IsCanceled() {
		return context.Canceled
	}

	done := make(chan struct{})
	var once sync.Once
	signal := func() { once.Do(func() { close(done) }) }

	tok := scheduler.Default().Add(d, signal)
	if tok == 0 {
		return ErrSchedulerClosed
	}
	f.owner.setCancelFn(tok, func() {
		scheduler.Default().Remove(tok)
		signal()
	})

	// Cancel may have raced between the check above and the cancelFn
	// registration just above; re-check now that a cancelFn exists for it to
	// have found, and self-trigger if so, so a sleeper never misses a
	// cancel that lands in that narrow window.
	if f.token.IsCanceled() {
		scheduler.Default().Remove(tok)
		signal()
	}

	select {
	case <-done:
	case <-f.ctx.Done():
	}

	f.owner.clearCancelFn()

	if f.token.IsCanceled() {
		return context.Canceled
	}
	if err := f.ctx.Err(); err != nil {
		return err
	}
	return nil
}

// ResumeBackground posts the remainder of the procedure to the background
// executor and blocks until it runs, emulating a context switch onto a
// background thread. See SPEC_FULL.md §7 for why this is a done-channel
// handshake rather than literal goroutine migration.
func (f *Frame[T, P]) ResumeBackground() {
	f.hop(runBackground)
}

// ResumeForeground posts the remainder of the procedure to the foreground
// executor and blocks until it runs.
func (f *Frame[T, P]) ResumeForeground() {
	f.hop(runForeground)
}

func (f *Frame[T, P]) hop(post func(func())) {
	done := make(chan struct{})
	post(func() { close(done) })
	<-done
}

// Await suspends the calling procedure until inner completes, returning its
// value and error. It is a free function, not a method, because Go methods
// cannot introduce type parameters beyond their receiver's; IT/IP are the
// inner task's own (value, progress) types, independent of the awaiting
// frame's T/P. Grounded on the distilled spec's "awaiting an inner Task<T,P>"
// row in the await-point table.
func Await[T, P, IT, IP any](f *Frame[T, P], inner Task[IT, IP]) (IT, error) {
	s := inner.state

	f.owner.bindNext(s)
	defer f.owner.clearNext()

	s.mu.Lock()
	if s.ready {
		v, failure := s.value, s.failure
		s.mu.Unlock()
		return v, failureToErr(failure)
	}

	waitCh := make(chan struct{})
	s.outer = func() { close(waitCh) }
	s.mu.Unlock()

	select {
	case <-waitCh:
	case <-f.ctx.Done():
		var zero IT
		return zero, f.ctx.Err()
	}

	s.mu.Lock()
	v, failure := s.value, s.failure
	s.mu.Unlock()
	return v, failureToErr(failure)
}

// Result pairs a value with an error, the payload AwaitFuture consumes.
type Result[T any] struct {
	Value T
	Err   error
}

// AwaitFuture suspends the procedure until a value arrives on fut or ctx
// (the frame's own context) is done, for interop with plain channel-based
// producers that are not themselves a Task. Grounded on the other_examples/
// Future[U] pattern (pkg/async/doc.go in the retrieval pack).
func AwaitFuture[T, P, FT any](f *Frame[T, P], fut <-chan Result[FT]) (FT, error) {
	select {
	case r, ok := <-fut:
		if !ok {
			var zero FT
			return zero, ErrFutureClosed
		}
		return r.Value, r.Err
	case <-f.ctx.Done():
		var zero FT
		return zero, f.ctx.Err()
	}
}
