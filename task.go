package async

import (
	"context"
	"time"

	"github.com/ygrebnov/async/metrics"
)

// Procedure is the shape every asynchronous body takes: a function of the
// ambient context and its own Frame, returning a value (or struct{}{} for an
// Action) and an error.
type Procedure[T, P any] func(ctx context.Context, f *Frame[T, P]) (T, error)

// Task is the handle returned by Run/RunWithProgress. The four package-level
// aliases (Action, ActionWithProgress, Operation, OperationWithProgress)
// cover its useful instantiations; see doc.go.
type Task[T, P any] struct {
	state       *asyncState[T]
	progress    *progressState[P]
	hasProgress bool
}

// instrument names, grouped so every lifecycle event lands on one of a small,
// stable set of metrics regardless of how many distinct procedures a program
// runs.
const (
	metricTasksStarted   = "async.tasks.started"
	metricTasksCompleted = "async.tasks.completed"
	metricTasksFailed    = "async.tasks.failed"
	metricTasksCanceled  = "async.tasks.canceled"
	metricTaskDuration   = "async.tasks.duration"
)

// Run starts proc on its own dedicated goroutine and returns immediately with
// a handle to it; the procedure begins executing without waiting for a first
// suspension point (SPEC_FULL.md §2's note on why Go must spawn eagerly
// rather than run synchronously up to the first await, as the distilled
// spec's host language does).
func Run[T any](ctx context.Context, proc Procedure[T, NoProgress], opts ...Option) Operation[T] {
	return start[T, NoProgress](ctx, proc, false, opts)
}

// RunAction is Run specialized for procedures with no return value.
func RunAction(ctx context.Context, proc Procedure[struct{}, NoProgress], opts ...Option) Action {
	return Run[struct{}](ctx, proc, opts...)
}

// RunWithProgress is Run for procedures that also report progress samples.
func RunWithProgress[T, P any](ctx context.Context, proc Procedure[T, P], opts ...Option) OperationWithProgress[T, P] {
	return start[T, P](ctx, proc, true, opts)
}

// RunActionWithProgress combines RunAction and RunWithProgress.
func RunActionWithProgress[P any](ctx context.Context, proc Procedure[struct{}, P], opts ...Option) ActionWithProgress[P] {
	return RunWithProgress[struct{}, P](ctx, proc, opts...)
}

func start[T, P any](ctx context.Context, proc Procedure[T, P], hasProgress bool, opts []Option) Task[T, P] {
	cfg := resolveOptions(opts)

	s := newAsyncState[T]()
	s.propagate.Store(cfg.propagate)

	var prog *progressState[P]
	if hasProgress {
		prog = newProgressState[P]()
	}

	attrs := metrics.WithAttributes(map[string]string{"label": cfg.label})
	cfg.provider.Counter(metricTasksStarted, attrs).Add(1)

	f := &Frame[T, P]{
		ctx:         ctx,
		owner:       s,
		token:       newCancellationToken(&s.canceled),
		gate:        propagationGate{flag: &s.propagate},
		progress:    prog,
		hasProgress: hasProgress,
	}

	go func() {
		started := time.Now()
		value, failure := runProcedure(func() (T, error) {
			return proc(ctx, f)
		})

		if prog != nil {
			prog.close()
		}

		cfg.provider.Histogram(metricTaskDuration, attrs).Record(time.Since(started).Seconds())
		switch {
		case s.canceled.Load():
			// A canceled task's procedure typically still returns a non-nil
			// error (e.g. Sleep surfacing context.Canceled); classify those as
			// canceled rather than failed, since the cancellation was
			// requested, not an unexpected fault.
			cfg.provider.Counter(metricTasksCanceled, attrs).Add(1)
		case failure != nil:
			cfg.provider.Counter(metricTasksFailed, attrs).Add(1)
		default:
			cfg.provider.Counter(metricTasksCompleted, attrs).Add(1)
		}

		s.complete(value, failure)
	}()

	return Task[T, P]{state: s, progress: prog, hasProgress: hasProgress}
}

// Get blocks until the task completes or ctx is done, whichever comes first.
// It does not cancel the task; call Cancel separately if that is desired.
func (t Task[T, P]) Get(ctx context.Context) (T, error) {
	s := t.state

	s.mu.Lock()
	if s.ready {
		v, failure := s.value, s.failure
		s.mu.Unlock()
		return v, failureToErr(failure)
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-stop:
		}
	}()

	for !s.ready {
		if err := ctx.Err(); err != nil {
			close(stop)
			s.mu.Unlock()
			var zero T
			return zero, err
		}
		s.cond.Wait()
	}
	close(stop)

	v, failure := s.value, s.failure
	s.mu.Unlock()
	return v, failureToErr(failure)
}

// Cancel marks the task canceled and, if propagation is enabled (the
// default), walks into whatever it is currently awaiting, canceling each in
// turn until a link with propagation disabled is reached. An inner task that
// is awaited only after Cancel returns is not reached by the walk.
//
// Cancellation is cooperative: Cancel returns immediately, and the procedure
// only actually stops once it next observes its token or a Sleep/Await it is
// blocked on is unwound.
func (t Task[T, P]) Cancel() {
	var cur cancellableState = t.state
	for cur != nil {
		propagate, next := cur.cancelStep()
		if !propagate {
			return
		}
		cur = next
	}
}

// IsCanceled reports whether Cancel has been called on this task (directly,
// or propagated from an ancestor awaiting it).
func (t Task[T, P]) IsCanceled() bool {
	return t.state.canceled.Load()
}

// Progress returns the consumer-side handle for this task's progress
// samples. It panics with ErrNotProgressBearing if the task was started
// without a progress type.
func (t Task[T, P]) Progress() ProgressReporter[P] {
	if !t.hasProgress {
		panic(ErrNotProgressBearing)
	}
	return ProgressReporter[P]{state: t.progress}
}
