package async

import (
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/async/scheduler"
)

// cancellableState is the type-erased view an asyncState[T] exposes of
// itself so the cancellation walk in Task.Cancel can cross the T boundary
// between an outer task and the differently-typed inner task it is awaiting,
// without resorting to reflection. It is the Go stand-in for the distilled
// spec's "weak link to the next inner task in the chain".
type cancellableState interface {
	// cancelStep marks this state canceled, invokes and clears its pending
	// cancelFn (if any), and reports whether the walk should continue to the
	// next link, along with that link.
	cancelStep() (propagate bool, next cancellableState)
}

// asyncState is the per-task shared record described in SPEC_FULL.md §5,
// grounded on AsyncState<T> in the distilled spec and, structurally, on the
// mutex+condvar+ready-bit shape the teacher library uses in its own blocking
// paths (task.go's ctx.Done()/done-channel select).
type asyncState[T any] struct {
	mu   sync.Mutex
	cond *sync.Cond

	ready   bool
	value   T
	failure *TaskFailure

	canceled  atomic.Bool
	propagate atomic.Bool

	// outer is the continuation to resume, synchronously, once this state
	// becomes ready. Set at most once per awaited episode; cleared before
	// invocation.
	outer func()

	// cancelFn aborts whatever this state is currently suspended on (a timed
	// delay, most importantly). Cleared once invoked or once the await it
	// guards completes naturally.
	cancelFn func()
	jobToken scheduler.Token

	// next is valid only while the owning procedure is suspended on an inner
	// task; it is always cleared by the awaiting frame once the await
	// completes, so a concurrent Cancel arriving after the clear observes
	// "no link" rather than a stale reference.
	next cancellableState
}

func newAsyncState[T any]() *asyncState[T] {
	s := &asyncState[T]{}
	s.cond = sync.NewCond(&s.mu)
	s.propagate.Store(true)
	return s
}

func (s *asyncState[T]) cancelStep() (bool, cancellableState) {
	s.canceled.Store(true)

	s.mu.Lock()
	fn := s.cancelFn
	s.cancelFn = nil
	next := s.next
	propagate := s.propagate.Load()
	s.mu.Unlock()

	if fn != nil {
		fn()
	}

	return propagate, next
}

// complete marks the state ready with the given value/failure, wakes any
// Get waiters, and resumes the registered outer continuation synchronously,
// mirroring the distilled spec's "no executor hop" rule for co_return.
func (s *asyncState[T]) complete(value T, failure *TaskFailure) {
	s.mu.Lock()
	s.value = value
	s.failure = failure
	s.ready = true
	outer := s.outer
	s.outer = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	if outer != nil {
		outer()
	}
}

func (s *asyncState[T]) setCancelFn(tok scheduler.Token, fn func()) {
	s.mu.Lock()
	s.jobToken = tok
	s.cancelFn = fn
	s.mu.Unlock()
}

func (s *asyncState[T]) clearCancelFn() {
	s.mu.Lock()
	s.cancelFn = nil
	s.jobToken = 0
	s.mu.Unlock()
}

func (s *asyncState[T]) bindNext(next cancellableState) {
	s.mu.Lock()
	s.next = next
	s.mu.Unlock()
}

func (s *asyncState[T]) clearNext() {
	s.mu.Lock()
	s.next = nil
	s.mu.Unlock()
}
