// Package scheduler implements the timed job scheduler described in
// SPEC_FULL.md §6.5: a single ordered deadline queue served by one internal
// timer goroutine, grounded directly on BJobScheduler from the Agave
// coroutine framework (original_source/BJobScheduler.h, BJobScheduler.cpp).
//
// The scheduler is deliberately generic over what a "job executor" is: it
// posts due callbacks through a Dispatch function supplied by the owner
// (the async package wires this to its own job executor registry) and
// defaults to spawning a detached goroutine per callback when no Dispatch is
// set, mirroring the distilled spec's "or spawn a detached worker if unset".
package scheduler

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Token identifies a scheduled job. The zero Token is the sentinel null,
// matching BJobToken's "_tok_id == 0" convention in the original source.
type Token uint64

// Dispatch posts a due callback to wherever the job executor runs it.
type Dispatch func(func())

// tickThreshold mirrors the 1ms "close enough to fire" window documented for
// BJobScheduler's timer thread loop.
const tickThreshold = time.Millisecond

type entry struct {
	token    Token
	deadline time.Time
	cb       func()
}

// Scheduler is a process-wide (or test-local) timed job queue. Construct one
// with New, or use Default for the process-wide singleton.
type Scheduler struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []entry // kept sorted by deadline ascending
	current entry   // zero-value token acts as the null sentinel
	nextID  uint64
	exit    bool
	closed  chan struct{}

	dispatch atomic.Pointer[Dispatch]
}

// New constructs and starts a Scheduler with its own timer goroutine. Callers
// that do not need an isolated instance should use Default.
func New() *Scheduler {
	s := &Scheduler{closed: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

var def = New()

// Default returns the process-wide scheduler singleton.
func Default() *Scheduler { return def }

// SetDispatch installs the function used to post due callbacks. Passing nil
// restores the default (one detached goroutine per callback).
func (s *Scheduler) SetDispatch(d Dispatch) {
	if d == nil {
		s.dispatch.Store(nil)
		return
	}
	s.dispatch.Store(&d)
}

func (s *Scheduler) post(cb func()) {
	if p := s.dispatch.Load(); p != nil {
		(*p)(cb)
		return
	}
	go cb()
}

// Add registers cb to run no earlier than d from now and returns its token.
func (s *Scheduler) Add(d time.Duration, cb func()) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exit {
		return 0
	}

	s.nextID++
	e := entry{token: Token(s.nextID), deadline: time.Now().Add(d), cb: cb}
	s.insertLocked(e)
	s.cond.Broadcast()
	return e.token
}

func (s *Scheduler) insertLocked(e entry) {
	i := sort.Search(len(s.pending), func(i int) bool { return s.pending[i].deadline.After(e.deadline) })
	s.pending = append(s.pending, entry{})
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = e
}

// Remove cancels a pending or currently-popped job by token. It returns
// whether a job was found. A removed job's callback never fires.
func (s *Scheduler) Remove(tok Token) bool {
	if tok == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.pending {
		if e.token == tok {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			s.cond.Broadcast()
			return true
		}
	}

	if s.current.token == tok {
		s.current = entry{}
		s.cond.Broadcast()
		return true
	}

	return false
}

// Clear drops every pending entry. A job the timer goroutine has already
// popped as "current" is left for it to notice on its own.
func (s *Scheduler) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return false
	}
	s.pending = nil
	s.cond.Broadcast()
	return true
}

// Shutdown stops the timer goroutine and waits for it to exit. Pending jobs
// are dropped; a callback already handed to Dispatch is not cancelled.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.exit = true
	s.pending = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	<-s.closed
}

// run is the timer goroutine's loop, grounded on BJobScheduler::loop_jobs.
func (s *Scheduler) run() {
	defer close(s.closed)

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.exit {
			s.pending = nil
			return
		}

		if len(s.pending) == 0 {
			s.cond.Wait()
			continue
		}

		s.current = s.pending[0]
		s.pending = s.pending[1:]

		if wait := time.Until(s.current.deadline); wait > tickThreshold {
			s.waitUntilLocked(s.current.deadline)
		}

		if s.exit {
			s.current = entry{}
			s.pending = nil
			return
		}

		if s.current.token == 0 {
			// Removed (or superseded) while we were waiting.
			continue
		}

		if remaining := time.Until(s.current.deadline); remaining > tickThreshold {
			// Woken early by a new, earlier insertion; put current back.
			s.insertLocked(s.current)
			s.current = entry{}
			continue
		}

		cb := s.current.cb
		s.current = entry{}

		s.mu.Unlock()
		s.post(cb)
		s.mu.Lock()
	}
}

// waitUntilLocked blocks the caller (which must hold s.mu) until either
// deadline passes or the condition variable is broadcast by Add/Remove/Clear.
// sync.Cond has no native deadline support, so a helper goroutine bridges a
// time.Timer into a Broadcast the same way the original's timer thread would
// wake early on a fresh insertion.
func (s *Scheduler) waitUntilLocked(deadline time.Time) {
	timer := time.NewTimer(time.Until(deadline))
	stop := make(chan struct{})

	go func() {
		select {
		case <-timer.C:
		case <-stop:
		}
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	}()

	s.cond.Wait()
	timer.Stop()
	close(stop)
}
