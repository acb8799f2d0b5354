package async

import (
	"sync/atomic"

	"github.com/ygrebnov/async/scheduler"
)

// Executor accepts a closure and arranges for it to run "somewhere". It is
// the one injection point the core depends on for every context hop and for
// dispatching scheduler wake-ups; the core never spawns a goroutine of its
// own accord except as the documented default for an unset executor.
type Executor func(func())

// entries holds the three process-wide executor slots. It is replaced as a
// whole via atomic.Pointer swaps so a setter call races safely with an
// in-flight lookup.
var entries atomic.Pointer[executorSet]

type executorSet struct {
	bg  Executor
	job Executor
	fg  Executor
}

func init() {
	entries.Store(&executorSet{})
}

// SetBackgroundEntry installs the executor used for ResumeBackground hops.
// Intended to be called at most once during process initialization.
func SetBackgroundEntry(entry Executor) {
	swapEntry(func(s *executorSet) { s.bg = entry })
}

// SetJobEntry installs the executor used to dispatch scheduler wake-ups, by
// rewiring scheduler.Default's Dispatch to it. Passing nil restores the
// scheduler's default of one detached goroutine per wake-up.
func SetJobEntry(entry Executor) {
	swapEntry(func(s *executorSet) { s.job = entry })
	if entry == nil {
		scheduler.Default().SetDispatch(nil)
		return
	}
	scheduler.Default().SetDispatch(scheduler.Dispatch(entry))
}

// SetForegroundEntry installs the executor used for ResumeForeground hops.
func SetForegroundEntry(entry Executor) {
	swapEntry(func(s *executorSet) { s.fg = entry })
}

func swapEntry(mutate func(*executorSet)) {
	cur := entries.Load()
	next := &executorSet{}
	if cur != nil {
		*next = *cur
	}
	mutate(next)
	entries.Store(next)
}

// runBackground posts fn to the bg executor, defaulting to a detached
// goroutine when none is registered.
func runBackground(fn func()) {
	if e := entries.Load().bg; e != nil {
		e(fn)
		return
	}
	go fn()
}

// runForeground posts fn to the fg executor, defaulting to inline execution.
func runForeground(fn func()) {
	if e := entries.Load().fg; e != nil {
		e(fn)
		return
	}
	fn()
}
