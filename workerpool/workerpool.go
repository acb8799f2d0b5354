// Package workerpool provides bounded and pooled async.Executor
// implementations, for installing via async.SetBackgroundEntry,
// async.SetJobEntry, or async.SetForegroundEntry. Grounded on the teacher
// library's pool subpackage (pool/pool.go, pool/fixed.go, pool/dynamic.go),
// generalized from pooling plain worker values to pooling the goroutines (and
// per-submission bookkeeping) that run dispatched closures.
package workerpool

import "sync"

// Fixed returns an async.Executor backed by n long-lived goroutines reading
// from a shared queue, the same fixed-capacity shape as pool.NewFixed but
// applied to dispatch rather than object reuse: n bounds concurrency instead
// of bounding a channel of reusable values.
func Fixed(n uint) func(func()) {
	if n == 0 {
		n = 1
	}

	jobs := make(chan func(), n*4)
	for i := uint(0); i < n; i++ {
		go func() {
			for job := range jobs {
				job()
			}
		}()
	}

	return func(fn func()) {
		jobs <- fn
	}
}

// Dynamic returns an async.Executor that spawns one goroutine per submission,
// unbounded like pool.NewDynamic's sync.Pool wrapper, and reuses the small
// submission wrapper itself via a sync.Pool to keep the per-dispatch
// allocation down under sustained load.
func Dynamic() func(func()) {
	wrappers := sync.Pool{New: func() any { return new(dispatched) }}

	return func(fn func()) {
		w := wrappers.Get().(*dispatched)
		w.fn = fn
		go func(w *dispatched) {
			defer func() {
				w.fn = nil
				wrappers.Put(w)
			}()
			w.fn()
		}(w)
	}
}

type dispatched struct {
	fn func()
}
