package async

import "context"

// WaitAll blocks until every task in tasks has completed or ctx is done,
// returning their values in the same order. It returns the first error
// encountered (by completion order, not by index) and still waits for the
// remaining tasks to finish before returning, so callers never leak a
// forgotten frame goroutine. Grounded on the teacher's run_all.go
// fan-out/fan-in shape, generalized from dispatching independent jobs onto a
// worker pool to joining already-running Task handles.
func WaitAll[T, P any](ctx context.Context, tasks ...Task[T, P]) ([]T, error) {
	values := make([]T, len(tasks))
	errs := make([]error, len(tasks))

	done := make(chan int, len(tasks))
	for i, tk := range tasks {
		go func(i int, tk Task[T, P]) {
			v, err := tk.Get(ctx)
			values[i] = v
			errs[i] = err
			done <- i
		}(i, tk)
	}

	var firstErr error
	for range tasks {
		i := <-done
		if errs[i] != nil && firstErr == nil {
			firstErr = errs[i]
		}
	}
	return values, firstErr
}

// WaitAny blocks until the first of tasks completes (or ctx is done) and
// returns its index, value, and error. The remaining tasks are left running;
// callers that need to stop them should Cancel explicitly.
func WaitAny[T, P any](ctx context.Context, tasks ...Task[T, P]) (int, T, error) {
	type result struct {
		i   int
		v   T
		err error
	}
	first := make(chan result, len(tasks))
	for i, tk := range tasks {
		go func(i int, tk Task[T, P]) {
			v, err := tk.Get(ctx)
			first <- result{i: i, v: v, err: err}
		}(i, tk)
	}
	r := <-first
	return r.i, r.v, r.err
}
