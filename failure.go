package async

import "fmt"

// TaskFailure wraps whatever went wrong inside a Procedure: either it
// returned a non-nil error, or it panicked and the frame boundary recovered
// the panic instead of letting it crash the host. See SPEC_FULL.md §8 for the
// REDESIGN this implements over the distilled spec's original "propagate the
// native exception" behavior.
type TaskFailure struct {
	// Panicked is true when the Procedure's goroutine panicked rather than
	// returning a non-nil error.
	Panicked bool
	// Recovered is the value passed to panic, set only when Panicked is true.
	Recovered any
	// Err is the underlying error: either the Procedure's own returned error,
	// or a wrapping of Recovered when Panicked is true.
	Err error
}

func (f *TaskFailure) Error() string {
	if f == nil {
		return ""
	}
	if f.Panicked {
		return fmt.Sprintf("async: procedure panicked: %v", f.Recovered)
	}
	return f.Err.Error()
}

func (f *TaskFailure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

func failureToErr(f *TaskFailure) error {
	if f == nil {
		return nil
	}
	return f
}

// runProcedure invokes proc, recovering any panic into a TaskFailure instead
// of letting it unwind across the dedicated goroutine boundary, grounded on
// the teacher's worker.go recover() wrapper around each dispatched job.
func runProcedure[T any](proc func() (T, error)) (value T, failure *TaskFailure) {
	defer func() {
		if r := recover(); r != nil {
			failure = &TaskFailure{Panicked: true, Recovered: r, Err: fmt.Errorf("async: procedure panicked: %v", r)}
		}
	}()

	v, err := proc()
	if err != nil {
		return v, &TaskFailure{Err: err}
	}
	return v, nil
}
