// Package tests holds end-to-end scenario coverage that exercises the
// public API the way an application would, one file per group of related
// scenarios, the way the teacher library's own tests/ package is organized.
package tests

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/async"
)

// S1 - compose and return: A awaits a delay then completes; B awaits A, then
// awaits a delay, then returns a value; the outermost Get reflects the
// composition once both delays have elapsed.
func TestScenario_ComposeAndReturn(t *testing.T) {
	start := time.Now()

	a := async.Run(context.Background(), func(ctx context.Context, f *async.Frame[int, async.NoProgress]) (int, error) {
		if err := f.Sleep(80 * time.Millisecond); err != nil {
			return 0, err
		}
		return 11, nil
	})

	b := async.Run(context.Background(), func(ctx context.Context, f *async.Frame[int, async.NoProgress]) (int, error) {
		v, err := async.Await(f, a)
		if err != nil {
			return 0, err
		}
		if err := f.Sleep(80 * time.Millisecond); err != nil {
			return 0, err
		}
		return v + 40, nil
	})

	v, err := b.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 51, v)
	require.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

// S2 - custom executors: with bg set to spawn a detached worker, a procedure
// that hops to background then sleeps must never block the caller's own
// goroutine, and the registered bg executor must actually be invoked for the
// hop (Run itself must return before the hop, or the sleep after it, has
// completed).
func TestScenario_CustomExecutors(t *testing.T) {
	var bgInvocations int32
	async.SetBackgroundEntry(func(fn func()) {
		atomic.AddInt32(&bgInvocations, 1)
		go fn()
	})
	defer async.SetBackgroundEntry(nil)

	op := async.RunAction(context.Background(), func(ctx context.Context, f *async.Frame[struct{}, async.NoProgress]) (struct{}, error) {
		f.ResumeBackground()
		if err := f.Sleep(30 * time.Millisecond); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	// RunAction itself never blocks regardless of what the procedure does;
	// reaching this line proves that, before asserting the hop happened.

	_, err := op.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&bgInvocations))
}

// S5 - progress stream: the producer reports a run of samples, a final
// sample, then completes; the consumer must observe the final sample and
// then see Next report no further sample once the task is done.
func TestScenario_ProgressStream(t *testing.T) {
	op := async.RunWithProgress(context.Background(), func(ctx context.Context, f *async.Frame[float64, int]) (float64, error) {
		for i := 0; i <= 99; i++ {
			f.Progress().Report(i)
		}
		f.Progress().Report(100)
		return 50.0, nil
	})

	reporter := op.Progress()
	stop := make(chan struct{})
	defer close(stop)

	var last int
	var sawHundred bool
	for {
		v, ok := reporter.Next(stop)
		if !ok {
			break
		}
		last = v
		if v == 100 {
			sawHundred = true
		}
	}
	require.True(t, sawHundred, "must observe the final sample before exhaustion")
	require.Equal(t, 100, last)

	result, err := op.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 50.0, result)
}
