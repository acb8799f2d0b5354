package async

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitAll_CollectsInOrder(t *testing.T) {
	mk := func(v int, d time.Duration) Operation[int] {
		return Run(context.Background(), func(_ context.Context, f *Frame[int, NoProgress]) (int, error) {
			_ = f.Sleep(d)
			return v, nil
		})
	}

	tasks := []Operation[int]{
		mk(1, 30*time.Millisecond),
		mk(2, 10*time.Millisecond),
		mk(3, 20*time.Millisecond),
	}

	values, err := WaitAll(context.Background(), tasks...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("values = %v; want %v", values, want)
		}
	}
}

func TestWaitAll_SurfacesAnError(t *testing.T) {
	boom := errors.New("boom")
	ok := Run(context.Background(), func(_ context.Context, _ *Frame[int, NoProgress]) (int, error) { return 1, nil })
	bad := Run(context.Background(), func(_ context.Context, _ *Frame[int, NoProgress]) (int, error) { return 0, boom })

	_, err := WaitAll(context.Background(), ok, bad)
	if err == nil {
		t.Fatalf("expected an error from WaitAll")
	}
}

func TestWaitAny_ReturnsFirstCompletion(t *testing.T) {
	slow := Run(context.Background(), func(_ context.Context, f *Frame[int, NoProgress]) (int, error) {
		_ = f.Sleep(200 * time.Millisecond)
		return 1, nil
	})
	fast := Run(context.Background(), func(_ context.Context, f *Frame[int, NoProgress]) (int, error) {
		_ = f.Sleep(10 * time.Millisecond)
		return 2, nil
	})

	i, v, err := WaitAny(context.Background(), slow, fast)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i != 1 || v != 2 {
		t.Fatalf("i=%d v=%d; want i=1 v=2 (fast task)", i, v)
	}
}
