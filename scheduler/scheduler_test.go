package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_FiresInDeadlineOrder(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var mu sync.Mutex
	var order []string
	fire := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	s.Add(500*time.Millisecond, fire("J1"))
	s.Add(100*time.Millisecond, fire("J2"))

	time.Sleep(700 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "J2" || order[1] != "J1" {
		t.Fatalf("fire order = %v; want [J2 J1]", order)
	}
}

func TestScheduler_RemoveBeforeDeadlinePreventsFire(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var fired atomic.Bool
	tok := s.Add(150*time.Millisecond, func() { fired.Store(true) })

	if !s.Remove(tok) {
		t.Fatalf("Remove on a still-pending token should report true")
	}

	time.Sleep(300 * time.Millisecond)
	if fired.Load() {
		t.Fatalf("removed job fired")
	}

	if s.Remove(tok) {
		t.Fatalf("second Remove of the same token should report false")
	}
}

func TestScheduler_ClearDropsAllPending(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var count atomic.Int32
	s.Add(50*time.Millisecond, func() { count.Add(1) })
	s.Add(60*time.Millisecond, func() { count.Add(1) })

	if !s.Clear() {
		t.Fatalf("Clear with pending jobs should report true")
	}
	if s.Clear() {
		t.Fatalf("Clear with nothing pending should report false")
	}

	time.Sleep(150 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Fatalf("count = %d; want 0 after Clear", got)
	}
}

func TestScheduler_ShutdownStopsTimerGoroutine(t *testing.T) {
	s := New()

	var fired atomic.Bool
	s.Add(2*time.Second, func() { fired.Store(true) })

	s.Shutdown()

	if s.Add(time.Millisecond, func() {}) != 0 {
		t.Fatalf("Add after Shutdown should return the zero Token")
	}
	if fired.Load() {
		t.Fatalf("job scheduled before Shutdown must not fire")
	}
}

func TestScheduler_ZeroTokenIsNeverRemovable(t *testing.T) {
	s := New()
	defer s.Shutdown()

	if s.Remove(0) {
		t.Fatalf("Remove(0) must always report false, it is the null sentinel")
	}
}

func TestScheduler_DispatchReceivesDueCallback(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var got int32
	done := make(chan struct{})
	s.SetDispatch(func(cb func()) {
		atomic.AddInt32(&got, 1)
		cb()
		close(done)
	})
	defer s.SetDispatch(nil)

	s.Add(10*time.Millisecond, func() {})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("dispatch was never invoked")
	}
	if atomic.LoadInt32(&got) != 1 {
		t.Fatalf("dispatch invoked %d times; want 1", got)
	}
}
