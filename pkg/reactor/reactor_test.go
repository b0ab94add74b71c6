package reactor

import (
	"sync/atomic"
	"testing"
	"time"
)

func newRunningReactor(t *testing.T) *Reactor {
	t.Helper()
	r := New()
	r.Run()
	t.Cleanup(func() {
		r.End()
		r.Wait()
	})
	return r
}

func TestMonotonicAdvances(t *testing.T) {
	r := New()
	t1 := r.Monotonic()
	time.Sleep(time.Millisecond)
	t2 := r.Monotonic()
	if t2 <= t1 {
		t.Errorf("clock did not advance: %v -> %v", t1, t2)
	}
}

func TestTimerFires(t *testing.T) {
	r := newRunningReactor(t)

	fired := make(chan float64, 1)
	r.RegisterTimer(func(eventtime float64) float64 {
		fired <- eventtime
		return NEVER
	}, r.Monotonic()+0.01)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimerReschedules(t *testing.T) {
	r := newRunningReactor(t)

	var count atomic.Int32
	done := make(chan struct{})
	r.RegisterTimer(func(eventtime float64) float64 {
		if count.Add(1) >= 3 {
			close(done)
			return NEVER
		}
		return eventtime + 0.005
	}, NOW)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer fired %d times, want 3", count.Load())
	}
}

func TestUnregisterTimer(t *testing.T) {
	r := newRunningReactor(t)

	var count atomic.Int32
	timer := r.RegisterTimer(func(eventtime float64) float64 {
		count.Add(1)
		return eventtime + 0.005
	}, r.Monotonic()+0.5)
	r.UnregisterTimer(timer)

	time.Sleep(20 * time.Millisecond)
	if count.Load() != 0 {
		t.Errorf("unregistered timer fired %d times", count.Load())
	}
	if timer.Waketime() != NEVER {
		t.Errorf("waketime = %v, want NEVER", timer.Waketime())
	}
}

func TestUpdateTimerPullsWakeForward(t *testing.T) {
	r := newRunningReactor(t)

	fired := make(chan struct{}, 1)
	timer := r.RegisterTimer(func(float64) float64 {
		fired <- struct{}{}
		return NEVER
	}, NEVER)

	r.UpdateTimer(timer, NOW)
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("updated timer never fired")
	}
}

func TestRunAsync(t *testing.T) {
	r := newRunningReactor(t)

	done := make(chan struct{})
	r.RunAsync(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async callback never ran")
	}
}

func TestPauseReturnsAtWaketime(t *testing.T) {
	r := New()

	start := r.Monotonic()
	got := r.Pause(start + 0.02)
	if got < start+0.02 {
		t.Errorf("pause returned early: %v < %v", got, start+0.02)
	}

	// A wake time in the past returns immediately.
	if r.Pause(start) > r.Monotonic() {
		t.Error("past wake time did not return immediately")
	}
}

func TestPauseInterruptedByEnd(t *testing.T) {
	r := New()
	r.Run()

	done := make(chan struct{})
	go func() {
		r.Pause(NEVER)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	r.End()
	r.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pause did not return on shutdown")
	}
}
