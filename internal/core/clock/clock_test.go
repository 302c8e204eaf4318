package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFake(t *testing.T) {
	var f Fake
	if got := f.Now().UnixMilli(); got != 0 {
		t.Errorf("zero Fake Now() = %d ms, want 0", got)
	}

	f.Advance(1500 * time.Millisecond)
	if got := f.Now().UnixMilli(); got != 1500 {
		t.Errorf("after Advance Now() = %d ms, want 1500", got)
	}

	f.Set(time.UnixMilli(42))
	if got := f.Now().UnixMilli(); got != 42 {
		t.Errorf("after Set Now() = %d ms, want 42", got)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	var order []int

	r.At(time.UnixMilli(2000), func() { order = append(order, 2) })
	r.At(time.UnixMilli(1000), func() { order = append(order, 1) })
	r.At(time.UnixMilli(3000), func() { order = append(order, 3) })

	if last, ok := r.Last(); !ok || last.UnixMilli() != 3000 {
		t.Errorf("Last() = (%v, %v), want 3000ms", last, ok)
	}

	if n := r.FireDue(time.UnixMilli(2000)); n != 2 {
		t.Errorf("FireDue(2000) fired %d, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("fire order = %v, want [1 2]", order)
	}
	if r.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", r.Pending())
	}

	if n := r.FireDue(time.UnixMilli(2000)); n != 0 {
		t.Errorf("second FireDue fired %d, want 0", n)
	}
	if n := r.FireAll(); n != 1 {
		t.Errorf("FireAll fired %d, want 1", n)
	}
	if len(r.Calls()) != 3 {
		t.Errorf("Calls() = %d, want 3", len(r.Calls()))
	}
}

func TestRecorder_CallbackMaySchedule(t *testing.T) {
	var r Recorder
	r.At(time.UnixMilli(1), func() {
		r.At(time.UnixMilli(2), func() {})
	})

	r.FireAll()
	if r.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", r.Pending())
	}
}

func TestSchedulerFunc(t *testing.T) {
	var got time.Time
	var s Scheduler = SchedulerFunc(func(when time.Time, fn func()) {
		got = when
		fn()
	})

	ran := false
	s.At(time.UnixMilli(7), func() { ran = true })
	if !ran || got.UnixMilli() != 7 {
		t.Errorf("SchedulerFunc did not forward: ran=%v when=%v", ran, got)
	}
}

func TestTimerScheduler_Fires(t *testing.T) {
	s := NewTimerScheduler(nil)
	defer s.Stop()

	done := make(chan struct{})
	start := time.Now()
	s.At(start.Add(20*time.Millisecond), func() { close(done) })

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
			t.Errorf("fired after %v, before its instant", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestTimerScheduler_PastInstantFiresImmediately(t *testing.T) {
	s := NewTimerScheduler(nil)
	defer s.Stop()

	done := make(chan struct{})
	s.At(time.Now().Add(-time.Hour), func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not fire")
	}
}

func TestTimerScheduler_ReArmsWhenClockLags(t *testing.T) {
	// The fake clock never reaches the instant on its own, so the timer
	// keeps re-arming until the test moves it.
	fake := NewFake(time.UnixMilli(0))
	s := NewTimerScheduler(fake)
	defer s.Stop()

	var fired atomic.Bool
	s.At(time.UnixMilli(5), func() { fired.Store(true) })

	time.Sleep(30 * time.Millisecond)
	if fired.Load() {
		t.Fatal("fired before the clock reached its instant")
	}

	fake.Set(time.UnixMilli(10))
	deadline := time.Now().Add(2 * time.Second)
	for !fired.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !fired.Load() {
		t.Fatal("callback did not fire after clock advanced")
	}
}

func TestTimerScheduler_Stop(t *testing.T) {
	s := NewTimerScheduler(nil)

	var fired atomic.Bool
	s.At(time.Now().Add(50*time.Millisecond), func() { fired.Store(true) })
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}

	s.Stop()
	s.At(time.Now(), func() { fired.Store(true) })

	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Error("callback fired after Stop")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}
