package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs fn once, no earlier than when.
type Scheduler interface {
	At(when time.Time, fn func())
}

// System is the wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// SchedulerFunc adapts a plain function to Scheduler.
type SchedulerFunc func(when time.Time, fn func())

// At calls f(when, fn).
func (f SchedulerFunc) At(when time.Time, fn func()) { f(when, fn) }

// TimerScheduler schedules callbacks on runtime timers.
type TimerScheduler struct {
	clock Clock

	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	nextID  uint64
	stopped bool
}

// NewTimerScheduler returns a scheduler firing against clock. A nil clock
// means System.
func NewTimerScheduler(c Clock) *TimerScheduler {
	if c == nil {
		c = System{}
	}
	return &TimerScheduler{
		clock:  c,
		timers: make(map[uint64]*time.Timer),
	}
}

// At schedules fn to run at when. Timers that wake early re-arm for the
// remaining duration, so fn never runs before when.
func (s *TimerScheduler) At(when time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.nextID++
	s.arm(s.nextID, when, fn)
}

// arm must be called with s.mu held.
func (s *TimerScheduler) arm(id uint64, when time.Time, fn func()) {
	delay := when.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		if s.clock.Now().Before(when) {
			s.arm(id, when, fn)
			s.mu.Unlock()
			return
		}
		delete(s.timers, id)
		s.mu.Unlock()

		fn()
	})
}

// Pending returns the number of callbacks that have not fired yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all outstanding timers. Later calls to At are ignored.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
