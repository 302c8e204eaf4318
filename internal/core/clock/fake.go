package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually driven clock. The zero value reads the Unix epoch.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a clock reading t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.now.IsZero() {
		return time.UnixMilli(0)
	}
	return f.now
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.Set(f.Now().Add(d))
}

// Scheduled is one call recorded by a Recorder.
type Scheduled struct {
	When time.Time
	Fn   func()
}

// Recorder is a Scheduler that records calls without firing them.
type Recorder struct {
	mu    sync.Mutex
	calls []Scheduled
}

// At records the call.
func (r *Recorder) At(when time.Time, fn func()) {
	r.mu.Lock()
	r.calls = append(r.calls, Scheduled{When: when, Fn: fn})
	r.mu.Unlock()
}

// Calls returns every recorded call in call order. Calls that already
// fired have a nil Fn.
func (r *Recorder) Calls() []Scheduled {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Scheduled(nil), r.calls...)
}

// Last returns the instant passed to the most recent At call.
func (r *Recorder) Last() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return time.Time{}, false
	}
	return r.calls[len(r.calls)-1].When, true
}

// FireDue runs, in instant order, every pending callback due at or before
// now. It returns the number fired.
func (r *Recorder) FireDue(now time.Time) int {
	return r.fire(func(when time.Time) bool { return !when.After(now) })
}

// FireAll runs every pending callback regardless of its instant.
func (r *Recorder) FireAll() int {
	return r.fire(func(time.Time) bool { return true })
}

// Pending returns the number of recorded callbacks that have not run.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Fn != nil {
			n++
		}
	}
	return n
}

// fire runs the pending callbacks selected by due. Callbacks run without
// the lock held, so they may schedule again.
func (r *Recorder) fire(due func(time.Time) bool) int {
	r.mu.Lock()
	var run []Scheduled
	for i := range r.calls {
		if r.calls[i].Fn != nil && due(r.calls[i].When) {
			run = append(run, r.calls[i])
			r.calls[i].Fn = nil
		}
	}
	r.mu.Unlock()

	sort.SliceStable(run, func(i, j int) bool { return run[i].When.Before(run[j].When) })
	for _, c := range run {
		c.Fn()
	}
	return len(run)
}
