// Package clock provides the time capabilities injected into the store.
//
// Clock answers "what time is it" and Scheduler runs a callback at an
// absolute instant. Production code uses System and TimerScheduler; tests
// use Fake and Recorder so that expirations fire only when the test says so.
package clock
